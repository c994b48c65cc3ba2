package stego

import "errors"

// Failures reported by the phase coder. All of them are caller input errors;
// none are worth retrying. Detail is attached by wrapping, so test with
// errors.Is.
var (
	// ErrInvalidInput indicates an empty message, a character code outside
	// [0,255], a non-positive bit count or empty audio.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded indicates the message does not fit the carrier
	// bins available in the audio.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrGeometryMismatch indicates the audio cannot have been produced with
	// the bit count supplied to the decoder. A matching geometry does not
	// prove the bit count is right: the caller must pass the value used when
	// embedding.
	ErrGeometryMismatch = errors.New("segment geometry mismatch")

	// ErrLengthMismatch indicates two messages of different bit length were
	// compared.
	ErrLengthMismatch = errors.New("message length mismatch")
)
