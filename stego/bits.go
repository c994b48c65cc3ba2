package stego

import (
	"fmt"
	"math"
)

// BitsInByte is the number of carrier bits spent on each message byte.
const BitsInByte = 8

// Phase levels written into carrier bins.
const (
	PhaseZero = math.Pi / 2
	PhaseOne  = -math.Pi / 2
)

// ToBits expands a message into its bits, most significant bit first.
func ToBits(message []byte) []uint8 {
	bits := make([]uint8, 0, len(message)*BitsInByte)
	for _, b := range message {
		for i := BitsInByte - 1; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// FromBits packs bits back into bytes. When len(bits) is not a multiple of
// eight the trailing bits cannot form a byte; they are discarded and their
// count is returned as dropped.
func FromBits(bits []uint8) (message []byte, dropped int) {
	dropped = len(bits) % BitsInByte
	message = make([]byte, 0, len(bits)/BitsInByte)
	for i := 0; i+BitsInByte <= len(bits); i += BitsInByte {
		var b byte
		for j := 0; j < BitsInByte; j++ {
			b = (b << 1) | (bits[i+j] & 1)
		}
		message = append(message, b)
	}
	return message, dropped
}

// BitToPhase maps bit 1 to -π/2 and bit 0 to +π/2.
func BitToPhase(bit uint8) float64 {
	if bit&1 == 1 {
		return PhaseOne
	}
	return PhaseZero
}

// PhaseToBit reads a negative phase as 1. Zero reads as 0.
func PhaseToBit(phase float64) uint8 {
	if phase < 0 {
		return 1
	}
	return 0
}

// MessageFromCodes builds a message from character codes, rejecting any code
// outside [0,255].
func MessageFromCodes(codes []int) ([]byte, error) {
	message := make([]byte, len(codes))
	for i, code := range codes {
		if code < 0 || code > math.MaxUint8 {
			return nil, fmt.Errorf("%w: character code %d at position %d is outside [0,255]", ErrInvalidInput, code, i)
		}
		message[i] = byte(code)
	}
	return message, nil
}

// MessageFromText treats every rune of s as one character code.
func MessageFromText(s string) ([]byte, error) {
	codes := make([]int, 0, len(s))
	for _, r := range s {
		codes = append(codes, int(r))
	}
	return MessageFromCodes(codes)
}

// MessageText is the inverse of MessageFromText: each byte becomes the rune
// with the same code.
func MessageText(message []byte) string {
	runes := make([]rune, len(message))
	for i, b := range message {
		runes[i] = rune(b)
	}
	return string(runes)
}
