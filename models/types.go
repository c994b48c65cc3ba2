// Package models contain needed models
package models

// AudioBuffer holds signed 16-bit PCM samples. Multi-channel audio is
// interleaved frame by frame.
type AudioBuffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (b *AudioBuffer) Frames() int {
	if b.Channels <= 1 {
		return len(b.Samples)
	}
	return len(b.Samples) / b.Channels
}

// Mono returns a new single-channel buffer keeping only the first channel.
func (b *AudioBuffer) Mono() *AudioBuffer {
	channels := b.Channels
	if channels < 1 {
		channels = 1
	}

	samples := make([]int16, b.Frames())
	for i := range samples {
		samples[i] = b.Samples[i*channels]
	}

	return &AudioBuffer{
		Samples:    samples,
		SampleRate: b.SampleRate,
		Channels:   1,
	}
}

// Resized returns a new buffer of exactly length samples. Growing pads with
// zero-valued samples, shrinking drops trailing samples.
func (b *AudioBuffer) Resized(length int) *AudioBuffer {
	samples := make([]int16, length)
	copy(samples, b.Samples)

	return &AudioBuffer{
		Samples:    samples,
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
}

// StegoResponse represents the response after insertion
type StegoResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	PSNR    float64 `json:"psnr,omitempty"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}

// CapacityResponse reports how much an audio file can carry
type CapacityResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	Samples          int    `json:"samples"`
	SampleRate       int    `json:"sample_rate"`
	MaxMessageBytes  int    `json:"max_message_bytes"`
	AdvisorySegLen   int    `json:"advisory_segment_length"`
	AdvisorySegments int    `json:"advisory_segments"`
	MessageBytes     int    `json:"message_bytes,omitempty"`
	EncoderSegLen    int    `json:"encoder_segment_length,omitempty"`
	EncoderSegments  int    `json:"encoder_segments,omitempty"`
	EncodedSamples   int    `json:"encoded_samples,omitempty"`
	Fits             bool   `json:"fits"`
}

// CompareRequest carries two messages to compare bit by bit
type CompareRequest struct {
	Original  string `json:"original" binding:"required"`
	Extracted string `json:"extracted" binding:"required"`
}

// CompareResponse reports the bit error rate between two messages
type CompareResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message,omitempty"`
	BitErrors    int     `json:"bit_errors"`
	TotalBits    int     `json:"total_bits"`
	BitErrorRate float64 `json:"bit_error_rate"`
	ExactMatch   bool    `json:"exact_match"`
}

// AudioMetadata represents metadata about an audio file
type AudioMetadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	Frames     int
	// Bitrate is set for compressed sources only, in bits per second.
	Bitrate int
}

// StegoConfig represents configuration for steganography operations
type StegoConfig struct {
	// Workers bounds the number of segment ranges transformed concurrently.
	Workers int
	// CarrierAmplitude is the minimum per-sample amplitude, in 16-bit sample
	// units, that a carrier bin pair contributes. Zero selects the default.
	CarrierAmplitude float64
	// NoCarrierFloor leaves carrier magnitudes untouched. Bits written into
	// silent bins are then lost.
	NoCarrierFloor bool
	// MinPSNR is the PSNR, in dB, below which a stego output is reported as
	// degraded. Zero disables the check.
	MinPSNR float64
}
