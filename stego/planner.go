// Package stego implements phase coding steganography on 16-bit PCM audio
package stego

import (
	"fmt"
	"math"
	"math/bits"
)

const maxReferenceBits = math.MaxInt / 8

// SegmentPlan describes how a signal is cut into equal, non-overlapping
// segments. Length is always a power of two.
type SegmentPlan struct {
	Length int
	Count  int
}

// PlanSegments derives the segment geometry for a signal of totalLength
// samples. Length is 2·2^⌈log2(2·referenceBits)⌉ and Count is
// ⌈totalLength/Length⌉.
func PlanSegments(totalLength, referenceBits int) (SegmentPlan, error) {
	if referenceBits <= 0 {
		return SegmentPlan{}, fmt.Errorf("%w: reference bit count must be positive, got %d", ErrInvalidInput, referenceBits)
	}
	if referenceBits > maxReferenceBits {
		return SegmentPlan{}, fmt.Errorf("%w: reference bit count %d too large", ErrInvalidInput, referenceBits)
	}
	if totalLength < 0 {
		return SegmentPlan{}, fmt.Errorf("%w: negative signal length %d", ErrInvalidInput, totalLength)
	}

	length := 2 * nextPowerOfTwo(2*referenceBits)
	count := totalLength / length
	if totalLength%length != 0 {
		count++
	}

	return SegmentPlan{Length: length, Count: count}, nil
}

// nextPowerOfTwo returns the smallest power of two >= n, for n >= 1.
func nextPowerOfTwo(n int) int {
	return 1 << bits.Len(uint(n-1))
}

// Mid is the index of the Nyquist bin of a segment.
func (p SegmentPlan) Mid() int {
	return p.Length / 2
}

// Samples is the number of samples covered by all segments.
func (p SegmentPlan) Samples() int {
	return p.Length * p.Count
}

// MaxBitsPerSegment is the advisory per-segment budget used by
// MaxMessageBytes: half of the bins strictly between DC and Nyquist.
func (p SegmentPlan) MaxBitsPerSegment() int {
	return (p.Mid() - 1) / 2
}

// Slice returns the bounds of the bits carried by segment i when bitCount
// bits are spread proportionally over all segments.
func (p SegmentPlan) Slice(i, bitCount int) (start, end int) {
	start = i * bitCount / p.Count
	end = (i + 1) * bitCount / p.Count
	return start, end
}

// checkCarriers rejects a bit count whose widest slice would overrun the
// carrier window of a segment.
func (p SegmentPlan) checkCarriers(bitCount int) error {
	if p.Count == 0 {
		return fmt.Errorf("%w: no segments to carry %d bits", ErrCapacityExceeded, bitCount)
	}
	width := bitCount / p.Count
	if bitCount%p.Count != 0 {
		width++
	}
	if available := p.Mid() - 1; width > available {
		return fmt.Errorf("%w: segment needs %d carrier bins, only %d available", ErrCapacityExceeded, width, available)
	}
	return nil
}
