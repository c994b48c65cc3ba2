package stego

import "fmt"

// Accuracy summarises how well an extracted message matches the original.
type Accuracy struct {
	BitErrors    int
	TotalBits    int
	BitErrorRate float64
	ExactMatch   bool
}

// Compare counts mismatched bits between two messages of equal length.
func Compare(original, extracted []byte) (Accuracy, error) {
	if len(original) != len(extracted) {
		return Accuracy{}, fmt.Errorf("%w: original is %d bits, extracted is %d bits",
			ErrLengthMismatch, BitsInByte*len(original), BitsInByte*len(extracted))
	}
	if len(original) == 0 {
		return Accuracy{}, fmt.Errorf("%w: nothing to compare", ErrInvalidInput)
	}

	a := ToBits(original)
	b := ToBits(extracted)

	mismatched := 0
	for i := range a {
		if a[i] != b[i] {
			mismatched++
		}
	}

	return Accuracy{
		BitErrors:    mismatched,
		TotalBits:    len(a),
		BitErrorRate: float64(mismatched) / float64(len(a)),
		ExactMatch:   mismatched == 0,
	}, nil
}
