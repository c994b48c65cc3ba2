package stego

import (
	"errors"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		original  []byte
		extracted []byte
		errors    int
		rate      float64
		exact     bool
	}{
		{"identical", []byte("testtest"), []byte("testtest"), 0, 0, true},
		{"one_bit", []byte{0x00}, []byte{0x01}, 1, 0.125, false},
		{"inverted", []byte{0x0F, 0xF0}, []byte{0xF0, 0x0F}, 16, 1, false},
		{"half", []byte{0xFF}, []byte{0xF0}, 4, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := Compare(tt.original, tt.extracted)
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			if acc.BitErrors != tt.errors || acc.BitErrorRate != tt.rate || acc.ExactMatch != tt.exact {
				t.Fatalf("Compare = %+v, want errors %d rate %v exact %v", acc, tt.errors, tt.rate, tt.exact)
			}
			if acc.TotalBits != BitsInByte*len(tt.original) {
				t.Fatalf("total bits = %d", acc.TotalBits)
			}
		})
	}
}

func TestCompareRejectsMismatchedLengths(t *testing.T) {
	if _, err := Compare([]byte("ab"), []byte("abc")); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
	if _, err := Compare(nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty error = %v, want ErrInvalidInput", err)
	}
}
