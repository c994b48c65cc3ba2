package stego

import (
	"bytes"
	"errors"
	"testing"
)

func TestToBits(t *testing.T) {
	bits := ToBits([]byte("A"))
	want := []uint8{0, 1, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(bits, want) {
		t.Fatalf("ToBits(\"A\") = %v, want %v", bits, want)
	}

	bits = ToBits([]byte{0xFF, 0x00})
	if len(bits) != 16 {
		t.Fatalf("got %d bits, want 16", len(bits))
	}
	for i, b := range bits {
		want := uint8(0)
		if i < 8 {
			want = 1
		}
		if b != want {
			t.Fatalf("bit %d = %d, want %d", i, b, want)
		}
	}
}

func TestFromBitsInvertsToBits(t *testing.T) {
	message := []byte{0x00, 0x7F, 0x80, 0xA5, 0xFF, 'h', 'i'}
	got, dropped := FromBits(ToBits(message))
	if dropped != 0 {
		t.Fatalf("dropped %d bits from a whole number of bytes", dropped)
	}
	if !bytes.Equal(got, message) {
		t.Fatalf("FromBits(ToBits(m)) = %v, want %v", got, message)
	}
}

func TestFromBitsDropsTrailingBits(t *testing.T) {
	bits := append(ToBits([]byte("A")), 1, 0, 1)
	got, dropped := FromBits(bits)
	if dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
	if string(got) != "A" {
		t.Fatalf("message = %q, want \"A\"", got)
	}
}

func TestPhaseMapping(t *testing.T) {
	if BitToPhase(0) != PhaseZero || BitToPhase(1) != PhaseOne {
		t.Fatalf("BitToPhase maps 0->%v 1->%v", BitToPhase(0), BitToPhase(1))
	}
	if PhaseZero <= 0 || PhaseOne >= 0 {
		t.Fatalf("phase levels have the wrong sign")
	}

	tests := []struct {
		phase float64
		bit   uint8
	}{
		{PhaseOne, 1},
		{PhaseZero, 0},
		{0, 0},
		{-1e-12, 1},
		{3, 0},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := PhaseToBit(tt.phase); got != tt.bit {
			t.Errorf("PhaseToBit(%v) = %d, want %d", tt.phase, got, tt.bit)
		}
	}
}

func TestMessageFromCodes(t *testing.T) {
	message, err := MessageFromCodes([]int{0, 65, 255})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(message, []byte{0, 65, 255}) {
		t.Fatalf("message = %v", message)
	}

	for _, codes := range [][]int{{65, 300}, {-1}, {256}} {
		if _, err := MessageFromCodes(codes); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("MessageFromCodes(%v) error = %v, want ErrInvalidInput", codes, err)
		}
	}
}

func TestMessageText(t *testing.T) {
	message, err := MessageFromText("café")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(message, []byte{'c', 'a', 'f', 0xE9}) {
		t.Fatalf("message = %v", message)
	}
	if got := MessageText(message); got != "café" {
		t.Fatalf("MessageText = %q, want \"café\"", got)
	}

	if _, err := MessageFromText("Ĭ"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("code 300 error = %v, want ErrInvalidInput", err)
	}
}
