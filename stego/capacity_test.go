package stego

import "testing"

func TestMaxMessageBytes(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{-5, 0},
		{0, 0},
		{1, 0},
		{16, 1},
		{100, 15},
		{44100, 8191},
	}

	for _, tt := range tests {
		if got := MaxMessageBytes(tt.length); got != tt.want {
			t.Errorf("MaxMessageBytes(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestMaxMessageBytesIsNonDecreasing(t *testing.T) {
	prev := 0
	for length := 0; length <= 70000; length += 7 {
		got := MaxMessageBytes(length)
		if got < prev {
			t.Fatalf("MaxMessageBytes(%d) = %d < %d for a shorter signal", length, got, prev)
		}
		prev = got
	}
}

func TestEstimateCapacity(t *testing.T) {
	report, err := EstimateCapacity(44100, 1)
	if err != nil {
		t.Fatalf("EstimateCapacity: %v", err)
	}
	if report.MaxMessageBytes != 8191 {
		t.Fatalf("max = %d, want 8191", report.MaxMessageBytes)
	}
	if report.Advisory != (SegmentPlan{Length: 262144, Count: 1}) {
		t.Fatalf("advisory plan = %+v", report.Advisory)
	}
	if report.Encoder != (SegmentPlan{Length: 32, Count: 1379}) {
		t.Fatalf("encoder plan = %+v", report.Encoder)
	}
	if report.EncodedLength != 44128 || !report.Fits {
		t.Fatalf("report = %+v", report)
	}

	report, err = EstimateCapacity(16, 2)
	if err != nil {
		t.Fatalf("EstimateCapacity: %v", err)
	}
	if report.Fits {
		t.Fatalf("2 bytes should not fit 16 samples: %+v", report)
	}

	report, err = EstimateCapacity(1000, 0)
	if err != nil {
		t.Fatalf("EstimateCapacity: %v", err)
	}
	if report.Encoder != (SegmentPlan{}) || report.Fits {
		t.Fatalf("report without message = %+v", report)
	}
}
