package stego

// MaxMessageBytes estimates how many message bytes audio of audioLength
// samples can carry. The estimate plans segments from the audio length, not
// from a message, so its geometry differs from the one Embed uses; Embed
// still refuses anything above it.
func MaxMessageBytes(audioLength int) int {
	if audioLength <= 0 {
		return 0
	}

	plan, err := PlanSegments(audioLength, audioLength)
	if err != nil {
		return 0
	}

	maxBits := plan.Count * plan.MaxBitsPerSegment()
	return maxBits / BitsInByte
}

// CapacityReport puts the advisory audio-derived geometry next to the
// geometry Embed will use for a concrete message.
type CapacityReport struct {
	AudioLength     int
	MaxMessageBytes int
	Advisory        SegmentPlan

	MessageBytes int
	// Encoder is zero when MessageBytes is zero.
	Encoder SegmentPlan
	// EncodedLength is the sample count of the stego output.
	EncodedLength int
	Fits          bool
}

// EstimateCapacity reports the capacity of audioLength samples and, when
// messageBytes is positive, how Embed would lay that message out.
func EstimateCapacity(audioLength, messageBytes int) (CapacityReport, error) {
	report := CapacityReport{
		AudioLength:     audioLength,
		MaxMessageBytes: MaxMessageBytes(audioLength),
		MessageBytes:    messageBytes,
	}

	if audioLength > 0 {
		advisory, err := PlanSegments(audioLength, audioLength)
		if err != nil {
			return report, err
		}
		report.Advisory = advisory
	}

	if messageBytes <= 0 {
		return report, nil
	}

	encoder, err := PlanSegments(audioLength, BitsInByte*messageBytes)
	if err != nil {
		return report, err
	}
	report.Encoder = encoder
	report.EncodedLength = encoder.Samples()
	report.Fits = messageBytes <= report.MaxMessageBytes && encoder.checkCarriers(BitsInByte*messageBytes) == nil

	return report, nil
}
