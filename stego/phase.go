package stego

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"github.com/mjibson/go-dsp/fft"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"phase-stego-backend/models"
)

// DefaultCarrierAmplitude keeps every carrier above the worst-case int16
// rounding error of a segment, which is Length/2 per bin.
const DefaultCarrierAmplitude = 2.0

// PhaseCoder hides messages in the phase of the bins just below the Nyquist
// frequency of each segment, mirroring them above it so the signal stays
// real.
type PhaseCoder struct {
	workers          int
	carrierAmplitude float64
	logger           logrus.FieldLogger
}

// EmbedResult is the outcome of PhaseCoder.Embed.
type EmbedResult struct {
	Buffer   *models.AudioBuffer
	Plan     SegmentPlan
	BitCount int
	// Clipped counts reconstructed samples clamped to the int16 range.
	Clipped int
}

func NewPhaseCoder(config *models.StegoConfig, logger logrus.FieldLogger) *PhaseCoder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	coder := &PhaseCoder{
		workers:          runtime.GOMAXPROCS(0),
		carrierAmplitude: DefaultCarrierAmplitude,
		logger:           logger.WithField("component", "phase_coder"),
	}
	if config != nil {
		if config.Workers > 0 {
			coder.workers = config.Workers
		}
		if config.CarrierAmplitude > 0 {
			coder.carrierAmplitude = config.CarrierAmplitude
		}
		if config.NoCarrierFloor {
			coder.carrierAmplitude = 0
		}
	}

	return coder
}

// Embed writes message into a mono copy of buf. The returned buffer is
// padded with silence, or truncated, to a whole number of segments.
func (c *PhaseCoder) Embed(ctx context.Context, buf *models.AudioBuffer, message []byte) (*EmbedResult, error) {
	if len(message) == 0 {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: no audio", ErrInvalidInput)
	}

	mono := buf.Mono()
	if capacity := MaxMessageBytes(len(mono.Samples)); len(message) > capacity {
		return nil, fmt.Errorf("%w: message is %d bytes, %d samples hold at most %d",
			ErrCapacityExceeded, len(message), len(mono.Samples), capacity)
	}

	bitCount := BitsInByte * len(message)
	plan, err := PlanSegments(len(mono.Samples), bitCount)
	if err != nil {
		return nil, err
	}
	if err := plan.checkCarriers(bitCount); err != nil {
		return nil, err
	}

	logger := c.logger.WithFields(logrus.Fields{
		"bits":           bitCount,
		"segment_length": plan.Length,
		"segments":       plan.Count,
		"samples":        len(mono.Samples),
	})
	logger.Debug("Embedding message")

	cover := mono.Resized(plan.Samples())
	phases := make([]float64, bitCount)
	for i, bit := range ToBits(message) {
		phases[i] = BitToPhase(bit)
	}

	out := make([]int16, plan.Samples())
	floor := c.minCarrierMagnitude(plan.Length)
	ranges := c.segmentRanges(plan.Count)
	clipped := make([]int, len(ranges))

	err = c.forEachRange(ctx, ranges, func(r int, first, last int) error {
		for i := first; i < last; i++ {
			lo, hi := i*plan.Length, (i+1)*plan.Length
			start, end := plan.Slice(i, bitCount)
			clipped[r] += embedSegment(cover.Samples[lo:hi], out[lo:hi], phases[start:end], floor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &EmbedResult{
		Buffer: &models.AudioBuffer{
			Samples:    out,
			SampleRate: buf.SampleRate,
			Channels:   1,
		},
		Plan:     plan,
		BitCount: bitCount,
	}
	for _, n := range clipped {
		result.Clipped += n
	}
	if result.Clipped > 0 {
		logger.WithField("clipped", result.Clipped).Warn("Reconstructed samples clamped to 16-bit range")
	}

	return result, nil
}

// Extract reads bitCount bits back from buf. bitCount must be the value used
// when embedding: the segment geometry is derived from it and the signal
// carries no length of its own.
//
// Embed emits whole segments only, so buf must hold a whole number of them.
// A stego signal that was trimmed, or had samples appended, is refused with
// ErrGeometryMismatch rather than decoded from a partial segment.
func (c *PhaseCoder) Extract(ctx context.Context, buf *models.AudioBuffer, bitCount int) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: no audio", ErrInvalidInput)
	}

	mono := buf.Mono()
	plan, err := PlanSegments(len(mono.Samples), bitCount)
	if err != nil {
		return nil, err
	}
	if len(mono.Samples) == 0 || len(mono.Samples)%plan.Length != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-sample segments for %d bits",
			ErrGeometryMismatch, len(mono.Samples), plan.Length, bitCount)
	}
	if err := plan.checkCarriers(bitCount); err != nil {
		return nil, err
	}

	logger := c.logger.WithFields(logrus.Fields{
		"bits":           bitCount,
		"segment_length": plan.Length,
		"segments":       plan.Count,
	})
	logger.Debug("Extracting message")

	bits := make([]uint8, bitCount)
	err = c.forEachRange(ctx, c.segmentRanges(plan.Count), func(_ int, first, last int) error {
		for i := first; i < last; i++ {
			start, end := plan.Slice(i, bitCount)
			extractSegment(mono.Samples[i*plan.Length:(i+1)*plan.Length], bits[start:end])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	message, dropped := FromBits(bits)
	if dropped > 0 {
		logger.WithField("dropped_bits", dropped).Warn("Bit count is not a multiple of 8, trailing bits discarded")
	}

	return message, nil
}

// minCarrierMagnitude is the spectral magnitude of a bin pair whose
// time-domain amplitude is carrierAmplitude sample units.
func (c *PhaseCoder) minCarrierMagnitude(length int) float64 {
	return c.carrierAmplitude * float64(length) / 2
}

// segmentRanges splits count segments into contiguous [first, last) ranges,
// one per worker at most.
func (c *PhaseCoder) segmentRanges(count int) [][2]int {
	workers := max(c.workers, 1)
	size := (count + workers - 1) / workers
	if size == 0 {
		return nil
	}

	ranges := make([][2]int, 0, workers)
	for first := 0; first < count; first += size {
		ranges = append(ranges, [2]int{first, min(first+size, count)})
	}
	return ranges
}

// forEachRange runs fn once per range. Ranges are disjoint, so fn may write
// its own slice of shared output without locking.
func (c *PhaseCoder) forEachRange(ctx context.Context, ranges [][2]int, fn func(r, first, last int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.workers, 1))

	for r, bounds := range ranges {
		r, bounds := r, bounds
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(r, bounds[0], bounds[1])
		})
	}

	return g.Wait()
}

// embedSegment writes phases into one segment and returns how many output
// samples had to be clamped. A segment without bits is copied unchanged.
func embedSegment(in, out []int16, phases []float64, floor float64) int {
	if len(phases) == 0 {
		copy(out, in)
		return 0
	}

	signal := make([]float64, len(in))
	for i, s := range in {
		signal[i] = float64(s)
	}

	spectrum := fft.FFTReal(signal)
	writeCarriers(spectrum, phases, floor)

	clipped := 0
	for i, v := range fft.IFFT(spectrum) {
		var clamped bool
		out[i], clamped = quantize(real(v))
		if clamped {
			clipped++
		}
	}
	return clipped
}

// writeCarriers sets the phase of bins [mid-w, mid) to phases and the phase
// of bins (mid, mid+w] to the reversed negation, w = len(phases). Both bins
// of a pair share one magnitude, raised to floor if needed, so the spectrum
// stays exactly Hermitian.
func writeCarriers(spectrum []complex128, phases []float64, floor float64) {
	mid := len(spectrum) / 2
	width := len(phases)

	for k, phase := range phases {
		below := mid - width + k
		above := len(spectrum) - below

		magnitude := math.Max(cmplx.Abs(spectrum[below]), floor)
		spectrum[below] = cmplx.Rect(magnitude, phase)
		spectrum[above] = cmplx.Rect(magnitude, -phase)
	}
}

// extractSegment reads len(bits) carrier phases of one segment into bits.
func extractSegment(samples []int16, bits []uint8) {
	if len(bits) == 0 {
		return
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = float64(s)
	}

	spectrum := fft.FFTReal(signal)
	mid := len(spectrum) / 2
	for k := range bits {
		bits[k] = PhaseToBit(cmplx.Phase(spectrum[mid-len(bits)+k]))
	}
}

// quantize rounds half away from zero and clamps to the int16 range.
func quantize(v float64) (int16, bool) {
	r := math.Round(v)
	switch {
	case r > math.MaxInt16:
		return math.MaxInt16, true
	case r < math.MinInt16:
		return math.MinInt16, true
	}
	return int16(r), false
}
