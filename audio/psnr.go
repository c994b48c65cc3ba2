package audio

import (
	"math"
)

// CalculatePSNR compares two 16-bit signals over their common length. The
// stego signal may be longer than the cover because of segment padding.
func CalculatePSNR(original, stego []int16) float64 {
	n := min(len(original), len(stego))
	if n == 0 {
		return 0.0
	}

	var mse float64
	for i := 0; i < n; i++ {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(n)

	// If MSE is 0, signals are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	maxSignalValue := float64(math.MaxInt16)
	return 20 * math.Log10(maxSignalValue/math.Sqrt(mse))
}

// ValidatePSNR reports whether psnr reaches threshold dB. Identical signals
// (+Inf) always pass, a non-positive threshold passes everything.
func ValidatePSNR(psnr, threshold float64) bool {
	if threshold <= 0 || math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
