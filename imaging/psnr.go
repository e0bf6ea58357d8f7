// Package imaging decodes carrier images into flat sample buffers, encodes
// them back into lossless containers, and measures embedding distortion.
package imaging

import (
	"fmt"
	"math"
)

// CalculatePSNR compares two 8-bit sample buffers. Buffers of different or
// zero length yield 0.
func CalculatePSNR(original, stego []byte) float64 {
	if len(original) != len(stego) {
		return 0.0
	}

	if len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	// If MSE is 0, images are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX / sqrt(MSE)), MAX = 255 for 8-bit samples
	maxSampleValue := 255.0
	return 20 * math.Log10(maxSampleValue/math.Sqrt(mse))
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}

// FormatPSNR renders a PSNR value for headers and log fields.
func FormatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", psnr)
}
