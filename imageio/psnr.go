package imageio

import (
	"fmt"
	"math"
)

const maxChannelValue = 255.0

// CalculatePSNR compares the RGB channels of two canvases of equal size and
// returns the peak signal-to-noise ratio in dB. Identical canvases yield +Inf.
func CalculatePSNR(original, stego *Canvas) (float64, error) {
	width, height := original.Width(), original.Height()
	if width != stego.Width() || height != stego.Height() {
		return 0, fmt.Errorf("canvas size mismatch: %dx%d vs %dx%d", width, height, stego.Width(), stego.Height())
	}
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("empty canvas")
	}

	var mse float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r1, g1, b1 := original.Pixel(x, y)
			r2, g2, b2 := stego.Pixel(x, y)
			for _, diff := range [3]float64{
				float64(r1) - float64(r2),
				float64(g1) - float64(g2),
				float64(b1) - float64(b2),
			} {
				mse += diff * diff
			}
		}
	}
	mse /= float64(width * height * 3)

	if mse == 0 {
		return math.Inf(1), nil
	}

	// PSNR = 20 * log10(MAX / sqrt(MSE))
	return 20 * math.Log10(maxChannelValue/math.Sqrt(mse)), nil
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
