package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

// Kernel normalization target: taps sum to unit DC gain.
const kernelGainTarget = 1.0

// GaussianKernel returns the sampled Gaussian exp(−x²/2σ²) for
// x = −radius..radius, normalized so the taps sum to 1.
func GaussianKernel(sigma float64, radius int) ([]float64, error) {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return nil, fmt.Errorf("%w: %v (must be positive and finite)", ErrInvalidSigma, sigma)
	}
	if radius < 0 {
		return nil, fmt.Errorf("invalid kernel radius: %d (must be non-negative)", radius)
	}

	kernel := make([]float64, 2*radius+1)
	scale := -0.5 / (sigma * sigma)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(x * x * scale)
	}

	sum := f64.Sum(kernel)
	f64.Scale(kernel, kernel, kernelGainTarget/sum)

	return kernel, nil
}

// DirectBlur is the brute-force separable convolution of a row-major
// plane with a symmetric kernel of odd length. Samples outside the plane
// are zero, matching the recursive filter's boundary policy. dst and src
// must hold width*height samples.
func DirectBlur(dst, src []float64, width, height int, kernel []float64) {
	radius := len(kernel) / 2
	temp := make([]float64, width*height)

	padded := make([]float64, max(width, height)+2*radius)
	column := make([]float64, height)

	for y := range height {
		clear(padded)
		copy(padded[radius:], src[y*width:(y+1)*width])
		f64.ConvolveValid(temp[y*width:(y+1)*width], padded[:width+2*radius], kernel)
	}

	for x := range width {
		clear(padded)
		for y := range height {
			padded[radius+y] = temp[y*width+x]
		}
		f64.ConvolveValid(column, padded[:height+2*radius], kernel)
		for y := range height {
			dst[y*width+x] = column[y]
		}
	}
}
