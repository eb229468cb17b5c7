package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	defaultResponsePoints = 256 // FFT length when none is given
	minMagnitude          = 1e-10
	dbMultiplier          = 20.0
)

// FrequencyResponse is the magnitude response of a real kernel from DC up
// to Nyquist.
type FrequencyResponse struct {
	// Frequencies in cycles per sample, 0 to 0.5.
	Frequencies []float64

	// Magnitude is |H(f)| on a linear scale.
	Magnitude []float64
}

// ComputeFrequencyResponse evaluates the magnitude response of taps with a
// real FFT of fftSize points (zero padded). A non-positive fftSize selects
// 256 points.
func ComputeFrequencyResponse(taps []float64, fftSize int) (FrequencyResponse, error) {
	if fftSize <= 0 {
		fftSize = defaultResponsePoints
	}
	if len(taps) > fftSize {
		return FrequencyResponse{}, fmt.Errorf("fft size %d shorter than kernel (%d taps)", fftSize, len(taps))
	}

	seq := make([]float64, fftSize)
	copy(seq, taps)

	fft := fourier.NewFFT(fftSize)
	coeffs := fft.Coefficients(nil, seq)

	response := FrequencyResponse{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		response.Frequencies[i] = fft.Freq(i)
		response.Magnitude[i] = cmplx.Abs(c)
	}
	return response, nil
}

// FrequencyResponse returns the magnitude response of the recursive
// filter's impulse response.
func (g *RecursiveGaussian) FrequencyResponse(fftSize int) (FrequencyResponse, error) {
	return ComputeFrequencyResponse(g.ImpulseResponse(), fftSize)
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
