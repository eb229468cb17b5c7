package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-iir-blur/internal/mathutil"
)

const (
	// Empirical fit of the equivalent kernel half-width, equation (57):
	// R = 3.2795·σ + 0.2546.
	radiusSlope  = 3.2795
	radiusOffset = 0.2546

	// minIntegerRadius is the smallest N accepted by IntegerRadius. At
	// N = 1 every ωₖ is an odd multiple of π/2, the rows p and r of (56)
	// coincide and the system is singular.
	minIntegerRadius = 2

	// maxRadius bounds the fit far beyond any plane dimension so that N
	// stays a valid int offset.
	maxRadius = 1 << 24

	// Maximum deviation of Σ βₖ·pₖ from 1, equation (39).
	normalizationTolerance = 1e-12

	// NumResonances is the number of second-order sections (k = 1, 3, 5).
	NumResonances = 3

	// BlockSize is the number of outputs computed together by the unrolled
	// recurrence.
	BlockSize = 4
)

// RadiusMode selects which radius enters the derivation.
type RadiusMode int

const (
	// FittedRadius derives every coefficient from the real-valued fit R.
	// Only the sample offsets of the recurrence use the truncated N. The
	// response is close to a Gaussian but its cosine terms do not cancel
	// past the support, so a small oscillating tail remains.
	FittedRadius RadiusMode = iota

	// IntegerRadius truncates the fit to N before deriving. The response
	// then has exact support [−(N−1), N−1], is symmetric and sums to 1.
	// Requires N >= 2 (sigma above about 0.532).
	IntegerRadius
)

// String returns the mode name.
func (m RadiusMode) String() string {
	switch m {
	case FittedRadius:
		return "fitted"
	case IntegerRadius:
		return "integer"
	default:
		return fmt.Sprintf("RadiusMode(%d)", int(m))
	}
}

// Errors returned by DesignRecursiveGaussian.
var (
	// ErrInvalidSigma indicates a sigma that is not a positive finite number,
	// or one too small for the requested radius mode.
	ErrInvalidSigma = errors.New("invalid sigma")

	// ErrSingularMatrix indicates the coefficient system A·β = γ has no
	// unique solution.
	ErrSingularMatrix = errors.New("coefficient matrix is not invertible")

	// ErrNormalization indicates the solved weights do not sum to unit DC
	// gain. This is a derivation defect, not a caller error.
	ErrNormalization = errors.New("recursive gaussian weights are not normalized")
)

// Resonance holds the coefficients of one second-order section of the
// recurrence y[n] = Gain·x[n] − Feedback·y[n−1] − y[n−2].
type Resonance struct {
	// K is the odd harmonic index (1, 3 or 5).
	K int

	// Omega is the angular frequency k·π/(2R).
	Omega float64

	// Beta is the weight of this cosine term in the truncated kernel.
	Beta float64

	// Gain is n2 = −β·cos(ω·(R+1)).
	Gain float64

	// Feedback is d1 = −2·cos(ω).
	Feedback float64

	// MulIn[j] multiplies the input i of a block for output j+i.
	MulIn [BlockSize]float64

	// MulPrev[j] multiplies the last output before the block for output j.
	MulPrev [BlockSize]float64

	// MulPrev2[j] multiplies the second to last output before the block.
	MulPrev2 [BlockSize]float64
}

// RecursiveGaussian implements "Recursive Implementation of the Gaussian
// Filter Using Truncated Cosine Functions" by Charalampidis [2016].
//
// The kernel is the sum of three resonances whose inputs are the samples
// N+1 to the left and N−1 to the right of the current position. A value is
// immutable once returned by DesignRecursiveGaussian.
type RecursiveGaussian struct {
	sigma         float64
	mode          RadiusMode
	derivation    float64
	radius        int
	normalization float64
	resonances    [NumResonances]Resonance
}

// FittedRadiusForSigma returns the real-valued half-width R of (57).
func FittedRadiusForSigma(sigma float64) float64 {
	return radiusSlope*sigma + radiusOffset
}

// RadiusForSigma returns the integer half-width N = ⌊R⌋ used as the
// sample offset of the recurrence.
func RadiusForSigma(sigma float64) int {
	return int(FittedRadiusForSigma(sigma))
}

// ValidateSigma reports whether sigma can be designed in the given mode
// without running the derivation.
func ValidateSigma(sigma float64, mode RadiusMode) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return fmt.Errorf("%w: %v (must be positive and finite)", ErrInvalidSigma, sigma)
	}
	if float64(maxRadius) < FittedRadiusForSigma(sigma) {
		return fmt.Errorf("%w: %v yields a radius above %d", ErrInvalidSigma, sigma, maxRadius)
	}

	switch mode {
	case FittedRadius:
		// R > 0 holds for every positive sigma; degenerate systems are
		// caught by the solve and the normalization check.
	case IntegerRadius:
		if n := RadiusForSigma(sigma); n < minIntegerRadius {
			return fmt.Errorf("%w: %v yields integer radius %d (minimum %d)",
				ErrInvalidSigma, sigma, n, minIntegerRadius)
		}
	default:
		return fmt.Errorf("%w: unknown radius mode %d", ErrInvalidSigma, int(mode))
	}
	return nil
}

// DesignRecursiveGaussian derives the recursive filter coefficients for
// the given standard deviation. Equation numbers refer to the paper.
func DesignRecursiveGaussian(sigma float64, mode RadiusMode) (*RecursiveGaussian, error) {
	if err := ValidateSigma(sigma, mode); err != nil {
		return nil, err
	}

	// (57), "N". Only IntegerRadius truncates here.
	radius := FittedRadiusForSigma(sigma)
	if mode == IntegerRadius {
		radius = math.Trunc(radius)
	}

	// Table I, first row
	piDiv2R := math.Pi / (2 * radius)
	omega := [NumResonances]float64{piDiv2R, 3 * piDiv2R, 5 * piDiv2R}

	// (37), k={1,3,5}
	p1 := 1 / math.Tan(0.5*omega[0])
	p3 := -1 / math.Tan(0.5*omega[1])
	p5 := 1 / math.Tan(0.5*omega[2])

	// (44), k={1,3,5}
	r1 := p1 * p1 / math.Sin(omega[0])
	r3 := -p3 * p3 / math.Sin(omega[1])
	r5 := p5 * p5 / math.Sin(omega[2])

	// (50), k={1,3,5}
	negHalfSigma2 := -0.5 * sigma * sigma
	var rho [NumResonances]float64
	for i, w := range omega {
		rho[i] = math.Exp(negHalfSigma2*w*w) / radius
	}

	// second part of (52), k1,k2 = 1,3; 3,5; 5,1
	d13 := p1*r3 - r1*p3
	d35 := p3*r5 - r3*p5
	d51 := p5*r1 - r5*p1

	// (52), k=5
	zeta15 := d35 / d13
	zeta35 := d51 / d13

	// (56)
	a := [mathutil.Dim3][mathutil.Dim3]float64{
		{p1, p3, p5},
		{r1, r3, r5},
		{zeta15, zeta35, 1},
	}
	// (55)
	gamma := [mathutil.Dim3]float64{
		1,
		radius*radius - sigma*sigma,
		zeta15*rho[0] + zeta35*rho[1] + rho[2],
	}
	// (53)
	beta, err := mathutil.Solve3(a, gamma)
	if err != nil {
		return nil, fmt.Errorf("%w: sigma %v: %v", ErrSingularMatrix, sigma, err)
	}

	// (39): the weights must be normalized.
	sum := mathutil.Dot3(beta, a[0])
	if math.IsNaN(sum) || math.Abs(sum-1) >= normalizationTolerance {
		return nil, fmt.Errorf("%w: sigma %v: Σβp = %.17g", ErrNormalization, sigma, sum)
	}

	g := &RecursiveGaussian{
		sigma:         sigma,
		mode:          mode,
		derivation:    radius,
		radius:        int(radius),
		normalization: sum,
	}
	for i := range NumResonances {
		// (33)
		gain := -beta[i] * math.Cos(omega[i]*(radius+1))
		feedback := -2 * math.Cos(omega[i])

		res := Resonance{
			K:        2*i + 1,
			Omega:    omega[i],
			Beta:     beta[i],
			Gain:     gain,
			Feedback: feedback,
		}
		res.MulIn, res.MulPrev, res.MulPrev2 = unrollCoefficients(gain, feedback)
		g.resonances[i] = res
	}

	return g, nil
}

// unrollCoefficients expands (35) for four consecutive outputs:
//
//	o0 = n·i0 − d·p − pp
//	o1 = n·i1 − d·o0 − p
//	o2 = n·i2 − d·o1 − o0
//	o3 = n·i3 − d·o2 − o1
//
// and gathers the terms of each output in i0, p (prev) and pp (prev2). The
// coefficient of input i_m in output j is mulIn[j−m].
func unrollCoefficients(n, d float64) (mulIn, mulPrev, mulPrev2 [BlockSize]float64) {
	d2 := d * d

	mulPrev[0] = -d
	mulPrev[1] = d2 - 1
	mulPrev[2] = -d2*d + 2*d
	mulPrev[3] = d2*d2 - 3*d2 + 1

	mulPrev2[0] = -1
	mulPrev2[1] = d
	mulPrev2[2] = -d2 + 1
	mulPrev2[3] = d2*d - 2*d

	mulIn[0] = n
	mulIn[1] = -d * n
	mulIn[2] = d2*n - n
	mulIn[3] = -d2*d*n + 2*d*n

	return mulIn, mulPrev, mulPrev2
}

// Sigma returns the standard deviation the filter was designed for.
func (g *RecursiveGaussian) Sigma() float64 {
	return g.sigma
}

// Mode returns the radius mode the filter was designed with.
func (g *RecursiveGaussian) Mode() RadiusMode {
	return g.mode
}

// DerivationRadius returns the radius used in the derivation: R for
// FittedRadius, N for IntegerRadius.
func (g *RecursiveGaussian) DerivationRadius() float64 {
	return g.derivation
}

// Radius returns the integer half-width N.
func (g *RecursiveGaussian) Radius() int {
	return g.radius
}

// Normalization returns Σ βₖ·pₖ, which is 1 within 1e-12.
func (g *RecursiveGaussian) Normalization() float64 {
	return g.normalization
}

// Resonances returns a copy of the three sections, ordered k = 1, 3, 5.
func (g *RecursiveGaussian) Resonances() [NumResonances]Resonance {
	return g.resonances
}

// Filter1D applies the serial recurrence to src and writes the result to
// dst. Samples outside src are zero. dst and src must have equal length
// and must not overlap.
func (g *RecursiveGaussian) Filter1D(dst, src []float64) {
	size := len(src)
	radius := g.radius

	var prev, prev2 [NumResonances]float64
	for n := FirstStep(radius); n < size; n++ {
		left := n - radius - 1
		right := n + radius - 1

		var in float64
		if left >= 0 {
			in += src[left]
		}
		if right >= 0 && right < size {
			in += src[right]
		}

		var out float64
		for k := range g.resonances {
			res := &g.resonances[k]
			y := res.Gain*in - res.Feedback*prev[k] - prev2[k]
			prev2[k] = prev[k]
			prev[k] = y
			out += y
		}

		if n >= 0 {
			dst[n] = out
		}
	}
}

// FirstStep returns the first position at which the recurrence is
// evaluated for offset radius: the earliest n whose right input n+N−1 can
// be inside the signal, and never after the first output.
func FirstStep(radius int) int {
	return min(1-radius, 0)
}

// ImpulseResponse returns the response to a unit impulse at the center of
// a zero signal of length 2·Radius+1. For IntegerRadius the taps outside
// [−(N−1), N−1] vanish up to rounding; for FittedRadius the returned taps
// are the truncation of a response that continues past the window.
func (g *RecursiveGaussian) ImpulseResponse() []float64 {
	size := 2*g.radius + 1
	impulse := make([]float64, size)
	impulse[g.radius] = 1

	response := make([]float64, size)
	g.Filter1D(response, impulse)
	return response
}
