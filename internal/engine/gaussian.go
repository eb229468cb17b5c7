package engine

import (
	"fmt"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-iir-blur/internal/filter"
	"github.com/tphakala/go-iir-blur/internal/simdops"
)

const numResonances = filter.NumResonances

// Gaussian applies a recursive Gaussian to row-major planes in two passes.
//
// Type parameter F must be float32 or float64. Coefficients are always
// derived in float64 and converted once.
//
// A Gaussian is not safe for concurrent use: the vertical pass reuses an
// internal ring buffer.
type Gaussian[F simdops.Float] struct {
	design *filter.RecursiveGaussian
	radius int

	// Scalar coefficients for the bounds-checked loops and the serial path.
	gain     [numResonances]F
	feedback [numResonances]F

	// Broadcast coefficients for the vertical pass.
	n2 [numResonances]vec4[F]
	d1 [numResonances]vec4[F]

	// mulIn[k][i] is the input multiplier vector shifted up by i lanes, so
	// lane j holds the weight of block input i in output j (zero for j < i).
	mulIn    [numResonances][lanes]vec4[F]
	mulPrev  [numResonances]vec4[F]
	mulPrev2 [numResonances]vec4[F]

	// ring holds ringSlots rows of tileLanes outputs per resonance.
	ring []F
}

// NewGaussian designs a recursive Gaussian for sigma.
func NewGaussian[F simdops.Float](sigma float64, mode filter.RadiusMode) (*Gaussian[F], error) {
	design, err := filter.DesignRecursiveGaussian(sigma, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to design recursive gaussian: %w", err)
	}
	return NewGaussianFromDesign[F](design), nil
}

// NewGaussianFromDesign converts a designed filter to precision F.
func NewGaussianFromDesign[F simdops.Float](design *filter.RecursiveGaussian) *Gaussian[F] {
	g := &Gaussian[F]{
		design: design,
		radius: design.Radius(),
		ring:   make([]F, numResonances*ringSlots*tileLanes),
	}

	for k, res := range design.Resonances() {
		g.gain[k] = F(res.Gain)
		g.feedback[k] = F(res.Feedback)
		g.n2[k] = broadcast(F(res.Gain))
		g.d1[k] = broadcast(F(res.Feedback))

		var mulIn vec4[F]
		for j := range lanes {
			mulIn[j] = F(res.MulIn[j])
			g.mulPrev[k][j] = F(res.MulPrev[j])
			g.mulPrev2[k][j] = F(res.MulPrev2[j])
		}
		for i := range lanes {
			g.mulIn[k][i] = mulIn.shiftUp(i)
		}
	}

	return g
}

// Design returns the float64 filter design.
func (g *Gaussian[F]) Design() *filter.RecursiveGaussian {
	return g.design
}

// Radius returns the integer half-width of the equivalent kernel.
func (g *Gaussian[F]) Radius() int {
	return g.radius
}

// Apply blurs src into dst using temp as the intermediate plane. All three
// must hold width*height samples; dst may alias src but not temp. When
// serial is true both passes evaluate the plain recurrence sample by
// sample.
func (g *Gaussian[F]) Apply(dst, src, temp []F, width, height int, serial bool) {
	if serial {
		g.HorizontalSerial(src, temp, width, height)
		g.VerticalSerial(temp, dst, width, height)
		return
	}
	g.Horizontal(src, temp, width, height)
	g.Vertical(temp, dst, width, height)
}

// step advances the three resonances by one sample with combined input in
// and returns the sum of their outputs.
func (g *Gaussian[F]) step(in F, prev, prev2 *[numResonances]F) F {
	var out F
	for k := range numResonances {
		// (35)
		y := g.gain[k]*in + (-(g.feedback[k] * prev[k]) - prev2[k])
		prev2[k] = prev[k]
		prev[k] = y
		out += y
	}
	return out
}

// GetMemoryUsage returns the approximate size of the coefficient tables and
// ring buffer in bytes.
func (g *Gaussian[F]) GetMemoryUsage() int64 {
	var zero F
	bytesPerElement := int64(bytesPerFloat32)
	if _, ok := any(zero).(float64); ok {
		bytesPerElement = bytesPerFloat64
	}

	const vectorsPerResonance = 2 + lanes + 2 // n2, d1, shifted mulIn, mulPrev, mulPrev2
	coeffs := int64(numResonances*(2+vectorsPerResonance*lanes)) * bytesPerElement
	return coeffs + int64(len(g.ring))*bytesPerElement
}

// GetSIMDInfo returns the instruction set detected by the SIMD helpers.
func (g *Gaussian[F]) GetSIMDInfo() string {
	return cpu.Info()
}
