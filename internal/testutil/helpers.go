// Package testutil provides reusable test helper functions for blur tests.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-iir-blur/internal/simdops"
)

// Tolerances shared by the blur tests.
const (
	DefaultTolerance = 1e-10
	Float32Tolerance = 1e-4
	Float64Tolerance = 1e-9
	DBTolerance      = 0.01
)

// LCG constants for reproducible test images (Numerical Recipes).
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgScale      = 1 << 32
)

// NoiseImage returns a width*height plane of pseudo-random values in [0, 1).
// The same seed always produces the same plane.
func NoiseImage[F simdops.Float](width, height int, seed uint32) []F {
	plane := make([]F, width*height)
	s := seed
	for i := range plane {
		s = s*lcgMultiplier + lcgIncrement
		plane[i] = F(float64(s) / lcgScale)
	}
	return plane
}

// ConstantImage returns a width*height plane filled with value.
func ConstantImage[F simdops.Float](width, height int, value F) []F {
	plane := make([]F, width*height)
	for i := range plane {
		plane[i] = value
	}
	return plane
}

// ImpulseImage returns a zero plane with a single 1 at (x, y).
func ImpulseImage[F simdops.Float](width, height, x, y int) []F {
	plane := make([]F, width*height)
	plane[y*width+x] = 1
	return plane
}

// AssertSymmetric checks s[i] == s[n-1-i], as for an impulse response
// centered in its slice.
func AssertSymmetric(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance, annotate(msgAndArgs,
			"slice not symmetric at i=%d: s[%d]=%g != s[%d]=%g", i, i, s[i], j, s[j])...) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf fails on the first NaN or infinite sample.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", annotate(msgAndArgs, "s[%d] is NaN", i)...)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", annotate(msgAndArgs, "s[%d] is Inf", i)...)
		}
	}
	return true
}

// AssertAllInRange checks every sample lies in [minVal, maxVal].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if f < minVal || f > maxVal {
			return assert.Fail(t, "value out of range", annotate(msgAndArgs,
				"s[%d]=%g is outside range [%g, %g]", i, f, minVal, maxVal)...)
		}
	}
	return true
}

// AssertDCGain checks that the taps sum to expectedGain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, expectedGain, sum, tolerance,
		"DC gain = %g, want %g", sum, expectedGain)
}

// AssertCenterIsMax checks that no sample exceeds the middle one.
func AssertCenterIsMax(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice", msgAndArgs...)
	}
	centerIdx := len(s) / 2
	centerValue := s[centerIdx]
	for i, v := range s {
		if v > centerValue {
			return assert.Fail(t, "center is not max", annotate(msgAndArgs,
				"s[%d]=%g > center s[%d]=%g", i, v, centerIdx, centerValue)...)
		}
	}
	return true
}

// AssertRelativeError checks |actual-expected|/|expected| <= tolerance,
// falling back to an absolute delta when expected is zero.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance, annotate(msgAndArgs,
		"relative error %e exceeds tolerance %e (expected=%g, actual=%g)",
		relError, tolerance, expected, actual)...)
}

// AssertSlicesInDelta verifies that two planes agree element-wise within an
// absolute tolerance. Only the first mismatch is reported.
func AssertSlicesInDelta[F simdops.Float](t *testing.T, expected, actual []F, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(float64(expected[i])-float64(actual[i])) > tolerance {
			return assert.InDelta(t, float64(expected[i]), float64(actual[i]), tolerance,
				annotate(msgAndArgs, "mismatch at index %d", i)...)
		}
	}
	return true
}

// MaxAbsDiff returns the largest absolute element-wise difference.
func MaxAbsDiff[F simdops.Float](a, b []F) float64 {
	var worst float64
	for i := range min(len(a), len(b)) {
		worst = max(worst, math.Abs(float64(a[i])-float64(b[i])))
	}
	return worst
}

// annotate prefixes a helper's own failure detail with the caller's
// msgAndArgs, formatted the way testify formats them.
func annotate(msgAndArgs []any, format string, args ...any) []any {
	detail := fmt.Sprintf(format, args...)
	if len(msgAndArgs) == 0 {
		return []any{detail}
	}

	var caller string
	if f, ok := msgAndArgs[0].(string); ok {
		caller = fmt.Sprintf(f, msgAndArgs[1:]...)
	} else {
		caller = fmt.Sprint(msgAndArgs...)
	}
	return []any{caller + ": " + detail}
}
