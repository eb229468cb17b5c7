package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-iir-blur/internal/filter"
	"github.com/tphakala/go-iir-blur/internal/simdops"
	"github.com/tphakala/go-iir-blur/internal/testutil"
)

const (
	// Unrolled and vector paths reassociate the recurrence.
	float64PathTolerance = 1e-11
	float32PathTolerance = 1e-4

	// The vertical tile update uses the serial association, so only FMA
	// fusion can separate the two.
	verticalFloat64Tolerance = 1e-13
	verticalFloat32Tolerance = 1e-6

	testSeed = 12345
)

type testDesign struct {
	sigma float64
	mode  filter.RadiusMode
}

var (
	// testDesigns include integer radii 0 and 1, reachable only with the
	// fitted radius.
	testDesigns = []testDesign{
		{0.1, filter.FittedRadius},
		{0.3, filter.FittedRadius},
		{0.6, filter.FittedRadius},
		{1.5, filter.FittedRadius},
		{5.0, filter.FittedRadius},
		{0.6, filter.IntegerRadius},
		{1.0, filter.IntegerRadius},
		{1.5, filter.IntegerRadius},
		{2.5, filter.IntegerRadius},
		{5.0, filter.IntegerRadius},
	}
	exactSigmas = []float64{0.6, 1.0, 1.5, 2.5, 5.0}
	testWidths  = []int{1, 2, 3, 4, 5, 7, 8, 15, 16, 17, 31, 33, 37, 64}
)

func (d testDesign) String() string {
	return fmt.Sprintf("sigma=%v mode=%s", d.sigma, d.mode)
}

// =============================================================================
// Construction
// =============================================================================

func TestNewGaussian(t *testing.T) {
	g, err := NewGaussian[float32](1.5, filter.FittedRadius)
	require.NoError(t, err)

	assert.Equal(t, 5, g.Radius())
	assert.Equal(t, g.Radius(), g.Design().Radius())
	assert.Len(t, g.ring, numResonances*ringSlots*tileLanes)

	for k, res := range g.Design().Resonances() {
		assert.InDelta(t, res.Gain, float64(g.gain[k]), 1e-7)
		assert.InDelta(t, res.Feedback, float64(g.feedback[k]), 1e-7)
		for j := range lanes {
			assert.InDelta(t, res.Gain, float64(g.n2[k][j]), 1e-7)
			assert.InDelta(t, res.Feedback, float64(g.d1[k][j]), 1e-7)
		}
	}
}

func TestNewGaussian_InvalidSigma(t *testing.T) {
	_, err := NewGaussian[float64](0, filter.FittedRadius)
	require.ErrorIs(t, err, filter.ErrInvalidSigma)

	_, err = NewGaussian[float64](0.3, filter.IntegerRadius)
	require.ErrorIs(t, err, filter.ErrInvalidSigma)
}

// TestNewGaussian_ShiftedMultipliers verifies that mulIn[k][i] holds the
// input weights moved up by i lanes.
func TestNewGaussian_ShiftedMultipliers(t *testing.T) {
	g, err := NewGaussian[float64](2.0, filter.FittedRadius)
	require.NoError(t, err)

	for k, res := range g.Design().Resonances() {
		for i := range lanes {
			for j := range lanes {
				want := 0.0
				if j >= i {
					want = res.MulIn[j-i]
				}
				assert.InDelta(t, want, g.mulIn[k][i][j], 0, "k=%d i=%d j=%d", k, i, j)
			}
		}
	}
}

func TestGetMemoryUsage(t *testing.T) {
	g32, err := NewGaussian[float32](1.5, filter.FittedRadius)
	require.NoError(t, err)
	g64, err := NewGaussian[float64](1.5, filter.FittedRadius)
	require.NoError(t, err)

	assert.Positive(t, g32.GetMemoryUsage())
	assert.Equal(t, 2*g32.GetMemoryUsage(), g64.GetMemoryUsage())
}

// =============================================================================
// Horizontal pass
// =============================================================================

// TestHorizontal_MatchesSerial compares the unrolled row filter against the
// serial recurrence across widths that exercise every prologue, block and
// epilogue combination.
func TestHorizontal_MatchesSerial(t *testing.T) {
	t.Run("float64", func(t *testing.T) {
		testHorizontalMatchesSerial[float64](t, float64PathTolerance)
	})
	t.Run("float32", func(t *testing.T) {
		testHorizontalMatchesSerial[float32](t, float32PathTolerance)
	})
}

func testHorizontalMatchesSerial[F simdops.Float](t *testing.T, tolerance float64) {
	t.Helper()
	const height = 3

	for _, d := range testDesigns {
		g, err := NewGaussian[F](d.sigma, d.mode)
		require.NoError(t, err)

		for _, width := range testWidths {
			src := testutil.NoiseImage[F](width, height, testSeed)
			want := make([]F, len(src))
			got := make([]F, len(src))

			g.HorizontalSerial(src, want, width, height)
			g.Horizontal(src, got, width, height)

			testutil.AssertSlicesInDelta(t, want, got, tolerance, "%s width=%d", d, width)
		}
	}
}

// TestHorizontal_LongRow checks accumulated drift of the unrolled form over
// many blocks with a wide kernel. The fitted response does not cancel past
// its support, so rounding differences keep circulating and the bound is
// looser.
func TestHorizontal_LongRow(t *testing.T) {
	const width = 1000

	tests := []struct {
		mode      filter.RadiusMode
		tolerance float64
	}{
		{filter.IntegerRadius, float32PathTolerance},
		{filter.FittedRadius, 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			g, err := NewGaussian[float32](20.0, tt.mode)
			require.NoError(t, err)

			src := testutil.NoiseImage[float32](width, 1, testSeed)
			want := make([]float32, width)
			got := make([]float32, width)
			g.HorizontalSerial(src, want, width, 1)
			g.Horizontal(src, got, width, 1)

			assert.LessOrEqual(t, testutil.MaxAbsDiff(want, got), tt.tolerance)
		})
	}
}

// TestHorizontal_RowsAreIndependent verifies the recursion state does not
// leak from one row into the next.
func TestHorizontal_RowsAreIndependent(t *testing.T) {
	const width, height = 23, 4

	g, err := NewGaussian[float64](1.5, filter.FittedRadius)
	require.NoError(t, err)

	src := testutil.ImpulseImage[float64](width, height, width-1, 0)
	out := make([]float64, len(src))
	g.Horizontal(src, out, width, height)

	for i := width; i < len(out); i++ {
		assert.InDelta(t, 0.0, out[i], 0, "index %d", i)
	}
}

// =============================================================================
// Vertical pass
// =============================================================================

// TestVertical_MatchesSerial covers full tiles, single-vector tiles and the
// masked remainder, with heights shorter and longer than the kernel.
func TestVertical_MatchesSerial(t *testing.T) {
	t.Run("float64", func(t *testing.T) {
		testVerticalMatchesSerial[float64](t, verticalFloat64Tolerance)
	})
	t.Run("float32", func(t *testing.T) {
		testVerticalMatchesSerial[float32](t, verticalFloat32Tolerance)
	})
}

func testVerticalMatchesSerial[F simdops.Float](t *testing.T, tolerance float64) {
	t.Helper()
	heights := []int{1, 2, 5, 9, 20, 41}

	for _, d := range testDesigns {
		g, err := NewGaussian[F](d.sigma, d.mode)
		require.NoError(t, err)

		for _, width := range testWidths {
			for _, height := range heights {
				src := testutil.NoiseImage[F](width, height, testSeed)
				want := make([]F, len(src))
				got := make([]F, len(src))

				g.VerticalSerial(src, want, width, height)
				g.Vertical(src, got, width, height)

				testutil.AssertSlicesInDelta(t, want, got, tolerance,
					"%s width=%d height=%d", d, width, height)
			}
		}
	}
}

// TestVertical_MaskedColumnsUntouched verifies the masked tile never writes
// past the last column of a row.
func TestVertical_MaskedColumnsUntouched(t *testing.T) {
	const width, height, stride = 5, 12, 8

	g, err := NewGaussian[float32](1.5, filter.FittedRadius)
	require.NoError(t, err)

	src := testutil.NoiseImage[float32](width, height, testSeed)
	out := make([]float32, width*height+stride)
	sentinel := out[width*height:]
	for i := range sentinel {
		sentinel[i] = -1
	}

	g.Vertical(src, out[:width*height], width, height)
	for i, v := range sentinel {
		assert.InDelta(t, -1.0, float64(v), 0, "sentinel %d overwritten", i)
	}
}

// TestVertical_MatchesHorizontalTransposed verifies both passes implement
// the same 1D filter.
func TestVertical_MatchesHorizontalTransposed(t *testing.T) {
	const width, height = 13, 29

	g, err := NewGaussian[float64](2.5, filter.FittedRadius)
	require.NoError(t, err)

	src := testutil.NoiseImage[float64](width, height, testSeed)
	transposed := make([]float64, len(src))
	for y := range height {
		for x := range width {
			transposed[x*height+y] = src[y*width+x]
		}
	}

	vertical := make([]float64, len(src))
	horizontal := make([]float64, len(src))
	g.Vertical(src, vertical, width, height)
	g.Horizontal(transposed, horizontal, height, width)

	for y := range height {
		for x := range width {
			assert.InDelta(t, horizontal[x*height+y], vertical[y*width+x], float64PathTolerance, "(%d,%d)", x, y)
		}
	}
}

// =============================================================================
// Both passes
// =============================================================================

func TestApply_ImpulseSymmetry(t *testing.T) {
	const size = 21

	for _, serial := range []bool{false, true} {
		t.Run(fmt.Sprintf("serial=%v", serial), func(t *testing.T) {
			g, err := NewGaussian[float64](2.0, filter.IntegerRadius)
			require.NoError(t, err)

			src := testutil.ImpulseImage[float64](size, size, size/2, size/2)
			dst := make([]float64, len(src))
			temp := make([]float64, len(src))
			g.Apply(dst, src, temp, size, size, serial)

			testutil.AssertNoNaNOrInf(t, dst)
			for y := range size {
				testutil.AssertSymmetric(t, dst[y*size:(y+1)*size], float64PathTolerance, "row %d", y)
			}
			for y := range size {
				for x := range size {
					assert.InDelta(t, dst[y*size+x], dst[x*size+y], float64PathTolerance, "transpose (%d,%d)", x, y)
				}
			}

			// Fully inside: the response is a unit-sum separable kernel.
			testutil.AssertDCGain(t, dst, 1.0, float64PathTolerance)
		})
	}
}

func TestApply_DCInterior(t *testing.T) {
	const width, height, level = 40, 30, 0.75

	for _, sigma := range exactSigmas {
		g, err := NewGaussian[float32](sigma, filter.IntegerRadius)
		require.NoError(t, err)

		src := testutil.ConstantImage[float32](width, height, level)
		dst := make([]float32, len(src))
		temp := make([]float32, len(src))
		g.Apply(dst, src, temp, width, height, false)

		r := g.Radius()
		for y := r; y < height-r; y++ {
			for x := r; x < width-r; x++ {
				testutil.AssertRelativeError(t, level, float64(dst[y*width+x]), float32PathTolerance)
			}
		}
	}
}

// TestApply_SmallRadius verifies every sample is written for integer radii
// 0 and 1, where the recursion starts at the first output.
func TestApply_SmallRadius(t *testing.T) {
	const width, height = 9, 7

	for _, sigma := range []float64{0.1, 0.3} {
		g, err := NewGaussian[float64](sigma, filter.FittedRadius)
		require.NoError(t, err)
		require.LessOrEqual(t, g.Radius(), 1)

		src := testutil.NoiseImage[float64](width, height, testSeed)
		var results [2][]float64
		for i, serial := range []bool{false, true} {
			dst := make([]float64, len(src))
			temp := make([]float64, len(src))
			for j := range dst {
				dst[j] = math.NaN()
				temp[j] = math.NaN()
			}
			g.Apply(dst, src, temp, width, height, serial)

			testutil.AssertNoNaNOrInf(t, dst, "sigma=%v serial=%v", sigma, serial)
			results[i] = dst
		}
		testutil.AssertSlicesInDelta(t, results[1], results[0], float64PathTolerance, "sigma=%v", sigma)
	}
}

func TestApply_Aliasing(t *testing.T) {
	const width, height = 19, 11

	g, err := NewGaussian[float64](1.5, filter.FittedRadius)
	require.NoError(t, err)

	src := testutil.NoiseImage[float64](width, height, testSeed)
	want := make([]float64, len(src))
	temp := make([]float64, len(src))
	g.Apply(want, src, temp, width, height, false)

	g.Apply(src, src, temp, width, height, false)
	testutil.AssertSlicesInDelta(t, want, src, 0)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkApply(b *testing.B) {
	sizes := []struct{ width, height int }{
		{64, 64},
		{512, 512},
		{1920, 1080},
	}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dx%d", size.width, size.height), func(b *testing.B) {
			benchmarkApply[float32](b, size.width, size.height, false)
		})
		b.Run(fmt.Sprintf("%dx%d/serial", size.width, size.height), func(b *testing.B) {
			benchmarkApply[float32](b, size.width, size.height, true)
		})
	}
}

func BenchmarkApply_Float64(b *testing.B) {
	benchmarkApply[float64](b, 512, 512, false)
}

func benchmarkApply[F simdops.Float](b *testing.B, width, height int, serial bool) {
	b.Helper()
	g, err := NewGaussian[F](1.5, filter.FittedRadius)
	require.NoError(b, err)

	src := testutil.NoiseImage[F](width, height, testSeed)
	dst := make([]F, len(src))
	temp := make([]F, len(src))

	b.SetBytes(int64(len(src)))
	b.ReportAllocs()
	for b.Loop() {
		g.Apply(dst, src, temp, width, height, serial)
	}
}
