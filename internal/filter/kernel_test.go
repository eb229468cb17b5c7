package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-iir-blur/internal/testutil"
)

const (
	testKernelRadius = 5
	testPlaneWidth   = 17
	testPlaneHeight  = 13
)

func TestGaussianKernel(t *testing.T) {
	kernel, err := GaussianKernel(testSigma1_5, testKernelRadius)
	require.NoError(t, err)

	assert.Len(t, kernel, 2*testKernelRadius+1)
	testutil.AssertDCGain(t, kernel, 1.0, testutil.DefaultTolerance)
	testutil.AssertSymmetric(t, kernel, testutil.DefaultTolerance)
	testutil.AssertCenterIsMax(t, kernel)
	testutil.AssertAllInRange(t, kernel, 0, 1)
}

func TestGaussianKernel_Errors(t *testing.T) {
	_, err := GaussianKernel(0, testKernelRadius)
	require.ErrorIs(t, err, ErrInvalidSigma)

	_, err = GaussianKernel(testSigma1_5, -1)
	require.Error(t, err)
}

// TestDirectBlur_Impulse verifies that an impulse away from the border is
// replaced by the outer product of the kernel with itself.
func TestDirectBlur_Impulse(t *testing.T) {
	kernel, err := GaussianKernel(testSigma1_5, testKernelRadius)
	require.NoError(t, err)

	cx, cy := testPlaneWidth/2, testPlaneHeight/2
	src := testutil.ImpulseImage[float64](testPlaneWidth, testPlaneHeight, cx, cy)
	dst := make([]float64, len(src))
	DirectBlur(dst, src, testPlaneWidth, testPlaneHeight, kernel)

	for y := range testPlaneHeight {
		for x := range testPlaneWidth {
			dx, dy := x-cx+testKernelRadius, y-cy+testKernelRadius
			var want float64
			if dx >= 0 && dx < len(kernel) && dy >= 0 && dy < len(kernel) {
				want = kernel[dx] * kernel[dy]
			}
			assert.InDelta(t, want, dst[y*testPlaneWidth+x], testutil.DefaultTolerance, "(%d,%d)", x, y)
		}
	}
}

// TestDirectBlur_ZeroPadding verifies that a constant plane keeps its level
// in the interior and is attenuated at the border.
func TestDirectBlur_ZeroPadding(t *testing.T) {
	kernel, err := GaussianKernel(testSigma1, 3)
	require.NoError(t, err)

	src := testutil.ConstantImage(testPlaneWidth, testPlaneHeight, 1.0)
	dst := make([]float64, len(src))
	DirectBlur(dst, src, testPlaneWidth, testPlaneHeight, kernel)

	assert.InDelta(t, 1.0, dst[(testPlaneHeight/2)*testPlaneWidth+testPlaneWidth/2], testutil.DefaultTolerance)
	assert.Less(t, dst[0], 1.0)
	assert.Less(t, dst[len(dst)-1], 1.0)
}
