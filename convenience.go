package blur

import (
	"fmt"

	"github.com/tphakala/go-iir-blur/internal/simdops"
)

// NewFloat32 creates a float32 blur for width × height planes.
func NewFloat32(width, height int, sigma float64) (*Blur[float32], error) {
	return New[float32](&Config{Width: width, Height: height, Sigma: sigma})
}

// NewFloat64 creates a float64 blur for width × height planes.
func NewFloat64(width, height int, sigma float64) (*Blur[float64], error) {
	return New[float64](&Config{Width: width, Height: height, Sigma: sigma})
}

// NewDefault creates a float32 blur with DefaultSigma.
func NewDefault(width, height int) (*Blur[float32], error) {
	return NewFloat32(width, height, DefaultSigma)
}

// BlurPlanes blurs one three-channel image with a temporary Blur. Prefer a
// reusable Blur when processing many images of the same size.
func BlurPlanes[F Float](planes [Channels][]F, width, height int, sigma float64) ([Channels][]F, error) {
	b, err := New[F](&Config{Width: width, Height: height, Sigma: sigma})
	if err != nil {
		return [Channels][]F{}, err
	}
	return b.Blur(planes)
}

// BlurGray blurs a single plane with a temporary Blur.
func BlurGray[F Float](plane []F, width, height int, sigma float64) ([]F, error) {
	b, err := New[F](&Config{Width: width, Height: height, Sigma: sigma})
	if err != nil {
		return nil, err
	}

	out := make([]F, len(plane))
	if err := b.BlurPlane(out, plane); err != nil {
		return nil, err
	}
	return out, nil
}

// DeinterleaveRGB splits packed RGBRGB... samples into three planes. Each
// plane must hold len(packed)/3 samples.
func DeinterleaveRGB[F Float](dst [Channels][]F, packed []F) error {
	n := len(packed) / Channels
	if len(packed) != n*Channels {
		return fmt.Errorf("%w: packed length %d is not a multiple of %d", ErrDimensionMismatch, len(packed), Channels)
	}
	for c, plane := range dst {
		if len(plane) != n {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrDimensionMismatch, c, len(plane), n)
		}
	}

	for i := range n {
		px := packed[i*Channels : i*Channels+Channels]
		dst[0][i] = px[0]
		dst[1][i] = px[1]
		dst[2][i] = px[2]
	}
	return nil
}

// InterleaveRGB packs three planes into RGBRGB... order. dst must hold
// three times the plane length.
func InterleaveRGB[F Float](dst []F, planes [Channels][]F) error {
	n := len(planes[0])
	for c, plane := range planes {
		if len(plane) != n {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrDimensionMismatch, c, len(plane), n)
		}
	}
	if len(dst) != n*Channels {
		return fmt.Errorf("%w: packed length %d, want %d", ErrDimensionMismatch, len(dst), n*Channels)
	}

	for i := range n {
		px := dst[i*Channels : i*Channels+Channels]
		px[0] = planes[0][i]
		px[1] = planes[1][i]
		px[2] = planes[2][i]
	}
	return nil
}

// Energy returns the sum of squared samples of a plane.
func Energy[F Float](plane []F) float64 {
	if len(plane) == 0 {
		return 0
	}
	return float64(simdops.For[F]().DotProductUnsafe(plane, plane))
}

// Sum returns the sum of the samples of a plane. For a blurred impulse it
// is the total gain.
func Sum[F Float](plane []F) float64 {
	if len(plane) == 0 {
		return 0
	}
	return float64(simdops.For[F]().Sum(plane))
}
