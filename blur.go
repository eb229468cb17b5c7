package blur

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-iir-blur/internal/engine"
	"github.com/tphakala/go-iir-blur/internal/filter"
	"github.com/tphakala/go-iir-blur/internal/simdops"
)

// Float is the constraint for supported plane sample types.
type Float = simdops.Float

// Config holds blur configuration.
type Config struct {
	// Width is the plane width in pixels.
	Width int

	// Height is the plane height in pixels.
	Height int

	// Sigma is the standard deviation of the Gaussian in pixels. It is
	// fixed for the lifetime of the Blur.
	Sigma float64

	// Scalar forces the serial reference recurrence for both passes.
	// Output matches the default path to floating-point tolerance.
	Scalar bool

	// ExactSupport truncates the radius fit to an integer before deriving
	// the coefficients. The kernel then has finite support, is symmetric
	// and preserves DC exactly away from the borders, but sigma must be at
	// least about 0.532. By default the coefficients follow the real-valued
	// fit, which accepts any positive sigma and leaves a small oscillating
	// tail past the radius.
	ExactSupport bool
}

// Common errors returned by the blur.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid blur configuration")

	// ErrInvalidDimension indicates a non-positive or oversized width or height.
	ErrInvalidDimension = errors.New("invalid dimensions")

	// ErrDimensionMismatch indicates a plane whose length differs from
	// width*height.
	ErrDimensionMismatch = errors.New("plane size does not match dimensions")

	// ErrCapacityExceeded indicates a resize beyond the area allocated at
	// construction.
	ErrCapacityExceeded = errors.New("resize exceeds allocated capacity")

	// ErrInvalidSigma indicates a sigma that is not positive and finite, or
	// too small for ExactSupport.
	ErrInvalidSigma = filter.ErrInvalidSigma

	// ErrSingularMatrix indicates the coefficient system could not be solved.
	ErrSingularMatrix = filter.ErrSingularMatrix

	// ErrNormalization indicates the derived filter failed its unit-gain check.
	ErrNormalization = filter.ErrNormalization
)

// Validate checks if the configuration is valid. It does not run the
// coefficient derivation; errors from the solve surface from New.
func (c *Config) Validate() error {
	if err := validateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	return filter.ValidateSigma(c.Sigma, c.radiusMode())
}

func (c *Config) radiusMode() filter.RadiusMode {
	if c.ExactSupport {
		return filter.IntegerRadius
	}
	return filter.FittedRadius
}

func validateDimensions(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d (width and height must be positive)", ErrInvalidDimension, width, height)
	}
	if width > maxArea/height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimension, width, height, maxArea)
	}
	return nil
}

// Blur applies a recursive Gaussian blur to three-channel planar images.
//
// Coefficients are derived once from sigma; the intermediate plane is
// allocated once for the construction size and reused by every call. A
// Blur is not safe for concurrent use. Use one instance per goroutine.
type Blur[F Float] struct {
	gaussian *engine.Gaussian[F]
	sigma    float64
	scalar   bool

	width  int
	height int

	// temp is the horizontal pass output. Its capacity is the construction
	// area; its length tracks the current dimensions.
	temp []F
}

// New creates a blur for planes of config.Width × config.Height.
func New[F Float](config *Config) (*Blur[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	gaussian, err := engine.NewGaussian[F](config.Sigma, config.radiusMode())
	if err != nil {
		return nil, err
	}

	return &Blur[F]{
		gaussian: gaussian,
		sigma:    config.Sigma,
		scalar:   config.Scalar,
		width:    config.Width,
		height:   config.Height,
		temp:     make([]F, config.Width*config.Height),
	}, nil
}

// Resize changes the plane dimensions used by subsequent calls. The new
// area must not exceed the area allocated at construction; the working
// buffer is resliced and never reallocated.
func (b *Blur[F]) Resize(width, height int) error {
	if err := validateDimensions(width, height); err != nil {
		return err
	}

	area := width * height
	if area > cap(b.temp) {
		return fmt.Errorf("%w: %dx%d needs %d pixels, capacity is %d",
			ErrCapacityExceeded, width, height, area, cap(b.temp))
	}

	b.width = width
	b.height = height
	b.temp = b.temp[:area]
	return nil
}

// Blur filters the three planes and returns three new planes of the same
// size. The input planes are not modified.
func (b *Blur[F]) Blur(planes [Channels][]F) ([Channels][]F, error) {
	var out [Channels][]F
	if err := b.checkPlanes("input", planes); err != nil {
		return out, err
	}

	for c := range out {
		out[c] = make([]F, len(b.temp))
	}
	b.apply(out, planes)
	return out, nil
}

// BlurInto filters src into dst. dst[c] may be the same slice as src[c],
// for in-place blurring, but must not overlap any other plane.
func (b *Blur[F]) BlurInto(dst, src [Channels][]F) error {
	if err := b.checkPlanes("input", src); err != nil {
		return err
	}
	if err := b.checkPlanes("output", dst); err != nil {
		return err
	}

	b.apply(dst, src)
	return nil
}

// BlurPlane filters a single plane. dst may be the same slice as src.
func (b *Blur[F]) BlurPlane(dst, src []F) error {
	if err := b.checkPlane("input", 0, src); err != nil {
		return err
	}
	if err := b.checkPlane("output", 0, dst); err != nil {
		return err
	}

	b.gaussian.Apply(dst, src, b.temp, b.width, b.height, b.scalar)
	return nil
}

// apply runs both passes per channel. Channels share the temp plane, so
// they are processed one after another.
func (b *Blur[F]) apply(dst, src [Channels][]F) {
	for c := range Channels {
		b.gaussian.Apply(dst[c], src[c], b.temp, b.width, b.height, b.scalar)
	}
}

func (b *Blur[F]) checkPlanes(role string, planes [Channels][]F) error {
	for c, plane := range planes {
		if err := b.checkPlane(role, c, plane); err != nil {
			return err
		}
	}
	return nil
}

func (b *Blur[F]) checkPlane(role string, channel int, plane []F) error {
	if len(plane) != len(b.temp) {
		return fmt.Errorf("%w: %s channel %d has %d samples, want %dx%d = %d",
			ErrDimensionMismatch, role, channel, len(plane), b.width, b.height, len(b.temp))
	}
	return nil
}

// Width returns the current plane width.
func (b *Blur[F]) Width() int {
	return b.width
}

// Height returns the current plane height.
func (b *Blur[F]) Height() int {
	return b.height
}

// Capacity returns the largest width*height accepted by Resize.
func (b *Blur[F]) Capacity() int {
	return cap(b.temp)
}

// Sigma returns the standard deviation the blur was built for.
func (b *Blur[F]) Sigma() float64 {
	return b.sigma
}

// Radius returns the integer half-width of the equivalent kernel. Pixels
// closer than Radius to a border are attenuated by the zero padding.
func (b *Blur[F]) Radius() int {
	return b.gaussian.Radius()
}

// Info returns information about the blur implementation.
type Info struct {
	// Algorithm describes the filter in use.
	Algorithm string

	// Precision is "float32" or "float64".
	Precision string

	// Sigma is the target standard deviation.
	Sigma float64

	// Radius is the half-width of the equivalent kernel.
	Radius int

	// ExactSupport reports whether the integer radius was used in the
	// derivation.
	ExactSupport bool

	// Width and Height are the current plane dimensions.
	Width  int
	Height int

	// Capacity is the allocated plane area in pixels.
	Capacity int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// Vectorized is false when the serial reference path is forced.
	Vectorized bool

	// SIMDType describes the SIMD instruction set available to the helpers.
	SIMDType string
}

// GetInfo returns information about the blur.
func (b *Blur[F]) GetInfo() Info {
	var zero F
	precision, bytesPerSample := "float32", int64(bytesPerFloat32)
	if _, ok := any(zero).(float64); ok {
		precision, bytesPerSample = "float64", bytesPerFloat64
	}

	return Info{
		Algorithm:    algorithmName,
		Precision:    precision,
		Sigma:        b.sigma,
		Radius:       b.gaussian.Radius(),
		ExactSupport: b.gaussian.Design().Mode() == filter.IntegerRadius,
		Width:        b.width,
		Height:       b.height,
		Capacity:     cap(b.temp),
		MemoryUsage:  int64(cap(b.temp))*bytesPerSample + b.gaussian.GetMemoryUsage(),
		Vectorized:   !b.scalar,
		SIMDType:     b.gaussian.GetSIMDInfo(),
	}
}
