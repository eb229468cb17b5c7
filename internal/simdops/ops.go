// Package simdops dispatches plane statistics to the tphakala/simd kernels
// for either sample precision. The root package uses it so that Energy and
// Sum are written once for float32 and float64.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the set of supported sample types.
type Float interface {
	float32 | float64
}

// Ops is a table of vectorized kernels for samples of type F.
type Ops[F Float] struct {
	// DotProductUnsafe returns Σ a[i]·b[i]. a and b must have equal length.
	DotProductUnsafe func(a, b []F) F

	// Sum returns Σ a[i].
	Sum func(a []F) F
}

var (
	float32Table = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
	}
	float64Table = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
	}
)

// For returns the table for F.
func For[F Float]() *Ops[F] {
	var table any
	var zero F
	switch any(zero).(type) {
	case float32:
		table = &float32Table
	case float64:
		table = &float64Table
	}

	ops, ok := table.(*Ops[F])
	if !ok {
		panic("simdops: no kernel table for sample type")
	}
	return ops
}

// Float32Ops returns the float32 table.
func Float32Ops() *Ops[float32] {
	return &float32Table
}

// Float64Ops returns the float64 table.
func Float64Ops() *Ops[float64] {
	return &float64Table
}
