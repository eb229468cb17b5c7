package engine

import "github.com/tphakala/go-iir-blur/internal/simdops"

// vec4 is a fixed group of lanes evaluated together. The compiler keeps
// it in registers and unrolls every lane loop.
type vec4[F simdops.Float] [lanes]F

func broadcast[F simdops.Float](v F) vec4[F] {
	return vec4[F]{v, v, v, v}
}

func load[F simdops.Float](s []F) vec4[F] {
	_ = s[lanes-1]
	return vec4[F]{s[0], s[1], s[2], s[3]}
}

// loadPartial reads the first n lanes of s and zero-fills the rest.
func loadPartial[F simdops.Float](s []F, n int) vec4[F] {
	var v vec4[F]
	copy(v[:n], s[:n])
	return v
}

func (v vec4[F]) store(s []F) {
	_ = s[lanes-1]
	s[0], s[1], s[2], s[3] = v[0], v[1], v[2], v[3]
}

// storePartial writes the first n lanes of v to s.
func (v vec4[F]) storePartial(s []F, n int) {
	copy(s[:n], v[:n])
}

func (v vec4[F]) add(o vec4[F]) vec4[F] {
	return vec4[F]{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v vec4[F]) mul(m vec4[F]) vec4[F] {
	return vec4[F]{v[0] * m[0], v[1] * m[1], v[2] * m[2], v[3] * m[3]}
}

// mulAdd returns v·m + acc.
func (v vec4[F]) mulAdd(m, acc vec4[F]) vec4[F] {
	return vec4[F]{
		v[0]*m[0] + acc[0],
		v[1]*m[1] + acc[1],
		v[2]*m[2] + acc[2],
		v[3]*m[3] + acc[3],
	}
}

// mulNegSub returns −(v·m) − s.
func (v vec4[F]) mulNegSub(m, s vec4[F]) vec4[F] {
	return vec4[F]{
		-(v[0] * m[0]) - s[0],
		-(v[1] * m[1]) - s[1],
		-(v[2] * m[2]) - s[2],
		-(v[3] * m[3]) - s[3],
	}
}

// shiftUp moves lane i to lane i+n and fills the vacated low lanes with
// zero.
func (v vec4[F]) shiftUp(n int) vec4[F] {
	var out vec4[F]
	copy(out[n:], v[:lanes-n])
	return out
}
