package engine

import (
	"github.com/tphakala/go-iir-blur/internal/filter"
	"github.com/tphakala/go-iir-blur/internal/mathutil"
)

// Horizontal filters each row of in along x and writes the result to out.
// Both must hold width*height samples. Rows are independent; the state of
// the recursion is reset at the start of every row.
func (g *Gaussian[F]) Horizontal(in, out []F, width, height int) {
	for y := range height {
		row := y * width
		g.horizontalRow(in[row:row+width], out[row:row+width])
	}
}

// HorizontalSerial is the reference form of Horizontal: one output per
// step, no unrolling.
func (g *Gaussian[F]) HorizontalSerial(in, out []F, width, height int) {
	for y := range height {
		row := y * width
		input := in[row : row+width]
		output := out[row : row+width]

		var prev, prev2 [numResonances]F
		for n := filter.FirstStep(g.radius); n < width; n++ {
			o := g.step(g.rowInput(input, n), &prev, &prev2)
			if n >= 0 {
				output[n] = o
			}
		}
	}
}

// rowInput returns x[n−N−1] + x[n+N−1] with zero outside the row.
func (g *Gaussian[F]) rowInput(input []F, n int) F {
	left := n - g.radius - 1
	right := n + g.radius - 1

	var leftVal, rightVal F
	if left >= 0 {
		leftVal = input[left]
	}
	if right >= 0 && right < len(input) {
		rightVal = input[right]
	}
	return leftVal + rightVal
}

func (g *Gaussian[F]) horizontalRow(input, output []F) {
	width := len(input)
	radius := g.radius

	var prev, prev2 [numResonances]F

	// Left side with bounds checks; output starts at n >= 0. The first
	// unrolled block needs n−N−1 >= 0.
	n := filter.FirstStep(radius)
	firstAligned := min(mathutil.RoundUpTo(radius+1, lanes), width)
	for ; n < firstAligned; n++ {
		o := g.step(g.rowInput(input, n), &prev, &prev2)
		if n >= 0 {
			output[n] = o
		}
	}

	// Unrolled, no bounds checks. Each output lane j is computed directly
	// from the four block inputs and the two outputs before the block, so
	// the lanes do not depend on each other.
	for ; n+lanes <= width && n+radius+lanes-1 <= width; n += lanes {
		sum := load(input[n-radius-1:]).add(load(input[n+radius-1:]))
		in0 := broadcast(sum[0])
		in1 := broadcast(sum[1])
		in2 := broadcast(sum[2])
		in3 := broadcast(sum[3])

		var total vec4[F]
		for k := range numResonances {
			mulIn := &g.mulIn[k]
			o := in0.mul(mulIn[0])
			o = in1.mulAdd(mulIn[1], o)
			o = in2.mulAdd(mulIn[2], o)
			o = in3.mulAdd(mulIn[3], o)
			o = broadcast(prev2[k]).mulAdd(g.mulPrev2[k], o)
			o = broadcast(prev[k]).mulAdd(g.mulPrev[k], o)

			prev2[k] = o[lanes-2]
			prev[k] = o[lanes-1]
			total = total.add(o)
		}
		total.store(output[n:])
	}

	// Remainder with bounds checks.
	for ; n < width; n++ {
		output[n] = g.step(g.rowInput(input, n), &prev, &prev2)
	}
}
