package engine

import (
	"github.com/tphakala/go-iir-blur/internal/filter"
	"github.com/tphakala/go-iir-blur/internal/simdops"
)

// Vertical filters in along y and writes the result to out. Both must
// hold width*height samples.
//
// Columns are processed in tiles: full tiles of tileLanes columns (one
// cache line of float32), then single vectors, then one partial vector for
// the last width mod 4 columns. Partial lanes read zeros and are never
// stored.
func (g *Gaussian[F]) Vertical(in, out []F, width, height int) {
	x := 0
	for ; x+tileLanes <= width; x += tileLanes {
		g.verticalTile(in, out, x, tileLanes, width, height)
	}
	for ; x+lanes <= width; x += lanes {
		g.verticalTile(in, out, x, lanes, width, height)
	}
	if x < width {
		g.verticalTile(in, out, x, width-x, width, height)
	}
}

// VerticalSerial is the reference form of Vertical: one column at a time,
// one output per step.
func (g *Gaussian[F]) VerticalSerial(in, out []F, width, height int) {
	radius := g.radius
	for x := range width {
		var prev, prev2 [numResonances]F
		for n := filter.FirstStep(radius); n < height; n++ {
			top := n - radius - 1
			bottom := n + radius - 1

			var topVal, bottomVal F
			if top >= 0 {
				topVal = in[top*width+x]
			}
			if bottom >= 0 && bottom < height {
				bottomVal = in[bottom*width+x]
			}

			o := g.step(topVal+bottomVal, &prev, &prev2)
			if n >= 0 {
				out[n*width+x] = o
			}
		}
	}
}

// verticalTile runs the column recursion for cols columns starting at x.
// The tile state lives in the ring buffer and is reset per tile.
func (g *Gaussian[F]) verticalTile(in, out []F, x, cols, width, height int) {
	radius := g.radius
	clear(g.ring)
	ctr := 0

	// rowAt returns row y of the tile, or nil outside the image.
	rowAt := func(y int) []F {
		if y < 0 || y >= height {
			return nil
		}
		return in[y*width+x:]
	}

	// Warmup: top is out of bounds (zero padded), bottom is usually
	// in-bounds. No output yet.
	n := filter.FirstStep(radius)
	for ; n < 0; n++ {
		g.verticalBlock(nil, rowAt(n+radius-1), nil, cols, ctr)
		ctr++
	}

	// Start producing output; top is still out of bounds.
	for ; n < min(radius+1, height); n++ {
		g.verticalBlock(nil, rowAt(n+radius-1), out[n*width+x:], cols, ctr)
		ctr++
	}

	// Interior: both input rows are in range.
	for ; n < height && n+radius-1 < height; n++ {
		top := n - radius - 1
		bottom := n + radius - 1
		g.verticalBlock(in[top*width+x:], in[bottom*width+x:], out[n*width+x:], cols, ctr)
		ctr++
	}

	// Bottom border: the bottom row is past the end of the image.
	for ; n < height; n++ {
		top := n - radius - 1
		g.verticalBlock(in[top*width+x:], nil, out[n*width+x:], cols, ctr)
		ctr++
	}
}

// verticalBlock advances the recursion by one row for cols columns. A nil
// top or bottom row reads as zero; a nil dst discards the output.
func (g *Gaussian[F]) verticalBlock(top, bottom, dst []F, cols, ctr int) {
	slot0 := ctr & ringMask
	slot1 := (ctr - 1) & ringMask
	slot2 := (ctr - 2) & ringMask

	for off := 0; off < cols; off += lanes {
		n := min(lanes, cols-off)

		var sum vec4[F]
		if top != nil {
			sum = loadLanes(top[off:], n)
		}
		if bottom != nil {
			sum = sum.add(loadLanes(bottom[off:], n))
		}

		var total vec4[F]
		for k := range numResonances {
			base := k * ringSlots * tileLanes
			yPrev := load(g.ring[base+slot1*tileLanes+off:])
			yPrev2 := load(g.ring[base+slot2*tileLanes+off:])

			// (35)
			y := g.n2[k].mulAdd(sum, g.d1[k].mulNegSub(yPrev, yPrev2))
			y.store(g.ring[base+slot0*tileLanes+off:])
			total = total.add(y)
		}

		if dst != nil {
			storeLanes(total, dst[off:], n)
		}
	}
}

func loadLanes[F simdops.Float](s []F, n int) vec4[F] {
	if n == lanes {
		return load(s)
	}
	return loadPartial(s, n)
}

func storeLanes[F simdops.Float](v vec4[F], s []F, n int) {
	if n == lanes {
		v.store(s)
		return
	}
	v.storePartial(s, n)
}
