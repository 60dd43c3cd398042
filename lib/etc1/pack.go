// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc1

import (
	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/pixel"
	"github.com/nigeltao/dxtc/lib/quality"
)

// PackParams are the inputs to PackBlock.
type PackParams struct {
	Quality    quality.Level
	Perceptual bool
}

// There are 4 subblock orientations:
//   - 0: 2×4 tall and thin, non-flipped, left side.
//   - 1: 2×4 tall and thin, non-flipped, right side.
//   - 2: 4×2 short and wide, yes-flipped, top side.
//   - 3: 4×2 short and wide, yes-flipped, bottom side.
const numOrientations = 4

// perOrientationXY lists each orientation's (x, y) pixel coordinates.
var perOrientationXY = [numOrientations][8][2]uint8{
	{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 0}, {1, 1}, {1, 2}, {1, 3}},
	{{2, 0}, {2, 1}, {2, 2}, {2, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}},
	{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}, {3, 0}, {3, 1}},
	{{0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 2}, {2, 3}, {3, 2}, {3, 3}},
}

// packing is one complete candidate encoding.
type packing struct {
	flip  bool
	diff  bool
	subs  [2]Results
	error uint64
}

// PackBlock encodes sixteen row-major pixels as an ETC1 block, returning the
// squared error of the decoded block. Alpha is ignored.
func PackBlock(dst *block.ETC1, pixels *[16]pixel.RGBA, p *PackParams) uint64 {
	return (&Optimizer{}).PackBlock(dst, pixels, p)
}

// PackBlock is like the package level PackBlock but reuses o's scratch space.
func (o *Optimizer) PackBlock(dst *block.ETC1, pixels *[16]pixel.RGBA, p *PackParams) uint64 {
	if p == nil {
		p = &PackParams{}
	}

	if isSolid(pixels) {
		r := Results{}
		_ = o.Compute(&Params{
			Pixels:     pixels[:],
			Quality:    p.Quality,
			Perceptual: p.Perceptual,
		}, &r)
		dst.SetCode(0)
		dst.SetDiffBit(true)
		dst.SetBaseColor5(r.BaseColor)
		dst.SetTable(0, r.Table)
		dst.SetTable(1, r.Table)
		for i, s := range r.Selectors {
			dst.SetSelector(i&3, i>>2, s)
		}
		return r.Error
	}

	best := packing{error: maxError}
	for flipBit := range 2 {
		for sub := range 2 {
			for i, xy := range perOrientationXY[(2*flipBit)+sub] {
				o.subPix[sub][i] = pixels[(4*int(xy[1]))+int(xy[0])]
			}
		}
		flip := flipBit != 0
		params := [2]Params{}
		for sub := range 2 {
			params[sub] = Params{
				Pixels:     o.subPix[sub][:],
				Quality:    p.Quality,
				Perceptual: p.Perceptual,
			}
		}

		_ = o.Compute(&params[0], &o.results[0])
		_ = o.Compute(&params[1], &o.results[1])
		constrained := false
		if !deltaFits(o.results[0].BaseColor, o.results[1].BaseColor) {
			constrained = true
			params[1].ConstrainAgainst = &o.results[0].BaseColor
			_ = o.Compute(&params[1], &o.results[1])
		}
		consider(&best, packing{
			flip:  flip,
			diff:  true,
			subs:  o.results,
			error: o.results[0].Error + o.results[1].Error,
		})

		if constrained || (p.Quality >= quality.Normal) {
			params[0].UseColor4 = true
			params[1].UseColor4 = true
			params[1].ConstrainAgainst = nil
			_ = o.Compute(&params[0], &o.results[0])
			_ = o.Compute(&params[1], &o.results[1])
			consider(&best, packing{
				flip:  flip,
				diff:  false,
				subs:  o.results,
				error: o.results[0].Error + o.results[1].Error,
			})
		}
	}

	best.write(dst)
	return best.error
}

func consider(best *packing, c packing) {
	if best.error > c.error {
		*best = c
	}
}

func (c *packing) write(dst *block.ETC1) {
	dst.SetCode(0)
	dst.SetDiffBit(c.diff)
	dst.SetFlipBit(c.flip)
	if c.diff {
		b0, b1 := c.subs[0].BaseColor, c.subs[1].BaseColor
		dst.SetBaseColor5(b0)
		dst.SetDelta3([3]int8{
			int8(b1[0]) - int8(b0[0]),
			int8(b1[1]) - int8(b0[1]),
			int8(b1[2]) - int8(b0[2]),
		})
	} else {
		dst.SetBaseColors4([2][3]uint8{c.subs[0].BaseColor, c.subs[1].BaseColor})
	}

	orientation := 0
	if c.flip {
		orientation = 2
	}
	for sub := range 2 {
		dst.SetTable(sub, c.subs[sub].Table)
		for i, xy := range perOrientationXY[orientation+sub] {
			dst.SetSelector(int(xy[0]), int(xy[1]), c.subs[sub].Selectors[i])
		}
	}
}

// deltaFits returns whether b1 is within a 3-bit signed delta of b0.
func deltaFits(b0 [3]uint8, b1 [3]uint8) bool {
	for i := range 3 {
		if d := int32(b1[i]) - int32(b0[i]); (d < -4) || (+3 < d) {
			return false
		}
	}
	return true
}

func isSolid(pixels *[16]pixel.RGBA) bool {
	for _, c := range pixels[1:] {
		if !c.RGBEqual(pixels[0]) {
			return false
		}
	}
	return true
}
