// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package etc1 finds ETC1 base colors, intensity tables and selectors.
//
// Optimizer.Compute handles one subblock (or, for solid blocks, the whole
// block). PackBlock drives it over both subblock orientations and both base
// color encodings to produce a complete block.
package etc1

import (
	"errors"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/pixel"
	"github.com/nigeltao/dxtc/lib/quality"
)

var (
	ErrBadPixelCount  = errors.New("etc1: bad pixel count")
	ErrNilParamsOrRes = errors.New("etc1: nil params or results")
)

// Params are the inputs to Compute.
type Params struct {
	// Pixels holds a subblock's 8 pixels, or a whole block's 16.
	Pixels []pixel.RGBA

	Quality quality.Level

	// UseColor4 searches 4-bit (absolute mode) base colors instead of 5-bit
	// (differential mode) ones.
	UseColor4 bool

	// ScanDeltas are the per-channel offsets, in base color units, tried
	// around the quantized average color. Nil means a quality-dependent
	// default.
	ScanDeltas []int

	// ConstrainAgainst, if non-nil, is the 5-bit base color of the first
	// subblock. Only base colors within a differential delta of it, i.e.
	// in [c-4, c+3] per channel, are considered.
	ConstrainAgainst *[3]uint8

	// Perceptual weights the R, G and B errors 8:25:1.
	Perceptual bool
}

// Results are the outputs of Compute.
type Results struct {
	// BaseColor is 4- or 5-bit, unscaled.
	BaseColor [3]uint8

	Table uint8

	// Selectors holds one selector per input pixel.
	Selectors [16]uint8

	Error uint64

	Color4 bool
}

var defaultScanDeltas = [quality.NumLevels][]int{
	quality.SuperFast: {0},
	quality.Fast:      {0},
	quality.Normal:    {-1, 0, +1},
	quality.Better:    {-2, -1, 0, +1, +2},
	quality.Uber:      {-3, -2, -1, 0, +1, +2, +3},
}

// scramble is the order in which a pixel's four candidate colors are tried.
// Ties go to the earlier one.
var scramble = [4]uint8{3, 2, 0, 1}

const maxError = ^uint64(0)

// Optimizer holds scratch state reused across Compute and PackBlock calls.
// It is not safe for concurrent use.
type Optimizer struct {
	p       *Params
	trial   Results
	subPix  [2][8]pixel.RGBA
	results [2]Results
}

// Compute fills r with the lowest error encoding it finds for p's pixels.
func (o *Optimizer) Compute(p *Params, r *Results) error {
	if (p == nil) || (r == nil) {
		return ErrNilParamsOrRes
	} else if n := len(p.Pixels); (n != 8) && (n != 16) {
		return ErrBadPixelCount
	}
	o.p = p

	limit := int32(31)
	if p.UseColor4 {
		limit = 15
	}
	deltas := p.ScanDeltas
	if len(deltas) == 0 {
		deltas = defaultScanDeltas[min(int(p.Quality), quality.NumLevels-1)]
	}

	avgs := average(p.Pixels)
	centers := [2][3]int32{reduceAverage(avgs, limit)}
	numCenters := 1
	if p.Quality >= quality.Normal {
		if c := reduceQuantize(avgs, limit, p.Perceptual); c != centers[0] {
			centers[1] = c
			numCenters = 2
		}
	}

	lo, hi := [3]int32{0, 0, 0}, [3]int32{limit, limit, limit}
	if k := p.ConstrainAgainst; (k != nil) && !p.UseColor4 {
		for i := range 3 {
			lo[i] = max(0, int32(k[i])-4)
			hi[i] = min(31, int32(k[i])+3)
		}
		// Pull the centers into the feasible box so that the scan always
		// has at least one candidate.
		for c := range centers[:numCenters] {
			for i := range 3 {
				centers[c][i] = min(max(centers[c][i], lo[i]), hi[i])
			}
		}
	}

	*r = Results{Error: maxError, Color4: p.UseColor4}
	for _, center := range centers[:numCenters] {
		for _, dr := range deltas {
			cr := center[0] + int32(dr)
			if (cr < lo[0]) || (hi[0] < cr) {
				continue
			}
			for _, dg := range deltas {
				cg := center[1] + int32(dg)
				if (cg < lo[1]) || (hi[1] < cg) {
					continue
				}
				for _, db := range deltas {
					cb := center[2] + int32(db)
					if (cb < lo[2]) || (hi[2] < cb) {
						continue
					}
					o.tryBase([3]uint8{uint8(cr), uint8(cg), uint8(cb)}, r)
				}
			}
		}
	}
	return nil
}

// tryBase evaluates every intensity table for one unscaled base color and
// updates r if any beats it.
func (o *Optimizer) tryBase(base [3]uint8, r *Results) {
	scaled := [3]uint8{}
	for i := range 3 {
		if o.p.UseColor4 {
			scaled[i] = block.Expand4(base[i])
		} else {
			scaled[i] = block.Expand5(base[i])
		}
	}

	for t := range uint8(8) {
		colors := block.Modulate(scaled, t)
		total := uint64(0)
		for i, c := range o.p.Pixels {
			bestJ, bestD := uint8(0), ^uint32(0)
			for _, j := range scramble {
				if d := pixel.SquaredDistance(c, colors[j], o.p.Perceptual, false); bestD > d {
					bestJ, bestD = j, d
				}
			}
			o.trial.Selectors[i] = bestJ
			total += uint64(bestD)
			if total >= r.Error {
				break
			}
		}
		if r.Error > total {
			r.BaseColor = base
			r.Table = t
			r.Selectors = o.trial.Selectors
			r.Error = total
		}
	}
}

func average(pixels []pixel.RGBA) (ret [3]float64) {
	for _, c := range pixels {
		ret[0] += float64(c.R)
		ret[1] += float64(c.G)
		ret[2] += float64(c.B)
	}
	n := float64(len(pixels))
	return [3]float64{ret[0] / n, ret[1] / n, ret[2] / n}
}

// reduceAverage rounds an 8-bit scale average to the nearest limit-scale
// value.
func reduceAverage(avgs [3]float64, limit int32) (ret [3]int32) {
	for i := range 3 {
		ret[i] = int32(((avgs[i] * float64(limit)) / 255) + 0.5)
	}
	return ret
}

// reduceQuantize picks, out of the 8 corners of the quantization cell that
// contains the average, the one whose error is most evenly spread across
// channels. That keeps the error's hue shift small.
func reduceQuantize(avgs [3]float64, limit int32, perceptual bool) (ret [3]int32) {
	weights := [3]float64{1, 1, 1}
	if perceptual {
		weights = [3]float64{8, 25, 1}
	}

	corners := [3][2]int32{}
	deltas := [3][2]float64{}
	for i := range 3 {
		lo := int32((avgs[i] * float64(limit)) / 255)
		hi := min(limit, lo+1)
		corners[i] = [2]int32{lo, hi}
		deltas[i] = [2]float64{
			float64(expand(lo, limit)) - avgs[i],
			float64(expand(hi, limit)) - avgs[i],
		}
	}

	bestLoss := -1.0
	for i := range 8 {
		ir := (i >> 0) & 1
		ig := (i >> 1) & 1
		ib := (i >> 2) & 1
		drg := deltas[0][ir] - deltas[1][ig]
		dgb := deltas[1][ig] - deltas[2][ib]
		dbr := deltas[2][ib] - deltas[0][ir]
		loss := 0 +
			(weights[0] * weights[1] * drg * drg) +
			(weights[1] * weights[2] * dgb * dgb) +
			(weights[2] * weights[0] * dbr * dbr)
		if (bestLoss < 0) || (bestLoss > loss) {
			bestLoss = loss
			ret = [3]int32{corners[0][ir], corners[1][ig], corners[2][ib]}
		}
	}
	return ret
}

func expand(v int32, limit int32) int32 {
	if limit == 15 {
		return (v << 4) | v
	}
	return (v << 3) | (v >> 2)
}
