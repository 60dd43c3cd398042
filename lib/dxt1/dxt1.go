// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dxt1 finds DXT1 (BC1) endpoints and selectors for up to sixteen
// pixels, minimizing the (optionally perceptually weighted) squared color
// error.
//
// The search works on abstract endpoint pairs (c0, c1) and a mode, 4-color
// or 3-color, and only orders the endpoints into a decodable block at the
// very end. An abstract 4-color palette is {c0, c1, 2/3 c0 + 1/3 c1, 1/3 c0
// + 2/3 c1} and a 3-color palette is {c0, c1, 1/2 c0 + 1/2 c1, transparent},
// computed with exactly the decoder's arithmetic.
package dxt1

import (
	"errors"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/pixel"
	"github.com/nigeltao/dxtc/lib/quality"
)

var (
	ErrNoPixels       = errors.New("dxt1: no pixels")
	ErrTooManyPixels  = errors.New("dxt1: too many pixels")
	ErrNilParamsOrRes = errors.New("dxt1: nil params or results")
)

// DefaultAlphaThreshold is the alpha below which a pixel is cut out.
const DefaultAlphaThreshold = 128

// Params are the inputs to Compute.
type Params struct {
	// Pixels holds 1 to 16 pixels. Their order is arbitrary but Results'
	// selectors follow it.
	Pixels []pixel.RGBA

	Quality quality.Level

	// Perceptual weights the R, G and B errors 8:25:1.
	Perceptual bool

	// UseAlphaBlocks allows 3-color blocks. It must be false when the block
	// is the color half of a DXT3 or DXT5 block, which always decode as
	// 4-color.
	UseAlphaBlocks bool

	// AlphaThreshold is the alpha below which a pixel is cut out, mapping to
	// the transparent selector. It only applies when both UseAlphaBlocks and
	// PixelsHaveAlpha are set.
	AlphaThreshold uint8

	// Grayscale replaces every pixel by its luma before optimizing.
	Grayscale bool

	// EndpointCaching tries the last four distinct solutions computed by
	// the same Optimizer as candidates.
	EndpointCaching bool

	// TransparentForBlack lets 3-color blocks encode near-black pixels with
	// the transparent selector, for consumers that ignore alpha.
	TransparentForBlack bool

	// PixelsHaveAlpha is whether the pixels' alpha is meaningful.
	PixelsHaveAlpha bool
}

// Results are the outputs of Compute.
type Results struct {
	// Low and High are the packed RGB565 endpoints, in decodable order:
	// Low > High for a 4-color block, Low <= High for a 3-color one.
	Low, High uint16

	// Selectors holds one selector per input pixel. Entries beyond
	// len(Params.Pixels) are zero.
	Selectors [16]uint8

	// Error is the weighted squared RGB error of the decoded block against
	// the input, ignoring cut-out pixels.
	Error uint64

	// AlphaBlock is whether Low <= High, so that the block decodes as
	// 3-color. A 4-color solution whose endpoints quantize to the same
	// color also ends up here, with every selector 0, and decodes opaque.
	AlphaBlock bool
}

// Block returns the results as a DXT1 block.
func (r *Results) Block() (b block.DXT1) {
	b.SetLow(r.Low)
	b.SetHigh(r.High)
	b.SetSelectors(&r.Selectors)
	return b
}

type tierConfig struct {
	powerIterations int
	localIterations int
	refits          int
	compareModes    bool
	tryBlack        bool
	trySolidAverage bool
	tryFloor        bool
}

var tiers = [quality.NumLevels]tierConfig{
	quality.SuperFast: {powerIterations: 1},
	quality.Fast:      {powerIterations: 2, localIterations: 2},
	quality.Normal:    {powerIterations: 4, localIterations: 8, refits: 1},
	quality.Better: {powerIterations: 6, localIterations: 16, refits: 2,
		compareModes: true, tryBlack: true, trySolidAverage: true},
	quality.Uber: {powerIterations: 8, localIterations: 32, refits: 3,
		compareModes: true, tryBlack: true, trySolidAverage: true, tryFloor: true},
}

const maxError = ^uint64(0)

// solution is an abstract encoding. sel is indexed by unique color.
type solution struct {
	c0, c1           uint16
	threeColor       bool
	blackTransparent bool
	sel              [16]uint8
	err              uint64
}

type cacheEntry struct {
	c0, c1     uint16
	threeColor bool
}

// Optimizer holds scratch state reused across Compute calls. It is not safe
// for concurrent use; give each goroutine its own.
type Optimizer struct {
	p    *Params
	tier tierConfig

	numUnique     int
	unique        [16]pixel.RGBA
	hashes        [16]uint32
	weights       [16]uint32
	pixelToUnique [16]int8
	numCutout     int

	best solution

	cache     [4]cacheEntry
	cacheLen  int
	cacheNext int
}

// Compute fills r with the best encoding it finds for p's pixels.
func (o *Optimizer) Compute(p *Params, r *Results) error {
	if (p == nil) || (r == nil) {
		return ErrNilParamsOrRes
	} else if len(p.Pixels) == 0 {
		return ErrNoPixels
	} else if len(p.Pixels) > 16 {
		return ErrTooManyPixels
	}

	o.p = p
	o.tier = tiers[min(int(p.Quality), quality.NumLevels-1)]
	o.best = solution{err: maxError}
	o.dedup()

	*r = Results{}
	if o.numUnique == 0 {
		// Every pixel is cut out.
		r.Low, r.High, r.AlphaBlock = 0, 0, true
		for i := range p.Pixels {
			r.Selectors[i] = 3
		}
		return nil
	}

	if o.numUnique == 1 {
		o.computeSolid(o.unique[0])
	} else {
		o.computeGeneral()
	}

	if p.EndpointCaching {
		o.tryCache()
		o.remember()
	}
	o.finish(r)
	return nil
}

func (o *Optimizer) cutoutsEnabled() bool {
	return o.p.UseAlphaBlocks && o.p.PixelsHaveAlpha
}

// dedup builds the weighted unique color table.
func (o *Optimizer) dedup() {
	o.numUnique, o.numCutout = 0, 0
	threshold := o.p.AlphaThreshold
	cutouts := o.cutoutsEnabled()

	for i, c := range o.p.Pixels {
		if cutouts && (c.A < threshold) {
			o.pixelToUnique[i] = -1
			o.numCutout++
			continue
		}
		if o.p.Grayscale {
			y := c.Luma()
			c.R, c.G, c.B = y, y, y
		}
		c.A = 0xFF
		h := c.Hash()

		j := 0
		for ; j < o.numUnique; j++ {
			if (o.hashes[j] == h) && o.unique[j].RGBEqual(c) {
				break
			}
		}
		if j == o.numUnique {
			o.unique[j], o.hashes[j], o.weights[j] = c, h, 0
			o.numUnique++
		}
		o.weights[j]++
		o.pixelToUnique[i] = int8(j)
	}
}

// threeColorAllowed returns whether 3-color candidates may be tried and
// fourColorAllowed whether 4-color ones may.
func (o *Optimizer) threeColorAllowed() bool { return o.p.UseAlphaBlocks }
func (o *Optimizer) fourColorAllowed() bool  { return o.numCutout == 0 }

// palette returns the abstract palette of (c0, c1) in the given mode.
func palette(c0 uint16, c1 uint16, threeColor bool) [4]pixel.RGBA {
	if !threeColor {
		return block.Palette(c0, c1, false)
	} else if c0 <= c1 {
		return block.Palette(c0, c1, true)
	}
	ret := block.Palette(c1, c0, true)
	ret[0], ret[1] = ret[1], ret[0]
	return ret
}

var black = pixel.RGBA{A: 0xFF}

// evaluate assigns each unique color to its nearest palette entry and sets
// s.sel and s.err. Invalid combinations get maxError.
func (o *Optimizer) evaluate(s *solution) {
	if (s.threeColor && !o.threeColorAllowed()) || (!s.threeColor && !o.fourColorAllowed()) {
		s.err = maxError
		return
	}

	pal := palette(s.c0, s.c1, s.threeColor)
	n := 4
	if s.threeColor {
		n = 3
	}
	perceptual := o.p.Perceptual

	s.err = 0
	for i := range o.numUnique {
		c := o.unique[i]
		best, bestD := uint8(0), ^uint32(0)
		for j := range n {
			if d := pixel.SquaredDistance(c, pal[j], perceptual, false); bestD > d {
				best, bestD = uint8(j), d
			}
		}
		if s.blackTransparent {
			if d := pixel.SquaredDistance(c, black, perceptual, false); bestD > d {
				best, bestD = 3, d
			}
		}
		s.sel[i] = best
		s.err += uint64(bestD) * uint64(o.weights[i])
	}
}

// try evaluates the candidate and keeps it if it beats the best so far. It
// returns the evaluated candidate.
func (o *Optimizer) try(c0 uint16, c1 uint16, threeColor bool, blackTransparent bool) solution {
	s := solution{c0: c0, c1: c1, threeColor: threeColor, blackTransparent: blackTransparent}
	o.evaluate(&s)
	o.consider(&s)
	return s
}

func (o *Optimizer) consider(s *solution) {
	if o.best.err > s.err {
		o.best = *s
	}
}

// modes returns the modes to try: 4-color, 3-color or both.
func (o *Optimizer) modes() (ret [2]bool, n int) {
	if o.fourColorAllowed() {
		ret[n] = false
		n++
	}
	if o.threeColorAllowed() && ((o.numCutout > 0) || o.tier.compareModes || !o.fourColorAllowed()) {
		ret[n] = true
		n++
	}
	return ret, n
}

// computeSolid looks a single color up in the solid tables. Both modes are
// cheap enough to always try.
func (o *Optimizer) computeSolid(c pixel.RGBA) {
	if o.fourColorAllowed() {
		o.trySolid(c, false)
	}
	if o.threeColorAllowed() {
		o.trySolid(c, true)
	}
}

func (o *Optimizer) trySolid(c pixel.RGBA, threeColor bool) solution {
	tc := 0
	if threeColor {
		tc = 1
	}
	r := solidTables[tc][0][c.R]
	g := solidTables[tc][1][c.G]
	b := solidTables[tc][0][c.B]
	c0 := (uint16(r.e0) << 11) | (uint16(g.e0) << 5) | uint16(b.e0)
	c1 := (uint16(r.e1) << 11) | (uint16(g.e1) << 5) | uint16(b.e1)
	return o.try(c0, c1, threeColor, false)
}

// finish orders the best solution's endpoints into a decodable block and
// expands its selectors to one per pixel.
func (o *Optimizer) finish(r *Results) {
	s := &o.best
	low, high := s.c0, s.c1
	remap := [4]uint8{0, 1, 2, 3}

	if s.threeColor {
		if low > high {
			low, high = high, low
			remap = [4]uint8{1, 0, 2, 3}
		}
	} else if low < high {
		low, high = high, low
		remap = [4]uint8{1, 0, 3, 2}
	} else if low == high {
		// Every non-transparent palette entry is the same color.
		remap = [4]uint8{0, 0, 0, 0}
	}

	r.Low, r.High = low, high
	r.AlphaBlock = low <= high
	r.Error = s.err
	for i := range o.p.Pixels {
		if u := o.pixelToUnique[i]; u < 0 {
			r.Selectors[i] = 3
		} else {
			r.Selectors[i] = remap[s.sel[u]]
		}
	}
}

func (o *Optimizer) tryCache() {
	for _, e := range o.cache[:o.cacheLen] {
		s := o.try(e.c0, e.c1, e.threeColor, false)
		if s.err < maxError {
			o.refineLocal(s)
		}
	}
}

func (o *Optimizer) remember() {
	e := cacheEntry{o.best.c0, o.best.c1, o.best.threeColor}
	for _, f := range o.cache[:o.cacheLen] {
		if f == e {
			return
		}
	}
	o.cache[o.cacheNext] = e
	o.cacheNext = (o.cacheNext + 1) % len(o.cache)
	o.cacheLen = min(o.cacheLen+1, len(o.cache))
}
