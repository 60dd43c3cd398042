// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dxt5 finds DXT5 (BC3 alpha, BC4, BC5) endpoints and selectors for up
// to sixteen single channel values.
package dxt5

import (
	"errors"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/quality"
)

var (
	ErrNoPixels       = errors.New("dxt5: no pixels")
	ErrTooManyPixels  = errors.New("dxt5: too many pixels")
	ErrNilParamsOrRes = errors.New("dxt5: nil params or results")
)

// Params are the inputs to Compute.
type Params struct {
	// Pixels holds 1 to 16 values.
	Pixels []uint8

	Quality quality.Level

	// UseBothSchemes also tries the 6-level scheme, whose palette has exact
	// 0 and 255 entries. Otherwise only the 8-level scheme is used.
	UseBothSchemes bool
}

// Results are the outputs of Compute.
type Results struct {
	// Low and High are the endpoints in decodable order: Low > High for the
	// 8-level scheme, Low <= High for the 6-level one.
	Low, High uint8

	// Selectors holds one selector per input value.
	Selectors [16]uint8

	// Error is the squared error of the decoded block against the input.
	Error uint64

	Is8Level bool
}

// Block returns the results as a DXT5 alpha block.
func (r *Results) Block() (b block.DXT5) {
	b.SetLow(r.Low)
	b.SetHigh(r.High)
	b.SetSelectors(&r.Selectors)
	return b
}

const maxError = ^uint64(0)

// candidate is an abstract encoding: the palette formula of its scheme is
// applied to (e0, e1) regardless of their order.
type candidate struct {
	e0, e1 uint8
	eight  bool
	err    uint64
}

// Optimizer holds scratch state reused across Compute calls. It is not safe
// for concurrent use.
type Optimizer struct {
	numUnique int
	unique    [16]uint8
	weights   [16]uint32

	best    candidate
	visited map[uint32]struct{}
}

// Compute fills r with the best encoding it finds for p's values.
func (o *Optimizer) Compute(p *Params, r *Results) error {
	if (p == nil) || (r == nil) {
		return ErrNilParamsOrRes
	} else if len(p.Pixels) == 0 {
		return ErrNoPixels
	} else if len(p.Pixels) > 16 {
		return ErrTooManyPixels
	}

	o.dedup(p.Pixels)
	*r = Results{}

	if o.numUnique == 1 {
		v := o.unique[0]
		r.Low, r.High = v, v
		return nil
	}

	o.best = candidate{err: maxError}
	for i := range o.numUnique {
		for j := i + 1; j < o.numUnique; j++ {
			lo, hi := min(o.unique[i], o.unique[j]), max(o.unique[i], o.unique[j])
			o.try(hi, lo, true)
			if p.UseBothSchemes {
				o.try(lo, hi, false)
			}
		}
	}

	if radius := windowRadius(p.Quality); radius > 0 {
		o.probeWindow(radius, p.UseBothSchemes)
	}

	o.finish(p.Pixels, r)
	return nil
}

func windowRadius(q quality.Level) int {
	switch {
	case q >= quality.Uber:
		return 16
	case q >= quality.Better:
		return 8
	}
	return 0
}

func (o *Optimizer) dedup(pixels []uint8) {
	o.numUnique = 0
	for _, v := range pixels {
		j := 0
		for ; j < o.numUnique; j++ {
			if o.unique[j] == v {
				break
			}
		}
		if j == o.numUnique {
			o.unique[j], o.weights[j] = v, 0
			o.numUnique++
		}
		o.weights[j]++
	}
}

// levels returns the abstract palette of (e0, e1) under a scheme.
func levels(e0 uint8, e1 uint8, eight bool) (ret [8]uint8) {
	a, b := uint32(e0), uint32(e1)
	ret[0], ret[1] = e0, e1
	if eight {
		for i := uint32(1); i < 7; i++ {
			ret[i+1] = uint8((((7 - i) * a) + (i * b) + 3) / 7)
		}
	} else {
		for i := uint32(1); i < 5; i++ {
			ret[i+1] = uint8((((5 - i) * a) + (i * b) + 2) / 5)
		}
		ret[6], ret[7] = 0x00, 0xFF
	}
	return ret
}

func nearest(v uint8, pal *[8]uint8) (sel uint8, d uint32) {
	d = ^uint32(0)
	for j, x := range pal {
		e := int32(v) - int32(x)
		if ed := uint32(e * e); d > ed {
			sel, d = uint8(j), ed
		}
	}
	return sel, d
}

func (o *Optimizer) evaluate(e0 uint8, e1 uint8, eight bool) uint64 {
	pal := levels(e0, e1, eight)
	total := uint64(0)
	for i := range o.numUnique {
		_, d := nearest(o.unique[i], &pal)
		total += uint64(d) * uint64(o.weights[i])
	}
	return total
}

func (o *Optimizer) try(e0 uint8, e1 uint8, eight bool) {
	if err := o.evaluate(e0, e1, eight); o.best.err > err {
		o.best = candidate{e0, e1, eight, err}
	}
}

// probeWindow tries every endpoint pair within radius of the best pair so
// far, skipping pairs already visited.
func (o *Optimizer) probeWindow(radius int, bothSchemes bool) {
	if o.visited == nil {
		o.visited = map[uint32]struct{}{}
	}
	clear(o.visited)

	center := o.best
	for d0 := -radius; d0 <= radius; d0++ {
		e0 := int(center.e0) + d0
		if (e0 < 0) || (255 < e0) {
			continue
		}
		for d1 := -radius; d1 <= radius; d1++ {
			e1 := int(center.e1) + d1
			if (e1 < 0) || (255 < e1) {
				continue
			}
			for _, eight := range [2]bool{true, false} {
				if !eight && !bothSchemes {
					continue
				}
				key := visitKey(uint8(e0), uint8(e1), eight)
				if _, ok := o.visited[key]; ok {
					continue
				}
				o.visited[key] = struct{}{}
				o.try(uint8(e0), uint8(e1), eight)
			}
		}
	}
}

// visitKey identifies a candidate up to endpoint order, which only permutes
// the palette.
func visitKey(e0 uint8, e1 uint8, eight bool) uint32 {
	lo, hi := min(e0, e1), max(e0, e1)
	k := (uint32(lo) << 8) | uint32(hi)
	if eight {
		k |= 1 << 16
	}
	return k
}

// finish orders the best candidate's endpoints for its scheme, remapping the
// selectors when that swaps them, then re-derives any selector that the
// decodable block's own palette serves better. That only happens for a
// degenerate 8-level pair, which decodes as 6-level.
func (o *Optimizer) finish(pixels []uint8, r *Results) {
	c := o.best
	pal := levels(c.e0, c.e1, c.eight)
	low, high := c.e0, c.e1
	invert := (*[8]uint8)(nil)
	if c.eight && (low < high) {
		low, high, invert = high, low, &block.Invert8
	} else if !c.eight && (low > high) {
		low, high, invert = high, low, &block.Invert6
	}

	r.Low, r.High = low, high
	r.Is8Level = low > high
	decoded := block.AlphaPalette(low, high)
	r.Error = 0
	for i, v := range pixels {
		sel, _ := nearest(v, &pal)
		if invert != nil {
			sel = invert[sel]
		}
		e := int32(v) - int32(decoded[sel])
		d := uint32(e * e)
		if s, d2 := nearest(v, &decoded); d2 < d {
			sel, d = s, d2
		}
		r.Selectors[i] = sel
		r.Error += uint64(d)
	}
}
