// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dxtfast is a cheap DXT compressor. It fits endpoints along the
// colors' principal axis and refines them with a least squares line fit,
// instead of searching like the dxt1 and dxt5 packages do.
//
// Color blocks always use the 4-color mode: the returned low endpoint is
// never less than the high one.
package dxtfast

import (
	"math"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/pixel"
)

const (
	powerIterations = 4

	// refineRounds caps the number of improving moves refineEndpoints
	// makes.
	refineRounds = 16

	// axisWindow is how many axis steps, each axisStep 8-bit units long,
	// refineEndpoints probes in each direction.
	axisWindow = 4
	axisStep   = 8.0
)

type vec3 [3]float64

func (a vec3) dot(b vec3) float64 { return (a[0] * b[0]) + (a[1] * b[1]) + (a[2] * b[2]) }

func rgb(c pixel.RGBA) vec3 { return vec3{float64(c.R), float64(c.G), float64(c.B)} }

// CompressColorBlock compresses sixteen row-major pixels. Alpha is ignored.
func CompressColorBlock(pixels *[16]pixel.RGBA, perceptual bool, refine bool) (low uint16, high uint16, sel [16]uint8) {
	return CompressColorBlockN(pixels[:], perceptual, refine)
}

// CompressColorBlockN is like CompressColorBlock but takes up to sixteen
// pixels. Only the first len(pixels) selectors are meaningful. No pixels
// gives a black block.
func CompressColorBlockN(pixels []pixel.RGBA, perceptual bool, refine bool) (low uint16, high uint16, sel [16]uint8) {
	if len(pixels) == 0 {
		return 0, 0, sel
	}
	pixels = pixels[:min(len(pixels), 16)]

	c0, c1 := optimizeBlockColors(pixels)
	sel, err := matchBlockColors(pixels, c0, c1, perceptual)

	// Two rounds of line fitting, as each can move the selectors.
	for range 2 {
		r0, r1, ok := refineBlock(pixels, &sel)
		if !ok || ((r0 == c0) && (r1 == c1)) {
			break
		}
		s, e := matchBlockColors(pixels, r0, r1, perceptual)
		if e >= err {
			break
		}
		c0, c1, sel, err = r0, r1, s, e
	}

	if refine {
		c0, c1, sel, _ = refineEndpoints(pixels, perceptual, c0, c1, sel, err)
	}
	return canonicalize(len(pixels), c0, c1, sel)
}

// RefineEndpoints2 improves a starting endpoint pair for up to sixteen
// pixels, returning the refined pair in 4-color order with its selectors and
// squared error.
func RefineEndpoints2(pixels []pixel.RGBA, perceptual bool, low uint16, high uint16) (uint16, uint16, [16]uint8, uint64) {
	if len(pixels) == 0 {
		return 0, 0, [16]uint8{}, 0
	}
	pixels = pixels[:min(len(pixels), 16)]
	sel, err := matchBlockColors(pixels, low, high, perceptual)
	c0, c1, sel, err := refineEndpoints(pixels, perceptual, low, high, sel, err)
	c0, c1, sel = canonicalize(len(pixels), c0, c1, sel)
	return c0, c1, sel, err
}

// optimizeBlockColors seeds the endpoints with the two pixels whose
// projections onto the principal axis are extreme.
func optimizeBlockColors(pixels []pixel.RGBA) (c0 uint16, c1 uint16) {
	n := float64(len(pixels))
	mean := vec3{}
	for _, c := range pixels {
		v := rgb(c)
		for i := range 3 {
			mean[i] += v[i]
		}
	}
	for i := range 3 {
		mean[i] /= n
	}

	cov := [3]vec3{}
	for _, c := range pixels {
		v := rgb(c)
		d := vec3{v[0] - mean[0], v[1] - mean[1], v[2] - mean[2]}
		for j := range 3 {
			for k := range 3 {
				cov[j][k] += d[j] * d[k]
			}
		}
	}
	// Normalizing keeps the power iteration's magnitudes in a fixed range.
	if m := max(cov[0][0], cov[1][1], cov[2][2]); m > 0 {
		for j := range 3 {
			for k := range 3 {
				cov[j][k] /= m
			}
		}
	}

	// Start from the column with the largest variance.
	axis := cov[0]
	if (cov[1][1] > cov[0][0]) && (cov[1][1] >= cov[2][2]) {
		axis = cov[1]
	} else if cov[2][2] > cov[0][0] {
		axis = cov[2]
	}
	for range powerIterations {
		axis = vec3{cov[0].dot(axis), cov[1].dot(axis), cov[2].dot(axis)}
	}
	if magn := max(math.Abs(axis[0]), math.Abs(axis[1]), math.Abs(axis[2])); magn < 4.0/512 {
		// Near-degenerate. Fall back to the luma axis.
		axis = vec3{0.299, 0.587, 0.114}
	}

	minI, maxI := 0, 0
	minD, maxD := math.Inf(+1), math.Inf(-1)
	for i, c := range pixels {
		d := rgb(c).dot(axis)
		if minD > d {
			minI, minD = i, d
		}
		if maxD < d {
			maxI, maxD = i, d
		}
	}
	return block.Pack565(pixels[maxI], true), block.Pack565(pixels[minI], true)
}

// matchBlockColors assigns each pixel the nearest 4-color mode palette
// entry of the abstract (c0, c1) pair.
func matchBlockColors(pixels []pixel.RGBA, c0 uint16, c1 uint16, perceptual bool) (sel [16]uint8, err uint64) {
	pal := block.Palette(c0, c1, false)
	for i, c := range pixels {
		bestJ, bestD := uint8(0), ^uint32(0)
		for j := range pal {
			if d := pixel.SquaredDistance(c, pal[j], perceptual, false); bestD > d {
				bestJ, bestD = uint8(j), d
			}
		}
		sel[i] = bestJ
		err += uint64(bestD)
	}
	return sel, err
}

// refineBlock solves the 2×2 least squares system for the endpoints that
// best fit the selectors. It fails when every pixel uses the same
// interpolation weight.
func refineBlock(pixels []pixel.RGBA, sel *[16]uint8) (c0 uint16, c1 uint16, ok bool) {
	weights := [4]float64{1, 0, 2.0 / 3, 1.0 / 3}

	aa, ab, bb := 0.0, 0.0, 0.0
	ax, bx := vec3{}, vec3{}
	for i, c := range pixels {
		a := weights[sel[i]&3]
		b := 1 - a
		x := rgb(c)
		aa += a * a
		ab += a * b
		bb += b * b
		for j := range 3 {
			ax[j] += a * x[j]
			bx[j] += b * x[j]
		}
	}

	det := (aa * bb) - (ab * ab)
	if math.Abs(det) < 1e-9 {
		return 0, 0, false
	}
	e0, e1 := vec3{}, vec3{}
	for j := range 3 {
		e0[j] = ((bb * ax[j]) - (ab * bx[j])) / det
		e1[j] = ((aa * bx[j]) - (ab * ax[j])) / det
	}
	return quantize565(e0), quantize565(e1), true
}

func quantize565(c vec3) uint16 {
	q := func(v float64, maxV float64) uint16 {
		return uint16(math.Floor(((min(max(v, 0), 255) * maxV) / 255) + 0.5))
	}
	return (q(c[0], 31) << 11) | (q(c[1], 63) << 5) | q(c[2], 31)
}

func unpack(v uint16) vec3 { return rgb(block.Unpack565(v, true)) }

// refineEndpoints hill-climbs from (c0, c1). Each round tries moving one
// channel of one endpoint by one LSB, then sliding or stretching the pair
// along its own axis, and takes the best strictly improving candidate.
func refineEndpoints(pixels []pixel.RGBA, perceptual bool, c0 uint16, c1 uint16, sel [16]uint8, err uint64) (uint16, uint16, [16]uint8, uint64) {
	visited := map[uint32]struct{}{key(c0, c1): {}}

	for range refineRounds {
		if err == 0 {
			break
		}
		best0, best1, bestSel, bestErr := c0, c1, sel, err
		try := func(t0 uint16, t1 uint16) {
			k := key(t0, t1)
			if _, ok := visited[k]; ok {
				return
			}
			visited[k] = struct{}{}
			if s, e := matchBlockColors(pixels, t0, t1, perceptual); bestErr > e {
				best0, best1, bestSel, bestErr = t0, t1, s, e
			}
		}

		for ch := range 3 {
			for _, d := range [2]int{-1, +1} {
				if t, ok := nudge(c0, ch, d); ok {
					try(t, c1)
				}
				if t, ok := nudge(c1, ch, d); ok {
					try(c0, t)
				}
			}
		}

		v0, v1 := unpack(c0), unpack(c1)
		axis := vec3{v0[0] - v1[0], v0[1] - v1[1], v0[2] - v1[2]}
		if n := math.Sqrt(axis.dot(axis)); n > 0 {
			axis = vec3{axis[0] / n, axis[1] / n, axis[2] / n}
			for s := 1; s <= axisWindow; s++ {
				for _, sign := range [2]float64{-1, +1} {
					step := sign * float64(s) * axisStep
					d := vec3{step * axis[0], step * axis[1], step * axis[2]}
					up0 := vec3{v0[0] + d[0], v0[1] + d[1], v0[2] + d[2]}
					up1 := vec3{v1[0] + d[0], v1[1] + d[1], v1[2] + d[2]}
					dn1 := vec3{v1[0] - d[0], v1[1] - d[1], v1[2] - d[2]}
					// Slide both, or stretch (and shrink) them apart.
					try(quantize565(up0), quantize565(up1))
					try(quantize565(up0), quantize565(dn1))
				}
			}
		}

		if bestErr >= err {
			break
		}
		c0, c1, sel, err = best0, best1, bestSel, bestErr
	}
	return c0, c1, sel, err
}

func key(c0 uint16, c1 uint16) uint32 { return (uint32(c0) << 16) | uint32(c1) }

// nudge adds d to one channel (0=R, 1=G, 2=B) of a packed color, reporting
// false if that would leave the channel's range.
func nudge(v uint16, channel int, d int) (uint16, bool) {
	shift, maxV := [3]uint{11, 5, 0}[channel], [3]int{31, 63, 31}[channel]
	x := int((v>>shift)&uint16(maxV)) + d
	if (x < 0) || (maxV < x) {
		return v, false
	}
	return (v &^ (uint16(maxV) << shift)) | (uint16(x) << shift), true
}

// canonicalize orders the endpoints so that the block decodes in 4-color
// mode, remapping selectors {0, 1, 2, 3} to {1, 0, 3, 2} on a swap. Equal
// endpoints get all-zero selectors.
func canonicalize(n int, c0 uint16, c1 uint16, sel [16]uint8) (uint16, uint16, [16]uint8) {
	switch {
	case c0 == c1:
		return c0, c1, [16]uint8{}
	case c0 < c1:
		swap := [4]uint8{1, 0, 3, 2}
		for i := range n {
			sel[i] = swap[sel[i]&3]
		}
		return c1, c0, sel
	}
	return c0, c1, sel
}
