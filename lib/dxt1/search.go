// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt1

import (
	"math"

	"github.com/nigeltao/dxtc/lib/pixel"
)

type vec3 [3]float64

func (a vec3) dot(b vec3) float64 { return (a[0] * b[0]) + (a[1] * b[1]) + (a[2] * b[2]) }

// nearBlackLimit is the largest component value a color may have and still
// be encoded as transparent black.
const nearBlackLimit = 4

func isNearBlack(c pixel.RGBA) bool {
	return (c.R <= nearBlackLimit) && (c.G <= nearBlackLimit) && (c.B <= nearBlackLimit)
}

func (o *Optimizer) computeGeneral() {
	modes, numModes := o.modes()
	for _, threeColor := range modes[:numModes] {
		o.fitAxis(threeColor, false, false)
		if o.tier.tryFloor {
			o.fitAxis(threeColor, false, true)
		}
	}

	if o.tier.tryBlack && o.p.TransparentForBlack && o.threeColorAllowed() {
		o.fitAxis(true, true, false)
	}

	if o.tier.trySolidAverage {
		mean, _ := o.mean(false)
		avg := pixel.RGBA{
			R: uint8(math.Floor(mean[0] + 0.5)),
			G: uint8(math.Floor(mean[1] + 0.5)),
			B: uint8(math.Floor(mean[2] + 0.5)),
			A: 0xFF,
		}
		for _, threeColor := range modes[:numModes] {
			o.trySolid(avg, threeColor)
		}
	}
}

// fitAxis seeds endpoints from the colors' extent along their principal
// axis, then refines them. With skipBlack, near-black colors are left out of
// the fit and may use the transparent selector.
func (o *Optimizer) fitAxis(threeColor bool, skipBlack bool, floor bool) {
	mean, total := o.mean(skipBlack)
	if total == 0 {
		return
	}
	axis := o.principalAxis(mean, skipBlack)

	tMin, tMax := math.Inf(+1), math.Inf(-1)
	for i := range o.numUnique {
		c := o.unique[i]
		if skipBlack && isNearBlack(c) {
			continue
		}
		d := vec3{float64(c.R) - mean[0], float64(c.G) - mean[1], float64(c.B) - mean[2]}
		t := d.dot(axis)
		tMin, tMax = min(tMin, t), max(tMax, t)
	}

	e0 := vec3{mean[0] + tMax*axis[0], mean[1] + tMax*axis[1], mean[2] + tMax*axis[2]}
	e1 := vec3{mean[0] + tMin*axis[0], mean[1] + tMin*axis[1], mean[2] + tMin*axis[2]}
	s := o.try(quantize565(e0, floor), quantize565(e1, floor), threeColor, skipBlack)
	if s.err == maxError {
		return
	}
	s = o.refineLocal(s)
	for range o.tier.refits {
		t, ok := o.refit(&s)
		if !ok || (t.err >= s.err) {
			break
		}
		s = o.refineLocal(t)
	}
}

// mean returns the weighted mean color and the total weight.
func (o *Optimizer) mean(skipBlack bool) (ret vec3, total float64) {
	for i := range o.numUnique {
		c := o.unique[i]
		if skipBlack && isNearBlack(c) {
			continue
		}
		w := float64(o.weights[i])
		ret[0] += w * float64(c.R)
		ret[1] += w * float64(c.G)
		ret[2] += w * float64(c.B)
		total += w
	}
	if total > 0 {
		ret[0] /= total
		ret[1] /= total
		ret[2] /= total
	}
	return ret, total
}

// principalAxis approximates the covariance matrix's dominant eigenvector by
// power iteration.
func (o *Optimizer) principalAxis(mean vec3, skipBlack bool) vec3 {
	cov := [3]vec3{}
	for i := range o.numUnique {
		c := o.unique[i]
		if skipBlack && isNearBlack(c) {
			continue
		}
		w := float64(o.weights[i])
		d := vec3{float64(c.R) - mean[0], float64(c.G) - mean[1], float64(c.B) - mean[2]}
		for j := range 3 {
			for k := range 3 {
				cov[j][k] += w * d[j] * d[k]
			}
		}
	}

	// Start from the column with the largest variance.
	v := cov[0]
	if (cov[1][1] > cov[0][0]) && (cov[1][1] >= cov[2][2]) {
		v = cov[1]
	} else if cov[2][2] > cov[0][0] {
		v = cov[2]
	}

	for range max(1, o.tier.powerIterations) {
		w := vec3{cov[0].dot(v), cov[1].dot(v), cov[2].dot(v)}
		n := math.Sqrt(w.dot(w))
		if n < 1e-9 {
			break
		}
		v = vec3{w[0] / n, w[1] / n, w[2] / n}
	}

	n := math.Sqrt(v.dot(v))
	if n < 1e-9 {
		return vec3{0.57735027, 0.57735027, 0.57735027}
	}
	return vec3{v[0] / n, v[1] / n, v[2] / n}
}

// quantize565 packs an 8-bit scale color, rounding to nearest or, with
// floor, rounding down.
func quantize565(c vec3, floor bool) uint16 {
	q := func(v float64, maxV float64) uint16 {
		x := (min(max(v, 0), 255) * maxV) / 255
		if floor {
			x = math.Floor(x)
		} else {
			x = math.Floor(x + 0.5)
		}
		return uint16(x)
	}
	return (q(c[0], 31) << 11) | (q(c[1], 63) << 5) | q(c[2], 31)
}

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

// refineLocal hill-climbs by moving one channel of one endpoint by one LSB
// at a time, taking the best move per round, until no move improves or the
// tier's iteration cap is hit.
func (o *Optimizer) refineLocal(s solution) solution {
	for range o.tier.localIterations {
		if s.err == 0 {
			break
		}
		best := s
		for e := range 2 {
			for ch := range 3 {
				for _, d := range [2]int{-1, +1} {
					t := s
					ok := false
					if e == 0 {
						t.c0, ok = nudge(s.c0, ch, d)
					} else {
						t.c1, ok = nudge(s.c1, ch, d)
					}
					if !ok {
						continue
					}
					o.evaluate(&t)
					if best.err > t.err {
						best = t
					}
				}
			}
		}
		if best.err >= s.err {
			break
		}
		s = best
	}
	o.consider(&s)
	return s
}

// refit solves for the endpoints that best fit s's selectors in the least
// squares sense, returning the evaluated result.
func (o *Optimizer) refit(s *solution) (solution, bool) {
	weights := [4]float64{1, 0, 2.0 / 3, 1.0 / 3}
	if s.threeColor {
		weights = [4]float64{1, 0, 0.5, -1}
	}

	aa, ab, bb := 0.0, 0.0, 0.0
	ax, bx := vec3{}, vec3{}
	for i := range o.numUnique {
		a := weights[s.sel[i]]
		if a < 0 {
			continue
		}
		b := 1 - a
		w := float64(o.weights[i])
		c := o.unique[i]
		x := vec3{float64(c.R), float64(c.G), float64(c.B)}
		aa += w * a * a
		ab += w * a * b
		bb += w * b * b
		for j := range 3 {
			ax[j] += w * a * x[j]
			bx[j] += w * b * x[j]
		}
	}

	det := (aa * bb) - (ab * ab)
	if math.Abs(det) < 1e-9 {
		return solution{}, false
	}
	e0, e1 := vec3{}, vec3{}
	for j := range 3 {
		e0[j] = ((bb * ax[j]) - (ab * bx[j])) / det
		e1[j] = ((aa * bx[j]) - (ab * ax[j])) / det
	}
	t := o.try(quantize565(e0, false), quantize565(e1, false), s.threeColor, s.blackTransparent)
	return t, t.err < maxError
}
