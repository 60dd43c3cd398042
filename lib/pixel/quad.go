// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package pixel implements the four-component color quad used throughout the
// codec, and a bit-level packer that converts between arbitrary packed pixel
// layouts and color quads.
//
// The optimizers only ever see the 8-bit RGBA variant. The wider variants
// exist for callers that hold 16-bit, 32-bit or floating point source data,
// and are narrowed to RGBA at the optimizer boundary.
package pixel

import (
	"image/color"
	"math"
)

// Component is the set of storage types a Quad may hold.
type Component interface {
	~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32
}

// Quad is an ordered (R, G, B, A) value. Integer components always lie
// within their storage type's range: all arithmetic saturates. Float
// components are stored unclamped.
type Quad[T Component] struct {
	R, G, B, A T
}

type (
	RGBA   = Quad[uint8]
	RGBA16 = Quad[uint16]
	RGBA32 = Quad[uint32]
	RGBAF  = Quad[float32]
)

// Limits returns the smallest and largest values T can hold, and whether T is
// signed. Floats report ±MaxFloat32.
func Limits[T Component]() (lo float64, hi float64, signed bool) {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 0, math.MaxUint8, false
	case int16:
		return math.MinInt16, math.MaxInt16, true
	case uint16:
		return 0, math.MaxUint16, false
	case int32:
		return math.MinInt32, math.MaxInt32, true
	case uint32:
		return 0, math.MaxUint32, false
	}
	return -math.MaxFloat32, math.MaxFloat32, true
}

func isFloat[T Component]() bool {
	var zero T
	_, ok := any(zero).(float32)
	return ok
}

// Clamp saturates v into T's range. For float32, v is converted unclamped.
func Clamp[T Component](v int64) T {
	if isFloat[T]() {
		return T(v)
	}
	lo, hi, _ := Limits[T]()
	if v < int64(lo) {
		return T(int64(lo))
	} else if v > int64(hi) {
		return T(int64(hi))
	}
	return T(v)
}

// ClampFloat rounds v to the nearest integer and saturates it into T's range.
// For float32, v is stored as is.
func ClampFloat[T Component](v float64) T {
	if isFloat[T]() {
		return T(v)
	}
	lo, hi, _ := Limits[T]()
	if v <= lo {
		return T(int64(lo))
	} else if v >= hi {
		return T(int64(hi))
	}
	return T(int64(math.Floor(v + 0.5)))
}

// NewQuad returns a Quad with each component saturated into T's range.
func NewQuad[T Component](r, g, b, a int64) Quad[T] {
	return Quad[T]{Clamp[T](r), Clamp[T](g), Clamp[T](b), Clamp[T](a)}
}

// Component returns the i'th component: 0=R, 1=G, 2=B, 3=A.
func (q Quad[T]) Component(i int) T {
	switch i {
	case 0:
		return q.R
	case 1:
		return q.G
	case 2:
		return q.B
	}
	return q.A
}

// SetComponent sets the i'th component: 0=R, 1=G, 2=B, 3=A.
func (q *Quad[T]) SetComponent(i int, v T) {
	switch i {
	case 0:
		q.R = v
	case 1:
		q.G = v
	case 2:
		q.B = v
	default:
		q.A = v
	}
}

func (q Quad[T]) wide() [4]float64 {
	return [4]float64{float64(q.R), float64(q.G), float64(q.B), float64(q.A)}
}

func fromWide[T Component](w [4]float64) Quad[T] {
	if isFloat[T]() {
		return Quad[T]{T(w[0]), T(w[1]), T(w[2]), T(w[3])}
	}
	return Quad[T]{ClampFloat[T](w[0]), ClampFloat[T](w[1]), ClampFloat[T](w[2]), ClampFloat[T](w[3])}
}

// Add returns the saturating component-wise sum q+o.
func (q Quad[T]) Add(o Quad[T]) Quad[T] {
	a, b := q.wide(), o.wide()
	return fromWide[T]([4]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]})
}

// Sub returns the saturating component-wise difference q-o.
func (q Quad[T]) Sub(o Quad[T]) Quad[T] {
	a, b := q.wide(), o.wide()
	return fromWide[T]([4]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]})
}

// Scale returns q with every component multiplied by s, rounded and
// saturated.
func (q Quad[T]) Scale(s float64) Quad[T] {
	a := q.wide()
	return fromWide[T]([4]float64{a[0] * s, a[1] * s, a[2] * s, a[3] * s})
}

// Luma returns the CCIR-601 luma of q's RGB components, rounded to nearest.
func (q Quad[T]) Luma() T {
	if isFloat[T]() {
		return T((19595*float64(q.R) + 38470*float64(q.G) + 7471*float64(q.B)) / 65536)
	}
	y := (19595*int64(q.R) + 38470*int64(q.G) + 7471*int64(q.B) + 32768) >> 16
	return Clamp[T](y)
}

// LumaRec709 returns the ITU-R BT.709 luma of q's RGB components, rounded to
// nearest.
func (q Quad[T]) LumaRec709() T {
	if isFloat[T]() {
		return T((13938*float64(q.R) + 46869*float64(q.G) + 4729*float64(q.B)) / 65536)
	}
	y := (13938*int64(q.R) + 46869*int64(q.G) + 4729*int64(q.B) + 32768) >> 16
	return Clamp[T](y)
}

// Hash returns a 32-bit hash of all four components.
func (q Quad[T]) Hash() uint32 {
	h := uint32(0x811C9DC5)
	for _, v := range [4]T{q.R, q.G, q.B, q.A} {
		bits := uint32(int64(v))
		if isFloat[T]() {
			bits = math.Float32bits(float32(v))
		}
		for range 4 {
			h ^= bits & 0xFF
			h *= 0x01000193
			bits >>= 8
		}
	}
	return h
}

// Equal reports whether q and o have identical components.
func (q Quad[T]) Equal(o Quad[T]) bool {
	return q == o
}

// RGBEqual reports whether q and o have the same R, G and B components.
func (q Quad[T]) RGBEqual(o Quad[T]) bool {
	return (q.R == o.R) && (q.G == o.G) && (q.B == o.B)
}

// ToNRGBA converts an 8-bit quad to the standard library's color type.
func ToNRGBA(q RGBA) color.NRGBA {
	return color.NRGBA{R: q.R, G: q.G, B: q.B, A: q.A}
}

// FromColor converts any color.Color to a non-premultiplied 8-bit quad.
func FromColor(c color.Color) RGBA {
	if n, ok := c.(color.NRGBA); ok {
		return RGBA{n.R, n.G, n.B, n.A}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{n.R, n.G, n.B, n.A}
}

// Narrow converts a quad of any storage type to 8-bit RGBA, mapping the full
// range of T (or [0, 1] for floats) onto [0, 255].
func Narrow[T Component](q Quad[T]) RGBA {
	w := q.wide()
	lo, hi, _ := Limits[T]()
	if isFloat[T]() {
		lo, hi = 0, 1
	}
	out := [4]float64{}
	for i := range 4 {
		out[i] = (w[i] - lo) * 255 / (hi - lo)
	}
	return fromWide[uint8](out)
}

// SquaredDistance returns the squared RGB distance between a and b, plus the
// squared alpha distance when alpha is set. Perceptual weighting scales the
// R, G and B terms by 8, 25 and 1.
func SquaredDistance(a RGBA, b RGBA, perceptual bool, alpha bool) uint32 {
	dr := int32(a.R) - int32(b.R)
	dg := int32(a.G) - int32(b.G)
	db := int32(a.B) - int32(b.B)
	d := uint32(0)
	if perceptual {
		d = uint32((8 * dr * dr) + (25 * dg * dg) + (db * db))
	} else {
		d = uint32((dr * dr) + (dg * dg) + (db * db))
	}
	if alpha {
		da := int32(a.A) - int32(b.A)
		d += uint32(da * da)
	}
	return d
}
