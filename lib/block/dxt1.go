// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package block implements the 8 byte block layouts of the DXT (S3TC) and
// ETC1 texture compression formats.
//
// Every block type is a [8]byte array with shift and mask accessors. Blocks
// are values: copying one copies its bits, and no two types ever alias the
// same memory.
package block

import (
	"github.com/nigeltao/dxtc/lib/pixel"
)

// Size is the number of bytes in every block type.
const Size = 8

// DXT1 is a BC1 color block: two little-endian RGB565 endpoints followed by
// sixteen 2-bit selectors, row-major, low bits first.
//
// It is also the color half of DXT3 and DXT5 blocks.
type DXT1 [8]byte

// Low returns the first endpoint, color 0.
func (b *DXT1) Low() uint16 { return uint16(b[0]) | (uint16(b[1]) << 8) }

// High returns the second endpoint, color 1.
func (b *DXT1) High() uint16 { return uint16(b[2]) | (uint16(b[3]) << 8) }

func (b *DXT1) SetLow(v uint16)  { b[0], b[1] = uint8(v), uint8(v>>8) }
func (b *DXT1) SetHigh(v uint16) { b[2], b[3] = uint8(v), uint8(v>>8) }

// Selector returns the 2-bit selector of the pixel at (x, y).
func (b *DXT1) Selector(x int, y int) uint8 {
	return (b[4+(y&3)] >> (2 * uint(x&3))) & 3
}

// SetSelector sets the 2-bit selector of the pixel at (x, y).
func (b *DXT1) SetSelector(x int, y int, s uint8) {
	shift := 2 * uint(x&3)
	b[4+(y&3)] = (b[4+(y&3)] &^ (3 << shift)) | ((s & 3) << shift)
}

// SetSelectors sets all sixteen selectors from a row-major array.
func (b *DXT1) SetSelectors(sel *[16]uint8) {
	for y := range 4 {
		b[4+y] = (sel[4*y+0] & 3) |
			((sel[4*y+1] & 3) << 2) |
			((sel[4*y+2] & 3) << 4) |
			((sel[4*y+3] & 3) << 6)
	}
}

// IsAlphaBlock returns whether the block uses the 3-color mode, where
// selector 3 means transparent black. This is encoded by the endpoint order
// (low <= high), not by the endpoint values themselves.
func (b *DXT1) IsAlphaBlock() bool { return b.Low() <= b.High() }

// NumColors returns 4 for an opaque block and 3 for an alpha block.
func (b *DXT1) NumColors() int {
	if b.IsAlphaBlock() {
		return 3
	}
	return 4
}

// Colors returns the block's palette, indexed by selector.
//
// When allowAlpha is false the 4-color interpretation is used regardless of
// endpoint order. DXT3 and DXT5 color blocks decode that way.
func (b *DXT1) Colors(allowAlpha bool) [4]pixel.RGBA {
	return Palette(b.Low(), b.High(), allowAlpha)
}

// Palette returns the DXT1 palette for the given endpoints.
func Palette(low uint16, high uint16, allowAlpha bool) (ret [4]pixel.RGBA) {
	c0 := Unpack565(low, true)
	c1 := Unpack565(high, true)
	ret[0], ret[1] = c0, c1

	if (low > high) || !allowAlpha {
		ret[2] = pixel.RGBA{
			R: uint8((2*uint32(c0.R) + uint32(c1.R)) / 3),
			G: uint8((2*uint32(c0.G) + uint32(c1.G)) / 3),
			B: uint8((2*uint32(c0.B) + uint32(c1.B)) / 3),
			A: 0xFF,
		}
		ret[3] = pixel.RGBA{
			R: uint8((uint32(c0.R) + 2*uint32(c1.R)) / 3),
			G: uint8((uint32(c0.G) + 2*uint32(c1.G)) / 3),
			B: uint8((uint32(c0.B) + 2*uint32(c1.B)) / 3),
			A: 0xFF,
		}
	} else {
		ret[2] = pixel.RGBA{
			R: uint8((uint32(c0.R) + uint32(c1.R)) / 2),
			G: uint8((uint32(c0.G) + uint32(c1.G)) / 2),
			B: uint8((uint32(c0.B) + uint32(c1.B)) / 2),
			A: 0xFF,
		}
		ret[3] = pixel.RGBA{}
	}
	return ret
}

// Decode returns the block's sixteen pixels, row-major.
func (b *DXT1) Decode(allowAlpha bool) (ret [16]pixel.RGBA) {
	colors := b.Colors(allowAlpha)
	for i := range 16 {
		ret[i] = colors[(b[4+(i>>2)]>>(2*uint(i&3)))&3]
	}
	return ret
}

// FlipX mirrors the selectors horizontally within the first w columns. A
// block that is the only one in a row of an image narrower than 4 pixels
// passes its width; every other block passes 4.
func (b *DXT1) FlipX(w int) {
	w = min(max(w, 1), 4)
	for y := range 4 {
		for x := range w / 2 {
			s0, s1 := b.Selector(x, y), b.Selector(w-1-x, y)
			b.SetSelector(x, y, s1)
			b.SetSelector(w-1-x, y, s0)
		}
	}
}

// FlipY mirrors the selectors vertically within the first h rows.
func (b *DXT1) FlipY(h int) {
	h = min(max(h, 1), 4)
	for y := range h / 2 {
		b[4+y], b[4+h-1-y] = b[4+h-1-y], b[4+y]
	}
}

// Pack565 packs c's RGB components. When scaled, c holds 8-bit components
// which are quantized with rounding; otherwise c already holds 5-, 6- and
// 5-bit values.
func Pack565(c pixel.RGBA, scaled bool) uint16 {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	if scaled {
		r = ((r * 31) + 127) / 255
		g = ((g * 63) + 127) / 255
		b = ((b * 31) + 127) / 255
	}
	return uint16((min(r, 31) << 11) | (min(g, 63) << 5) | min(b, 31))
}

// Unpack565 unpacks an RGB565 value. When scaled, the components are
// expanded to 8 bits by bit replication; otherwise the raw 5-, 6- and 5-bit
// values are returned. Alpha is always 0xFF.
func Unpack565(v uint16, scaled bool) pixel.RGBA {
	r := uint8((v >> 11) & 31)
	g := uint8((v >> 5) & 63)
	b := uint8(v & 31)
	if scaled {
		r = (r << 3) | (r >> 2)
		g = (g << 2) | (g >> 4)
		b = (b << 3) | (b >> 2)
	}
	return pixel.RGBA{R: r, G: g, B: b, A: 0xFF}
}
