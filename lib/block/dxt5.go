// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package block

// DXT5 is a BC3/BC4 interpolated alpha block: two 8-bit endpoints followed by
// sixteen 3-bit selectors packed LSB first across 48 bits.
type DXT5 [8]byte

// Invert8 and Invert6 remap selectors when the two endpoints are swapped,
// for the 8-level and 6-level schemes respectively.
var (
	Invert8 = [8]uint8{1, 0, 7, 6, 5, 4, 3, 2}
	Invert6 = [8]uint8{1, 0, 5, 4, 3, 2, 6, 7}
)

func (b *DXT5) Low() uint8      { return b[0] }
func (b *DXT5) High() uint8     { return b[1] }
func (b *DXT5) SetLow(v uint8)  { b[0] = v }
func (b *DXT5) SetHigh(v uint8) { b[1] = v }

// Is8Level returns whether the block interpolates 8 levels (low > high)
// rather than 6 levels plus the constants 0 and 255.
func (b *DXT5) Is8Level() bool { return b[0] > b[1] }

// SelectorBits returns the packed 48-bit selector field.
func (b *DXT5) SelectorBits() uint64 {
	return uint64(b[2]) |
		(uint64(b[3]) << 8) |
		(uint64(b[4]) << 16) |
		(uint64(b[5]) << 24) |
		(uint64(b[6]) << 32) |
		(uint64(b[7]) << 40)
}

// SetSelectorBits sets the packed 48-bit selector field.
func (b *DXT5) SetSelectorBits(v uint64) {
	b[2] = uint8(v >> 0)
	b[3] = uint8(v >> 8)
	b[4] = uint8(v >> 16)
	b[5] = uint8(v >> 24)
	b[6] = uint8(v >> 32)
	b[7] = uint8(v >> 40)
}

// Selector returns the 3-bit selector of the pixel at (x, y).
func (b *DXT5) Selector(x int, y int) uint8 {
	shift := 3 * uint((4*(y&3))+(x&3))
	return uint8(b.SelectorBits()>>shift) & 7
}

// SetSelector sets the 3-bit selector of the pixel at (x, y).
func (b *DXT5) SetSelector(x int, y int, s uint8) {
	shift := 3 * uint((4*(y&3))+(x&3))
	v := b.SelectorBits()
	v = (v &^ (7 << shift)) | (uint64(s&7) << shift)
	b.SetSelectorBits(v)
}

// SetSelectors sets all sixteen selectors from a row-major array.
func (b *DXT5) SetSelectors(sel *[16]uint8) {
	v := uint64(0)
	for i := range 16 {
		v |= uint64(sel[i]&7) << (3 * uint(i))
	}
	b.SetSelectorBits(v)
}

// Values returns the block's alpha palette, indexed by selector.
func (b *DXT5) Values() [8]uint8 {
	return AlphaPalette(b[0], b[1])
}

// AlphaPalette returns the DXT5 alpha palette for the given endpoints.
func AlphaPalette(low uint8, high uint8) (ret [8]uint8) {
	lo, hi := uint32(low), uint32(high)
	ret[0], ret[1] = low, high
	if low > high {
		for i := uint32(1); i < 7; i++ {
			ret[i+1] = uint8((((7 - i) * lo) + (i * hi) + 3) / 7)
		}
	} else {
		for i := uint32(1); i < 5; i++ {
			ret[i+1] = uint8((((5 - i) * lo) + (i * hi) + 2) / 5)
		}
		ret[6], ret[7] = 0x00, 0xFF
	}
	return ret
}

// Decode returns the block's sixteen alpha values, row-major.
func (b *DXT5) Decode() (ret [16]uint8) {
	values := b.Values()
	bits := b.SelectorBits()
	for i := range 16 {
		ret[i] = values[(bits>>(3*uint(i)))&7]
	}
	return ret
}

// FlipX mirrors the selectors horizontally within the first w columns.
func (b *DXT5) FlipX(w int) {
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
func (b *DXT5) FlipY(h int) {
	h = min(max(h, 1), 4)
	v := b.SelectorBits()
	out := v
	for y := range h / 2 {
		y1 := h - 1 - y
		row0 := (v >> (12 * uint(y))) & 0xFFF
		row1 := (v >> (12 * uint(y1))) & 0xFFF
		out &^= (0xFFF << (12 * uint(y))) | (0xFFF << (12 * uint(y1)))
		out |= (row1 << (12 * uint(y))) | (row0 << (12 * uint(y1)))
	}
	b.SetSelectorBits(out)
}
