// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package block

// DXT3 is a BC2 explicit alpha block: sixteen 4-bit alpha values, row-major,
// low nibble first.
type DXT3 [8]byte

// Nibble returns the raw 4-bit alpha of the pixel at (x, y).
func (b *DXT3) Nibble(x int, y int) uint8 {
	i := (4 * (y & 3)) + (x & 3)
	return (b[i>>1] >> (4 * uint(i&1))) & 15
}

// SetNibble sets the raw 4-bit alpha of the pixel at (x, y).
func (b *DXT3) SetNibble(x int, y int, n uint8) {
	i := (4 * (y & 3)) + (x & 3)
	shift := 4 * uint(i&1)
	b[i>>1] = (b[i>>1] &^ (15 << shift)) | ((n & 15) << shift)
}

// Alpha returns the 8-bit alpha of the pixel at (x, y).
func (b *DXT3) Alpha(x int, y int) uint8 { return b.Nibble(x, y) * 17 }

// SetAlpha quantizes a to 4 bits, with rounding, and stores it.
func (b *DXT3) SetAlpha(x int, y int, a uint8) {
	b.SetNibble(x, y, uint8(((uint32(a)*15)+128)/255))
}

// Decode returns the block's sixteen 8-bit alpha values, row-major.
func (b *DXT3) Decode() (ret [16]uint8) {
	for i := range 16 {
		ret[i] = ((b[i>>1] >> (4 * uint(i&1))) & 15) * 17
	}
	return ret
}

// FlipX mirrors the alpha values horizontally within the first w columns.
func (b *DXT3) FlipX(w int) {
	w = min(max(w, 1), 4)
	for y := range 4 {
		for x := range w / 2 {
			n0, n1 := b.Nibble(x, y), b.Nibble(w-1-x, y)
			b.SetNibble(x, y, n1)
			b.SetNibble(w-1-x, y, n0)
		}
	}
}

// FlipY mirrors the alpha values vertically within the first h rows.
func (b *DXT3) FlipY(h int) {
	h = min(max(h, 1), 4)
	for y := range h / 2 {
		y1 := h - 1 - y
		b[2*y+0], b[2*y1+0] = b[2*y1+0], b[2*y+0]
		b[2*y+1], b[2*y1+1] = b[2*y1+1], b[2*y+1]
	}
}
