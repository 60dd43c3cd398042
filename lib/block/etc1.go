// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"github.com/nigeltao/dxtc/lib/pixel"
)

// ETC1 is an Ericsson Texture Compression block, a big-endian 64-bit code.
//
// The block splits into two subblocks, side by side (2×4) or, when the flip
// bit is set, one above the other (4×2). Each subblock has a base color, in
// differential mode a 5-bit color plus a signed 3-bit delta for the second
// subblock, or in absolute mode two independent 4-bit colors. Each subblock
// also selects one of eight intensity tables, and each pixel selects one of
// the four offsets of its subblock's table.
//
// There is no FlipX or FlipY: the delta is relative to the first subblock, so
// reflection does not map valid blocks to valid blocks.
type ETC1 [8]byte

// IntensityTables holds the per-table offsets, indexed by selector.
var IntensityTables = [8][4]int32{
	{+2, +8, -2, -8},
	{+5, +17, -5, -17},
	{+9, +29, -9, -29},
	{+13, +42, -13, -42},
	{+18, +60, -18, -60},
	{+24, +80, -24, -80},
	{+33, +106, -33, -106},
	{+47, +183, -47, -183},
}

// Code returns the block as a 64-bit big-endian integer.
func (b *ETC1) Code() uint64 {
	return (uint64(b[0]) << 56) |
		(uint64(b[1]) << 48) |
		(uint64(b[2]) << 40) |
		(uint64(b[3]) << 32) |
		(uint64(b[4]) << 24) |
		(uint64(b[5]) << 16) |
		(uint64(b[6]) << 8) |
		(uint64(b[7]) << 0)
}

// SetCode sets the block from a 64-bit big-endian integer.
func (b *ETC1) SetCode(x uint64) {
	b[0] = uint8(x >> 56)
	b[1] = uint8(x >> 48)
	b[2] = uint8(x >> 40)
	b[3] = uint8(x >> 32)
	b[4] = uint8(x >> 24)
	b[5] = uint8(x >> 16)
	b[6] = uint8(x >> 8)
	b[7] = uint8(x >> 0)
}

func (b *ETC1) bits(shift uint, width uint) uint32 {
	return uint32(b.Code()>>shift) & ((1 << width) - 1)
}

func (b *ETC1) setBits(shift uint, width uint, v uint32) {
	mask := (uint64(1) << width) - 1
	b.SetCode((b.Code() &^ (mask << shift)) | ((uint64(v) & mask) << shift))
}

// FlipBit returns whether the subblocks are 4×2 (one above the other).
func (b *ETC1) FlipBit() bool { return b.bits(32, 1) != 0 }

// DiffBit returns whether the block uses differential mode.
func (b *ETC1) DiffBit() bool { return b.bits(33, 1) != 0 }

func (b *ETC1) SetFlipBit(v bool) { b.setBits(32, 1, boolToU32(v)) }
func (b *ETC1) SetDiffBit(v bool) { b.setBits(33, 1, boolToU32(v)) }

// Table returns the intensity table index of subblock sub (0 or 1).
func (b *ETC1) Table(sub int) uint8 {
	return uint8(b.bits(37-3*uint(sub&1), 3))
}

// SetTable sets the intensity table index of subblock sub (0 or 1).
func (b *ETC1) SetTable(sub int, t uint8) {
	b.setBits(37-3*uint(sub&1), 3, uint32(t))
}

// BaseColor5 returns the differential mode 5-bit base color.
func (b *ETC1) BaseColor5() [3]uint8 {
	return [3]uint8{uint8(b.bits(59, 5)), uint8(b.bits(51, 5)), uint8(b.bits(43, 5))}
}

// SetBaseColor5 sets the differential mode 5-bit base color.
func (b *ETC1) SetBaseColor5(c [3]uint8) {
	b.setBits(59, 5, uint32(c[0]))
	b.setBits(51, 5, uint32(c[1]))
	b.setBits(43, 5, uint32(c[2]))
}

// Delta3 returns the differential mode signed 3-bit delta, in [-4, +3].
func (b *ETC1) Delta3() [3]int8 {
	return [3]int8{
		signExtend3(b.bits(56, 3)),
		signExtend3(b.bits(48, 3)),
		signExtend3(b.bits(40, 3)),
	}
}

// SetDelta3 sets the differential mode delta. Each component must lie in
// [-4, +3].
func (b *ETC1) SetDelta3(d [3]int8) {
	b.setBits(56, 3, uint32(d[0])&7)
	b.setBits(48, 3, uint32(d[1])&7)
	b.setBits(40, 3, uint32(d[2])&7)
}

// BaseColors4 returns the absolute mode 4-bit base colors.
func (b *ETC1) BaseColors4() [2][3]uint8 {
	return [2][3]uint8{
		{uint8(b.bits(60, 4)), uint8(b.bits(52, 4)), uint8(b.bits(44, 4))},
		{uint8(b.bits(56, 4)), uint8(b.bits(48, 4)), uint8(b.bits(40, 4))},
	}
}

// SetBaseColors4 sets the absolute mode 4-bit base colors.
func (b *ETC1) SetBaseColors4(c [2][3]uint8) {
	b.setBits(60, 4, uint32(c[0][0]))
	b.setBits(52, 4, uint32(c[0][1]))
	b.setBits(44, 4, uint32(c[0][2]))
	b.setBits(56, 4, uint32(c[1][0]))
	b.setBits(48, 4, uint32(c[1][1]))
	b.setBits(40, 4, uint32(c[1][2]))
}

// Selector returns the 2-bit selector of the pixel at (x, y). Pixels are
// numbered column-major; the MSB plane is in bits 16 to 31 and the LSB plane
// in bits 0 to 15.
func (b *ETC1) Selector(x int, y int) uint8 {
	i := uint((4 * (x & 3)) + (y & 3))
	return uint8((b.bits(16+i, 1) << 1) | b.bits(i, 1))
}

// SetSelector sets the 2-bit selector of the pixel at (x, y).
func (b *ETC1) SetSelector(x int, y int, s uint8) {
	i := uint((4 * (x & 3)) + (y & 3))
	b.setBits(16+i, 1, uint32(s>>1))
	b.setBits(i, 1, uint32(s))
}

// Subblock returns which subblock (0 or 1) the pixel at (x, y) belongs to.
func (b *ETC1) Subblock(x int, y int) int {
	if b.FlipBit() {
		return (y & 3) >> 1
	}
	return (x & 3) >> 1
}

// SubblockBase returns subblock sub's base color expanded to 8 bits, and
// whether the differential encoding is valid. An overflowing delta is
// clamped to [0, 31] and reported as invalid.
func (b *ETC1) SubblockBase(sub int) (ret [3]uint8, valid bool) {
	if !b.DiffBit() {
		c := b.BaseColors4()[sub&1]
		for i := range 3 {
			ret[i] = Expand4(c[i])
		}
		return ret, true
	}

	c, d, valid := b.BaseColor5(), b.Delta3(), true
	for i := range 3 {
		v := int32(c[i])
		if (sub & 1) != 0 {
			v += int32(d[i])
			if (v < 0) || (31 < v) {
				v, valid = min(max(v, 0), 31), false
			}
		}
		ret[i] = Expand5(uint8(v))
	}
	return ret, valid
}

// SubblockColors returns subblock sub's palette, indexed by selector, and
// whether the differential encoding is valid.
func (b *ETC1) SubblockColors(sub int) (ret [4]pixel.RGBA, valid bool) {
	base, valid := b.SubblockBase(sub)
	return Modulate(base, b.Table(sub)), valid
}

// Modulate returns the four colors of an 8-bit base color under intensity
// table t, clamped to [0, 255].
func Modulate(base [3]uint8, t uint8) (ret [4]pixel.RGBA) {
	for i, offset := range IntensityTables[t&7] {
		ret[i] = pixel.RGBA{
			R: clampU8(int32(base[0]) + offset),
			G: clampU8(int32(base[1]) + offset),
			B: clampU8(int32(base[2]) + offset),
			A: 0xFF,
		}
	}
	return ret
}

// Decode returns the block's sixteen pixels, row-major, and whether the
// block is valid. Invalid blocks still decode, with clamped base colors.
func (b *ETC1) Decode() (ret [16]pixel.RGBA, valid bool) {
	colors0, valid0 := b.SubblockColors(0)
	colors1, valid1 := b.SubblockColors(1)
	code := b.Code()
	flip := (code>>32)&1 != 0
	for y := range 4 {
		for x := range 4 {
			i := uint((4 * x) + y)
			s := (((code >> (16 + i)) & 1) << 1) | ((code >> i) & 1)
			sub := x >> 1
			if flip {
				sub = y >> 1
			}
			if sub == 0 {
				ret[(4*y)+x] = colors0[s]
			} else {
				ret[(4*y)+x] = colors1[s]
			}
		}
	}
	return ret, valid0 && valid1
}

// Expand4 replicates a 4-bit value to 8 bits.
func Expand4(v uint8) uint8 { return ((v & 15) << 4) | (v & 15) }

// Expand5 replicates a 5-bit value to 8 bits.
func Expand5(v uint8) uint8 { return ((v & 31) << 3) | ((v & 31) >> 2) }

func signExtend3(v uint32) int8 {
	return int8(v<<5) >> 5
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func clampU8(v int32) uint8 {
	return uint8(min(max(v, 0), 255))
}
