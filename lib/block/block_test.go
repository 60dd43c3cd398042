// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package block

import (
	"testing"

	"github.com/nigeltao/dxtc/lib/pixel"
)

func TestDXT1Palette(tt *testing.T) {
	red, blue := uint16(0xF800), uint16(0x001F)

	opaque := DXT1{}
	opaque.SetLow(red)
	opaque.SetHigh(blue)
	if opaque.IsAlphaBlock() || (opaque.NumColors() != 4) {
		tt.Fatalf("opaque: IsAlphaBlock=%t NumColors=%d", opaque.IsAlphaBlock(), opaque.NumColors())
	}
	want4 := [4]pixel.RGBA{
		{255, 0, 0, 255},
		{0, 0, 255, 255},
		{170, 0, 85, 255},
		{85, 0, 170, 255},
	}
	if got := opaque.Colors(true); got != want4 {
		tt.Errorf("opaque: got %v, want %v", got, want4)
	}

	cutout := DXT1{}
	cutout.SetLow(blue)
	cutout.SetHigh(red)
	if !cutout.IsAlphaBlock() || (cutout.NumColors() != 3) {
		tt.Fatalf("cutout: IsAlphaBlock=%t NumColors=%d", cutout.IsAlphaBlock(), cutout.NumColors())
	}
	want3 := [4]pixel.RGBA{
		{0, 0, 255, 255},
		{255, 0, 0, 255},
		{127, 0, 127, 255},
		{0, 0, 0, 0},
	}
	if got := cutout.Colors(true); got != want3 {
		tt.Errorf("cutout: got %v, want %v", got, want3)
	}
	if got := cutout.Colors(false); got[3].A != 0xFF {
		tt.Errorf("cutout without alpha: selector 3 is transparent")
	}

	equal := DXT1{}
	if !equal.IsAlphaBlock() {
		tt.Errorf("low == high: IsAlphaBlock: got false, want true")
	}
}

func TestDXT1Selectors(tt *testing.T) {
	b := DXT1{}
	b.SetSelector(1, 0, 3)
	b.SetSelector(3, 2, 2)
	if (b[4] != 0x0C) || (b[6] != 0x80) {
		tt.Fatalf("layout: got % 02X", b[4:])
	}
	if (b.Selector(1, 0) != 3) || (b.Selector(3, 2) != 2) || (b.Selector(0, 0) != 0) {
		tt.Errorf("Selector: round trip failed")
	}

	sel := [16]uint8{0, 1, 2, 3, 3, 2, 1, 0, 1, 1, 2, 2, 0, 3, 0, 3}
	b.SetSelectors(&sel)
	for i, want := range sel {
		if got := b.Selector(i&3, i>>2); got != want {
			tt.Errorf("i=%d: got %d, want %d", i, got, want)
		}
	}
}

func TestDXT1Flip(tt *testing.T) {
	orig := DXT1{0x34, 0x12, 0x78, 0x56, 0x1B, 0xE4, 0x00, 0xFF}
	for _, w := range []int{1, 2, 3, 4} {
		b := orig
		b.FlipX(w)
		if (w == 4) && (b.Selector(0, 0) != orig.Selector(3, 0)) {
			tt.Errorf("w=%d: FlipX did not mirror", w)
		}
		if (w == 1) && (b != orig) {
			tt.Errorf("w=%d: FlipX changed a 1-wide block", w)
		}
		b.FlipX(w)
		if b != orig {
			tt.Errorf("w=%d: FlipX twice: got % 02X, want % 02X", w, b[:], orig[:])
		}
	}
	for _, h := range []int{1, 2, 3, 4} {
		b := orig
		b.FlipY(h)
		b.FlipY(h)
		if b != orig {
			tt.Errorf("h=%d: FlipY twice: got % 02X, want % 02X", h, b[:], orig[:])
		}
	}

	b := orig
	b.FlipY(4)
	if (b[4] != orig[7]) || (b[5] != orig[6]) || (b.Low() != orig.Low()) {
		tt.Errorf("FlipY(4): got % 02X", b[:])
	}
}

func TestPack565(tt *testing.T) {
	if got := Pack565(pixel.RGBA{255, 255, 255, 255}, true); got != 0xFFFF {
		tt.Errorf("white: got 0x%04X", got)
	}
	if got := Pack565(pixel.RGBA{31, 0, 31, 0}, false); got != 0xF81F {
		tt.Errorf("magenta (unscaled): got 0x%04X", got)
	}
	if got, want := Unpack565(0x07E0, true), (pixel.RGBA{0, 255, 0, 255}); got != want {
		tt.Errorf("green: got %v, want %v", got, want)
	}
	if got, want := Unpack565(0x8410, true), (pixel.RGBA{132, 130, 132, 255}); got != want {
		tt.Errorf("grey: got %v, want %v", got, want)
	}
	for v := range 0x10000 {
		if got := Pack565(Unpack565(uint16(v), true), true); got != uint16(v) {
			tt.Fatalf("v=0x%04X: scaled round trip gave 0x%04X", v, got)
		}
	}
}

func TestDXT3(tt *testing.T) {
	b := DXT3{}
	b.SetAlpha(0, 0, 255)
	b.SetAlpha(1, 0, 128)
	b.SetAlpha(3, 3, 7)
	if b[0] != 0x8F {
		tt.Fatalf("layout: got 0x%02X, want 0x8F", b[0])
	}
	if got := b.Alpha(1, 0); got != 136 {
		tt.Errorf("Alpha(1, 0): got %d, want 136", got)
	}
	if got := b.Alpha(3, 3); got != 0 {
		tt.Errorf("Alpha(3, 3): got %d, want 0", got)
	}

	orig := DXT3{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}
	for _, n := range []int{1, 2, 3, 4} {
		c := orig
		c.FlipX(n)
		c.FlipX(n)
		c.FlipY(n)
		c.FlipY(n)
		if c != orig {
			tt.Errorf("n=%d: double flips: got % 02X", n, c[:])
		}
	}
	c := orig
	c.FlipX(4)
	if (c.Nibble(0, 0) != orig.Nibble(3, 0)) || (c.Nibble(3, 3) != orig.Nibble(0, 3)) {
		tt.Errorf("FlipX(4) did not mirror")
	}
	c = orig
	c.FlipY(4)
	if got := c.Decode(); got[0] != orig.Decode()[12] {
		tt.Errorf("FlipY(4) did not mirror")
	}
}

func TestDXT5Values(tt *testing.T) {
	b := DXT5{}
	b.SetLow(255)
	b.SetHigh(0)
	if !b.Is8Level() {
		tt.Fatalf("Is8Level: got false, want true")
	}
	want8 := [8]uint8{255, 0, 219, 182, 146, 109, 73, 36}
	if got := b.Values(); got != want8 {
		tt.Errorf("8-level: got %v, want %v", got, want8)
	}

	b.SetLow(0)
	b.SetHigh(255)
	if b.Is8Level() {
		tt.Fatalf("Is8Level: got true, want false")
	}
	want6 := [8]uint8{0, 255, 51, 102, 153, 204, 0, 255}
	if got := b.Values(); got != want6 {
		tt.Errorf("6-level: got %v, want %v", got, want6)
	}

	for i := range 8 {
		if Invert8[Invert8[i]] != uint8(i) {
			tt.Errorf("Invert8 is not an involution at %d", i)
		}
		if Invert6[Invert6[i]] != uint8(i) {
			tt.Errorf("Invert6 is not an involution at %d", i)
		}
	}
	if (Invert6[6] != 6) || (Invert6[7] != 7) {
		tt.Errorf("Invert6 moves the constant selectors")
	}
}

func TestDXT5Selectors(tt *testing.T) {
	b := DXT5{10, 20}
	sel := [16]uint8{}
	for i := range sel {
		sel[i] = uint8(i*5) & 7
	}
	b.SetSelectors(&sel)
	for i, want := range sel {
		if got := b.Selector(i&3, i>>2); got != want {
			tt.Errorf("i=%d: got %d, want %d", i, got, want)
		}
	}
	b.SetSelector(2, 1, 7)
	if got := b.Selector(2, 1); got != 7 {
		tt.Errorf("SetSelector: got %d, want 7", got)
	}
	if (b.Low() != 10) || (b.High() != 20) {
		tt.Errorf("SetSelector clobbered the endpoints")
	}

	orig := b
	for _, n := range []int{1, 2, 3, 4} {
		c := orig
		c.FlipX(n)
		c.FlipX(n)
		c.FlipY(n)
		c.FlipY(n)
		if c != orig {
			tt.Errorf("n=%d: double flips: got % 02X", n, c[:])
		}
	}
	c := orig
	c.FlipY(4)
	if c.Selector(1, 0) != orig.Selector(1, 3) {
		tt.Errorf("FlipY(4) did not mirror")
	}
}

func TestETC1Layout(tt *testing.T) {
	b := ETC1{}
	b.SetSelector(1, 2, 2)
	if got := b.Code(); got != (1 << 22) {
		tt.Errorf("selector MSB: got 0x%016X", got)
	}
	b.SetSelector(1, 2, 1)
	if got := b.Code(); got != (1 << 6) {
		tt.Errorf("selector LSB: got 0x%016X", got)
	}

	b = ETC1{}
	b.SetDiffBit(true)
	b.SetFlipBit(true)
	b.SetTable(0, 5)
	b.SetTable(1, 2)
	b.SetBaseColor5([3]uint8{31, 0, 16})
	b.SetDelta3([3]int8{-4, 3, -1})
	if !b.DiffBit() || !b.FlipBit() || (b.Table(0) != 5) || (b.Table(1) != 2) {
		tt.Errorf("control bits: round trip failed: %016X", b.Code())
	}
	if got := b.BaseColor5(); got != [3]uint8{31, 0, 16} {
		tt.Errorf("BaseColor5: got %v", got)
	}
	if got := b.Delta3(); got != [3]int8{-4, 3, -1} {
		tt.Errorf("Delta3: got %v", got)
	}
	if got := b.Code() >> 56; got != 0xFC {
		tt.Errorf("first byte: got 0x%02X, want 0xFC", got)
	}

	a := ETC1{}
	a.SetBaseColors4([2][3]uint8{{1, 2, 3}, {4, 5, 6}})
	if got := a.BaseColors4(); got != [2][3]uint8{{1, 2, 3}, {4, 5, 6}} {
		tt.Errorf("BaseColors4: got %v", got)
	}
	if got := a.Code() >> 40; got != 0x142536 {
		tt.Errorf("absolute colors: got 0x%06X, want 0x142536", got)
	}
}

func TestETC1Decode(tt *testing.T) {
	b := ETC1{}
	b.SetDiffBit(true)
	b.SetBaseColor5([3]uint8{16, 16, 16})
	b.SetTable(0, 0)
	b.SetTable(1, 7)
	b.SetSelector(0, 0, 1)
	b.SetSelector(3, 0, 3)

	pixels, valid := b.Decode()
	if !valid {
		tt.Fatalf("Decode: got invalid")
	}
	if got, want := pixels[0], (pixel.RGBA{140, 140, 140, 255}); got != want {
		tt.Errorf("(0, 0): got %v, want %v", got, want)
	}
	if got, want := pixels[3], (pixel.RGBA{0, 0, 0, 255}); got != want {
		tt.Errorf("(3, 0): got %v, want %v", got, want)
	}
	if got, want := pixels[5], (pixel.RGBA{134, 134, 134, 255}); got != want {
		tt.Errorf("(1, 1): got %v, want %v", got, want)
	}

	b.SetFlipBit(true)
	pixels, _ = b.Decode()
	if got, want := pixels[3], (pixel.RGBA{124, 124, 124, 255}); got != want {
		tt.Errorf("flipped (3, 0): got %v, want %v", got, want)
	}
}

func TestETC1InvalidDifferential(tt *testing.T) {
	b := ETC1{}
	b.SetDiffBit(true)
	b.SetBaseColor5([3]uint8{31, 0, 16})
	b.SetDelta3([3]int8{+1, -1, 0})

	if _, valid := b.SubblockColors(0); !valid {
		tt.Errorf("subblock 0: got invalid, want valid")
	}
	base, valid := b.SubblockBase(1)
	if valid {
		tt.Errorf("subblock 1: got valid, want invalid")
	}
	if want := [3]uint8{255, 0, 132}; base != want {
		tt.Errorf("subblock 1: got %v, want clamped %v", base, want)
	}
	if _, valid := b.Decode(); valid {
		tt.Errorf("Decode: got valid, want invalid")
	}

	b.SetDiffBit(false)
	if _, valid := b.Decode(); !valid {
		tt.Errorf("absolute mode: got invalid, want valid")
	}
}
