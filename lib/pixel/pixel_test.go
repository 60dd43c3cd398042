// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package pixel

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func TestClamp(tt *testing.T) {
	if got := Clamp[uint8](300); got != 255 {
		tt.Errorf("uint8(300): got %d, want 255", got)
	}
	if got := Clamp[uint8](-1); got != 0 {
		tt.Errorf("uint8(-1): got %d, want 0", got)
	}
	if got := Clamp[int16](-40000); got != -32768 {
		tt.Errorf("int16(-40000): got %d, want -32768", got)
	}
	if got := Clamp[uint16](70000); got != 65535 {
		tt.Errorf("uint16(70000): got %d, want 65535", got)
	}
	if got := Clamp[float32](300); got != 300 {
		tt.Errorf("float32(300): got %v, want 300", got)
	}
	if got := ClampFloat[uint8](127.5); got != 128 {
		tt.Errorf("ClampFloat(127.5): got %d, want 128", got)
	}
}

func TestSaturatingArithmetic(tt *testing.T) {
	a := RGBA{200, 10, 128, 255}
	b := RGBA{100, 20, 0, 1}
	if got, want := a.Add(b), (RGBA{255, 30, 128, 255}); got != want {
		tt.Errorf("Add: got %v, want %v", got, want)
	}
	if got, want := a.Sub(b), (RGBA{100, 0, 128, 254}); got != want {
		tt.Errorf("Sub: got %v, want %v", got, want)
	}
	if got, want := a.Scale(2), (RGBA{255, 20, 255, 255}); got != want {
		tt.Errorf("Scale: got %v, want %v", got, want)
	}
	if got, want := NewQuad[int16](-1, 40000, 7, 0), (Quad[int16]{-1, 32767, 7, 0}); got != want {
		tt.Errorf("NewQuad: got %v, want %v", got, want)
	}
}

func TestLuma(tt *testing.T) {
	testCases := []struct {
		c       RGBA
		want601 uint8
		want709 uint8
	}{
		{RGBA{0x00, 0x00, 0x00, 0xFF}, 0, 0},
		{RGBA{0xFF, 0xFF, 0xFF, 0xFF}, 255, 255},
		{RGBA{0xFF, 0x00, 0x00, 0xFF}, 76, 54},
		{RGBA{0x00, 0xFF, 0x00, 0xFF}, 150, 182},
		{RGBA{0x00, 0x00, 0xFF, 0xFF}, 29, 18},
	}
	for _, tc := range testCases {
		if got := tc.c.Luma(); got != tc.want601 {
			tt.Errorf("c=%v: Luma: got %d, want %d", tc.c, got, tc.want601)
		}
		if got := tc.c.LumaRec709(); got != tc.want709 {
			tt.Errorf("c=%v: LumaRec709: got %d, want %d", tc.c, got, tc.want709)
		}
	}
}

func TestHashAndEquality(tt *testing.T) {
	a := RGBA{1, 2, 3, 4}
	b := RGBA{1, 2, 3, 5}
	if a.Hash() != a.Hash() {
		tt.Fatalf("Hash is not deterministic")
	}
	if a.Hash() == b.Hash() {
		tt.Errorf("Hash: %v and %v collide", a, b)
	}
	if a.Equal(b) {
		tt.Errorf("Equal: got true, want false")
	}
	if !a.RGBEqual(b) {
		tt.Errorf("RGBEqual: got false, want true")
	}
}

func TestSquaredDistance(tt *testing.T) {
	a := RGBA{10, 2, 0, 0}
	b := RGBA{0, 0, 3, 4}
	if got, want := SquaredDistance(a, b, false, false), uint32(100+4+9); got != want {
		tt.Errorf("uniform: got %d, want %d", got, want)
	}
	if got, want := SquaredDistance(a, b, true, false), uint32(800+100+9); got != want {
		tt.Errorf("perceptual: got %d, want %d", got, want)
	}
	if got, want := SquaredDistance(a, b, false, true), uint32(100+4+9+16); got != want {
		tt.Errorf("alpha: got %d, want %d", got, want)
	}
}

func TestNarrow(tt *testing.T) {
	if got, want := Narrow(RGBA16{0xFFFF, 0, 0x8000, 0xFFFF}), (RGBA{255, 0, 128, 255}); got != want {
		tt.Errorf("RGBA16: got %v, want %v", got, want)
	}
	if got, want := Narrow(RGBAF{1, 0, 0.5, 2}), (RGBA{255, 0, 128, 255}); got != want {
		tt.Errorf("RGBAF: got %v, want %v", got, want)
	}
}

func TestColorBridge(tt *testing.T) {
	q := RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}
	if got, want := ToNRGBA(q), (color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}); got != want {
		tt.Errorf("ToNRGBA: got %v, want %v", got, want)
	}
	if got := FromColor(ToNRGBA(q)); got != q {
		tt.Errorf("FromColor: got %v, want %v", got, q)
	}
}

func TestPackerRoundTrip(tt *testing.T) {
	testCases := []struct {
		spec     string
		reversed bool
		rescale  bool
		c        RGBA
		packed   []byte
		want     RGBA
	}{
		{"R8G8B8A8", false, false, RGBA{1, 2, 3, 4}, []byte{1, 2, 3, 4}, RGBA{1, 2, 3, 4}},
		{"R8G8B8A8", true, false, RGBA{1, 2, 3, 4}, []byte{4, 3, 2, 1}, RGBA{1, 2, 3, 4}},
		{"X8R8G8B8", false, false, RGBA{1, 2, 3, 4}, []byte{0, 1, 2, 3}, RGBA{1, 2, 3, 255}},
		{"B5G6R5", false, true, RGBA{255, 0, 0, 255}, []byte{0x00, 0xF8}, RGBA{255, 0, 0, 255}},
		{"B5G6R5", false, true, RGBA{0, 0, 255, 255}, []byte{0x1F, 0x00}, RGBA{0, 0, 255, 255}},
		{"R3G10B3", false, false, RGBA{5, 171, 6, 255}, []byte{0x5D, 0xC5}, RGBA{5, 171, 6, 255}},
		{"Y8", false, false, RGBA{255, 255, 255, 9}, []byte{255}, RGBA{255, 255, 255, 255}},
		{"Y8A8", false, false, RGBA{0, 0, 0, 9}, []byte{0, 9}, RGBA{0, 0, 0, 9}},
	}

	for _, tc := range testCases {
		p, err := ParsePacker(tc.spec, -1, tc.reversed)
		if err != nil {
			tt.Errorf("spec=%q: ParsePacker: %v", tc.spec, err)
			continue
		}
		if p.Stride() != len(tc.packed) {
			tt.Errorf("spec=%q: Stride: got %d, want %d", tc.spec, p.Stride(), len(tc.packed))
			continue
		}

		buf := bytes.Repeat([]byte{0xAA}, p.Stride())
		if rest := p.Pack(tc.c, buf, tc.rescale); len(rest) != 0 {
			tt.Errorf("spec=%q: Pack: %d bytes left over", tc.spec, len(rest))
		}
		if !bytes.Equal(buf, tc.packed) {
			tt.Errorf("spec=%q: Pack: got % 02X, want % 02X", tc.spec, buf, tc.packed)
		}

		got, _ := p.Unpack(tc.packed, tc.rescale)
		if got != tc.want {
			tt.Errorf("spec=%q: Unpack: got %v, want %v", tc.spec, got, tc.want)
		}
	}
}

func TestPackerStrideWalk(tt *testing.T) {
	p, err := NewPacker(3, 8, 4, false)
	if err != nil {
		tt.Fatalf("NewPacker: %v", err)
	}
	if got := p.Components(); got != 3 {
		tt.Fatalf("Components: got %d, want 3", got)
	}
	src := []byte{1, 2, 3, 99, 4, 5, 6, 99}
	c0, src := p.Unpack(src, false)
	c1, src := p.Unpack(src, false)
	if (c0 != RGBA{1, 2, 3, 255}) || (c1 != RGBA{4, 5, 6, 255}) || (len(src) != 0) {
		tt.Errorf("got %v, %v, %d bytes left", c0, c1, len(src))
	}
	if c, rest := p.Unpack(src, false); (c != RGBA{}) || (rest != nil) {
		tt.Errorf("short source: got %v, %v", c, rest)
	}
}

func TestPackerErrors(tt *testing.T) {
	testCases := []struct {
		spec string
		want error
	}{
		{"", ErrBadSpec},
		{"Q8", ErrBadSpec},
		{"R", ErrBadSpec},
		{"R0", ErrBadSpec},
		{"R33", ErrBadSpec},
		{"R8R8", ErrBadSpec},
		{"Y8R8", ErrBadSpec},
		{"X8", ErrBadComponentCount},
	}
	for _, tc := range testCases {
		if _, err := ParsePacker(tc.spec, -1, false); !errors.Is(err, tc.want) {
			tt.Errorf("spec=%q: got %v, want %v", tc.spec, err, tc.want)
		}
	}

	if _, err := NewPacker(0, 8, -1, false); !errors.Is(err, ErrBadComponentCount) {
		tt.Errorf("NewPacker(0): got %v", err)
	}
	if _, err := NewPacker(5, 8, -1, false); !errors.Is(err, ErrBadComponentCount) {
		tt.Errorf("NewPacker(5): got %v", err)
	}
	if _, err := NewPacker(4, 8, 3, false); !errors.Is(err, ErrBadSpec) {
		tt.Errorf("NewPacker(stride too small): got %v", err)
	}
}
