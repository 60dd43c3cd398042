// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"image"

	"github.com/nigeltao/dxtc/lib/pixel"
)

// makeExtract returns a closure that extracts the 4×4 block of src at block
// coordinates (bx, by), writing non-premultiplied pixels, row-major.
//
// Out-of-bound pixels right of and below the image are substituted with the
// nearest in-bound pixel from the right and bottom edges.
func makeExtract(pixels *[16]pixel.RGBA, src image.Image) func(bx int, by int) {
	b := src.Bounds()
	mX1 := b.Max.X - 1
	mY1 := b.Max.Y - 1
	x0, y0 := b.Min.X, b.Min.Y

	if srcNRGBA, ok := src.(*image.NRGBA); ok {
		return func(bx int, by int) {
			for y := range 4 {
				for x := range 4 {
					c := srcNRGBA.NRGBAAt(min(mX1, x0+(4*bx)+x), min(mY1, y0+(4*by)+y))
					pixels[(4*y)+x] = pixel.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
				}
			}
		}

	} else if srcNRGBA64, ok := src.(*image.NRGBA64); ok {
		return func(bx int, by int) {
			for y := range 4 {
				for x := range 4 {
					c := srcNRGBA64.NRGBA64At(min(mX1, x0+(4*bx)+x), min(mY1, y0+(4*by)+y))
					pixels[(4*y)+x] = pixel.RGBA{
						R: uint8(c.R >> 8),
						G: uint8(c.G >> 8),
						B: uint8(c.B >> 8),
						A: uint8(c.A >> 8),
					}
				}
			}
		}

	} else if srcRGBA64, ok := src.(image.RGBA64Image); ok {
		return func(bx int, by int) {
			for y := range 4 {
				for x := range 4 {
					c := srcRGBA64.RGBA64At(min(mX1, x0+(4*bx)+x), min(mY1, y0+(4*by)+y))
					if (c.A != 0x0000) && (c.A != 0xFFFF) {
						c.R = uint16((uint32(c.R) * 0xFFFF) / uint32(c.A))
						c.G = uint16((uint32(c.G) * 0xFFFF) / uint32(c.A))
						c.B = uint16((uint32(c.B) * 0xFFFF) / uint32(c.A))
					}
					pixels[(4*y)+x] = pixel.RGBA{
						R: uint8(c.R >> 8),
						G: uint8(c.G >> 8),
						B: uint8(c.B >> 8),
						A: uint8(c.A >> 8),
					}
				}
			}
		}
	}

	return func(bx int, by int) {
		for y := range 4 {
			for x := range 4 {
				pixels[(4*y)+x] = pixel.FromColor(src.At(min(mX1, x0+(4*bx)+x), min(mY1, y0+(4*by)+y)))
			}
		}
	}
}
