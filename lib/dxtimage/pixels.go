// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"fmt"
	"image"
	"math"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/dxt1"
	"github.com/nigeltao/dxtc/lib/pixel"
)

// colorAllowsAlpha returns whether the format's DXT1 element decodes
// 3-color blocks. The color half of DXT3 and DXT5 always decodes as 4-color.
func (g *grid) colorAllowsAlpha() bool {
	return (g.format == FormatDXT1) || (g.format == FormatDXT1A)
}

// decodeBlock returns block (bx, by)'s pixels, row-major, and whether it was
// valid. Components that the format does not store are 0, except alpha,
// which is 0xFF.
func (g *grid) decodeBlock(bx int, by int) (ret [16]pixel.RGBA, valid bool) {
	for i := range ret {
		ret[i].A = 0xFF
	}
	valid = true

	info := &formatInfos[g.format]
	for e := range info.numElems {
		elem := g.element(bx, by, e)
		comp := int(info.components[e])
		switch info.elems[e] {
		case ElementDXT1:
			decoded := (*block.DXT1)(elem).Decode(g.colorAllowsAlpha())
			for i, c := range decoded {
				if g.format != FormatDXT1A {
					c.A = ret[i].A
				}
				ret[i] = c
			}
		case ElementDXT3:
			decoded := (*block.DXT3)(elem).Decode()
			for i, v := range decoded {
				ret[i].SetComponent(comp, v)
			}
		case ElementDXT5A:
			decoded := (*block.DXT5)(elem).Decode()
			for i, v := range decoded {
				ret[i].SetComponent(comp, v)
			}
		case ElementETC1:
			decoded, ok := (*block.ETC1)(elem).Decode()
			ret = decoded
			valid = valid && ok
		}
	}
	return ret, valid
}

// BlockPixels returns block (bx, by)'s sixteen decoded pixels, row-major.
func (g *grid) BlockPixels(bx int, by int) ([16]pixel.RGBA, error) {
	if err := g.checkBlock(bx, by); err != nil {
		return [16]pixel.RGBA{}, err
	}
	ret, _ := g.decodeBlock(bx, by)
	return ret, nil
}

// Pixel returns the decoded pixel at (x, y).
func (g *grid) Pixel(x int, y int) (pixel.RGBA, error) {
	if err := g.checkPixel(x, y); err != nil {
		return pixel.RGBA{}, err
	}
	decoded, _ := g.decodeBlock(x>>2, y>>2)
	return decoded[(4*(y&3))+(x&3)], nil
}

// SetPixel sets the pixel at (x, y) to the nearest color that its block's
// existing endpoints can express. Only the pixel's selectors change, so
// repeated edits can drift far from what re-encoding the block would give.
func (g *grid) SetPixel(x int, y int, c pixel.RGBA) error {
	if err := g.checkPixel(x, y); err != nil {
		return err
	}
	bx, by, lx, ly := x>>2, y>>2, x&3, y&3

	info := &formatInfos[g.format]
	for e := range info.numElems {
		elem := g.element(bx, by, e)
		comp := int(info.components[e])
		switch info.elems[e] {
		case ElementDXT1:
			b := (*block.DXT1)(elem)
			colors := b.Colors(g.colorAllowsAlpha())
			n := 4
			if (g.format == FormatDXT1A) && b.IsAlphaBlock() {
				if c.A < dxt1.DefaultAlphaThreshold {
					b.SetSelector(lx, ly, 3)
					continue
				}
				n = 3
			}
			b.SetSelector(lx, ly, nearestColor(c, colors[:n]))
		case ElementDXT3:
			(*block.DXT3)(elem).SetAlpha(lx, ly, c.Component(comp))
		case ElementDXT5A:
			b := (*block.DXT5)(elem)
			v, values := c.Component(comp), b.Values()
			sel, best := 0, math.MaxInt32
			for j, w := range values {
				if d := (int(v) - int(w)) * (int(v) - int(w)); best > d {
					sel, best = j, d
				}
			}
			b.SetSelector(lx, ly, uint8(sel))
		case ElementETC1:
			b := (*block.ETC1)(elem)
			colors, _ := b.SubblockColors(b.Subblock(lx, ly))
			b.SetSelector(lx, ly, nearestColor(c, colors[:]))
		}
	}
	return nil
}

func nearestColor(c pixel.RGBA, colors []pixel.RGBA) uint8 {
	sel, best := uint8(0), ^uint32(0)
	for j, k := range colors {
		if d := pixel.SquaredDistance(c, k, false, false); best > d {
			sel, best = uint8(j), d
		}
	}
	return sel
}

func packColor(c pixel.RGBA) uint32 {
	return (uint32(c.A) << 24) | (uint32(c.R) << 16) | (uint32(c.G) << 8) | uint32(c.B)
}

// BlockEndpoints returns the endpoints of block (bx, by)'s e'th element:
// RGB565 values for DXT1, alpha values for DXT5A and 0xAARRGGBB subblock
// base colors for ETC1. DXT3 elements have no endpoints and give zeroes.
func (g *grid) BlockEndpoints(bx int, by int, e int) (lo uint32, hi uint32, err error) {
	if err := g.checkBlock(bx, by); err != nil {
		return 0, 0, err
	}
	et, err := g.ElementType(e)
	if err != nil {
		return 0, 0, err
	}
	elem := g.element(bx, by, e)
	switch et {
	case ElementDXT1:
		b := (*block.DXT1)(elem)
		return uint32(b.Low()), uint32(b.High()), nil
	case ElementDXT5A:
		b := (*block.DXT5)(elem)
		return uint32(b.Low()), uint32(b.High()), nil
	case ElementETC1:
		b := (*block.ETC1)(elem)
		b0, _ := b.SubblockBase(0)
		b1, _ := b.SubblockBase(1)
		return packColor(pixel.RGBA{R: b0[0], G: b0[1], B: b0[2], A: 0xFF}),
			packColor(pixel.RGBA{R: b1[0], G: b1[1], B: b1[2], A: 0xFF}), nil
	}
	return 0, 0, nil
}

// BlockColors returns the palette of block (bx, by)'s e'th element, indexed
// by selector. Colors are 0xAARRGGBB and single channel values are plain.
// DXT1 always gives four entries, the last of a 3-color block being black,
// transparent only for FormatDXT1A. ETC1 gives both subblocks' palettes, subblock 0 first.
func (g *grid) BlockColors(bx int, by int, e int) ([]uint32, error) {
	if err := g.checkBlock(bx, by); err != nil {
		return nil, err
	}
	et, err := g.ElementType(e)
	if err != nil {
		return nil, err
	}
	elem := g.element(bx, by, e)
	switch et {
	case ElementDXT1:
		colors := (*block.DXT1)(elem).Colors(g.colorAllowsAlpha())
		ret := make([]uint32, len(colors))
		for i, c := range colors {
			if g.format != FormatDXT1A {
				c.A = 0xFF
			}
			ret[i] = packColor(c)
		}
		return ret, nil
	case ElementDXT3:
		ret := make([]uint32, 16)
		for i := range ret {
			ret[i] = uint32(i) * 17
		}
		return ret, nil
	case ElementDXT5A:
		values := (*block.DXT5)(elem).Values()
		ret := make([]uint32, len(values))
		for i, v := range values {
			ret[i] = uint32(v)
		}
		return ret, nil
	case ElementETC1:
		b := (*block.ETC1)(elem)
		ret := make([]uint32, 0, 8)
		for sub := range 2 {
			colors, _ := b.SubblockColors(sub)
			for _, c := range colors {
				ret = append(ret, packColor(c))
			}
		}
		return ret, nil
	}
	return nil, nil
}

// Unpack decodes the whole image. The bool result is false if any block was
// invalid. Invalid blocks still decode, with clamped colors, and are logged
// once.
func (g *grid) Unpack() (*image.NRGBA, bool, error) {
	if !g.Initialized() {
		return nil, false, ErrNotInitialized
	}
	dst := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	allValid, numInvalid := true, 0
	for by := range g.blocksY {
		for bx := range g.blocksX {
			decoded, valid := g.decodeBlock(bx, by)
			if !valid {
				allValid = false
				numInvalid++
			}
			for y := range min(4, g.height-(4*by)) {
				for x := range min(4, g.width-(4*bx)) {
					dst.SetNRGBA((4*bx)+x, (4*by)+y, pixel.ToNRGBA(decoded[(4*y)+x]))
				}
			}
		}
	}
	if !allValid {
		g.logger().Printf("dxtimage: %d invalid %v block(s) decoded with clamping", numInvalid, g.format)
	}
	return dst, allValid, nil
}

// ErrorMetrics compares the decoded image against src, which must have the
// same dimensions, over the components the format stores. It returns the
// mean squared error and the peak signal to noise ratio in decibels, which
// is +Inf for an exact match.
func (g *grid) ErrorMetrics(src image.Image) (mse float64, psnr float64, err error) {
	if !g.Initialized() {
		return 0, 0, ErrNotInitialized
	} else if src == nil {
		return 0, 0, fmt.Errorf("%w: nil image", ErrBadArgument)
	}
	b := src.Bounds()
	if (b.Dx() != g.width) || (b.Dy() != g.height) {
		return 0, 0, fmt.Errorf("%w: %d×%d vs %d×%d", ErrBadDimensions, b.Dx(), b.Dy(), g.width, g.height)
	}

	comps := [4]bool{}
	info := &formatInfos[g.format]
	for e := range info.numElems {
		if c := info.components[e]; c == componentAll {
			comps[0], comps[1], comps[2] = true, true, true
			comps[3] = comps[3] || (g.format == FormatDXT1A)
		} else {
			comps[c] = true
		}
	}
	numComps := 0
	for _, ok := range comps {
		if ok {
			numComps++
		}
	}

	total := 0.0
	for by := range g.blocksY {
		for bx := range g.blocksX {
			decoded, _ := g.decodeBlock(bx, by)
			for y := range min(4, g.height-(4*by)) {
				for x := range min(4, g.width-(4*bx)) {
					want := pixel.FromColor(src.At(b.Min.X+(4*bx)+x, b.Min.Y+(4*by)+y))
					got := decoded[(4*y)+x]
					for c, ok := range comps {
						if ok {
							d := float64(want.Component(c)) - float64(got.Component(c))
							total += d * d
						}
					}
				}
			}
		}
	}

	mse = total / float64(g.width*g.height*numComps)
	if mse == 0 {
		return 0, math.Inf(+1), nil
	}
	return mse, 10 * math.Log10((255*255)/mse), nil
}

// FlipX mirrors the image horizontally. It fails, leaving the image
// unchanged, for ETC1 and for widths above 4 that are not a multiple of 4.
func (g *grid) FlipX() error {
	if err := g.checkFlip(g.width); err != nil {
		return err
	}
	bpb := g.format.BytesPerBlock()
	w := min(g.width, 4)
	for by := range g.blocksY {
		row := g.data[by*g.blocksX*bpb : (by+1)*g.blocksX*bpb]
		for bx := range g.blocksX / 2 {
			a := row[bx*bpb : (bx+1)*bpb]
			b := row[(g.blocksX-1-bx)*bpb : (g.blocksX-bx)*bpb]
			for i := range a {
				a[i], b[i] = b[i], a[i]
			}
		}
		for bx := range g.blocksX {
			g.flipBlock(row[bx*bpb:(bx+1)*bpb], w, true)
		}
	}
	return nil
}

// FlipY mirrors the image vertically. It fails, leaving the image
// unchanged, for ETC1 and for heights above 4 that are not a multiple of 4.
func (g *grid) FlipY() error {
	if err := g.checkFlip(g.height); err != nil {
		return err
	}
	bpb := g.format.BytesPerBlock()
	rowBytes := g.blocksX * bpb
	h := min(g.height, 4)
	for by := range g.blocksY / 2 {
		a := g.data[by*rowBytes : (by+1)*rowBytes]
		b := g.data[(g.blocksY-1-by)*rowBytes : (g.blocksY-by)*rowBytes]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
	for i := 0; i < len(g.data); i += bpb {
		g.flipBlock(g.data[i:i+bpb], h, false)
	}
	return nil
}

func (g *grid) checkFlip(dim int) error {
	if !g.Initialized() {
		return ErrNotInitialized
	} else if g.format == FormatETC1 {
		return fmt.Errorf("%w: %v", ErrNotFlippable, g.format)
	} else if (dim > 4) && ((dim & 3) != 0) {
		return fmt.Errorf("%w: dimension %d", ErrNotFlippable, dim)
	}
	return nil
}

// flipBlock mirrors one block's selectors within its first n columns (xAxis)
// or rows.
func (g *grid) flipBlock(blk []byte, n int, xAxis bool) {
	info := &formatInfos[g.format]
	for e := range info.numElems {
		elem := blk[ElementBytes*e : ElementBytes*(e+1)]
		switch info.elems[e] {
		case ElementDXT1:
			if b := (*block.DXT1)(elem); xAxis {
				b.FlipX(n)
			} else {
				b.FlipY(n)
			}
		case ElementDXT3:
			if b := (*block.DXT3)(elem); xAxis {
				b.FlipX(n)
			} else {
				b.FlipY(n)
			}
		case ElementDXT5A:
			if b := (*block.DXT5)(elem); xAxis {
				b.FlipX(n)
			} else {
				b.FlipY(n)
			}
		}
	}
}
