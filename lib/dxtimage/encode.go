// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/dxt1"
	"github.com/nigeltao/dxtc/lib/dxt5"
	"github.com/nigeltao/dxtc/lib/dxtfast"
	"github.com/nigeltao/dxtc/lib/etc1"
	"github.com/nigeltao/dxtc/lib/pixel"
	"github.com/nigeltao/dxtc/lib/quality"
)

// encoder is one worker's private scratch space.
type encoder struct {
	format Format
	p      *PackParams

	dxt1Opt     dxt1.Optimizer
	dxt1Params  dxt1.Params
	dxt1Results dxt1.Results

	dxt5Opt     dxt5.Optimizer
	dxt5Params  dxt5.Params
	dxt5Results dxt5.Results

	etc1Opt    etc1.Optimizer
	etc1Params etc1.PackParams

	values [16]uint8
}

func newEncoder(f Format, p *PackParams) *encoder {
	e := &encoder{format: f, p: p}

	threshold := p.AlphaThreshold
	if !p.UseAlphaBlocks {
		threshold = 0
	}
	e.dxt1Params = dxt1.Params{
		Quality:             p.Quality,
		Perceptual:          p.Perceptual,
		UseAlphaBlocks:      p.UseAlphaBlocks && ((f == FormatDXT1) || (f == FormatDXT1A)),
		AlphaThreshold:      threshold,
		Grayscale:           p.Grayscale,
		EndpointCaching:     p.EndpointCaching,
		TransparentForBlack: p.UseTransparentIndicesForBlack && (f == FormatDXT1),
		PixelsHaveAlpha:     f == FormatDXT1A,
	}
	e.dxt5Params = dxt5.Params{
		Quality:        p.Quality,
		UseBothSchemes: true,
	}
	etc1Quality := p.Quality
	if p.Compressor == CompressorFast {
		etc1Quality = quality.SuperFast
	}
	e.etc1Params = etc1.PackParams{
		Quality:    etc1Quality,
		Perceptual: p.Perceptual,
	}
	return e
}

// encodeBlock writes the encoding of sixteen row-major pixels to dst, which
// holds one block.
func (e *encoder) encodeBlock(dst []byte, pixels *[16]pixel.RGBA) {
	info := &formatInfos[e.format]
	for i := range info.numElems {
		elem := dst[ElementBytes*i : ElementBytes*(i+1)]
		switch info.elems[i] {
		case ElementDXT1:
			e.encodeDXT1((*block.DXT1)(elem), pixels)
		case ElementDXT3:
			e.encodeDXT3((*block.DXT3)(elem), pixels, int(info.components[i]))
		case ElementDXT5A:
			e.encodeDXT5A((*block.DXT5)(elem), pixels, int(info.components[i]))
		case ElementETC1:
			e.etc1Opt.PackBlock((*block.ETC1)(elem), pixels, &e.etc1Params)
		}
	}
}

func (e *encoder) encodeDXT1(dst *block.DXT1, pixels *[16]pixel.RGBA) {
	if (e.p.Compressor == CompressorFast) && !e.hasCutouts(pixels) {
		src := pixels
		gray := [16]pixel.RGBA{}
		if e.p.Grayscale {
			for i, c := range pixels {
				l := c.Luma()
				gray[i] = pixel.RGBA{R: l, G: l, B: l, A: c.A}
			}
			src = &gray
		}
		low, high, sel := dxtfast.CompressColorBlock(src, e.p.Perceptual, e.p.Quality >= quality.Normal)
		dst.SetLow(low)
		dst.SetHigh(high)
		dst.SetSelectors(&sel)
		return
	}

	e.dxt1Params.Pixels = pixels[:]
	if err := e.dxt1Opt.Compute(&e.dxt1Params, &e.dxt1Results); err != nil {
		// Unreachable with sixteen pixels.
		*dst = block.DXT1{}
		return
	}
	*dst = e.dxt1Results.Block()
}

// hasCutouts returns whether any pixel would be cut out of a DXT1A block,
// which the fast compressor cannot express.
func (e *encoder) hasCutouts(pixels *[16]pixel.RGBA) bool {
	if !e.dxt1Params.UseAlphaBlocks || !e.dxt1Params.PixelsHaveAlpha {
		return false
	}
	for _, c := range pixels {
		if c.A < e.dxt1Params.AlphaThreshold {
			return true
		}
	}
	return false
}

func (e *encoder) encodeDXT3(dst *block.DXT3, pixels *[16]pixel.RGBA, component int) {
	for i, c := range pixels {
		dst.SetAlpha(i&3, i>>2, c.Component(component))
	}
}

func (e *encoder) encodeDXT5A(dst *block.DXT5, pixels *[16]pixel.RGBA, component int) {
	for i, c := range pixels {
		e.values[i] = c.Component(component)
	}

	if e.p.Compressor == CompressorFast {
		low, high, sel := dxtfast.CompressAlphaBlock(&e.values)
		dst.SetLow(low)
		dst.SetHigh(high)
		dst.SetSelectors(&sel)
		return
	}

	e.dxt5Params.Pixels = e.values[:]
	if err := e.dxt5Opt.Compute(&e.dxt5Params, &e.dxt5Results); err != nil {
		*dst = block.DXT5{}
		return
	}
	*dst = e.dxt5Results.Block()
}
