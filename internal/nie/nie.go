// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing what's needed to dump decoded textures from the dxtc module.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrBadArgument          = errors.New("nie: bad argument")
	ErrUnsupportedImageType = errors.New("nie: unsupported image type")
)

// Depth is the number of bytes per pixel: 4 (8 bits per channel) or 8 (16
// bits per channel).
type Depth uint8

const (
	DepthBN4 Depth = 4
	DepthBN8 Depth = 8
)

// HeaderSize is the length of a NIE file's header.
const HeaderSize = 16

const maxDimension = 0x7FFF_FFFF

// Encode encodes m as a NIE file in BGRA order and non-premultiplied alpha.
func Encode(m image.Image, d Depth) ([]byte, error) {
	if m == nil {
		return nil, ErrBadArgument
	} else if (d != DepthBN4) && (d != DepthBN8) {
		return nil, ErrBadArgument
	}
	b := m.Bounds()
	if (b.Dx() > maxDimension) || (b.Dy() > maxDimension) {
		return nil, ErrUnsupportedImageType
	}

	ret := make([]byte, 0, HeaderSize+(int(d)*b.Dx()*b.Dy()))
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', '0'+uint8(d))
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	if n, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				ret = appendNRGBA(ret, n.NRGBAAt(x, y), d)
			}
		}
		return ret, nil
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(m.At(x, y)).(color.NRGBA64)
			if d == DepthBN4 {
				ret = append(ret, uint8(c.B>>8), uint8(c.G>>8), uint8(c.R>>8), uint8(c.A>>8))
				continue
			}
			ret = append(ret,
				uint8(c.B>>0), uint8(c.B>>8),
				uint8(c.G>>0), uint8(c.G>>8),
				uint8(c.R>>0), uint8(c.R>>8),
				uint8(c.A>>0), uint8(c.A>>8),
			)
		}
	}
	return ret, nil
}

// EncodeBN8 is Encode with 16 bits per channel.
func EncodeBN8(m image.Image) ([]byte, error) {
	return Encode(m, DepthBN8)
}

func appendNRGBA(b []byte, c color.NRGBA, d Depth) []byte {
	if d == DepthBN4 {
		return append(b, c.B, c.G, c.R, c.A)
	}
	return append(b, c.B, c.B, c.G, c.G, c.R, c.R, c.A, c.A)
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
