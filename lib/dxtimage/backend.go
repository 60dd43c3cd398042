// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/woozymasta/bcn"

	"github.com/nigeltao/dxtc/lib/quality"
)

var errBackendUnsupported = errors.New("dxtimage: format unsupported by backend")

// compressBackend encodes src with the bcn package, an opaque producer of
// whole block arrays.
func (m *Image) compressBackend(src image.Image, p *PackParams) error {
	bf, ok := m.format.bcnFormat()
	if !ok {
		return errBackendUnsupported
	}

	opts := &bcn.EncodeOptions{
		QualityLevel: bcn.QualityLevelFast,
	}
	if p.Quality >= quality.Normal {
		opts.QualityLevel = 8
	}

	// BC4 holds the red channel but DXT5A holds alpha.
	if m.format == FormatDXT5A {
		src = alphaAsRed(src)
	}

	data, _, _, err := bcn.EncodeImageWithOptions(src, bf, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	} else if len(data) != len(m.data) {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBackend, len(data), len(m.data))
	}
	copy(m.data, data)

	if m.format == FormatDXNYX {
		for i := 0; i < len(m.data); i += 16 {
			a, b := (*[8]byte)(m.data[i:i+8]), (*[8]byte)(m.data[i+8:i+16])
			*a, *b = *b, *a
		}
	}
	return nil
}

func alphaAsRed(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA).A
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: a, A: 0xFF})
		}
	}
	return dst
}
