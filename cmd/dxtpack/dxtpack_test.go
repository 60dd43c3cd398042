// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/nigeltao/dxtc/internal/nie"
	"github.com/nigeltao/dxtc/lib/dxtimage"
	"github.com/nigeltao/dxtc/lib/quality"
)

func testPNG(tt *testing.T, w int, h int) []byte {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 0x40,
				A: 0xFF,
			})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, m); err != nil {
		tt.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func testConfig(f dxtimage.Format, w int, h int, output string) *config {
	return &config{
		format: f,
		width:  w,
		height: h,
		output: output,
		params: dxtimage.DefaultPackParams(),
		logger: log.New(io.Discard, "", 0),
	}
}

func TestEncodeDecode(tt *testing.T) {
	src := testPNG(tt, 20, 12)
	for _, f := range []dxtimage.Format{
		dxtimage.FormatDXT1, dxtimage.FormatDXT5, dxtimage.FormatDXNXY, dxtimage.FormatETC1,
	} {
		for _, lz4 := range []bool{false, true} {
			c := testConfig(f, 20, 12, "")
			c.lz4 = lz4
			c.verbose = true
			encoded := &bytes.Buffer{}
			if err := encode(c, bytes.NewReader(src), encoded); err != nil {
				tt.Fatalf("%v lz4=%t: encode: %v", f, lz4, err)
			}
			if size := 5 * 3 * f.BytesPerBlock(); !lz4 && (encoded.Len() != size) {
				tt.Errorf("%v: got %d bytes, want %d", f, encoded.Len(), size)
			}

			decoded := &bytes.Buffer{}
			if err := decode(c, bytes.NewReader(encoded.Bytes()), decoded); err != nil {
				tt.Fatalf("%v lz4=%t: decode: %v", f, lz4, err)
			}
			m, err := png.Decode(decoded)
			if err != nil {
				tt.Fatalf("%v lz4=%t: png.Decode: %v", f, lz4, err)
			}
			if b := m.Bounds(); (b.Dx() != 20) || (b.Dy() != 12) {
				tt.Errorf("%v lz4=%t: bounds: got %v", f, lz4, b)
			}
		}
	}
}

func TestDecodeNIE(tt *testing.T) {
	encoded := &bytes.Buffer{}
	c := testConfig(dxtimage.FormatDXT3, 7, 5, "")
	if err := encode(c, bytes.NewReader(testPNG(tt, 7, 5)), encoded); err != nil {
		tt.Fatalf("encode: %v", err)
	}
	for _, tc := range []struct {
		output string
		depth  int
	}{{"nie-bn4", 4}, {"nie-bn8", 8}} {
		got := &bytes.Buffer{}
		c := testConfig(dxtimage.FormatDXT3, 7, 5, tc.output)
		if err := decode(c, bytes.NewReader(encoded.Bytes()), got); err != nil {
			tt.Fatalf("%s: decode: %v", tc.output, err)
		}
		if want := nie.HeaderSize + (tc.depth * 7 * 5); got.Len() != want {
			tt.Errorf("%s: got %d bytes, want %d", tc.output, got.Len(), want)
		}
	}
}

func TestErrors(tt *testing.T) {
	src := testPNG(tt, 4, 4)
	if err := encode(testConfig(dxtimage.FormatDXT1, 0, 0, "png"), bytes.NewReader(src), io.Discard); !errors.Is(err, ErrBadOutputFlag) {
		tt.Errorf("encode to png: got %v", err)
	}
	if err := decode(testConfig(dxtimage.FormatDXT1, 4, 4, "jpeg"), bytes.NewReader(nil), io.Discard); !errors.Is(err, ErrBadOutputFlag) {
		tt.Errorf("decode to jpeg: got %v", err)
	}
	if err := decode(testConfig(dxtimage.FormatDXT1, 0, 4, ""), bytes.NewReader(nil), io.Discard); !errors.Is(err, dxtimage.ErrBadDimensions) {
		tt.Errorf("decode without -width: got %v", err)
	}
	if err := decode(testConfig(dxtimage.FormatDXT1, 8, 8, ""), bytes.NewReader(make([]byte, 31)), io.Discard); !errors.Is(err, io.ErrUnexpectedEOF) {
		tt.Errorf("decode short input: got %v", err)
	}
	if err := encode(testConfig(dxtimage.FormatDXT1, 0, 0, ""), strings.NewReader("not an image"), io.Discard); !errors.Is(err, image.ErrFormat) {
		tt.Errorf("encode garbage: got %v", err)
	}
}

func TestLoadParams(tt *testing.T) {
	p := dxtimage.DefaultPackParams()
	doc := "quality: uber\ncompressor: fast\nhelpers: 2\nperceptual: false\nalpha_threshold: 64\n"
	if err := loadParams(strings.NewReader(doc), p); err != nil {
		tt.Fatalf("loadParams: %v", err)
	}
	if (p.Quality != quality.Uber) || (p.Compressor != dxtimage.CompressorFast) ||
		(p.Helpers != 2) || p.Perceptual || (p.AlphaThreshold != 64) {
		tt.Errorf("got %+v", *p)
	}
	if !p.UseAlphaBlocks || !p.EndpointCaching {
		tt.Errorf("unset fields changed: %+v", *p)
	}

	p = dxtimage.DefaultPackParams()
	if err := loadParams(strings.NewReader(""), p); err != nil {
		tt.Errorf("empty: %v", err)
	} else if !reflect.DeepEqual(p, dxtimage.DefaultPackParams()) {
		tt.Errorf("empty: got %+v", *p)
	}

	for _, bad := range []string{
		"quality: ludicrous\n",
		"compressor: gpu\n",
		"helpers: -1\n",
		"colour: red\n",
	} {
		if err := loadParams(strings.NewReader(bad), dxtimage.DefaultPackParams()); err == nil {
			tt.Errorf("%q: got nil error", bad)
		}
	}
}

func TestDescribeBlocks(tt *testing.T) {
	src, err := png.Decode(bytes.NewReader(testPNG(tt, 8, 4)))
	if err != nil {
		tt.Fatalf("png.Decode: %v", err)
	}
	m := &dxtimage.Image{}
	if err := m.InitFromImage(dxtimage.FormatDXT5, src, nil); err != nil {
		tt.Fatalf("InitFromImage: %v", err)
	}

	got := describeBlocks(m, 5)
	if len(got) != 2 {
		tt.Fatalf("blocks: got %d, want 2", len(got))
	}
	for i, b := range got {
		if (b.X != i) || (b.Y != 0) || (len(b.Elements) != 2) {
			tt.Fatalf("block %d: got %+v", i, b)
		}
		if e := b.Elements[0]; (e.Type != "dxt5a") || (e.Component != 3) || (len(e.Colors) != 8) {
			tt.Errorf("block %d alpha: got %+v", i, e)
		}
		if e := b.Elements[1]; (e.Type != "dxt1") || (e.Component != -1) || (len(e.Colors) != 4) {
			tt.Errorf("block %d color: got %+v", i, e)
		}
	}

	buf := &bytes.Buffer{}
	dumpBlocks(buf, m, 1)
	if s := buf.String(); !strings.Contains(s, "Low:") || !strings.Contains(s, "#ff") {
		tt.Errorf("dump:\n%s", s)
	}
}
