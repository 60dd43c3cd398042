// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt1

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/nigeltao/dxtc/lib/block"
	"github.com/nigeltao/dxtc/lib/pixel"
	"github.com/nigeltao/dxtc/lib/quality"
)

// decodedError returns the error of r's block against pixels, measured the
// way Compute measures it.
func decodedError(r *Results, pixels []pixel.RGBA, p *Params) uint64 {
	b := r.Block()
	decoded := b.Decode(true)
	total := uint64(0)
	for i, c := range pixels {
		if p.UseAlphaBlocks && p.PixelsHaveAlpha && (c.A < p.AlphaThreshold) {
			continue
		}
		total += uint64(pixel.SquaredDistance(c, decoded[i], p.Perceptual, false))
	}
	return total
}

func TestComputeErrors(tt *testing.T) {
	o := &Optimizer{}
	r := &Results{}
	if err := o.Compute(&Params{}, r); !errors.Is(err, ErrNoPixels) {
		tt.Errorf("no pixels: got %v", err)
	}
	if err := o.Compute(&Params{Pixels: make([]pixel.RGBA, 17)}, r); !errors.Is(err, ErrTooManyPixels) {
		tt.Errorf("17 pixels: got %v", err)
	}
	if err := o.Compute(nil, r); !errors.Is(err, ErrNilParamsOrRes) {
		tt.Errorf("nil params: got %v", err)
	}
}

func TestSolidExactness(tt *testing.T) {
	colors := []pixel.RGBA{
		block.Unpack565(0x0000, true),
		block.Unpack565(0xFFFF, true),
		block.Unpack565(0x8410, true),
		block.Unpack565(0x1234, true),
		block.Unpack565(0xF81F, true),
	}
	o := &Optimizer{}
	for q := range quality.NumLevels {
		for _, useAlpha := range []bool{false, true} {
			for _, c := range colors {
				pixels := make([]pixel.RGBA, 16)
				for i := range pixels {
					pixels[i] = c
				}
				p := &Params{Pixels: pixels, Quality: quality.Level(q), UseAlphaBlocks: useAlpha}
				r := &Results{}
				if err := o.Compute(p, r); err != nil {
					tt.Fatalf("q=%d c=%v: Compute: %v", q, c, err)
				}
				if r.Error != 0 {
					tt.Errorf("q=%d c=%v: Error: got %d, want 0", q, c, r.Error)
				}
				b := r.Block()
				for i, got := range b.Decode(true) {
					if got != c {
						tt.Errorf("q=%d c=%v: pixel %d decoded as %v", q, c, i, got)
						break
					}
				}
			}
		}
	}
}

func TestSolidNearest(tt *testing.T) {
	rng := rand.New(rand.NewSource(1))
	o := &Optimizer{}
	for range 200 {
		c := pixel.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 0xFF}
		pixels := make([]pixel.RGBA, 16)
		for i := range pixels {
			pixels[i] = c
		}
		p := &Params{Pixels: pixels, Quality: quality.Normal}
		r := &Results{}
		if err := o.Compute(p, r); err != nil {
			tt.Fatalf("Compute: %v", err)
		}
		// Every channel value is within one of some 2/3 interpolant.
		if r.Error > 16*3 {
			tt.Errorf("c=%v: Error: got %d, want <= 48", c, r.Error)
		}
		if got := decodedError(r, pixels, p); got != r.Error {
			tt.Errorf("c=%v: decoded error %d != reported %d", c, got, r.Error)
		}
	}
}

func TestRedBlueCheckerboard(tt *testing.T) {
	red := pixel.RGBA{0xFF, 0x00, 0x00, 0xFF}
	blue := pixel.RGBA{0x00, 0x00, 0xFF, 0xFF}
	pixels := make([]pixel.RGBA, 16)
	for i := range pixels {
		if ((i & 1) ^ ((i >> 2) & 1)) == 0 {
			pixels[i] = red
		} else {
			pixels[i] = blue
		}
	}

	for q := range quality.NumLevels {
		o := &Optimizer{}
		p := &Params{Pixels: pixels, Quality: quality.Level(q)}
		r := &Results{}
		if err := o.Compute(p, r); err != nil {
			tt.Fatalf("q=%d: Compute: %v", q, err)
		}
		lo, hi := block.Unpack565(r.Low, true), block.Unpack565(r.High, true)
		if !((lo == red && hi == blue) || (lo == blue && hi == red)) {
			tt.Errorf("q=%d: endpoints: got %v, %v", q, lo, hi)
		}
		for i, s := range r.Selectors {
			if s > 1 {
				tt.Errorf("q=%d: selector %d: got %d, want 0 or 1", q, i, s)
			}
		}
		if r.Error != 0 {
			tt.Errorf("q=%d: Error: got %d, want 0", q, r.Error)
		}
	}
}

func TestRoundTripBound(tt *testing.T) {
	rng := rand.New(rand.NewSource(2))
	o := &Optimizer{}
	for n := range 100 {
		src := block.DXT1{}
		for i := range src {
			src[i] = uint8(rng.Intn(256))
		}
		decoded := src.Decode(false)
		pixels := decoded[:]

		for _, perceptual := range []bool{false, true} {
			p := &Params{
				Pixels:          pixels,
				Quality:         quality.Uber,
				Perceptual:      perceptual,
				UseAlphaBlocks:  true,
				EndpointCaching: true,
			}
			r := &Results{}
			if err := o.Compute(p, r); err != nil {
				tt.Fatalf("n=%d: Compute: %v", n, err)
			}
			got := decodedError(r, pixels, p)
			if got != r.Error {
				tt.Errorf("n=%d perceptual=%t: decoded error %d != reported %d", n, perceptual, got, r.Error)
			}
			if r.AlphaBlock != (r.Low <= r.High) {
				tt.Errorf("n=%d: AlphaBlock=%t with low=0x%04X high=0x%04X", n, r.AlphaBlock, r.Low, r.High)
			}
		}
	}
}

func TestAlphaCutout(tt *testing.T) {
	pixels := make([]pixel.RGBA, 16)
	for i := range pixels {
		pixels[i] = pixel.RGBA{uint8(16 * i), 0x80, 0x40, 0xFF}
	}
	pixels[3].A = 0
	pixels[9].A = 0x10

	for q := range quality.NumLevels {
		p := &Params{
			Pixels:          pixels,
			Quality:         quality.Level(q),
			UseAlphaBlocks:  true,
			PixelsHaveAlpha: true,
			AlphaThreshold:  DefaultAlphaThreshold,
		}
		r := &Results{}
		if err := (&Optimizer{}).Compute(p, r); err != nil {
			tt.Fatalf("q=%d: Compute: %v", q, err)
		}
		if !r.AlphaBlock || (r.Low > r.High) {
			tt.Fatalf("q=%d: want a 3-color block, got low=0x%04X high=0x%04X", q, r.Low, r.High)
		}
		b := r.Block()
		decoded := b.Decode(true)
		for i := range pixels {
			transparent := decoded[i].A == 0
			if want := pixels[i].A < DefaultAlphaThreshold; transparent != want {
				tt.Errorf("q=%d: pixel %d: transparent=%t, want %t", q, i, transparent, want)
			}
		}
		if got := decodedError(r, pixels, p); got != r.Error {
			tt.Errorf("q=%d: decoded error %d != reported %d", q, got, r.Error)
		}
	}
}

func TestAllTransparent(tt *testing.T) {
	pixels := make([]pixel.RGBA, 16)
	p := &Params{Pixels: pixels, UseAlphaBlocks: true, PixelsHaveAlpha: true, AlphaThreshold: 1}
	r := &Results{}
	if err := (&Optimizer{}).Compute(p, r); err != nil {
		tt.Fatalf("Compute: %v", err)
	}
	if (r.Low != 0) || (r.High != 0) || !r.AlphaBlock || (r.Error != 0) {
		tt.Errorf("got %+v", r)
	}
	for i, s := range r.Selectors {
		if s != 3 {
			tt.Errorf("selector %d: got %d, want 3", i, s)
		}
	}
}

func TestOpaqueModeNeverUsesTransparentSelector(tt *testing.T) {
	rng := rand.New(rand.NewSource(3))
	o := &Optimizer{}
	for n := range 100 {
		pixels := make([]pixel.RGBA, 16)
		for i := range pixels {
			pixels[i] = pixel.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 0xFF}
		}
		p := &Params{Pixels: pixels, Quality: quality.Better}
		r := &Results{}
		if err := o.Compute(p, r); err != nil {
			tt.Fatalf("n=%d: Compute: %v", n, err)
		}
		b := r.Block()
		decoded := b.Decode(true)
		for i := range decoded {
			if decoded[i].A != 0xFF {
				tt.Fatalf("n=%d: pixel %d decodes as transparent", n, i)
			}
		}
	}
}

func TestCollapsedEndpoints(tt *testing.T) {
	o := &Optimizer{}
	for v := range 256 {
		for _, c := range []pixel.RGBA{{uint8(v), uint8(v), uint8(v), 0xFF}, {uint8(v), 0, 0, 0xFF}} {
			pixels := make([]pixel.RGBA, 16)
			for i := range pixels {
				pixels[i] = c
			}
			r := &Results{}
			if err := o.Compute(&Params{Pixels: pixels, Quality: quality.Normal}, r); err != nil {
				tt.Fatalf("c=%v: Compute: %v", c, err)
			}
			if r.AlphaBlock != (r.Low <= r.High) {
				tt.Errorf("c=%v: AlphaBlock=%t with low=0x%04X high=0x%04X", c, r.AlphaBlock, r.Low, r.High)
			}
			if !r.AlphaBlock {
				continue
			}
			if r.Low != r.High {
				tt.Errorf("c=%v: 3-color block without UseAlphaBlocks", c)
			}
			b := r.Block()
			decoded := b.Decode(true)
			for i, s := range r.Selectors {
				if (s != 0) || (decoded[i].A != 0xFF) {
					tt.Fatalf("c=%v: pixel %d: selector %d, alpha %d", c, i, s, decoded[i].A)
				}
			}
		}
	}
}

func TestTransparentForBlack(tt *testing.T) {
	pixels := make([]pixel.RGBA, 16)
	for i := range pixels {
		if i%2 == 0 {
			pixels[i] = pixel.RGBA{0, 0, 0, 0xFF}
		} else {
			pixels[i] = pixel.RGBA{0xC0, 0xA0, 0x20 + uint8(i), 0xFF}
		}
	}
	p := &Params{
		Pixels:              pixels,
		Quality:             quality.Uber,
		UseAlphaBlocks:      true,
		TransparentForBlack: true,
	}
	r := &Results{}
	if err := (&Optimizer{}).Compute(p, r); err != nil {
		tt.Fatalf("Compute: %v", err)
	}
	without := &Results{}
	p2 := *p
	p2.TransparentForBlack = false
	if err := (&Optimizer{}).Compute(&p2, without); err != nil {
		tt.Fatalf("Compute: %v", err)
	}
	if r.Error > without.Error {
		tt.Errorf("TransparentForBlack made things worse: %d > %d", r.Error, without.Error)
	}
	if got := decodedError(r, pixels, p); got != r.Error {
		tt.Errorf("decoded error %d != reported %d", got, r.Error)
	}
}

func TestGrayscale(tt *testing.T) {
	pixels := make([]pixel.RGBA, 16)
	grays := make([]pixel.RGBA, 16)
	for i := range pixels {
		pixels[i] = pixel.RGBA{uint8(17 * i), 0, 0xFF - uint8(17*i), 0xFF}
		y := pixels[i].Luma()
		grays[i] = pixel.RGBA{y, y, y, 0xFF}
	}
	p := &Params{Pixels: pixels, Quality: quality.Normal, Grayscale: true}
	r := &Results{}
	if err := (&Optimizer{}).Compute(p, r); err != nil {
		tt.Fatalf("Compute: %v", err)
	}
	if got := decodedError(r, grays, p); got != r.Error {
		tt.Errorf("error against luma: got %d, reported %d", got, r.Error)
	}
	if colorful := decodedError(r, pixels, p); colorful <= r.Error {
		tt.Errorf("error against the original colors: got %d, want > %d", colorful, r.Error)
	}
}

func TestSolidTables(tt *testing.T) {
	for tc := range 2 {
		for g := range 2 {
			for v := range 256 {
				e := solidTables[tc][g][v]
				if e.err > 2 {
					tt.Errorf("tc=%d g=%d v=%d: err %d", tc, g, v, e.err)
				}
			}
		}
	}
}

func BenchmarkComputeNormal(b *testing.B) {
	rng := rand.New(rand.NewSource(4))
	pixels := make([]pixel.RGBA, 16)
	for i := range pixels {
		pixels[i] = pixel.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 0xFF}
	}
	o, r := &Optimizer{}, &Results{}
	p := &Params{Pixels: pixels, Quality: quality.Normal, Perceptual: true}
	b.ResetTimer()
	for range b.N {
		_ = o.Compute(p, r)
	}
}
