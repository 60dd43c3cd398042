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
	"sync/atomic"

	"github.com/nigeltao/dxtc/internal/taskpool"
	"github.com/nigeltao/dxtc/lib/pixel"
)

// InitFromImage initializes the Image to src's dimensions and compresses
// src into it. A nil p means DefaultPackParams().
//
// On failure, including cancellation through p.Progress, the Image is left
// cleared.
func (m *Image) InitFromImage(f Format, src image.Image, p *PackParams) error {
	if src == nil {
		return fmt.Errorf("%w: nil image", ErrBadArgument)
	} else if p == nil {
		p = DefaultPackParams()
	} else if p.Helpers < 0 {
		return fmt.Errorf("%w: %d helpers", ErrBadArgument, p.Helpers)
	}

	b := src.Bounds()
	if err := m.Init(f, b.Dx(), b.Dy()); err != nil {
		return err
	}

	logger := m.logger()
	if p.Logger != nil {
		logger = p.Logger
	}

	if p.Compressor == CompressorBackend {
		err := m.compressBackend(src, p)
		if err == nil {
			return nil
		} else if !errors.Is(err, errBackendUnsupported) {
			m.Clear()
			return err
		}
		logger.Printf("dxtimage: backend lacks %v, using the default compressor", f)
		q := *p
		q.Compressor = CompressorDefault
		p = &q
	}

	if err := m.compress(src, p); err != nil {
		if errors.Is(err, ErrCancelled) {
			logger.Printf("dxtimage: %v compression of %d×%d image cancelled", f, m.width, m.height)
		}
		m.Clear()
		return err
	}
	return nil
}

// compress partitions the blocks round-robin over 1+p.Helpers workers.
// Worker 0 runs on the calling goroutine and is the only one to report
// progress.
func (m *Image) compress(src image.Image, p *PackParams) error {
	numWorkers := 1 + p.Helpers
	cancelled := atomic.Bool{}

	if numWorkers > 1 {
		pool := p.Pool
		if pool == nil {
			wp := taskpool.New(p.Helpers)
			defer wp.Close()
			pool = wp
		}
		for w := 1; w < numWorkers; w++ {
			pool.Queue(func() {
				m.compressRange(src, p, w, numWorkers, &cancelled)
			})
		}
		m.compressRange(src, p, 0, numWorkers, &cancelled)
		pool.Join()
	} else {
		m.compressRange(src, p, 0, 1, &cancelled)
	}

	if cancelled.Load() {
		return ErrCancelled
	}
	return nil
}

// compressRange encodes blocks first, first+stride, first+2*stride, etc.
// The cancellation flag is checked before every block.
func (m *Image) compressRange(src image.Image, p *PackParams, first int, stride int, cancelled *atomic.Bool) {
	pixels := [16]pixel.RGBA{}
	extract := makeExtract(&pixels, src)
	enc := newEncoder(m.format, p)
	bpb := m.format.BytesPerBlock()

	total := m.TotalBlocks()
	mine := (total - first + stride - 1) / stride
	done, lastPercent := 0, -1
	for i := first; i < total; i += stride {
		if cancelled.Load() {
			return
		}
		extract(i%m.blocksX, i/m.blocksX)
		enc.encodeBlock(m.data[i*bpb:(i+1)*bpb], &pixels)
		done++

		if (first == 0) && (p.Progress != nil) {
			if percent := (100 * done) / mine; percent != lastPercent {
				lastPercent = percent
				if !p.Progress(percent) {
					cancelled.Store(true)
					return
				}
			}
		}
	}
}

// SetBlockPixels encodes sixteen row-major pixels into block (bx, by). A
// nil p means DefaultPackParams(). Only p's encoding options apply.
func (g *grid) SetBlockPixels(bx int, by int, pixels *[16]pixel.RGBA, p *PackParams) error {
	if err := g.checkBlock(bx, by); err != nil {
		return err
	} else if pixels == nil {
		return fmt.Errorf("%w: nil pixels", ErrBadArgument)
	} else if p == nil {
		p = DefaultPackParams()
	}
	if p.Compressor == CompressorBackend {
		q := *p
		q.Compressor = CompressorDefault
		p = &q
	}
	bpb := g.format.BytesPerBlock()
	i := (by * g.blocksX) + bx
	newEncoder(g.format, p).encodeBlock(g.data[i*bpb:(i+1)*bpb], pixels)
	return nil
}
