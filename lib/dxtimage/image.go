// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dxtimage holds images as grids of DXT or ETC1 blocks. It
// compresses whole images, optionally in parallel, and decodes them, flips
// them and edits individual pixels.
package dxtimage

import (
	"errors"
	"fmt"
	"log"
)

var (
	ErrBadArgument    = errors.New("dxtimage: bad argument")
	ErrBadFormat      = errors.New("dxtimage: bad format")
	ErrBadDimensions  = errors.New("dxtimage: bad dimensions")
	ErrCancelled      = errors.New("dxtimage: cancelled")
	ErrNotFlippable   = errors.New("dxtimage: not flippable")
	ErrNotInitialized = errors.New("dxtimage: not initialized")
	ErrBackend        = errors.New("dxtimage: backend failure")
)

// MaxDimension is the largest width or height accepted.
const MaxDimension = 1 << 16

// grid holds the state shared by Image and View. A zero grid is cleared.
type grid struct {
	format  Format
	width   int
	height  int
	blocksX int
	blocksY int
	data    []byte

	// Logger receives the invalid block and fallback notices. Nil means
	// log.Default().
	Logger *log.Logger
}

// Image is a block compressed image that owns its block array.
type Image struct {
	grid
}

// View is a block compressed image over a caller owned block array. Edits
// write through to that array.
type View struct {
	grid
}

func checkDimensions(f Format, width int, height int) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %d", ErrBadFormat, f)
	} else if (width <= 0) || (width > MaxDimension) || (height <= 0) || (height > MaxDimension) {
		return fmt.Errorf("%w: %d×%d", ErrBadDimensions, width, height)
	}
	return nil
}

func (g *grid) setup(f Format, width int, height int, data []byte) {
	g.format = f
	g.width = width
	g.height = height
	g.blocksX = (width + 3) / 4
	g.blocksY = (height + 3) / 4
	g.data = data
}

func sizeInBytes(f Format, width int, height int) int {
	return ((width + 3) / 4) * ((height + 3) / 4) * f.BytesPerBlock()
}

// Init allocates a zeroed block array for the given format and dimensions.
func (m *Image) Init(f Format, width int, height int) error {
	if err := checkDimensions(f, width, height); err != nil {
		return err
	}
	m.setup(f, width, height, make([]byte, sizeInBytes(f, width, height)))
	return nil
}

// InitFromBlocks copies an existing block array, which must be exactly the
// right size.
func (m *Image) InitFromBlocks(f Format, width int, height int, data []byte) error {
	if err := checkDimensions(f, width, height); err != nil {
		return err
	} else if n := sizeInBytes(f, width, height); len(data) != n {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBadArgument, len(data), n)
	}
	m.setup(f, width, height, append([]byte(nil), data...))
	return nil
}

// Clear returns the Image to its cleared state, releasing its blocks.
func (m *Image) Clear() {
	logger := m.Logger
	m.grid = grid{Logger: logger}
}

// NewView returns a View over data, which must hold at least the format's
// block array size.
func NewView(f Format, width int, height int, data []byte) (*View, error) {
	if err := checkDimensions(f, width, height); err != nil {
		return nil, err
	} else if n := sizeInBytes(f, width, height); len(data) < n {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrBadArgument, len(data), n)
	} else {
		data = data[:n:n]
	}
	v := &View{}
	v.setup(f, width, height, data)
	return v, nil
}

func (g *grid) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

func (g *grid) Format() Format { return g.format }
func (g *grid) Width() int     { return g.width }
func (g *grid) Height() int    { return g.height }
func (g *grid) BlocksX() int   { return g.blocksX }
func (g *grid) BlocksY() int   { return g.blocksY }

// Initialized returns whether the grid has a format and dimensions.
func (g *grid) Initialized() bool { return g.format.Valid() }

// TotalBlocks returns BlocksX times BlocksY.
func (g *grid) TotalBlocks() int { return g.blocksX * g.blocksY }

// SizeInBytes returns the length of the block array.
func (g *grid) SizeInBytes() int { return len(g.data) }

// Bytes returns the block array, row-major. Modifying it modifies the image.
func (g *grid) Bytes() []byte { return g.data }

// ElementType returns the type of each block's i'th element.
func (g *grid) ElementType(i int) (ElementType, error) {
	if !g.Initialized() {
		return 0, ErrNotInitialized
	} else if (i < 0) || (i >= g.format.ElementsPerBlock()) {
		return 0, fmt.Errorf("%w: element %d", ErrBadArgument, i)
	}
	return formatInfos[g.format].elems[i], nil
}

// ComponentIndex returns the pixel component (0=R, 1=G, 2=B, 3=A) held by
// each block's i'th element, or -1 when the element holds the RGB color.
func (g *grid) ComponentIndex(i int) (int, error) {
	if !g.Initialized() {
		return 0, ErrNotInitialized
	} else if (i < 0) || (i >= g.format.ElementsPerBlock()) {
		return 0, fmt.Errorf("%w: element %d", ErrBadArgument, i)
	}
	return int(formatInfos[g.format].components[i]), nil
}

// ChangeDXT1ToDXT1A relabels a DXT1 image as DXT1A. The blocks are
// unchanged. Only their decoding differs: 3-color blocks' fourth entry
// becomes transparent.
func (g *grid) ChangeDXT1ToDXT1A() error {
	if !g.Initialized() {
		return ErrNotInitialized
	} else if g.format != FormatDXT1 {
		return fmt.Errorf("%w: %v is not dxt1", ErrBadFormat, g.format)
	}
	g.format = FormatDXT1A
	return nil
}

// element returns the 8 bytes of block (bx, by)'s i'th element.
func (g *grid) element(bx int, by int, i int) []byte {
	offset := (((by * g.blocksX) + bx) * g.format.BytesPerBlock()) + (ElementBytes * i)
	return g.data[offset : offset+ElementBytes]
}

func (g *grid) checkBlock(bx int, by int) error {
	if !g.Initialized() {
		return ErrNotInitialized
	} else if (bx < 0) || (bx >= g.blocksX) || (by < 0) || (by >= g.blocksY) {
		return fmt.Errorf("%w: block (%d, %d)", ErrBadArgument, bx, by)
	}
	return nil
}

func (g *grid) checkPixel(x int, y int) error {
	if !g.Initialized() {
		return ErrNotInitialized
	} else if (x < 0) || (x >= g.width) || (y < 0) || (y >= g.height) {
		return fmt.Errorf("%w: pixel (%d, %d)", ErrBadArgument, x, y)
	}
	return nil
}
