// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"strings"

	"github.com/woozymasta/bcn"
)

// Format is a block compressed pixel format. The zero value is invalid.
type Format uint8

const (
	FormatInvalid = Format(0)

	// FormatDXT1 is BC1 without alpha.
	FormatDXT1 = Format(1)
	// FormatDXT1A is BC1 with 1-bit alpha.
	FormatDXT1A = Format(2)
	// FormatDXT3 is BC2: explicit 4-bit alpha then a DXT1 color block.
	FormatDXT3 = Format(3)
	// FormatDXT5 is BC3: interpolated alpha then a DXT1 color block.
	FormatDXT5 = Format(4)
	// FormatDXT5A is BC4, holding the alpha channel.
	FormatDXT5A = Format(5)
	// FormatDXNXY is BC5 with X (red) first and Y (green) second.
	FormatDXNXY = Format(6)
	// FormatDXNYX is BC5 with Y (green) first and X (red) second.
	FormatDXNYX = Format(7)
	// FormatETC1 is ETC1 RGB.
	FormatETC1 = Format(8)

	numFormats = 9
)

// ElementType is the kind of one 8 byte element of a block.
type ElementType uint8

const (
	ElementDXT1  = ElementType(0)
	ElementDXT3  = ElementType(1)
	ElementDXT5A = ElementType(2)
	ElementETC1  = ElementType(3)
)

var elementNames = [4]string{"dxt1", "dxt3", "dxt5a", "etc1"}

func (e ElementType) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return "invalid"
}

// ElementBytes is the size of every element.
const ElementBytes = 8

// componentAll means an element covers R, G and B (and, for DXT1A, alpha).
const componentAll = -1

type formatInfo struct {
	name       string
	numElems   int
	elems      [2]ElementType
	components [2]int8
	hasAlpha   bool
}

var formatInfos = [numFormats]formatInfo{
	FormatDXT1:  {"dxt1", 1, [2]ElementType{ElementDXT1}, [2]int8{componentAll}, false},
	FormatDXT1A: {"dxt1a", 1, [2]ElementType{ElementDXT1}, [2]int8{componentAll}, true},
	FormatDXT3:  {"dxt3", 2, [2]ElementType{ElementDXT3, ElementDXT1}, [2]int8{3, componentAll}, true},
	FormatDXT5:  {"dxt5", 2, [2]ElementType{ElementDXT5A, ElementDXT1}, [2]int8{3, componentAll}, true},
	FormatDXT5A: {"dxt5a", 1, [2]ElementType{ElementDXT5A}, [2]int8{3}, true},
	FormatDXNXY: {"dxnxy", 2, [2]ElementType{ElementDXT5A, ElementDXT5A}, [2]int8{0, 1}, false},
	FormatDXNYX: {"dxnyx", 2, [2]ElementType{ElementDXT5A, ElementDXT5A}, [2]int8{1, 0}, false},
	FormatETC1:  {"etc1", 1, [2]ElementType{ElementETC1}, [2]int8{componentAll}, false},
}

// Valid returns whether f is one of the defined formats.
func (f Format) Valid() bool {
	return (FormatInvalid < f) && (f < numFormats)
}

func (f Format) String() string {
	if f.Valid() {
		return formatInfos[f].name
	}
	return "invalid"
}

// ElementsPerBlock returns 1 or 2, or 0 for an invalid Format.
func (f Format) ElementsPerBlock() int {
	if f.Valid() {
		return formatInfos[f].numElems
	}
	return 0
}

// BytesPerBlock returns 8 or 16, or 0 for an invalid Format.
func (f Format) BytesPerBlock() int {
	return ElementBytes * f.ElementsPerBlock()
}

// HasAlpha returns whether the Format stores an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Valid() && formatInfos[f].hasAlpha
}

// ParseFormat parses a case-insensitive Format name, as returned by String.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f := FormatDXT1; f < numFormats; f++ {
		if formatInfos[f].name == s {
			return f, nil
		}
	}
	return FormatInvalid, ErrBadFormat
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, ErrBadFormat
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// bcnFormat returns the equivalent third party backend format, if any.
func (f Format) bcnFormat() (bcn.Format, bool) {
	switch f {
	case FormatDXT1, FormatDXT1A:
		return bcn.FormatDXT1, true
	case FormatDXT3:
		return bcn.FormatDXT3, true
	case FormatDXT5:
		return bcn.FormatDXT5, true
	case FormatDXT5A:
		return bcn.FormatBC4, true
	case FormatDXNXY, FormatDXNYX:
		return bcn.FormatBC5, true
	}
	return bcn.FormatUnknown, false
}

// Compressor selects how blocks are encoded.
type Compressor uint8

const (
	// CompressorDefault uses the searching optimizers.
	CompressorDefault = Compressor(0)
	// CompressorFast uses the closed form fast compressor.
	CompressorFast = Compressor(1)
	// CompressorBackend hands the whole image to a third party encoder,
	// falling back to CompressorDefault for formats it lacks.
	CompressorBackend = Compressor(2)

	numCompressors = 3
)

var compressorNames = [numCompressors]string{"default", "fast", "backend"}

func (c Compressor) String() string {
	if c < numCompressors {
		return compressorNames[c]
	}
	return "invalid"
}

// ParseCompressor parses a case-insensitive Compressor name.
func ParseCompressor(s string) (Compressor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range compressorNames {
		if name == s {
			return Compressor(i), nil
		}
	}
	return 0, ErrBadArgument
}

// MarshalText implements encoding.TextMarshaler.
func (c Compressor) MarshalText() ([]byte, error) {
	if c >= numCompressors {
		return nil, ErrBadArgument
	}
	return []byte(compressorNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compressor) UnmarshalText(b []byte) error {
	v, err := ParseCompressor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
