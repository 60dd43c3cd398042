// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package pixel

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrBadComponentCount = errors.New("pixel: bad component count")
	ErrBadSpec           = errors.New("pixel: bad packer spec")
)

const (
	channelPad  = -1
	channelLuma = 4
)

type field struct {
	channel int8
	size    uint32
	offset  uint32
	max     uint32
}

// Packer converts between a packed pixel layout and RGBA quads. Each
// component occupies an arbitrary run of 1 to 32 bits, laid out LSB first
// starting at bit 0 of the pixel's first byte.
//
// A Packer is immutable after construction and safe for concurrent use.
type Packer struct {
	fields   []field
	bits     int
	stride   int
	hasAlpha bool
}

// NewPacker returns a Packer for numComps components of bitsPerComp bits
// each. One component is luma, two are luma and alpha, three are RGB and
// four are RGBA. When reversed, the component order is reversed (e.g. BGRA).
// A negative stride means the pixels are tightly packed to whole bytes.
func NewPacker(numComps int, bitsPerComp int, stride int, reversed bool) (*Packer, error) {
	if (numComps < 1) || (4 < numComps) {
		return nil, ErrBadComponentCount
	} else if (bitsPerComp < 1) || (32 < bitsPerComp) {
		return nil, ErrBadSpec
	}
	channels := [4][]int8{
		{channelLuma},
		{channelLuma, 3},
		{0, 1, 2},
		{0, 1, 2, 3},
	}[numComps-1]
	fields := make([]field, len(channels))
	for i, c := range channels {
		fields[i] = field{channel: c, size: uint32(bitsPerComp)}
	}
	return newPacker(fields, stride, reversed)
}

// ParsePacker returns a Packer described by spec, a sequence of channel
// letters each followed by a bit width. The letters are R, G, B and A; Y
// is luma feeding all of R, G and B, and X is padding. Examples are
// "R8G8B8A8", "B5G6R5", "Y8" and "X8R8G8B8". Letters are case-insensitive.
func ParsePacker(spec string, stride int, reversed bool) (*Packer, error) {
	spec = strings.ToUpper(strings.TrimSpace(spec))
	if spec == "" {
		return nil, ErrBadSpec
	}

	fields := []field(nil)
	seen := [5]bool{}
	numReal := 0
	for len(spec) > 0 {
		c := int8(0)
		switch spec[0] {
		case 'R':
			c = 0
		case 'G':
			c = 1
		case 'B':
			c = 2
		case 'A':
			c = 3
		case 'Y':
			c = channelLuma
		case 'X':
			c = channelPad
		default:
			return nil, ErrBadSpec
		}
		spec = spec[1:]

		n := 0
		for (n < len(spec)) && ('0' <= spec[n]) && (spec[n] <= '9') {
			n++
		}
		size, err := strconv.Atoi(spec[:n])
		if (err != nil) || (size < 1) || (32 < size) {
			return nil, ErrBadSpec
		}
		spec = spec[n:]

		if c != channelPad {
			if seen[c] {
				return nil, ErrBadSpec
			}
			seen[c] = true
			numReal++
		}
		fields = append(fields, field{channel: c, size: uint32(size)})
	}

	if (numReal == 0) || (4 < numReal) {
		return nil, ErrBadComponentCount
	} else if seen[channelLuma] && (seen[0] || seen[1] || seen[2]) {
		return nil, ErrBadSpec
	}
	return newPacker(fields, stride, reversed)
}

func newPacker(fields []field, stride int, reversed bool) (*Packer, error) {
	if reversed {
		for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
			fields[i], fields[j] = fields[j], fields[i]
		}
	}

	p := &Packer{fields: fields}
	offset := uint32(0)
	for i := range p.fields {
		f := &p.fields[i]
		f.offset = offset
		f.max = uint32((uint64(1) << f.size) - 1)
		offset += f.size
		if f.channel == 3 {
			p.hasAlpha = true
		}
	}
	p.bits = int(offset)

	minStride := (p.bits + 7) / 8
	if stride < 0 {
		stride = minStride
	} else if stride < minStride {
		return nil, ErrBadSpec
	}
	p.stride = stride
	return p, nil
}

// Stride returns the number of bytes between consecutive pixels.
func (p *Packer) Stride() int { return p.stride }

// Components returns the number of non-padding components.
func (p *Packer) Components() int {
	n := 0
	for _, f := range p.fields {
		if f.channel != channelPad {
			n++
		}
	}
	return n
}

// Unpack decodes one pixel from the start of src and returns it together
// with the remainder of src after one stride. When rescale is set, each
// component is mapped from [0, max] to [0, 255] with rounding; otherwise
// values saturate at 255. A missing alpha component unpacks as 255.
//
// If src is shorter than one stride, Unpack returns a zero quad and nil.
func (p *Packer) Unpack(src []byte, rescale bool) (RGBA, []byte) {
	if len(src) < p.stride {
		return RGBA{}, nil
	}
	c := RGBA{A: 0xFF}
	for _, f := range p.fields {
		if f.channel == channelPad {
			continue
		}
		v := uint64(readBits(src, f.offset, f.size))
		if rescale && (f.max != 0xFF) {
			v = ((v * 0xFF) + uint64(f.max/2)) / uint64(f.max)
		}
		u := uint8(min(v, 0xFF))
		if f.channel == channelLuma {
			c.R, c.G, c.B = u, u, u
		} else {
			c.SetComponent(int(f.channel), u)
		}
	}
	return c, src[p.stride:]
}

// Pack encodes c at the start of dst and returns the remainder of dst after
// one stride. Padding bits are cleared. When rescale is set, each component
// is mapped from [0, 255] to [0, max] with rounding; otherwise values
// saturate at max. A luma component receives c's CCIR-601 luma.
//
// If dst is shorter than one stride, Pack writes nothing and returns nil.
func (p *Packer) Pack(c RGBA, dst []byte, rescale bool) []byte {
	if len(dst) < p.stride {
		return nil
	}
	for _, f := range p.fields {
		v := uint64(0)
		switch f.channel {
		case channelPad:
		case channelLuma:
			v = uint64(c.Luma())
		default:
			v = uint64(c.Component(int(f.channel)))
		}
		if f.channel != channelPad {
			if rescale && (f.max != 0xFF) {
				v = ((v * uint64(f.max)) + 127) / 0xFF
			}
			v = min(v, uint64(f.max))
		}
		writeBits(dst, f.offset, f.size, uint32(v))
	}
	return dst[p.stride:]
}

func readBits(src []byte, offset uint32, size uint32) (v uint32) {
	for i := range size {
		b := offset + i
		v |= uint32((src[b>>3]>>(b&7))&1) << i
	}
	return v
}

func writeBits(dst []byte, offset uint32, size uint32, v uint32) {
	for i := range size {
		b := offset + i
		mask := uint8(1) << (b & 7)
		if (v>>i)&1 != 0 {
			dst[b>>3] |= mask
		} else {
			dst[b>>3] &^= mask
		}
	}
}
