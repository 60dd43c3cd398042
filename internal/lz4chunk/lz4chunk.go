// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package lz4chunk compresses a byte slice of known length, such as a block
// array, as a stream of independent LZ4 blocks.
//
// Each chunk holds up to ChunkSize bytes of the input. It starts with a
// 24-bit little-endian payload length and a flags byte: 0x80 marks the last
// chunk and 0x40 a chunk stored uncompressed.
package lz4chunk

import (
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// ChunkSize is the uncompressed size of every chunk but the last.
const ChunkSize = 64 * 1024

const (
	flagLast   = 0x80
	flagStored = 0x40
)

var (
	ErrBadArgument = errors.New("lz4chunk: bad argument")
	ErrCorrupt     = errors.New("lz4chunk: corrupt chunk stream")
	ErrCompress    = errors.New("lz4chunk: LZ4 compression failed")
	ErrDecode      = errors.New("lz4chunk: LZ4 decode failed")
)

// Encode writes data to w as a chunk stream. data must not be empty.
func Encode(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return ErrBadArgument
	}
	compressBuf := make([]byte, lz4.CompressBlockBound(ChunkSize))
	for i := 0; i < len(data); i += ChunkSize {
		src := data[i:min(i+ChunkSize, len(data))]
		flags := byte(0)
		if (i + len(src)) == len(data) {
			flags |= flagLast
		}

		cn, err := lz4.CompressBlockHC(src, compressBuf, 0, nil, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCompress, err)
		}
		payload := compressBuf[:cn]
		if (cn == 0) || (cn >= len(src)) {
			flags |= flagStored
			payload = src
		}

		hdr := [4]byte{
			byte(len(payload)),
			byte(len(payload) >> 8),
			byte(len(payload) >> 16),
			flags,
		}
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		} else if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a chunk stream from r that must decompress to exactly
// len(dst) bytes.
func Decode(r io.Reader, dst []byte) error {
	if len(dst) == 0 {
		return ErrBadArgument
	}
	compressed := make([]byte, lz4.CompressBlockBound(ChunkSize))
	outIdx := 0
	for {
		hdr := [4]byte{}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return unexpectedEOF(err)
		}
		n := int(hdr[0]) | (int(hdr[1]) << 8) | (int(hdr[2]) << 16)
		flags := hdr[3]
		if (flags &^ (flagLast | flagStored)) != 0 {
			return fmt.Errorf("%w: flags 0x%02x", ErrCorrupt, flags)
		} else if (n <= 0) || (n > len(compressed)) {
			return fmt.Errorf("%w: chunk size %d", ErrCorrupt, n)
		}

		want := min(ChunkSize, len(dst)-outIdx)
		if want <= 0 {
			return fmt.Errorf("%w: overrun", ErrCorrupt)
		}
		if _, err := io.ReadFull(r, compressed[:n]); err != nil {
			return unexpectedEOF(err)
		}

		if (flags & flagStored) != 0 {
			if n != want {
				return fmt.Errorf("%w: stored %d bytes, want %d", ErrCorrupt, n, want)
			}
			copy(dst[outIdx:], compressed[:n])
		} else if got, err := lz4.UncompressBlock(compressed[:n], dst[outIdx:outIdx+want]); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		} else if got != want {
			return fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorrupt, got, want)
		}
		outIdx += want

		if (flags & flagLast) != 0 {
			if outIdx != len(dst) {
				return fmt.Errorf("%w: %d of %d bytes", ErrCorrupt, outIdx, len(dst))
			}
			return nil
		}
	}
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
