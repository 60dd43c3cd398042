// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtimage

import (
	"log"

	"github.com/nigeltao/dxtc/internal/taskpool"
	"github.com/nigeltao/dxtc/lib/quality"
)

// PackParams are the options for compressing pixels into blocks.
//
// The zero value is usable: SuperFast quality, the default compressor, no
// alpha blocks, a zero alpha threshold (so that nothing is cut out) and no
// helper goroutines. DefaultPackParams gives more typical settings.
type PackParams struct {
	Quality    quality.Level `yaml:"quality"`
	Compressor Compressor    `yaml:"compressor"`

	// Perceptual weights the R, G and B errors 8:25:1.
	Perceptual bool `yaml:"perceptual"`

	// UseAlphaBlocks allows DXT1 and DXT1A 3-color blocks.
	UseAlphaBlocks bool `yaml:"use_alpha_blocks"`

	// AlphaThreshold is the DXT1A alpha below which a pixel is cut out.
	AlphaThreshold uint8 `yaml:"alpha_threshold"`

	// Grayscale encodes DXT1 color from each pixel's luma.
	Grayscale bool `yaml:"grayscale"`

	// EndpointCaching lets each worker reuse its recent DXT1 solutions.
	EndpointCaching bool `yaml:"endpoint_caching"`

	// UseTransparentIndicesForBlack lets DXT1 3-color blocks encode
	// near-black pixels with the transparent selector.
	UseTransparentIndicesForBlack bool `yaml:"use_transparent_indices_for_black"`

	// Helpers is the number of goroutines, besides the calling one, that
	// compress blocks.
	Helpers int `yaml:"helpers"`

	// Progress, if non-nil, is called on the calling goroutine with the
	// percentage of its share of blocks done, each time that changes.
	// Returning false cancels the compression.
	Progress func(percent int) bool `yaml:"-"`

	// Pool, if non-nil, runs the helpers' work. Otherwise a private pool is
	// started and stopped for each compression.
	Pool taskpool.Pool `yaml:"-"`

	// Logger, if non-nil, overrides the Image's Logger.
	Logger *log.Logger `yaml:"-"`
}

// DefaultPackParams returns normal quality, perceptual, alpha block enabled
// settings.
func DefaultPackParams() *PackParams {
	return &PackParams{
		Quality:         quality.Normal,
		Compressor:      CompressorDefault,
		Perceptual:      true,
		UseAlphaBlocks:  true,
		AlphaThreshold:  128,
		EndpointCaching: true,
	}
}
