// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxtfast

// CompressAlphaBlock compresses sixteen single channel values as a DXT5
// alpha block, using the values' extremes as the 8-level scheme's endpoints.
// Selectors are picked in closed form, without a per-value palette search.
func CompressAlphaBlock(values *[16]uint8) (low uint8, high uint8, sel [16]uint8) {
	mn, mx := values[0], values[0]
	for _, v := range values[1:] {
		mn, mx = min(mn, v), max(mx, v)
	}

	dist := int32(mx) - int32(mn)
	dist2, dist4 := 2*dist, 4*dist
	bias := int32(0)
	if dist < 8 {
		bias = dist - 1
	} else {
		bias = (dist / 2) + 2
	}
	bias -= int32(mn) * 7

	for i, v := range values {
		// a is 7 times the value's position between mn and mx, biased so
		// that the thresholds below fall half way between palette entries.
		a := (int32(v) * 7) + bias
		ind := int32(0)
		if a >= dist4 {
			ind, a = 4, a-dist4
		}
		if a >= dist2 {
			ind, a = ind+2, a-dist2
		}
		if a >= dist {
			ind++
		}
		// Map the 0 (mn) to 7 (mx) scale to selector order, where 0 and 1
		// are the endpoints.
		ind = -ind & 7
		if ind < 2 {
			ind ^= 1
		}
		sel[i] = uint8(ind)
	}
	return mx, mn, sel
}
