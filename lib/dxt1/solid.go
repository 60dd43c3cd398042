// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt1

// solidEntry is the best endpoint pair, for one 8-bit channel value, whose
// selector 2 interpolant reproduces that value.
type solidEntry struct {
	e0, e1 uint8
	err    uint8
}

// solidTables is indexed by [threeColor][channelIs6Bit][value]. The 4-color
// tables target the 2/3 interpolant and the 3-color tables the midpoint,
// both with the decoder's truncating arithmetic.
var solidTables = [2][2][256]solidEntry{
	{buildSolidTable(5, false), buildSolidTable(6, false)},
	{buildSolidTable(5, true), buildSolidTable(6, true)},
}

func buildSolidTable(bits uint, threeColor bool) (ret [256]solidEntry) {
	n := int32(1) << bits
	expand := func(e int32) int32 {
		if bits == 5 {
			return (e << 3) | (e >> 2)
		}
		return (e << 2) | (e >> 4)
	}

	for v := range int32(256) {
		best, bestErr, bestSpread := solidEntry{}, int32(256), int32(256)
		for e0 := range n {
			for e1 := range n {
				x0, x1 := expand(e0), expand(e1)
				interp := ((2 * x0) + x1) / 3
				if threeColor {
					interp = (x0 + x1) / 2
				}
				err := interp - v
				if err < 0 {
					err = -err
				}
				spread := e0 - e1
				if spread < 0 {
					spread = -spread
				}
				if (err < bestErr) || ((err == bestErr) && (spread < bestSpread)) {
					best = solidEntry{uint8(e0), uint8(e1), uint8(err)}
					bestErr, bestSpread = err, spread
				}
			}
		}
		ret[v] = best
	}
	return ret
}
