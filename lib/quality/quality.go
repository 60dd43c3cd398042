// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package quality defines the encoder quality tiers shared by every block
// optimizer. Higher tiers search more candidate encodings and take longer.
package quality

import (
	"errors"
	"strconv"
	"strings"
)

var ErrUnknownLevel = errors.New("quality: unknown level")

// Level is an encoder quality tier. The zero value is SuperFast.
type Level uint8

const (
	SuperFast Level = iota
	Fast
	Normal
	Better
	Uber

	NumLevels = int(Uber) + 1
)

var names = [NumLevels]string{
	"superfast",
	"fast",
	"normal",
	"better",
	"uber",
}

func (l Level) String() string {
	if int(l) < NumLevels {
		return names[l]
	}
	return "quality.Level(" + strconv.Itoa(int(l)) + ")"
}

// Parse parses a case-insensitive level name.
func Parse(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if s == name {
			return Level(i), nil
		}
	}
	return 0, ErrUnknownLevel
}

// Set implements flag.Value.
func (l *Level) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if int(l) >= NumLevels {
		return nil, ErrUnknownLevel
	}
	return []byte(names[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	return l.Set(string(b))
}
