// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// dxtpack encodes images to, and decodes images from, DXT and ETC1 block
// compressed textures.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nigeltao/dxtc/internal/lz4chunk"
	"github.com/nigeltao/dxtc/internal/nie"
	"github.com/nigeltao/dxtc/lib/dxtimage"
	"github.com/nigeltao/dxtc/lib/quality"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag = flag.Bool("encode", false, "whether to encode the input")
	outputFlag = flag.String("output", "", "output format")

	formatFlag     = flag.String("format", "dxt5", "block format")
	widthFlag      = flag.Int("width", 0, "image width in pixels, when decoding")
	heightFlag     = flag.Int("height", 0, "image height in pixels, when decoding")
	helpersFlag    = flag.Int("helpers", 0, "number of extra compression goroutines")
	perceptualFlag = flag.Bool("perceptual", true, "whether to weight color errors perceptually")
	paramsFlag     = flag.String("params", "", "YAML file of pack parameters")
	lz4Flag        = flag.Bool("lz4", false, "whether the block array is LZ4 compressed")
	dumpFlag       = flag.Int("dump", 0, "number of blocks to describe on stderr")
	verboseFlag    = flag.Bool("v", false, "whether to log progress and error metrics")

	qualityFlag    = quality.Normal
	compressorFlag = dxtimage.CompressorDefault
)

func init() {
	flag.Var(&qualityFlag, "quality", "superfast, fast, normal, better or uber")
	flag.TextVar(&compressorFlag, "compressor", dxtimage.CompressorDefault, "default, fast or backend")
}

const usageStr = `dxtpack encodes and decodes DXT and ETC1 block compressed textures.

Usage: choose one of

    dxtpack -encode [path]
    dxtpack -decode -width=W -height=H [path]

The path to the input file is optional. If omitted, stdin is read.

Both directions take these flags (before the path):

    -format=dxt1|dxt1a|dxt3|dxt5|dxt5a|dxnxy|dxnyx|etc1 (dxt5 is the default)
    -lz4 (the block array is a stream of LZ4 chunks)

When encoding you can also pass these flags (before the path):

    -quality=superfast|fast|normal|better|uber (normal is the default)
    -compressor=default|fast|backend
    -helpers=N
    -perceptual=false
    -params=preset.yaml
    -v (log progress and error metrics)

Pack parameters are read from the -params file first. Explicit flags
override them.

When decoding you can also pass these flags (before the path):

    -dump=N (describe the first N blocks on stderr)
    -output=nie-bn4
    -output=nie-bn8
    -output=png (this is the default)

The output is written to stdout.

Encode inputs BMP, GIF, JPEG, PNG, TIFF or WEBP and outputs a raw block
array: rows of blocks, top to bottom, each row left to right.
Decode inputs a raw block array and outputs NIE/PNG.
`

var ErrBadOutputFlag = errors.New("main: bad -output flag")

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	c, err := newConfig()
	if err != nil {
		return err
	}
	if *decodeFlag && !*encodeFlag {
		return decode(c, inFile, os.Stdout)
	}
	if !*decodeFlag && *encodeFlag {
		return encode(c, inFile, os.Stdout)
	}
	return errors.New("must specify exactly one of -decode, -encode or -help")
}

// config is the parsed command line.
type config struct {
	format  dxtimage.Format
	width   int
	height  int
	output  string
	lz4     bool
	dump    int
	verbose bool
	params  *dxtimage.PackParams
	logger  *log.Logger
}

func newConfig() (*config, error) {
	f, err := dxtimage.ParseFormat(*formatFlag)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing -format=%q", *formatFlag)
	}

	p := dxtimage.DefaultPackParams()
	if *paramsFlag != "" {
		file, err := os.Open(*paramsFlag)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		if err := loadParams(file, p); err != nil {
			return nil, errors.Wrapf(err, "reading %s", *paramsFlag)
		}
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "quality":
			p.Quality = qualityFlag
		case "compressor":
			p.Compressor = compressorFlag
		case "helpers":
			p.Helpers = *helpersFlag
		case "perceptual":
			p.Perceptual = *perceptualFlag
		}
	})

	return &config{
		format:  f,
		width:   *widthFlag,
		height:  *heightFlag,
		output:  *outputFlag,
		lz4:     *lz4Flag,
		dump:    *dumpFlag,
		verbose: *verboseFlag,
		params:  p,
		logger:  log.New(os.Stderr, "dxtpack: ", 0),
	}, nil
}

// loadParams overwrites the fields of p that r's YAML document sets. An
// empty document leaves p unchanged.
func loadParams(r io.Reader, p *dxtimage.PackParams) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); (err != nil) && (err != io.EOF) {
		return err
	}
	if p.Helpers < 0 {
		return errors.Errorf("negative helpers: %d", p.Helpers)
	}
	return nil
}

func encode(c *config, in io.Reader, out io.Writer) error {
	if c.output != "" {
		return ErrBadOutputFlag
	}

	src, _, err := image.Decode(in)
	if err != nil {
		return errors.Wrap(err, "decoding input")
	}

	p := *c.params
	p.Logger = c.logger
	if c.verbose {
		p.Progress = func(percent int) bool {
			if (percent % 10) == 0 {
				c.logger.Printf("%d%%", percent)
			}
			return true
		}
	}

	m := &dxtimage.Image{}
	m.Logger = c.logger
	if err := m.InitFromImage(c.format, src, &p); err != nil {
		return errors.Wrapf(err, "compressing to %v", c.format)
	}
	if c.verbose {
		if mse, psnr, err := m.ErrorMetrics(src); err == nil {
			c.logger.Printf("%v %d×%d: mse %.3f, psnr %.2f dB", c.format, m.Width(), m.Height(), mse, psnr)
		}
	}

	if c.lz4 {
		return lz4chunk.Encode(out, m.Bytes())
	}
	_, err = out.Write(m.Bytes())
	return err
}

func decode(c *config, in io.Reader, out io.Writer) error {
	switch c.output {
	case "", "png", "nie-bn4", "nie-bn8":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	m := &dxtimage.Image{}
	m.Logger = c.logger
	if err := m.Init(c.format, c.width, c.height); err != nil {
		return errors.Wrapf(err, "-format=%v -width=%d -height=%d", c.format, c.width, c.height)
	}
	if c.lz4 {
		if err := lz4chunk.Decode(in, m.Bytes()); err != nil {
			return errors.Wrap(err, "reading blocks")
		}
	} else if _, err := io.ReadFull(in, m.Bytes()); err != nil {
		return errors.Wrapf(err, "reading %d bytes of blocks", m.SizeInBytes())
	}

	if c.dump > 0 {
		dumpBlocks(os.Stderr, m, c.dump)
	}

	dst, _, err := m.Unpack()
	if err != nil {
		return err
	}
	switch c.output {
	case "nie-bn4", "nie-bn8":
		d := nie.DepthBN8
		if c.output == "nie-bn4" {
			d = nie.DepthBN4
		}
		enc, err := nie.Encode(dst, d)
		if err != nil {
			return err
		}
		_, err = out.Write(enc)
		return err
	}
	return png.Encode(out, dst)
}

// hexColor is a packed 0xAARRGGBB color.
type hexColor uint32

func (h hexColor) String() string { return fmt.Sprintf("#%08x", uint32(h)) }

type elementInfo struct {
	Type      string
	Component int
	Low       uint32
	High      uint32
	Colors    []hexColor
}

type blockInfo struct {
	X, Y     int
	Elements []elementInfo
}

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
}

func describeBlocks(m *dxtimage.Image, n int) []blockInfo {
	n = min(n, m.TotalBlocks())
	ret := make([]blockInfo, 0, n)
	for i := range n {
		bx, by := i%m.BlocksX(), i/m.BlocksX()
		info := blockInfo{X: bx, Y: by}
		for e := range m.Format().ElementsPerBlock() {
			et, _ := m.ElementType(e)
			comp, _ := m.ComponentIndex(e)
			lo, hi, _ := m.BlockEndpoints(bx, by, e)
			colors, _ := m.BlockColors(bx, by, e)
			hex := make([]hexColor, len(colors))
			for j, c := range colors {
				hex[j] = hexColor(c)
			}
			info.Elements = append(info.Elements, elementInfo{
				Type:      et.String(),
				Component: comp,
				Low:       lo,
				High:      hi,
				Colors:    hex,
			})
		}
		ret = append(ret, info)
	}
	return ret
}

func dumpBlocks(w io.Writer, m *dxtimage.Image, n int) {
	spewConfig.Fdump(w, describeBlocks(m, n))
}
