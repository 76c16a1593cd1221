// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdb-stats displays timing statistics of MDB captures: the distribution
// of gaps between consecutive frames and the distribution of block sizes.
//
// Inter-frame gaps help choosing the maximum inter-byte gap used to
// split a capture into blocks.
//
// Usage: mdb-stats [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/profile"
	"go-hep.org/x/hep/hbook"
)

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("mdb-stats: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("mdb-stats", flag.ExitOnError)

		cfg    = fset.String("cfg", "", "path to a YAML decoding profile")
		rate   = fset.Float64("rate", 0, "capture sample rate (Hz), overrides the profile")
		maxGap = fset.Float64("max-gap", 5000, "upper edge of the inter-frame gap histogram (µs)")
		nbins  = fset.Int("nbins", 50, "number of bins of the inter-frame gap histogram")
	)

	fset.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdb-stats [OPTIONS] FILE1 [FILE2 [FILE3 ...]]\n\nOptions:\n")
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input capture file")
	}

	p := profile.Default()
	if *cfg != "" {
		p, err = profile.Load(*cfg)
		if err != nil {
			log.Fatalf("could not load profile: %+v", err)
		}
	}
	if *rate > 0 {
		p.Capture.SampleRate = *rate
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, p, *nbins, *maxGap)
		if err != nil {
			log.Fatalf("could not process %q: %+v", fname, err)
		}
	}
}

type stats struct {
	gaps   *hbook.H1D // inter-frame gaps, in µs
	sizes  *hbook.H1D // number of frames per block
	frames int
	blocks int
}

func newStats(res decode.Result, period float64, nbins int, maxGap float64) stats {
	st := stats{
		gaps:   hbook.NewH1D(nbins, 0, maxGap),
		sizes:  hbook.NewH1D(40, 0.5, 40.5),
		frames: len(res.Scan.Frames),
		blocks: len(res.Blocks),
	}

	frames := res.Scan.Frames
	for i := 1; i < len(frames); i++ {
		gap := float64(frames[i].Start-frames[i-1].End()) * period * 1e6
		st.gaps.Fill(gap, 1)
	}
	for _, b := range res.Blocks {
		st.sizes.Fill(float64(len(b.Frames)), 1)
	}
	return st
}

func process(w io.Writer, fname string, p *profile.Profile, nbins int, maxGap float64) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	wf, err := p.Load(fname)
	if err != nil {
		return fmt.Errorf("could not load capture: %w", err)
	}

	res := decode.New(p.Options()...).Run(wf.Samples, wf.Period)
	st := newStats(res, wf.Period, nbins, maxGap)

	fmt.Fprintf(wbuf, "=== %s ===\n", fname)
	fmt.Fprintf(wbuf, "frames: %d, blocks: %d\n", st.frames, st.blocks)
	display(wbuf, "inter-frame gap [µs]", st.gaps)
	display(wbuf, "block size [frames]", st.sizes)

	return wbuf.Flush()
}

func display(w io.Writer, title string, h *hbook.H1D) {
	fmt.Fprintf(w, "--- %s ---\n", title)
	if h.Entries() == 0 {
		fmt.Fprintf(w, "entries: 0\n")
		return
	}
	fmt.Fprintf(w, "entries: %d, mean: %.2f, std-dev: %.2f\n", h.Entries(), h.XMean(), stddev(h))

	var maxw float64
	for _, bin := range h.Binning.Bins {
		maxw = math.Max(maxw, bin.SumW())
	}
	const width = 40
	for _, bin := range h.Binning.Bins {
		if bin.SumW() == 0 {
			continue
		}
		n := int(math.Ceil(bin.SumW() / maxw * width))
		fmt.Fprintf(w, "[%8.1f, %8.1f) %6d %s\n", bin.XMin(), bin.XMax(), int(bin.SumW()), strings.Repeat("#", n))
	}
}

func stddev(h *hbook.H1D) float64 {
	if h.Entries() < 2 {
		return 0
	}
	return h.XStdDev()
}
