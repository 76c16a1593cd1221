// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdb-dump decodes and displays MDB captures.
//
// Usage: mdb-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> mdb-dump -rate=1e6 ./testdata/session.bin
//  === ./testdata/session.bin ===
//  samples:    48192 (48.192ms @ 1e+06 Hz)
//  frames:        21
//  blocks:         8
//       208µs [208, 1352) master     0x0b Changer POLL
//     1.352ms [1352, 2496) success    0x0b CHK OK
//     4.496ms [4496, 5640) success         ACK
//  [...]
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/profile"
	"github.com/go-lpc/mdb/internal/report"
	"github.com/go-lpc/mdb/wave"
	"golang.org/x/sync/errgroup"
)

const usage = `mdb-dump decodes and displays MDB captures.

Usage: mdb-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> mdb-dump -rate=1e6 ./testdata/session.bin
 === ./testdata/session.bin ===
 samples:    48192 (48.192ms @ 1e+06 Hz)
 frames:        21
 blocks:         8
      208µs [208, 1352) master     0x0b Changer POLL
    1.352ms [1352, 2496) success    0x0b CHK OK
    4.496ms [4496, 5640) success         ACK
 [...]

Options:
`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("mdb-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("mdb-dump", flag.ExitOnError)

		cfg    = fset.String("cfg", "", "path to a YAML decoding profile")
		format = fset.String("fmt", "raw", "capture format (raw, csv)")
		rate   = fset.Float64("rate", profile.DefaultSampleRate, "capture sample rate (Hz)")
		ch     = fset.Int("ch", 0, "channel holding the MDB line (raw: bit, csv: level column)")
		sp     = fset.Float64("sample-point", 0.5, "sampling point within a bit, in [0,1)")
		gap    = fset.Duration("gap", time.Millisecond, "maximum inter-byte gap within a block")
		doJSON = fset.Bool("json", false, "display transcripts as JSON")
		pdf    = fset.String("pdf", "", "path to an output PDF report")
		njobs  = fset.Int("j", runtime.NumCPU(), "number of captures decoded concurrently")
	)

	fset.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
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

	p, err := loadProfile(*cfg, fset, *format, *rate, *ch, *sp, *gap)
	if err != nil {
		log.Fatalf("could not setup decoding profile: %+v", err)
	}

	trs, err := decodeAll(p, fset.Args(), *njobs)
	if err != nil {
		log.Fatalf("could not decode captures: %+v", err)
	}

	for _, tr := range trs {
		err = process(w, tr, *doJSON)
		if err != nil {
			log.Fatalf("could not dump capture %q: %+v", tr.Source, err)
		}
	}

	if *pdf == "" {
		return
	}
	for i, tr := range trs {
		out := pdfName(*pdf, tr.Source, len(trs))
		err = report.SavePDF(trs[i], out)
		if err != nil {
			log.Fatalf("could not create PDF report for %q: %+v", tr.Source, err)
		}
	}
}

// loadProfile loads the provided profile, if any, and overrides its
// values with the explicitly set command-line flags.
func loadProfile(fname string, fset *flag.FlagSet, format string, rate float64, ch int, sp float64, gap time.Duration) (*profile.Profile, error) {
	var (
		p   = new(profile.Profile)
		err error
	)
	if fname != "" {
		p, err = profile.Load(fname)
		if err != nil {
			return nil, err
		}
	}

	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["fmt"] || p.Capture.Format == "" {
		p.Capture.Format = format
		if !set["ch"] {
			p.Capture.Channel = nil
		}
	}
	if set["rate"] || p.Capture.SampleRate == 0 {
		p.Capture.SampleRate = rate
	}
	if set["ch"] {
		p.Capture.Channel = &ch
	}
	if set["sample-point"] {
		p.Decoder.SamplePoint = &sp
	}
	if set["gap"] {
		ms := float64(gap) / float64(time.Millisecond)
		p.Decoder.MaxInterByteMs = &ms
	}

	err = profile.Validate(p)
	if err != nil {
		return nil, err
	}
	profile.Normalize(p)
	return p, nil
}

// decodeAll decodes the captures concurrently and returns their
// transcripts in input order.
func decodeAll(p *profile.Profile, fnames []string, njobs int) ([]report.Transcript, error) {
	var (
		grp errgroup.Group
		trs = make([]report.Transcript, len(fnames))
	)
	if njobs > 0 {
		grp.SetLimit(njobs)
	}

	for i := range fnames {
		i := i
		grp.Go(func() error {
			tr, _, err := report.Process(fnames[i], p)
			if err != nil {
				return err
			}
			trs[i] = tr
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}
	return trs, nil
}

func process(w io.Writer, tr report.Transcript, doJSON bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	if doJSON {
		enc := json.NewEncoder(wbuf)
		enc.SetIndent("", "  ")
		err := enc.Encode(tr)
		if err != nil {
			return fmt.Errorf("could not encode transcript to JSON: %w", err)
		}
		return wbuf.Flush()
	}

	period := wave.Period(tr.Rate)
	fmt.Fprintf(wbuf, "=== %s ===\n", tr.Source)
	fmt.Fprintf(wbuf, "samples: % 8d (%v @ %g Hz)\n", tr.Samples, decode.Time(tr.Samples, period), tr.Rate)
	fmt.Fprintf(wbuf, "frames:  % 8d\n", tr.Frames)
	fmt.Fprintf(wbuf, "blocks:  % 8d\n", tr.Blocks)
	for _, ann := range tr.Annotations {
		fmt.Fprintf(wbuf, "%10v %v\n", decode.Time(ann.Start, period), ann)
	}

	sum := report.Summarize(tr.Annotations)
	fmt.Fprintf(wbuf, "summary: chk-ok=%d chk-err=%d ack=%d nak=%d errors=%d warnings=%d\n",
		sum.ChecksumOK, sum.ChecksumErr, sum.ACK, sum.NAK, sum.Errors(), sum.Warnings(),
	)

	return wbuf.Flush()
}

func pdfName(out, src string, n int) string {
	if n <= 1 {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return strings.TrimSuffix(out, ".pdf") + "-" + base + ".pdf"
}
