// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdb-shell is an interactive explorer for MDB captures.
//
// Usage: mdb-shell [OPTIONS] [FILE]
//
// Example:
//
//  $> mdb-shell -rate=1e6 ./session.bin
//  mdb> info
//  mdb> block 2
//  mdb> errors
//  mdb> quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/profile"
	"github.com/go-lpc/mdb/internal/report"
	"github.com/peterh/liner"
)

func main() {
	log.SetPrefix("mdb-shell: ")
	log.SetFlags(0)

	var (
		cfg  = flag.String("cfg", "", "path to a YAML decoding profile")
		rate = flag.Float64("rate", 0, "capture sample rate (Hz), overrides the profile")
	)

	flag.Parse()

	p := profile.Default()
	if *cfg != "" {
		var err error
		p, err = profile.Load(*cfg)
		if err != nil {
			log.Fatalf("could not load profile: %+v", err)
		}
	}
	if *rate > 0 {
		p.Capture.SampleRate = *rate
	}

	sh := newShell(p)
	if flag.NArg() > 0 {
		_, err := sh.exec(os.Stdout, "open "+flag.Arg(0))
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}

	err := run(sh)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(sh *shell) error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(complete)

	for {
		line, err := term.Prompt("mdb> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("could not read command: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := sh.exec(os.Stdout, line)
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

var commands = []string{
	"block", "blocks", "errors", "exit", "frames", "help", "info", "open", "quit",
}

func complete(line string) []string {
	var out []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}

type shell struct {
	p *profile.Profile

	loaded bool
	tr     report.Transcript
	res    decode.Result
}

func newShell(p *profile.Profile) *shell {
	if p == nil {
		p = profile.Default()
	}
	return &shell{p: p}
}

// exec runs one command line and reports whether the session should end.
func (sh *shell) exec(w io.Writer, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch cmd := args[0]; cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		sh.help(w)
		return false, nil
	case "open":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: open FILE")
		}
		return false, sh.open(w, args[1])
	}

	if !sh.loaded {
		return false, fmt.Errorf("no capture loaded (use: open FILE)")
	}

	switch cmd := args[0]; cmd {
	case "info":
		sh.info(w)
	case "frames":
		for _, f := range sh.res.Scan.Frames {
			fmt.Fprintf(w, "%v\n", f)
		}
	case "blocks":
		for i, b := range sh.res.Blocks {
			sh.block(w, i, b, false)
		}
	case "block":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: block N")
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("invalid block index %q: %w", args[1], err)
		}
		if i < 0 || i >= len(sh.res.Blocks) {
			return false, fmt.Errorf("block index %d out of range [0, %d)", i, len(sh.res.Blocks))
		}
		sh.block(w, i, sh.res.Blocks[i], true)
	case "errors":
		for _, ann := range sh.tr.Annotations {
			if ann.Category != decode.Error && ann.Category != decode.Warning {
				continue
			}
			fmt.Fprintf(w, "%10v %v\n", decode.Time(ann.Start, sh.period()), ann)
		}
	default:
		return false, fmt.Errorf("unknown command %q (try: help)", cmd)
	}
	return false, nil
}

func (sh *shell) open(w io.Writer, fname string) error {
	tr, res, err := report.Process(fname, sh.p)
	if err != nil {
		return err
	}
	sh.tr = tr
	sh.res = res
	sh.loaded = true
	fmt.Fprintf(w, "opened %q: %d frames, %d blocks\n", fname, tr.Frames, tr.Blocks)
	return nil
}

func (sh *shell) period() float64 {
	if sh.tr.Rate <= 0 {
		return 0
	}
	return 1 / sh.tr.Rate
}

func (sh *shell) info(w io.Writer) {
	sum := report.Summarize(sh.tr.Annotations)
	fmt.Fprintf(w, "source:  %s\n", sh.tr.Source)
	fmt.Fprintf(w, "sha256:  %s\n", sh.tr.Digest)
	fmt.Fprintf(w, "rate:    %g Hz\n", sh.tr.Rate)
	fmt.Fprintf(w, "samples: %d\n", sh.tr.Samples)
	fmt.Fprintf(w, "frames:  %d\n", sh.tr.Frames)
	fmt.Fprintf(w, "blocks:  %d\n", sh.tr.Blocks)

	cats := make([]decode.Category, 0, len(sum.Categories))
	for cat := range sum.Categories {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		fmt.Fprintf(w, "  %-10s %d\n", cat, sum.Categories[cat])
	}
}

func (sh *shell) block(w io.Writer, i int, b decode.Block, detail bool) {
	incomplete := ""
	if b.Incomplete {
		incomplete = " (incomplete)"
	}
	fmt.Fprintf(w, "block %d: [%d, %d) %v frames=%d%s\n",
		i, b.Start(), b.End(), b.Direction(), len(b.Frames), incomplete,
	)
	if !detail {
		return
	}
	for _, ann := range sh.tr.Annotations {
		if ann.Start < b.Start() || ann.Start >= b.End() {
			continue
		}
		fmt.Fprintf(w, "  %v\n", ann)
	}
}

func (sh *shell) help(w io.Writer) {
	fmt.Fprint(w, `commands:
  open FILE   decode a capture
  info        show capture summary
  frames      list decoded frames
  blocks      list assembled blocks
  block N     show annotations of block N
  errors      list error and warning annotations
  help        show this help
  quit        leave the shell
`)
}
