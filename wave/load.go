// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wave

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-lpc/mdb/internal/mmap"
	"go-hep.org/x/hep/csvutil"
	"golang.org/x/xerrors"
)

// Format is the on-disk layout of a capture file.
type Format string

const (
	FormatRaw Format = "raw" // one byte per sample, one channel per bit
	FormatCSV Format = "csv" // list of time,level transitions
)

// ParseFormat returns the format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatRaw, FormatCSV:
		return f, nil
	}
	return "", xerrors.Errorf("wave: unknown capture format %q", s)
}

// Load reads the channel ch of the named capture file.
// For raw captures ch is the bit of each sample byte holding the MDB line.
// For CSV captures ch is the index of the level column, column 0 holding
// the transition times.
func Load(fname string, format Format, period float64, ch int) (Waveform, error) {
	switch format {
	case FormatRaw:
		return ReadRaw(fname, period, ch)
	case FormatCSV:
		return ReadCSV(fname, period, ch)
	}
	return Waveform{}, xerrors.Errorf("wave: unknown capture format %q", format)
}

// ReadRaw reads a raw capture file, made of one byte per sample, and
// extracts the provided bit as the MDB line.
func ReadRaw(fname string, period float64, bit int) (Waveform, error) {
	if bit < 0 || bit > 7 {
		return Waveform{}, xerrors.Errorf("wave: invalid raw channel bit %d", bit)
	}
	if !(period > 0) {
		return Waveform{}, xerrors.Errorf("wave: invalid sample period %g", period)
	}

	h, err := mmap.Open(fname)
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not open raw capture: %w", err)
	}
	defer h.Close()

	var (
		mask    = byte(1) << bit
		samples = make([]bool, h.Len())
	)
	for i := range samples {
		samples[i] = h.At(i)&mask != 0
	}

	err = h.Close()
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not close raw capture: %w", err)
	}

	return Waveform{Samples: samples, Period: period}, nil
}

// WriteRaw writes the waveform as a raw capture, setting the provided bit
// of each sample byte when the line is high.
func WriteRaw(w io.Writer, wf Waveform, bit int) error {
	if bit < 0 || bit > 7 {
		return xerrors.Errorf("wave: invalid raw channel bit %d", bit)
	}

	var (
		bw   = bufio.NewWriter(w)
		mask = byte(1) << bit
	)
	for _, v := range wf.Samples {
		var b byte
		if v {
			b = mask
		}
		err := bw.WriteByte(b)
		if err != nil {
			return xerrors.Errorf("wave: could not write raw sample: %w", err)
		}
	}

	err := bw.Flush()
	if err != nil {
		return xerrors.Errorf("wave: could not flush raw capture: %w", err)
	}
	return nil
}

// WriteCSV writes the waveform as a list of time,level transitions.
// The first row holds the level of the line at time 0.
func WriteCSV(fname string, wf Waveform) error {
	tbl, err := csvutil.Create(fname)
	if err != nil {
		return xerrors.Errorf("wave: could not create CSV capture: %w", err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ','

	err = tbl.WriteHeader("time,mdb\n")
	if err != nil {
		return xerrors.Errorf("wave: could not write CSV header: %w", err)
	}

	level := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}

	for i, v := range wf.Samples {
		if i > 0 && v == wf.Samples[i-1] {
			continue
		}
		t := strconv.FormatFloat(float64(i)*wf.Period, 'g', -1, 64)
		err = tbl.WriteRow(t, level(v))
		if err != nil {
			return xerrors.Errorf("wave: could not write CSV row: %w", err)
		}
	}

	err = tbl.Close()
	if err != nil {
		return xerrors.Errorf("wave: could not close CSV capture: %w", err)
	}
	return nil
}

type transition struct {
	t  float64
	hi bool
}

// ReadCSV reads a CSV export of logic analyser transitions and resamples
// it every period seconds.
// The first row is a header. Column 0 holds the time (in seconds) of each
// transition, column col the line level after it. The line idles high
// before the first transition; the waveform ends one frame after the last
// one.
func ReadCSV(fname string, period float64, col int) (Waveform, error) {
	if col < 1 {
		return Waveform{}, xerrors.Errorf("wave: invalid CSV level column %d", col)
	}
	if !(period > 0) {
		return Waveform{}, xerrors.Errorf("wave: invalid sample period %g", period)
	}

	tbl, err := csvutil.Open(fname)
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not open CSV capture: %w", err)
	}
	defer tbl.Close()
	tbl.Reader.Comma = ','
	tbl.Reader.Comment = '#'
	tbl.Reader.FieldsPerRecord = -1

	rows, err := tbl.ReadRows(1, -1)
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not read CSV rows: %w", err)
	}
	defer rows.Close()

	var (
		trs  []transition
		dst  = make([]interface{}, col+1)
		vs   = make([]float64, col+1)
		irow = 1
	)
	for i := range dst {
		dst[i] = &vs[i]
	}
	for rows.Next() {
		irow++
		err = rows.Scan(dst...)
		if err != nil {
			return Waveform{}, xerrors.Errorf("wave: could not scan CSV row %d: %w", irow, err)
		}
		tr := transition{t: vs[0], hi: vs[col] != 0}
		if n := len(trs); n > 0 && tr.t < trs[n-1].t {
			return Waveform{}, xerrors.Errorf(
				"wave: CSV row %d goes back in time (t=%g < %g)",
				irow, tr.t, trs[n-1].t,
			)
		}
		trs = append(trs, tr)
	}
	err = rows.Err()
	if err != nil && err != io.EOF {
		return Waveform{}, xerrors.Errorf("wave: could not iterate CSV rows: %w", err)
	}

	err = rows.Close()
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not close CSV rows: %w", err)
	}

	err = tbl.Close()
	if err != nil {
		return Waveform{}, xerrors.Errorf("wave: could not close CSV capture: %w", err)
	}

	return resample(trs, period), nil
}

// resample turns a list of transitions into dense samples.
// Sampling starts two bits ahead of the first transition.
func resample(trs []transition, period float64) Waveform {
	wf := Waveform{Period: period}
	if len(trs) == 0 {
		return wf
	}

	var (
		spb  = SamplesPerBit(period)
		lead = 2 * spb
		t0   = trs[0].t
	)
	// index of the first sample at the level set by a transition at t.
	index := func(t float64) int {
		return lead + int(math.Round((t-t0)/period))
	}

	n := index(trs[len(trs)-1].t) + 11*spb
	wf.Samples = make([]bool, n)

	var (
		beg = 0
		hi  = true
	)
	for _, tr := range trs {
		end := index(tr.t)
		for i := beg; i < end; i++ {
			wf.Samples[i] = hi
		}
		if end > beg {
			beg = end
		}
		hi = tr.hi
	}
	for i := beg; i < n; i++ {
		wf.Samples[i] = hi
	}
	return wf
}
