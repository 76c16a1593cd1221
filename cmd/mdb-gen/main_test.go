// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/report"
	"github.com/go-lpc/mdb/wave"
)

func TestGenerate(t *testing.T) {
	tmp := t.TempDir()

	const rate = 96000
	for _, tc := range []struct {
		format wave.Format
		fname  string
		ch     int
	}{
		{wave.FormatRaw, "session.bin", 3},
		{wave.FormatCSV, "session.csv", 1},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			oname := filepath.Join(tmp, tc.fname)
			bit := tc.ch
			if tc.format == wave.FormatCSV {
				bit = 0
			}
			err := generate(oname, string(tc.format), rate, bit, 2*time.Millisecond)
			if err != nil {
				t.Fatalf("could not generate capture: %+v", err)
			}

			wf, err := wave.Load(oname, tc.format, wave.Period(rate), tc.ch)
			if err != nil {
				t.Fatalf("could not load capture: %+v", err)
			}

			sum := report.Summarize(decode.Decode(wf.Samples, wf.Period))
			for _, v := range []struct {
				name      string
				got, want int
			}{
				{"commands", sum.Commands, 5},
				{"responses", sum.Responses, 2},
				{"chk-ok", sum.ChecksumOK, 6},
				{"chk-err", sum.ChecksumErr, 1},
				{"ack", sum.ACK, 3},
				{"nak", sum.NAK, 2},
				{"framing", sum.Framing, 0},
				{"malformed", sum.Malformed, 0},
			} {
				if v.got != v.want {
					t.Fatalf("invalid %s count: got=%d, want=%d", v.name, v.got, v.want)
				}
			}
		})
	}
}

func TestGenerateCSVMatchesRaw(t *testing.T) {
	tmp := t.TempDir()

	const rate = 96000
	var (
		raw = filepath.Join(tmp, "session.bin")
		csv = filepath.Join(tmp, "session.csv")
	)
	err := generate(raw, "raw", rate, 0, 2*time.Millisecond)
	if err != nil {
		t.Fatalf("could not generate raw capture: %+v", err)
	}
	err = generate(csv, "csv", rate, 0, 2*time.Millisecond)
	if err != nil {
		t.Fatalf("could not generate CSV capture: %+v", err)
	}

	want, err := wave.ReadRaw(raw, wave.Period(rate), 0)
	if err != nil {
		t.Fatalf("could not read raw capture: %+v", err)
	}
	got, err := wave.ReadCSV(csv, wave.Period(rate), 1)
	if err != nil {
		t.Fatalf("could not read CSV capture: %+v", err)
	}

	// CSV captures are read back with 2 bits of idle line ahead of t=0.
	lead := 2 * wave.SamplesPerBit(wave.Period(rate))
	if got.Len() < want.Len()+lead {
		t.Fatalf("CSV capture too short: got=%d, want>=%d", got.Len(), want.Len()+lead)
	}
	for i, v := range want.Samples {
		if got.Samples[i+lead] != v {
			t.Fatalf("sample %d differs: raw=%v csv=%v", i, v, got.Samples[i+lead])
		}
	}

	var (
		sumCSV = report.Summarize(decode.Decode(got.Samples, got.Period))
		sumRaw = report.Summarize(decode.Decode(want.Samples, want.Period))
	)
	if !reflect.DeepEqual(sumCSV, sumRaw) {
		t.Fatalf("invalid CSV summary:\ngot= %+v\nwant=%+v", sumCSV, sumRaw)
	}
}

func TestGenerateErrors(t *testing.T) {
	tmp := t.TempDir()

	for _, tc := range []struct {
		name   string
		format string
		rate   float64
	}{
		{"bad-format", "vcd", 1e6},
		{"bad-rate", "raw", 0},
		{"low-rate", "raw", 9600},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := generate(filepath.Join(tmp, tc.name), tc.format, tc.rate, 0, time.Millisecond)
			if err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestXMain(t *testing.T) {
	oname := filepath.Join(t.TempDir(), "session.bin")
	xmain([]string{"-o", oname, "-rate=250000"})

	wf, err := wave.ReadRaw(oname, wave.Period(250000), 0)
	if err != nil {
		t.Fatalf("could not read capture: %+v", err)
	}
	if wf.Len() == 0 {
		t.Fatalf("empty capture")
	}
}
