// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/mdb/internal/report"
	"github.com/go-lpc/mdb/wave"
)

const rate = 96000

func writeCapture(t *testing.T, dir, name string, fct func(enc *wave.Encoder)) string {
	t.Helper()

	enc := wave.NewEncoder(1.0 / rate)
	fct(enc)

	fname := filepath.Join(dir, name)
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create capture: %+v", err)
	}
	defer f.Close()

	err = wave.WriteRaw(f, enc.Waveform(), 0)
	if err != nil {
		t.Fatalf("could not write capture: %+v", err)
	}

	err = f.Close()
	if err != nil {
		t.Fatalf("could not close capture: %+v", err)
	}
	return fname
}

func TestDump(t *testing.T) {
	tmp := t.TempDir()

	poll := writeCapture(t, tmp, "poll.bin", func(enc *wave.Encoder) {
		enc.Idle(2)
		enc.Message(0x0b)
		enc.Gap(2 * time.Millisecond)
		enc.ACK()
		enc.Idle(2)
	})
	vend := writeCapture(t, tmp, "vend.bin", func(enc *wave.Encoder) {
		enc.Idle(2)
		enc.Block(wave.Mode(0x13), wave.Data(0x00), wave.Data(0x00), wave.Data(0x64), wave.Data(0x42))
		enc.Gap(2 * time.Millisecond)
		enc.NAK()
		enc.Idle(2)
	})

	out := new(bytes.Buffer)
	pdf := filepath.Join(tmp, "report.pdf")
	xmain(out, []string{"-rate=96000", "-j=2", "-pdf=" + pdf, poll, vend})

	got := out.String()
	for _, want := range []string{
		"=== " + poll + " ===\n",
		"frames:         3\n",
		"[20, 130) master     0x0b Changer POLL\n",
		"[432, 542) success         ACK\n",
		"=== " + vend + " ===\n",
		"[130, 240) master     0x00 VEND REQUEST\n",
		"CHK ERR got=0x42 want=0x77\n",
		"summary: chk-ok=0 chk-err=1 ack=0 nak=1 errors=2 warnings=0\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
	if strings.Index(got, poll) > strings.Index(got, vend) {
		t.Fatalf("captures not displayed in input order:\n%s", got)
	}

	for _, fname := range []string{"report-poll.pdf", "report-vend.pdf"} {
		_, err := os.Stat(filepath.Join(tmp, fname))
		if err != nil {
			t.Fatalf("missing PDF report %q: %+v", fname, err)
		}
	}
}

func TestDumpJSON(t *testing.T) {
	tmp := t.TempDir()

	fname := writeCapture(t, tmp, "ack.bin", func(enc *wave.Encoder) {
		enc.Idle(10)
		enc.ACK()
		enc.Idle(2)
	})

	out := new(bytes.Buffer)
	xmain(out, []string{"-rate=96000", "-json", fname})

	var tr report.Transcript
	err := json.Unmarshal(out.Bytes(), &tr)
	if err != nil {
		t.Fatalf("could not decode JSON output: %+v\n%s", err, out.String())
	}

	if got, want := tr.Source, fname; got != want {
		t.Fatalf("invalid source: got=%q, want=%q", got, want)
	}
	if got, want := len(tr.Annotations), 1; got != want {
		t.Fatalf("invalid number of annotations: got=%d, want=%d", got, want)
	}
	if got, want := tr.Annotations[0].Label, "ACK"; got != want {
		t.Fatalf("invalid annotation: got=%q, want=%q", got, want)
	}
}

func TestLoadProfile(t *testing.T) {
	tmp := t.TempDir()
	cfg := filepath.Join(tmp, "mdb.yaml")
	err := os.WriteFile(cfg, []byte("capture:\n  format: csv\n  sample_rate: 500000\n"), 0644)
	if err != nil {
		t.Fatalf("could not create profile: %+v", err)
	}

	for _, tc := range []struct {
		name   string
		cfg    string
		args   []string
		format wave.Format
		rate   float64
		ch     int
		gap    float64
	}{
		{
			name:   "defaults",
			format: wave.FormatRaw,
			rate:   1e6,
			ch:     0,
			gap:    1,
		},
		{
			name:   "flags",
			args:   []string{"-fmt=csv", "-rate=96000", "-gap=2ms"},
			format: wave.FormatCSV,
			rate:   96000,
			ch:     1,
			gap:    2,
		},
		{
			name:   "profile",
			cfg:    cfg,
			format: wave.FormatCSV,
			rate:   500000,
			ch:     1,
			gap:    1,
		},
		{
			name:   "profile-and-flags",
			cfg:    cfg,
			args:   []string{"-ch=3", "-rate=96000"},
			format: wave.FormatCSV,
			rate:   96000,
			ch:     3,
			gap:    1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var (
				fset   = flag.NewFlagSet("test", flag.ContinueOnError)
				format = fset.String("fmt", "raw", "")
				rate   = fset.Float64("rate", 1e6, "")
				ch     = fset.Int("ch", 0, "")
				sp     = fset.Float64("sample-point", 0.5, "")
				gap    = fset.Duration("gap", time.Millisecond, "")
			)
			err := fset.Parse(tc.args)
			if err != nil {
				t.Fatalf("could not parse args: %+v", err)
			}

			p, err := loadProfile(tc.cfg, fset, *format, *rate, *ch, *sp, *gap)
			if err != nil {
				t.Fatalf("could not load profile: %+v", err)
			}

			if got, want := p.Format(), tc.format; got != want {
				t.Fatalf("invalid format: got=%q, want=%q", got, want)
			}
			if got, want := p.Capture.SampleRate, tc.rate; got != want {
				t.Fatalf("invalid rate: got=%v, want=%v", got, want)
			}
			if got, want := p.Channel(), tc.ch; got != want {
				t.Fatalf("invalid channel: got=%d, want=%d", got, want)
			}
			if got, want := *p.Decoder.MaxInterByteMs, tc.gap; got != want {
				t.Fatalf("invalid gap: got=%v, want=%v", got, want)
			}
		})
	}
}

func TestPDFName(t *testing.T) {
	for _, tc := range []struct {
		out, src string
		n        int
		want     string
	}{
		{"out.pdf", "a/b.bin", 1, "out.pdf"},
		{"out.pdf", "a/b.bin", 2, "out-b.pdf"},
		{"out", "c.csv", 3, "out-c.pdf"},
	} {
		if got := pdfName(tc.out, tc.src, tc.n); got != tc.want {
			t.Fatalf("invalid PDF name: got=%q, want=%q", got, tc.want)
		}
	}
}
