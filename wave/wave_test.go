// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wave

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"
)

const period = 1.0 / 96000 // 10 samples per bit

func TestEncoderFrame(t *testing.T) {
	enc := NewEncoder(period)
	if got, want := enc.SamplesPerBit(), 10; got != want {
		t.Fatalf("invalid samples-per-bit: got=%d, want=%d", got, want)
	}

	enc.Idle(1)
	enc.Frame(Mode(0xa5))

	wf := enc.Waveform()
	if got, want := wf.Len(), 12*10; got != want {
		t.Fatalf("invalid length: got=%d, want=%d", got, want)
	}

	// start, 1,0,1,0,0,1,0,1 (0xa5 LSB-first), mode=1, stop.
	want := []bool{true, false, true, false, true, false, false, true, false, true, true, true}
	for i, v := range want {
		for j := 0; j < 10; j++ {
			if got := wf.Samples[i*10+j]; got != v {
				t.Fatalf("invalid level for bit %d, sample %d: got=%v, want=%v", i, j, got, v)
			}
		}
	}
}

func TestEncoderMessage(t *testing.T) {
	enc := NewEncoder(period)
	enc.Idle(2)
	beg := enc.Pos()
	enc.Message(0x30, 0x01, 0x02)
	if got, want := enc.Pos()-beg, 4*11*10; got != want {
		t.Fatalf("invalid message length: got=%d, want=%d", got, want)
	}

	enc.Gap(time.Millisecond)
	if got, want := enc.Pos()-beg, 4*11*10+96; got != want {
		t.Fatalf("invalid gap length: got=%d, want=%d", got, want)
	}

	enc.Reset()
	if got := enc.Pos(); got != 0 {
		t.Fatalf("invalid position after reset: got=%d", got)
	}
}

func TestChecksum(t *testing.T) {
	for _, tc := range []struct {
		vs   []uint8
		want uint8
	}{
		{nil, 0},
		{[]uint8{0x30, 0x01, 0x02}, 0x33},
		{[]uint8{0xff, 0x02}, 0x01},
	} {
		if got := Checksum(tc.vs...); got != tc.want {
			t.Fatalf("invalid checksum of %v: got=0x%02x, want=0x%02x", tc.vs, got, tc.want)
		}
	}
}

func TestWaveform(t *testing.T) {
	enc := NewEncoder(period)
	enc.Idle(96)
	wf := enc.Waveform()

	if got, want := wf.Duration(), 10*time.Millisecond; got < want-time.Microsecond || got > want+time.Microsecond {
		t.Fatalf("invalid duration: got=%v, want=%v", got, want)
	}
	if got, want := wf.Rate(), 96000.0; math.Abs(got-want) > 1e-6 {
		t.Fatalf("invalid rate: got=%v, want=%v", got, want)
	}
	if got := wf.Channels()[Channel]; len(got) != wf.Len() {
		t.Fatalf("invalid channel length: got=%d, want=%d", len(got), wf.Len())
	}
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Format
		err  bool
	}{
		{name: "raw", want: FormatRaw},
		{name: "CSV", want: FormatCSV},
		{name: "vcd", err: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormat(tc.name)
			switch {
			case err != nil && !tc.err:
				t.Fatalf("could not parse format: %+v", err)
			case err == nil && tc.err:
				t.Fatalf("expected an error")
			}
			if got != tc.want {
				t.Fatalf("invalid format: got=%q, want=%q", got, tc.want)
			}
		})
	}
}

func TestRawRoundTrip(t *testing.T) {
	enc := NewEncoder(period)
	enc.Idle(4)
	enc.Message(0x08)
	enc.Idle(4)
	enc.ACK()
	enc.Idle(4)
	want := enc.Waveform()

	for _, bit := range []int{0, 3, 7} {
		buf := new(bytes.Buffer)
		err := WriteRaw(buf, want, bit)
		if err != nil {
			t.Fatalf("could not write raw capture: %+v", err)
		}

		fname := filepath.Join(t.TempDir(), "capture.bin")
		err = os.WriteFile(fname, buf.Bytes(), 0644)
		if err != nil {
			t.Fatalf("could not create raw capture: %+v", err)
		}

		got, err := Load(fname, FormatRaw, period, bit)
		if err != nil {
			t.Fatalf("could not read raw capture: %+v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid raw round-trip for bit=%d", bit)
		}
	}

	_, err := ReadRaw("capture.bin", period, 8)
	if err == nil {
		t.Fatalf("expected an error for an invalid bit")
	}
}

func TestReadCSV(t *testing.T) {
	const spb = 10
	var (
		bit = 1.0 / Baud
		csv = "Time [s],MDB\n" +
			"0.000000,1\n" +
			// start bit, then 0xff mode=1 and stop: line high after one bit.
			ftoa(0.001) + ",0\n" +
			ftoa(0.001+bit) + ",1\n"
	)

	fname := filepath.Join(t.TempDir(), "capture.csv")
	err := os.WriteFile(fname, []byte(csv), 0644)
	if err != nil {
		t.Fatalf("could not create CSV capture: %+v", err)
	}

	wf, err := ReadCSV(fname, period, 1)
	if err != nil {
		t.Fatalf("could not read CSV capture: %+v", err)
	}

	// 2 lead bits + 1ms + 1 bit + one trailing frame.
	if got, want := wf.Len(), 2*spb+96+spb+11*spb; got < want-1 || got > want+1 {
		t.Fatalf("invalid length: got=%d, want=%d", got, want)
	}

	lows := 0
	for i, v := range wf.Samples {
		if v {
			continue
		}
		lows++
		if i < 2*spb+96-1 || i > 2*spb+96+spb {
			t.Fatalf("unexpected low sample at %d", i)
		}
	}
	if lows < spb-1 || lows > spb+1 {
		t.Fatalf("invalid number of low samples: got=%d, want=%d", lows, spb)
	}

	t.Run("invalid-column", func(t *testing.T) {
		_, err := ReadCSV(fname, period, 0)
		if err == nil {
			t.Fatalf("expected an error")
		}
	})

	t.Run("backwards", func(t *testing.T) {
		fname := filepath.Join(t.TempDir(), "back.csv")
		err := os.WriteFile(fname, []byte("t,v\n0.002,0\n0.001,1\n"), 0644)
		if err != nil {
			t.Fatalf("could not create CSV capture: %+v", err)
		}
		_, err = Load(fname, FormatCSV, period, 1)
		if err == nil {
			t.Fatalf("expected an error")
		}
	})
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestCSVRoundTrip(t *testing.T) {
	enc := NewEncoder(period)
	enc.Idle(10)
	for i := 0; i < 8; i++ {
		enc.Message(0x37, 0x00)
		enc.Gap(2 * time.Millisecond)
		enc.Response([]byte("LPC0000000000042")...)
		enc.Gap(2 * time.Millisecond)
		enc.ACK()
		enc.Gap(4 * time.Millisecond)
	}
	enc.Idle(10)
	want := enc.Waveform()

	fname := filepath.Join(t.TempDir(), "capture.csv")
	err := WriteCSV(fname, want)
	if err != nil {
		t.Fatalf("could not write CSV capture: %+v", err)
	}

	got, err := ReadCSV(fname, period, 1)
	if err != nil {
		t.Fatalf("could not read CSV capture: %+v", err)
	}

	// the read waveform starts 2 bits before the first transition, at t=0.
	const lead = 2 * 10
	if got.Len() < want.Len()+lead {
		t.Fatalf("waveform too short: got=%d, want>=%d", got.Len(), want.Len()+lead)
	}
	for i := 0; i < lead; i++ {
		if !got.Samples[i] {
			t.Fatalf("invalid lead sample %d: got=false, want=true", i)
		}
	}
	for i, v := range want.Samples {
		if got.Samples[i+lead] != v {
			t.Fatalf("invalid sample %d: got=%v, want=%v", i, got.Samples[i+lead], v)
		}
	}
	for i := want.Len() + lead; i < got.Len(); i++ {
		if !got.Samples[i] {
			t.Fatalf("invalid trailing sample %d: got=false, want=true", i)
		}
	}
}

func TestSamplesPerBit(t *testing.T) {
	for _, tc := range []struct {
		period float64
		want   int
	}{
		{period: 1.0 / 96000, want: 10},
		{period: 1.0 / 1e6, want: 104},
		{period: 1.0 / 19200, want: 2},
		{period: 1.0 / 14400, want: 2},
		{period: 1.0 / 9600, want: 0},
		{period: 0, want: 0},
		{period: -1, want: 0},
		{period: math.Inf(+1), want: 0},
	} {
		if got := SamplesPerBit(tc.period); got != tc.want {
			t.Fatalf("invalid samples-per-bit for period=%g: got=%d, want=%d", tc.period, got, tc.want)
		}
		if got, want := NewEncoder(tc.period).SamplesPerBit(), tc.want; got != want {
			t.Fatalf("invalid encoder samples-per-bit for period=%g: got=%d, want=%d", tc.period, got, want)
		}
	}

	enc := NewEncoder(1.0 / 9600)
	enc.Frame(Mode(0x00))
	if got, want := enc.Pos(), 0; got != want {
		t.Fatalf("invalid number of samples for an unresolved bit: got=%d, want=%d", got, want)
	}
}
