// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"math"

	"github.com/go-lpc/mdb/wave"
)

const (
	BaudRate     = wave.Baud // MDB line rate, in bits per second
	BitsPerFrame = 11        // start + 8 data + mode + stop
)

// Validity is the demodulation status of a frame.
type Validity uint8

const (
	Ok           Validity = iota
	Glitch                // start bit did not hold low, frame still demodulated
	FramingError          // stop bit missing or frame cut by the end of the waveform
)

func (v Validity) String() string {
	switch v {
	case Ok:
		return "ok"
	case Glitch:
		return "glitch"
	case FramingError:
		return "framing-error"
	}
	return fmt.Sprintf("Validity(%d)", uint8(v))
}

// Frame is one demodulated 11-bit MDB character.
type Frame struct {
	Start    int  // sample index of the start bit
	Span     int  // number of samples covered by the frame
	Value    uint8
	Mode     bool // 9th bit: address/control/checksum marker
	Validity Validity
}

// End returns the (exclusive) sample index of the end of the frame.
func (f Frame) End() int { return f.Start + f.Span }

func (f Frame) String() string {
	mode := 0
	if f.Mode {
		mode = 1
	}
	return fmt.Sprintf("[%d, %d) 0x%02x mode=%d %v", f.Start, f.End(), f.Value, mode, f.Validity)
}

// SamplesPerBit returns the number of samples covering one MDB bit for
// the provided sample period (in seconds).
// It returns 0 when fewer than 2 samples per bit are available.
func SamplesPerBit(period float64) int {
	return wave.SamplesPerBit(period)
}

// Scan is the result of the frame extraction stage.
type Scan struct {
	SamplesPerBit int
	Frames        []Frame      // valid (Ok or Glitch) frames, in order
	Errors        []Annotation // framing error events, in order

	// Truncated reports whether the waveform ended in the middle of a
	// frame. TruncatedAt is then the start sample of that frame.
	Truncated   bool
	TruncatedAt int
}

type state uint8

const (
	stateIdle state = iota
	stateInFrame
	stateDone
)

// scanner walks an immutable sample view, alternating between looking for
// a start bit and demodulating the frame it opens.
type scanner struct {
	s      []bool
	spb    int
	offset int // sampling point within a bit cell
	glitch int // samples the start bit must stay low

	pos   int // next sample to inspect while idle
	start int // start bit of the frame being demodulated

	out Scan
}

// ScanFrames extracts MDB frames from samples, taken every period seconds.
func ScanFrames(samples []bool, period float64, opts ...Option) Scan {
	cfg := newConfig(opts...)
	return scanFrames(samples, period, cfg)
}

func scanFrames(samples []bool, period float64, cfg config) Scan {
	spb := SamplesPerBit(period)
	if spb == 0 || len(samples) == 0 {
		return Scan{SamplesPerBit: spb}
	}

	sc := scanner{
		s:      samples,
		spb:    spb,
		offset: int(math.Floor(cfg.samplePoint * float64(spb))),
		glitch: int(math.Ceil(cfg.glitchFraction * float64(spb))),
	}
	sc.out.SamplesPerBit = spb

	st := stateIdle
	for st != stateDone {
		switch st {
		case stateIdle:
			st = sc.idle()
		case stateInFrame:
			st = sc.inFrame()
		}
	}
	return sc.out
}

// idle looks for an idle-high to start-low transition.
func (sc *scanner) idle() state {
	for i := sc.pos; i+1 < len(sc.s); i++ {
		if sc.s[i] && !sc.s[i+1] {
			sc.start = i + 1
			return stateInFrame
		}
	}
	return stateDone
}

// at returns the sampling index of the k-th bit cell of the current frame.
// Cell 0 is the start bit, 1-8 are data bits, 9 is the mode bit and 10
// the stop bit.
func (sc *scanner) at(k int) int {
	return sc.start + k*sc.spb + sc.offset
}

func (sc *scanner) inFrame() state {
	var (
		n    = len(sc.s)
		span = BitsPerFrame * sc.spb
		fr   = Frame{Start: sc.start, Span: span}
	)

	if !sc.holdsLow() {
		fr.Validity = Glitch
	}

	stop := sc.at(10)
	if stop >= n {
		end := fr.End()
		if end > n {
			end = n
		}
		sc.out.Errors = append(sc.out.Errors, Annotation{
			Kind:     Event,
			Start:    fr.Start,
			End:      end,
			Category: Error,
			Field:    FieldFraming,
			Label:    "FRAMING ERROR (truncated)",
		})
		sc.out.Truncated = true
		sc.out.TruncatedAt = fr.Start
		return stateDone
	}

	for k := 0; k < 8; k++ {
		if sc.s[sc.at(k+1)] {
			fr.Value |= 1 << k
		}
	}
	fr.Mode = sc.s[sc.at(9)]

	if !sc.s[stop] {
		sc.out.Errors = append(sc.out.Errors, Annotation{
			Kind:     Event,
			Start:    fr.Start,
			End:      fr.End(),
			Category: Error,
			Field:    FieldFraming,
			Label:    "FRAMING ERROR",
		})
		sc.pos = stop
		return stateIdle
	}

	sc.out.Frames = append(sc.out.Frames, fr)
	// the stop sample is high: a start bit sent early, within the rest
	// of the stop cell, is still seen as a falling edge.
	sc.pos = stop
	return stateIdle
}

// holdsLow reports whether the start bit stays low for the configured
// fraction of a bit period.
func (sc *scanner) holdsLow() bool {
	end := sc.start + sc.glitch
	if end > len(sc.s) {
		end = len(sc.s)
	}
	for i := sc.start; i < end; i++ {
		if sc.s[i] {
			return false
		}
	}
	return true
}
