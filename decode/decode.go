// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode turns a sampled MDB line into an annotated transcript.
//
// Decoding runs in three stages:
//   - ScanFrames extracts 11-bit frames from the boolean samples,
//   - Assemble groups frames into blocks using an inter-byte time threshold,
//   - Interpret annotates each block (direction, checksum, command names).
//
// Decoder chains the three stages. A Decoder holds no mutable state and
// may be used concurrently.
package decode // import "github.com/go-lpc/mdb/decode"

import (
	"time"

	"github.com/go-lpc/mdb/wave"
)

// Channel is the name of the MDB data line in a multi-channel capture.
const Channel = wave.Channel

type config struct {
	samplePoint    float64       // sampling point within a bit cell, in [0,1)
	glitchFraction float64       // fraction of a bit the start bit must hold low
	maxInterByte   time.Duration // largest gap between two frames of a block
}

func newConfig(opts ...Option) config {
	cfg := config{
		samplePoint:    0.5,
		glitchFraction: 0.25,
		maxInterByte:   1 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Decoder.
type Option func(cfg *config)

// WithSamplePoint sets where, as a fraction of the bit period, each bit
// is sampled. Values outside [0,1) are ignored.
func WithSamplePoint(v float64) Option {
	return func(cfg *config) {
		if v < 0 || v >= 1 {
			return
		}
		cfg.samplePoint = v
	}
}

// WithGlitchFraction sets the fraction of a bit period the start bit must
// stay low for the frame not to be flagged as a glitch.
// Zero disables the check. Values outside [0,1] are ignored.
func WithGlitchFraction(v float64) Option {
	return func(cfg *config) {
		if v < 0 || v > 1 {
			return
		}
		cfg.glitchFraction = v
	}
}

// WithMaxInterByte sets the largest gap between the end of a frame and the
// start of the next one for both frames to belong to the same block.
func WithMaxInterByte(d time.Duration) Option {
	return func(cfg *config) {
		if d < 0 {
			return
		}
		cfg.maxInterByte = d
	}
}

// Decoder decodes MDB waveforms.
type Decoder struct {
	cfg config
}

// New returns a new decoder configured with the provided options.
func New(opts ...Option) *Decoder {
	return &Decoder{cfg: newConfig(opts...)}
}

// Result holds the intermediate and final products of a decode call.
type Result struct {
	Scan        Scan
	Blocks      []Block
	Annotations []Annotation
}

// Run decodes samples, taken every period seconds, and returns every
// stage's output.
func (dec *Decoder) Run(samples []bool, period float64) Result {
	var (
		sc     = scanFrames(samples, period, dec.cfg)
		thr    = Threshold(period, dec.cfg.maxInterByte)
		blocks = assemble(sc.Frames, thr)
	)
	MarkIncomplete(blocks, sc, thr)

	return Result{
		Scan:        sc,
		Blocks:      blocks,
		Annotations: merge(sc.Errors, Interpret(blocks)),
	}
}

// Decode decodes samples, taken every period seconds, into annotations
// ordered by start sample.
func (dec *Decoder) Decode(samples []bool, period float64) []Annotation {
	return dec.Run(samples, period).Annotations
}

// Decode decodes samples with the default decoder configuration.
func Decode(samples []bool, period float64) []Annotation {
	return New().Decode(samples, period)
}

// DecodeChannels decodes the MDB data line of a multi-channel capture.
// A capture without a Channel entry yields no annotations.
func (dec *Decoder) DecodeChannels(chans map[string][]bool, period float64) []Annotation {
	samples, ok := chans[Channel]
	if !ok {
		return nil
	}
	return dec.Decode(samples, period)
}

// Time returns the time offset, from the start of the capture, of the
// provided sample index.
func Time(sample int, period float64) time.Duration {
	return time.Duration(float64(sample) * period * float64(time.Second))
}
