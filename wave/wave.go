// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wave holds sampled MDB waveforms: a synthetic encoder producing
// the line level of MDB exchanges, and loaders for logic analyser captures.
package wave // import "github.com/go-lpc/mdb/wave"

import (
	"fmt"
	"math"
	"time"
)

const (
	Baud    = 9600  // MDB line rate, in bits per second
	Channel = "mdb" // name of the MDB data line in a multi-channel capture

	MinSamplesPerBit = 2
)

// SamplesPerBit returns the number of samples covering one MDB bit for
// the provided sample period (in seconds).
// It returns 0 when fewer than MinSamplesPerBit samples per bit are
// available.
func SamplesPerBit(period float64) int {
	if !(period > 0) || math.IsInf(period, 0) {
		return 0
	}
	spb := int(math.Round(1 / (period * Baud)))
	if spb < MinSamplesPerBit {
		return 0
	}
	return spb
}

// Waveform is a single logic channel sampled at a fixed period.
type Waveform struct {
	Samples []bool
	Period  float64 // sample period, in seconds
}

// Len returns the number of samples.
func (wf Waveform) Len() int { return len(wf.Samples) }

// Rate returns the sample rate, in Hz.
func (wf Waveform) Rate() float64 {
	if !(wf.Period > 0) {
		return 0
	}
	return 1 / wf.Period
}

// Duration returns the time covered by the waveform.
func (wf Waveform) Duration() time.Duration {
	return time.Duration(float64(len(wf.Samples)) * wf.Period * float64(time.Second))
}

// Channels returns the waveform as a one-channel capture.
func (wf Waveform) Channels() map[string][]bool {
	return map[string][]bool{Channel: wf.Samples}
}

func (wf Waveform) String() string {
	return fmt.Sprintf("Waveform{samples=%d, rate=%gHz, duration=%v}", wf.Len(), wf.Rate(), wf.Duration())
}

// Period returns the sample period for the provided sample rate, in Hz.
func Period(rate float64) float64 {
	if !(rate > 0) {
		return 0
	}
	return 1 / rate
}
