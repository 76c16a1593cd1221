// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wave

import (
	"math"
	"time"
)

// Word is one 9-bit MDB character: 8 data bits and the mode bit.
type Word struct {
	Value uint8
	Mode  bool
}

// Data returns a word with the mode bit cleared.
func Data(v uint8) Word { return Word{Value: v} }

// Mode returns a word with the mode bit set.
func Mode(v uint8) Word { return Word{Value: v, Mode: true} }

// Checksum returns the modulo-256 sum of the provided bytes.
func Checksum(vs ...uint8) uint8 {
	var sum uint8
	for _, v := range vs {
		sum += v
	}
	return sum
}

// Encoder synthesizes the line level of MDB exchanges.
// The line idles high; every bit lasts exactly SamplesPerBit samples.
// An Encoder whose period is too coarse to resolve a bit emits no bit
// samples.
type Encoder struct {
	period float64
	spb    int
	buf    []bool
}

// NewEncoder returns a new Encoder producing samples every period seconds.
func NewEncoder(period float64) *Encoder {
	return &Encoder{period: period, spb: SamplesPerBit(period)}
}

// SamplesPerBit returns the number of samples emitted for each bit.
func (enc *Encoder) SamplesPerBit() int { return enc.spb }

// Pos returns the index of the next sample to be emitted.
func (enc *Encoder) Pos() int { return len(enc.buf) }

func (enc *Encoder) level(v bool, n int) {
	for i := 0; i < n; i++ {
		enc.buf = append(enc.buf, v)
	}
}

func (enc *Encoder) bit(v bool) { enc.level(v, enc.spb) }

// Idle holds the line high for the provided number of bit periods.
func (enc *Encoder) Idle(bits int) {
	enc.level(true, bits*enc.spb)
}

// Gap holds the line high for d.
func (enc *Encoder) Gap(d time.Duration) {
	if !(enc.period > 0) {
		return
	}
	enc.level(true, int(math.Round(d.Seconds()/enc.period)))
}

// Low holds the line low for the provided number of samples.
func (enc *Encoder) Low(n int) {
	enc.level(false, n)
}

// Samples appends raw line levels.
func (enc *Encoder) Samples(vs ...bool) {
	enc.buf = append(enc.buf, vs...)
}

// Frame emits one 11-bit frame: start, 8 data bits LSB-first, mode, stop.
func (enc *Encoder) Frame(w Word) {
	enc.bit(false)
	for k := 0; k < 8; k++ {
		enc.bit(w.Value&(1<<k) != 0)
	}
	enc.bit(w.Mode)
	enc.bit(true)
}

// Block emits frames back to back.
func (enc *Encoder) Block(ws ...Word) {
	for _, w := range ws {
		enc.Frame(w)
	}
}

// Message emits a VMC command: the address byte with its mode bit set,
// the data bytes and their checksum.
func (enc *Encoder) Message(addr uint8, data ...uint8) {
	ws := make([]Word, 0, len(data)+2)
	ws = append(ws, Mode(addr))
	for _, v := range data {
		ws = append(ws, Data(v))
	}
	ws = append(ws, Data(Checksum(append([]uint8{addr}, data...)...)))
	enc.Block(ws...)
}

// Response emits a peripheral response: the data bytes, the last one with
// its mode bit set, and their checksum.
// A response without data is an ACK.
func (enc *Encoder) Response(data ...uint8) {
	if len(data) == 0 {
		enc.ACK()
		return
	}
	ws := make([]Word, 0, len(data)+1)
	for i, v := range data {
		ws = append(ws, Word{Value: v, Mode: i == len(data)-1})
	}
	ws = append(ws, Data(Checksum(data...)))
	enc.Block(ws...)
}

// ACK emits an acknowledge.
func (enc *Encoder) ACK() { enc.Frame(Mode(0x00)) }

// NAK emits a negative acknowledge.
func (enc *Encoder) NAK() { enc.Frame(Mode(0xff)) }

// Waveform returns a copy of the samples emitted so far.
func (enc *Encoder) Waveform() Waveform {
	samples := make([]bool, len(enc.buf))
	copy(samples, enc.buf)
	return Waveform{Samples: samples, Period: enc.period}
}

// Reset discards the samples emitted so far.
func (enc *Encoder) Reset() {
	enc.buf = enc.buf[:0]
}
