// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"

	"github.com/go-lpc/mdb/periph"
)

// Interpret annotates each block: direction, per-byte role, checksum status
// and command names. Blocks are interpreted independently and in order.
func Interpret(blocks []Block) []Annotation {
	var anns []Annotation
	for _, b := range blocks {
		anns = append(anns, interpret(b)...)
	}
	return anns
}

func interpret(b Block) (anns []Annotation) {
	if len(b.Frames) == 0 {
		return nil
	}

	defer func() {
		e := recover()
		if e == nil {
			return
		}
		anns = []Annotation{{
			Kind:     Event,
			Start:    b.Start(),
			End:      b.End(),
			Category: Error,
			Field:    FieldInternal,
			Label:    fmt.Sprintf("INTERNAL ERROR: %v", e),
		}}
	}()

	var out emitter
	if b.Incomplete {
		out.event(b.Start(), b.End(), Warning, FieldIncomplete, "INCOMPLETE")
	}

	switch {
	case len(b.Frames) == 1:
		single(&out, b.Frames[0])
	case b.Direction() == MasterToPeripheral:
		master(&out, b)
	default:
		peripheral(&out, b)
	}

	return out.anns
}

func single(out *emitter, f Frame) {
	glitch(out, f)
	switch {
	case f.Mode && f.Value == ack:
		out.event(f.Start, f.End(), Success, FieldACK, "ACK")
	case f.Mode && f.Value == nak:
		out.event(f.Start, f.End(), Error, FieldNAK, "NAK")
	case f.Mode:
		out.event(f.Start, f.End(), Warning, FieldAmbiguous, hex(f.Value))
	default:
		out.event(f.Start, f.End(), Warning, FieldNoise, hex(f.Value))
	}
}

// master annotates a VMC block: address, optional sub-command, data and
// a checksum covering the address and every data byte.
func master(out *emitter, b Block) {
	var (
		frames = b.Frames
		n      = len(frames)
		addr   = frames[0]
		last   = frames[n-1]
		valid  = !b.Incomplete && !last.Mode
		cmd, _ = periph.LookupCommand(addr.Value)
	)

	glitch(out, addr)
	out.value(addr, Master, FieldAddress, periph.Describe(addr.Value))

	body := frames[1 : n-1]
	if b.Incomplete {
		body = frames[1:]
	}
	for i, f := range body {
		glitch(out, f)
		if i == 0 && !f.Mode && cmd.HasSubCommands() {
			name, ok := periph.LookupSubCommand(addr.Value, f.Value)
			if !ok {
				name = "SUB " + hex(f.Value)
			}
			out.value(f, Master, FieldSubCommand, name)
			continue
		}
		out.value(f, Master, FieldData, hex(f.Value))
	}

	if b.Incomplete {
		return
	}

	glitch(out, last)
	if !valid {
		out.value(last, Warning, FieldMalformed, "NO CHK "+hex(last.Value))
		return
	}
	checksum(out, last, sum(frames[:n-1]))
}

// peripheral annotates a peripheral response. The first mode-bit frame
// marks the last data byte; a plain frame right after it is the checksum
// over every byte up to and including the marker.
func peripheral(out *emitter, b Block) {
	var (
		frames = b.Frames
		n      = len(frames)
		marker = -1
	)
	for i, f := range frames {
		if f.Mode {
			marker = i
			break
		}
	}
	valid := !b.Incomplete && marker >= 0 && marker+1 < n && !frames[marker+1].Mode

	for i, f := range frames {
		glitch(out, f)
		switch {
		case valid && i == marker:
			out.value(f, Peripheral, FieldLastData, "LAST "+hex(f.Value))
		case valid && i == marker+1:
			checksum(out, f, sum(frames[:marker+1]))
		case !valid && !b.Incomplete && i == n-1:
			out.value(f, Warning, FieldMalformed, "NO CHK "+hex(f.Value))
		default:
			out.value(f, Peripheral, FieldData, hex(f.Value))
		}
	}
}

func checksum(out *emitter, f Frame, want uint8) {
	if f.Value == want {
		out.value(f, Success, FieldChecksum, "CHK OK")
		return
	}
	out.value(f, Error, FieldChecksum, fmt.Sprintf("CHK ERR got=%s want=%s", hex(f.Value), hex(want)))
}

func glitch(out *emitter, f Frame) {
	if f.Validity != Glitch {
		return
	}
	out.event(f.Start, f.End(), Warning, FieldGlitch, "GLITCH")
}

// sum returns the modulo-256 sum of the frame values.
func sum(frames []Frame) uint8 {
	var v uint8
	for _, f := range frames {
		v += f.Value
	}
	return v
}

func hex(v uint8) string {
	return fmt.Sprintf("0x%02x", v)
}
