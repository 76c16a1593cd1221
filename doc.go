// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mdb holds code to decode Multi-Drop Bus (MDB) conversations
// from sampled logic-level waveforms.
//
// MDB is the 9-bit serial bus linking a vending machine controller (VMC)
// to its peripherals (coin changers, bill validators, cashless readers, ...).
// Each character is sent as 1 start bit, 8 data bits (LSB first), 1 mode bit
// and 1 stop bit, at 9600 baud.
//
// The decoding pipeline lives in package decode; lookup tables for
// peripheral addresses and commands live in package periph; waveform
// loading and synthesis live in package wave; decoded transcripts are
// stored in MySQL by package txdb.
package mdb // import "github.com/go-lpc/mdb"

import (
	"fmt"
	"runtime/debug"
)

// Version returns the version of mdb and its checksum.
// The returned values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}

	const root = "github.com/go-lpc/mdb"
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path != root {
			continue
		}
		if m.Replace != nil {
			switch {
			case m.Replace.Version != "" && m.Replace.Path != "":
				return fmt.Sprintf("%s %s", m.Replace.Path, m.Replace.Version), m.Replace.Sum
			case m.Replace.Version != "":
				return m.Replace.Version, m.Replace.Sum
			case m.Replace.Path != "":
				return m.Replace.Path, m.Replace.Sum
			default:
				return m.Version + "*", ""
			}
		}
		return m.Version, m.Sum
	}
	return "", ""
}
