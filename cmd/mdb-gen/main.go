// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdb-gen generates a synthetic MDB capture file.
//
// The generated session holds a changer poll, a bill validator
// identification request, a cashless vend request, a NAK'ed poll and a
// command with a corrupted checksum.
//
// Usage: mdb-gen [OPTIONS]
//
// Example:
//
//  $> mdb-gen -o session.bin -rate=1e6
//  $> mdb-gen -o session.csv -fmt=csv
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-lpc/mdb/wave"
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	log.SetPrefix("mdb-gen: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("mdb-gen", flag.ExitOnError)

		oname  = fset.String("o", "session.bin", "path to output capture file")
		format = fset.String("fmt", "raw", "capture format (raw, csv)")
		rate   = fset.Float64("rate", 1e6, "capture sample rate (Hz)")
		bit    = fset.Int("ch", 0, "bit holding the MDB line (raw format)")
		gap    = fset.Duration("resp", 2*time.Millisecond, "peripheral response delay")
	)

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	err = generate(*oname, *format, *rate, *bit, *gap)
	if err != nil {
		log.Fatalf("could not generate capture: %+v", err)
	}
}

func generate(oname, format string, rate float64, bit int, resp time.Duration) error {
	f, err := wave.ParseFormat(format)
	if err != nil {
		return err
	}
	if !(rate > 0) {
		return fmt.Errorf("invalid sample rate %g", rate)
	}
	if wave.SamplesPerBit(wave.Period(rate)) == 0 {
		return fmt.Errorf(
			"sample rate %g Hz too low: need at least %d samples per bit at %d baud",
			rate, wave.MinSamplesPerBit, wave.Baud,
		)
	}

	enc := wave.NewEncoder(wave.Period(rate))
	session(enc, resp)
	wf := enc.Waveform()

	switch f {
	case wave.FormatCSV:
		err = wave.WriteCSV(oname, wf)
	default:
		err = writeRaw(oname, wf, bit)
	}
	if err != nil {
		return err
	}

	log.Printf("wrote %d samples (%v) to %q", wf.Len(), wf.Duration(), oname)
	return nil
}

func writeRaw(oname string, wf wave.Waveform, bit int) error {
	o, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer o.Close()

	err = wave.WriteRaw(o, wf, bit)
	if err != nil {
		return err
	}

	err = o.Close()
	if err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}
	return nil
}

// session encodes a canned VMC session.
func session(enc *wave.Encoder, resp time.Duration) {
	exchange := func(cmd func(), reply func()) {
		cmd()
		enc.Gap(resp)
		reply()
		enc.Gap(2 * resp)
	}

	enc.Idle(10)

	// changer POLL, nothing to report.
	exchange(func() { enc.Message(0x0b) }, enc.ACK)

	// bill validator EXPANSION / LEVEL 1 IDENTIFICATION.
	exchange(
		func() { enc.Message(0x37, 0x00) },
		func() {
			enc.Response([]byte("LPC0000000000042MDB-GEN     \x01\x00")...)
			enc.Gap(resp)
			enc.ACK()
		},
	)

	// cashless VEND REQUEST for 100 units, item #1, approved.
	exchange(
		func() { enc.Message(0x13, 0x00, 0x00, 0x64, 0x00, 0x01) },
		func() {
			enc.Response(0x05, 0x00, 0x64)
			enc.Gap(resp)
			enc.ACK()
		},
	)

	// bill validator POLL, NAK'ed.
	exchange(func() { enc.Message(0x33) }, enc.NAK)

	// dispenser DISPENSER STATUS with a corrupted checksum.
	exchange(
		func() { enc.Block(wave.Mode(0x5a), wave.Data(0x00)) },
		enc.NAK,
	)

	enc.Idle(10)
}

