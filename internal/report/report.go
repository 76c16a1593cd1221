// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report summarizes decoded MDB transcripts and renders them as
// PDF documents.
package report // import "github.com/go-lpc/mdb/internal/report"

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-lpc/mdb/decode"
)

// Transcript is a decoded capture.
type Transcript struct {
	Source  string    `json:"source"`
	Created time.Time `json:"created"`
	Rate    float64   `json:"rate"` // sample rate, in Hz
	Samples int       `json:"samples"`
	Digest  string    `json:"digest"` // hex-encoded SHA-256 of the capture file
	Frames  int       `json:"frames"`
	Blocks  int       `json:"blocks"`

	Annotations []decode.Annotation `json:"annotations"`
}

// Summary holds per-kind annotation counts of a transcript.
type Summary struct {
	Annotations int
	Categories  map[decode.Category]int

	Commands    int // VMC address bytes
	Responses   int // peripheral responses with a last-data marker
	ACK         int
	NAK         int
	ChecksumOK  int
	ChecksumErr int
	Malformed   int
	Framing     int
	Glitches    int
	Incomplete  int
	Internal    int
}

// Summarize counts the provided annotations.
func Summarize(anns []decode.Annotation) Summary {
	sum := Summary{
		Annotations: len(anns),
		Categories:  make(map[decode.Category]int),
	}
	for _, ann := range anns {
		sum.Categories[ann.Category]++
		switch ann.Field {
		case decode.FieldAddress:
			sum.Commands++
		case decode.FieldLastData:
			sum.Responses++
		case decode.FieldACK:
			sum.ACK++
		case decode.FieldNAK:
			sum.NAK++
		case decode.FieldChecksum:
			if ann.Category == decode.Success {
				sum.ChecksumOK++
			} else {
				sum.ChecksumErr++
			}
		case decode.FieldMalformed:
			sum.Malformed++
		case decode.FieldFraming:
			sum.Framing++
		case decode.FieldGlitch:
			sum.Glitches++
		case decode.FieldIncomplete:
			sum.Incomplete++
		case decode.FieldInternal:
			sum.Internal++
		}
	}
	return sum
}

// Errors returns the number of error annotations.
func (sum Summary) Errors() int { return sum.Categories[decode.Error] }

// Warnings returns the number of warning annotations.
func (sum Summary) Warnings() int { return sum.Categories[decode.Warning] }

// Healthy reports whether the transcript holds no error annotation.
func (sum Summary) Healthy() bool { return sum.Errors() == 0 }

// Digest returns the hex-encoded SHA-256 of r.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	_, err := io.Copy(h, r)
	if err != nil {
		return "", fmt.Errorf("report: could not hash capture: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestFile returns the hex-encoded SHA-256 of the named file.
func DigestFile(fname string) (string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return "", fmt.Errorf("report: could not open capture: %w", err)
	}
	defer f.Close()

	return Digest(f)
}
