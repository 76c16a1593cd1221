// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"time"
)

const (
	ack = 0x00
	nak = 0xff
)

// Direction is the inferred origin of a block.
type Direction uint8

const (
	Unknown Direction = iota
	MasterToPeripheral
	PeripheralToMaster
)

func (dir Direction) String() string {
	switch dir {
	case Unknown:
		return "unknown"
	case MasterToPeripheral:
		return "VMC->periph"
	case PeripheralToMaster:
		return "periph->VMC"
	}
	return fmt.Sprintf("Direction(%d)", uint8(dir))
}

// Block is a run of frames with no inter-frame gap above the configured
// threshold, forming one MDB message.
type Block struct {
	Frames     []Frame
	Incomplete bool // the waveform ended while the block was being sent
}

// Start returns the start sample of the block.
func (b Block) Start() int {
	if len(b.Frames) == 0 {
		return 0
	}
	return b.Frames[0].Start
}

// End returns the (exclusive) end sample of the block.
func (b Block) End() int {
	if len(b.Frames) == 0 {
		return 0
	}
	return b.Frames[len(b.Frames)-1].End()
}

// Direction returns the inferred direction of the block.
// A block opened by a mode-bit frame that is neither ACK nor NAK is sent
// by the VMC, everything else is a peripheral response.
func (b Block) Direction() Direction {
	if len(b.Frames) == 0 {
		return Unknown
	}
	first := b.Frames[0]
	if first.Mode && first.Value != ack && first.Value != nak {
		return MasterToPeripheral
	}
	return PeripheralToMaster
}

// Threshold converts an inter-byte time allowance into a number of samples.
func Threshold(period float64, maxInterByte time.Duration) float64 {
	if !(period > 0) {
		return 0
	}
	return maxInterByte.Seconds() / period
}

// Assemble groups frames into blocks.
// A frame whose gap to the end of the previous frame exceeds maxInterByte
// starts a new block. A gap equal to the threshold stays in the block.
func Assemble(frames []Frame, period float64, maxInterByte time.Duration) []Block {
	return assemble(frames, Threshold(period, maxInterByte))
}

func assemble(frames []Frame, threshold float64) []Block {
	if len(frames) == 0 {
		return nil
	}

	var (
		blocks []Block
		cur    = Block{Frames: []Frame{frames[0]}}
	)
	for i, f := range frames[1:] {
		prev := frames[i]
		gap := float64(f.Start - prev.End())
		if gap <= threshold {
			cur.Frames = append(cur.Frames, f)
			continue
		}
		blocks = append(blocks, cur)
		cur = Block{Frames: []Frame{f}}
	}
	blocks = append(blocks, cur)
	return blocks
}

// MarkIncomplete flags the last block as incomplete when the waveform was
// cut in the middle of a frame that would have belonged to it.
func MarkIncomplete(blocks []Block, sc Scan, threshold float64) {
	if !sc.Truncated || len(blocks) == 0 {
		return
	}
	last := &blocks[len(blocks)-1]
	if sc.TruncatedAt < last.End() {
		return
	}
	if float64(sc.TruncatedAt-last.End()) <= threshold {
		last.Incomplete = true
	}
}
