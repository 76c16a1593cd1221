// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"sort"
)

// Kind describes the shape of an annotation.
type Kind uint8

const (
	Event Kind = iota // span + label
	Value             // span + label + decoded byte value
)

func (k Kind) String() string {
	switch k {
	case Event:
		return "event"
	case Value:
		return "value"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(p []byte) error {
	v, err := parseName("kind", string(p), int(Value)+1, func(i uint8) string { return Kind(i).String() })
	*k = Kind(v)
	return err
}

// Category is the rendering class of an annotation.
type Category uint8

const (
	Info Category = iota
	Success
	Warning
	Error
	Master     // byte sent by the VMC
	Peripheral // byte sent by a peripheral
)

func (c Category) String() string {
	switch c {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Master:
		return "master"
	case Peripheral:
		return "peripheral"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(p []byte) error {
	v, err := parseName("category", string(p), int(Peripheral)+1, func(i uint8) string { return Category(i).String() })
	*c = Category(v)
	return err
}

// Field tells which part of an MDB exchange an annotation describes.
type Field uint8

const (
	FieldACK        Field = iota // single-frame acknowledge
	FieldNAK                     // single-frame negative acknowledge
	FieldAmbiguous               // lone mode-bit frame that is neither ACK nor NAK
	FieldNoise                   // lone data frame
	FieldAddress                 // address/command byte
	FieldSubCommand              // sub-command byte following an address byte
	FieldData                    // plain data byte
	FieldLastData                // last data byte of a peripheral response
	FieldChecksum                // checksum byte
	FieldMalformed               // terminal byte of a block without a recognized checksum
	FieldFraming                 // framing error
	FieldGlitch                  // start bit did not hold low long enough
	FieldIncomplete              // block cut by the end of the waveform
	FieldInternal                // block could not be interpreted
)

var fieldNames = [...]string{
	FieldACK:        "ack",
	FieldNAK:        "nak",
	FieldAmbiguous:  "ambiguous",
	FieldNoise:      "noise",
	FieldAddress:    "address",
	FieldSubCommand: "sub-command",
	FieldData:       "data",
	FieldLastData:   "last-data",
	FieldChecksum:   "checksum",
	FieldMalformed:  "malformed",
	FieldFraming:    "framing",
	FieldGlitch:     "glitch",
	FieldIncomplete: "incomplete",
	FieldInternal:   "internal",
}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

func (f Field) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Field) UnmarshalText(p []byte) error {
	v, err := parseName("field", string(p), len(fieldNames), func(i uint8) string { return fieldNames[i] })
	*f = Field(v)
	return err
}

// parseName returns the index of name among the n names produced by str.
func parseName(kind, name string, n int, str func(i uint8) string) (uint8, error) {
	for i := 0; i < n; i++ {
		if str(uint8(i)) == name {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("decode: invalid %s %q", kind, name)
}

// Annotation is one timed, labeled item of a decoded transcript.
// Start and End are sample indices; End is exclusive.
type Annotation struct {
	Kind     Kind     `json:"kind"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Category Category `json:"category"`
	Field    Field    `json:"field"`
	Value    uint8    `json:"value"`
	Width    int      `json:"width,omitempty"` // bit width of Value, 0 for events
	Label    string   `json:"label"`
}

func (ann Annotation) String() string {
	switch ann.Kind {
	case Value:
		return fmt.Sprintf("[%d, %d) %-10s 0x%02x %s", ann.Start, ann.End, ann.Category, ann.Value, ann.Label)
	default:
		return fmt.Sprintf("[%d, %d) %-10s      %s", ann.Start, ann.End, ann.Category, ann.Label)
	}
}

// emitter accumulates annotations in production order.
type emitter struct {
	anns []Annotation
}

func (e *emitter) event(start, end int, cat Category, field Field, label string) {
	e.anns = append(e.anns, Annotation{
		Kind:     Event,
		Start:    start,
		End:      end,
		Category: cat,
		Field:    field,
		Label:    label,
	})
}

func (e *emitter) value(f Frame, cat Category, field Field, label string) {
	e.anns = append(e.anns, Annotation{
		Kind:     Value,
		Start:    f.Start,
		End:      f.End(),
		Category: cat,
		Field:    field,
		Value:    f.Value,
		Width:    8,
		Label:    label,
	})
}

// merge returns the annotations of all the provided sets ordered by
// non-decreasing start sample. Annotations sharing a start sample keep
// their production order.
func merge(sets ...[]Annotation) []Annotation {
	n := 0
	for _, set := range sets {
		n += len(set)
	}
	if n == 0 {
		return nil
	}
	out := make([]Annotation, 0, n)
	for _, set := range sets {
		out = append(out, set...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}
