// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	if got := merge(nil, []Annotation{}); got != nil {
		t.Fatalf("invalid merge of empty sets: %v", got)
	}

	var (
		errs = []Annotation{{Start: 300, Label: "e1"}, {Start: 10, Label: "e0"}}
		anns = []Annotation{{Start: 10, Label: "a0"}, {Start: 10, Label: "a1"}, {Start: 200, Label: "a2"}}
	)
	got := merge(errs, anns)
	want := []string{"e0", "a0", "a1", "a2", "e1"}
	if len(got) != len(want) {
		t.Fatalf("invalid number of annotations: got=%d, want=%d", len(got), len(want))
	}
	for i, ann := range got {
		if ann.Label != want[i] {
			t.Fatalf("invalid annotation %d: got=%q, want=%q", i, ann.Label, want[i])
		}
	}
}

func TestAnnotationJSON(t *testing.T) {
	ann := Annotation{
		Kind:     Value,
		Start:    20,
		End:      130,
		Category: Master,
		Field:    FieldAddress,
		Value:    0x0b,
		Width:    8,
		Label:    "Changer POLL",
	}

	raw, err := json.Marshal(ann)
	if err != nil {
		t.Fatalf("could not marshal annotation: %+v", err)
	}

	const want = `{"kind":"value","start":20,"end":130,"category":"master","field":"address","value":11,"width":8,"label":"Changer POLL"}`
	if got := string(raw); got != want {
		t.Fatalf("invalid JSON:\ngot= %s\nwant=%s", got, want)
	}
}

func TestStringers(t *testing.T) {
	for _, tc := range []struct {
		v    interface{ String() string }
		want string
	}{
		{Event, "event"},
		{Kind(42), "Kind(42)"},
		{Peripheral, "peripheral"},
		{Category(42), "Category(42)"},
		{FieldLastData, "last-data"},
		{Field(42), "Field(42)"},
		{Glitch, "glitch"},
		{Validity(42), "Validity(42)"},
		{MasterToPeripheral, "VMC->periph"},
		{Direction(42), "Direction(42)"},
		{Annotation{Kind: Event, Start: 1, End: 2, Category: Success, Label: "ACK"}, "[1, 2) success         ACK"},
	} {
		if got := tc.v.String(); got != tc.want {
			t.Fatalf("invalid string: got=%q, want=%q", got, tc.want)
		}
	}
}

func TestAnnotationJSONRoundTrip(t *testing.T) {
	want := []Annotation{
		{Kind: Event, Start: 0, End: 110, Category: Success, Field: FieldACK, Label: "ACK"},
		{Kind: Value, Start: 20, End: 130, Category: Peripheral, Field: FieldLastData, Value: 0x02, Width: 8, Label: "LAST 0x02"},
	}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("could not marshal annotations: %+v", err)
	}

	var got []Annotation
	err = json.Unmarshal(raw, &got)
	if err != nil {
		t.Fatalf("could not unmarshal annotations: %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid round-trip:\ngot= %v\nwant=%v", got, want)
	}

	var f Field
	err = f.UnmarshalText([]byte("bogus"))
	if err == nil {
		t.Fatalf("expected an error for an invalid field name")
	}
}
