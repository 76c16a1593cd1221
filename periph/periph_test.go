// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"fmt"
	"testing"
)

func TestClassOf(t *testing.T) {
	for _, tc := range []struct {
		addr uint8
		want Class
	}{
		{0x00, VMC},
		{0x07, VMC},
		{0x08, Changer},
		{0x0b, Changer},
		{0x12, Cashless1},
		{0x1a, Gateway},
		{0x33, BillValidator},
		{0x38, Reserved},
		{0x3f, Reserved},
		{0x42, USD1},
		{0x4a, USD2},
		{0x52, USD3},
		{0x5b, Dispenser1},
		{0x62, Cashless2},
		{0x6a, AgeVerification},
		{0x73, Dispenser2},
		{0x78, Reserved},
		{0xd8, Reserved},
		{0xe0, Experimental},
		{0xef, Experimental},
		{0xf0, MachineSpecific},
		{0xff, MachineSpecific},
	} {
		t.Run(fmt.Sprintf("0x%02x", tc.addr), func(t *testing.T) {
			if got, want := ClassOf(tc.addr), tc.want; got != want {
				t.Fatalf("invalid class: got=%v, want=%v", got, want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	for _, tc := range []struct {
		addr uint8
		want string
	}{
		{0x08, "Changer RESET"},
		{0x0b, "Changer POLL"},
		{0x0f, "Changer EXPANSION"},
		{0x0e, "Changer 0x0e"},
		{0x13, "Cashless #1 VEND"},
		{0x63, "Cashless #2 VEND"},
		{0x30, "Bill Validator RESET"},
		{0x37, "Bill Validator EXPANSION"},
		{0x5d, "Dispenser #1 DISPENSE COINS"},
		{0x75, "Dispenser #2 DISPENSE COINS"},
		{0x3b, "Reserved 0x3b"},
		{0xe3, "Experimental 0xe3"},
		{0x01, "VMC 0x01"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			if got, want := Describe(tc.addr), tc.want; got != want {
				t.Fatalf("invalid description: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestLookupSubCommand(t *testing.T) {
	for _, tc := range []struct {
		addr, sub uint8
		want      string
		ok        bool
	}{
		{0x13, 0x00, "VEND REQUEST", true},
		{0x13, 0x04, "SESSION COMPLETE", true},
		{0x63, 0x02, "VEND SUCCESS", true},
		{0x11, 0x01, "MAX/MIN PRICES", true},
		{0x0f, 0x00, "IDENTIFICATION", true},
		{0x0f, 0xff, "DIAGNOSTICS", true},
		{0x37, 0x02, "LEVEL 2 IDENTIFICATION", true},
		{0x37, 0xfc, "FTL SEND BLOCK", true},
		{0x5f, 0x01, "FEATURE ENABLE", true},
		{0x13, 0x42, "", false}, // unknown sub-command
		{0x0b, 0x00, "", false}, // POLL has no sub-command
		{0x3b, 0x00, "", false}, // reserved range
	} {
		t.Run(fmt.Sprintf("0x%02x-0x%02x", tc.addr, tc.sub), func(t *testing.T) {
			got, ok := LookupSubCommand(tc.addr, tc.sub)
			if ok != tc.ok {
				t.Fatalf("invalid lookup status: got=%v, want=%v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("invalid sub-command: got=%q, want=%q", got, tc.want)
			}
		})
	}
}

func TestHasSubCommands(t *testing.T) {
	for _, tc := range []struct {
		addr uint8
		want bool
	}{
		{0x0b, false},
		{0x0f, true},
		{0x13, true},
		{0x30, false},
		{0x45, true},
	} {
		cmd, ok := LookupCommand(tc.addr)
		if !ok {
			t.Fatalf("could not find command 0x%02x", tc.addr)
		}
		if got, want := cmd.HasSubCommands(), tc.want; got != want {
			t.Fatalf("invalid sub-command status for 0x%02x: got=%v, want=%v", tc.addr, got, want)
		}
	}
}

func TestClassString(t *testing.T) {
	if got, want := Class(200).String(), "Class(200)"; got != want {
		t.Fatalf("invalid class name: got=%q, want=%q", got, want)
	}
}
