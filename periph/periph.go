// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package periph holds the static MDB lookup tables: peripheral address
// ranges, per-peripheral commands and per-command sub-commands.
//
// The tables are read-only and safe for concurrent use.
package periph // import "github.com/go-lpc/mdb/periph"

import "fmt"

// Class identifies an MDB peripheral class, as selected by the top 5 bits
// of an address byte.
type Class uint8

const (
	VMC Class = iota // reserved for the vending machine controller
	Changer
	Cashless1
	Gateway
	Display
	EnergyManagement
	BillValidator
	USD1 // universal satellite device #1
	USD2
	USD3
	Dispenser1 // coin hopper or tube, dispenser #1
	Cashless2
	AgeVerification
	Dispenser2
	Reserved        // reserved for future standard peripherals
	Experimental    // experimental peripherals
	MachineSpecific // vending machine specific peripherals
)

var classNames = [...]string{
	VMC:              "VMC",
	Changer:          "Changer",
	Cashless1:        "Cashless #1",
	Gateway:          "Comms Gateway",
	Display:          "Display",
	EnergyManagement: "Energy Management",
	BillValidator:    "Bill Validator",
	USD1:             "USD #1",
	USD2:             "USD #2",
	USD3:             "USD #3",
	Dispenser1:       "Dispenser #1",
	Cashless2:        "Cashless #2",
	AgeVerification:  "Age Verification",
	Dispenser2:       "Dispenser #2",
	Reserved:         "Reserved",
	Experimental:     "Experimental",
	MachineSpecific:  "Machine Specific",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// addrMap maps an address base (addr>>3) to its peripheral class.
var addrMap = [32]Class{
	0x00 >> 3: VMC,
	0x08 >> 3: Changer,
	0x10 >> 3: Cashless1,
	0x18 >> 3: Gateway,
	0x20 >> 3: Display,
	0x28 >> 3: EnergyManagement,
	0x30 >> 3: BillValidator,
	0x38 >> 3: Reserved,
	0x40 >> 3: USD1,
	0x48 >> 3: USD2,
	0x50 >> 3: USD3,
	0x58 >> 3: Dispenser1,
	0x60 >> 3: Cashless2,
	0x68 >> 3: AgeVerification,
	0x70 >> 3: Dispenser2,
	0x78 >> 3: Reserved,
	0x80 >> 3: Reserved,
	0x88 >> 3: Reserved,
	0x90 >> 3: Reserved,
	0x98 >> 3: Reserved,
	0xa0 >> 3: Reserved,
	0xa8 >> 3: Reserved,
	0xb0 >> 3: Reserved,
	0xb8 >> 3: Reserved,
	0xc0 >> 3: Reserved,
	0xc8 >> 3: Reserved,
	0xd0 >> 3: Reserved,
	0xd8 >> 3: Reserved,
	0xe0 >> 3: Experimental,
	0xe8 >> 3: Experimental,
	0xf0 >> 3: MachineSpecific,
	0xf8 >> 3: MachineSpecific,
}

// Base returns the address base (top 5 bits) of an address byte.
func Base(addr uint8) uint8 {
	return addr & 0xf8
}

// ClassOf returns the peripheral class addressed by addr.
func ClassOf(addr uint8) Class {
	return addrMap[addr>>3]
}

// Command describes a command a VMC may send to a peripheral.
type Command struct {
	Name string
	subs map[uint8]string
}

// HasSubCommands reports whether the command is followed by a sub-command byte.
func (cmd Command) HasSubCommands() bool {
	return len(cmd.subs) > 0
}

// LookupCommand returns the command encoded by the address byte addr.
func LookupCommand(addr uint8) (Command, bool) {
	cmds, ok := commands[ClassOf(addr)]
	if !ok {
		return Command{}, false
	}
	cmd, ok := cmds[addr&0x07]
	return cmd, ok
}

// LookupSubCommand returns the name of the sub-command sub of the command
// encoded by the address byte addr.
func LookupSubCommand(addr, sub uint8) (string, bool) {
	cmd, ok := LookupCommand(addr)
	if !ok || cmd.subs == nil {
		return "", false
	}
	name, ok := cmd.subs[sub]
	return name, ok
}

// Describe returns a human readable name for the address byte addr,
// e.g. "Changer POLL" or "Reserved 0x3b".
func Describe(addr uint8) string {
	class := ClassOf(addr)
	cmd, ok := LookupCommand(addr)
	if !ok {
		return fmt.Sprintf("%v 0x%02x", class, addr)
	}
	return class.String() + " " + cmd.Name
}
