// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

// commands maps a peripheral class to its commands, keyed by the command
// offset within the address range (addr & 0x07).
var commands = map[Class]map[uint8]Command{
	Changer: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "TUBE STATUS"},
		0x3: {Name: "POLL"},
		0x4: {Name: "COIN TYPE"},
		0x5: {Name: "DISPENSE"},
		0x7: {Name: "EXPANSION", subs: changerExpansion},
	},
	Cashless1: cashless,
	Cashless2: cashless,
	Gateway: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "POLL"},
		0x3: {Name: "REPORT", subs: map[uint8]string{
			0x01: "TRANSACTION",
			0x02: "DTS EVENT",
			0x03: "ASSET ID",
			0x04: "CURRENCY ID",
			0x05: "PRODUCT ID",
		}},
		0x4: {Name: "CONTROL", subs: map[uint8]string{
			0x01: "DISABLED",
			0x02: "ENABLED",
			0x03: "TRANSMIT",
		}},
		0x7: {Name: "EXPANSION", subs: map[uint8]string{
			0x00: "IDENTIFICATION",
			0x01: "FEATURE ENABLE",
			0x02: "TIME/DATE REQUEST",
			0xff: "DIAGNOSTICS",
		}},
	},
	Display: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "POLL"},
		0x3: {Name: "DISPLAY REQUEST"},
		0x7: {Name: "EXPANSION", subs: map[uint8]string{
			0x00: "IDENTIFICATION",
			0xff: "DIAGNOSTICS",
		}},
	},
	EnergyManagement: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "POLL"},
		0x7: {Name: "EXPANSION", subs: basicExpansion},
	},
	BillValidator: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "SECURITY"},
		0x3: {Name: "POLL"},
		0x4: {Name: "BILL TYPE"},
		0x5: {Name: "ESCROW"},
		0x6: {Name: "STACKER"},
		0x7: {Name: "EXPANSION", subs: billExpansion},
	},
	USD1: usd,
	USD2: usd,
	USD3: usd,
	Dispenser1: dispenser,
	Dispenser2: dispenser,
	AgeVerification: {
		0x0: {Name: "RESET"},
		0x1: {Name: "SETUP"},
		0x2: {Name: "POLL"},
		0x3: {Name: "REQUEST"},
		0x7: {Name: "EXPANSION", subs: basicExpansion},
	},
}

var cashless = map[uint8]Command{
	0x0: {Name: "RESET"},
	0x1: {Name: "SETUP", subs: map[uint8]string{
		0x00: "CONFIG DATA",
		0x01: "MAX/MIN PRICES",
	}},
	0x2: {Name: "POLL"},
	0x3: {Name: "VEND", subs: map[uint8]string{
		0x00: "VEND REQUEST",
		0x01: "VEND CANCEL",
		0x02: "VEND SUCCESS",
		0x03: "VEND FAILURE",
		0x04: "SESSION COMPLETE",
		0x05: "CASH SALE",
		0x06: "NEGATIVE VEND REQUEST",
	}},
	0x4: {Name: "READER", subs: map[uint8]string{
		0x00: "READER DISABLE",
		0x01: "READER ENABLE",
		0x02: "READER CANCEL",
		0x03: "DATA ENTRY RESPONSE",
	}},
	0x5: {Name: "REVALUE", subs: map[uint8]string{
		0x00: "REVALUE REQUEST",
		0x01: "REVALUE LIMIT REQUEST",
	}},
	0x7: {Name: "EXPANSION", subs: withFTL(map[uint8]string{
		0x00: "REQUEST ID",
		0x01: "READ USER FILE",
		0x02: "WRITE USER FILE",
		0x03: "WRITE TIME/DATE FILE",
		0x04: "OPTIONAL FEATURE ENABLED",
	})},
}

var usd = map[uint8]Command{
	0x0: {Name: "RESET"},
	0x1: {Name: "SETUP"},
	0x2: {Name: "POLL"},
	0x3: {Name: "VEND", subs: map[uint8]string{
		0x00: "VEND APPROVED",
		0x01: "VEND DISAPPROVED",
	}},
	0x4: {Name: "FUNDS", subs: map[uint8]string{
		0x00: "FUNDS CREDIT",
		0x01: "FUNDS SELECTION PRICE",
	}},
	0x5: {Name: "CONTROL", subs: map[uint8]string{
		0x00: "DISABLE",
		0x01: "ENABLE",
	}},
	0x7: {Name: "EXPANSION", subs: basicExpansion},
}

var dispenser = map[uint8]Command{
	0x0: {Name: "RESET"},
	0x1: {Name: "SETUP"},
	0x2: {Name: "DISPENSER STATUS"},
	0x3: {Name: "POLL"},
	0x4: {Name: "MANUAL DISPENSE ENABLE"},
	0x5: {Name: "DISPENSE COINS"},
	0x6: {Name: "PAYOUT VALUE"},
	0x7: {Name: "EXPANSION", subs: basicExpansion},
}

var changerExpansion = withFTL(map[uint8]string{
	0x00: "IDENTIFICATION",
	0x01: "FEATURE ENABLE",
	0x02: "PAYOUT",
	0x03: "PAYOUT STATUS",
	0x04: "PAYOUT VALUE POLL",
	0x05: "SEND DIAGNOSTIC STATUS",
	0x06: "SEND CONTROLLED MANUAL FILL REPORT",
	0x07: "SEND CONTROLLED MANUAL PAYOUT REPORT",
})

var billExpansion = withFTL(map[uint8]string{
	0x00: "LEVEL 1 IDENTIFICATION",
	0x01: "LEVEL 2 FEATURE ENABLE",
	0x02: "LEVEL 2 IDENTIFICATION",
	0x03: "RECYCLER SETUP",
	0x04: "RECYCLER ENABLE",
	0x05: "BILL DISPENSE STATUS",
	0x06: "DISPENSE BILL",
	0x07: "DISPENSE VALUE",
	0x08: "PAYOUT STATUS",
	0x09: "PAYOUT VALUE POLL",
	0x0a: "PAYOUT CANCEL",
})

var basicExpansion = withFTL(map[uint8]string{
	0x00: "IDENTIFICATION",
	0x01: "FEATURE ENABLE",
})

// withFTL adds the file transport layer sub-commands shared by most
// EXPANSION commands.
func withFTL(subs map[uint8]string) map[uint8]string {
	subs[0xfa] = "FTL REQ TO RCV"
	subs[0xfb] = "FTL RETRY/DENY"
	subs[0xfc] = "FTL SEND BLOCK"
	subs[0xfd] = "FTL OK TO SEND"
	subs[0xfe] = "FTL REQ TO SEND"
	subs[0xff] = "DIAGNOSTICS"
	return subs
}
