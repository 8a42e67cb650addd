// Package mos6502 models the instruction set of the MOS 6502: every legal
// (operation, addressing mode) pair, its one-byte opcode and its length.
package mos6502

import (
	"errors"
	"fmt"
)

// Op is a 6502 operation mnemonic.
type Op uint8

const (
	ADC Op = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

var opNames = [...]string{
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL", BRK: "BRK", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR",
	INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA", PHA: "PHA",
	PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL", ROR: "ROR", RTI: "RTI",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Mode is an operand addressing mode.
type Mode uint8

const (
	Implied     Mode = iota // no operand
	Accumulator             // A
	Immediate               // #nn
	ZeroPage                // nn
	ZeroPageX               // nn,X
	ZeroPageY               // nn,Y
	Absolute                // nnnn
	AbsoluteX               // nnnn,X
	AbsoluteY               // nnnn,Y
	Indirect                // (nnnn)
	IndirectX               // (nn,X)
	IndirectY               // (nn),Y
	Relative                // signed 8-bit displacement
)

var modeNames = [...]string{
	Implied:     "implied",
	Accumulator: "accumulator",
	Immediate:   "immediate",
	ZeroPage:    "zeropage",
	ZeroPageX:   "zeropage,X",
	ZeroPageY:   "zeropage,Y",
	Absolute:    "absolute",
	AbsoluteX:   "absolute,X",
	AbsoluteY:   "absolute,Y",
	Indirect:    "indirect",
	IndirectX:   "(indirect,X)",
	IndirectY:   "(indirect),Y",
	Relative:    "relative",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Size returns the total instruction length in bytes for a mode,
// opcode byte included.
func Size(m Mode) int {
	switch m {
	case Implied, Accumulator:
		return 1
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, Relative:
		return 2
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	}
	return 0
}

// ErrUnsupportedEncoding is returned by Encode for an (op, mode) pair the
// 6502 does not implement.
var ErrUnsupportedEncoding = errors.New("mos6502: unsupported encoding")

// encodings lists every documented opcode, keyed by operation then mode.
var encodings = map[Op]map[Mode]byte{
	ADC: {Immediate: 0x69, ZeroPage: 0x65, ZeroPageX: 0x75, Absolute: 0x6D, AbsoluteX: 0x7D, AbsoluteY: 0x79, IndirectX: 0x61, IndirectY: 0x71},
	AND: {Immediate: 0x29, ZeroPage: 0x25, ZeroPageX: 0x35, Absolute: 0x2D, AbsoluteX: 0x3D, AbsoluteY: 0x39, IndirectX: 0x21, IndirectY: 0x31},
	ASL: {Accumulator: 0x0A, ZeroPage: 0x06, ZeroPageX: 0x16, Absolute: 0x0E, AbsoluteX: 0x1E},
	BCC: {Relative: 0x90},
	BCS: {Relative: 0xB0},
	BEQ: {Relative: 0xF0},
	BIT: {ZeroPage: 0x24, Absolute: 0x2C},
	BMI: {Relative: 0x30},
	BNE: {Relative: 0xD0},
	BPL: {Relative: 0x10},
	BRK: {Implied: 0x00},
	BVC: {Relative: 0x50},
	BVS: {Relative: 0x70},
	CLC: {Implied: 0x18},
	CLD: {Implied: 0xD8},
	CLI: {Implied: 0x58},
	CLV: {Implied: 0xB8},
	CMP: {Immediate: 0xC9, ZeroPage: 0xC5, ZeroPageX: 0xD5, Absolute: 0xCD, AbsoluteX: 0xDD, AbsoluteY: 0xD9, IndirectX: 0xC1, IndirectY: 0xD1},
	CPX: {Immediate: 0xE0, ZeroPage: 0xE4, Absolute: 0xEC},
	CPY: {Immediate: 0xC0, ZeroPage: 0xC4, Absolute: 0xCC},
	DEC: {ZeroPage: 0xC6, ZeroPageX: 0xD6, Absolute: 0xCE, AbsoluteX: 0xDE},
	DEX: {Implied: 0xCA},
	DEY: {Implied: 0x88},
	EOR: {Immediate: 0x49, ZeroPage: 0x45, ZeroPageX: 0x55, Absolute: 0x4D, AbsoluteX: 0x5D, AbsoluteY: 0x59, IndirectX: 0x41, IndirectY: 0x51},
	INC: {ZeroPage: 0xE6, ZeroPageX: 0xF6, Absolute: 0xEE, AbsoluteX: 0xFE},
	INX: {Implied: 0xE8},
	INY: {Implied: 0xC8},
	JMP: {Absolute: 0x4C, Indirect: 0x6C},
	JSR: {Absolute: 0x20},
	LDA: {Immediate: 0xA9, ZeroPage: 0xA5, ZeroPageX: 0xB5, Absolute: 0xAD, AbsoluteX: 0xBD, AbsoluteY: 0xB9, IndirectX: 0xA1, IndirectY: 0xB1},
	LDX: {Immediate: 0xA2, ZeroPage: 0xA6, ZeroPageY: 0xB6, Absolute: 0xAE, AbsoluteY: 0xBE},
	LDY: {Immediate: 0xA0, ZeroPage: 0xA4, ZeroPageX: 0xB4, Absolute: 0xAC, AbsoluteX: 0xBC},
	LSR: {Accumulator: 0x4A, ZeroPage: 0x46, ZeroPageX: 0x56, Absolute: 0x4E, AbsoluteX: 0x5E},
	NOP: {Implied: 0xEA},
	ORA: {Immediate: 0x09, ZeroPage: 0x05, ZeroPageX: 0x15, Absolute: 0x0D, AbsoluteX: 0x1D, AbsoluteY: 0x19, IndirectX: 0x01, IndirectY: 0x11},
	PHA: {Implied: 0x48},
	PHP: {Implied: 0x08},
	PLA: {Implied: 0x68},
	PLP: {Implied: 0x28},
	ROL: {Accumulator: 0x2A, ZeroPage: 0x26, ZeroPageX: 0x36, Absolute: 0x2E, AbsoluteX: 0x3E},
	ROR: {Accumulator: 0x6A, ZeroPage: 0x66, ZeroPageX: 0x76, Absolute: 0x6E, AbsoluteX: 0x7E},
	RTI: {Implied: 0x40},
	RTS: {Implied: 0x60},
	SBC: {Immediate: 0xE9, ZeroPage: 0xE5, ZeroPageX: 0xF5, Absolute: 0xED, AbsoluteX: 0xFD, AbsoluteY: 0xF9, IndirectX: 0xE1, IndirectY: 0xF1},
	SEC: {Implied: 0x38},
	SED: {Implied: 0xF8},
	SEI: {Implied: 0x78},
	STA: {ZeroPage: 0x85, ZeroPageX: 0x95, Absolute: 0x8D, AbsoluteX: 0x9D, AbsoluteY: 0x99, IndirectX: 0x81, IndirectY: 0x91},
	STX: {ZeroPage: 0x86, ZeroPageY: 0x96, Absolute: 0x8E},
	STY: {ZeroPage: 0x84, ZeroPageX: 0x94, Absolute: 0x8C},
	TAX: {Implied: 0xAA},
	TAY: {Implied: 0xA8},
	TSX: {Implied: 0xBA},
	TXA: {Implied: 0x8A},
	TXS: {Implied: 0x9A},
	TYA: {Implied: 0x98},
}

// Encode returns the opcode byte for an (op, mode) pair.
func Encode(op Op, m Mode) (byte, error) {
	modes, ok := encodings[op]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrUnsupportedEncoding, op, m)
	}
	code, ok := modes[m]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrUnsupportedEncoding, op, m)
	}
	return code, nil
}
