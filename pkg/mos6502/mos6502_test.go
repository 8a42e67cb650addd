package mos6502

import (
	"errors"
	"testing"
)

func TestSize(t *testing.T) {
	tests := []struct {
		mode Mode
		want int
	}{
		{Implied, 1},
		{Accumulator, 1},
		{Immediate, 2},
		{ZeroPage, 2},
		{ZeroPageX, 2},
		{ZeroPageY, 2},
		{IndirectX, 2},
		{IndirectY, 2},
		{Relative, 2},
		{Absolute, 3},
		{AbsoluteX, 3},
		{AbsoluteY, 3},
		{Indirect, 3},
	}
	for _, tc := range tests {
		if got := Size(tc.mode); got != tc.want {
			t.Errorf("Size(%s) = %d; want %d", tc.mode, got, tc.want)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		op   Op
		mode Mode
		want byte
	}{
		{BRK, Implied, 0x00},
		{LDA, Immediate, 0xA9},
		{LDA, ZeroPage, 0xA5},
		{LDA, Absolute, 0xAD},
		{LDA, AbsoluteX, 0xBD},
		{LDA, IndirectY, 0xB1},
		{STA, ZeroPage, 0x85},
		{STA, Absolute, 0x8D},
		{STA, IndirectY, 0x91},
		{LDX, ZeroPageY, 0xB6},
		{LDY, Immediate, 0xA0},
		{ADC, Immediate, 0x69},
		{ADC, IndirectX, 0x61},
		{SBC, ZeroPage, 0xE5},
		{CMP, Immediate, 0xC9},
		{ASL, Accumulator, 0x0A},
		{ROL, ZeroPage, 0x26},
		{JMP, Absolute, 0x4C},
		{JMP, Indirect, 0x6C},
		{JSR, Absolute, 0x20},
		{RTS, Implied, 0x60},
		{BEQ, Relative, 0xF0},
		{BNE, Relative, 0xD0},
		{BCC, Relative, 0x90},
		{BMI, Relative, 0x30},
		{PHA, Implied, 0x48},
		{PLA, Implied, 0x68},
		{INY, Implied, 0xC8},
		{SEC, Implied, 0x38},
		{CLC, Implied, 0x18},
		{EOR, Immediate, 0x49},
		{ORA, ZeroPage, 0x05},
	}
	for _, tc := range tests {
		got, err := Encode(tc.op, tc.mode)
		if err != nil {
			t.Errorf("Encode(%s, %s) failed: %v", tc.op, tc.mode, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Encode(%s, %s) = $%02X; want $%02X", tc.op, tc.mode, got, tc.want)
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	tests := []struct {
		op   Op
		mode Mode
	}{
		{LDA, Implied},
		{STA, Immediate},
		{JMP, ZeroPage},
		{RTS, Absolute},
		{BEQ, Absolute},
		{INX, Immediate},
	}
	for _, tc := range tests {
		if _, err := Encode(tc.op, tc.mode); !errors.Is(err, ErrUnsupportedEncoding) {
			t.Errorf("Encode(%s, %s) = %v; want ErrUnsupportedEncoding", tc.op, tc.mode, err)
		}
	}
}

// Every table entry must agree with the mode's declared size; relative
// branches only pair with branch ops, and jumps only with JMP.
func TestEncodingTableConsistency(t *testing.T) {
	branches := map[Op]bool{
		BCC: true, BCS: true, BEQ: true, BNE: true,
		BMI: true, BPL: true, BVC: true, BVS: true,
	}
	for op, modes := range encodings {
		for mode := range modes {
			if Size(mode) == 0 {
				t.Errorf("%s %s: mode has no size", op, mode)
			}
			if (mode == Relative) != branches[op] {
				t.Errorf("%s %s: relative mode and branch op mismatch", op, mode)
			}
			if mode == Indirect && op != JMP {
				t.Errorf("%s: only JMP supports indirect", op)
			}
		}
	}
}

func TestOpcodeTableUnique(t *testing.T) {
	seen := map[byte]string{}
	for op, modes := range encodings {
		for mode, code := range modes {
			key := op.String() + " " + mode.String()
			if prev, dup := seen[code]; dup {
				t.Errorf("opcode $%02X assigned to both %s and %s", code, prev, key)
			}
			seen[code] = key
		}
	}
	if len(seen) != 151 {
		t.Errorf("table has %d opcodes; want 151", len(seen))
	}
}
