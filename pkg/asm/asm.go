// Package asm builds 6502 machine code from a symbolic instruction stream.
// Lines are appended in emission order, may reference labels that are not
// defined yet, and are resolved to bytes by a two-pass Assemble.
package asm

import (
	"errors"
	"fmt"

	"goc64/pkg/mos6502"
	"goc64/pkg/petscii"
)

var (
	ErrUnknownLabel     = errors.New("asm: unknown label")
	ErrDuplicateLabel   = errors.New("asm: duplicate label")
	ErrBranchOutOfRange = errors.New("asm: branch out of range")
	ErrOriginBackward   = errors.New("asm: cannot move origin backward")
)

type lineKind uint8

const (
	kindBlank lineKind = iota
	kindComment
	kindLabel
	kindInstr
	kindData
	kindOrg
)

// operandSel picks which part of a resolved label address an instruction
// operand uses. Immediate loads of an address take it one byte at a time.
type operandSel uint8

const (
	selWord operandSel = iota
	selLow
	selHigh
)

type line struct {
	kind lineKind
	addr uint16 // stamped by the resolution pass

	name string // label definition or comment text

	op      mos6502.Op
	mode    mos6502.Mode
	operand uint16 // resolved operand, or offset added to ref's address
	ref     string // label reference; empty when operand is already resolved
	sel     operandSel
	comment string

	data []byte
}

// Assembler accumulates symbolic lines and resolves them against a base
// address. It is owned by a single generator; construction errors stick
// to the instance and surface from Assemble.
type Assembler struct {
	base   uint16
	cursor uint16
	lines  []line
	labels map[string]uint16
	err    error
}

func New(base uint16) *Assembler {
	return &Assembler{
		base:   base,
		cursor: base,
		labels: make(map[string]uint16),
	}
}

// Base returns the address the first line assembles at.
func (a *Assembler) Base() uint16 {
	return a.base
}

func (a *Assembler) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// Label defines name at the current cursor position. The recorded address
// is a placeholder until the resolution pass rewrites it.
func (a *Assembler) Label(name string) {
	if _, exists := a.labels[name]; exists {
		a.fail(fmt.Errorf("%w: %q defined twice", ErrDuplicateLabel, name))
		return
	}
	a.labels[name] = a.cursor
	a.lines = append(a.lines, line{kind: kindLabel, name: name})
}

// Emit appends an instruction without an operand (implied or accumulator
// mode).
func (a *Assembler) Emit(op mos6502.Op, mode mos6502.Mode) {
	a.emit(line{kind: kindInstr, op: op, mode: mode})
}

// EmitOperand appends an instruction with a resolved numeric operand.
func (a *Assembler) EmitOperand(op mos6502.Op, mode mos6502.Mode, operand uint16) {
	a.emit(line{kind: kindInstr, op: op, mode: mode, operand: operand})
}

// EmitRef appends an instruction whose operand is the address of label,
// looked up during the emission pass.
func (a *Assembler) EmitRef(op mos6502.Op, mode mos6502.Mode, label string) {
	a.emit(line{kind: kindInstr, op: op, mode: mode, ref: label})
}

// EmitRefOffset appends an instruction whose operand is the address of
// label plus a fixed byte offset (for the high half of word storage).
func (a *Assembler) EmitRefOffset(op mos6502.Op, mode mos6502.Mode, label string, offset uint16) {
	a.emit(line{kind: kindInstr, op: op, mode: mode, ref: label, operand: offset})
}

// EmitRefLow appends an immediate instruction taking the low byte of a
// label's address.
func (a *Assembler) EmitRefLow(op mos6502.Op, label string) {
	a.emit(line{kind: kindInstr, op: op, mode: mos6502.Immediate, ref: label, sel: selLow})
}

// EmitRefHigh appends an immediate instruction taking the high byte of a
// label's address.
func (a *Assembler) EmitRefHigh(op mos6502.Op, label string) {
	a.emit(line{kind: kindInstr, op: op, mode: mos6502.Immediate, ref: label, sel: selHigh})
}

func (a *Assembler) emit(ln line) {
	if _, err := mos6502.Encode(ln.op, ln.mode); err != nil {
		a.fail(err)
		return
	}
	a.lines = append(a.lines, ln)
	a.cursor += uint16(mos6502.Size(ln.mode))
}

// Annotate attaches a comment to the most recently appended line.
func (a *Assembler) Annotate(format string, args ...any) {
	if len(a.lines) == 0 {
		return
	}
	a.lines[len(a.lines)-1].comment = fmt.Sprintf(format, args...)
}

// Comment appends a standalone comment line.
func (a *Assembler) Comment(format string, args ...any) {
	a.lines = append(a.lines, line{kind: kindComment, name: fmt.Sprintf(format, args...)})
}

// Blank appends an empty separator line.
func (a *Assembler) Blank() {
	a.lines = append(a.lines, line{kind: kindBlank})
}

// Bytes appends raw data bytes.
func (a *Assembler) Bytes(data ...byte) {
	a.lines = append(a.lines, line{kind: kindData, data: data})
	a.cursor += uint16(len(data))
}

// Word appends a 16-bit value, little-endian.
func (a *Assembler) Word(v uint16) {
	a.Bytes(byte(v&0xFF), byte(v>>8))
}

// String appends s in PETSCII, terminated by a zero byte.
func (a *Assembler) String(s string) {
	a.Bytes(append(petscii.Encode(s), 0x00)...)
}

// Reserve appends n zero bytes.
func (a *Assembler) Reserve(n int) {
	a.Bytes(make([]byte, n)...)
}

// Org moves the cursor to an explicit address. The gap is zero-filled in
// the output; moving backward is an error.
func (a *Assembler) Org(addr uint16) {
	if addr < a.cursor {
		a.fail(fmt.Errorf("%w: cursor $%04X, origin $%04X", ErrOriginBackward, a.cursor, addr))
		return
	}
	a.lines = append(a.lines, line{kind: kindOrg, operand: addr})
	a.cursor = addr
}

// AddressOf returns the resolved address of a label.
func (a *Assembler) AddressOf(label string) (uint16, error) {
	addr, ok := a.labels[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return addr, nil
}

// Assemble resolves the line list into machine code. Pass one walks the
// lines with a running address, records the final address of every label
// and stamps every line; pass two encodes opcodes and operands, computing
// relative branch displacements from the resolved label table.
func (a *Assembler) Assemble() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}

	// Resolution pass.
	addr := a.base
	for i := range a.lines {
		ln := &a.lines[i]
		ln.addr = addr
		switch ln.kind {
		case kindLabel:
			a.labels[ln.name] = addr
		case kindInstr:
			addr += uint16(mos6502.Size(ln.mode))
		case kindData:
			addr += uint16(len(ln.data))
		case kindOrg:
			addr = ln.operand
		}
	}

	// Emission pass.
	out := make([]byte, 0, int(addr)-int(a.base))
	for _, ln := range a.lines {
		switch ln.kind {
		case kindOrg:
			for uint16(len(out)) < ln.operand-a.base {
				out = append(out, 0x00)
			}

		case kindData:
			out = append(out, ln.data...)

		case kindInstr:
			opcode, err := mos6502.Encode(ln.op, ln.mode)
			if err != nil {
				return nil, err
			}
			out = append(out, opcode)

			operand := ln.operand
			if ln.ref != "" {
				target, err := a.AddressOf(ln.ref)
				if err != nil {
					return nil, fmt.Errorf("%s at $%04X: %w", ln.op, ln.addr, err)
				}
				operand = target + ln.operand
			}
			switch ln.sel {
			case selLow:
				operand &= 0x00FF
			case selHigh:
				operand >>= 8
			}

			switch mos6502.Size(ln.mode) {
			case 1:
				// opcode only
			case 2:
				if ln.mode == mos6502.Relative {
					offset := int(operand) - (int(ln.addr) + 2)
					if offset < -128 || offset > 127 {
						return nil, fmt.Errorf("%w: %s at $%04X to %q ($%04X), offset %d",
							ErrBranchOutOfRange, ln.op, ln.addr, ln.ref, operand, offset)
					}
					out = append(out, byte(int8(offset)))
				} else {
					out = append(out, byte(operand&0xFF))
				}
			case 3:
				out = append(out, byte(operand&0xFF), byte(operand>>8))
			}
		}
	}

	return out, nil
}
