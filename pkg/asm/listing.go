package asm

import (
	"fmt"
	"strings"

	"goc64/pkg/mos6502"
)

// Listing renders the line list as readable assembly text. Addresses are
// meaningful after Assemble has run; before that they show the placeholder
// values from construction.
func (a *Assembler) Listing() string {
	var b strings.Builder
	for _, ln := range a.lines {
		switch ln.kind {
		case kindBlank:
			b.WriteByte('\n')
		case kindComment:
			fmt.Fprintf(&b, "; %s\n", ln.name)
		case kindOrg:
			fmt.Fprintf(&b, "* = $%04X\n", ln.operand)
		case kindLabel:
			fmt.Fprintf(&b, "%s:\n", ln.name)
		case kindData:
			fmt.Fprintf(&b, "    $%04X  .byte %s\n", ln.addr, hexBytes(ln.data))
		case kindInstr:
			text := ln.op.String()
			if operand := a.operandText(ln); operand != "" {
				text += " " + operand
			}
			if ln.comment != "" {
				fmt.Fprintf(&b, "    $%04X  %-16s ; %s\n", ln.addr, text, ln.comment)
			} else {
				fmt.Fprintf(&b, "    $%04X  %s\n", ln.addr, text)
			}
		}
	}
	return b.String()
}

func (a *Assembler) operandText(ln line) string {
	target := func() string {
		if ln.ref != "" {
			if ln.operand != 0 {
				return fmt.Sprintf("%s+%d", ln.ref, ln.operand)
			}
			return ln.ref
		}
		return fmt.Sprintf("$%04X", ln.operand)
	}

	switch ln.mode {
	case mos6502.Implied:
		return ""
	case mos6502.Accumulator:
		return "A"
	case mos6502.Immediate:
		switch ln.sel {
		case selLow:
			return "#<" + ln.ref
		case selHigh:
			return "#>" + ln.ref
		}
		return fmt.Sprintf("#$%02X", ln.operand&0xFF)
	case mos6502.ZeroPage:
		return fmt.Sprintf("$%02X", ln.operand&0xFF)
	case mos6502.ZeroPageX:
		return fmt.Sprintf("$%02X,X", ln.operand&0xFF)
	case mos6502.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", ln.operand&0xFF)
	case mos6502.Absolute:
		return target()
	case mos6502.AbsoluteX:
		return target() + ",X"
	case mos6502.AbsoluteY:
		return target() + ",Y"
	case mos6502.Indirect:
		return "(" + target() + ")"
	case mos6502.IndirectX:
		return fmt.Sprintf("($%02X,X)", ln.operand&0xFF)
	case mos6502.IndirectY:
		return fmt.Sprintf("($%02X),Y", ln.operand&0xFF)
	case mos6502.Relative:
		return target()
	}
	return ""
}

func hexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, v := range data {
		parts[i] = fmt.Sprintf("$%02X", v)
	}
	return strings.Join(parts, ", ")
}
