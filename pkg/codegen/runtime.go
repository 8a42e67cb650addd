package codegen

import (
	"goc64/pkg/mos6502"
	"goc64/pkg/petscii"
)

// Zero-page scratch slots used as software registers. All 16-bit
// arithmetic routes through zpResult and zpTemp; 8-bit values live in the
// hardware accumulator.
const (
	zpStack  = 0x02 // software stack pointer, lo/hi
	zpResult = 0x04 // 16-bit result register
	zpTemp   = 0x06 // 16-bit scratch
	zpPtr1   = 0x08 // general pointer, string/indirect loads
	zpPtr2   = 0x0A // general pointer, multiply scratch
	zpFrame  = 0x0C // frame pointer
)

// The software stack grows down from just under the I/O area.
const stackTop = 0xD000

// KERNAL entry points and hardware registers.
const (
	kernalChrout  = 0xFFD2
	kernalGetin   = 0xFFE4
	borderReg     = 0xD020
	backgroundReg = 0xD021
)

const chrClear = 0x93 // PETSCII clear-screen control code

// Runtime routine labels. Emitted once, shared by every call site.
const (
	rtPrintStr = "rt_print_str"
	rtPrintNl  = "rt_print_nl"
	rtWaitKey  = "rt_wait_key"
	rtClear    = "rt_clear"
	rtAdd16    = "rt_add16"
	rtSub16    = "rt_sub16"
	rtMul8     = "rt_mul8"
	rtCmp16    = "rt_cmp16"
)

// genRuntime emits the fixed support routines every program carries.
func (cg *CodeGen) genRuntime() {
	a := cg.asm

	// Print the zero-terminated string at zpPtr1. The Y index wraps at
	// 256, at which point the pointer's high byte advances so strings
	// longer than a page still print.
	a.Comment("print string at ptr1")
	a.Label(rtPrintStr)
	a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
	a.Label("rt_print_str_loop")
	a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpPtr1)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, "rt_print_str_done")
	a.EmitOperand(mos6502.JSR, mos6502.Absolute, kernalChrout)
	a.Emit(mos6502.INY, mos6502.Implied)
	a.EmitRef(mos6502.BNE, mos6502.Relative, "rt_print_str_loop")
	a.EmitOperand(mos6502.INC, mos6502.ZeroPage, zpPtr1+1)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "rt_print_str_loop")
	a.Label("rt_print_str_done")
	a.Emit(mos6502.RTS, mos6502.Implied)

	a.Comment("print newline")
	a.Label(rtPrintNl)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, petscii.Newline)
	a.EmitOperand(mos6502.JSR, mos6502.Absolute, kernalChrout)
	a.Emit(mos6502.RTS, mos6502.Implied)

	a.Comment("block until keypress, key in A")
	a.Label(rtWaitKey)
	a.EmitOperand(mos6502.JSR, mos6502.Absolute, kernalGetin)
	a.EmitOperand(mos6502.CMP, mos6502.Immediate, 0x00)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, rtWaitKey)
	a.Emit(mos6502.RTS, mos6502.Implied)

	a.Comment("clear screen")
	a.Label(rtClear)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, chrClear)
	a.EmitOperand(mos6502.JSR, mos6502.Absolute, kernalChrout)
	a.Emit(mos6502.RTS, mos6502.Implied)

	a.Comment("result += temp")
	a.Label(rtAdd16)
	a.Emit(mos6502.CLC, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.ADC, mos6502.ZeroPage, zpTemp)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.EmitOperand(mos6502.ADC, mos6502.ZeroPage, zpTemp+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
	a.Emit(mos6502.RTS, mos6502.Implied)

	a.Comment("result -= temp")
	a.Label(rtSub16)
	a.Emit(mos6502.SEC, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpTemp)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpTemp+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
	a.Emit(mos6502.RTS, mos6502.Implied)

	// result = result.lo * temp.lo, by repeated addition: temp.lo counts
	// down to zero while the multiplicand accumulates into result.
	a.Comment("result = result.lo * temp.lo")
	a.Label(rtMul8)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpPtr2)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
	a.Label("rt_mul8_loop")
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, "rt_mul8_done")
	a.EmitOperand(mos6502.DEC, mos6502.ZeroPage, zpTemp)
	a.Emit(mos6502.CLC, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.ADC, mos6502.ZeroPage, zpPtr2)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
	a.EmitRef(mos6502.BCC, mos6502.Relative, "rt_mul8_loop")
	a.EmitOperand(mos6502.INC, mos6502.ZeroPage, zpResult+1)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "rt_mul8_loop")
	a.Label("rt_mul8_done")
	a.Emit(mos6502.RTS, mos6502.Implied)

	// Compare result against temp, leaving the processor flags set the
	// way CMP would. High bytes decide unless they match.
	a.Comment("compare result with temp")
	a.Label(rtCmp16)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.EmitOperand(mos6502.CMP, mos6502.ZeroPage, zpTemp+1)
	a.EmitRef(mos6502.BNE, mos6502.Relative, "rt_cmp16_done")
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.CMP, mos6502.ZeroPage, zpTemp)
	a.Label("rt_cmp16_done")
	a.Emit(mos6502.RTS, mos6502.Implied)
}
