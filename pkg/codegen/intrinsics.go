package codegen

import (
	"fmt"

	"goc64/pkg/ir"
	"goc64/pkg/mos6502"
)

// genCall dispatches a call node: built-in routines first, then program
// functions. Calls to names the program never defines emit nothing.
func (cg *CodeGen) genCall(n *ir.Call) error {
	handled, err := cg.genIntrinsic(n)
	if handled || err != nil {
		return err
	}

	fn := cg.prog.Function(n.Name)
	if fn == nil {
		return nil
	}
	if len(n.Args) > 0 {
		// Single-argument convention: byte in A, word in the result
		// register; the callee spills it into its frame. Caller and
		// callee must agree on the width or the spill reads the wrong
		// register.
		if len(fn.Params) > 0 {
			at, pt := ir.TypeOf(n.Args[0]), fn.Params[0].Type
			if at.Size() != pt.Size() {
				return fmt.Errorf("%w: %s passes %s, %s expects %s",
					ErrArgumentWidth, n.Name, at, fn.Params[0].Name, pt)
			}
		}
		if err := cg.genExpr(n.Args[0]); err != nil {
			return err
		}
	}
	cg.asm.EmitRef(mos6502.JSR, mos6502.Absolute, fnLabel(n.Name))
	return nil
}

// genIntrinsic emits a built-in routine call, reporting whether the name
// matched one.
func (cg *CodeGen) genIntrinsic(n *ir.Call) (bool, error) {
	a := cg.asm
	arity := func(want int) error {
		if len(n.Args) != want {
			return fmt.Errorf("codegen: %s takes %d argument(s), got %d", n.Name, want, len(n.Args))
		}
		return nil
	}

	switch n.Name {

	case "print":
		if err := arity(1); err != nil {
			return true, err
		}
		if err := cg.genExprWord(n.Args[0]); err != nil {
			return true, err
		}
		cg.resultToPtr1()
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtPrintStr)

	case "println":
		if len(n.Args) > 1 {
			return true, fmt.Errorf("codegen: println takes at most one argument, got %d", len(n.Args))
		}
		if len(n.Args) == 1 {
			if err := cg.genExprWord(n.Args[0]); err != nil {
				return true, err
			}
			cg.resultToPtr1()
			a.EmitRef(mos6502.JSR, mos6502.Absolute, rtPrintStr)
		}
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtPrintNl)

	case "printchar":
		if err := arity(1); err != nil {
			return true, err
		}
		if err := cg.genExpr(n.Args[0]); err != nil {
			return true, err
		}
		a.EmitOperand(mos6502.JSR, mos6502.Absolute, kernalChrout)

	case "clearscreen":
		if err := arity(0); err != nil {
			return true, err
		}
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtClear)

	case "waitkey":
		if err := arity(0); err != nil {
			return true, err
		}
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtWaitKey)

	case "peek":
		if err := arity(1); err != nil {
			return true, err
		}
		if err := cg.genExprWord(n.Args[0]); err != nil {
			return true, err
		}
		cg.resultToPtr1()
		a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
		a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpPtr1)

	case "poke":
		if err := arity(2); err != nil {
			return true, err
		}
		if err := cg.genExprWord(n.Args[0]); err != nil {
			return true, err
		}
		cg.pushResult()
		if err := cg.genExpr(n.Args[1]); err != nil {
			return true, err
		}
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
		cg.popTo(zpPtr1)
		a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
		a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpPtr1)

	case "border":
		if err := arity(1); err != nil {
			return true, err
		}
		if err := cg.genExpr(n.Args[0]); err != nil {
			return true, err
		}
		a.EmitOperand(mos6502.STA, mos6502.Absolute, borderReg)

	case "background":
		if err := arity(1); err != nil {
			return true, err
		}
		if err := cg.genExpr(n.Args[0]); err != nil {
			return true, err
		}
		a.EmitOperand(mos6502.STA, mos6502.Absolute, backgroundReg)

	default:
		return false, nil
	}
	return true, nil
}
