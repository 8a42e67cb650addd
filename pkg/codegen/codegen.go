// Package codegen lowers the typed IR to a 6502 instruction stream and
// assembles it into machine code for the C64.
package codegen

import (
	"errors"
	"fmt"

	"goc64/pkg/asm"
	"goc64/pkg/ir"
	"goc64/pkg/mos6502"
)

var (
	ErrNoEntry       = errors.New("codegen: program has no entry function")
	ErrLoopControl   = errors.New("codegen: break or continue outside loop")
	ErrMissingReturn = errors.New("codegen: non-void function does not end in return")
	ErrArgumentWidth = errors.New("codegen: argument width does not match parameter")
)

type loopLabels struct {
	cont string
	brk  string
}

// CodeGen walks a Program and emits symbolic instructions through an
// Assembler. One instance per compilation; the label counter starts at
// zero so identical input yields identical output.
type CodeGen struct {
	prog      *ir.Program
	asm       *asm.Assembler
	nextLabel int
	loopStack []loopLabels
	frameSize int
}

func New(prog *ir.Program, base uint16) *CodeGen {
	return &CodeGen{prog: prog, asm: asm.New(base)}
}

func (cg *CodeGen) newLabel() string {
	l := fmt.Sprintf("L%d", cg.nextLabel)
	cg.nextLabel++
	return l
}

func fnLabel(name string) string { return "fn_" + name }

func globalLabel(name string) string { return "var_" + name }

func stringLabel(i int) string { return fmt.Sprintf("str_%d", i) }

// Generate emits the whole program: start stub, runtime routines, string
// constants, global storage, function bodies, and a trailing halt loop.
func (cg *CodeGen) Generate() error {
	entry := cg.prog.Entry()
	if entry == nil {
		return ErrNoEntry
	}

	cg.genStartStub(entry)
	cg.genRuntime()
	cg.genStrings()
	cg.genGlobals()

	for _, fn := range cg.prog.Functions {
		if err := cg.genFunction(fn); err != nil {
			return err
		}
	}

	cg.asm.Blank()
	cg.asm.Label("halt")
	cg.asm.EmitRef(mos6502.JMP, mos6502.Absolute, "halt")
	return nil
}

// genStartStub emits the BASIC bootstrap line (10 SYS <addr>) followed by
// software stack setup and the jump into the entry function.
func (cg *CodeGen) genStartStub(entry *ir.Function) {
	a := cg.asm
	base := a.Base()

	// The SYS operand depends on the stub's own length, which depends on
	// the operand's digit count.
	digits := 4
	for {
		s := fmt.Sprintf("%d", int(base)+8+digits)
		if len(s) == digits {
			break
		}
		digits = len(s)
	}
	start := int(base) + 8 + digits

	a.Comment("BASIC bootstrap: 10 SYS %d", start)
	a.Word(base + 6 + uint16(digits)) // link to end-of-program marker
	a.Word(10)                        // line number
	a.Bytes(0x9E)                     // SYS token
	a.String(fmt.Sprintf("%d", start))
	a.Word(0) // end of BASIC program

	a.Comment("software stack setup")
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, stackTop&0xFF)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, stackTop>>8)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame+1)
	a.EmitRef(mos6502.JSR, mos6502.Absolute, fnLabel(entry.Name))
	a.Emit(mos6502.RTS, mos6502.Implied)
}

func (cg *CodeGen) genStrings() {
	if len(cg.prog.Strings) == 0 {
		return
	}
	cg.asm.Blank()
	cg.asm.Comment("string constants")
	for i, s := range cg.prog.Strings {
		cg.asm.Label(stringLabel(i))
		cg.asm.String(s)
	}
}

func (cg *CodeGen) genGlobals() {
	if len(cg.prog.Globals) == 0 {
		return
	}
	cg.asm.Blank()
	cg.asm.Comment("globals")
	for _, g := range cg.prog.Globals {
		cg.asm.Label(globalLabel(g.Name))
		switch {
		case !g.HasInit:
			cg.asm.Reserve(g.Type.Size())
		case g.Type.Size() == 1:
			cg.asm.Bytes(byte(g.Value))
		default:
			cg.asm.Word(g.Value)
		}
	}
}

func (cg *CodeGen) genFunction(fn *ir.Function) error {
	cg.frameSize = fn.FrameSize()
	a := cg.asm

	a.Blank()
	a.Comment("func %s", fn.Name)
	a.Label(fnLabel(fn.Name))

	if cg.frameSize > 0 {
		// The incoming argument sits in A (or the result register for
		// word types); keep it clear of the frame setup.
		stash := len(fn.Params) > 0 && fn.Params[0].Type.Size() == 1
		if stash {
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
		}
		cg.genPrologue()
		if len(fn.Params) > 0 {
			p := fn.Params[0]
			a.EmitOperand(mos6502.LDY, mos6502.Immediate, uint16(p.Offset))
			if stash {
				a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
				a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
			} else {
				a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
				a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
				a.Emit(mos6502.INY, mos6502.Implied)
				a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
				a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
			}
			a.Annotate("spill param %s", p.Name)
		}
	}

	for _, s := range fn.Body {
		if err := cg.genStmt(s); err != nil {
			return fmt.Errorf("%s: %w", fn.Name, err)
		}
	}

	if fn.Return == ir.Void {
		cg.genEpilogue()
		a.Emit(mos6502.RTS, mos6502.Implied)
	} else if !endsInReturn(fn.Body) {
		return fmt.Errorf("%w: %s", ErrMissingReturn, fn.Name)
	}
	return nil
}

// endsInReturn reports whether every path out of body ends in a Return.
func endsInReturn(body []ir.Statement) bool {
	if len(body) == 0 {
		return false
	}
	switch s := body[len(body)-1].(type) {
	case *ir.Return:
		return true
	case *ir.If:
		return len(s.Else) > 0 && endsInReturn(s.Then) && endsInReturn(s.Else)
	}
	return false
}

func (cg *CodeGen) genPrologue() {
	a := cg.asm
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpFrame)
	a.Emit(mos6502.PHA, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpFrame+1)
	a.Emit(mos6502.PHA, mos6502.Implied)
	a.Emit(mos6502.SEC, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpStack)
	a.EmitOperand(mos6502.SBC, mos6502.Immediate, uint16(cg.frameSize))
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpStack+1)
	a.EmitOperand(mos6502.SBC, mos6502.Immediate, 0x00)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame+1)
}

func (cg *CodeGen) genEpilogue() {
	if cg.frameSize == 0 {
		return
	}
	a := cg.asm
	a.Emit(mos6502.CLC, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpStack)
	a.EmitOperand(mos6502.ADC, mos6502.Immediate, uint16(cg.frameSize))
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpStack+1)
	a.EmitOperand(mos6502.ADC, mos6502.Immediate, 0x00)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpStack+1)
	a.Emit(mos6502.PLA, mos6502.Implied)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame+1)
	a.Emit(mos6502.PLA, mos6502.Implied)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpFrame)
}

// genStmt emits the instructions that carry out s.
func (cg *CodeGen) genStmt(s ir.Statement) error {
	a := cg.asm
	switch n := s.(type) {

	case *ir.ExprStmt:
		return cg.genExpr(n.X)

	case *ir.VarDecl:
		if n.Init == nil {
			return nil
		}
		if err := cg.genExpr(n.Init); err != nil {
			return err
		}
		cg.storeLocal(n.Var)

	case *ir.Assign:
		return cg.genAssign(n)

	case *ir.Return:
		stash := false
		if n.X != nil {
			if err := cg.genExpr(n.X); err != nil {
				return err
			}
			stash = ir.TypeOf(n.X).Size() == 1 && cg.frameSize > 0
		}
		if stash {
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
		}
		cg.genEpilogue()
		if stash {
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
		}
		a.Emit(mos6502.RTS, mos6502.Implied)

	case *ir.If:
		endL := cg.newLabel()
		elseL := endL
		if len(n.Else) > 0 {
			elseL = cg.newLabel()
		}
		if err := cg.genTest(n.Cond); err != nil {
			return err
		}
		a.EmitRef(mos6502.BEQ, mos6502.Relative, elseL)
		for _, st := range n.Then {
			if err := cg.genStmt(st); err != nil {
				return err
			}
		}
		if len(n.Else) > 0 {
			a.EmitRef(mos6502.JMP, mos6502.Absolute, endL)
			a.Label(elseL)
			for _, st := range n.Else {
				if err := cg.genStmt(st); err != nil {
					return err
				}
			}
		}
		a.Label(endL)

	case *ir.While:
		loopL := cg.newLabel()
		endL := cg.newLabel()
		cg.loopStack = append(cg.loopStack, loopLabels{cont: loopL, brk: endL})
		a.Label(loopL)
		if err := cg.genTest(n.Cond); err != nil {
			return err
		}
		a.EmitRef(mos6502.BEQ, mos6502.Relative, endL)
		for _, st := range n.Body {
			if err := cg.genStmt(st); err != nil {
				return err
			}
		}
		a.EmitRef(mos6502.JMP, mos6502.Absolute, loopL)
		a.Label(endL)
		cg.loopStack = cg.loopStack[:len(cg.loopStack)-1]

	case *ir.For:
		if n.Init != nil {
			if err := cg.genStmt(n.Init); err != nil {
				return err
			}
		}
		loopL := cg.newLabel()
		contL := cg.newLabel()
		endL := cg.newLabel()
		cg.loopStack = append(cg.loopStack, loopLabels{cont: contL, brk: endL})
		a.Label(loopL)
		if n.Cond != nil {
			if err := cg.genTest(n.Cond); err != nil {
				return err
			}
			a.EmitRef(mos6502.BEQ, mos6502.Relative, endL)
		}
		for _, st := range n.Body {
			if err := cg.genStmt(st); err != nil {
				return err
			}
		}
		a.Label(contL)
		if n.Post != nil {
			if err := cg.genStmt(n.Post); err != nil {
				return err
			}
		}
		a.EmitRef(mos6502.JMP, mos6502.Absolute, loopL)
		a.Label(endL)
		cg.loopStack = cg.loopStack[:len(cg.loopStack)-1]

	case *ir.Break:
		if len(cg.loopStack) == 0 {
			return fmt.Errorf("%w: break", ErrLoopControl)
		}
		a.EmitRef(mos6502.JMP, mos6502.Absolute, cg.loopStack[len(cg.loopStack)-1].brk)

	case *ir.Continue:
		if len(cg.loopStack) == 0 {
			return fmt.Errorf("%w: continue", ErrLoopControl)
		}
		a.EmitRef(mos6502.JMP, mos6502.Absolute, cg.loopStack[len(cg.loopStack)-1].cont)

	default:
		return fmt.Errorf("codegen: unknown statement node %T", s)
	}
	return nil
}

func (cg *CodeGen) genAssign(n *ir.Assign) error {
	a := cg.asm
	switch t := n.Target.(type) {

	case *ir.VarRef:
		if err := cg.genExpr(n.Value); err != nil {
			return err
		}
		if t.Global != nil {
			cg.storeGlobal(t.Global)
		} else {
			cg.storeLocal(t.Local)
		}
		return nil

	case *ir.Index, *ir.Deref:
		if err := cg.genAddress(n.Target); err != nil {
			return err
		}
		cg.pushResult()
		if err := cg.genExpr(n.Value); err != nil {
			return err
		}
		if ir.TypeOf(n.Value).Size() == 1 {
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
			cg.popTo(zpPtr1)
			a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
			a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpPtr1)
		} else {
			cg.popTo(zpPtr1)
			a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpPtr1)
			a.Emit(mos6502.INY, mos6502.Implied)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
			a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpPtr1)
		}
		return nil

	default:
		return fmt.Errorf("codegen: cannot assign to %T", n.Target)
	}
}

func (cg *CodeGen) storeLocal(v *ir.Local) {
	a := cg.asm
	a.EmitOperand(mos6502.LDY, mos6502.Immediate, uint16(v.Offset))
	if v.Type.Size() == 1 {
		a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
	} else {
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
		a.Emit(mos6502.INY, mos6502.Implied)
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
		a.EmitOperand(mos6502.STA, mos6502.IndirectY, zpFrame)
	}
	a.Annotate("store %s", v.Name)
}

func (cg *CodeGen) storeGlobal(g *ir.Global) {
	a := cg.asm
	label := globalLabel(g.Name)
	if g.Type.Size() == 1 {
		a.EmitRef(mos6502.STA, mos6502.Absolute, label)
	} else {
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		a.EmitRef(mos6502.STA, mos6502.Absolute, label)
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
		a.EmitRefOffset(mos6502.STA, mos6502.Absolute, label, 1)
	}
	a.Annotate("store %s", g.Name)
}

// genTest evaluates a condition and leaves the zero flag reflecting it,
// so a following BEQ takes the false path.
func (cg *CodeGen) genTest(cond ir.Expr) error {
	if err := cg.genExpr(cond); err != nil {
		return err
	}
	a := cg.asm
	if ir.TypeOf(cond).Size() == 1 {
		a.EmitOperand(mos6502.CMP, mos6502.Immediate, 0x00)
	} else {
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		a.EmitOperand(mos6502.ORA, mos6502.ZeroPage, zpResult+1)
	}
	return nil
}

// genExpr evaluates e, leaving byte-sized results in A and word-sized
// results in the zero-page result register.
func (cg *CodeGen) genExpr(e ir.Expr) error {
	a := cg.asm
	switch n := e.(type) {

	case *ir.Literal:
		if n.Type.Size() == 1 {
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, n.Value&0xFF)
		} else {
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, n.Value&0xFF)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, n.Value>>8)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
		}

	case *ir.StringLit:
		if n.Index < 0 || n.Index >= len(cg.prog.Strings) {
			return fmt.Errorf("codegen: string constant %d out of range", n.Index)
		}
		label := stringLabel(n.Index)
		a.EmitRefLow(mos6502.LDA, label)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
		a.EmitRefHigh(mos6502.LDA, label)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)

	case *ir.VarRef:
		if n.Global != nil {
			label := globalLabel(n.Global.Name)
			if n.Type.Size() == 1 {
				a.EmitRef(mos6502.LDA, mos6502.Absolute, label)
			} else {
				a.EmitRef(mos6502.LDA, mos6502.Absolute, label)
				a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
				a.EmitRefOffset(mos6502.LDA, mos6502.Absolute, label, 1)
				a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
			}
			a.Annotate("load %s", n.Global.Name)
		} else {
			a.EmitOperand(mos6502.LDY, mos6502.Immediate, uint16(n.Local.Offset))
			a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpFrame)
			if n.Type.Size() == 2 {
				a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
				a.Emit(mos6502.INY, mos6502.Implied)
				a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpFrame)
				a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
			}
			a.Annotate("load %s", n.Local.Name)
		}

	case *ir.Binary:
		return cg.genBinary(n)

	case *ir.Unary:
		return cg.genUnary(n)

	case *ir.Call:
		return cg.genCall(n)

	case *ir.Cast:
		if err := cg.genExpr(n.X); err != nil {
			return err
		}
		from := ir.TypeOf(n.X)
		switch {
		case from.Size() == 1 && n.Type.Size() == 2:
			cg.widenA()
		case from.Size() == 2 && n.Type.Size() == 1:
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		}

	case *ir.Index:
		if err := cg.genAddress(n); err != nil {
			return err
		}
		cg.loadIndirect(n.Type)

	case *ir.AddrOf:
		return cg.genAddress(n.X)

	case *ir.Deref:
		if err := cg.genExprWord(n.X); err != nil {
			return err
		}
		cg.loadIndirect(n.Type)

	case *ir.Cond:
		elseL := cg.newLabel()
		doneL := cg.newLabel()
		if err := cg.genTest(n.Cond); err != nil {
			return err
		}
		a.EmitRef(mos6502.BEQ, mos6502.Relative, elseL)
		if err := cg.genArm(n.Then, n.Type); err != nil {
			return err
		}
		a.EmitRef(mos6502.JMP, mos6502.Absolute, doneL)
		a.Label(elseL)
		if err := cg.genArm(n.Else, n.Type); err != nil {
			return err
		}
		a.Label(doneL)

	default:
		return fmt.Errorf("codegen: unknown expression node %T", e)
	}
	return nil
}

// genArm evaluates one branch of a conditional, widening to the
// conditional's own type when the arm is narrower.
func (cg *CodeGen) genArm(e ir.Expr, t ir.Type) error {
	if t.Size() == 2 {
		return cg.genExprWord(e)
	}
	return cg.genExpr(e)
}

func (cg *CodeGen) genBinary(n *ir.Binary) error {
	a := cg.asm
	lt, rt := ir.TypeOf(n.Left), ir.TypeOf(n.Right)
	wide := lt.Size() == 2 || rt.Size() == 2

	if n.Op == ir.Mul {
		if wide {
			return fmt.Errorf("codegen: multiply is 8-bit only, got %s * %s", lt, rt)
		}
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		a.Emit(mos6502.PHA, mos6502.Implied)
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
		a.Emit(mos6502.PLA, mos6502.Implied)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtMul8)
		if n.Type.Size() == 1 {
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		}
		return nil
	}

	if !wide {
		// Both operands fit the accumulator; the left value survives the
		// right-hand evaluation on the hardware stack.
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		a.Emit(mos6502.PHA, mos6502.Implied)
		if err := cg.genExpr(n.Right); err != nil {
			return err
		}
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
		a.Emit(mos6502.PLA, mos6502.Implied)

		switch n.Op {
		case ir.Add:
			a.Emit(mos6502.CLC, mos6502.Implied)
			a.EmitOperand(mos6502.ADC, mos6502.ZeroPage, zpTemp)
		case ir.Sub:
			a.Emit(mos6502.SEC, mos6502.Implied)
			a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpTemp)
		case ir.And:
			a.EmitOperand(mos6502.AND, mos6502.ZeroPage, zpTemp)
		case ir.Or:
			a.EmitOperand(mos6502.ORA, mos6502.ZeroPage, zpTemp)
		case ir.Xor:
			a.EmitOperand(mos6502.EOR, mos6502.ZeroPage, zpTemp)
		default:
			if (lt.Signed() || rt.Signed()) && n.Op != ir.Eq && n.Op != ir.Ne {
				// Flip both sign bits so the unsigned carry branches
				// order signed values correctly. A plain subtract-and-
				// branch-on-N answers wrong whenever the difference
				// overflows 8 bits.
				a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0x80)
				a.Emit(mos6502.PHA, mos6502.Implied)
				a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp)
				a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0x80)
				a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
				a.Emit(mos6502.PLA, mos6502.Implied)
			}
			a.EmitOperand(mos6502.CMP, mos6502.ZeroPage, zpTemp)
			cg.genRelational(n.Op)
		}
		return nil
	}

	// Word-sized: widen both operands, stage left on the hardware stack
	// while the right side evaluates.
	if err := cg.genExprWord(n.Left); err != nil {
		return err
	}
	cg.pushResult()
	if err := cg.genExprWord(n.Right); err != nil {
		return err
	}
	cg.moveResultToTemp()
	cg.popTo(zpResult)

	switch n.Op {
	case ir.Add:
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtAdd16)
	case ir.Sub:
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtSub16)
	case ir.And, ir.Or, ir.Xor:
		op := map[ir.BinOp]mos6502.Op{ir.And: mos6502.AND, ir.Or: mos6502.ORA, ir.Xor: mos6502.EOR}[n.Op]
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
		a.EmitOperand(op, mos6502.ZeroPage, zpTemp)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
		a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
		a.EmitOperand(op, mos6502.ZeroPage, zpTemp+1)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
	default:
		if (lt.Signed() || rt.Signed()) && n.Op != ir.Eq && n.Op != ir.Ne {
			// Sign-bias the high bytes; the runtime compare is unsigned.
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
			a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0x80)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpTemp+1)
			a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0x80)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp+1)
		}
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtCmp16)
		cg.genRelational(n.Op)
	}
	return nil
}

// genRelational turns the carry and zero flags left by a compare into a
// 0/1 byte in A. Every occurrence gets its own label pair. Signed
// operands are sign-biased before the compare, so the carry ordering is
// correct here for both widths.
func (cg *CodeGen) genRelational(op ir.BinOp) {
	a := cg.asm
	trueL := cg.newLabel()
	doneL := cg.newLabel()
	branch := func(b mos6502.Op) { a.EmitRef(b, mos6502.Relative, trueL) }

	switch op {
	case ir.Eq:
		branch(mos6502.BEQ)
	case ir.Ne:
		branch(mos6502.BNE)
	case ir.Lt:
		branch(mos6502.BCC)
	case ir.Ge:
		branch(mos6502.BCS)
	case ir.Le:
		branch(mos6502.BEQ)
		branch(mos6502.BCC)
	case ir.Gt:
		falseL := cg.newLabel()
		a.EmitRef(mos6502.BEQ, mos6502.Relative, falseL)
		branch(mos6502.BCS)
		a.Label(falseL)
	}

	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, doneL)
	a.Label(trueL)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x01)
	a.Label(doneL)
}

func (cg *CodeGen) genUnary(n *ir.Unary) error {
	a := cg.asm
	if err := cg.genExpr(n.X); err != nil {
		return err
	}
	size := ir.TypeOf(n.X).Size()

	switch n.Op {
	case ir.Neg:
		if size == 1 {
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
			a.Emit(mos6502.SEC, mos6502.Implied)
			a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpTemp)
		} else {
			a.Emit(mos6502.SEC, mos6502.Implied)
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
			a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
			a.EmitOperand(mos6502.SBC, mos6502.ZeroPage, zpResult+1)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
		}

	case ir.Not:
		if size == 1 {
			a.EmitOperand(mos6502.CMP, mos6502.Immediate, 0x00)
		} else {
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.ORA, mos6502.ZeroPage, zpResult+1)
		}
		trueL := cg.newLabel()
		doneL := cg.newLabel()
		a.EmitRef(mos6502.BEQ, mos6502.Relative, trueL)
		a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
		a.EmitRef(mos6502.JMP, mos6502.Absolute, doneL)
		a.Label(trueL)
		a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x01)
		a.Label(doneL)

	case ir.BitNot:
		if size == 1 {
			a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0xFF)
		} else {
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0xFF)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
			a.EmitOperand(mos6502.EOR, mos6502.Immediate, 0xFF)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
		}

	default:
		return fmt.Errorf("codegen: unknown unary operator %s", n.Op)
	}
	return nil
}

// genAddress leaves the address of an lvalue expression in the result
// register.
func (cg *CodeGen) genAddress(e ir.Expr) error {
	a := cg.asm
	switch n := e.(type) {

	case *ir.VarRef:
		if n.Global != nil {
			label := globalLabel(n.Global.Name)
			a.EmitRefLow(mos6502.LDA, label)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
			a.EmitRefHigh(mos6502.LDA, label)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
		} else {
			a.Emit(mos6502.CLC, mos6502.Implied)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpFrame)
			a.EmitOperand(mos6502.ADC, mos6502.Immediate, uint16(n.Local.Offset))
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpFrame+1)
			a.EmitOperand(mos6502.ADC, mos6502.Immediate, 0x00)
			a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
		}
		return nil

	case *ir.Index:
		if err := cg.genExprWord(n.Base); err != nil {
			return err
		}
		cg.pushResult()
		if err := cg.genExprWord(n.Index); err != nil {
			return err
		}
		if n.Type.Size() == 2 {
			a.EmitOperand(mos6502.ASL, mos6502.ZeroPage, zpResult)
			a.EmitOperand(mos6502.ROL, mos6502.ZeroPage, zpResult+1)
		}
		cg.moveResultToTemp()
		cg.popTo(zpResult)
		a.EmitRef(mos6502.JSR, mos6502.Absolute, rtAdd16)
		return nil

	case *ir.Deref:
		return cg.genExprWord(n.X)

	default:
		return fmt.Errorf("codegen: cannot take address of %T", e)
	}
}

// loadIndirect reads a value of type t from the address in the result
// register.
func (cg *CodeGen) loadIndirect(t ir.Type) {
	a := cg.asm
	cg.resultToPtr1()
	a.EmitOperand(mos6502.LDY, mos6502.Immediate, 0x00)
	a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpPtr1)
	if t.Size() == 2 {
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
		a.Emit(mos6502.INY, mos6502.Implied)
		a.EmitOperand(mos6502.LDA, mos6502.IndirectY, zpPtr1)
		a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
	}
}

// genExprWord evaluates e and guarantees a word in the result register,
// zero-extending byte values.
func (cg *CodeGen) genExprWord(e ir.Expr) error {
	if err := cg.genExpr(e); err != nil {
		return err
	}
	if ir.TypeOf(e).Size() == 1 {
		cg.widenA()
	}
	return nil
}

// widenA zero-extends the accumulator into the result register.
func (cg *CodeGen) widenA() {
	a := cg.asm
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpResult+1)
}

func (cg *CodeGen) pushResult() {
	a := cg.asm
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.Emit(mos6502.PHA, mos6502.Implied)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.Emit(mos6502.PHA, mos6502.Implied)
}

// popTo restores a pushed word into a zero-page pair.
func (cg *CodeGen) popTo(zp uint16) {
	a := cg.asm
	a.Emit(mos6502.PLA, mos6502.Implied)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zp+1)
	a.Emit(mos6502.PLA, mos6502.Implied)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zp)
}

func (cg *CodeGen) moveResultToTemp() {
	a := cg.asm
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpTemp+1)
}

func (cg *CodeGen) resultToPtr1() {
	a := cg.asm
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpPtr1)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, zpResult+1)
	a.EmitOperand(mos6502.STA, mos6502.ZeroPage, zpPtr1+1)
}
