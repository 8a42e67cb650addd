// Package ir defines the typed intermediate representation the code
// generator consumes. The front end produces a fully resolved Program;
// nothing here is inferred or rewritten by the backend.
package ir

import "fmt"

// Type is the closed set of value types. Every non-Void type has a fixed
// byte size that is already resolved on each node before generation.
type Type uint8

const (
	Void Type = iota
	Byte
	SignedByte
	UInt16
	Int16
	Bool
	Pointer
	String
)

// Size returns the storage size of a type in bytes.
func (t Type) Size() int {
	switch t {
	case Void:
		return 0
	case Byte, SignedByte, Bool:
		return 1
	default:
		return 2
	}
}

// Signed reports whether comparisons on this type use signed order.
func (t Type) Signed() bool {
	return t == SignedByte || t == Int16
}

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Byte:
		return "byte"
	case SignedByte:
		return "sbyte"
	case UInt16:
		return "uint16"
	case Int16:
		return "int16"
	case Bool:
		return "bool"
	case Pointer:
		return "pointer"
	case String:
		return "string"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Program is the root IR node. Slice order is emission order.
type Program struct {
	Globals   []*Global
	Functions []*Function
	Strings   []string // interned string constants, referenced by index
}

// Entry returns the function the program starts in: the one marked
// IsEntry, or failing that the one named "main".
func (p *Program) Entry() *Function {
	for _, f := range p.Functions {
		if f.IsEntry {
			return f
		}
	}
	for _, f := range p.Functions {
		if f.Name == "main" {
			return f
		}
	}
	return nil
}

// Function looks a function up by name.
func (p *Program) Function(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Global is a program-level variable, laid out at an absolute label.
type Global struct {
	Name    string
	Type    Type
	Value   uint16 // initial value; meaningful when HasInit
	HasInit bool
}

// Local is a frame-relative variable or parameter. Offsets are assigned
// by the front end in allocation order and never renumbered here.
type Local struct {
	Name   string
	Type   Type
	Offset int // byte offset from the frame pointer
}

type Function struct {
	Name    string
	Return  Type
	Params  []*Local
	Locals  []*Local
	Body    []Statement
	IsEntry bool
}

// FrameSize returns the bytes of frame storage the function needs.
func (f *Function) FrameSize() int {
	size := 0
	for _, v := range f.Params {
		if end := v.Offset + v.Type.Size(); end > size {
			size = end
		}
	}
	for _, v := range f.Locals {
		if end := v.Offset + v.Type.Size(); end > size {
			size = end
		}
	}
	return size
}

//  Statement nodes

// Statement is implemented by every node that does not produce a value.
type Statement interface {
	stmtNode()
}

// ExprStmt evaluates X and discards the result.
type ExprStmt struct {
	X Expr
}

// Return leaves X (nil for void functions) in the result register and
// returns to the caller.
type Return struct {
	X Expr
}

// VarDecl introduces a local, optionally with an initializer.
type VarDecl struct {
	Var  *Local
	Init Expr
}

// Assign stores Value into the location described by Target, which must
// be a VarRef, Index or Deref.
type Assign struct {
	Target Expr
	Value  Expr
}

type If struct {
	Cond Expr
	Then []Statement
	Else []Statement
}

type While struct {
	Cond Expr
	Body []Statement
}

type For struct {
	Init Statement // may be nil
	Cond Expr      // may be nil
	Post Statement // may be nil
	Body []Statement
}

type Break struct{}

type Continue struct{}

func (*ExprStmt) stmtNode() {}
func (*Return) stmtNode()   {}
func (*VarDecl) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*For) stmtNode()      {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}

//  Expression nodes

// Expr is implemented by every node that produces a value. Each node
// carries its resolved Type; TypeOf reads it back.
type Expr interface {
	exprNode()
}

// Literal is a compile-time constant.
type Literal struct {
	Type  Type
	Value uint16
}

// StringLit references Program.Strings by index.
type StringLit struct {
	Index int
}

// VarRef reads a variable. Exactly one of Global and Local is set.
type VarRef struct {
	Type   Type
	Global *Global
	Local  *Local
}

type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	And
	Or
	Xor
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op BinOp) String() string {
	names := [...]string{"+", "-", "*", "&", "|", "^", "==", "!=", "<", "<=", ">", ">="}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("BinOp(%d)", uint8(op))
}

// Relational reports whether the operator yields a Bool.
func (op BinOp) Relational() bool {
	return op >= Eq
}

type Binary struct {
	Type  Type
	Op    BinOp
	Left  Expr
	Right Expr
}

type UnOp uint8

const (
	Neg    UnOp = iota // arithmetic negation
	Not                // logical not, yields 0 or 1
	BitNot             // ones' complement
)

func (op UnOp) String() string {
	names := [...]string{"-", "!", "~"}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("UnOp(%d)", uint8(op))
}

type Unary struct {
	Type Type
	Op   UnOp
	X    Expr
}

// Call invokes an intrinsic or a program function by name. The calling
// convention passes a single argument; intrinsics may take two.
type Call struct {
	Type Type
	Name string
	Args []Expr
}

// Cast reinterprets X as Type, widening or truncating as needed.
type Cast struct {
	Type Type
	X    Expr
}

// Index reads element Index of the array or buffer Base points at.
type Index struct {
	Type  Type
	Base  Expr
	Index Expr
}

// AddrOf takes the address of a variable.
type AddrOf struct {
	X Expr
}

// Deref reads the value a pointer expression points at.
type Deref struct {
	Type Type
	X    Expr
}

// Cond is the ternary conditional; only one arm is evaluated.
type Cond struct {
	Type Type
	Cond Expr
	Then Expr
	Else Expr
}

func (*Literal) exprNode()   {}
func (*StringLit) exprNode() {}
func (*VarRef) exprNode()    {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Call) exprNode()      {}
func (*Cast) exprNode()      {}
func (*Index) exprNode()     {}
func (*AddrOf) exprNode()    {}
func (*Deref) exprNode()     {}
func (*Cond) exprNode()      {}

// TypeOf returns the resolved type of an expression.
func TypeOf(e Expr) Type {
	switch n := e.(type) {
	case *Literal:
		return n.Type
	case *StringLit:
		return String
	case *VarRef:
		return n.Type
	case *Binary:
		return n.Type
	case *Unary:
		return n.Type
	case *Call:
		return n.Type
	case *Cast:
		return n.Type
	case *Index:
		return n.Type
	case *AddrOf:
		return Pointer
	case *Deref:
		return n.Type
	case *Cond:
		return n.Type
	}
	return Void
}
