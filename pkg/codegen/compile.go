package codegen

import "goc64/pkg/ir"

// Output is the result of one compilation: raw machine code, the address
// it must load at, and a human-readable listing.
type Output struct {
	Code    []byte
	Base    uint16
	Listing string
}

// Compile lowers prog to 6502 machine code placed at base. A fresh
// generator runs per call, so equal programs produce equal output.
func Compile(prog *ir.Program, base uint16) (*Output, error) {
	cg := New(prog, base)
	if err := cg.Generate(); err != nil {
		return nil, err
	}
	code, err := cg.asm.Assemble()
	if err != nil {
		return nil, err
	}
	return &Output{Code: code, Base: base, Listing: cg.asm.Listing()}, nil
}
