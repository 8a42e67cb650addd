package asm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"goc64/pkg/mos6502"
)

func TestAssembleSimple(t *testing.T) {
	a := New(0x0801)
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x07)
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := []byte{0xA9, 0x07, 0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestAssembleOperandSizes(t *testing.T) {
	a := New(0xC000)
	a.EmitOperand(mos6502.LDA, mos6502.ZeroPage, 0x04)
	a.EmitOperand(mos6502.STA, mos6502.Absolute, 0xD020)
	a.EmitOperand(mos6502.LDA, mos6502.IndirectY, 0x08)
	a.Emit(mos6502.ASL, mos6502.Accumulator)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := []byte{0xA5, 0x04, 0x8D, 0x20, 0xD0, 0xB1, 0x08, 0x0A}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestForwardReference(t *testing.T) {
	a := New(0x1000)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "skip")
	a.Emit(mos6502.NOP, mos6502.Implied)
	a.Label("skip")
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// JMP $1004 over the NOP.
	want := []byte{0x4C, 0x04, 0x10, 0xEA, 0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}

	addr, err := a.AddressOf("skip")
	if err != nil {
		t.Fatalf("AddressOf failed: %v", err)
	}
	if addr != 0x1004 {
		t.Errorf("AddressOf(skip) = $%04X; want $1004", addr)
	}
}

func TestBackwardBranch(t *testing.T) {
	a := New(0x2000)
	a.Label("loop")
	a.Emit(mos6502.DEX, mos6502.Implied)
	a.EmitRef(mos6502.BNE, mos6502.Relative, "loop")
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// Branch at $2001; target $2000; offset = $2000 - ($2001+2) = -3.
	want := []byte{0xCA, 0xD0, 0xFD, 0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestForwardBranch(t *testing.T) {
	a := New(0x3000)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, "done")
	a.Emit(mos6502.INX, mos6502.Implied)
	a.Label("done")
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// Branch at $3000 to $3003: offset +1.
	want := []byte{0xF0, 0x01, 0xE8, 0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestBranchOutOfRange(t *testing.T) {
	a := New(0x4000)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, "far")
	for i := 0; i < 200; i++ {
		a.Emit(mos6502.NOP, mos6502.Implied)
	}
	a.Label("far")
	a.Emit(mos6502.RTS, mos6502.Implied)

	if _, err := a.Assemble(); !errors.Is(err, ErrBranchOutOfRange) {
		t.Errorf("Assemble = %v; want ErrBranchOutOfRange", err)
	}
}

func TestBranchAtRangeLimit(t *testing.T) {
	// 127 forward is the last reachable displacement: the branch sits at
	// $5000, so the target may be at most $5002+127.
	a := New(0x5000)
	a.EmitRef(mos6502.BEQ, mos6502.Relative, "edge")
	for i := 0; i < 127; i++ {
		a.Emit(mos6502.NOP, mos6502.Implied)
	}
	a.Label("edge")
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if got[1] != 0x7F {
		t.Errorf("displacement = $%02X; want $7F", got[1])
	}
}

func TestUnknownLabel(t *testing.T) {
	a := New(0x1000)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "nowhere")
	if _, err := a.Assemble(); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Assemble = %v; want ErrUnknownLabel", err)
	}
}

func TestDuplicateLabel(t *testing.T) {
	a := New(0x1000)
	a.Label("twice")
	a.Emit(mos6502.NOP, mos6502.Implied)
	a.Label("twice")
	if _, err := a.Assemble(); !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("Assemble = %v; want ErrDuplicateLabel", err)
	}
}

func TestWordLittleEndian(t *testing.T) {
	a := New(0x0801)
	a.Word(0x080B)
	a.Word(0x000A)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := []byte{0x0B, 0x08, 0x0A, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestString(t *testing.T) {
	a := New(0x1000)
	a.String("ok\n")

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := []byte{'O', 'K', 0x0D, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestReserve(t *testing.T) {
	a := New(0x1000)
	a.Emit(mos6502.NOP, mos6502.Implied)
	a.Label("buf")
	a.Reserve(3)
	a.Label("after")

	if _, err := a.Assemble(); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	buf, _ := a.AddressOf("buf")
	after, _ := a.AddressOf("after")
	if buf != 0x1001 || after != 0x1004 {
		t.Errorf("buf=$%04X after=$%04X; want $1001 and $1004", buf, after)
	}
}

func TestOrgPadsOutput(t *testing.T) {
	a := New(0x1000)
	a.Emit(mos6502.NOP, mos6502.Implied)
	a.Org(0x1004)
	a.Emit(mos6502.RTS, mos6502.Implied)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	want := []byte{0xEA, 0x00, 0x00, 0x00, 0x60}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestOrgBackward(t *testing.T) {
	a := New(0x1000)
	a.Emit(mos6502.NOP, mos6502.Implied)
	a.Org(0x0800)
	if _, err := a.Assemble(); !errors.Is(err, ErrOriginBackward) {
		t.Errorf("Assemble = %v; want ErrOriginBackward", err)
	}
}

func TestRefLowHigh(t *testing.T) {
	a := New(0x1000)
	a.EmitRefLow(mos6502.LDA, "data")
	a.EmitRefHigh(mos6502.LDX, "data")
	a.Emit(mos6502.RTS, mos6502.Implied)
	a.Label("data")
	a.Bytes(0xFF)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// data resolves to $1005.
	want := []byte{0xA9, 0x05, 0xA2, 0x10, 0x60, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestRefOffset(t *testing.T) {
	a := New(0x1000)
	a.EmitRefOffset(mos6502.LDA, mos6502.Absolute, "pair", 1)
	a.Emit(mos6502.RTS, mos6502.Implied)
	a.Label("pair")
	a.Word(0x1234)

	got, err := a.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// pair is at $1004; pair+1 at $1005.
	want := []byte{0xAD, 0x05, 0x10, 0x60, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("Assemble = % X; want % X", got, want)
	}
}

func TestAssembleTwice(t *testing.T) {
	a := New(0x1000)
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "end")
	a.Label("end")
	a.Emit(mos6502.RTS, mos6502.Implied)

	first, err := a.Assemble()
	if err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}
	second, err := a.Assemble()
	if err != nil {
		t.Fatalf("second Assemble failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Assemble not repeatable: % X then % X", first, second)
	}
}

func TestUnsupportedEncodingSurfaces(t *testing.T) {
	a := New(0x1000)
	a.EmitOperand(mos6502.STA, mos6502.Immediate, 0x01)
	if _, err := a.Assemble(); !errors.Is(err, mos6502.ErrUnsupportedEncoding) {
		t.Errorf("Assemble = %v; want ErrUnsupportedEncoding", err)
	}
}

func TestListing(t *testing.T) {
	a := New(0x0801)
	a.Comment("entry")
	a.Label("start")
	a.EmitOperand(mos6502.LDA, mos6502.Immediate, 0x00)
	a.Annotate("black")
	a.EmitRef(mos6502.JMP, mos6502.Absolute, "start")
	a.Bytes(0x01, 0x02)

	if _, err := a.Assemble(); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	text := a.Listing()
	for _, want := range []string{
		"; entry",
		"start:",
		"LDA #$00",
		"; black",
		"JMP start",
		".byte $01, $02",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("listing missing %q:\n%s", want, text)
		}
	}
}
