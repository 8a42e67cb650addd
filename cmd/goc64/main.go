// Command goc64 compiles a built-in demo IR program to a C64 .prg file
// and a bootable .d64 disk image. The front end that would produce the
// IR from source text plugs in ahead of this driver.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"goc64/pkg/codegen"
	"goc64/pkg/d64"
	"goc64/pkg/ir"
	"goc64/pkg/prg"
)

func main() {
	var (
		outPrg   = flag.String("prg", "demo.prg", "program file to write")
		outDisk  = flag.String("d64", "", "disk image to write (optional)")
		outList  = flag.String("listing", "", "assembly listing to write (optional)")
		diskName = flag.String("name", "goc64 demo", "disk name for the image")
		loadAddr = flag.Uint("load", prg.DefaultLoadAddress, "load address")
	)
	flag.Parse()

	out, err := codegen.Compile(demoProgram(), uint16(*loadAddr))
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}
	fmt.Printf("compiled %d bytes at $%04X\n", len(out.Code), out.Base)

	program := prg.Build(out.Base, out.Code)
	if err := os.WriteFile(*outPrg, program, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", *outPrg)

	if *outList != "" {
		if err := os.WriteFile(*outList, []byte(out.Listing), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *outList)
	}

	if *outDisk != "" {
		img := d64.New(*diskName)
		base := strings.TrimSuffix(*outPrg, ".prg")
		if err := img.AddFile(base, program); err != nil {
			fmt.Fprintln(os.Stderr, "disk error:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outDisk, img.Bytes(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *outDisk)
	}
}

// demoProgram builds an IR program that clears the screen, cycles the
// border color, counts down from ten, and waits for a key.
func demoProgram() *ir.Program {
	counter := &ir.Local{Name: "n", Type: ir.Byte, Offset: 0}

	return &ir.Program{
		Strings: []string{"hello from goc64\n", "done.\n"},
		Functions: []*ir.Function{
			{
				Name:    "main",
				Return:  ir.Void,
				IsEntry: true,
				Locals:  []*ir.Local{counter},
				Body: []ir.Statement{
					&ir.ExprStmt{X: &ir.Call{Name: "clearscreen"}},
					&ir.ExprStmt{X: &ir.Call{
						Name: "border",
						Args: []ir.Expr{&ir.Literal{Type: ir.Byte, Value: 0}},
					}},
					&ir.ExprStmt{X: &ir.Call{
						Name: "print",
						Args: []ir.Expr{&ir.StringLit{Index: 0}},
					}},
					&ir.VarDecl{
						Var:  counter,
						Init: &ir.Literal{Type: ir.Byte, Value: 10},
					},
					&ir.While{
						Cond: &ir.Binary{
							Type:  ir.Bool,
							Op:    ir.Gt,
							Left:  &ir.VarRef{Type: ir.Byte, Local: counter},
							Right: &ir.Literal{Type: ir.Byte, Value: 0},
						},
						Body: []ir.Statement{
							&ir.ExprStmt{X: &ir.Call{
								Name: "printchar",
								Args: []ir.Expr{&ir.Binary{
									Type:  ir.Byte,
									Op:    ir.Add,
									Left:  &ir.VarRef{Type: ir.Byte, Local: counter},
									Right: &ir.Literal{Type: ir.Byte, Value: '0' - 1},
								}},
							}},
							&ir.Assign{
								Target: &ir.VarRef{Type: ir.Byte, Local: counter},
								Value: &ir.Binary{
									Type:  ir.Byte,
									Op:    ir.Sub,
									Left:  &ir.VarRef{Type: ir.Byte, Local: counter},
									Right: &ir.Literal{Type: ir.Byte, Value: 1},
								},
							},
						},
					},
					&ir.ExprStmt{X: &ir.Call{
						Name: "print",
						Args: []ir.Expr{&ir.StringLit{Index: 1}},
					}},
					&ir.ExprStmt{X: &ir.Call{Name: "waitkey"}},
				},
			},
		},
	}
}
