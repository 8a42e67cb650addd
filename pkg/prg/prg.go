// Package prg builds Commodore program files: the two-byte little-endian
// load address followed by the raw machine code.
package prg

// DefaultLoadAddress is the start of C64 BASIC RAM, where runnable
// programs conventionally load.
const DefaultLoadAddress = 0x0801

// Build prepends the load address to code. The returned slice is freshly
// allocated; code is not modified.
func Build(loadAddr uint16, code []byte) []byte {
	out := make([]byte, 0, len(code)+2)
	out = append(out, byte(loadAddr), byte(loadAddr>>8))
	return append(out, code...)
}

// LoadAddress reads the load address from a program file. It returns
// false when the file is too short to carry one.
func LoadAddress(prg []byte) (uint16, bool) {
	if len(prg) < 2 {
		return 0, false
	}
	return uint16(prg[0]) | uint16(prg[1])<<8, true
}

// Body returns the machine code portion of a program file.
func Body(prg []byte) []byte {
	if len(prg) < 2 {
		return nil
	}
	return prg[2:]
}
