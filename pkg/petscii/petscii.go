// Package petscii converts ASCII text to the PETSCII byte codes the C64
// KERNAL print routine expects.
package petscii

// Newline maps to carriage return on the target.
const Newline = 0x0D

// Space is the fallback code for characters with no PETSCII equivalent.
const Space = 0x20

// Encode maps printable ASCII to PETSCII. Lowercase letters are folded to
// uppercase, '\n' becomes carriage return, anything unmapped becomes a
// space. The result is not terminated.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, EncodeRune(r))
	}
	return out
}

// EncodeRune maps a single rune to its PETSCII code.
func EncodeRune(r rune) byte {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r - 'a' + 'A')
	case r >= 'A' && r <= 'Z':
		return byte(r)
	case r >= '0' && r <= '9':
		return byte(r)
	case r == '\n':
		return Newline
	}

	// Common punctuation shares its code with ASCII.
	switch r {
	case ' ', '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',',
		'-', '.', '/', ':', ';', '<', '=', '>', '?', '@', '[', ']':
		return byte(r)
	}

	return Space
}
