package petscii

import (
	"bytes"
	"testing"
)

func TestEncodeRune(t *testing.T) {
	tests := []struct {
		in   rune
		want byte
	}{
		{'a', 'A'},
		{'z', 'Z'},
		{'A', 'A'},
		{'Q', 'Q'},
		{'0', '0'},
		{'9', '9'},
		{' ', ' '},
		{'!', '!'},
		{',', ','},
		{'\n', Newline},
		{'~', Space},
		{'é', Space},
		{'\t', Space},
	}
	for _, tc := range tests {
		if got := EncodeRune(tc.in); got != tc.want {
			t.Errorf("EncodeRune(%q) = $%02X; want $%02X", tc.in, got, tc.want)
		}
	}
}

func TestEncode(t *testing.T) {
	got := Encode("Hello, C64!\n")
	want := []byte("HELLO, C64!")
	want = append(want, Newline)
	if !bytes.Equal(got, want) {
		t.Errorf("Encode = % X; want % X", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if got := Encode(""); len(got) != 0 {
		t.Errorf("Encode(\"\") = % X; want empty", got)
	}
}
