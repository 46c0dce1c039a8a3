package invitecode

import (
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{8, 8},
		{4, 4},
		{0, DefaultLength},
		{-1, DefaultLength},
	}

	for _, tt := range tests {
		code, err := Generate(tt.length)
		if err != nil {
			t.Fatalf("Generate(%d): %v", tt.length, err)
		}
		if len(code) != tt.want {
			t.Errorf("Generate(%d) length = %d, want %d", tt.length, len(code), tt.want)
		}
	}
}

func TestGenerateAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate(8)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("code %q contains %q outside alphabet", code, c)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcd2345", "ABCD2345"},
		{"  ABCD2345  ", "ABCD2345"},
		{"aBcD2345", "ABCD2345"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
