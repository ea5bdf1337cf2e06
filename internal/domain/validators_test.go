package domain

import (
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"spaces in@example.com", false},
		{"user@nodot", false},
		{"", false},
		{strings.Repeat("a", 25) + "@ex.com", false}, // over 30 chars
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"abc123!@", true},
		{"longerpass1!", true},
		{"short1!", false},                // under 8
		{strings.Repeat("a1!", 7), false}, // 21 chars, over 20
		{"nodigits!!", false},
		{"nospecial11", false},
		{"12345678!", false}, // no letter
	}

	for _, tt := range tests {
		if got := ValidPassword(tt.password); got != tt.want {
			t.Errorf("ValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestDefaultCharactersStable(t *testing.T) {
	a := DefaultCharacters()
	b := DefaultCharacters()

	if len(a) != 3 {
		t.Fatalf("expected 3 default characters, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("default character %d is not stable: %+v vs %+v", i, a[i], b[i])
		}
		if !a[i].IsDefault {
			t.Errorf("default character %d is not flagged", i)
		}
	}
}
