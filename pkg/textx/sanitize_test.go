// Package textx contains tests for the text utilities.
package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp("hello", 3); got != "hel" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Clamp("hello", 10); got != "hello" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Clamp("héllo", 2); got != "hé" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Clamp("hello", 0); got != "" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  a\tb\n\nc  d "
	if got := CollapseWhitespace(in); got != "a b c d" {
		t.Fatalf("unexpected: %q", got)
	}
}
