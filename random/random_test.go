package random

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	s, err := gen.Generate(21, "abc123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(s) != 21 {
		t.Errorf("length: got %d", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune("abc123", r) {
			t.Errorf("character %q outside charset", r)
		}
	}
}

func TestGenerateDistinct(t *testing.T) {
	gen := NewGenerator()

	a, _ := gen.Generate(20, "abcdefghijklmnopqrstuvwxyz")
	b, _ := gen.Generate(20, "abcdefghijklmnopqrstuvwxyz")
	if a == b {
		t.Error("two 20-char random strings should not collide")
	}
}

func TestGenerateInvalidArgs(t *testing.T) {
	gen := NewGenerator()

	if _, err := gen.Generate(0, "abc"); err == nil {
		t.Error("zero length must fail")
	}
	if _, err := gen.Generate(10, ""); err == nil {
		t.Error("empty charset must fail")
	}
}
