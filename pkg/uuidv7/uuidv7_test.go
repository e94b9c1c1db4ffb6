package uuidv7

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewIsVersion7(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if u.Version() != 7 {
		t.Fatalf("expected version 7, got %d", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC4122 variant, got %v", u.Variant())
	}
}

func TestNewStringParses(t *testing.T) {
	s, err := NewString()
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	if _, err := uuid.Parse(s); err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
}
