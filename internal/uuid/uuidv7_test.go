package uuid

import (
	"strings"
	"testing"
)

func TestNewIsVersion7(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("New() returned invalid uuid %q", id)
	}
	if id[14] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}
	if New() == id {
		t.Error("consecutive ids should differ")
	}
}

func TestParseCanonicalizes(t *testing.T) {
	got, err := Parse(" 0190A0B4-7C7E-7A3B-9D4F-1E2D3C4B5A69 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != strings.ToLower("0190A0B4-7C7E-7A3B-9D4F-1E2D3C4B5A69") {
		t.Errorf("unexpected canonical form %q", got)
	}

	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for malformed uuid")
	}
}
