package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapMatchesSentinel(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrStorage, cause)

	if !errors.Is(err, ErrStorage) {
		t.Error("wrapped error should match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should expose its cause")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("wrapped error should not match an unrelated sentinel")
	}
}

func TestWithMessagefKeepsCodeAndKind(t *testing.T) {
	err := WithMessagef(ErrCategoryInUse, "category is used by %d active transaction(s)", 3)

	if err.Code != "CATEGORY_IN_USE" {
		t.Errorf("expected CATEGORY_IN_USE, got %s", err.Code)
	}
	if err.Kind != KindInUse {
		t.Errorf("expected kind in_use, got %s", err.Kind)
	}
	if err.Message != "category is used by 3 active transaction(s)" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrMaxDepthExceeded)
	if got := KindOf(wrapped); got != KindReferenceInvalid {
		t.Errorf("expected reference_invalid, got %s", got)
	}
	if got := KindOf(errors.New("boom")); got != KindStorage {
		t.Errorf("expected storage for plain errors, got %s", got)
	}
}
