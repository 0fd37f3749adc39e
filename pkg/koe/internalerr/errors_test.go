package internalerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestInsufficientMatchesSentinel(t *testing.T) {
	err := Insufficient("chisq", "categories")
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatal("expected errors.Is to match ErrInsufficientData")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatal("should not match unrelated sentinel")
	}

	wrapped := fmt.Errorf("analyze: %w", err)
	var ide *InsufficientDataError
	if !errors.As(wrapped, &ide) {
		t.Fatal("expected errors.As to unwrap InsufficientDataError")
	}
	if ide.Op != "chisq" || ide.Reason != "categories" {
		t.Errorf("unexpected fields: %+v", ide)
	}
	if got := err.Error(); got != "chisq: insufficient categories" {
		t.Errorf("unexpected message %q", got)
	}
}
