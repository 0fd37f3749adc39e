package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrAnalyzerUnavailable = errors.New("morphological analyzer unavailable")
	ErrInsufficientData    = errors.New("insufficient data")
)

// InsufficientDataError reports a degenerate input that yields a valid empty
// result rather than a fault. It matches ErrInsufficientData under errors.Is.
type InsufficientDataError struct {
	Op     string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient %s", e.Op, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Insufficient builds an InsufficientDataError.
func Insufficient(op, reason string) error {
	return &InsufficientDataError{Op: op, Reason: reason}
}
