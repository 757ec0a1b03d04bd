package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)
	ErrGroupNotFound    = fmt.Errorf("%w: group", ErrNotFound)

	// Input validation errors
	ErrEmptySample      = errors.New("sample has no observations")
	ErrNoValidGroups    = errors.New("no valid groups supplied")
	ErrTooFewGroups     = errors.New("at least 2 non-empty groups required")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDegenerateSample = errors.New("sample has zero variance")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewComparisonError(got int) error {
	return fmt.Errorf("%w: got %d", ErrTooFewGroups, got)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptySample) ||
		errors.Is(err, ErrNoValidGroups) ||
		errors.Is(err, ErrTooFewGroups) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDegenerateSample)
}
