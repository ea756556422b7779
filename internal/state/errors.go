package state

import "errors"

var (
	// ErrValidation is the root of every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrCycle is returned when a move would place a node under itself or
	// one of its descendants.
	ErrCycle = errors.New("move would create a cycle")
	// ErrCrossRequirement is returned when a node would be attached to a
	// parent belonging to a different requirement.
	ErrCrossRequirement = errors.New("node cannot change requirement")
)

// FieldError records which field of which entity failed validation.
type FieldError struct {
	Entity string // "project", "category", ...
	Field  string
	Reason string
}

// Error returns e.g. "requirement code: must not be empty".
func (e *FieldError) Error() string {
	return e.Entity + " " + e.Field + ": " + e.Reason
}

// Unwrap makes every FieldError match ErrValidation.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func emptyField(entity, field string) error {
	return &FieldError{Entity: entity, Field: field, Reason: "must not be empty"}
}

func invalidValue(entity, field, value string) error {
	return &FieldError{Entity: entity, Field: field, Reason: "unknown value " + `"` + value + `"`}
}
