package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when client input fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidRoadmap is returned when the roadmap produced by the language
	// model cannot be parsed or violates the roadmap invariants.
	ErrInvalidRoadmap = errors.New("invalid roadmap")

	// ErrResumeUnsupported is returned for résumé files with a disallowed extension.
	ErrResumeUnsupported = errors.New("unsupported resume file type")

	// ErrResumeTooLarge is returned when the résumé file exceeds the byte ceiling.
	ErrResumeTooLarge = errors.New("resume file too large")

	// ErrResumeUnreadable is returned when no usable text could be extracted.
	ErrResumeUnreadable = errors.New("resume text could not be extracted")

	// ErrResumeTooLong is returned when the extracted text exceeds the character ceiling.
	ErrResumeTooLong = errors.New("resume text too long")
)

// ValidationError describes a client input problem tied to a single field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel so errors.Is works against it.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation; every ValidationError is one.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
