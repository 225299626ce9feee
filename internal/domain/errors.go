package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// ErrImmutable is returned on any attempt to mutate a sealed logbook
	// entry outside the administrative path.
	ErrImmutable = errors.New("entry is immutable")

	// ErrCapacityExceeded is returned when a weekly log already holds the
	// maximum of five entries.
	ErrCapacityExceeded = errors.New("weekly log entry capacity exceeded")

	// ErrIncompleteEntries is returned when a week is approved while at
	// least one child entry is still mutable.
	ErrIncompleteEntries = errors.New("weekly log has unsealed entries")

	// ErrInvalidSignature is returned when an entry's signature is missing
	// or fails verification against the student's public key.
	ErrInvalidSignature = errors.New("invalid or missing signature")

	// ErrOutOfRange is returned when an operation falls outside the
	// internship date range or a score falls outside its bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrWeekExists is returned when a weekly log for the computed calendar
	// week already exists. Week creation is idempotent by calendar position.
	ErrWeekExists = errors.New("weekly log for this week already exists")

	// ErrKeypairExists is returned on a second keypair issuance for the
	// same student. Regeneration is forbidden to prevent repudiation.
	ErrKeypairExists = errors.New("keypair already issued")

	// ErrDecryption is returned when the custodial private key cannot be
	// decrypted. Security-relevant: callers must treat it as a hard failure
	// and invalidate the session upstream.
	ErrDecryption = errors.New("private key decryption failed")

	// ErrInternshipNotCompleted is returned when an evaluation is created
	// for an internship that has not reached the completed status.
	ErrInternshipNotCompleted = errors.New("internship not completed")

	// ErrScoreOverflow is returned when an evaluation total exceeds 100.
	ErrScoreOverflow = errors.New("evaluation total exceeds 100")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
