/*
errors.go - Centralized error types for the storefront core

PURPOSE:
  All error categories in one place. The taxonomy mirrors how each
  failure is surfaced:

  1. Validation errors  - user-correctable, abort before persistence
  2. Persistence errors - the storage write failed; in-memory state is
     left untouched and the triggering action fails visibly
  3. Load errors        - never returned; startup reads degrade silently
     to an empty collection (logged, not surfaced)

  Missing-id updates and deletes are NOT errors: they are silent no-ops,
  treated as already satisfied.

USAGE:
  if errors.Is(err, record.ErrValidation) { ... }   // 400-class
  if errors.Is(err, record.ErrPersistence) { ... }  // 500-class, retryable

SEE ALSO:
  - store.go: Where persistence errors originate
  - ../ledger: OverpaymentWarning, which is a value and not an error
*/
package record

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all user-correctable input errors.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence is returned when a collection write fails. The
	// in-memory replica is unchanged; retrying the action is safe.
	ErrPersistence = errors.New("persistence failed")

	// ErrUnsupportedFormat is returned by import parsing when a payload
	// matches none of the known schema variants.
	ErrUnsupportedFormat = errors.New("unsupported import format")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a field-level validation error.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps a storage write failure with the collection it hit.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// IsClientError reports whether the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnsupportedFormat)
}
