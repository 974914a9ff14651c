package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the short code is unknown, inactive or reserved.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug means the requested short code is already taken.
	ErrDuplicateSlug = errors.New("short code already exists")
	// ErrPersistence means the datastore could not complete the operation.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a datastore failure so callers can match
// ErrPersistence while the cause stays available for logs.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
