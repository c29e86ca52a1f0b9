package contract

import (
	"errors"
	"fmt"
)

// Error kinds shared across the graveyard. Callers match them with errors.Is
// rather than comparing messages.
var (
	// ErrNotFound indicates the referenced record or attempt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the caller supplied an invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates the backing log or database could not be accessed.
	ErrStorage = errors.New("storage failure")

	// ErrParse indicates the backing log exists but holds malformed content.
	ErrParse = errors.New("parse failure")
)

// NotFoundError wraps ErrNotFound with a message describing the missing entity.
func NotFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ValidationError wraps ErrValidation with a message describing the bad input.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageError wraps ErrStorage with the underlying cause.
func StorageError(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, fmt.Sprintf(format, args...), cause)
}

// ParseError wraps ErrParse with the underlying cause.
func ParseError(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %v", ErrParse, fmt.Sprintf(format, args...), cause)
}
