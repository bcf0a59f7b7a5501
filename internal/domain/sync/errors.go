package sync

import "errors"

var (
	// ErrAttemptNotFound indicates the sync attempt does not exist
	ErrAttemptNotFound = errors.New("sync: attempt not found")
	// ErrNotRetryable indicates the attempt is not in a retryable state
	ErrNotRetryable = errors.New("sync: only failed attempts can be retried")
	// ErrUnknownEventKind indicates an inbound event kind with no handler
	ErrUnknownEventKind = errors.New("sync: unknown event kind")
)

// ValidationError is a terminal mapping failure, e.g. a contact with no
// usable email after the field merge. It is never retried automatically.
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
