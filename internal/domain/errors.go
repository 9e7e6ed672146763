package domain

import (
	"errors"
	"fmt"
)

// Authentication and authorization failures. Handlers map these to 401/403.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrForbidden      = errors.New("operation not allowed")
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUpstreamUnreachable is returned when an outbound call fails at the
// transport level (timeout, connection refused, DNS failure).
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// ValidationError rejects a request before any persistence is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ClientError carries a non-success HTTP status from an upstream service.
type ClientError struct {
	Status int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// IsAuthError reports whether err belongs to the authentication taxonomy.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrForbidden)
}
