package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Workflow errors, mapped to HTTP status codes at the handler boundary.
var (
	ErrUnauthenticated     = errors.New("authentication required")                // 401
	ErrInvalidToken        = errors.New("invalid token")                          // 400
	ErrTokenExpired        = errors.New("token expired")                          // 400
	ErrCsrfFailure         = errors.New("csrf token mismatch")                    // 403
	ErrInvalidCredential   = errors.New("invalid email or password")              // 401
	ErrNoPasswordSet       = errors.New("no password set on this account")        // 400
	ErrNoOpChange          = errors.New("value is unchanged")                     // 400
	ErrEmailTaken          = errors.New("email is already registered")            // 409
	ErrNotFound            = errors.New("not found")                              // 404
	ErrNotificationFailure = errors.New("confirmation email could not be sent")   // 502
	ErrStoreFailure        = errors.New("persistence failure")                    // 500
)

// ValidationError carries field-keyed messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
