// Package service holds the business rules of the API: report lifecycle,
// account management and the password reset protocol.  Handlers translate
// the errors declared here into HTTP responses.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.  Their messages are safe to show to API clients.
var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not allowed to access this report")
	ErrAdminRequired      = errors.New("admin access required")
	ErrNotFound           = errors.New("report not found")
	ErrConflict           = errors.New("email already registered")
)

// ValidationError reports bad input.  Msg is returned to the client as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// oneOf builds the message for a value outside a closed set.
func oneOf(field string, allowed []string) error {
	return invalid("%s must be one of: %s", field, strings.Join(allowed, ", "))
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
