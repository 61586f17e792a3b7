package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedToken     = errors.New("malformed session token")
	ErrMalformedUser      = errors.New("backend user payload missing identity")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrStorage            = errors.New("credential storage unavailable")
	ErrBackend            = errors.New("backend request failed")
	ErrResendCooldown     = errors.New("resend is cooling down")
	ErrDraftNotFound      = errors.New("report draft not found")
	ErrDraftIncomplete    = errors.New("report draft is missing required fields")
)

// ValidationError is a field-level input rejection raised before any network
// call. It is user-correctable and never logged as a system error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a field-level validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
