package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrLaundryNotFound    = errors.New("laundry not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOAuthFlowExpired   = errors.New("oauth flow expired")
)

// ValidationError is a local validation failure raised before any remote
// call. Key is the translation key of the message shown next to Field.
type ValidationError struct {
	Field string
	Key   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Key
}

// Invalid builds a ValidationError.
func Invalid(field, key string) error {
	return &ValidationError{Field: field, Key: key}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
