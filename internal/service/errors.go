package service

import "errors"

var (
	// ErrUnauthorized collapses every token or identity failure.
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyAttempts      = errors.New("too many failed login attempts")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
)

// ValidationError reports which input fields were rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid input"
}
