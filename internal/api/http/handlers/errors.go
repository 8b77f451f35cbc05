package handlers

import (
	"errors"

	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/service"
	apperrors "github.com/spec-kit/clinic-service/pkg/util/errorutil"
)

// mapServiceError translates service sentinels into transport errors.
func mapServiceError(err error) error {
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrUnauthorized):
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrTooManyAttempts):
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	case errors.Is(err, service.ErrAppointmentNotFound):
		return apperrors.NewNotFound("appointment", nil)
	case errors.Is(err, service.ErrPrescriptionNotFound):
		return apperrors.NewNotFound("prescription", nil)
	case errors.As(err, &validationErr):
		details := make(map[string]any, len(validationErr.Fields))
		for field, msg := range validationErr.Fields {
			details[field] = msg
		}
		return apperrors.NewValidationError("invalid prescription", details)
	}
	return apperrors.NewInternalError(err)
}
