package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
	apperrors "github.com/spec-kit/clinic-service/pkg/util/errorutil"
)

// EntityExtractor resolves the record id behind a token.
type EntityExtractor interface {
	ExtractEntityID(ctx context.Context, token string, role domain.Role) (int64, bool)
}

// DoctorGetter loads doctors by id.
type DoctorGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
}

// DoctorHandler serves endpoints for the authenticated doctor.
type DoctorHandler struct {
	gate    EntityExtractor
	doctors DoctorGetter
}

// NewDoctorHandler constructs handler.
func NewDoctorHandler(gate EntityExtractor, doctors DoctorGetter) *DoctorHandler {
	return &DoctorHandler{gate: gate, doctors: doctors}
}

// Me handles GET /doctor/me. Must run behind auth.RequireRole(gate, domain.RoleDoctor).
func (h *DoctorHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage)
	}

	doctorID, ok := h.gate.ExtractEntityID(c.UserContext(), principal.Token, domain.RoleDoctor)
	if !ok {
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage)
	}

	doctor, err := h.doctors.GetByID(c.UserContext(), doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("doctor", nil)
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"id":             doctor.ID,
			"name":           doctor.Name,
			"email":          doctor.Email,
			"phone":          doctor.Phone,
			"specialty":      doctor.Specialty,
			"availableTimes": doctor.AvailableTimes,
		},
	})
}
