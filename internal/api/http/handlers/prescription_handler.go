package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
)

// PrescriptionService is the subset of the service used by the handler.
type PrescriptionService interface {
	Save(ctx context.Context, token string, input service.PrescriptionInput) (*domain.Prescription, error)
	GetByAppointment(ctx context.Context, token string, appointmentID int64) (*domain.Prescription, error)
}

// PrescriptionHandler serves prescription endpoints. The caller's token is a path segment
// and is checked before the request body or parameters are parsed.
type PrescriptionHandler struct {
	tokens        TokenChecker
	prescriptions PrescriptionService
}

// NewPrescriptionHandler constructs handler.
func NewPrescriptionHandler(tokens TokenChecker, prescriptions PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{tokens: tokens, prescriptions: prescriptions}
}

func (h *PrescriptionHandler) authorizeDoctor(c *fiber.Ctx) (string, error) {
	token := c.Params("token")
	if !h.tokens.Authorize(c.UserContext(), token, domain.RoleDoctor) {
		return "", mapServiceError(service.ErrUnauthorized)
	}
	return token, nil
}

// Save handles POST /prescription/save/:token.
func (h *PrescriptionHandler) Save(c *fiber.Ctx) error {
	token, err := h.authorizeDoctor(c)
	if err != nil {
		return err
	}

	var req dto.SavePrescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	prescription, err := h.prescriptions.Save(c.UserContext(), token, service.PrescriptionInput{
		AppointmentID: req.AppointmentID,
		PatientName:   req.PatientName,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		DoctorNotes:   req.DoctorNotes,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": toPrescriptionResponse(prescription)})
}

// Get handles GET /prescription/:appointmentId/:token.
func (h *PrescriptionHandler) Get(c *fiber.Ctx) error {
	token, err := h.authorizeDoctor(c)
	if err != nil {
		return err
	}

	appointmentID, err := c.ParamsInt("appointmentId")
	if err != nil || appointmentID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid appointment id")
	}

	prescription, err := h.prescriptions.GetByAppointment(c.UserContext(), token, int64(appointmentID))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": toPrescriptionResponse(prescription)})
}

func toPrescriptionResponse(p *domain.Prescription) dto.PrescriptionResponse {
	return dto.PrescriptionResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		DoctorID:      p.DoctorID,
		PatientName:   p.PatientName,
		Medication:    p.Medication,
		Dosage:        p.Dosage,
		DoctorNotes:   p.DoctorNotes,
		CreatedAt:     p.CreatedAt,
	}
}
