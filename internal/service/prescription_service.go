package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/repository"
)

// Authorizer is the gate every protected operation calls first.
type Authorizer interface {
	Authorize(ctx context.Context, token string, role domain.Role) bool
	ExtractSubject(token string) (string, bool)
	ExtractEntityID(ctx context.Context, token string, role domain.Role) (int64, bool)
}

// PrescriptionInput describes a prescription to save.
type PrescriptionInput struct {
	AppointmentID int64
	PatientName   string
	Medication    string
	Dosage        string
	DoctorNotes   string
}

// PrescriptionService saves prescriptions on behalf of doctors.
type PrescriptionService struct {
	gate          Authorizer
	tx            repository.Transactor
	prescriptions repository.PrescriptionRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// PrescriptionDependencies bundles collaborators for the prescription service.
type PrescriptionDependencies struct {
	Gate             Authorizer
	Transactor       repository.Transactor
	PrescriptionRepo repository.PrescriptionRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewPrescriptionService constructs the service.
func NewPrescriptionService(deps PrescriptionDependencies) *PrescriptionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrescriptionService{
		gate:          deps.Gate,
		tx:            deps.Transactor,
		prescriptions: deps.PrescriptionRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// Save persists a prescription and marks its appointment completed.
// Both writes share one transaction; the prescription is written first.
func (s *PrescriptionService) Save(ctx context.Context, token string, input PrescriptionInput) (*domain.Prescription, error) {
	if !s.gate.Authorize(ctx, token, domain.RoleDoctor) {
		return nil, ErrUnauthorized
	}
	if err := validatePrescription(input); err != nil {
		return nil, err
	}

	prescription := &domain.Prescription{
		AppointmentID: input.AppointmentID,
		PatientName:   strings.TrimSpace(input.PatientName),
		Medication:    strings.TrimSpace(input.Medication),
		Dosage:        strings.TrimSpace(input.Dosage),
		DoctorNotes:   strings.TrimSpace(input.DoctorNotes),
	}
	if doctorID, ok := s.gate.ExtractEntityID(ctx, token, domain.RoleDoctor); ok {
		prescription.DoctorID = &doctorID
	}

	err := s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		if _, err := repos.Appointments.GetByIDForUpdate(ctx, prescription.AppointmentID); err != nil {
			return appointmentError(err)
		}
		if err := repos.Prescriptions.Create(ctx, prescription); err != nil {
			return appointmentError(err)
		}
		if err := repos.Appointments.UpdateStatus(ctx, prescription.AppointmentID, domain.AppointmentStatusCompleted); err != nil {
			return appointmentError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	subject, _ := s.gate.ExtractSubject(token)
	actor := events.Actor{Role: domain.RoleDoctor, Subject: subject, ID: prescription.DoctorID}
	s.publishEvent(ctx, events.Event{
		Type:          events.EventPrescriptionSaved,
		AppointmentID: prescription.AppointmentID,
		Actor:         actor,
		Payload: events.PrescriptionSavedPayload{
			PrescriptionID: prescription.ID,
			PatientName:    prescription.PatientName,
			Medication:     prescription.Medication,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentCompleted,
		AppointmentID: prescription.AppointmentID,
		Actor:         actor,
		Payload:       events.AppointmentCompletedPayload{NewStatus: domain.AppointmentStatusCompleted},
	})

	return prescription, nil
}

// GetByAppointment returns the prescription written for an appointment.
func (s *PrescriptionService) GetByAppointment(ctx context.Context, token string, appointmentID int64) (*domain.Prescription, error) {
	if !s.gate.Authorize(ctx, token, domain.RoleDoctor) {
		return nil, ErrUnauthorized
	}
	prescription, err := s.prescriptions.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	return prescription, nil
}

func (s *PrescriptionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// appointmentError maps a missing row or a failed appointment foreign key to ErrAppointmentNotFound.
func appointmentError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrAppointmentNotFound
	case errors.As(err, &pgErr) && pgErr.Code == "23503":
		return ErrAppointmentNotFound
	}
	return err
}

func validatePrescription(input PrescriptionInput) error {
	fields := map[string]string{}
	if input.AppointmentID <= 0 {
		fields["appointmentId"] = "must be a positive id"
	}
	checkLength(fields, "patientName", input.PatientName, 3, 100)
	checkLength(fields, "medication", input.Medication, 3, 100)
	checkLength(fields, "dosage", input.Dosage, 1, 100)
	if len(strings.TrimSpace(input.DoctorNotes)) > 200 {
		fields["doctorNotes"] = "must be at most 200 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkLength(fields map[string]string, name, value string, minLen, maxLen int) {
	n := len([]rune(strings.TrimSpace(value)))
	switch {
	case n == 0:
		fields[name] = "is required"
	case n < minLen || n > maxLen:
		fields[name] = fmt.Sprintf("must be between %d and %d characters", minLen, maxLen)
	}
}
