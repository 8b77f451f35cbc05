package events

import (
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPrescriptionSaved    EventType = "prescription_saved"
	EventAppointmentCompleted EventType = "appointment_completed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role    domain.Role `json:"role"`
	Subject string      `json:"subject"`
	ID      *int64      `json:"id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	AppointmentID int64       `json:"appointment_id"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// PrescriptionSavedPayload payload.
type PrescriptionSavedPayload struct {
	PrescriptionID int64  `json:"prescription_id"`
	PatientName    string `json:"patient_name"`
	Medication     string `json:"medication"`
}

// AppointmentCompletedPayload payload.
type AppointmentCompletedPayload struct {
	NewStatus domain.AppointmentStatus `json:"new_status"`
}
