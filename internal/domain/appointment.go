package domain

import "time"

// AppointmentStatus is stored as a small integer.
type AppointmentStatus int

const (
	AppointmentStatusScheduled AppointmentStatus = 0
	AppointmentStatusCompleted AppointmentStatus = 1
)

// Appointment links a patient to a doctor at a point in time.
type Appointment struct {
	ID              int64
	DoctorID        int64
	PatientID       int64
	AppointmentTime time.Time
	Status          AppointmentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
