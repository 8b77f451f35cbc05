package domain

import "time"

// Prescription is written by a doctor at the end of an appointment.
type Prescription struct {
	ID            int64
	AppointmentID int64
	DoctorID      *int64
	PatientName   string
	Medication    string
	Dosage        string
	DoctorNotes   string
	CreatedAt     time.Time
}
