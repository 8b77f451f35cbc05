package dto

import "time"

// SavePrescriptionRequest is the body of POST /prescription/save/:token.
type SavePrescriptionRequest struct {
	AppointmentID int64  `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	Medication    string `json:"medication"`
	Dosage        string `json:"dosage"`
	DoctorNotes   string `json:"doctorNotes"`
}

// PrescriptionResponse is the public view of a prescription.
type PrescriptionResponse struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointmentId"`
	DoctorID      *int64    `json:"doctorId,omitempty"`
	PatientName   string    `json:"patientName"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	DoctorNotes   string    `json:"doctorNotes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
