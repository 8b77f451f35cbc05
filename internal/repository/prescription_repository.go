package repository

import (
	"context"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// PrescriptionRepository stores prescriptions written at the end of appointments.
type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *domain.Prescription) error
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Prescription, error)
}

type prescriptionRepository struct {
	db DBTX
}

// NewPrescriptionRepository builds repository.
func NewPrescriptionRepository(db DBTX) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	const query = `
        INSERT INTO prescriptions (appointment_id, doctor_id, patient_name, medication, dosage, doctor_notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		prescription.AppointmentID,
		prescription.DoctorID,
		prescription.PatientName,
		prescription.Medication,
		prescription.Dosage,
		prescription.DoctorNotes,
	).Scan(&prescription.ID, &prescription.CreatedAt)
}

func (r *prescriptionRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Prescription, error) {
	const query = `
        SELECT id, appointment_id, doctor_id, patient_name, medication, dosage, doctor_notes, created_at
        FROM prescriptions WHERE appointment_id=$1
        ORDER BY created_at DESC LIMIT 1`

	var prescription domain.Prescription
	if err := r.db.QueryRow(ctx, query, appointmentID).Scan(
		&prescription.ID,
		&prescription.AppointmentID,
		&prescription.DoctorID,
		&prescription.PatientName,
		&prescription.Medication,
		&prescription.Dosage,
		&prescription.DoctorNotes,
		&prescription.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &prescription, nil
}
