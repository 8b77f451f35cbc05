package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// AppointmentRepository stores patient bookings.
type AppointmentRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
}

type appointmentRepository struct {
	db DBTX
}

// NewAppointmentRepository builds repository.
func NewAppointmentRepository(db DBTX) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// GetByIDForUpdate row-locks the appointment until the surrounding transaction ends.
func (r *appointmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	const query = `
        SELECT id, doctor_id, patient_id, appointment_time, status, created_at, updated_at
        FROM appointments WHERE id=$1
        FOR UPDATE`

	var appointment domain.Appointment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&appointment.ID,
		&appointment.DoctorID,
		&appointment.PatientID,
		&appointment.AppointmentTime,
		&appointment.Status,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=NOW() WHERE id=$2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
