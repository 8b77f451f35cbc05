package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// PatientRepository defines persistence access for patients.
type PatientRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)
}

type patientRepository struct {
	db DBTX
}

// NewPatientRepository returns a Postgres-backed implementation.
func NewPatientRepository(db DBTX) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	const query = `
        SELECT id, name, email, password_hash, phone, address, created_at, updated_at
        FROM patients WHERE email=$1`

	return scanPatient(r.db.QueryRow(ctx, query, email))
}

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var patient domain.Patient
	if err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.Email,
		&patient.PasswordHash,
		&patient.Phone,
		&patient.Address,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &patient, nil
}
