package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// DoctorRepository handles persistence for doctors.
type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
}

type doctorRepository struct {
	db DBTX
}

// NewDoctorRepository instantiates the repository.
func NewDoctorRepository(db DBTX) DoctorRepository {
	return &doctorRepository{db: db}
}

const doctorColumns = `id, name, email, password_hash, phone, specialty, available_times, created_at, updated_at`

func (r *doctorRepository) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id=$1`
	return scanDoctor(r.db.QueryRow(ctx, query, id))
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE email=$1`
	return scanDoctor(r.db.QueryRow(ctx, query, email))
}

func scanDoctor(row pgx.Row) (*domain.Doctor, error) {
	var doctor domain.Doctor
	if err := row.Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Email,
		&doctor.PasswordHash,
		&doctor.Phone,
		&doctor.Specialty,
		&doctor.AvailableTimes,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doctor, nil
}
