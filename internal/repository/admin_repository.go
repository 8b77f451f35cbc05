package repository

import (
	"context"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// AdminRepository defines persistence access for administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

type adminRepository struct {
	db DBTX
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(db DBTX) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (username, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, admin.Username, admin.PasswordHash).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	const query = `
        SELECT id, username, password_hash, created_at, updated_at
        FROM admins WHERE username=$1`

	var admin domain.Admin
	if err := r.db.QueryRow(ctx, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
