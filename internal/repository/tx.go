package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoDatabase is returned when no connection pool is configured.
var ErrNoDatabase = errors.New("database not configured")

// TxRepositories are bound to a single open transaction.
type TxRepositories struct {
	Prescriptions PrescriptionRepository
	Appointments  AppointmentRepository
}

// Transactor runs fn inside one transaction; fn's error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(TxRepositories) error) error
}

type pgTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a pgx-backed Transactor.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &pgTransactor{pool: pool}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(TxRepositories) error) error {
	if t.pool == nil {
		return ErrNoDatabase
	}
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(TxRepositories{
			Prescriptions: NewPrescriptionRepository(tx),
			Appointments:  NewAppointmentRepository(tx),
		})
	})
}
