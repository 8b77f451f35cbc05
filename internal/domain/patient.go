package domain

import "time"

// Patient is an end-user who books appointments.
type Patient struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
