package domain

import "time"

// Admin is a back-office operator, keyed by username.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
