package domain

import "time"

// Doctor models a practitioner who can be booked and can prescribe.
type Doctor struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Phone          string
	Specialty      string
	AvailableTimes []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
