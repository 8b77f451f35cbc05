package domain

import "strings"

// Role tags the identity store a token is authorized against.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole normalizes a role tag. Unknown tags report false.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	switch role {
	case RoleAdmin, RoleDoctor, RolePatient:
		return role, true
	default:
		return "", false
	}
}

// Identity is the backing record a token subject resolved to.
type Identity struct {
	ID         int64
	Subject    string
	Role       Role
	ObjectType string
}
