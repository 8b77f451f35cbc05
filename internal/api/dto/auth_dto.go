package dto

import "time"

// AdminLoginRequest payload for administrator login.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload for doctor and patient login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
