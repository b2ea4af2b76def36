package dto

import "time"

// LoginRequest represents the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginUser is the subset of the user returned alongside a token.
type LoginUser struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      LoginUser `json:"user"`
}

// ValidateTokenResponse confirms a token is still valid.
type ValidateTokenResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
