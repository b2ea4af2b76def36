package dto

import (
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// CreateUserRequest defines the data needed to create a user.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"omitempty,oneof=admin user viewer"` // Defaults to user
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin user viewer"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
	IsActive  *bool   `json:"is_active"`
}

// UserResponse is the API representation of a user. The password hash never leaves the service.
type UserResponse struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToUserResponse converts a domain.User to a UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToListUserResponse converts a slice of domain.User to response DTOs
func ToListUserResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = ToUserResponse(&users[i])
	}
	return resp
}

// ClientAccessResponse reports whether a user may read a client.
type ClientAccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
