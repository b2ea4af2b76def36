package domain

import "time"

// UserRole gates access to administrative endpoints.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleUser   UserRole = "user"
	RoleViewer UserRole = "viewer"
)

// IsValid reports whether r is one of the seeded roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// User represents an application user.
type User struct {
	UserID       string // UUID
	Email        string // Unique login
	PasswordHash string
	FirstName    string
	LastName     string
	Role         UserRole
	IsActive     bool // Soft-disable flag
	LastLogin    *time.Time
	Timestamps
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate carries the optional fields of a user update. Nil means "leave unchanged".
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Role      *UserRole
	Password  *string
	IsActive  *bool
	LastLogin *time.Time
}

// Identity is the authenticated caller as carried by an access token.
type Identity struct {
	UserID string
	Email  string
	Role   UserRole
}
