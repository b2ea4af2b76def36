package models

import "time"

// User is the row shape of users joined with roles.
type User struct {
	UserID       string     `db:"user_id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    *string    `db:"first_name"` // Nullable
	LastName     *string    `db:"last_name"`  // Nullable
	RoleName     string     `db:"role_name"`
	IsActive     bool       `db:"is_active"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
