package services

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/SscSPs/holistic_money/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByEmail retrieves a user by login email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser creates a new user.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, email string, req dto.UpdateUserRequest) (*domain.User, error)

	// EnsureAdmin creates the bootstrap administrator if it does not exist yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser removes a user and their client grants.
	DeleteUser(ctx context.Context, email string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser verifies the credentials of an active user and records the login.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserGrantSvc manages which clients a user may read.
type UserGrantSvc interface {
	GrantClientAccess(ctx context.Context, email, clientName string) error
	RevokeClientAccess(ctx context.Context, email, clientName string) error
	HasClientAccess(ctx context.Context, email, clientName string) (bool, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
	UserGrantSvc
}
