package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by login email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves all users ordered by email.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) (*domain.User, error)

	// UpdateUser applies the non-nil fields of update to the user with the given email.
	// update.Password, when set, must already be a hash.
	UpdateUser(ctx context.Context, email string, update domain.UserUpdate) (*domain.User, error)

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// DeleteUser removes a user and their client grants.
	DeleteUser(ctx context.Context, email string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}

// GrantRepository manages the user-to-client access table.
type GrantRepository interface {
	// GrantClientAccess records that userID may read clientID. Granting twice is a no-op.
	GrantClientAccess(ctx context.Context, userID string, clientID int64) error

	// RevokeClientAccess removes a grant and reports whether one existed.
	RevokeClientAccess(ctx context.Context, userID string, clientID int64) (bool, error)

	// HasClientAccess reports whether userID holds a grant on the named client.
	HasClientAccess(ctx context.Context, userID string, clientName string) (bool, error)
}
