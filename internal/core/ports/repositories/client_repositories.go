package repositories

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// ClientReader defines read operations for tenants.
type ClientReader interface {
	// FindClientByName looks a client up by name, ignoring case.
	FindClientByName(ctx context.Context, name string) (*domain.Client, error)

	// FindClientByID retrieves a client by its id.
	FindClientByID(ctx context.Context, clientID int64) (*domain.Client, error)

	// ListClients returns all clients ordered by name, optionally filtered by status.
	ListClients(ctx context.Context, status *domain.ClientStatus) ([]domain.Client, error)

	// CommentsTableInUse reports whether table is assigned to a client or
	// already exists in the database, for example left behind by a deleted client.
	CommentsTableInUse(ctx context.Context, table string) (bool, error)
}

// ClientWriter defines write operations for tenants.
type ClientWriter interface {
	// CreateClient inserts the client and creates its relational comments table
	// in the same transaction.
	CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error)

	// UpdateClient applies the non-nil fields of update.
	UpdateClient(ctx context.Context, clientID int64, update domain.ClientUpdate) (*domain.Client, error)

	// DeleteClient removes the client together with its user grants.
	DeleteClient(ctx context.Context, clientID int64) error
}

// ClientRepositoryFacade combines all client-related repository interfaces
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}
