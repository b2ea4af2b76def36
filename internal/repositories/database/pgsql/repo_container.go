package pgsql

import (
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the relational repositories. Analytics
// repositories and the store health handle are filled in by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ClientRepo:  newPgxClientRepository(dbPool),
		UserRepo:    newPgxUserRepository(dbPool),
		GrantRepo:   newPgxGrantRepository(dbPool),
		CommentRepo: newPgxCommentRepository(dbPool),
	}
}
