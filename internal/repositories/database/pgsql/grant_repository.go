package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxGrantRepository stores user-to-client grants in user_clients.
type PgxGrantRepository struct {
	BaseRepository
}

func newPgxGrantRepository(db *pgxpool.Pool) portsrepo.GrantRepository {
	return &PgxGrantRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.GrantRepository = (*PgxGrantRepository)(nil)

func (r *PgxGrantRepository) GrantClientAccess(ctx context.Context, userID string, clientID int64) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO user_clients (user_id, client_id)
		VALUES ($1::uuid, $2)
		ON CONFLICT (user_id, client_id) DO NOTHING`, userID, clientID)
	if err != nil {
		return fmt.Errorf("failed to grant client %d to user %s: %w", clientID, userID, err)
	}
	return nil
}

func (r *PgxGrantRepository) RevokeClientAccess(ctx context.Context, userID string, clientID int64) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM user_clients WHERE user_id = $1::uuid AND client_id = $2`, userID, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke client %d from user %s: %w", clientID, userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxGrantRepository) HasClientAccess(ctx context.Context, userID string, clientName string) (bool, error) {
	var ok bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM user_clients uc
			JOIN clients c ON c.client_id = uc.client_id
			WHERE uc.user_id = $1::uuid AND LOWER(c.client_name) = LOWER($2)
		)`, userID, clientName).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check access of user %s to client %q: %w", userID, clientName, err)
	}
	return ok, nil
}
