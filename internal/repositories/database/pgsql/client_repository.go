package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `client_id, client_name, bigquery_dataset, comments_table_name, status, created_at, updated_at`

const clientsCommentsTableIdx = "clients_comments_table_idx"

// PgxClientRepository stores tenants in the clients table.
type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(db *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

func toDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		BigQueryDataset:   m.BigQueryDataset,
		CommentsTableName: m.CommentsTableName,
		Status:            domain.ClientStatus(m.Status),
		Timestamps:        domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}

func collectOneClient(rows pgx.Rows) (*domain.Client, error) {
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Client])
	if err != nil {
		return nil, err
	}
	c := toDomainClient(m)
	return &c, nil
}

func (r *PgxClientRepository) FindClientByName(ctx context.Context, name string) (*domain.Client, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE LOWER(client_name) = LOWER($1)`, name)
	if err != nil {
		return nil, wrapErr(err, "failed to find client %q", name)
	}
	c, err := collectOneClient(rows)
	if err != nil {
		return nil, wrapErr(err, "failed to find client %q", name)
	}
	return c, nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID int64) (*domain.Client, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return nil, wrapErr(err, "failed to find client %d", clientID)
	}
	c, err := collectOneClient(rows)
	if err != nil {
		return nil, wrapErr(err, "failed to find client %d", clientID)
	}
	return c, nil
}

func (r *PgxClientRepository) ListClients(ctx context.Context, status *domain.ClientStatus) ([]domain.Client, error) {
	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE $1::text IS NULL OR status = $1::text
		ORDER BY client_name`, filter)
	if err != nil {
		return nil, wrapErr(err, "failed to list clients")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Client])
	if err != nil {
		return nil, wrapErr(err, "failed to scan clients")
	}
	clients := make([]domain.Client, len(ms))
	for i, m := range ms {
		clients[i] = toDomainClient(m)
	}
	return clients, nil
}

func (r *PgxClientRepository) CommentsTableInUse(ctx context.Context, table string) (bool, error) {
	var inUse bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM clients WHERE comments_table_name = $1::text)
			OR to_regclass(quote_ident($1::text)) IS NOT NULL`, table).Scan(&inUse)
	if err != nil {
		return false, wrapErr(err, "failed to check comments table %q", table)
	}
	return inUse, nil
}

// CreateClient inserts the client row and creates its comments table in one transaction.
func (r *PgxClientRepository) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	rows, err := tx.Query(ctx, `
		INSERT INTO clients (client_name, bigquery_dataset, comments_table_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+clientColumns,
		client.ClientName, client.BigQueryDataset, client.CommentsTableName, string(client.Status))
	if err != nil {
		return nil, wrapErr(err, "failed to create client %q", client.ClientName)
	}
	created, err := collectOneClient(rows)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			if pgConstraintName(err) == clientsCommentsTableIdx {
				return nil, commentsTableConflict(client.CommentsTableName)
			}
			return nil, apperrors.NewConflictError(fmt.Sprintf("Client '%s' already exists", client.ClientName))
		}
		return nil, wrapErr(err, "failed to create client %q", client.ClientName)
	}

	if err := createCommentsTable(ctx, tx, created.CommentsTableName); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return created, nil
}

func commentsTableConflict(table string) error {
	return apperrors.NewConflictError(fmt.Sprintf("Comments table '%s' already in use", table))
}

// createCommentsTable fails if the table already exists, so a new client never
// inherits another client's comment log.
func createCommentsTable(ctx context.Context, tx pgx.Tx, table string) error {
	ident := tableIdent(table)
	index := tableIdent(table + "_entry_updated_idx")
	ddl := fmt.Sprintf(`
		CREATE TABLE %s (
			comment_id   UUID PRIMARY KEY,
			entry_id     VARCHAR(255) NOT NULL,
			comment_text TEXT NOT NULL,
			created_by   VARCHAR(255),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, ident)
	if _, err := tx.Exec(ctx, ddl); err != nil {
		if pgErrorCode(err) == pgDuplicateTable {
			return commentsTableConflict(table)
		}
		return wrapErr(err, "failed to create comments table %s", table)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (entry_id, updated_at DESC)`, index, ident)); err != nil {
		return wrapErr(err, "failed to index comments table %s", table)
	}
	return nil
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, clientID int64, update domain.ClientUpdate) (*domain.Client, error) {
	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}
	rows, err := r.Pool.Query(ctx, `
		UPDATE clients SET
			client_name      = COALESCE($2::text, client_name),
			bigquery_dataset = COALESCE($3::text, bigquery_dataset),
			status           = COALESCE($4::text, status),
			updated_at       = NOW()
		WHERE client_id = $1
		RETURNING `+clientColumns,
		clientID, update.ClientName, update.BigQueryDataset, status)
	if err != nil {
		return nil, wrapErr(err, "failed to update client %d", clientID)
	}
	c, err := collectOneClient(rows)
	if err != nil {
		return nil, wrapErr(err, "failed to update client %d", clientID)
	}
	return c, nil
}

// DeleteClient removes the client's grants and the client in one transaction.
// The client's comments table is left in place.
func (r *PgxClientRepository) DeleteClient(ctx context.Context, clientID int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_clients WHERE client_id = $1`, clientID); err != nil {
		return wrapErr(err, "failed to delete grants of client %d", clientID)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return wrapErr(err, "failed to delete client %d", clientID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}
