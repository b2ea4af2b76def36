package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `comment_id::text AS comment_id, entry_id, comment_text, created_by, created_at, updated_at`

// PgxCommentRepository reads and appends to the per-client comments tables.
// Every method takes the table name stored on the client row.
type PgxCommentRepository struct {
	BaseRepository
}

func newPgxCommentRepository(db *pgxpool.Pool) portsrepo.CommentRepositoryFacade {
	return &PgxCommentRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.CommentRepositoryFacade = (*PgxCommentRepository)(nil)

func toDomainComment(m models.Comment) domain.Comment {
	return domain.Comment{
		CommentID:   m.CommentID,
		EntryID:     m.EntryID,
		CommentText: m.CommentText,
		CreatedBy:   domain.StringValue(m.CreatedBy),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func collectComments(rows pgx.Rows) ([]domain.Comment, error) {
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, len(ms))
	for i, m := range ms {
		comments[i] = toDomainComment(m)
	}
	return comments, nil
}

// FindLatestByEntryIDs returns one row per entry: the newest by updated_at, ties broken by the larger comment_id.
func (r *PgxCommentRepository) FindLatestByEntryIDs(ctx context.Context, table string, entryIDs []string) ([]domain.Comment, error) {
	if len(entryIDs) == 0 {
		return []domain.Comment{}, nil
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (entry_id) %s
		FROM %s
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, updated_at DESC, comment_id DESC`, commentColumns, tableIdent(table))
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, wrapErr(err, "failed to query latest comments from %s", table)
	}
	comments, err := collectComments(rows)
	if err != nil {
		return nil, wrapErr(err, "failed to scan latest comments from %s", table)
	}
	return comments, nil
}

func (r *PgxCommentRepository) HasComments(ctx context.Context, table string, entryID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE entry_id = $1)`, tableIdent(table))
	if err := r.Pool.QueryRow(ctx, query, entryID).Scan(&exists); err != nil {
		return false, wrapErr(err, "failed to check comments in %s", table)
	}
	return exists, nil
}

func (r *PgxCommentRepository) ListAllComments(ctx context.Context, table string) ([]domain.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY updated_at DESC, comment_id DESC`, commentColumns, tableIdent(table))
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "failed to read comments from %s", table)
	}
	comments, err := collectComments(rows)
	if err != nil {
		return nil, wrapErr(err, "failed to scan comments from %s", table)
	}
	return comments, nil
}

func (r *PgxCommentRepository) InsertComment(ctx context.Context, table string, c domain.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (comment_id, entry_id, comment_text, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, tableIdent(table))
	_, err := r.Pool.Exec(ctx, query, c.CommentID, c.EntryID, c.CommentText, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return wrapErr(err, "failed to insert comment into %s", table)
	}
	return nil
}

func (r *PgxCommentRepository) DeleteCommentsByEntryID(ctx context.Context, table string, entryID string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE entry_id = $1`, tableIdent(table)), entryID)
	if err != nil {
		return 0, wrapErr(err, "failed to delete comments from %s", table)
	}
	return tag.RowsAffected(), nil
}
