package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes this package reacts to.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgUndefinedTable   = "42P01"
	pgDuplicateTable   = "42P07"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to rollback transaction", err)
	}
	return nil
}

// pgErrorCode returns the SQLSTATE of a Postgres error, or "".
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// pgConstraintName returns the violated constraint or index of a Postgres error, or "".
func pgConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// wrapErr maps driver errors onto application errors and adds context to the rest.
func wrapErr(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	msg := fmt.Sprintf(format, args...)
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return apperrors.NewAppError(http.StatusConflict, msg+": already exists", fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err))
	case pgNotNullViolation:
		return apperrors.NewAppError(http.StatusBadRequest, msg+": missing required value", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	case pgUndefinedTable:
		return apperrors.NewAppError(http.StatusInternalServerError, msg+": table does not exist", err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// tableIdent quotes a table name taken from a client row so it can be interpolated into SQL.
func tableIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
