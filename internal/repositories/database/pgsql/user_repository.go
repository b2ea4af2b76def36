package pgsql

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userSelect = `
	SELECT u.user_id::text AS user_id, u.email, u.password_hash, u.first_name, u.last_name,
	       r.role_name, u.is_active, u.last_login, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.role_id = u.role_id`

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    domain.StringValue(m.FirstName),
		LastName:     domain.StringValue(m.LastName),
		Role:         domain.UserRole(m.RoleName),
		IsActive:     m.IsActive,
		LastLogin:    m.LastLogin,
		Timestamps:   domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}

func (r *PgxUserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	rows, err := r.Pool.Query(ctx, userSelect+" WHERE "+where, arg)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, err
	}
	u := toDomainUser(m)
	return &u, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.findOne(ctx, "u.user_id::text = $1", userID)
	if err != nil {
		return nil, wrapErr(err, "failed to find user by ID %s", userID)
	}
	return u, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.findOne(ctx, "LOWER(u.email) = LOWER($1)", email)
	if err != nil {
		return nil, wrapErr(err, "failed to find user by email")
	}
	return u, nil
}

func (r *PgxUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.Pool.Query(ctx, userSelect+" ORDER BY u.email")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	users := make([]domain.User, len(ms))
	for i, m := range ms {
		users[i] = toDomainUser(m)
	}
	return users, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) (*domain.User, error) {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO users (user_id, email, password_hash, first_name, last_name, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, (SELECT role_id FROM roles WHERE role_name = $6), $7)`,
		user.UserID, user.Email, user.PasswordHash,
		domain.StringPtr(user.FirstName), domain.StringPtr(user.LastName),
		string(user.Role), user.IsActive)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, apperrors.NewConflictError(fmt.Sprintf("User with email '%s' already exists", user.Email))
		case pgNotNullViolation:
			return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown role '%s'", user.Role))
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return r.FindUserByID(ctx, user.UserID)
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, email string, update domain.UserUpdate) (*domain.User, error) {
	var role *string
	if update.Role != nil {
		s := string(*update.Role)
		role = &s
	}
	rows, err := r.Pool.Query(ctx, `
		WITH updated AS (
			UPDATE users SET
				first_name    = COALESCE($2::text, first_name),
				last_name     = COALESCE($3::text, last_name),
				role_id       = COALESCE((SELECT role_id FROM roles WHERE role_name = $4::text), role_id),
				password_hash = COALESCE($5::text, password_hash),
				is_active     = COALESCE($6::boolean, is_active),
				last_login    = COALESCE($7::timestamptz, last_login),
				updated_at    = NOW()
			WHERE LOWER(email) = LOWER($1)
			RETURNING *
		)
		SELECT u.user_id::text AS user_id, u.email, u.password_hash, u.first_name, u.last_name,
		       r.role_name, u.is_active, u.last_login, u.created_at, u.updated_at
		FROM updated u
		JOIN roles r ON r.role_id = u.role_id`,
		email, update.FirstName, update.LastName, role, update.Password, update.IsActive, update.LastLogin)
	if err != nil {
		return nil, wrapErr(err, "failed to update user")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, wrapErr(err, "failed to update user")
	}
	u := toDomainUser(m)
	return &u, nil
}

func (r *PgxUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.Pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE user_id::text = $1`, userID, at); err != nil {
		return fmt.Errorf("failed to record login for user %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the user and their grants in one transaction.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, email string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	_, err = tx.Exec(ctx, `
		DELETE FROM user_clients
		WHERE user_id IN (SELECT user_id FROM users WHERE LOWER(email) = LOWER($1))`, email)
	if err != nil {
		return fmt.Errorf("failed to delete grants of user: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(http.StatusNotFound, "User not found", apperrors.ErrNotFound)
	}
	return r.Commit(ctx, tx)
}
