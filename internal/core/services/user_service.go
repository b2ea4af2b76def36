package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/google/uuid"
)

var errInvalidCredentials = apperrors.NewAppError(http.StatusUnauthorized, "Invalid email or password", apperrors.ErrUnauthorized)

type userService struct {
	BaseService
	userRepo   portsrepo.UserRepositoryFacade
	grantRepo  portsrepo.GrantRepository
	clientRepo portsrepo.ClientReader
	now        func() time.Time
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithGrantRepository enables the client grant operations.
func WithGrantRepository(grants portsrepo.GrantRepository, clients portsrepo.ClientReader) UserServiceOption {
	return func(s *userService) {
		s.grantRepo = grants
		s.clientRepo = clients
	}
}

// WithUserClock overrides the clock used for login timestamps.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.now = now
	}
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{userRepo: userRepo, now: time.Now}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to get user", slog.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Email and password are required")
	}
	role := domain.RoleUser
	if req.Role != "" {
		role = domain.UserRole(strings.ToLower(req.Role))
		if !role.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid role '%s'", req.Role))
		}
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
	}
	created, err := s.userRepo.SaveUser(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to create user", slog.String("email", email))
		return nil, err
	}
	s.LogInfo(ctx, "User created", slog.String("user_id", created.UserID), slog.String("role", string(created.Role)))
	return created, nil
}

func (s *userService) UpdateUser(ctx context.Context, email string, req dto.UpdateUserRequest) (*domain.User, error) {
	update := domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := domain.UserRole(strings.ToLower(*req.Role))
		if !role.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid role '%s'", *req.Role))
		}
		update.Role = &role
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			s.LogError(ctx, err, "Failed to hash password")
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.Password = &hash
	}

	user, err := s.userRepo.UpdateUser(ctx, normalizeEmail(email), update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to update user", slog.String("email", email))
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the administrator on first start. An existing account
// is left untouched so a rotated password survives restarts.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	if password == "" {
		s.LogWarn(ctx, "Admin password not configured, skipping admin bootstrap", slog.String("email", email))
		return nil
	}
	_, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		s.LogDebug(ctx, "Admin user already exists", slog.String("email", email))
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	_, err = s.CreateUser(ctx, dto.CreateUserRequest{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		Role:      string(domain.RoleAdmin),
	})
	if err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	s.LogInfo(ctx, "Admin user bootstrapped", slog.String("email", email))
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, email string) error {
	if err := s.userRepo.DeleteUser(ctx, normalizeEmail(email)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to delete user", slog.String("email", email))
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("email", email))
	return nil
}

func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to load user for login")
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.NewAppError(http.StatusUnauthorized, "User account is disabled", apperrors.ErrUnauthorized)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.UserID, now); err != nil {
		// The login itself succeeded.
		s.LogError(ctx, err, "Failed to record last login", slog.String("user_id", user.UserID))
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

// resolveGrant looks up the user and client a grant operation refers to.
func (s *userService) resolveGrant(ctx context.Context, email, clientName string) (*domain.User, *domain.Client, error) {
	if s.grantRepo == nil || s.clientRepo == nil {
		return nil, nil, errors.New("client grants are not configured")
	}
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.clientRepo.FindClientByName(ctx, strings.TrimSpace(clientName))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("Client '%s' not found", clientName))
		}
		return nil, nil, fmt.Errorf("failed to look up client: %w", err)
	}
	return user, client, nil
}

func (s *userService) GrantClientAccess(ctx context.Context, email, clientName string) error {
	user, client, err := s.resolveGrant(ctx, email, clientName)
	if err != nil {
		return err
	}
	if err := s.grantRepo.GrantClientAccess(ctx, user.UserID, client.ClientID); err != nil {
		s.LogError(ctx, err, "Failed to grant client access", slog.String("email", email), slog.String("client", clientName))
		return fmt.Errorf("failed to grant client access: %w", err)
	}
	s.LogInfo(ctx, "Client access granted", slog.String("user_id", user.UserID), slog.Int64("client_id", client.ClientID))
	return nil
}

func (s *userService) RevokeClientAccess(ctx context.Context, email, clientName string) error {
	user, client, err := s.resolveGrant(ctx, email, clientName)
	if err != nil {
		return err
	}
	removed, err := s.grantRepo.RevokeClientAccess(ctx, user.UserID, client.ClientID)
	if err != nil {
		s.LogError(ctx, err, "Failed to revoke client access", slog.String("email", email), slog.String("client", clientName))
		return fmt.Errorf("failed to revoke client access: %w", err)
	}
	if !removed {
		return apperrors.NewNotFoundError("User has no access to this client")
	}
	return nil
}

func (s *userService) HasClientAccess(ctx context.Context, email, clientName string) (bool, error) {
	if s.grantRepo == nil {
		return false, errors.New("client grants are not configured")
	}
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	ok, err := s.grantRepo.HasClientAccess(ctx, user.UserID, strings.TrimSpace(clientName))
	if err != nil {
		return false, fmt.Errorf("failed to check client access: %w", err)
	}
	return ok, nil
}
