package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/platform/config"
	"github.com/SscSPs/holistic_money/internal/utils"
)

// tokenService implements the TokenSvcFacade for signing and verifying access tokens.
type tokenService struct {
	BaseService
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	token, expiresAt, err := utils.GenerateJWT(user.UserID, user.Email, string(user.Role),
		s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token")
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseAccessToken verifies signature, issuer and expiry and returns the caller identity.
func (s *tokenService) ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer)
	if err != nil {
		s.LogDebug(ctx, "Rejected access token", "error", err.Error())
		return nil, apperrors.NewAppError(http.StatusForbidden, "Invalid or expired token", apperrors.ErrForbidden)
	}
	return &domain.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   domain.UserRole(claims.Role),
	}, nil
}
