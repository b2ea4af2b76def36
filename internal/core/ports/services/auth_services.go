package services

import (
	"context"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken signs an access token for the user and returns it with its expiry.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ParseAccessToken validates a token and returns the identity it carries.
	ParseAccessToken(ctx context.Context, token string) (*domain.Identity, error)
}

// AccessPolicy decides whether an authenticated caller may read a client's data.
type AccessPolicy interface {
	CanAccessClient(ctx context.Context, identity domain.Identity, clientName string) (bool, error)
}
