package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/SscSPs/holistic_money/internal/core/services"
	"github.com/SscSPs/holistic_money/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "holistic-money",
		AccessPolicy:      config.AccessPolicyGrantTable,
		CommentsTable:     "financial_comments",
		SyncConcurrency:   2,
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tokens := services.NewTokenService(testConfig())
	user := &domain.User{UserID: "u-1", Email: "ann@example.com", Role: domain.RoleViewer}

	token, expiresAt, err := tokens.GenerateAccessToken(ctx, user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := tokens.ParseAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "u-1", Email: "ann@example.com", Role: domain.RoleViewer}, *identity)
}

func TestTokenService_RejectsForeignToken(t *testing.T) {
	ctx := context.Background()
	other := testConfig()
	other.JWTSecret = "another-secret"
	token, _, err := services.NewTokenService(other).GenerateAccessToken(ctx, &domain.User{UserID: "u-1"})
	require.NoError(t, err)

	_, err = services.NewTokenService(testConfig()).ParseAccessToken(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = services.NewTokenService(testConfig()).ParseAccessToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGrantTablePolicy(t *testing.T) {
	ctx := context.Background()
	grants := new(MockGrantRepository)
	grants.On("HasClientAccess", ctx, "u-1", "Acme").Return(true, nil).Once()
	grants.On("HasClientAccess", ctx, "u-1", "Other").Return(false, nil).Once()
	grants.On("HasClientAccess", ctx, "u-2", "Acme").Return(false, assertErr).Once()
	policy := services.NewGrantTable(grants)

	ok, err := policy.CanAccessClient(ctx, domain.Identity{UserID: "admin", Role: domain.RoleAdmin}, "Anything")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.CanAccessClient(ctx, domain.Identity{UserID: "u-1", Role: domain.RoleUser}, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.CanAccessClient(ctx, domain.Identity{UserID: "u-1", Role: domain.RoleUser}, "Other")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = policy.CanAccessClient(ctx, domain.Identity{UserID: "u-2", Role: domain.RoleUser}, "Acme")
	assert.ErrorIs(t, err, assertErr)
	grants.AssertExpectations(t)
}

func TestNewAccessPolicy(t *testing.T) {
	p, err := services.NewAccessPolicy(config.AccessPolicyAllowAll, nil)
	require.NoError(t, err)
	ok, err := p.CanAccessClient(context.Background(), domain.Identity{Role: domain.RoleViewer}, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = services.NewAccessPolicy(config.AccessPolicyGrantTable, new(MockGrantRepository))
	require.NoError(t, err)
	assert.IsType(t, &services.GrantTable{}, p)

	_, err = services.NewAccessPolicy(config.AccessPolicyGrantTable, nil)
	assert.Error(t, err)
	_, err = services.NewAccessPolicy("open_door", nil)
	assert.Error(t, err)
}
