package middleware

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// identityKey is the key used to store the authenticated caller in the request context.
const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromCtx returns the authenticated caller stored in ctx, if any.
func IdentityFromCtx(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// GetIdentityFromContext retrieves the authenticated caller from the Gin request.
func GetIdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	return IdentityFromCtx(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin request.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	identity, ok := GetIdentityFromContext(c)
	if !ok || identity.UserID == "" {
		return "", false
	}
	return identity.UserID, true
}
