package middleware

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// RequireRole admits only callers whose role is in roles. It must run after AuthMiddleware.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		identity, ok := GetIdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role not permitted", slog.String("role", string(identity.Role)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
