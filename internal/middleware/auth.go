package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a Gin middleware handler that validates bearer tokens.
// A missing or malformed Authorization header is rejected with 401; a token that
// fails verification (bad signature, expired, wrong issuer) with 403.
func AuthMiddleware(tokens portssvc.TokenSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		identity, err := tokens.ParseAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", identity.UserID), slog.String("role", string(identity.Role)))
		ctx := WithIdentity(c.Request.Context(), *identity)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
