package middleware

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// CheckClientAccess guards routes that read a client's data, named by the
// "client" query parameter. It must run after AuthMiddleware.
func CheckClientAccess(policy portssvc.AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		identity, ok := GetIdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		clientName := c.Query("client")
		if clientName == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Client name is required"})
			return
		}

		allowed, err := policy.CanAccessClient(c.Request.Context(), identity, clientName)
		if err != nil {
			logger.Error("Client access check failed", slog.String("client", clientName), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error checking client access"})
			return
		}
		if !allowed {
			logger.Warn("Client access denied", slog.String("client", clientName))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied to this client"})
			return
		}
		c.Next()
	}
}
