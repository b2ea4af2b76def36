package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPaths are never reported as usage events.
var untrackedPaths = map[string]bool{
	"/api/health": true,
}

// PosthogMiddleware reports successful authenticated API calls as usage events.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		// "/api/financial-comments/:entry_id" -> "api_financial-comments_:entry_id"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if client := c.Query("client"); client != "" {
			props["client"] = client
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a custom event on behalf of the authenticated caller.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, eventName string, properties map[string]any) {
	if !posthogClient.IsInitialized() {
		return
	}
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["method"] = c.Request.Method
	properties["path"] = c.Request.URL.Path
	posthogClient.Enqueue(userID, eventName, properties)
}
