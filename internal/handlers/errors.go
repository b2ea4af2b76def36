package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the error body for err. Status and message come from the
// apperrors taxonomy; an unclassified error becomes a 500 carrying fallback.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.StatusCode(err)

	defaultMsg := fallback
	if status < http.StatusInternalServerError {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
		defaultMsg = http.StatusText(status)
	} else {
		logger.Error(fallback, slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.ErrorResponse{Error: apperrors.Message(err, defaultMsg)})
}

// respondBindError reports a request body or query that failed binding.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// bindOptionalJSON binds a JSON body when one is sent, including chunked
// bodies of unknown length. An absent or empty body leaves obj untouched.
// On a malformed body it writes the 400 response and returns false.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	body := c.Request.Body
	if body == nil || body == http.NoBody || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		respondBindError(c, err)
		return false
	}
	return true
}
