package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/gin-gonic/gin"
)

type healthHandler struct {
	storeHealth repositories.StoreHealth
	now         func() time.Time
}

func registerHealthRoutes(api *gin.RouterGroup, storeHealth repositories.StoreHealth) {
	h := &healthHandler{storeHealth: storeHealth, now: time.Now}
	api.GET("/health", h.health)
}

// health godoc
// @Summary Liveness check
// @Description Reports that the server is up and whether the relational store is reachable.
// @Tags root
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *healthHandler) health(c *gin.Context) {
	connected := h.storeHealth != nil && h.storeHealth.Available()
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:            "up",
		PostgresConnected: connected,
		Timestamp:         h.now().UTC(),
	})
}
