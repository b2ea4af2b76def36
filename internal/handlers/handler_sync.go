package handlers

import (
	"context"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/gin-gonic/gin"
)

type syncHandler struct {
	syncService   portssvc.SyncSvc
	posthogClient *utils.PosthogClientWrapper
}

func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvc, posthogClient *utils.PosthogClientWrapper) {
	h := &syncHandler{syncService: syncService, posthogClient: posthogClient}
	rg.POST("/trigger-sync", h.triggerSync)
}

// triggerSync godoc
// @Summary Trigger a comment sync
// @Description Exports every client's comments to BigQuery. A run already in progress is joined
// @Description rather than started twice. Force defaults to true.
// @Tags sync
// @Accept json
// @Produce json
// @Param body body dto.TriggerSyncRequest false "Sync options"
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.SyncResponse "One or more clients failed"
// @Security BearerAuth
// @Router /trigger-sync [post]
func (h *syncHandler) triggerSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TriggerSyncRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	force := true
	if req.Force != nil {
		force = *req.Force
	}

	logger.Info("Manually triggering synchronization", slog.Bool("force", force))
	// The run outlives a disconnected caller; other callers may be sharing it.
	run, err := h.syncService.SyncAll(context.WithoutCancel(c.Request.Context()), force)
	if err != nil {
		respondError(c, err, "Failed to trigger synchronization")
		return
	}

	synced, skipped, failed := run.Counts()
	middleware.PosthogEvent(c, h.posthogClient, "sync_triggered", map[string]any{
		"force":   force,
		"synced":  synced,
		"skipped": skipped,
		"failed":  failed,
	})

	status := http.StatusOK
	if run.Failed() {
		status = http.StatusInternalServerError
		logger.Error("Synchronization finished with failures", slog.Int("failed", failed))
	}
	c.JSON(status, dto.ToSyncResponse(run))
}
