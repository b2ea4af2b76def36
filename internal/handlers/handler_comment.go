package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commentHandler handles the comment log of financial entries. These routes
// are reachable without a token.
type commentHandler struct {
	commentService portssvc.CommentSvc
}

func registerCommentRoutes(rg *gin.RouterGroup, commentService portssvc.CommentSvc) {
	h := &commentHandler{commentService: commentService}

	comments := rg.Group("/financial-comments")
	{
		comments.POST("", h.addComment)
		comments.PATCH("/:entry_id", h.updateComment)
		comments.DELETE("/:entry_id", h.deleteComment)
	}
}

// addComment godoc
// @Summary Add a comment
// @Description Appends a comment version to a financial entry. When the database is down
// @Description the comment is echoed back with a warning and is not stored.
// @Tags comments
// @Accept json
// @Produce json
// @Param comment body dto.AddCommentRequest true "Comment"
// @Success 201 {object} dto.CommentResponse
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /financial-comments [post]
func (h *commentHandler) addComment(c *gin.Context) {
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required fields"})
		return
	}

	res, err := h.commentService.AddComment(c.Request.Context(), domain.NewCommentInput{
		EntryID:     req.EntryID,
		CommentText: req.CommentText,
		CreatedBy:   req.CreatedBy,
		ClientName:  req.Client,
	})
	if err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}
	logComment(c, "Comment added", res)
	c.JSON(http.StatusCreated, dto.ToCommentResponse(res))
}

// updateComment godoc
// @Summary Add or replace a comment
// @Description Appends a new version of the entry's comment. Earlier versions are kept and
// @Description the newest one wins on read. Returns 201 when the entry had no comment yet.
// @Tags comments
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param comment body dto.UpdateCommentRequest true "Comment"
// @Success 200 {object} dto.CommentResponse
// @Success 201 {object} dto.CommentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /financial-comments/{entry_id} [patch]
func (h *commentHandler) updateComment(c *gin.Context) {
	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Comment text and client are required"})
		return
	}

	res, err := h.commentService.UpdateComment(c.Request.Context(), domain.NewCommentInput{
		EntryID:     c.Param("entry_id"),
		CommentText: req.CommentText,
		CreatedBy:   req.CreatedBy,
		ClientName:  req.Client,
	})
	if err != nil {
		respondError(c, err, "Failed to update comment")
		return
	}
	logComment(c, "Comment updated", res)

	status := http.StatusOK
	if res.FirstVersion {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToCommentResponse(res))
}

// deleteComment godoc
// @Summary Delete a comment
// @Description Removes every version of the entry's comment. The client may be given in the
// @Description body or as the client query parameter. Fails with 503 when the database is down.
// @Tags comments
// @Accept json
// @Produce json
// @Param entry_id path string true "Entry ID"
// @Param client query string false "Client name"
// @Param body body dto.DeleteCommentRequest false "Client name"
// @Success 200 {object} dto.DeleteCommentResponse
// @Failure 400 {object} dto.ErrorResponse "Client is required"
// @Failure 404 {object} dto.ErrorResponse "Client or comment not found"
// @Failure 500 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Database connection is not available"
// @Router /financial-comments/{entry_id} [delete]
func (h *commentHandler) deleteComment(c *gin.Context) {
	entryID := c.Param("entry_id")

	var req dto.DeleteCommentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	clientName := req.Client
	if clientName == "" {
		clientName = c.Query("client")
	}

	res, err := h.commentService.DeleteComment(c.Request.Context(), entryID, clientName)
	if err != nil {
		respondError(c, err, "Failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, dto.DeleteCommentResponse{
		Message:      "Comment deleted successfully",
		EntryID:      res.EntryID,
		DeletedCount: res.DeletedCount,
	})
}

func logComment(c *gin.Context, msg string, res *domain.CommentWriteResult) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info(msg,
		slog.String("entry_id", res.Comment.EntryID),
		slog.String("comment_id", res.Comment.CommentID),
		slog.Bool("persisted", res.Persisted))
}
