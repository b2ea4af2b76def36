package dto

import (
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// AddCommentRequest is the body of a new comment.
type AddCommentRequest struct {
	EntryID     string `json:"entry_id" binding:"required"`
	CommentText string `json:"comment_text" binding:"required"`
	CreatedBy   string `json:"created_by" binding:"required"`
	Client      string `json:"client" binding:"required"`
}

// UpdateCommentRequest is the body of a comment edit. The entry id comes from the path.
type UpdateCommentRequest struct {
	CommentText string `json:"comment_text" binding:"required"`
	Client      string `json:"client" binding:"required"`
	CreatedBy   string `json:"created_by"`
}

// DeleteCommentRequest names the tenant whose comment is deleted.
// The client may also be supplied as a query parameter.
type DeleteCommentRequest struct {
	Client string `json:"client"`
}

// CommentResponse is the API representation of a comment version.
type CommentResponse struct {
	CommentID   string    `json:"comment_id"`
	EntryID     string    `json:"entry_id"`
	CommentText string    `json:"comment_text"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Warning     string    `json:"warning,omitempty"`
}

// ToCommentResponse converts a write result to its DTO
func ToCommentResponse(res *domain.CommentWriteResult) CommentResponse {
	return CommentResponse{
		CommentID:   res.Comment.CommentID,
		EntryID:     res.Comment.EntryID,
		CommentText: res.Comment.CommentText,
		CreatedBy:   res.Comment.CreatedBy,
		CreatedAt:   res.Comment.CreatedAt,
		UpdatedAt:   res.Comment.UpdatedAt,
		Warning:     res.Warning,
	}
}

// DeleteCommentResponse reports how many versions were removed.
type DeleteCommentResponse struct {
	Message      string `json:"message"`
	EntryID      string `json:"entry_id"`
	DeletedCount int64  `json:"deleted_count"`
}
