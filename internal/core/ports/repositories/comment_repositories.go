package repositories

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// CommentReader reads a tenant's comment log. table is the tenant's
// comments table name as stored on the client row.
type CommentReader interface {
	// FindLatestByEntryIDs returns the current comment for each of the given entries that has one.
	FindLatestByEntryIDs(ctx context.Context, table string, entryIDs []string) ([]domain.Comment, error)

	// HasComments reports whether any version exists for the entry.
	HasComments(ctx context.Context, table string, entryID string) (bool, error)

	// ListAllComments returns every version in the table, newest first.
	ListAllComments(ctx context.Context, table string) ([]domain.Comment, error)
}

// CommentWriter appends to and prunes a tenant's comment log.
type CommentWriter interface {
	// InsertComment appends a new version.
	InsertComment(ctx context.Context, table string, comment domain.Comment) error

	// DeleteCommentsByEntryID removes every version of the entry and returns the number removed.
	DeleteCommentsByEntryID(ctx context.Context, table string, entryID string) (int64, error)
}

// CommentRepositoryFacade combines all comment-related repository interfaces
type CommentRepositoryFacade interface {
	CommentReader
	CommentWriter
}
