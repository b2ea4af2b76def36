package domain

import "time"

// DefaultCommentAuthor is recorded when an edit arrives without an author.
const DefaultCommentAuthor = "User"

// Comment is one version of the free-text note attached to a financial entry.
// Versions are append-only; the current comment of an entry is the newest
// version (see Comment.NewerThan).
type Comment struct {
	CommentID   string // UUIDv7, so lexical order follows creation order
	EntryID     string
	CommentText string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewerThan reports whether c supersedes o. Later updated_at wins; equal
// timestamps fall back to the larger comment_id.
func (c Comment) NewerThan(o Comment) bool {
	if !c.UpdatedAt.Equal(o.UpdatedAt) {
		return c.UpdatedAt.After(o.UpdatedAt)
	}
	return c.CommentID > o.CommentID
}

// LatestComments projects a comment log onto the current comment per entry.
func LatestComments(log []Comment) map[string]Comment {
	latest := make(map[string]Comment, len(log))
	for _, c := range log {
		if cur, ok := latest[c.EntryID]; !ok || c.NewerThan(cur) {
			latest[c.EntryID] = c
		}
	}
	return latest
}

// NewCommentInput is the validated input of an add or update.
type NewCommentInput struct {
	EntryID     string
	CommentText string
	CreatedBy   string
	ClientName  string
}

// CommentWriteResult describes the outcome of an add or update.
type CommentWriteResult struct {
	Comment      Comment
	Persisted    bool   // false when the relational store was unavailable
	Warning      string // set when Persisted is false
	FirstVersion bool   // true when no earlier version existed for the entry
}

// CommentDeleteResult describes the outcome of a delete.
type CommentDeleteResult struct {
	EntryID      string
	DeletedCount int64
}
