package models

import "time"

// Comment is the row shape of a per-client comments table.
type Comment struct {
	CommentID   string    `db:"comment_id"`
	EntryID     string    `db:"entry_id"`
	CommentText string    `db:"comment_text"`
	CreatedBy   *string   `db:"created_by"` // Nullable in older tables
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
