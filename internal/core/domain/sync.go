package domain

import "time"

// SyncStatus is the outcome of exporting one tenant's comments.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusSkipped SyncStatus = "skipped" // tenant had no comments
	SyncStatusFailed  SyncStatus = "failed"
)

// TenantSyncResult records what happened to one tenant during a sync run.
type TenantSyncResult struct {
	ClientName   string
	Dataset      string
	Status       SyncStatus
	SourceRows   int
	LoadedRows   int64
	TableExisted bool // main comments table existed before the swap
	Warnings     []string
	Err          error
	Duration     time.Duration
}

// Failed reports whether the tenant export failed.
func (r TenantSyncResult) Failed() bool {
	return r.Status == SyncStatusFailed
}

// SyncRun is the collected result of one full sync over all tenants.
type SyncRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Force      bool
	Results    []TenantSyncResult
}

// Failed reports whether any tenant failed.
func (r SyncRun) Failed() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return true
		}
	}
	return false
}

// Counts returns the number of synced, skipped and failed tenants.
func (r SyncRun) Counts() (synced, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case SyncStatusSynced:
			synced++
		case SyncStatusSkipped:
			skipped++
		case SyncStatusFailed:
			failed++
		}
	}
	return synced, skipped, failed
}

// CommentExportRow is the analytics-side shape of an exported comment.
type CommentExportRow struct {
	CommentID   string    `json:"comment_id"`
	EntryID     string    `json:"entry_id"`
	CommentText string    `json:"comment_text"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExportRowFromComment maps a comment onto its exported shape.
func ExportRowFromComment(c Comment) CommentExportRow {
	return CommentExportRow{
		CommentID:   c.CommentID,
		EntryID:     c.EntryID,
		CommentText: c.CommentText,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}
