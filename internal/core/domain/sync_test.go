package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSyncRun_FailedAndCounts(t *testing.T) {
	run := domain.SyncRun{Results: []domain.TenantSyncResult{
		{ClientName: "a", Status: domain.SyncStatusSynced},
		{ClientName: "b", Status: domain.SyncStatusSkipped},
	}}
	assert.False(t, run.Failed())

	run.Results = append(run.Results, domain.TenantSyncResult{ClientName: "c", Status: domain.SyncStatusFailed})
	assert.True(t, run.Failed())

	synced, skipped, failed := run.Counts()
	assert.Equal(t, 1, synced)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)
}

func TestExportRowFromComment_KeepsCommentID(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	row := domain.ExportRowFromComment(domain.Comment{
		CommentID: "0190c2a4-0000-7000-8000-000000000001", EntryID: "E1", CommentText: "note", CreatedBy: "ann", CreatedAt: at, UpdatedAt: at,
	})

	assert.Equal(t, "0190c2a4-0000-7000-8000-000000000001", row.CommentID)
	assert.Equal(t, "E1", row.EntryID)
	assert.Equal(t, time.UTC, row.UpdatedAt.Location())
	assert.True(t, row.UpdatedAt.Equal(at))
}
