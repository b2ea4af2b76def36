package services

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// FinancialSvc builds the aggregated P&L report of a client.
type FinancialSvc interface {
	// GetFinancialReport returns the client's report, filtered to month when it parses as YYYY-MM.
	GetFinancialReport(ctx context.Context, clientName, month string) (*domain.FinancialReport, error)
}

// CommentSvc manages the append-only comment log of financial entries.
type CommentSvc interface {
	AddComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error)
	UpdateComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error)
	DeleteComment(ctx context.Context, entryID, clientName string) (*domain.CommentDeleteResult, error)
}

// SyncSvc exports relational comments into the analytics store.
type SyncSvc interface {
	// SyncAll exports every tenant's comments. Concurrent calls share one run.
	SyncAll(ctx context.Context, force bool) (*domain.SyncRun, error)
}
