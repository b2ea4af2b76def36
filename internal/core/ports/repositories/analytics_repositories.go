package repositories

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// FinancialDataReader reads P&L facts from the analytics store.
type FinancialDataReader interface {
	// QueryLineItems returns the dataset's line items ordered by ordering id,
	// transaction date and parent account. A nil month returns every row.
	QueryLineItems(ctx context.Context, dataset string, month *domain.YearMonth) ([]domain.FinancialLineItem, error)
}

// CommentWarehouse maintains the analytics replica of a tenant's comments.
type CommentWarehouse interface {
	// CreateStagingTable creates a uniquely named, self-expiring table with the
	// comment export schema and returns its name.
	CreateStagingTable(ctx context.Context, dataset string) (string, error)

	// LoadComments bulk loads rows into table. Unknown fields are dropped.
	LoadComments(ctx context.Context, dataset, table string, rows []domain.CommentExportRow) error

	// CountRows returns the number of rows in table.
	CountRows(ctx context.Context, dataset, table string) (int64, error)

	// TableExists reports whether table exists in dataset.
	TableExists(ctx context.Context, dataset, table string) (bool, error)

	// ReplaceTable atomically overwrites dst with the contents of src, creating dst if needed.
	ReplaceTable(ctx context.Context, dataset, src, dst string) error

	// DropTable deletes table. A missing table is not an error.
	DropTable(ctx context.Context, dataset, table string) error

	// RefreshLatestView recreates the latest-comment-per-entry view over the main comments table.
	RefreshLatestView(ctx context.Context, dataset string) error
}
