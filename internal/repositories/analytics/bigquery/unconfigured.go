package bigquery

import (
	"context"
	"errors"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
)

// ErrNotConfigured is returned by every Unconfigured operation.
var ErrNotConfigured = errors.New("bigquery is not configured: set PROJECT_ID")

// Unconfigured stands in for the analytics store when no project is set, so the
// server still starts and serves the relational endpoints.
type Unconfigured struct{}

var (
	_ portsrepo.FinancialDataReader = Unconfigured{}
	_ portsrepo.CommentWarehouse    = Unconfigured{}
)

func (Unconfigured) QueryLineItems(context.Context, string, *domain.YearMonth) ([]domain.FinancialLineItem, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) CreateStagingTable(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) LoadComments(context.Context, string, string, []domain.CommentExportRow) error {
	return ErrNotConfigured
}

func (Unconfigured) CountRows(context.Context, string, string) (int64, error) {
	return 0, ErrNotConfigured
}

func (Unconfigured) TableExists(context.Context, string, string) (bool, error) {
	return false, ErrNotConfigured
}

func (Unconfigured) ReplaceTable(context.Context, string, string, string) error {
	return ErrNotConfigured
}

func (Unconfigured) DropTable(context.Context, string, string) error {
	return ErrNotConfigured
}

func (Unconfigured) RefreshLatestView(context.Context, string) error {
	return ErrNotConfigured
}
