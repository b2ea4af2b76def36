package bigquery

import (
	"context"
	"fmt"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// FinancialRepository reads P&L line items from each tenant's budget view.
type FinancialRepository struct {
	client *Client
	view   string
}

// NewFinancialRepository creates a reader over the named P&L view.
func NewFinancialRepository(client *Client, view string) *FinancialRepository {
	return &FinancialRepository{client: client, view: view}
}

var _ portsrepo.FinancialDataReader = (*FinancialRepository)(nil)

func (r *FinancialRepository) QueryLineItems(ctx context.Context, dataset string, month *domain.YearMonth) ([]domain.FinancialLineItem, error) {
	table, err := r.client.tablePath(dataset, r.view)
	if err != nil {
		return nil, err
	}

	sql := `
		SELECT
			v.entry_id,
			v.ordering_id,
			CAST(v.txnDate AS STRING) AS txnDate,
			v.parent_account,
			v.sub_account,
			v.child_account,
			v.actual,
			v.budget_amount
		FROM ` + table + ` AS v`
	var params map[string]string
	if month != nil {
		sql += `
		WHERE STARTS_WITH(CAST(v.txnDate AS STRING), @month_prefix)`
		params = map[string]string{"month_prefix": month.String()}
	}
	sql += `
		ORDER BY v.ordering_id, v.txnDate, v.parent_account`

	res, err := r.client.query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial data for dataset %s: %w", dataset, err)
	}

	cols := struct{ entry, ordering, date, parent, sub, child, actual, budget int }{
		res.column("entry_id"), res.column("ordering_id"), res.column("txnDate"),
		res.column("parent_account"), res.column("sub_account"), res.column("child_account"),
		res.column("actual"), res.column("budget_amount"),
	}

	items := make([]domain.FinancialLineItem, 0, len(res.rows))
	for i, row := range res.rows {
		actual, err := parseAmount(cell(row, cols.actual))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid actual: %w", i, err)
		}
		budget, err := parseAmount(cell(row, cols.budget))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid budget_amount: %w", i, err)
		}
		items = append(items, domain.FinancialLineItem{
			EntryID:       domain.StringValue(cell(row, cols.entry)),
			OrderingID:    domain.StringValue(cell(row, cols.ordering)),
			TxnDate:       domain.StringValue(cell(row, cols.date)),
			ParentAccount: domain.StringValue(cell(row, cols.parent)),
			SubAccount:    nonEmpty(cell(row, cols.sub)),
			ChildAccount:  nonEmpty(cell(row, cols.child)),
			Actual:        actual,
			BudgetAmount:  budget,
		})
	}
	return items, nil
}

// parseAmount treats NULL as zero.
func parseAmount(v *string) (decimal.Decimal, error) {
	if v == nil || *v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*v)
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
