package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FinancialLineItem is one P&L fact row read from the analytics store.
type FinancialLineItem struct {
	EntryID       string
	OrderingID    string
	TxnDate       string // As rendered by the analytics store, e.g. "2024-03-31"
	ParentAccount string
	SubAccount    *string
	ChildAccount  *string
	Actual        decimal.Decimal
	BudgetAmount  decimal.Decimal
}

// AccountKey identifies a report group. Missing sub/child accounts are "".
type AccountKey struct {
	Parent string
	Sub    string
	Child  string
}

// Key returns the grouping key of the line item.
func (i FinancialLineItem) Key() AccountKey {
	return AccountKey{
		Parent: i.ParentAccount,
		Sub:    StringValue(i.SubAccount),
		Child:  StringValue(i.ChildAccount),
	}
}

// ReportRow is an aggregated account line in the financial report.
type ReportRow struct {
	EntryID       string // Representative entry: the first entry seen for the group
	OrderingID    string
	ParentAccount string
	SubAccount    *string
	ChildAccount  *string
	Actual        decimal.Decimal
	BudgetAmount  decimal.Decimal
	TxnDate       string   // First non-empty date seen for the group
	EntryIDs      []string // All entries folded into the row
	Comment       *Comment // Newest comment across EntryIDs, if any
}

// FinancialReport is the aggregated, sorted report with grand totals.
type FinancialReport struct {
	Rows        []ReportRow
	TotalActual decimal.Decimal
	TotalBudget decimal.Decimal
}

// BuildFinancialReport groups items by account hierarchy, sums amounts,
// attaches the newest comment of each group and sorts the result by
// ordering id, then parent, sub and child account.
func BuildFinancialReport(items []FinancialLineItem, latest map[string]Comment) FinancialReport {
	index := make(map[AccountKey]int)
	rows := make([]ReportRow, 0)

	for _, item := range items {
		key := item.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(rows)
			index[key] = pos
			rows = append(rows, ReportRow{
				EntryID:       item.EntryID,
				OrderingID:    item.OrderingID,
				ParentAccount: item.ParentAccount,
				SubAccount:    item.SubAccount,
				ChildAccount:  item.ChildAccount,
				Actual:        decimal.Zero,
				BudgetAmount:  decimal.Zero,
			})
		}
		row := &rows[pos]
		row.Actual = row.Actual.Add(item.Actual)
		row.BudgetAmount = row.BudgetAmount.Add(item.BudgetAmount)
		row.EntryIDs = append(row.EntryIDs, item.EntryID)
		if row.TxnDate == "" && item.TxnDate != "" {
			row.TxnDate = item.TxnDate
		}
		if c, found := latest[item.EntryID]; found {
			if row.Comment == nil || c.NewerThan(*row.Comment) {
				cc := c
				row.Comment = &cc
			}
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if ra.OrderingID != rb.OrderingID {
			return ra.OrderingID < rb.OrderingID
		}
		if ra.ParentAccount != rb.ParentAccount {
			return ra.ParentAccount < rb.ParentAccount
		}
		if sa, sb := StringValue(ra.SubAccount), StringValue(rb.SubAccount); sa != sb {
			return sa < sb
		}
		return StringValue(ra.ChildAccount) < StringValue(rb.ChildAccount)
	})

	report := FinancialReport{Rows: rows, TotalActual: decimal.Zero, TotalBudget: decimal.Zero}
	for _, r := range rows {
		report.TotalActual = report.TotalActual.Add(r.Actual)
		report.TotalBudget = report.TotalBudget.Add(r.BudgetAmount)
	}
	return report
}

// EntryIDs returns the distinct entry ids of items in first-seen order.
func EntryIDs(items []FinancialLineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.EntryID]; ok {
			continue
		}
		seen[item.EntryID] = struct{}{}
		ids = append(ids, item.EntryID)
	}
	return ids
}
