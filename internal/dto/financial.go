package dto

import (
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FinancialDataParams defines query parameters for the financial report.
type FinancialDataParams struct {
	Client string `form:"client" binding:"required"`
	Month  string `form:"month"` // YYYY-MM, optional
}

// FinancialRowResponse is one aggregated account line.
type FinancialRowResponse struct {
	EntryID       string          `json:"entry_id"`
	OrderingID    string          `json:"ordering_id"`
	ParentAccount string          `json:"parent_account"`
	SubAccount    *string         `json:"sub_account"`
	ChildAccount  *string         `json:"child_account"`
	Actual        decimal.Decimal `json:"actual"`
	BudgetAmount  decimal.Decimal `json:"budget_amount"`
	CommentText   *string         `json:"comment_text"`
	CommentBy     *string         `json:"comment_by"`
	CommentDate   *time.Time      `json:"comment_date"`
	TxnDate       *string         `json:"txnDate"`
}

// FinancialReportResponse wraps the aggregated rows and grand totals.
type FinancialReportResponse struct {
	Data        []FinancialRowResponse `json:"data"`
	TotalActual decimal.Decimal        `json:"totalActual"`
	TotalBudget decimal.Decimal        `json:"totalBudget"`
}

// ToFinancialReportResponse converts a domain.FinancialReport to its DTO
func ToFinancialReportResponse(report *domain.FinancialReport) FinancialReportResponse {
	rows := make([]FinancialRowResponse, len(report.Rows))
	for i, r := range report.Rows {
		row := FinancialRowResponse{
			EntryID:       r.EntryID,
			OrderingID:    r.OrderingID,
			ParentAccount: r.ParentAccount,
			SubAccount:    r.SubAccount,
			ChildAccount:  r.ChildAccount,
			Actual:        r.Actual,
			BudgetAmount:  r.BudgetAmount,
			TxnDate:       domain.StringPtr(r.TxnDate),
		}
		if r.Comment != nil {
			text, by, at := r.Comment.CommentText, r.Comment.CreatedBy, r.Comment.CreatedAt
			row.CommentText = &text
			row.CommentBy = &by
			row.CommentDate = &at
		}
		rows[i] = row
	}
	return FinancialReportResponse{
		Data:        rows,
		TotalActual: report.TotalActual,
		TotalBudget: report.TotalBudget,
	}
}
