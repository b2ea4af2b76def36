package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
)

type financialService struct {
	BaseService
	clients  portsrepo.ClientReader
	data     portsrepo.FinancialDataReader
	comments portsrepo.CommentReader
	health   portsrepo.StoreHealth
}

// NewFinancialService creates the financial report read path.
func NewFinancialService(clients portsrepo.ClientReader, data portsrepo.FinancialDataReader, comments portsrepo.CommentReader, health portsrepo.StoreHealth) portssvc.FinancialSvc {
	return &financialService{clients: clients, data: data, comments: comments, health: health}
}

var _ portssvc.FinancialSvc = (*financialService)(nil)

func (s *financialService) GetFinancialReport(ctx context.Context, clientName, month string) (*domain.FinancialReport, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, apperrors.NewValidationError("Client parameter is required")
	}
	client, err := s.clients.FindClientByName(ctx, clientName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Client '%s' not found", clientName))
		}
		s.LogError(ctx, err, "Failed to look up client", slog.String("client", clientName))
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	var filter *domain.YearMonth
	if strings.TrimSpace(month) != "" {
		ym, err := domain.ParseYearMonth(month)
		if err != nil {
			s.LogWarn(ctx, "Ignoring invalid month filter", slog.String("month", month), slog.String("error", err.Error()))
		} else {
			filter = &ym
		}
	}

	items, err := s.data.QueryLineItems(ctx, client.BigQueryDataset, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to query financial data",
			slog.String("client", client.ClientName),
			slog.String("dataset", client.BigQueryDataset))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Failed to fetch financial data", err)
	}

	latest := s.latestComments(ctx, client, items)
	report := domain.BuildFinancialReport(items, latest)
	s.LogDebug(ctx, "Financial report built",
		slog.String("client", client.ClientName),
		slog.Int("line_items", len(items)),
		slog.Int("rows", len(report.Rows)),
		slog.Int("commented_entries", len(latest)))
	return &report, nil
}

// latestComments degrades to no comments when the store is down or the lookup fails.
func (s *financialService) latestComments(ctx context.Context, client *domain.Client, items []domain.FinancialLineItem) map[string]domain.Comment {
	if len(items) == 0 {
		return nil
	}
	if !s.health.Available() {
		s.LogWarn(ctx, "Relational store unavailable, serving report without comments", slog.String("client", client.ClientName))
		return nil
	}
	found, err := s.comments.FindLatestByEntryIDs(ctx, client.CommentsTableName, domain.EntryIDs(items))
	if err != nil {
		s.LogWarn(ctx, "Failed to load comments, serving report without them",
			slog.String("client", client.ClientName),
			slog.String("table", client.CommentsTableName),
			slog.String("error", err.Error()))
		return nil
	}
	return domain.LatestComments(found)
}
