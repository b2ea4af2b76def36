package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/utils"
)

type clientService struct {
	BaseService
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates a new tenant service.
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

const maxCommentsTableSuffixAttempts = 5

func parseClientStatus(s string) (domain.ClientStatus, error) {
	status := domain.ClientStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", apperrors.NewValidationError(fmt.Sprintf("Invalid status '%s'. Must be 'active' or 'inactive'", s))
	}
	return status, nil
}

func (s *clientService) ListClients(ctx context.Context, status string) ([]domain.Client, error) {
	var filter *domain.ClientStatus
	if strings.TrimSpace(status) != "" {
		st, err := parseClientStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}
	clients, err := s.clientRepo.ListClients(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients")
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) GetClientByName(ctx context.Context, name string) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Client name is required")
	}
	client, err := s.clientRepo.FindClientByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Client '%s' not found", name))
		}
		s.LogError(ctx, err, "Failed to look up client", slog.String("client", name))
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	return client, nil
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error) {
	name := strings.TrimSpace(req.ClientName)
	dataset := strings.TrimSpace(req.BigQueryDataset)
	if name == "" || dataset == "" {
		return nil, apperrors.NewValidationError("Client name and BigQuery dataset are required")
	}
	status := domain.ClientStatusActive
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		st, err := parseClientStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	table, err := s.freeCommentsTable(ctx, name)
	if err != nil {
		return nil, err
	}

	client := domain.Client{
		ClientName:        name,
		BigQueryDataset:   dataset,
		CommentsTableName: table,
		Status:            status,
	}
	created, err := s.clientRepo.CreateClient(ctx, client)
	if err != nil {
		s.LogError(ctx, err, "Failed to create client", slog.String("client", name))
		return nil, err
	}
	s.LogInfo(ctx, "Client created",
		slog.Int64("client_id", created.ClientID),
		slog.String("client", created.ClientName),
		slog.String("comments_table", created.CommentsTableName))
	return created, nil
}

// freeCommentsTable derives the comments table for a new client. Names that
// normalize to a table already in use get a random suffix.
func (s *clientService) freeCommentsTable(ctx context.Context, name string) (string, error) {
	base := domain.CommentsTableNameFor(name)
	candidate := base
	for attempt := 0; attempt <= maxCommentsTableSuffixAttempts; attempt++ {
		if attempt > 0 {
			suffix, err := utils.RandomHex(3)
			if err != nil {
				return "", fmt.Errorf("failed to generate comments table suffix: %w", err)
			}
			candidate = domain.CommentsTableNameWithSuffix(base, suffix)
		}
		inUse, err := s.clientRepo.CommentsTableInUse(ctx, candidate)
		if err != nil {
			s.LogError(ctx, err, "Failed to check comments table", slog.String("table", candidate))
			return "", fmt.Errorf("failed to check comments table: %w", err)
		}
		if !inUse {
			if candidate != base {
				s.LogInfo(ctx, "Comments table name taken, using suffixed name",
					slog.String("client", name),
					slog.String("taken", base),
					slog.String("table", candidate))
			}
			return candidate, nil
		}
	}
	return "", apperrors.NewConflictError(fmt.Sprintf("No free comments table for client '%s'", name))
}

func (s *clientService) UpdateClient(ctx context.Context, clientID int64, req dto.UpdateClientRequest) (*domain.Client, error) {
	var update domain.ClientUpdate
	if req.ClientName != nil {
		name := strings.TrimSpace(*req.ClientName)
		if name == "" {
			return nil, apperrors.NewValidationError("Client name cannot be empty")
		}
		update.ClientName = &name
	}
	if req.BigQueryDataset != nil {
		dataset := strings.TrimSpace(*req.BigQueryDataset)
		if dataset == "" {
			return nil, apperrors.NewValidationError("BigQuery dataset cannot be empty")
		}
		update.BigQueryDataset = &dataset
	}
	if req.Status != nil {
		st, err := parseClientStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &st
	}

	client, err := s.clientRepo.UpdateClient(ctx, clientID, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Client not found")
		}
		s.LogError(ctx, err, "Failed to update client", slog.Int64("client_id", clientID))
		return nil, err
	}
	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID int64) error {
	if err := s.clientRepo.DeleteClient(ctx, clientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("Client not found")
		}
		s.LogError(ctx, err, "Failed to delete client", slog.Int64("client_id", clientID))
		return err
	}
	s.LogInfo(ctx, "Client deleted", slog.Int64("client_id", clientID))
	return nil
}
