package services

import (
	"context"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/SscSPs/holistic_money/internal/dto"
)

// ClientReaderSvc defines read operations for tenants
type ClientReaderSvc interface {
	// ListClients returns all clients, optionally filtered by status ("" means all).
	ListClients(ctx context.Context, status string) ([]domain.Client, error)

	// GetClientByName resolves a client by case-insensitive name.
	GetClientByName(ctx context.Context, name string) (*domain.Client, error)
}

// ClientWriterSvc defines write operations for tenants
type ClientWriterSvc interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error)
	UpdateClient(ctx context.Context, clientID int64, req dto.UpdateClientRequest) (*domain.Client, error)
	DeleteClient(ctx context.Context, clientID int64) error
}

// ClientSvcFacade combines all client-related service interfaces
type ClientSvcFacade interface {
	ClientReaderSvc
	ClientWriterSvc
}
