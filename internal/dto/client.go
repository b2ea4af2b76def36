package dto

import (
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// CreateClientRequest defines the data needed to register a tenant.
type CreateClientRequest struct {
	ClientName      string  `json:"client_name" binding:"required"`
	BigQueryDataset string  `json:"bigquery_dataset" binding:"required"`
	Status          *string `json:"status"` // Defaults to active
}

// UpdateClientRequest defines the data allowed for updating a tenant.
// Using pointers to differentiate between omitted fields and zero-value fields.
// The comments table name is fixed at creation and cannot be changed here.
type UpdateClientRequest struct {
	ClientName      *string `json:"client_name"`
	BigQueryDataset *string `json:"bigquery_dataset"`
	Status          *string `json:"status"`
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	Status string `form:"status"`
}

// ClientResponse is the API representation of a tenant.
type ClientResponse struct {
	ClientID          int64     `json:"client_id"`
	ClientName        string    `json:"client_name"`
	BigQueryDataset   string    `json:"bigquery_dataset"`
	CommentsTableName string    `json:"comments_table_name"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToClientResponse converts a domain.Client to a ClientResponse DTO
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:          c.ClientID,
		ClientName:        c.ClientName,
		BigQueryDataset:   c.BigQueryDataset,
		CommentsTableName: c.CommentsTableName,
		Status:            string(c.Status),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// ToListClientResponse converts a slice of domain.Client to response DTOs
func ToListClientResponse(clients []domain.Client) []ClientResponse {
	resp := make([]ClientResponse, len(clients))
	for i := range clients {
		resp[i] = ToClientResponse(&clients[i])
	}
	return resp
}
