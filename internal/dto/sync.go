package dto

import (
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
)

// TriggerSyncRequest is the optional body of a manual sync.
type TriggerSyncRequest struct {
	Force *bool `json:"force"` // Defaults to true
}

// TenantSyncResponse is the per-tenant outcome of a sync run.
type TenantSyncResponse struct {
	ClientName   string   `json:"client_name"`
	Dataset      string   `json:"dataset"`
	Status       string   `json:"status"`
	SourceRows   int      `json:"source_rows"`
	LoadedRows   int64    `json:"loaded_rows"`
	TableExisted bool     `json:"table_existed"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

// SyncResponse is the result of a manual sync.
type SyncResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Force      bool                 `json:"force"`
	Timestamp  time.Time            `json:"timestamp"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Results    []TenantSyncResponse `json:"results"`
}

// ToSyncResponse converts a domain.SyncRun to its DTO
func ToSyncResponse(run *domain.SyncRun) SyncResponse {
	results := make([]TenantSyncResponse, len(run.Results))
	for i, r := range run.Results {
		results[i] = TenantSyncResponse{
			ClientName:   r.ClientName,
			Dataset:      r.Dataset,
			Status:       string(r.Status),
			SourceRows:   r.SourceRows,
			LoadedRows:   r.LoadedRows,
			TableExisted: r.TableExisted,
			Warnings:     r.Warnings,
			DurationMS:   r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			results[i].Error = r.Err.Error()
		}
	}
	resp := SyncResponse{
		Success:    !run.Failed(),
		Message:    "Synchronization to BigQuery completed successfully",
		Force:      run.Force,
		Timestamp:  run.FinishedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Results:    results,
	}
	if run.Failed() {
		resp.Message = "Synchronization failed for one or more clients"
	}
	return resp
}

// HealthResponse reports liveness and relational store connectivity.
type HealthResponse struct {
	Status            string    `json:"status"`
	PostgresConnected bool      `json:"postgresConnected"`
	Timestamp         time.Time `json:"timestamp"`
}
