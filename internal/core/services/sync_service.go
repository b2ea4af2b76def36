package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const syncFlightKey = "sync-all"

type syncService struct {
	BaseService
	clients       portsrepo.ClientReader
	comments      portsrepo.CommentReader
	warehouse     portsrepo.CommentWarehouse
	commentsTable string
	concurrency   int
	flight        singleflight.Group
	now           func() time.Time
}

// SyncServiceOption is a functional option for configuring the sync service
type SyncServiceOption func(*syncService)

// WithSyncConcurrency bounds how many tenants are exported at once.
func WithSyncConcurrency(n int) SyncServiceOption {
	return func(s *syncService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSyncClock overrides the clock used for run timestamps.
func WithSyncClock(now func() time.Time) SyncServiceOption {
	return func(s *syncService) {
		s.now = now
	}
}

// NewSyncService creates the comment export pipeline. commentsTable names the
// replica table in every tenant dataset.
func NewSyncService(clients portsrepo.ClientReader, comments portsrepo.CommentReader, warehouse portsrepo.CommentWarehouse, commentsTable string, options ...SyncServiceOption) portssvc.SyncSvc {
	svc := &syncService{
		clients:       clients,
		comments:      comments,
		warehouse:     warehouse,
		commentsTable: commentsTable,
		concurrency:   1,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SyncSvc = (*syncService)(nil)

// SyncAll runs a full export. A caller arriving while a run is in flight
// waits for that run and receives its result.
func (s *syncService) SyncAll(ctx context.Context, force bool) (*domain.SyncRun, error) {
	v, err, shared := s.flight.Do(syncFlightKey, func() (any, error) {
		return s.run(ctx, force)
	})
	if shared {
		s.LogInfo(ctx, "Joined in-flight synchronization run")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.SyncRun), nil
}

func (s *syncService) run(ctx context.Context, force bool) (*domain.SyncRun, error) {
	startedAt := s.now().UTC()
	s.LogInfo(ctx, "Starting synchronization to BigQuery", slog.Bool("force", force))

	clients, err := s.clients.ListClients(ctx, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients for synchronization")
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	results := make([]domain.TenantSyncResult, len(clients))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range clients {
		i := i
		client := clients[i]
		g.Go(func() error {
			results[i] = s.syncTenant(ctx, client)
			return nil
		})
	}
	_ = g.Wait()

	run := &domain.SyncRun{
		StartedAt:  startedAt,
		FinishedAt: s.now().UTC(),
		Force:      force,
		Results:    results,
	}
	synced, skipped, failed := run.Counts()
	s.LogInfo(ctx, "Synchronization finished",
		slog.Int("clients", len(clients)),
		slog.Int("synced", synced),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		slog.Duration("duration", run.FinishedAt.Sub(run.StartedAt)))
	return run, nil
}

// syncTenant replaces one tenant's analytics replica with its full comment log.
// Errors end up on the result so other tenants keep going.
func (s *syncService) syncTenant(ctx context.Context, client domain.Client) (res domain.TenantSyncResult) {
	start := s.now()
	res = domain.TenantSyncResult{ClientName: client.ClientName, Dataset: client.BigQueryDataset}
	logAttrs := []any{slog.String("client", client.ClientName), slog.String("dataset", client.BigQueryDataset)}
	defer func() {
		res.Duration = s.now().Sub(start)
		if res.Err != nil {
			s.LogError(ctx, res.Err, "Client synchronization failed", logAttrs...)
		}
	}()

	fail := func(step string, err error) domain.TenantSyncResult {
		res.Status = domain.SyncStatusFailed
		res.Err = fmt.Errorf("%s: %w", step, err)
		return res
	}

	comments, err := s.comments.ListAllComments(ctx, client.CommentsTableName)
	if err != nil {
		return fail("read comments", err)
	}
	res.SourceRows = len(comments)
	if len(comments) == 0 {
		s.LogInfo(ctx, "No comments to synchronize", logAttrs...)
		res.Status = domain.SyncStatusSkipped
		return res
	}

	staging, err := s.warehouse.CreateStagingTable(ctx, client.BigQueryDataset)
	if err != nil {
		return fail("create staging table", err)
	}
	defer func() {
		if err := s.warehouse.DropTable(ctx, client.BigQueryDataset, staging); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("failed to drop staging table %s: %v", staging, err))
		}
	}()

	rows := make([]domain.CommentExportRow, len(comments))
	for i, c := range comments {
		rows[i] = domain.ExportRowFromComment(c)
	}
	if err := s.warehouse.LoadComments(ctx, client.BigQueryDataset, staging, rows); err != nil {
		return fail("load staging table", err)
	}

	staged, err := s.warehouse.CountRows(ctx, client.BigQueryDataset, staging)
	switch {
	case err != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not verify staging row count: %v", err))
	case staged != int64(len(rows)):
		res.Warnings = append(res.Warnings, fmt.Sprintf("staging row count mismatch: expected %d, got %d", len(rows), staged))
	}

	existed, err := s.warehouse.TableExists(ctx, client.BigQueryDataset, s.commentsTable)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not check for existing comments table: %v", err))
	}
	res.TableExisted = existed

	if err := s.warehouse.ReplaceTable(ctx, client.BigQueryDataset, staging, s.commentsTable); err != nil {
		return fail("replace comments table", err)
	}
	if err := s.warehouse.RefreshLatestView(ctx, client.BigQueryDataset); err != nil {
		return fail("refresh latest comments view", err)
	}

	loaded, err := s.warehouse.CountRows(ctx, client.BigQueryDataset, s.commentsTable)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not verify final row count: %v", err))
		loaded = staged
	}
	res.LoadedRows = loaded
	res.Status = domain.SyncStatusSynced
	s.LogInfo(ctx, "Client synchronized", append(logAttrs,
		slog.Int("source_rows", res.SourceRows),
		slog.Int64("loaded_rows", loaded),
		slog.Bool("table_existed", existed))...)
	return res
}
