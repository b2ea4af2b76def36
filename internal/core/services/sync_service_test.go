package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	mockClients   *MockClientRepository
	mockComments  *MockCommentRepository
	mockWarehouse *MockCommentWarehouse
	service       portssvc.SyncSvc
	acme          domain.Client
	empty         domain.Client
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.mockClients = new(MockClientRepository)
	suite.mockComments = new(MockCommentRepository)
	suite.mockWarehouse = new(MockCommentWarehouse)
	suite.service = services.NewSyncService(suite.mockClients, suite.mockComments, suite.mockWarehouse, "financial_comments")
	suite.acme = domain.Client{ClientName: "Acme", BigQueryDataset: "acme_ds", CommentsTableName: "acme_comments"}
	suite.empty = domain.Client{ClientName: "Empty", BigQueryDataset: "empty_ds", CommentsTableName: "empty_comments"}
}

func (suite *SyncServiceTestSuite) TearDownTest() {
	suite.mockClients.AssertExpectations(suite.T())
	suite.mockComments.AssertExpectations(suite.T())
	suite.mockWarehouse.AssertExpectations(suite.T())
}

func comments() []domain.Comment {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Comment{
		{CommentID: "c2", EntryID: "E1", CommentText: "second", CreatedBy: "ann", CreatedAt: at.Add(time.Minute), UpdatedAt: at.Add(time.Minute)},
		{CommentID: "c1", EntryID: "E1", CommentText: "first", CreatedBy: "ann", CreatedAt: at, UpdatedAt: at},
	}
}

func (suite *SyncServiceTestSuite) expectExport(client domain.Client, staging string) {
	ctx := mock.Anything
	suite.mockComments.On("ListAllComments", ctx, client.CommentsTableName).Return(comments(), nil).Once()
	suite.mockWarehouse.On("CreateStagingTable", ctx, client.BigQueryDataset).Return(staging, nil).Once()
	suite.mockWarehouse.On("LoadComments", ctx, client.BigQueryDataset, staging, mock.MatchedBy(func(rows []domain.CommentExportRow) bool {
		return len(rows) == 2 && rows[0].CommentText == "second" && rows[0].CommentID == "c2"
	})).Return(nil).Once()
	suite.mockWarehouse.On("CountRows", ctx, client.BigQueryDataset, staging).Return(int64(2), nil).Once()
	suite.mockWarehouse.On("TableExists", ctx, client.BigQueryDataset, "financial_comments").Return(true, nil).Once()
	suite.mockWarehouse.On("ReplaceTable", ctx, client.BigQueryDataset, staging, "financial_comments").Return(nil).Once()
	suite.mockWarehouse.On("DropTable", ctx, client.BigQueryDataset, staging).Return(nil).Once()
}

func (suite *SyncServiceTestSuite) TestSyncAll_ExportsAndSkips() {
	ctx := context.Background()
	suite.mockClients.On("ListClients", ctx, (*domain.ClientStatus)(nil)).Return([]domain.Client{suite.acme, suite.empty}, nil).Once()
	suite.expectExport(suite.acme, "financial_comments_staging_1")
	suite.mockWarehouse.On("RefreshLatestView", mock.Anything, "acme_ds").Return(nil).Once()
	suite.mockWarehouse.On("CountRows", mock.Anything, "acme_ds", "financial_comments").Return(int64(2), nil).Once()
	suite.mockComments.On("ListAllComments", mock.Anything, "empty_comments").Return([]domain.Comment{}, nil).Once()

	run, err := suite.service.SyncAll(ctx, true)

	suite.Require().NoError(err)
	suite.True(run.Force)
	suite.False(run.Failed())
	suite.Require().Len(run.Results, 2)
	acme := run.Results[0]
	suite.Equal(domain.SyncStatusSynced, acme.Status)
	suite.Equal(2, acme.SourceRows)
	suite.Equal(int64(2), acme.LoadedRows)
	suite.True(acme.TableExisted)
	suite.Empty(acme.Warnings)
	suite.Equal(domain.SyncStatusSkipped, run.Results[1].Status)
	suite.mockWarehouse.AssertNotCalled(suite.T(), "CreateStagingTable", mock.Anything, "empty_ds")
}

func (suite *SyncServiceTestSuite) TestSyncAll_FailedCopyAbortsOnlyThatTenant() {
	ctx := context.Background()
	other := domain.Client{ClientName: "Other", BigQueryDataset: "other_ds", CommentsTableName: "other_comments"}
	suite.mockClients.On("ListClients", ctx, (*domain.ClientStatus)(nil)).Return([]domain.Client{suite.acme, other}, nil).Once()

	suite.mockComments.On("ListAllComments", mock.Anything, "acme_comments").Return(comments(), nil).Once()
	suite.mockWarehouse.On("CreateStagingTable", mock.Anything, "acme_ds").Return("stg_a", nil).Once()
	suite.mockWarehouse.On("LoadComments", mock.Anything, "acme_ds", "stg_a", mock.Anything).Return(nil).Once()
	suite.mockWarehouse.On("CountRows", mock.Anything, "acme_ds", "stg_a").Return(int64(1), nil).Once()
	suite.mockWarehouse.On("TableExists", mock.Anything, "acme_ds", "financial_comments").Return(true, nil).Once()
	suite.mockWarehouse.On("ReplaceTable", mock.Anything, "acme_ds", "stg_a", "financial_comments").Return(assertErr).Once()
	suite.mockWarehouse.On("DropTable", mock.Anything, "acme_ds", "stg_a").Return(nil).Once()

	suite.expectExport(other, "stg_o")
	suite.mockWarehouse.On("RefreshLatestView", mock.Anything, "other_ds").Return(nil).Once()
	suite.mockWarehouse.On("CountRows", mock.Anything, "other_ds", "financial_comments").Return(int64(2), nil).Once()

	run, err := suite.service.SyncAll(ctx, false)

	suite.Require().NoError(err)
	suite.True(run.Failed())
	acme := run.Results[0]
	suite.Equal(domain.SyncStatusFailed, acme.Status)
	suite.ErrorIs(acme.Err, assertErr)
	suite.Contains(acme.Warnings, "staging row count mismatch: expected 2, got 1")
	suite.Equal(domain.SyncStatusSynced, run.Results[1].Status)
	synced, skipped, failed := run.Counts()
	suite.Equal([3]int{1, 0, 1}, [3]int{synced, skipped, failed})
}

func (suite *SyncServiceTestSuite) TestSyncAll_ListClientsError() {
	ctx := context.Background()
	suite.mockClients.On("ListClients", ctx, (*domain.ClientStatus)(nil)).Return(nil, assertErr).Once()

	run, err := suite.service.SyncAll(ctx, false)
	suite.Nil(run)
	suite.ErrorIs(err, assertErr)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

// blockingClients parks ListClients until released so overlapping calls can be observed.
type blockingClients struct {
	MockClientRepository
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingClients) ListClients(context.Context, *domain.ClientStatus) ([]domain.Client, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return nil, nil
}

func TestSyncAll_CoalescesConcurrentCallers(t *testing.T) {
	clients := &blockingClients{entered: make(chan struct{}, 1), release: make(chan struct{})}
	svc := services.NewSyncService(clients, new(MockCommentRepository), new(MockCommentWarehouse), "financial_comments")

	var wg sync.WaitGroup
	runs := make([]*domain.SyncRun, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runs[0], _ = svc.SyncAll(context.Background(), false)
	}()
	<-clients.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		runs[1], _ = svc.SyncAll(context.Background(), false)
	}()
	// Give the second caller time to join the in-flight run.
	time.Sleep(50 * time.Millisecond)
	close(clients.release)
	wg.Wait()

	assert.Equal(t, int32(1), clients.calls.Load())
	require.NotNil(t, runs[0])
	assert.Same(t, runs[0], runs[1])
}

// stubSync counts scheduled runs.
type stubSync struct {
	calls atomic.Int32
}

func (s *stubSync) SyncAll(context.Context, bool) (*domain.SyncRun, error) {
	s.calls.Add(1)
	return &domain.SyncRun{}, nil
}

func TestSyncScheduler_RunsOnStartupAndStops(t *testing.T) {
	svc := &stubSync{}
	scheduler := services.NewSyncScheduler(svc, time.Hour, true)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return svc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestSyncScheduler_Ticks(t *testing.T) {
	svc := &stubSync{}
	scheduler := services.NewSyncScheduler(svc, 10*time.Millisecond, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.Run(ctx)

	require.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
