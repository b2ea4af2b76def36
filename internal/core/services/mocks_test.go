package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// assertErr stands in for an infrastructure failure.
var assertErr = errors.New("store failure")

// --- Mock ClientRepository ---
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindClientByName(ctx context.Context, name string) (*domain.Client, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) FindClientByID(ctx context.Context, clientID int64) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) ListClients(ctx context.Context, status *domain.ClientStatus) ([]domain.Client, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientRepository) CommentsTableInUse(ctx context.Context, table string) (bool, error) {
	args := m.Called(ctx, table)
	if fn, ok := args.Get(0).(func(context.Context, string) bool); ok {
		return fn(ctx, table), args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	args := m.Called(ctx, client)
	if fn, ok := args.Get(0).(func(context.Context, domain.Client) *domain.Client); ok {
		return fn(ctx, client), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateClient(ctx context.Context, clientID int64, update domain.ClientUpdate) (*domain.Client, error) {
	args := m.Called(ctx, clientID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) DeleteClient(ctx context.Context, clientID int64) error {
	return m.Called(ctx, clientID).Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, email string, update domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, email, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// --- Mock GrantRepository ---
type MockGrantRepository struct {
	mock.Mock
}

func (m *MockGrantRepository) GrantClientAccess(ctx context.Context, userID string, clientID int64) error {
	return m.Called(ctx, userID, clientID).Error(0)
}

func (m *MockGrantRepository) RevokeClientAccess(ctx context.Context, userID string, clientID int64) (bool, error) {
	args := m.Called(ctx, userID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantRepository) HasClientAccess(ctx context.Context, userID string, clientName string) (bool, error) {
	args := m.Called(ctx, userID, clientName)
	return args.Bool(0), args.Error(1)
}

// --- Mock CommentRepository ---
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) FindLatestByEntryIDs(ctx context.Context, table string, entryIDs []string) ([]domain.Comment, error) {
	args := m.Called(ctx, table, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) HasComments(ctx context.Context, table string, entryID string) (bool, error) {
	args := m.Called(ctx, table, entryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentRepository) ListAllComments(ctx context.Context, table string) ([]domain.Comment, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) InsertComment(ctx context.Context, table string, comment domain.Comment) error {
	return m.Called(ctx, table, comment).Error(0)
}

func (m *MockCommentRepository) DeleteCommentsByEntryID(ctx context.Context, table string, entryID string) (int64, error) {
	args := m.Called(ctx, table, entryID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock FinancialDataReader ---
type MockFinancialDataReader struct {
	mock.Mock
}

func (m *MockFinancialDataReader) QueryLineItems(ctx context.Context, dataset string, month *domain.YearMonth) ([]domain.FinancialLineItem, error) {
	args := m.Called(ctx, dataset, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialLineItem), args.Error(1)
}

// --- Mock CommentWarehouse ---
type MockCommentWarehouse struct {
	mock.Mock
}

func (m *MockCommentWarehouse) CreateStagingTable(ctx context.Context, dataset string) (string, error) {
	args := m.Called(ctx, dataset)
	return args.String(0), args.Error(1)
}

func (m *MockCommentWarehouse) LoadComments(ctx context.Context, dataset, table string, rows []domain.CommentExportRow) error {
	return m.Called(ctx, dataset, table, rows).Error(0)
}

func (m *MockCommentWarehouse) CountRows(ctx context.Context, dataset, table string) (int64, error) {
	args := m.Called(ctx, dataset, table)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentWarehouse) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	args := m.Called(ctx, dataset, table)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentWarehouse) ReplaceTable(ctx context.Context, dataset, src, dst string) error {
	return m.Called(ctx, dataset, src, dst).Error(0)
}

func (m *MockCommentWarehouse) DropTable(ctx context.Context, dataset, table string) error {
	return m.Called(ctx, dataset, table).Error(0)
}

func (m *MockCommentWarehouse) RefreshLatestView(ctx context.Context, dataset string) error {
	return m.Called(ctx, dataset).Error(0)
}

// storeHealth is a settable availability flag.
type storeHealth struct {
	up atomic.Bool
}

func newStoreHealth(up bool) *storeHealth {
	h := &storeHealth{}
	h.up.Store(up)
	return h
}

func (h *storeHealth) Available() bool { return h.up.Load() }
