package handlers_test

import (
	"context"
	"sync/atomic"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock ClientService ---
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) ListClients(ctx context.Context, status string) ([]domain.Client, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientService) GetClientByName(ctx context.Context, name string) (*domain.Client, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) UpdateClient(ctx context.Context, clientID int64, req dto.UpdateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) DeleteClient(ctx context.Context, clientID int64) error {
	return m.Called(ctx, clientID).Error(0)
}

var _ portssvc.ClientSvcFacade = (*MockClientService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, email string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, email, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GrantClientAccess(ctx context.Context, email, clientName string) error {
	return m.Called(ctx, email, clientName).Error(0)
}

func (m *MockUserService) RevokeClientAccess(ctx context.Context, email, clientName string) error {
	return m.Called(ctx, email, clientName).Error(0)
}

func (m *MockUserService) HasClientAccess(ctx context.Context, email, clientName string) (bool, error) {
	args := m.Called(ctx, email, clientName)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock FinancialService ---
type MockFinancialService struct {
	mock.Mock
}

func (m *MockFinancialService) GetFinancialReport(ctx context.Context, clientName, month string) (*domain.FinancialReport, error) {
	args := m.Called(ctx, clientName, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialReport), args.Error(1)
}

var _ portssvc.FinancialSvc = (*MockFinancialService)(nil)

// --- Mock CommentService ---
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) AddComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommentWriteResult), args.Error(1)
}

func (m *MockCommentService) UpdateComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommentWriteResult), args.Error(1)
}

func (m *MockCommentService) DeleteComment(ctx context.Context, entryID, clientName string) (*domain.CommentDeleteResult, error) {
	args := m.Called(ctx, entryID, clientName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommentDeleteResult), args.Error(1)
}

var _ portssvc.CommentSvc = (*MockCommentService)(nil)

// --- Mock SyncService ---
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAll(ctx context.Context, force bool) (*domain.SyncRun, error) {
	args := m.Called(ctx, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

var _ portssvc.SyncSvc = (*MockSyncService)(nil)

type storeHealth struct {
	up atomic.Bool
}

func (h *storeHealth) Available() bool { return h.up.Load() }
