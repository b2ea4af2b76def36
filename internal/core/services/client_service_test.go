package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/core/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClientServiceTestSuite struct {
	suite.Suite
	mockRepo *MockClientRepository
	service  portssvc.ClientSvcFacade
}

func (suite *ClientServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockClientRepository)
	suite.service = services.NewClientService(suite.mockRepo)
}

func (suite *ClientServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ClientServiceTestSuite) TestCreateClient_DerivesCommentsTable() {
	ctx := context.Background()
	suite.mockRepo.On("CommentsTableInUse", ctx, "acme_corp_comments").Return(false, nil).Once()
	suite.mockRepo.On("CreateClient", ctx, domain.Client{
		ClientName:        "Acme Corp",
		BigQueryDataset:   "acme_ds",
		CommentsTableName: "acme_corp_comments",
		Status:            domain.ClientStatusActive,
	}).Return(&domain.Client{ClientID: 1, ClientName: "Acme Corp", CommentsTableName: "acme_corp_comments"}, nil).Once()

	client, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: " Acme Corp ", BigQueryDataset: "acme_ds"})

	suite.Require().NoError(err)
	suite.Equal(int64(1), client.ClientID)
}

func (suite *ClientServiceTestSuite) TestCreateClient_Validation() {
	ctx := context.Background()
	_, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "  ", BigQueryDataset: "ds"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	status := "archived"
	_, err = suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "Acme", BigQueryDataset: "ds", Status: &status})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ClientServiceTestSuite) TestCreateClient_Duplicate() {
	ctx := context.Background()
	suite.mockRepo.On("CommentsTableInUse", ctx, "acme_comments").Return(false, nil).Once()
	suite.mockRepo.On("CreateClient", ctx, mock.AnythingOfType("domain.Client")).
		Return(nil, apperrors.NewConflictError("Client 'Acme' already exists")).Once()

	_, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "Acme", BigQueryDataset: "ds"})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ClientServiceTestSuite) TestCreateClient_CollidingNamesGetSeparateTables() {
	ctx := context.Background()
	taken := map[string]bool{}
	suite.mockRepo.On("CommentsTableInUse", ctx, mock.AnythingOfType("string")).
		Return(func(_ context.Context, table string) bool { return taken[table] }, nil)
	suite.mockRepo.On("CreateClient", ctx, mock.AnythingOfType("domain.Client")).
		Return(func(_ context.Context, c domain.Client) *domain.Client {
			taken[c.CommentsTableName] = true
			created := c
			return &created
		}, nil).Twice()

	first, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "Acme Corp", BigQueryDataset: "acme_ds"})
	suite.Require().NoError(err)
	second, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "Acme  Corp!", BigQueryDataset: "acme2_ds"})
	suite.Require().NoError(err)

	suite.Equal("acme_corp_comments", first.CommentsTableName)
	suite.NotEqual(first.CommentsTableName, second.CommentsTableName)
	suite.Regexp(`^acme_corp_[0-9a-f]{6}_comments$`, second.CommentsTableName)
}

func (suite *ClientServiceTestSuite) TestCreateClient_NoFreeCommentsTable() {
	ctx := context.Background()
	suite.mockRepo.On("CommentsTableInUse", ctx, mock.AnythingOfType("string")).Return(true, nil)

	_, err := suite.service.CreateClient(ctx, dto.CreateClientRequest{ClientName: "Acme", BigQueryDataset: "ds"})

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateClient", mock.Anything, mock.Anything)
}

func (suite *ClientServiceTestSuite) TestListClients_StatusFilter() {
	ctx := context.Background()
	inactive := domain.ClientStatusInactive
	suite.mockRepo.On("ListClients", ctx, &inactive).Return([]domain.Client{{ClientName: "Old"}}, nil).Once()
	suite.mockRepo.On("ListClients", ctx, (*domain.ClientStatus)(nil)).Return([]domain.Client{}, nil).Once()

	clients, err := suite.service.ListClients(ctx, "Inactive")
	suite.Require().NoError(err)
	suite.Len(clients, 1)

	clients, err = suite.service.ListClients(ctx, "")
	suite.Require().NoError(err)
	suite.Empty(clients)

	_, err = suite.service.ListClients(ctx, "deleted")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ClientServiceTestSuite) TestUpdateClient_NeverTouchesCommentsTable() {
	ctx := context.Background()
	name := "Acme Renamed"
	status := "inactive"
	inactive := domain.ClientStatusInactive
	suite.mockRepo.On("UpdateClient", ctx, int64(3), domain.ClientUpdate{ClientName: &name, Status: &inactive}).
		Return(&domain.Client{ClientID: 3, ClientName: name, CommentsTableName: "acme_comments", Status: inactive}, nil).Once()

	client, err := suite.service.UpdateClient(ctx, 3, dto.UpdateClientRequest{ClientName: &name, Status: &status})

	suite.Require().NoError(err)
	suite.Equal("acme_comments", client.CommentsTableName)
}

func (suite *ClientServiceTestSuite) TestUpdateClient_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("UpdateClient", ctx, int64(99), domain.ClientUpdate{}).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpdateClient(ctx, 99, dto.UpdateClientRequest{})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ClientServiceTestSuite) TestGetClientByName() {
	ctx := context.Background()
	suite.mockRepo.On("FindClientByName", ctx, "acme").Return(&domain.Client{ClientName: "Acme"}, nil).Once()
	suite.mockRepo.On("FindClientByName", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	client, err := suite.service.GetClientByName(ctx, " acme ")
	suite.Require().NoError(err)
	suite.Equal("Acme", client.ClientName)

	_, err = suite.service.GetClientByName(ctx, "ghost")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	assert.Equal(suite.T(), "Client 'ghost' not found", apperrors.Message(err, ""))
}

func (suite *ClientServiceTestSuite) TestDeleteClient() {
	ctx := context.Background()
	suite.mockRepo.On("DeleteClient", ctx, int64(5)).Return(nil).Once()
	suite.mockRepo.On("DeleteClient", ctx, int64(6)).Return(apperrors.ErrNotFound).Once()

	suite.NoError(suite.service.DeleteClient(ctx, 5))
	suite.ErrorIs(suite.service.DeleteClient(ctx, 6), apperrors.ErrNotFound)
}

func TestClientServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClientServiceTestSuite))
}
