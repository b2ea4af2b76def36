package pgsql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/core/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedPool     *pgxpool.Pool
	sharedPoolOnce sync.Once
	sharedPoolErr  error
)

// testPool starts one Postgres container per test binary and applies the migrations.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	sharedPoolOnce.Do(func() {
		sharedPool, sharedPoolErr = startPostgres()
	})
	if sharedPoolErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedPoolErr)
	}
	return sharedPool
}

func startPostgres() (*pgxpool.Pool, error) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "holistic_money",
				"POSTGRES_USER":     "hm",
				"POSTGRES_PASSWORD": "hm_password",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, err
	}
	connStr := fmt.Sprintf("postgres://hm:hm_password@%s:%s/holistic_money?sslmode=disable", host, port.Port())

	if err := database.RunMigrations(connStr, "file://../../../../migrations", slog.Default()); err != nil {
		return nil, err
	}
	return database.NewPgxPool(ctx, connStr, database.PoolOptions{MaxConns: 4, MinConns: 1})
}

type RepositoryIntegrationSuite struct {
	suite.Suite
	repos portsrepo.RepositoryProvider
	ctx   context.Context
}

func TestRepositoryIntegration(t *testing.T) {
	pool := testPool(t)
	suite.Run(t, &RepositoryIntegrationSuite{repos: NewRepositoryProvider(pool), ctx: context.Background()})
}

func (s *RepositoryIntegrationSuite) newClient(name string) *domain.Client {
	c, err := s.repos.ClientRepo.CreateClient(s.ctx, domain.Client{
		ClientName:        name,
		BigQueryDataset:   "ds_" + name,
		CommentsTableName: domain.CommentsTableNameFor(name),
		Status:            domain.ClientStatusActive,
	})
	s.Require().NoError(err)
	return c
}

func (s *RepositoryIntegrationSuite) TestClientLifecycle() {
	name := "Acme " + uuid.NewString()[:8]
	created := s.newClient(name)
	s.NotZero(created.ClientID)
	s.Equal(domain.CommentsTableNameFor(name), created.CommentsTableName)

	found, err := s.repos.ClientRepo.FindClientByName(s.ctx, created.ClientName)
	s.Require().NoError(err)
	s.Equal(created.ClientID, found.ClientID)

	upper, err := s.repos.ClientRepo.FindClientByName(s.ctx, "ACME"+created.ClientName[4:])
	s.Require().NoError(err)
	s.Equal(created.ClientID, upper.ClientID)

	_, err = s.repos.ClientRepo.CreateClient(s.ctx, domain.Client{
		ClientName: created.ClientName, BigQueryDataset: "x", CommentsTableName: "x_comments", Status: domain.ClientStatusActive,
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	inactive := domain.ClientStatusInactive
	dataset := "renamed_ds"
	updated, err := s.repos.ClientRepo.UpdateClient(s.ctx, created.ClientID, domain.ClientUpdate{BigQueryDataset: &dataset, Status: &inactive})
	s.Require().NoError(err)
	s.Equal("renamed_ds", updated.BigQueryDataset)
	s.Equal(domain.ClientStatusInactive, updated.Status)
	s.Equal(created.ClientName, updated.ClientName)
	s.Equal(created.CommentsTableName, updated.CommentsTableName)

	list, err := s.repos.ClientRepo.ListClients(s.ctx, &inactive)
	s.Require().NoError(err)
	s.Contains(clientIDs(list), created.ClientID)

	s.Require().NoError(s.repos.ClientRepo.DeleteClient(s.ctx, created.ClientID))
	_, err = s.repos.ClientRepo.FindClientByID(s.ctx, created.ClientID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ErrorIs(s.repos.ClientRepo.DeleteClient(s.ctx, created.ClientID), apperrors.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestCollidingClientNamesKeepSeparateCommentLogs() {
	tag := uuid.NewString()[:8]
	first := s.newClient("Tenant " + tag)

	inUse, err := s.repos.ClientRepo.CommentsTableInUse(s.ctx, first.CommentsTableName)
	s.Require().NoError(err)
	s.True(inUse)

	_, err = s.repos.ClientRepo.CreateClient(s.ctx, domain.Client{
		ClientName:        "Tenant  " + tag + "!",
		BigQueryDataset:   "other_ds",
		CommentsTableName: first.CommentsTableName,
		Status:            domain.ClientStatusActive,
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
	_, err = s.repos.ClientRepo.FindClientByName(s.ctx, "Tenant  "+tag+"!")
	s.ErrorIs(err, apperrors.ErrNotFound)

	second, err := services.NewClientService(s.repos.ClientRepo).CreateClient(s.ctx, dto.CreateClientRequest{
		ClientName:      "Tenant  " + tag + "!",
		BigQueryDataset: "other_ds",
	})
	s.Require().NoError(err)
	s.NotEqual(first.CommentsTableName, second.CommentsTableName)

	id, err := uuid.NewV7()
	s.Require().NoError(err)
	now := time.Now().UTC()
	s.Require().NoError(s.repos.CommentRepo.InsertComment(s.ctx, first.CommentsTableName, domain.Comment{
		CommentID: id.String(), EntryID: "shared-entry", CommentText: "first tenant only", CreatedBy: "tester", CreatedAt: now, UpdatedAt: now,
	}))
	latest, err := s.repos.CommentRepo.FindLatestByEntryIDs(s.ctx, second.CommentsTableName, []string{"shared-entry"})
	s.Require().NoError(err)
	s.Empty(latest)

	// A deleted client's table stays behind and is not handed to a new client.
	s.Require().NoError(s.repos.ClientRepo.DeleteClient(s.ctx, first.ClientID))
	inUse, err = s.repos.ClientRepo.CommentsTableInUse(s.ctx, first.CommentsTableName)
	s.Require().NoError(err)
	s.True(inUse)
	_, err = s.repos.ClientRepo.CreateClient(s.ctx, domain.Client{
		ClientName:        "tenant-" + tag,
		BigQueryDataset:   "third_ds",
		CommentsTableName: first.CommentsTableName,
		Status:            domain.ClientStatusActive,
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *RepositoryIntegrationSuite) TestCommentLog() {
	client := s.newClient("Comments " + uuid.NewString()[:8])
	table := client.CommentsTableName
	base := time.Now().UTC().Truncate(time.Millisecond)

	insert := func(entry, text string, at time.Time) {
		id, err := uuid.NewV7()
		s.Require().NoError(err)
		s.Require().NoError(s.repos.CommentRepo.InsertComment(s.ctx, table, domain.Comment{
			CommentID: id.String(), EntryID: entry, CommentText: text, CreatedBy: "tester", CreatedAt: at, UpdatedAt: at,
		}))
	}
	insert("e1", "first", base)
	insert("e1", "second", base.Add(time.Second))
	insert("e1", "tie-later-id", base.Add(time.Second))
	insert("e2", "other", base)

	latest, err := s.repos.CommentRepo.FindLatestByEntryIDs(s.ctx, table, []string{"e1", "e2", "e3"})
	s.Require().NoError(err)
	s.Require().Len(latest, 2)
	byEntry := map[string]string{}
	for _, c := range latest {
		byEntry[c.EntryID] = c.CommentText
	}
	s.Equal("tie-later-id", byEntry["e1"])
	s.Equal("other", byEntry["e2"])

	all, err := s.repos.CommentRepo.ListAllComments(s.ctx, table)
	s.Require().NoError(err)
	s.Len(all, 4)
	s.Equal("tie-later-id", all[0].CommentText)

	has, err := s.repos.CommentRepo.HasComments(s.ctx, table, "e1")
	s.Require().NoError(err)
	s.True(has)

	n, err := s.repos.CommentRepo.DeleteCommentsByEntryID(s.ctx, table, "e1")
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	n, err = s.repos.CommentRepo.DeleteCommentsByEntryID(s.ctx, table, "e1")
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RepositoryIntegrationSuite) TestUsersAndGrants() {
	email := "user-" + uuid.NewString()[:8] + "@example.com"
	user, err := s.repos.UserRepo.SaveUser(s.ctx, domain.User{
		UserID: uuid.NewString(), Email: email, PasswordHash: "hash", FirstName: "Ada", Role: domain.RoleViewer, IsActive: true,
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleViewer, user.Role)
	s.Empty(user.LastName)

	_, err = s.repos.UserRepo.SaveUser(s.ctx, domain.User{UserID: uuid.NewString(), Email: email, PasswordHash: "h", Role: domain.RoleUser})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	role := domain.RoleAdmin
	inactive := false
	updated, err := s.repos.UserRepo.UpdateUser(s.ctx, email, domain.UserUpdate{Role: &role, IsActive: &inactive})
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, updated.Role)
	s.False(updated.IsActive)
	s.Equal("Ada", updated.FirstName)

	s.Require().NoError(s.repos.UserRepo.TouchLastLogin(s.ctx, user.UserID, time.Now()))
	reloaded, err := s.repos.UserRepo.FindUserByEmail(s.ctx, email)
	s.Require().NoError(err)
	s.NotNil(reloaded.LastLogin)

	client := s.newClient("Granted " + uuid.NewString()[:8])
	s.Require().NoError(s.repos.GrantRepo.GrantClientAccess(s.ctx, user.UserID, client.ClientID))
	s.Require().NoError(s.repos.GrantRepo.GrantClientAccess(s.ctx, user.UserID, client.ClientID))

	ok, err := s.repos.GrantRepo.HasClientAccess(s.ctx, user.UserID, client.ClientName)
	s.Require().NoError(err)
	s.True(ok)

	removed, err := s.repos.GrantRepo.RevokeClientAccess(s.ctx, user.UserID, client.ClientID)
	s.Require().NoError(err)
	s.True(removed)

	ok, err = s.repos.GrantRepo.HasClientAccess(s.ctx, user.UserID, client.ClientName)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.repos.UserRepo.DeleteUser(s.ctx, email))
	_, err = s.repos.UserRepo.FindUserByEmail(s.ctx, email)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func clientIDs(cs []domain.Client) []int64 {
	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.ClientID
	}
	return ids
}
