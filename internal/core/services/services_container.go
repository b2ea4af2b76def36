package services

import (
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) (*portssvc.ServiceContainer, error) {
	access, err := NewAccessPolicy(cfg.AccessPolicy, repos.GrantRepo)
	if err != nil {
		return nil, err
	}

	container := &portssvc.ServiceContainer{
		Client: NewClientService(repos.ClientRepo),
		User: NewUserService(
			repos.UserRepo,
			WithGrantRepository(repos.GrantRepo, repos.ClientRepo),
		),
		Token:     NewTokenService(cfg),
		Access:    access,
		Financial: NewFinancialService(repos.ClientRepo, repos.FinancialData, repos.CommentRepo, repos.StoreHealth),
		Comment:   NewCommentService(repos.ClientRepo, repos.CommentRepo, repos.StoreHealth),
		Sync: NewSyncService(
			repos.ClientRepo,
			repos.CommentRepo,
			repos.Warehouse,
			cfg.CommentsTable,
			WithSyncConcurrency(cfg.SyncConcurrency),
		),
		StoreHealth: repos.StoreHealth,
	}
	return container, nil
}
