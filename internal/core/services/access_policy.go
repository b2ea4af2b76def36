package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/platform/config"
)

// AllowAll lets every authenticated caller read every client.
type AllowAll struct{}

func (AllowAll) CanAccessClient(context.Context, domain.Identity, string) (bool, error) {
	return true, nil
}

// GrantTable consults the user/client grant table. Admins always pass.
type GrantTable struct {
	BaseService
	grants portsrepo.GrantRepository
}

// NewGrantTable creates a grant-backed access policy.
func NewGrantTable(grants portsrepo.GrantRepository) *GrantTable {
	return &GrantTable{grants: grants}
}

func (p *GrantTable) CanAccessClient(ctx context.Context, identity domain.Identity, clientName string) (bool, error) {
	if identity.Role == domain.RoleAdmin {
		return true, nil
	}
	ok, err := p.grants.HasClientAccess(ctx, identity.UserID, clientName)
	if err != nil {
		return false, fmt.Errorf("failed to check client access: %w", err)
	}
	if !ok {
		p.LogInfo(ctx, "Client access denied",
			slog.String("user_id", identity.UserID),
			slog.String("client", clientName))
	}
	return ok, nil
}

var (
	_ portssvc.AccessPolicy = AllowAll{}
	_ portssvc.AccessPolicy = (*GrantTable)(nil)
)

// NewAccessPolicy returns the policy named by ACCESS_POLICY.
func NewAccessPolicy(name string, grants portsrepo.GrantRepository) (portssvc.AccessPolicy, error) {
	switch name {
	case "", config.AccessPolicyAllowAll:
		return AllowAll{}, nil
	case config.AccessPolicyGrantTable:
		if grants == nil {
			return nil, fmt.Errorf("access policy %q requires a grant repository", name)
		}
		return NewGrantTable(grants), nil
	}
	return nil, fmt.Errorf("unknown access policy %q", name)
}
