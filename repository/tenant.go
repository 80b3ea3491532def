package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// TenantRepository resolves and manages tenants. GetActiveBySlug only
// ever returns active tenants; an inactive slug is reported as
// domain.ErrTenantNotFound, same as an unknown one.
type TenantRepository interface {
	GetActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	SetActive(ctx context.Context, id string, active bool) error

	// Provision creates the tenant, its first ADMIN and the default
	// lookup values in a single transaction.
	Provision(ctx context.Context, tenant *domain.Tenant, admin *domain.User, lookups []domain.Lookup) error
}
