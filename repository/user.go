package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// UserRepository is the tenant-scoped user directory. Emails are
// normalized by callers; lookups are exact.
type UserRepository interface {
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.User, error)
	ListActive(ctx context.Context, tenantID string) ([]domain.User, error)
	ListAll(ctx context.Context, tenantID string) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, tenantID, id string, active bool) error
	SetPassword(ctx context.Context, tenantID, email, passwordHash string, mustChange bool) error
}
