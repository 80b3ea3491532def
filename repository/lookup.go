package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

type LookupRepository interface {
	List(ctx context.Context, tenantID string) ([]domain.Lookup, error)
	Upsert(ctx context.Context, item *domain.Lookup) error
	Rename(ctx context.Context, tenantID, category, oldValue, newValue string) error
}
