package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// RuleRepository stores the per-area recurrence allow-lists.
// GetByArea returns domain.ErrRuleNotFound when an area has no rule;
// callers decide whether that means NO_RULE or simply "nothing yet".
type RuleRepository interface {
	GetByArea(ctx context.Context, tenantID, area string) (*domain.Rule, error)
	List(ctx context.Context, tenantID string) ([]domain.Rule, error)
	ListByArea(ctx context.Context, tenantID, area string) ([]domain.Rule, error)
	Upsert(ctx context.Context, rule *domain.Rule) (*domain.Rule, error)
}
