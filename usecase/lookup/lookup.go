package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

var validCategories = map[string]bool{
	domain.LookupCategoryArea:       true,
	domain.LookupCategoryRecurrence: true,
	domain.LookupCategoryType:       true,
}

// UseCase serves the dropdown value lists. Reads are open to every
// authenticated member; edits are admin only.
type UseCase struct {
	lookups repository.LookupRepository
	logger  *zap.Logger
}

func New(lookups repository.LookupRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{lookups: lookups, logger: logger}
}

// ListGrouped returns the tenant's lookup values keyed by category, in
// display order.
func (uc *UseCase) ListGrouped(ctx context.Context, actor domain.Actor) (map[string][]string, error) {
	items, err := uc.lookups.List(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]string, len(validCategories))
	for category := range validCategories {
		grouped[category] = []string{}
	}
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item.Value)
	}
	return grouped, nil
}

// AddValue appends a value to a category list.
func (uc *UseCase) AddValue(ctx context.Context, actor domain.Actor, category, value string, order int) (*domain.Lookup, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	category = strings.ToUpper(strings.TrimSpace(category))
	if !validCategories[category] {
		return nil, domain.NewErrorf(domain.ErrCodeValidation, "unknown lookup category %q", category)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "value is required")
	}

	item := &domain.Lookup{
		ID:         uuid.NewString(),
		TenantID:   actor.TenantID,
		Category:   category,
		Value:      value,
		OrderIndex: order,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.lookups.Upsert(ctx, item); err != nil {
		return nil, err
	}

	uc.logger.Info("lookup value added",
		zap.String("tenant_id", actor.TenantID),
		zap.String("category", category),
		zap.String("value", value))
	return item, nil
}

// RenameValue renames a value inside a category. Existing tasks keep
// the label they were saved with; only the dropdown changes.
func (uc *UseCase) RenameValue(ctx context.Context, actor domain.Actor, category, oldValue, newValue string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	category = strings.ToUpper(strings.TrimSpace(category))
	if !validCategories[category] {
		return domain.NewErrorf(domain.ErrCodeValidation, "unknown lookup category %q", category)
	}
	oldValue = strings.TrimSpace(oldValue)
	newValue = strings.TrimSpace(newValue)
	if oldValue == "" || newValue == "" {
		return domain.NewError(domain.ErrCodeValidation, "both the current and the new value are required")
	}
	if oldValue == newValue {
		return nil
	}

	if err := uc.lookups.Rename(ctx, actor.TenantID, category, oldValue, newValue); err != nil {
		return err
	}

	uc.logger.Info("lookup value renamed",
		zap.String("tenant_id", actor.TenantID),
		zap.String("category", category),
		zap.String("from", oldValue),
		zap.String("to", newValue))
	return nil
}
