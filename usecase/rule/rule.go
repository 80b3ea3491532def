package rule

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// UseCase manages the per-area recurrence allow-lists. Admins edit any
// area; leaders may edit their own so they can adjust their team's
// routine without a ticket.
type UseCase struct {
	rules  repository.RuleRepository
	logger *zap.Logger
}

func New(rules repository.RuleRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{rules: rules, logger: logger}
}

// ListRules returns the configured rules. Admins see every area;
// everyone else only their own.
func (uc *UseCase) ListRules(ctx context.Context, actor domain.Actor) ([]domain.Rule, error) {
	rules, err := uc.rules.List(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleAdmin {
		return rules, nil
	}

	scoped := make([]domain.Rule, 0, 1)
	for _, r := range rules {
		if r.Area == actor.Area {
			scoped = append(scoped, r)
		}
	}
	return scoped, nil
}

// GetForArea returns the rule for one area, or NO_RULE when none is
// configured. Non-admins can only ask about their own area.
func (uc *UseCase) GetForArea(ctx context.Context, actor domain.Actor, area string) (*domain.Rule, error) {
	area = strings.TrimSpace(area)
	if actor.Role != domain.RoleAdmin && area != actor.Area {
		return nil, domain.ErrForbidden
	}

	rule, err := uc.rules.GetByArea(ctx, actor.TenantID, area)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewErrorf(domain.ErrCodeNoRule, "no recurrence rule configured for area %q", area)
		}
		return nil, err
	}
	return rule, nil
}

// UpsertRule replaces an area's allow-list. An empty list is valid and
// means users in the area can self-create nothing.
func (uc *UseCase) UpsertRule(ctx context.Context, actor domain.Actor, area string, allowed []string) (*domain.Rule, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "area is required")
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleLeader:
		if area != actor.Area {
			return nil, domain.NewError(domain.ErrCodeForbidden, "leaders can only edit their own area's rule")
		}
	default:
		return nil, domain.ErrForbidden
	}

	cleaned := make([]string, 0, len(allowed))
	seen := make(map[string]bool, len(allowed))
	for _, value := range allowed {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		cleaned = append(cleaned, value)
	}

	rule := &domain.Rule{
		TenantID:           actor.TenantID,
		Area:               area,
		AllowedRecurrences: cleaned,
		UpdatedAt:          time.Now().UTC(),
		UpdatedBy:          actor.Email,
	}
	saved, err := uc.rules.Upsert(ctx, rule)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("recurrence rule updated",
		zap.String("tenant_id", actor.TenantID),
		zap.String("area", area),
		zap.Strings("allowed", cleaned))
	return saved, nil
}
