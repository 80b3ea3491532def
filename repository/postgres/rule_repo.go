package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type ruleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository returns the Postgres-backed recurrence allow-list store.
// Allow-lists are kept as a JSON array column, mirroring how the data
// was always stored.
func NewRuleRepository(pool *pgxpool.Pool) repository.RuleRepository {
	return &ruleRepository{pool: pool}
}

func (r *ruleRepository) GetByArea(ctx context.Context, tenantID, area string) (*domain.Rule, error) {
	const query = `
	SELECT id, tenant_id, area, allowed_recorrencias, updated_at, updated_by
	FROM rules WHERE tenant_id = $1 AND area = $2
	`
	return scanRule(r.pool.QueryRow(ctx, query, tenantID, area))
}

func (r *ruleRepository) List(ctx context.Context, tenantID string) ([]domain.Rule, error) {
	const query = `
	SELECT id, tenant_id, area, allowed_recorrencias, updated_at, updated_by
	FROM rules WHERE tenant_id = $1 ORDER BY area ASC
	`
	return r.list(ctx, query, tenantID)
}

func (r *ruleRepository) ListByArea(ctx context.Context, tenantID, area string) ([]domain.Rule, error) {
	const query = `
	SELECT id, tenant_id, area, allowed_recorrencias, updated_at, updated_by
	FROM rules WHERE tenant_id = $1 AND area = $2
	`
	return r.list(ctx, query, tenantID, area)
}

func (r *ruleRepository) Upsert(ctx context.Context, rule *domain.Rule) (*domain.Rule, error) {
	if rule == nil {
		return nil, domain.ErrInvalidPayload
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	allowed, err := json.Marshal(rule.AllowedRecurrences)
	if err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO rules (id, tenant_id, area, allowed_recorrencias, updated_at, updated_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, area) DO UPDATE
	SET allowed_recorrencias = EXCLUDED.allowed_recorrencias,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	RETURNING id, updated_at
	`
	var id string
	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		rule.ID, rule.TenantID, rule.Area, allowed, rule.UpdatedAt, rule.UpdatedBy,
	).Scan(&id, &updatedAt); err != nil {
		return nil, err
	}
	rule.ID = id
	rule.UpdatedAt = updatedAt
	return rule, nil
}

func (r *ruleRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Rule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func scanRule(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Rule, error) {
	var rule domain.Rule
	var allowed []byte

	if err := row.Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Area,
		&allowed,
		&rule.UpdatedAt,
		&rule.UpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, err
	}

	if len(allowed) > 0 {
		if err := json.Unmarshal(allowed, &rule.AllowedRecurrences); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt allow-list column", err)
		}
	}
	return &rule, nil
}
