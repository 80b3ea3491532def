package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type lookupRepository struct {
	pool *pgxpool.Pool
}

func NewLookupRepository(pool *pgxpool.Pool) repository.LookupRepository {
	return &lookupRepository{pool: pool}
}

func (r *lookupRepository) List(ctx context.Context, tenantID string) ([]domain.Lookup, error) {
	const query = `
	SELECT id, tenant_id, category, value, order_index, created_at
	FROM lookups WHERE tenant_id = $1
	ORDER BY category ASC, order_index ASC, value ASC
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Lookup
	for rows.Next() {
		var item domain.Lookup
		if err := rows.Scan(
			&item.ID,
			&item.TenantID,
			&item.Category,
			&item.Value,
			&item.OrderIndex,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *lookupRepository) Upsert(ctx context.Context, item *domain.Lookup) error {
	if item == nil {
		return domain.ErrInvalidPayload
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO lookups (id, tenant_id, category, value, order_index, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, category, value) DO UPDATE
	SET order_index = EXCLUDED.order_index
	`
	_, err := r.pool.Exec(ctx, query,
		item.ID, item.TenantID, item.Category, item.Value, item.OrderIndex, item.CreatedAt,
	)
	return err
}

func (r *lookupRepository) Rename(ctx context.Context, tenantID, category, oldValue, newValue string) error {
	const query = `
	UPDATE lookups SET value = $4
	WHERE tenant_id = $1 AND category = $2 AND value = $3
	`
	tag, err := r.pool.Exec(ctx, query, tenantID, category, oldValue, newValue)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrCodeNotFound, "lookup value not found")
	}
	return nil
}
