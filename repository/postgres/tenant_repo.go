package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type tenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) repository.TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) GetActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	const query = `
	SELECT id, slug, name, active, created_at
	FROM tenants WHERE slug = $1 AND active
	`
	return scanTenant(r.pool.QueryRow(ctx, query, slug))
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	const query = `SELECT id, slug, name, active, created_at FROM tenants WHERE id = $1`
	return scanTenant(r.pool.QueryRow(ctx, query, id))
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	const query = `SELECT id, slug, name, active, created_at FROM tenants ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *tenant)
	}
	return tenants, rows.Err()
}

func (r *tenantRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE tenants SET active = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (r *tenantRepository) Provision(ctx context.Context, tenant *domain.Tenant, admin *domain.User, lookups []domain.Lookup) error {
	if tenant == nil || admin == nil {
		return domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO tenants (id, slug, name, active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		tenant.ID, tenant.Slug, tenant.Name, tenant.Active, tenant.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, tenant_id, email, nome, role, area, active, can_delete,
			must_change_password, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		admin.ID, admin.TenantID, domain.NormalizeEmail(admin.Email), admin.Name,
		admin.Role.String(), admin.Area, admin.Active, admin.CanDelete,
		admin.MustChangePassword, admin.PasswordHash, admin.CreatedAt,
	); err != nil {
		return err
	}

	for _, item := range lookups {
		if _, err := tx.Exec(ctx,
			`INSERT INTO lookups (id, tenant_id, category, value, order_index, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (tenant_id, category, value) DO NOTHING`,
			item.ID, item.TenantID, item.Category, item.Value, item.OrderIndex, item.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanTenant(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := row.Scan(
		&tenant.ID,
		&tenant.Slug,
		&tenant.Name,
		&tenant.Active,
		&tenant.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}
