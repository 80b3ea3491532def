package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates the Postgres-backed user directory.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
	id, tenant_id, email, nome, role, area, active, can_delete,
	must_change_password, password_hash, created_at
`

func (r *userRepository) GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2`
	return scanUser(r.pool.QueryRow(ctx, query, tenantID, domain.NormalizeEmail(email)))
}

func (r *userRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`
	return scanUser(r.pool.QueryRow(ctx, query, tenantID, id))
}

func (r *userRepository) ListActive(ctx context.Context, tenantID string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND active ORDER BY nome ASC`
	return r.list(ctx, query, tenantID)
}

func (r *userRepository) ListAll(ctx context.Context, tenantID string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY nome ASC`
	return r.list(ctx, query, tenantID)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO users (id, tenant_id, email, nome, role, area, active, can_delete,
		must_change_password, password_hash, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.TenantID,
		domain.NormalizeEmail(user.Email),
		user.Name,
		user.Role.String(),
		user.Area,
		user.Active,
		user.CanDelete,
		user.MustChangePassword,
		user.PasswordHash,
		user.CreatedAt,
	)
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET nome = $3, role = $4, area = $5, can_delete = $6
	WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		user.TenantID,
		user.ID,
		user.Name,
		user.Role.String(),
		user.Area,
		user.CanDelete,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, tenantID, id string, active bool) error {
	const query = `UPDATE users SET active = $3 WHERE tenant_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, query, tenantID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetPassword(ctx context.Context, tenantID, email, passwordHash string, mustChange bool) error {
	const query = `
	UPDATE users SET password_hash = $3, must_change_password = $4
	WHERE tenant_id = $1 AND email = $2
	`
	tag, err := r.pool.Exec(ctx, query, tenantID, domain.NormalizeEmail(email), passwordHash, mustChange)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	var role string

	if err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.Name,
		&role,
		&user.Area,
		&user.Active,
		&user.CanDelete,
		&user.MustChangePassword,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt role column", err)
	}
	user.Role = parsed
	return &user, nil
}
