package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type taskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore returns the Postgres-backed task storage collaborator.
// Every statement filters by tenant id; there is no query path keyed by
// task id alone.
func NewTaskStore(pool *pgxpool.Pool) repository.TaskStore {
	return &taskStore{pool: pool}
}

const taskColumns = `
	id, tenant_id, competencia_ym, recorrencia, tipo, atividade,
	responsavel_email, responsavel_nome, area, prazo, realizado, status,
	observacoes, created_at, created_by, updated_at, updated_by
`

func (s *taskStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE tenant_id = $1 AND deleted_at IS NULL
	ORDER BY competencia_ym DESC, prazo ASC NULLS LAST, created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *taskStore) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, tenant_id, competencia_ym, recorrencia, tipo, atividade,
		responsavel_email, responsavel_nome, area, prazo, realizado, status,
		observacoes, created_at, created_by, updated_at, updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.pool.Exec(ctx, query,
		task.ID,
		task.TenantID,
		task.CompetenceYM,
		task.Recurrence,
		task.Type,
		task.Activity,
		task.ResponsibleEmail,
		task.ResponsibleName,
		task.Area,
		dateArg(task.Deadline),
		dateArg(task.Completed),
		string(task.Status),
		nullString(task.Notes),
		task.CreatedAt,
		task.CreatedBy,
		task.UpdatedAt,
		task.UpdatedBy,
	)
	return err
}

func (s *taskStore) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET competencia_ym = $3,
		recorrencia = $4,
		tipo = $5,
		atividade = $6,
		responsavel_email = $7,
		responsavel_nome = $8,
		area = $9,
		prazo = $10,
		realizado = $11,
		status = $12,
		observacoes = $13,
		updated_at = $14,
		updated_by = $15
	WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, query,
		task.ID,
		task.TenantID,
		task.CompetenceYM,
		task.Recurrence,
		task.Type,
		task.Activity,
		task.ResponsibleEmail,
		task.ResponsibleName,
		task.Area,
		dateArg(task.Deadline),
		dateArg(task.Completed),
		string(task.Status),
		nullString(task.Notes),
		task.UpdatedAt,
		task.UpdatedBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *taskStore) MarkDeleted(ctx context.Context, tenantID, id, deletedBy string, at time.Time) error {
	const query = `
	UPDATE tasks
	SET deleted_at = $3, deleted_by = $4
	WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, query, id, tenantID, at, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		prazo     *time.Time
		realizado *time.Time
		status    string
		notes     *string
	)

	if err := row.Scan(
		&task.ID,
		&task.TenantID,
		&task.CompetenceYM,
		&task.Recurrence,
		&task.Type,
		&task.Activity,
		&task.ResponsibleEmail,
		&task.ResponsibleName,
		&task.Area,
		&prazo,
		&realizado,
		&status,
		&notes,
		&task.CreatedAt,
		&task.CreatedBy,
		&task.UpdatedAt,
		&task.UpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Deadline = dateFrom(prazo)
	task.Completed = dateFrom(realizado)
	task.Status = domain.Status(status)
	if notes != nil {
		task.Notes = *notes
	}
	return &task, nil
}
