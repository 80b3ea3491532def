package repository

import (
	"context"
	"time"

	"github.com/taskdeck/backend/domain"
)

// TaskFilter is applied after the visibility filter, never instead of
// it: a filter can narrow what an actor may see but cannot widen it.
type TaskFilter struct {
	Area             string
	ResponsibleEmail string
	Status           string
	CompetenceYM     string
	Search           string
}

// TaskRepository is the facade every handler goes through. All
// operations take the tenant id explicitly; there is no way to reach a
// record by id alone. GetByID answers from the same snapshot List
// serves, so a task from another tenant is indistinguishable from a
// missing one.
type TaskRepository interface {
	List(ctx context.Context, tenantID string) ([]domain.Task, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	SoftDelete(ctx context.Context, tenantID, id, deletedBy string) (*domain.Task, error)
}

// TaskStore is the record-oriented storage collaborator behind the
// facade. It only ever deals in full tenant snapshots and single-record
// writes; read caching happens above it.
type TaskStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Task, error)
	Insert(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	MarkDeleted(ctx context.Context, tenantID, id, deletedBy string, at time.Time) error
}
