package cached

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// DefaultTTL bounds how stale a served snapshot can be. Writes always
// invalidate immediately, so the window only applies between one
// caller's write and another caller's read.
const DefaultTTL = 8 * time.Second

// Options configure the facade. Zero values fall back to production
// defaults; tests inject their own clock.
type Options struct {
	TTL    time.Duration
	Now    func() time.Time
	Today  func() domain.Date
	Logger *zap.Logger
}

type snapshot struct {
	fetchedAt time.Time
	tasks     []domain.Task
	index     map[string]int
}

// TaskRepository implements repository.TaskRepository on top of the raw
// task store, adding a short-TTL per-tenant read cache and recomputing
// the derived status on every write. It is a constructed object, not
// package state, so each test owns an isolated instance.
type TaskRepository struct {
	store  repository.TaskStore
	ttl    time.Duration
	now    func() time.Time
	today  func() domain.Date
	logger *zap.Logger

	mu        sync.Mutex
	snapshots map[string]*snapshot
}

func New(store repository.TaskStore, opts Options) *TaskRepository {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Today == nil {
		opts.Today = func() domain.Date { return domain.Today(time.Local) }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &TaskRepository{
		store:     store,
		ttl:       opts.TTL,
		now:       opts.Now,
		today:     opts.Today,
		logger:    opts.Logger,
		snapshots: make(map[string]*snapshot),
	}
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// List returns the tenant's live tasks, served from the snapshot while
// it is fresh.
func (r *TaskRepository) List(ctx context.Context, tenantID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.freshSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Task, len(snap.tasks))
	copy(out, snap.tasks)
	return out, nil
}

// GetByID answers from the same snapshot List serves; it never issues a
// single-record fetch, so the id index and the list can never diverge.
// An id from another tenant is absent from that tenant's snapshot and
// reports plain not-found.
func (r *TaskRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.freshSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if snap.index == nil {
		snap.index = make(map[string]int, len(snap.tasks))
		for i := range snap.tasks {
			snap.index[snap.tasks[i].ID] = i
		}
	}

	i, ok := snap.index[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task := snap.tasks[i]
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	task.Status = domain.EvaluateStatus(task.Deadline, task.Completed, r.today())

	if err := r.store.Insert(ctx, task); err != nil {
		return nil, err
	}
	r.invalidate()
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	task.Status = domain.EvaluateStatus(task.Deadline, task.Completed, r.today())

	if err := r.store.Update(ctx, task); err != nil {
		return nil, err
	}
	r.invalidate()
	return task, nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, tenantID, id, deletedBy string) (*domain.Task, error) {
	current, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	at := r.now()
	if err := r.store.MarkDeleted(ctx, tenantID, id, deletedBy, at); err != nil {
		return nil, err
	}
	r.invalidate()

	current.DeletedAt = at
	current.DeletedBy = deletedBy
	return current, nil
}

// freshSnapshot returns the cached snapshot for the tenant, reloading
// from the store when missing or expired. Caller holds r.mu.
func (r *TaskRepository) freshSnapshot(ctx context.Context, tenantID string) (*snapshot, error) {
	snap, ok := r.snapshots[tenantID]
	if ok && r.now().Sub(snap.fetchedAt) < r.ttl {
		return snap, nil
	}

	tasks, err := r.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "task storage unavailable", err)
	}
	snap = &snapshot{fetchedAt: r.now(), tasks: tasks}
	r.snapshots[tenantID] = snap
	return snap, nil
}

// invalidate drops every snapshot. Coarse on purpose: partial
// invalidation schemes are where staleness bugs live.
func (r *TaskRepository) invalidate() {
	r.mu.Lock()
	r.snapshots = make(map[string]*snapshot)
	r.mu.Unlock()
}
