package cached

import (
	"context"
	"testing"
	"time"

	"github.com/taskdeck/backend/domain"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

type fakeStore struct {
	tasks     map[string][]domain.Task // tenant id -> tasks
	listCalls int
	inserted  []*domain.Task
	updated   []*domain.Task
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string][]domain.Task)}
}

func (s *fakeStore) ListByTenant(_ context.Context, tenantID string) ([]domain.Task, error) {
	s.listCalls++
	out := make([]domain.Task, len(s.tasks[tenantID]))
	copy(out, s.tasks[tenantID])
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, task *domain.Task) error {
	s.inserted = append(s.inserted, task)
	s.tasks[task.TenantID] = append(s.tasks[task.TenantID], *task)
	return nil
}

func (s *fakeStore) Update(_ context.Context, task *domain.Task) error {
	s.updated = append(s.updated, task)
	list := s.tasks[task.TenantID]
	for i := range list {
		if list[i].ID == task.ID {
			list[i] = *task
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (s *fakeStore) MarkDeleted(_ context.Context, tenantID, id, _ string, _ time.Time) error {
	list := s.tasks[tenantID]
	for i := range list {
		if list[i].ID == id {
			s.tasks[tenantID] = append(list[:i], list[i+1:]...)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func newRepo(store *fakeStore, clock *fakeClock) *TaskRepository {
	return New(store, Options{
		TTL:   8 * time.Second,
		Now:   clock.now,
		Today: func() domain.Date { return domain.Date{Year: 2025, Month: 6, Day: 15} },
	})
}

func seedTask(store *fakeStore, tenantID, id string) {
	store.tasks[tenantID] = append(store.tasks[tenantID], domain.Task{
		ID:       id,
		TenantID: tenantID,
		Activity: "conciliar extratos",
		Status:   domain.StatusInProgress,
	})
}

func TestListServedFromSnapshotWithinTTL(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	seedTask(store, "t1", "a")
	repo := newRepo(store, clock)

	for i := 0; i < 5; i++ {
		if _, err := repo.List(ctx, "t1"); err != nil {
			t.Fatalf("List: %v", err)
		}
		clock.advance(time.Second)
	}
	if store.listCalls != 1 {
		t.Errorf("store hit %d times inside TTL, want 1", store.listCalls)
	}

	clock.advance(10 * time.Second)
	if _, err := repo.List(ctx, "t1"); err != nil {
		t.Fatalf("List after expiry: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("store hit %d times after expiry, want 2", store.listCalls)
	}
}

func TestGetByIDSharesListSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	seedTask(store, "t1", "a")
	repo := newRepo(store, clock)

	if _, err := repo.List(ctx, "t1"); err != nil {
		t.Fatalf("List: %v", err)
	}
	task, err := repo.GetByID(ctx, "t1", "a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task.ID != "a" {
		t.Errorf("got task %q", task.ID)
	}
	if store.listCalls != 1 {
		t.Errorf("GetByID issued its own fetch: %d calls", store.listCalls)
	}
}

func TestGetByIDCrossTenantIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	seedTask(store, "tenant-b", "b-task")
	repo := newRepo(store, clock)

	_, err := repo.GetByID(ctx, "tenant-a", "b-task")
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("cross-tenant lookup returned %v, want NOT_FOUND", err)
	}
}

func TestWritesInvalidateSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	seedTask(store, "t1", "a")
	repo := newRepo(store, clock)

	if _, err := repo.List(ctx, "t1"); err != nil {
		t.Fatalf("List: %v", err)
	}

	created, err := repo.Create(ctx, &domain.Task{ID: "b", TenantID: "t1", Activity: "fechar folha"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same instant, TTL not expired: the writer must still observe its
	// own write because the write invalidated the snapshot.
	got, err := repo.GetByID(ctx, "t1", created.ID)
	if err != nil {
		t.Fatalf("read-your-write failed: %v", err)
	}
	if got.ID != "b" {
		t.Errorf("got %q", got.ID)
	}
}

func TestSoftDeleteRemovesFromReads(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	seedTask(store, "t1", "a")
	repo := newRepo(store, clock)

	deleted, err := repo.SoftDelete(ctx, "t1", "a", "admin@acme.com")
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if deleted.DeletedBy != "admin@acme.com" || deleted.DeletedAt.IsZero() {
		t.Errorf("audit fields not set: %+v", deleted)
	}

	if _, err := repo.GetByID(ctx, "t1", "a"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("deleted task still readable: %v", err)
	}
	tasks, err := repo.List(ctx, "t1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("deleted task present in list: %d entries", len(tasks))
	}
}

func TestWritesRecomputeStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	clock := &fakeClock{current: time.Unix(1000, 0)}
	repo := newRepo(store, clock) // today fixed at 2025-06-15

	task := &domain.Task{
		ID:       "a",
		TenantID: "t1",
		Activity: "auditoria",
		Deadline: domain.Date{Year: 2025, Month: 6, Day: 10},
		Status:   domain.StatusDone, // client hint, must be ignored
	}
	created, err := repo.Create(ctx, task)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.StatusOverdue {
		t.Errorf("create persisted status %q, want %q", created.Status, domain.StatusOverdue)
	}

	created.Completed = domain.Date{Year: 2025, Month: 6, Day: 12}
	updated, err := repo.Update(ctx, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.StatusDoneLate {
		t.Errorf("update persisted status %q, want %q", updated.Status, domain.StatusDoneLate)
	}
}
