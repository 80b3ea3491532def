package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
	"github.com/taskdeck/backend/repository/cached"
)

const tenantA = "tenant-a"
const tenantB = "tenant-b"

// fakeTaskStore is an in-memory repository.TaskStore.
type fakeTaskStore struct {
	tasks map[string]map[string]domain.Task // tenant -> id -> task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]map[string]domain.Task{}}
}

func (s *fakeTaskStore) put(t domain.Task) {
	if s.tasks[t.TenantID] == nil {
		s.tasks[t.TenantID] = map[string]domain.Task{}
	}
	s.tasks[t.TenantID][t.ID] = t
}

func (s *fakeTaskStore) ListByTenant(_ context.Context, tenantID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range s.tasks[tenantID] {
		if !t.IsDeleted() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Insert(_ context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	s.put(*task)
	return nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if _, ok := s.tasks[task.TenantID][task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	s.put(*task)
	return nil
}

func (s *fakeTaskStore) MarkDeleted(_ context.Context, tenantID, id, deletedBy string, at time.Time) error {
	t, ok := s.tasks[tenantID][id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.DeletedAt = at
	t.DeletedBy = deletedBy
	s.put(t)
	return nil
}

// fakeUserRepo implements the directory lookups the use case needs.
type fakeUserRepo struct {
	users map[string]map[string]domain.User // tenant -> email -> user
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]map[string]domain.User{}}
	for _, u := range users {
		if r.users[u.TenantID] == nil {
			r.users[u.TenantID] = map[string]domain.User{}
		}
		r.users[u.TenantID][domain.NormalizeEmail(u.Email)] = u
	}
	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, tenantID, email string) (*domain.User, error) {
	u, ok := r.users[tenantID][domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, tenantID, id string) (*domain.User, error) {
	for _, u := range r.users[tenantID] {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) ListActive(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users[tenantID] {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users[tenantID] {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, _ *domain.User) error { return nil }
func (r *fakeUserRepo) SetActive(_ context.Context, _, _ string, _ bool) error {
	return nil
}
func (r *fakeUserRepo) SetPassword(_ context.Context, _, _, _ string, _ bool) error {
	return nil
}

// fakeRuleRepo serves per-area allow-lists.
type fakeRuleRepo struct {
	rules map[string]domain.Rule // area -> rule (single tenant in tests)
}

func (r *fakeRuleRepo) GetByArea(_ context.Context, _, area string) (*domain.Rule, error) {
	rule, ok := r.rules[area]
	if !ok {
		return nil, domain.ErrRuleNotFound
	}
	return &rule, nil
}

func (r *fakeRuleRepo) List(_ context.Context, _ string) ([]domain.Rule, error) { return nil, nil }
func (r *fakeRuleRepo) ListByArea(_ context.Context, _, _ string) ([]domain.Rule, error) {
	return nil, nil
}
func (r *fakeRuleRepo) Upsert(_ context.Context, rule *domain.Rule) (*domain.Rule, error) {
	return rule, nil
}

type journalEntry struct {
	mutation string
	taskID   string
}

type fakeJournal struct {
	entries []journalEntry
}

func (j *fakeJournal) RecordTaskMutation(_ context.Context, mutation string, _ domain.Actor, task *domain.Task) error {
	j.entries = append(j.entries, journalEntry{mutation: mutation, taskID: task.ID})
	return nil
}

var fixedToday = domain.Date{Year: 2025, Month: 6, Day: 15}

func buildUseCase(store *fakeTaskStore, users repository.UserRepository, rules repository.RuleRepository) (*UseCase, *fakeJournal) {
	journal := &fakeJournal{}
	facade := cached.New(store, cached.Options{
		TTL:   time.Second,
		Today: func() domain.Date { return fixedToday },
	})
	uc := New(facade, users, rules, Options{
		Journal: journal,
		Today:   func() domain.Date { return fixedToday },
	})
	return uc, journal
}

func actorAdmin() domain.Actor {
	return domain.Actor{Email: "admin@acme.com", Name: "Admin", Role: domain.RoleAdmin, Area: "TI", CanDelete: true, TenantID: tenantA}
}

func actorLeaderFinance() domain.Actor {
	return domain.Actor{Email: "lead@acme.com", Name: "Lead", Role: domain.RoleLeader, Area: "Financeiro", TenantID: tenantA}
}

func actorUserAna() domain.Actor {
	return domain.Actor{Email: "ana@acme.com", Name: "Ana", Role: domain.RoleUser, Area: "Financeiro", TenantID: tenantA}
}

func directory() *fakeUserRepo {
	return newFakeUserRepo(
		domain.User{ID: "u1", TenantID: tenantA, Email: "ana@acme.com", Name: "Ana", Role: domain.RoleUser, Area: "Financeiro", Active: true},
		domain.User{ID: "u2", TenantID: tenantA, Email: "bob@acme.com", Name: "Bob", Role: domain.RoleUser, Area: "RH", Active: true},
		domain.User{ID: "u3", TenantID: tenantA, Email: "lead@acme.com", Name: "Lead", Role: domain.RoleLeader, Area: "Financeiro", Active: true},
	)
}

func financeRules() *fakeRuleRepo {
	return &fakeRuleRepo{rules: map[string]domain.Rule{
		"Financeiro": {TenantID: tenantA, Area: "Financeiro", AllowedRecurrences: []string{"Mensal", "Anual"}},
	}}
}

func TestListTasksNeverLeaksInvisibleTasks(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "fin-ana", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com", ResponsibleName: "Ana"})
	store.put(domain.Task{ID: "fin-bob", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "bob@acme.com", ResponsibleName: "Bob"})
	store.put(domain.Task{ID: "hr", TenantID: tenantA, Area: "RH", ResponsibleEmail: "bob@acme.com", ResponsibleName: "Bob"})
	uc, _ := buildUseCase(store, directory(), financeRules())

	filters := []repository.TaskFilter{
		{},
		{Area: "RH"},
		{ResponsibleEmail: "bob@acme.com"},
		{Area: "RH", ResponsibleEmail: "bob@acme.com", Search: ""},
	}

	for _, filter := range filters {
		tasks, err := uc.ListTasks(ctx, actorUserAna(), filter)
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		for _, task := range tasks {
			if task.ID != "fin-ana" {
				t.Errorf("filter %+v leaked task %q to a plain user", filter, task.ID)
			}
		}
	}

	tasks, err := uc.ListTasks(ctx, actorLeaderFinance(), repository.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("leader sees %d tasks, want the 2 finance ones", len(tasks))
	}
}

func TestListTasksQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "a", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com", ResponsibleName: "Ana", CompetenceYM: "2025-06", Activity: "Conciliar extrato", Status: domain.StatusInProgress})
	store.put(domain.Task{ID: "b", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com", ResponsibleName: "Ana", CompetenceYM: "2025-05", Activity: "Fechar folha", Notes: "urgente", Status: domain.StatusOverdue})
	uc, _ := buildUseCase(store, directory(), financeRules())

	tests := []struct {
		name   string
		filter repository.TaskFilter
		want   []string
	}{
		{"by competence", repository.TaskFilter{CompetenceYM: "2025-06"}, []string{"a"}},
		{"by status", repository.TaskFilter{Status: "Em Atraso"}, []string{"b"}},
		{"search activity case-insensitive", repository.TaskFilter{Search: "conciliar"}, []string{"a"}},
		{"search notes", repository.TaskFilter{Search: "URGENTE"}, []string{"b"}},
		{"no match", repository.TaskFilter{Search: "inexistente"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := uc.ListTasks(ctx, actorUserAna(), tt.filter)
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if len(tasks) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(tasks), len(tt.want))
			}
			for i, id := range tt.want {
				if tasks[i].ID != id {
					t.Errorf("task[%d] = %q, want %q", i, tasks[i].ID, id)
				}
			}
		})
	}
}

func TestCreateTaskByLeaderOutsideAreaIsForbidden(t *testing.T) {
	// Scenario: finance leader assigns to an HR user.
	ctx := context.Background()
	uc, _ := buildUseCase(newFakeTaskStore(), directory(), financeRules())

	_, err := uc.CreateTask(ctx, actorLeaderFinance(), CreateInput{
		CompetenceYM:     "2025-06",
		Recurrence:       "Mensal",
		Type:             "Rotina",
		Activity:         "Auditoria de ponto",
		ResponsibleEmail: "bob@acme.com", // bob is in RH
	})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("got %v, want FORBIDDEN", err)
	}
}

func TestCreateTaskUserSelfAssigns(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	uc, journal := buildUseCase(store, directory(), financeRules())

	created, err := uc.CreateTask(ctx, actorUserAna(), CreateInput{
		CompetenceYM:     "2025-06",
		Recurrence:       "Mensal",
		Type:             "Rotina",
		Activity:         "Conciliar extratos",
		ResponsibleEmail: "bob@acme.com", // ignored for USER: always self
		Deadline:         domain.Date{Year: 2025, Month: 6, Day: 10},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ResponsibleEmail != "ana@acme.com" || created.Area != "Financeiro" {
		t.Errorf("user-created task not self-assigned: %+v", created)
	}
	if created.Status != domain.StatusOverdue {
		t.Errorf("status %q, want recomputed %q", created.Status, domain.StatusOverdue)
	}
	if len(journal.entries) != 1 || journal.entries[0].mutation != "create" {
		t.Errorf("journal entries: %+v", journal.entries)
	}
}

func TestCreateTaskUserRecurrenceRules(t *testing.T) {
	ctx := context.Background()

	t.Run("disallowed recurrence names the allowed values", func(t *testing.T) {
		uc, _ := buildUseCase(newFakeTaskStore(), directory(), financeRules())
		_, err := uc.CreateTask(ctx, actorUserAna(), CreateInput{
			CompetenceYM: "2025-06",
			Recurrence:   "Diário",
			Type:         "Rotina",
			Activity:     "Algo",
		})
		if !domain.IsDomainError(err, domain.ErrCodeValidation) {
			t.Fatalf("got %v, want VALIDATION", err)
		}
		var dErr *domain.Error
		if !errors.As(err, &dErr) || !strings.Contains(dErr.Message, "Mensal") {
			t.Errorf("error does not report allowed values: %v", err)
		}
	})

	t.Run("missing rule is NO_RULE, not everything-allowed", func(t *testing.T) {
		uc, _ := buildUseCase(newFakeTaskStore(), directory(), &fakeRuleRepo{rules: map[string]domain.Rule{}})
		_, err := uc.CreateTask(ctx, actorUserAna(), CreateInput{
			CompetenceYM: "2025-06",
			Recurrence:   "Mensal",
			Type:         "Rotina",
			Activity:     "Algo",
		})
		if !domain.IsDomainError(err, domain.ErrCodeNoRule) {
			t.Fatalf("got %v, want NO_RULE", err)
		}
	})

	t.Run("admins skip the allow-list", func(t *testing.T) {
		uc, _ := buildUseCase(newFakeTaskStore(), directory(), &fakeRuleRepo{rules: map[string]domain.Rule{}})
		_, err := uc.CreateTask(ctx, actorAdmin(), CreateInput{
			CompetenceYM:     "2025-06",
			Recurrence:       "Diário",
			Type:             "Rotina",
			Activity:         "Algo",
			ResponsibleEmail: "ana@acme.com",
		})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	})
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	uc, _ := buildUseCase(newFakeTaskStore(), directory(), financeRules())

	long := make([]byte, domain.MaxActivityLen+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing activity", CreateInput{CompetenceYM: "2025-06", Recurrence: "Mensal", Type: "Rotina", ResponsibleEmail: "ana@acme.com"}},
		{"activity too long", CreateInput{CompetenceYM: "2025-06", Recurrence: "Mensal", Type: "Rotina", Activity: string(long), ResponsibleEmail: "ana@acme.com"}},
		{"missing competence", CreateInput{Recurrence: "Mensal", Type: "Rotina", Activity: "x", ResponsibleEmail: "ana@acme.com"}},
		{"unresolvable responsible", CreateInput{CompetenceYM: "2025-06", Recurrence: "Mensal", Type: "Rotina", Activity: "x", ResponsibleEmail: "ghost@acme.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateTask(ctx, actorAdmin(), tt.input)
			if !domain.IsDomainError(err, domain.ErrCodeValidation) {
				t.Errorf("got %v, want VALIDATION", err)
			}
		})
	}
}

func TestUpdateTaskUserCannotReassign(t *testing.T) {
	// Scenario: a USER patching their own task with a different
	// responsible email is rejected.
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "t", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com", ResponsibleName: "Ana"})
	uc, _ := buildUseCase(store, directory(), financeRules())

	other := "bob@acme.com"
	_, err := uc.UpdateTask(ctx, actorUserAna(), "t", domain.TaskPatch{ResponsibleEmail: &other})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("got %v, want FORBIDDEN", err)
	}
}

func TestUpdateTaskLeaderCannotReassignOutOfArea(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "t", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com", ResponsibleName: "Ana"})
	uc, _ := buildUseCase(store, directory(), financeRules())

	hrUser := "bob@acme.com"
	_, err := uc.UpdateTask(ctx, actorLeaderFinance(), "t", domain.TaskPatch{ResponsibleEmail: &hrUser})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("got %v, want FORBIDDEN", err)
	}
}

func TestUpdateTaskClearCompletionRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{
		ID:               "t",
		TenantID:         tenantA,
		Area:             "Financeiro",
		ResponsibleEmail: "ana@acme.com",
		ResponsibleName:  "Ana",
		Deadline:         domain.Date{Year: 2025, Month: 6, Day: 10},
		Completed:        domain.Date{Year: 2025, Month: 6, Day: 9},
		Status:           domain.StatusDone,
	})
	uc, _ := buildUseCase(store, directory(), financeRules())

	updated, err := uc.UpdateTask(ctx, actorUserAna(), "t", domain.TaskPatch{Completed: domain.ClearDate()})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Completed.IsZero() {
		t.Errorf("completion not cleared: %s", updated.Completed)
	}
	// today (2025-06-15) is past the deadline, so the task drops back
	// to overdue instead of staying done.
	if updated.Status != domain.StatusOverdue {
		t.Errorf("status %q, want %q", updated.Status, domain.StatusOverdue)
	}
}

func TestUpdateTaskStatusHintIsOverridden(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{
		ID:               "t",
		TenantID:         tenantA,
		Area:             "Financeiro",
		ResponsibleEmail: "ana@acme.com",
		ResponsibleName:  "Ana",
		Deadline:         domain.Date{Year: 2025, Month: 6, Day: 10},
	})
	uc, _ := buildUseCase(store, directory(), financeRules())

	hint := "Concluído"
	updated, err := uc.UpdateTask(ctx, actorUserAna(), "t", domain.TaskPatch{Status: &hint})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != domain.StatusOverdue {
		t.Errorf("client status hint was trusted: got %q", updated.Status)
	}
}

func TestUpdateTaskCrossTenantIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "foreign", TenantID: tenantB, Area: "Financeiro", ResponsibleEmail: "x@other.com"})
	uc, _ := buildUseCase(store, directory(), financeRules())

	note := "tentativa"
	_, err := uc.UpdateTask(ctx, actorAdmin(), "foreign", domain.TaskPatch{Notes: &note})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("cross-tenant update returned %v, want NOT_FOUND", err)
	}
}

func TestDeleteTaskRequiresPermission(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{ID: "t", TenantID: tenantA, Area: "Financeiro", ResponsibleEmail: "ana@acme.com"})
	uc, journal := buildUseCase(store, directory(), financeRules())

	if _, err := uc.DeleteTask(ctx, actorUserAna(), "t"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("user without canDelete deleted a task: %v", err)
	}

	owner := actorUserAna()
	owner.CanDelete = true
	deleted, err := uc.DeleteTask(ctx, owner, "t")
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if deleted.DeletedAt.IsZero() || deleted.DeletedBy != owner.Email {
		t.Errorf("audit fields missing: %+v", deleted)
	}
	if len(journal.entries) != 1 || journal.entries[0].mutation != "delete" {
		t.Errorf("journal entries: %+v", journal.entries)
	}

	tasks, err := uc.ListTasks(ctx, actorAdmin(), repository.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("soft-deleted task still listed")
	}
}

func TestDuplicateTask(t *testing.T) {
	ctx := context.Background()
	store := newFakeTaskStore()
	store.put(domain.Task{
		ID:               "orig",
		TenantID:         tenantA,
		Area:             "Financeiro",
		ResponsibleEmail: "ana@acme.com",
		ResponsibleName:  "Ana",
		CompetenceYM:     "2025-05",
		Recurrence:       "Mensal",
		Type:             "Rotina",
		Activity:         "Fechar folha",
		Deadline:         domain.Date{Year: 2025, Month: 5, Day: 31},
		Completed:        domain.Date{Year: 2025, Month: 6, Day: 2},
		Status:           domain.StatusDoneLate,
	})
	uc, _ := buildUseCase(store, directory(), financeRules())

	if _, err := uc.DuplicateTask(ctx, actorUserAna(), "orig"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("plain user duplicated a task: %v", err)
	}

	dup, err := uc.DuplicateTask(ctx, actorLeaderFinance(), "orig")
	if err != nil {
		t.Fatalf("DuplicateTask: %v", err)
	}
	if dup.ID == "orig" {
		t.Error("duplicate kept the original id")
	}
	if !dup.Completed.IsZero() {
		t.Errorf("duplicate kept the completion date: %s", dup.Completed)
	}
	// Deadline 2025-05-31 is in the past relative to the fixed today,
	// so the recomputed status is overdue, not a copy of "done late".
	if dup.Status != domain.StatusOverdue {
		t.Errorf("duplicate status %q, want %q", dup.Status, domain.StatusOverdue)
	}
}

