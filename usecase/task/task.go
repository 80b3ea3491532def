package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
	"github.com/taskdeck/backend/usecase"
)

// UseCase owns the task lifecycle: every read is visibility-filtered
// and every mutation passes tenant scoping, policy and validation
// before it touches storage.
type UseCase struct {
	tasks   repository.TaskRepository
	users   repository.UserRepository
	rules   repository.RuleRepository
	journal usecase.MutationJournal
	logger  *zap.Logger
	today   func() domain.Date
}

type Options struct {
	Journal usecase.MutationJournal
	Logger  *zap.Logger
	Today   func() domain.Date
}

func New(tasks repository.TaskRepository, users repository.UserRepository, rules repository.RuleRepository, opts Options) *UseCase {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Today == nil {
		opts.Today = func() domain.Date { return domain.Today(time.Local) }
	}
	return &UseCase{
		tasks:   tasks,
		users:   users,
		rules:   rules,
		journal: opts.Journal,
		logger:  opts.Logger,
		today:   opts.Today,
	}
}

// CreateInput is a task draft. Status is intentionally absent: clients
// never choose it.
type CreateInput struct {
	CompetenceYM     string
	Recurrence       string
	Type             string
	Activity         string
	ResponsibleEmail string
	Deadline         domain.Date
	Completed        domain.Date
	Notes            string
}

// ListTasks returns the tasks the actor may see, narrowed by the
// optional filter. The visibility filter always runs first; query
// filters can only shrink the result.
func (uc *UseCase) ListTasks(ctx context.Context, actor domain.Actor, filter repository.TaskFilter) ([]domain.Task, error) {
	all, err := uc.tasks.List(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if domain.CanSeeTask(actor, t) {
			visible = append(visible, t)
		}
	}

	visible = uc.fillResponsibleNames(ctx, actor.TenantID, visible)

	return applyFilter(visible, filter), nil
}

// GetTask returns one task by id. A task the actor cannot see is
// reported as missing, same as one that does not exist.
func (uc *UseCase) GetTask(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanSeeTask(actor, *task) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// CreateTask validates the draft, applies the creation-time assignment
// rules and persists the task with a freshly computed status.
func (uc *UseCase) CreateTask(ctx context.Context, actor domain.Actor, input CreateInput) (*domain.Task, error) {
	activity := strings.TrimSpace(input.Activity)
	if activity == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "activity is required")
	}
	if len(activity) > domain.MaxActivityLen {
		return nil, domain.NewErrorf(domain.ErrCodeValidation, "activity too long (max %d chars)", domain.MaxActivityLen)
	}
	if len(input.Notes) > domain.MaxNotesLen {
		return nil, domain.NewErrorf(domain.ErrCodeValidation, "notes too long (max %d chars)", domain.MaxNotesLen)
	}

	competence := domain.NormalizeCompetence(input.CompetenceYM)
	if competence == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "competence period is required")
	}
	recurrence := strings.TrimSpace(input.Recurrence)
	if recurrence == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "recurrence is required")
	}
	taskType := strings.TrimSpace(input.Type)
	if taskType == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "type is required")
	}

	responsibleEmail, responsibleName, area, err := uc.resolveAssignment(ctx, actor, input.ResponsibleEmail, recurrence)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		TenantID:         actor.TenantID,
		CompetenceYM:     competence,
		Recurrence:       recurrence,
		Type:             taskType,
		Activity:         activity,
		ResponsibleEmail: responsibleEmail,
		ResponsibleName:  responsibleName,
		Area:             area,
		Deadline:         input.Deadline,
		Completed:        input.Completed,
		Notes:            input.Notes,
		CreatedAt:        now,
		CreatedBy:        actor.Email,
		UpdatedAt:        now,
		UpdatedBy:        actor.Email,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, usecase.MutationCreate, actor, created)
	return created, nil
}

// UpdateTask applies a partial update. The patch area is resolved from
// the new responsible user before the policy check so leaders cannot
// smuggle a task out of their area through reassignment.
func (uc *UseCase) UpdateTask(ctx context.Context, actor domain.Actor, id string, patch domain.TaskPatch) (*domain.Task, error) {
	current, err := uc.tasks.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	responsibleName := current.ResponsibleName
	if patch.ResponsibleEmail != nil {
		email := domain.NormalizeEmail(*patch.ResponsibleEmail)
		patch.ResponsibleEmail = &email

		resolved, err := uc.users.GetByEmail(ctx, actor.TenantID, email)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil, domain.NewError(domain.ErrCodeValidation, "responsible user not found")
			}
			return nil, err
		}
		responsibleName = resolved.Name
		patch.Area = &resolved.Area
	}

	if !domain.CanEditTask(actor, *current, patch) {
		return nil, domain.ErrForbidden
	}

	next := *current
	if patch.CompetenceYM != nil {
		next.CompetenceYM = domain.NormalizeCompetence(*patch.CompetenceYM)
	}
	if patch.Recurrence != nil {
		next.Recurrence = strings.TrimSpace(*patch.Recurrence)
	}
	if patch.Type != nil {
		next.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Activity != nil {
		activity := strings.TrimSpace(*patch.Activity)
		if activity == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "activity is required")
		}
		if len(activity) > domain.MaxActivityLen {
			return nil, domain.NewErrorf(domain.ErrCodeValidation, "activity too long (max %d chars)", domain.MaxActivityLen)
		}
		next.Activity = activity
	}
	if patch.Notes != nil {
		if len(*patch.Notes) > domain.MaxNotesLen {
			return nil, domain.NewErrorf(domain.ErrCodeValidation, "notes too long (max %d chars)", domain.MaxNotesLen)
		}
		next.Notes = *patch.Notes
	}
	if patch.ResponsibleEmail != nil {
		next.ResponsibleEmail = *patch.ResponsibleEmail
		next.ResponsibleName = responsibleName
	}
	if patch.Area != nil {
		next.Area = *patch.Area
	}
	next.Deadline = patch.Deadline.Apply(current.Deadline)
	next.Completed = patch.Completed.Apply(current.Completed)
	next.UpdatedAt = time.Now().UTC()
	next.UpdatedBy = actor.Email

	updated, err := uc.tasks.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, usecase.MutationUpdate, actor, updated)
	return updated, nil
}

// DeleteTask soft-deletes a task. The record stays in storage but
// disappears from every read.
func (uc *UseCase) DeleteTask(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	current, err := uc.tasks.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanDeleteTask(actor, *current) {
		return nil, domain.ErrForbidden
	}

	deleted, err := uc.tasks.SoftDelete(ctx, actor.TenantID, id, actor.Email)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, usecase.MutationDelete, actor, deleted)
	return deleted, nil
}

// DuplicateTask copies an existing task with a cleared completion and
// fresh audit fields. The copy's status is recomputed, never copied, so
// a duplicate of an old overdue task surfaces as overdue again.
func (uc *UseCase) DuplicateTask(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleLeader:
	default:
		return nil, domain.ErrForbidden
	}

	current, err := uc.tasks.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleLeader && current.Area != actor.Area {
		return nil, domain.ErrForbidden
	}

	responsibleName := current.ResponsibleName
	area := current.Area
	if resolved, err := uc.users.GetByEmail(ctx, actor.TenantID, current.ResponsibleEmail); err == nil {
		responsibleName = resolved.Name
		area = resolved.Area
	}

	now := time.Now().UTC()
	clone := &domain.Task{
		TenantID:         actor.TenantID,
		CompetenceYM:     domain.NormalizeCompetence(current.CompetenceYM),
		Recurrence:       current.Recurrence,
		Type:             current.Type,
		Activity:         current.Activity,
		ResponsibleEmail: domain.NormalizeEmail(current.ResponsibleEmail),
		ResponsibleName:  responsibleName,
		Area:             area,
		Deadline:         current.Deadline,
		Notes:            current.Notes,
		CreatedAt:        now,
		CreatedBy:        actor.Email,
		UpdatedAt:        now,
		UpdatedBy:        actor.Email,
	}

	created, err := uc.tasks.Create(ctx, clone)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, usecase.MutationDuplicate, actor, created)
	return created, nil
}

// resolveAssignment decides who the task belongs to at creation time.
func (uc *UseCase) resolveAssignment(ctx context.Context, actor domain.Actor, requestedEmail, recurrence string) (email, name, area string, err error) {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleLeader:
		email = domain.NormalizeEmail(requestedEmail)
		if email == "" {
			return "", "", "", domain.NewError(domain.ErrCodeValidation, "responsible user is required")
		}
		resolved, lookupErr := uc.users.GetByEmail(ctx, actor.TenantID, email)
		if lookupErr != nil {
			if domain.IsDomainError(lookupErr, domain.ErrCodeNotFound) {
				return "", "", "", domain.NewError(domain.ErrCodeValidation, "responsible user not found")
			}
			return "", "", "", lookupErr
		}
		if actor.Role == domain.RoleLeader && resolved.Area != actor.Area {
			return "", "", "", domain.NewError(domain.ErrCodeForbidden, "leaders can only assign tasks within their own area")
		}
		return email, resolved.Name, resolved.Area, nil

	case domain.RoleUser:
		// Self-assigned, and the recurrence must be in the area's
		// allow-list.
		rule, ruleErr := uc.rules.GetByArea(ctx, actor.TenantID, actor.Area)
		if ruleErr != nil {
			if domain.IsDomainError(ruleErr, domain.ErrCodeNotFound) {
				return "", "", "", domain.NewErrorf(domain.ErrCodeNoRule,
					"no recurrence rule configured for area %q; contact an admin", actor.Area)
			}
			return "", "", "", ruleErr
		}
		if !rule.Allows(recurrence) {
			return "", "", "", domain.NewErrorf(domain.ErrCodeValidation,
				"recurrence %q not allowed for your area; allowed: %s",
				recurrence, strings.Join(rule.AllowedRecurrences, ", "))
		}
		return domain.NormalizeEmail(actor.Email), actor.Name, actor.Area, nil

	default:
		return "", "", "", domain.ErrForbidden
	}
}

// fillResponsibleNames backfills display names missing from older
// records using the user directory. Best-effort: listing still works
// when the directory is unavailable.
func (uc *UseCase) fillResponsibleNames(ctx context.Context, tenantID string, tasks []domain.Task) []domain.Task {
	needs := false
	for _, t := range tasks {
		if strings.TrimSpace(t.ResponsibleName) == "" {
			needs = true
			break
		}
	}
	if !needs {
		return tasks
	}

	users, err := uc.users.ListActive(ctx, tenantID)
	if err != nil {
		uc.logger.Warn("could not backfill responsible names", zap.Error(err))
		return tasks
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[domain.NormalizeEmail(u.Email)] = u.Name
	}

	for i := range tasks {
		if strings.TrimSpace(tasks[i].ResponsibleName) == "" {
			email := domain.NormalizeEmail(tasks[i].ResponsibleEmail)
			if name, ok := names[email]; ok && name != "" {
				tasks[i].ResponsibleName = name
			} else {
				tasks[i].ResponsibleName = email
			}
		}
	}
	return tasks
}

func (uc *UseCase) record(ctx context.Context, mutation string, actor domain.Actor, task *domain.Task) {
	if uc.journal == nil {
		return
	}
	if err := uc.journal.RecordTaskMutation(ctx, mutation, actor, task); err != nil {
		uc.logger.Error("failed to journal task mutation",
			zap.String("mutation", mutation),
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}

func applyFilter(tasks []domain.Task, filter repository.TaskFilter) []domain.Task {
	if filter == (repository.TaskFilter{}) {
		return tasks
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	responsible := domain.NormalizeEmail(filter.ResponsibleEmail)

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Area != "" && t.Area != filter.Area {
			continue
		}
		if responsible != "" && domain.NormalizeEmail(t.ResponsibleEmail) != responsible {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.CompetenceYM != "" && t.CompetenceYM != filter.CompetenceYM {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Activity), search) &&
			!strings.Contains(strings.ToLower(t.Notes), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}
