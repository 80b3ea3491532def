package usecase

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// Mutation kinds recorded in the audit journal.
const (
	MutationCreate    = "create"
	MutationUpdate    = "update"
	MutationDelete    = "delete"
	MutationDuplicate = "duplicate"
)

// MutationJournal abstracts the audit trail so use cases stay
// storage-agnostic. Recording is best-effort: a journal failure never
// fails the mutation it describes.
type MutationJournal interface {
	RecordTaskMutation(ctx context.Context, mutation string, actor domain.Actor, task *domain.Task) error
}
