package journal

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
)

// Recorder adapts the Store to the use-case journal port.
type Recorder struct {
	store  *Store
	logger *zap.Logger
}

func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// RecordTaskMutation journals the task state after a mutation. The
// snapshot is marshalled here so the caller's copy can be reused
// freely afterwards.
func (r *Recorder) RecordTaskMutation(_ context.Context, mutation string, actor domain.Actor, task *domain.Task) error {
	if task == nil {
		return nil
	}

	snapshot, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return r.store.Append(Entry{
		TenantID:   task.TenantID,
		Mutation:   mutation,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role.String(),
		TaskID:     task.ID,
		Snapshot:   snapshot,
		RecordedAt: time.Now(),
	})
}
