package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record: who changed which task and how. Snapshot
// holds the task as it looked right after the mutation.
type Entry struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenantId"`
	Mutation   string          `json:"mutation"`
	ActorEmail string          `json:"actorEmail"`
	ActorRole  string          `json:"actorRole"`
	TaskID     string          `json:"taskId"`
	Snapshot   json.RawMessage `json:"snapshot"`
	RecordedAt time.Time       `json:"recordedAt"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
}
