package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// SessionRepository stores the server-side half of issued tokens so
// that logout revokes access immediately.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
