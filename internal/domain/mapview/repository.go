package mapview

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRepository stores live planner sessions.
type SessionRepository interface {
	// Save stores a new session.
	Save(ctx context.Context, session *Session) error

	// FindByID retrieves a session by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteIdle removes sessions not touched since cutoff and returns how many were removed.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}
