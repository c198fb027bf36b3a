package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/google/uuid"
)

// MemorySessionRepository keeps live sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*mapview.Session
}

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]*mapview.Session)}
}

// Save stores a session.
func (r *MemorySessionRepository) Save(_ context.Context, session *mapview.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID()]; exists {
		return apperr.NewConflictError("session already exists: " + session.ID().String())
	}
	r.sessions[session.ID()] = session
	return nil
}

// FindByID retrieves a session by id.
func (r *MemorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*mapview.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Session", id.String())
	}
	return session, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteIdle removes sessions whose last change is before cutoff.
func (r *MemorySessionRepository) DeleteIdle(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.UpdatedAt().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
