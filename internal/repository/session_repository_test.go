package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	session := mapview.NewSession(mapview.DefaultOptions())

	require.NoError(t, repo.Save(ctx, session))
	assert.True(t, apperr.IsKind(repo.Save(ctx, session), apperr.KindConflict))

	found, err := repo.FindByID(ctx, session.ID())
	require.NoError(t, err)
	assert.Same(t, session, found)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, repo.Delete(ctx, session.ID()))
	_, err = repo.FindByID(ctx, session.ID())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMemorySessionRepository_DeleteIdle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	stale := mapview.NewSession(mapview.DefaultOptions())
	require.NoError(t, repo.Save(ctx, stale))

	cutoff := time.Now().UTC().Add(time.Millisecond)
	time.Sleep(2 * time.Millisecond)
	fresh := mapview.NewSession(mapview.DefaultOptions())
	require.NoError(t, repo.Save(ctx, fresh))

	removed, err := repo.DeleteIdle(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.FindByID(ctx, fresh.ID())
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, stale.ID())
	assert.Error(t, err)
}
