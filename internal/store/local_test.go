package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestLocal(t *testing.T) *LocalStore {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	local := NewLocalStore(db)
	require.NoError(t, local.Initialize(context.Background()))
	return local
}

func TestLocalStoreQueueRoundTrip(t *testing.T) {
	local := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, local.EnqueueChange(ctx, TableWorkers, OpAdd, Row{
		"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))
	require.NoError(t, local.EnqueueChange(ctx, TableWorkers, OpDelete, Row{
		"name": "Bala", "section": "Solid", "department": "Packaging", "shift": "General",
	}))

	count, err := local.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changes, err := local.PendingChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, OpAdd, changes[0].Op)
	assert.Equal(t, TableWorkers, changes[0].Entity)
	assert.Equal(t, "Asha", changes[0].Payload.String("name"))
	assert.True(t, changes[0].Payload.Bool("active"))

	assert.Equal(t, OpDelete, changes[1].Op)
	assert.Equal(t, "Bala", changes[1].Payload.String("name"))
}

func TestLocalStoreRemoveChanges(t *testing.T) {
	local := newTestLocal(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, local.EnqueueChange(ctx, TableWorkers, OpAdd, Row{"name": "w"}))
	}
	changes, err := local.PendingChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	require.NoError(t, local.RemoveChanges(ctx, []int64{changes[0].ID, changes[2].ID}))

	remaining, err := local.PendingChanges(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, changes[1].ID, remaining[0].ID)

	// Removing nothing is a no-op, not an error.
	require.NoError(t, local.RemoveChanges(ctx, nil))
}
