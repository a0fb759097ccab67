package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// offlineStoreRouter wires a real local store behind a probe with no
// remote handle, so every connectivity check reports offline.
func offlineStoreRouter(t *testing.T) *store.Router {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	admin, err := store.NewAdminSeed("Administrator", "admin", "admin123")
	require.NoError(t, err)

	local := store.NewLocalStore(db)
	probe := store.NewProbe(nil, time.Second, 0)
	router := store.NewRouter(local, nil, probe, store.Seeder{Admin: admin}, nil)
	require.NoError(t, router.Initialize(context.Background()))
	return router
}

func TestSyncStatusOffline(t *testing.T) {
	router := offlineStoreRouter(t)
	svc := NewSyncService(router, nil)
	ctx := context.Background()

	// Queue one change so the pending counter has something to report.
	require.NoError(t, router.Insert(ctx, store.TableWorkers, store.Row{
		"name": "Asha Verma", "section": "Liquid", "department": "Mixing",
		"shift": "Morning", "active": true,
	}))

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.False(t, status.RemoteConfigured)
	assert.Equal(t, 1, status.PendingChanges)
	assert.Nil(t, status.LastSync)
}

func TestSyncRunWithoutRemoteRefused(t *testing.T) {
	svc := NewSyncService(offlineStoreRouter(t), nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConnectivity))

	// A refused pass leaves no outcome behind.
	status, statusErr := svc.Status(context.Background())
	require.NoError(t, statusErr)
	assert.Nil(t, status.LastSync)
}
