package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testSeeder(t *testing.T) Seeder {
	t.Helper()
	admin, err := NewAdminSeed("Administrator", "admin", "admin123")
	require.NoError(t, err)
	return Seeder{Admin: admin}
}

// offlineRouter wires a real local store behind a probe that always
// reports unreachable.
func offlineRouter(t *testing.T) (*Router, *LocalStore) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	local := NewLocalStore(db)
	probe := NewProbe(nil, time.Second, 0)
	router := NewRouter(local, nil, probe, testSeeder(t), nil)
	require.NoError(t, router.Initialize(context.Background()))
	return router, local
}

func TestRouterOfflineWithoutRemote(t *testing.T) {
	router, _ := offlineRouter(t)
	assert.False(t, router.Online(context.Background()))
}

func TestRouterInitializeSeedsDefaults(t *testing.T) {
	router, _ := offlineRouter(t)
	ctx := context.Background()

	shifts, err := router.Read(ctx, TableShifts)
	require.NoError(t, err)
	assert.Len(t, shifts, 3)

	users, err := router.Read(ctx, TableUsers)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].String("username"))
	assert.True(t, users[0].Bool("active"))
}

func TestRouterOfflineWorkerInsertIsQueued(t *testing.T) {
	router, local := offlineRouter(t)
	ctx := context.Background()

	require.NoError(t, router.Insert(ctx, TableWorkers, Row{
		"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))

	// The write landed locally.
	rows, err := router.Read(ctx, TableWorkers)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// And a replayable change was staged, with the local id stripped.
	changes, err := local.PendingChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, OpAdd, changes[0].Op)
	assert.Equal(t, TableWorkers, changes[0].Entity)
	_, hasID := changes[0].Payload["id"]
	assert.False(t, hasID)
}

func TestRouterOfflineWorkerDeleteIsQueued(t *testing.T) {
	router, local := offlineRouter(t)
	ctx := context.Background()

	require.NoError(t, router.Insert(ctx, TableWorkers, Row{
		"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))

	pred := Predicate{"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning"}
	affected, err := router.Delete(ctx, TableWorkers, pred)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	changes, err := local.PendingChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, OpDelete, changes[1].Op)
	assert.Equal(t, "Asha", changes[1].Payload.String("name"))
}

func TestRouterNonQueueableTablesAreNotQueued(t *testing.T) {
	router, local := offlineRouter(t)
	ctx := context.Background()

	require.NoError(t, router.Insert(ctx, TableShifts, Row{"name": "Night"}))
	require.NoError(t, router.ReplaceAll(ctx, TableSections, []Row{{"id": 1, "name": "Liquid Section"}}))

	count, err := local.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRouterReadSelfHealsMissingTable(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	local := NewLocalStore(db)
	probe := NewProbe(nil, time.Second, 0)
	router := NewRouter(local, nil, probe, testSeeder(t), nil)

	// No Initialize: the first read hits a bare database and must
	// rebuild, reseed and return the seeded rows.
	shifts, err := router.Read(context.Background(), TableShifts)
	require.NoError(t, err)
	assert.Len(t, shifts, 3)
}

func TestRouterReadSelfHealsDroppedColumn(t *testing.T) {
	router, local := offlineRouter(t)
	ctx := context.Background()

	// Simulate a legacy shape missing the active column.
	_, err := local.db.Exec("DROP TABLE workers")
	require.NoError(t, err)
	_, err = local.db.Exec(`CREATE TABLE workers (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	// The precheck sees the gap and rebuilds. SQLite keeps the legacy
	// table (create is IF NOT EXISTS), so the read still reports the
	// surviving shape rather than erroring.
	rows, err := router.Read(ctx, TableWorkers)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
