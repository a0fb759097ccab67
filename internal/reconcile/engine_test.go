package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// fakeRemote is an in-memory store standing in for the Postgres side.
type fakeRemote struct {
	tables    map[string][]store.Row
	nextID    int
	insertErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tables: map[string][]store.Row{}, nextID: 1}
}

func (f *fakeRemote) Read(_ context.Context, table string) ([]store.Row, error) {
	return f.tables[table], nil
}

func (f *fakeRemote) Insert(_ context.Context, table string, row store.Row) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	copied := store.Row{}
	for k, v := range row {
		copied[k] = v
	}
	if _, ok := copied["id"]; !ok {
		copied["id"] = f.nextID
		f.nextID++
	}
	f.tables[table] = append(f.tables[table], copied)
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, table string, pred store.Predicate) (int64, error) {
	var kept []store.Row
	var removed int64
	for _, row := range f.tables[table] {
		match := true
		for col, want := range pred {
			if row.String(col) != (store.Row{"v": want}).String("v") {
				match = false
				break
			}
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return removed, nil
}

func (f *fakeRemote) ReplaceAll(_ context.Context, table string, rows []store.Row) error {
	f.tables[table] = rows
	return nil
}

func (f *fakeRemote) MissingColumns(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeRemote) Initialize(context.Context) error                        { return nil }
func (f *fakeRemote) Dialect() store.Dialect                                  { return store.DialectPostgres }

func newTestLocal(t *testing.T) *store.LocalStore {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	local := store.NewLocalStore(db)
	require.NoError(t, local.Initialize(context.Background()))
	return local
}

func addLocalWorker(t *testing.T, local *store.LocalStore, name string) {
	t.Helper()
	require.NoError(t, local.Insert(context.Background(), store.TableWorkers, store.Row{
		"name": name, "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))
}

func TestEngineMergesOfflineWorker(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	// Asha was added while offline: present locally, queued for replay.
	addLocalWorker(t, local, "Asha")
	require.NoError(t, local.EnqueueChange(ctx, store.TableWorkers, store.OpAdd, store.Row{
		"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))

	result, err := New(local, remote, nil).Run(ctx)
	require.NoError(t, err)

	// The merge pushed her; the queued add replays as a guarded no-op.
	assert.Equal(t, 1, result.Workers)
	assert.Equal(t, 1, result.Replayed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, remote.tables[store.TableWorkers], 1)
	assert.Equal(t, "Asha", remote.tables[store.TableWorkers][0].String("name"))

	// The queue drained.
	count, err := local.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEngineRunIsIdempotent(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	addLocalWorker(t, local, "Asha")
	engine := New(local, remote, nil)

	_, err := engine.Run(ctx)
	require.NoError(t, err)
	result, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Workers)
	assert.Len(t, remote.tables[store.TableWorkers], 1)
}

func TestEngineMergesAttendance(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	require.NoError(t, local.Insert(ctx, store.TableAttendance, store.Row{
		"worker_name": "Asha", "date": "2026-08-29", "section": "Liquid",
		"department": "Mixing", "shift": "Morning", "status": "Present",
		"recorded_at": time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC),
	}))

	result, err := New(local, remote, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attendance)
	require.Len(t, remote.tables[store.TableAttendance], 1)

	pushed := remote.tables[store.TableAttendance][0]
	assert.Equal(t, "Asha", pushed.String("worker_name"))
	assert.Equal(t, "2026-08-29", store.DateKey(pushed["date"]))
	assert.Equal(t, "Present", pushed.String("status"))
}

func TestEngineLastWriterWinsOnStatusConflict(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	morning := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	later := morning.Add(2 * time.Hour)

	// Remote says Present, marked at 07:00.
	require.NoError(t, remote.Insert(ctx, store.TableAttendance, store.Row{
		"worker_name": "Asha", "date": "2026-08-29", "status": "Present",
		"section": "Liquid", "department": "Mixing", "shift": "Morning",
		"recorded_at": morning,
	}))
	// Local overwrote to Late at 09:00 while offline.
	require.NoError(t, local.Insert(ctx, store.TableAttendance, store.Row{
		"worker_name": "Asha", "date": "2026-08-29", "status": "Late",
		"section": "Liquid", "department": "Mixing", "shift": "Morning",
		"recorded_at": later,
	}))

	result, err := New(local, remote, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, remote.tables[store.TableAttendance], 1)
	assert.Equal(t, "Late", remote.tables[store.TableAttendance][0].String("status"))
}

func TestEngineOlderLocalRecordDoesNotOverwrite(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	morning := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)

	require.NoError(t, remote.Insert(ctx, store.TableAttendance, store.Row{
		"worker_name": "Asha", "date": "2026-08-29", "status": "Present",
		"recorded_at": morning.Add(2 * time.Hour),
	}))
	require.NoError(t, local.Insert(ctx, store.TableAttendance, store.Row{
		"worker_name": "Asha", "date": "2026-08-29", "section": "Liquid",
		"department": "Mixing", "shift": "Morning", "status": "Late",
		"recorded_at": morning,
	}))

	result, err := New(local, remote, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, "Present", remote.tables[store.TableAttendance][0].String("status"))
}

func TestEngineReplaysQueuedDelete(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	require.NoError(t, remote.Insert(ctx, store.TableWorkers, store.Row{
		"name": "Bala", "section": "Solid", "department": "Packaging", "shift": "General", "active": true,
	}))
	require.NoError(t, local.EnqueueChange(ctx, store.TableWorkers, store.OpDelete, store.Row{
		"name": "Bala", "section": "Solid", "department": "Packaging", "shift": "General",
	}))

	result, err := New(local, remote, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	assert.Empty(t, remote.tables[store.TableWorkers])
}

func TestEnginePartialFailureKeepsEntryQueued(t *testing.T) {
	local := newTestLocal(t)
	remote := newFakeRemote()
	ctx := context.Background()

	require.NoError(t, local.EnqueueChange(ctx, store.TableWorkers, store.OpAdd, store.Row{
		"name": "Asha", "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
	}))
	remote.insertErr = errors.New("unique constraint violation")

	result, err := New(local, remote, nil).Run(ctx)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSyncPartial))
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Replayed)

	// The entry survives for the next pass.
	count, countErr := local.PendingCount(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 1, count)

	// Next pass with the remote healthy drains it.
	remote.insertErr = nil
	result, err = New(local, remote, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replayed)
	count, countErr = local.PendingCount(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)
}
