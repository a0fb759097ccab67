package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

func newTestStore(t *testing.T) *sqlStore {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := newSQLStore(db, DialectSQLite, pendingChangesTable)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestSQLStoreInsertAndReadNormalizes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, TableWorkers, Row{
		"name":       "Asha Verma",
		"section":    "Liquid",
		"department": "Mixing",
		"shift":      "Morning",
		"active":     true,
	}))

	rows, err := s.Read(ctx, TableWorkers)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Asha Verma", rows[0].String("name"))
	assert.True(t, rows[0].Bool("active"))
	assert.Greater(t, rows[0].Int("id"), 0)
}

func TestSQLStoreReadOrdersByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Asha", "Bala"} {
		require.NoError(t, s.Insert(ctx, TableWorkers, Row{
			"name": name, "section": "Liquid", "department": "Mixing", "shift": "Morning", "active": true,
		}))
	}

	rows, err := s.Read(ctx, TableWorkers)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Charlie", rows[0].String("name"))
	assert.Equal(t, "Bala", rows[2].String("name"))
}

func TestSQLStoreInsertSkipsAbsentID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, TableShifts, Row{"name": "Morning"}))
	require.NoError(t, s.Insert(ctx, TableShifts, Row{"id": 10, "name": "Night"}))

	rows, err := s.Read(ctx, TableShifts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Int("id"))
	assert.Equal(t, 10, rows[1].Int("id"))
}

func TestSQLStoreDeleteByPredicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, dept := range []string{"Mixing", "Filling"} {
		require.NoError(t, s.Insert(ctx, TableWorkers, Row{
			"name": "Asha", "section": "Liquid", "department": dept, "shift": "Morning", "active": true,
		}))
	}

	affected, err := s.Delete(ctx, TableWorkers, Predicate{"name": "Asha", "department": "Mixing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := s.Read(ctx, TableWorkers)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Filling", rows[0].String("department"))
}

func TestSQLStoreDeleteRejectsEmptyPredicate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Delete(context.Background(), TableWorkers, Predicate{})
	require.Error(t, err)
}

func TestSQLStoreDeleteRejectsUnknownColumn(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Delete(context.Background(), TableWorkers, Predicate{"salary": 100})
	require.Error(t, err)
}

func TestSQLStoreReplaceAllSwapsContents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, TableShifts, Row{"name": "Morning"}))
	require.NoError(t, s.Insert(ctx, TableShifts, Row{"name": "Afternoon"}))

	require.NoError(t, s.ReplaceAll(ctx, TableShifts, []Row{
		{"id": 1, "name": "General"},
	}))

	rows, err := s.Read(ctx, TableShifts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "General", rows[0].String("name"))
}

func TestSQLStoreReplaceAllRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, TableShifts, Row{"name": "Morning"}))

	// Duplicate explicit ids violate the primary key mid-replace; the
	// original row must survive.
	err := s.ReplaceAll(ctx, TableShifts, []Row{
		{"id": 1, "name": "General"},
		{"id": 1, "name": "Night"},
	})
	require.Error(t, err)

	rows, err := s.Read(ctx, TableShifts)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Morning", rows[0].String("name"))
}

func TestSQLStoreMissingColumns(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	s := newSQLStore(db, DialectSQLite)

	// No table at all: every expected column is missing.
	missing, err := s.MissingColumns(context.Background(), TableWorkers)
	require.NoError(t, err)
	assert.ElementsMatch(t, ExpectedColumns(TableWorkers), missing)

	// Legacy shape lacking the active column.
	_, err = db.Exec(`CREATE TABLE workers (id INTEGER PRIMARY KEY, name TEXT, section TEXT, department TEXT, shift TEXT)`)
	require.NoError(t, err)
	missing, err = s.MissingColumns(context.Background(), TableWorkers)
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, missing)

	require.NoError(t, s.Initialize(context.Background()))
}

func TestSQLStoreReadUnknownTableFails(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read(context.Background(), "payroll")
	require.Error(t, err)
}

func TestSQLStoreReadMissingTableClassifiedAsSchemaMismatch(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	s := newSQLStore(db, DialectSQLite)

	_, err = s.Read(context.Background(), TableWorkers)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSchemaMismatch))
}
