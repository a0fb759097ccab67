package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestProbeNilHandleIsOffline(t *testing.T) {
	p := NewProbe(nil, time.Second, 0)
	assert.False(t, p.Online(context.Background()))
}

func TestProbeOnline(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := NewProbe(db, time.Second, 0)
	assert.True(t, p.Online(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeFailureMeansOffline(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))

	p := NewProbe(db, time.Second, 0)
	assert.False(t, p.Online(context.Background()))
}

func TestProbeCachesResultWithinTTL(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := NewProbe(db, time.Second, time.Minute)
	assert.True(t, p.Online(context.Background()))
	// Second call inside the TTL must not hit the database again.
	assert.True(t, p.Online(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeInvalidateForcesReprobe(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))

	p := NewProbe(db, time.Second, time.Minute)
	assert.True(t, p.Online(context.Background()))

	p.Invalidate()
	assert.False(t, p.Online(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
