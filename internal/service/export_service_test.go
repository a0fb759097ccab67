package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

func testExportService(f *fakeRouter) *ExportService {
	attendance := testAttendanceService(f, time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC))
	workers := NewWorkerService(f, nil, nil)
	return NewExportService(attendance, workers, nil)
}

func TestExportDailyRegisterCSV(t *testing.T) {
	f := newFakeRouter()
	f.seedWorker(1, "Asha Verma", "Liquid", "Mixing", "Morning", true)
	f.tables[store.TableAttendance] = []store.Row{{
		"id": 1, "worker_id": 1, "worker_name": "Asha Verma", "section": "Liquid",
		"department": "Mixing", "shift": "Morning", "date": "2026-08-15", "status": "Present",
	}}
	svc := testExportService(f)

	file, err := svc.DailyRegister(context.Background(), "2026-08-15", RegisterFilter{}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "attendance-2026-08-15.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Asha Verma", "Liquid", "Mixing", "Morning", "Present"}, records[1])
}

func TestExportRosterPDF(t *testing.T) {
	f := newFakeRouter()
	f.seedWorker(1, "Asha Verma", "Liquid", "Mixing", "Morning", true)
	svc := testExportService(f)

	file, err := svc.Roster(context.Background(), models.WorkerFilter{}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "roster.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportGridAlwaysCSV(t *testing.T) {
	f := newFakeRouter()
	f.seedWorker(1, "Asha Verma", "Liquid", "Mixing", "Morning", true)
	svc := testExportService(f)

	file, err := svc.MonthGrid(context.Background(), "2026-08", models.WorkerFilter{})
	require.NoError(t, err)
	assert.Equal(t, "grid-2026-08.csv", file.Filename)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	// Worker columns, 31 day columns and the two trailing aggregates.
	assert.Len(t, records[0], 4+31+2)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := testExportService(newFakeRouter())

	_, err := svc.Roster(context.Background(), models.WorkerFilter{}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
