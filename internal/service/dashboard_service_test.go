package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

func TestDashboardSummary(t *testing.T) {
	f := newFakeRouter()
	f.online = true
	f.seedWorker(1, "Asha Verma", "Liquid", "Mixing", "Morning", true)
	f.seedWorker(2, "Ravi Nair", "Powder", "Granulation", "Morning", true)
	f.seedWorker(3, "Old Timer", "Liquid", "Mixing", "Night", false)
	f.tables[store.TableAttendance] = []store.Row{
		{"id": 1, "worker_id": 1, "worker_name": "Asha Verma", "section": "Liquid",
			"department": "Mixing", "shift": "Morning", "date": "2026-08-15", "status": "Present"},
		{"id": 2, "worker_id": 2, "worker_name": "Ravi Nair", "section": "Powder",
			"department": "Granulation", "shift": "Morning", "date": "2026-08-15", "status": "Late"},
	}

	attendance := testAttendanceService(f, time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC))
	svc := NewDashboardService(f, attendance, nil, 0, nil)

	summary, err := svc.Summary(context.Background(), "2026-08-15")
	require.NoError(t, err)
	assert.True(t, summary.Online)
	assert.Equal(t, 3, summary.TotalWorkers)
	assert.Equal(t, 2, summary.ActiveWorkers)
	assert.Equal(t, 2, summary.Marked)
	assert.Equal(t, 0, summary.Unmarked)
	assert.Equal(t, 1, summary.Metrics.Present)
	assert.Equal(t, 1, summary.Metrics.Late)
	// Present and Late both count toward the per-section tallies.
	assert.Equal(t, map[string]int{"Liquid": 1, "Powder": 1}, summary.SectionMetrics)
}

func TestDashboardSummaryUnmarked(t *testing.T) {
	f := newFakeRouter()
	f.seedWorker(1, "Asha Verma", "Liquid", "Mixing", "Morning", true)
	f.seedWorker(2, "Ravi Nair", "Powder", "Granulation", "Morning", true)

	attendance := testAttendanceService(f, time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC))
	svc := NewDashboardService(f, attendance, nil, 0, nil)

	summary, err := svc.Summary(context.Background(), "2026-08-15")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Marked)
	assert.Equal(t, 2, summary.Unmarked)
	assert.False(t, summary.Online)
}

func TestDashboardSummaryRejectsBadDate(t *testing.T) {
	f := newFakeRouter()
	attendance := testAttendanceService(f, time.Now())
	svc := NewDashboardService(f, attendance, nil, 0, nil)

	_, err := svc.Summary(context.Background(), "15-08-2026")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
