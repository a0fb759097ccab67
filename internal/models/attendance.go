package models

import (
	"time"

	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLate    AttendanceStatus = "Late"
	StatusLeave   AttendanceStatus = "Leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one worker's status on one calendar date. At most
// one record exists per (WorkerName, Date); marking again overwrites the
// status and the recorded-at instant.
type AttendanceRecord struct {
	ID         int              `json:"id"`
	WorkerID   int              `json:"worker_id,omitempty"`
	WorkerName string           `json:"worker_name"`
	Date       time.Time        `json:"date"`
	Section    string           `json:"section"`
	Department string           `json:"department"`
	Shift      string           `json:"shift"`
	Status     AttendanceStatus `json:"status"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// AttendanceFromRow decodes a normalized store row.
func AttendanceFromRow(row store.Row) AttendanceRecord {
	return AttendanceRecord{
		ID:         row.Int("id"),
		WorkerID:   row.Int("worker_id"),
		WorkerName: row.String("worker_name"),
		Date:       row.Date("date"),
		Section:    row.String("section"),
		Department: row.String("department"),
		Shift:      row.String("shift"),
		Status:     AttendanceStatus(row.String("status")),
		RecordedAt: row.Time("recorded_at"),
	}
}

// Row encodes the record for the store layer.
func (a AttendanceRecord) Row() store.Row {
	row := store.Row{
		"worker_name": a.WorkerName,
		"date":        a.Date,
		"section":     a.Section,
		"department":  a.Department,
		"shift":       a.Shift,
		"status":      string(a.Status),
		"recorded_at": a.RecordedAt,
	}
	if a.ID > 0 {
		row["id"] = a.ID
	}
	if a.WorkerID > 0 {
		row["worker_id"] = a.WorkerID
	}
	return row
}

// DailyMetrics summarises one day's register.
type DailyMetrics struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Leave   int `json:"leave"`
}

// Count tallies one record into the metrics.
func (m *DailyMetrics) Count(status AttendanceStatus) {
	m.Total++
	switch status {
	case StatusPresent:
		m.Present++
	case StatusAbsent:
		m.Absent++
	case StatusLate:
		m.Late++
	case StatusLeave:
		m.Leave++
	}
}

// MonthlyWorkerStat aggregates one worker's month.
type MonthlyWorkerStat struct {
	WorkerName  string  `json:"worker_name"`
	Section     string  `json:"section"`
	Department  string  `json:"department"`
	Shift       string  `json:"shift"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	Leave       int     `json:"leave"`
	Total       int     `json:"total"`
	AttendPct   float64 `json:"attendance_pct"`
}

// GridRow is one roster line of the month grid: a symbol per day plus
// the present-day tally.
type GridRow struct {
	WorkerID    int               `json:"worker_id"`
	WorkerName  string            `json:"worker_name"`
	Section     string            `json:"section"`
	Department  string            `json:"department"`
	Shift       string            `json:"shift"`
	Days        map[string]string `json:"days"`
	PresentDays int               `json:"present_days"`
	AttendPct   float64           `json:"attendance_pct"`
}
