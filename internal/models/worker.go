package models

import (
	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// Worker is one plant worker on the roster.
type Worker struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Section    string `json:"section"`
	Department string `json:"department"`
	Shift      string `json:"shift"`
	Active     bool   `json:"active"`
}

// NaturalKey identifies "the same worker" across the two stores:
// (Name, Section, Department, Shift).
type WorkerNaturalKey struct {
	Name       string
	Section    string
	Department string
	Shift      string
}

// Key returns the worker's natural key.
func (w Worker) Key() WorkerNaturalKey {
	return WorkerNaturalKey{Name: w.Name, Section: w.Section, Department: w.Department, Shift: w.Shift}
}

// WorkerFromRow decodes a normalized store row.
func WorkerFromRow(row store.Row) Worker {
	return Worker{
		ID:         row.Int("id"),
		Name:       row.String("name"),
		Section:    row.String("section"),
		Department: row.String("department"),
		Shift:      row.String("shift"),
		Active:     row.Bool("active"),
	}
}

// Row encodes the worker for the store layer.
func (w Worker) Row() store.Row {
	row := store.Row{
		"name":       w.Name,
		"section":    w.Section,
		"department": w.Department,
		"shift":      w.Shift,
		"active":     w.Active,
	}
	if w.ID > 0 {
		row["id"] = w.ID
	}
	return row
}

// WorkerFilter narrows roster listings. Empty fields match everything.
type WorkerFilter struct {
	Section    string
	Department string
	Shift      string
	ActiveOnly bool
}

// Matches applies the filter to one worker.
func (f WorkerFilter) Matches(w Worker) bool {
	if f.Section != "" && w.Section != f.Section {
		return false
	}
	if f.Department != "" && w.Department != f.Department {
		return false
	}
	if f.Shift != "" && w.Shift != f.Shift {
		return false
	}
	if f.ActiveOnly && !w.Active {
		return false
	}
	return true
}
