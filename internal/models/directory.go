package models

import (
	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// Section is a top-level plant area.
type Section struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SectionFromRow decodes a normalized store row.
func SectionFromRow(row store.Row) Section {
	return Section{
		ID:          row.Int("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
	}
}

// Row encodes the section for the store layer.
func (s Section) Row() store.Row {
	row := store.Row{"name": s.Name, "description": s.Description}
	if s.ID > 0 {
		row["id"] = s.ID
	}
	return row
}

// Department belongs to a section. The SectionID reference is a soft
// foreign key: storage does not enforce it, callers check it.
type Department struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	SectionID   int    `json:"section_id"`
	SectionName string `json:"section_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// DepartmentFromRow decodes a normalized store row.
func DepartmentFromRow(row store.Row) Department {
	return Department{
		ID:          row.Int("id"),
		Name:        row.String("name"),
		SectionID:   row.Int("section_id"),
		Description: row.String("description"),
	}
}

// Row encodes the department for the store layer.
func (d Department) Row() store.Row {
	row := store.Row{"name": d.Name, "section_id": d.SectionID, "description": d.Description}
	if d.ID > 0 {
		row["id"] = d.ID
	}
	return row
}

// Shift names a working shift.
type Shift struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ShiftFromRow decodes a normalized store row.
func ShiftFromRow(row store.Row) Shift {
	return Shift{ID: row.Int("id"), Name: row.String("name")}
}

// Row encodes the shift for the store layer.
func (s Shift) Row() store.Row {
	row := store.Row{"name": s.Name}
	if s.ID > 0 {
		row["id"] = s.ID
	}
	return row
}
