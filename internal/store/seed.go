package store

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// AdminSeed describes the default administrator created on first start.
type AdminSeed struct {
	Name         string
	Username     string
	PasswordHash string
}

// NewAdminSeed hashes the configured password once.
func NewAdminSeed(name, username, password string) (AdminSeed, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminSeed{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			"hash seed admin password")
	}
	return AdminSeed{Name: name, Username: username, PasswordHash: string(hash)}, nil
}

// Seeder writes default reference data into empty tables. Tables that
// already hold rows are left untouched, so reseeding during self-heal
// never duplicates or overwrites data.
type Seeder struct {
	Admin AdminSeed
}

// Seed populates shifts, sections, departments and the default admin
// account when their tables are empty.
func (s Seeder) Seed(ctx context.Context, st Store) error {
	if err := s.seedTable(ctx, st, TableShifts, []Row{
		{"name": "Morning"},
		{"name": "Afternoon"},
		{"name": "General"},
	}); err != nil {
		return err
	}

	if err := s.seedTable(ctx, st, TableSections, []Row{
		{"name": "Liquid Section", "description": "Liquid manufacturing"},
		{"name": "Solid Section", "description": "Solid manufacturing"},
		{"name": "Utility Section", "description": "Utility services"},
	}); err != nil {
		return err
	}

	if err := s.seedTable(ctx, st, TableDepartments, []Row{
		{"name": "Mixing", "section_id": 1, "description": "Mixing department"},
		{"name": "Filling", "section_id": 1, "description": "Filling department"},
		{"name": "Packaging", "section_id": 2, "description": "Packaging department"},
		{"name": "Maintenance", "section_id": 3, "description": "Maintenance department"},
	}); err != nil {
		return err
	}

	return s.seedTable(ctx, st, TableUsers, []Row{{
		"name":             s.Admin.Name,
		"username":         s.Admin.Username,
		"password_hash":    s.Admin.PasswordHash,
		"role":             "Admin",
		"active":           true,
		"assigned_section": "",
		"assigned_shift":   "",
	}})
}

func (s Seeder) seedTable(ctx context.Context, st Store, table string, rows []Row) error {
	existing, err := st.Read(ctx, table)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, row := range rows {
		if err := st.Insert(ctx, table, row); err != nil {
			return err
		}
	}
	return nil
}
