package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

func TestDirectoryAddSection(t *testing.T) {
	f := newFakeRouter()
	svc := NewDirectoryService(f, nil, nil)

	section, err := svc.AddSection(context.Background(), AddSectionRequest{Name: "  Liquid  ", Description: "liquid line"})
	require.NoError(t, err)
	assert.Equal(t, "Liquid", section.Name)

	// Duplicate names are matched case-insensitively.
	_, err = svc.AddSection(context.Background(), AddSectionRequest{Name: "liquid"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestDirectoryDeleteSectionWithDepartmentsRefused(t *testing.T) {
	f := newFakeRouter()
	svc := NewDirectoryService(f, nil, nil)

	section, err := svc.AddSection(context.Background(), AddSectionRequest{Name: "Liquid"})
	require.NoError(t, err)
	dept, err := svc.AddDepartment(context.Background(), AddDepartmentRequest{Name: "Mixing", SectionID: section.ID})
	require.NoError(t, err)
	assert.Equal(t, "Liquid", dept.SectionName)

	err = svc.DeleteSection(context.Background(), section.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	// Once the department is gone the section can go too.
	require.NoError(t, svc.DeleteDepartment(context.Background(), dept.ID))
	require.NoError(t, svc.DeleteSection(context.Background(), section.ID))

	sections, err := svc.ListSections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestDirectoryAddDepartmentNeedsExistingSection(t *testing.T) {
	svc := NewDirectoryService(newFakeRouter(), nil, nil)

	_, err := svc.AddDepartment(context.Background(), AddDepartmentRequest{Name: "Mixing", SectionID: 42})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDirectoryShifts(t *testing.T) {
	f := newFakeRouter()
	svc := NewDirectoryService(f, nil, nil)

	shift, err := svc.AddShift(context.Background(), AddShiftRequest{Name: "Morning"})
	require.NoError(t, err)

	_, err = svc.AddShift(context.Background(), AddShiftRequest{Name: "morning"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	require.NoError(t, svc.DeleteShift(context.Background(), shift.ID))
	assert.True(t, appErrors.Is(svc.DeleteShift(context.Background(), shift.ID), appErrors.ErrNotFound))
}

func TestDirectoryClearTableWhitelist(t *testing.T) {
	f := newFakeRouter()
	f.tables[store.TableWorkers] = []store.Row{{"id": 1, "name": "Asha Verma"}}
	svc := NewDirectoryService(f, nil, nil)

	require.NoError(t, svc.ClearTable(context.Background(), store.TableWorkers))
	assert.Empty(t, f.tables[store.TableWorkers])

	err := svc.ClearTable(context.Background(), store.TableUsers)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
