package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// DirectoryService manages sections, departments and shifts. These are
// small reference tables: every edit reads the snapshot, changes it in
// memory and replaces the whole table. Directory edits are therefore
// online-or-local, never queued.
type DirectoryService struct {
	router    dataRouter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs a DirectoryService instance.
func NewDirectoryService(router dataRouter, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{router: router, validator: validate, logger: logger}
}

// ListSections returns all sections sorted by name.
func (s *DirectoryService) ListSections(ctx context.Context) ([]models.Section, error) {
	rows, err := s.router.Read(ctx, store.TableSections)
	if err != nil {
		return nil, err
	}
	sections := make([]models.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, models.SectionFromRow(row))
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name < sections[j].Name })
	return sections, nil
}

// AddSectionRequest carries a new section.
type AddSectionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// AddSection appends one section to the directory.
func (s *DirectoryService) AddSection(ctx context.Context, req AddSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	name := strings.TrimSpace(req.Name)

	rows, err := s.router.Read(ctx, store.TableSections)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if strings.EqualFold(models.SectionFromRow(row).Name, name) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "section already exists")
		}
	}

	section := models.Section{ID: nextID(rows), Name: name, Description: strings.TrimSpace(req.Description)}
	rows = append(rows, section.Row())
	if err := s.router.ReplaceAll(ctx, store.TableSections, rows); err != nil {
		return nil, err
	}
	s.logger.Info("section added", zap.String("name", section.Name))
	return &section, nil
}

// DeleteSection removes a section. Departments reference sections with
// a soft foreign key, so the check lives here rather than in storage.
func (s *DirectoryService) DeleteSection(ctx context.Context, id int) error {
	deptRows, err := s.router.Read(ctx, store.TableDepartments)
	if err != nil {
		return err
	}
	for _, row := range deptRows {
		if models.DepartmentFromRow(row).SectionID == id {
			return appErrors.Clone(appErrors.ErrConflict, "section still has departments assigned")
		}
	}

	rows, err := s.router.Read(ctx, store.TableSections)
	if err != nil {
		return err
	}
	out := make([]store.Row, 0, len(rows))
	found := false
	for _, row := range rows {
		if models.SectionFromRow(row).ID == id {
			found = true
			continue
		}
		out = append(out, row)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return s.router.ReplaceAll(ctx, store.TableSections, out)
}

// ListDepartments returns all departments with the owning section name
// resolved for display.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.router.Read(ctx, store.TableDepartments)
	if err != nil {
		return nil, err
	}
	sections, err := s.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	sectionNames := make(map[int]string, len(sections))
	for _, sec := range sections {
		sectionNames[sec.ID] = sec.Name
	}

	departments := make([]models.Department, 0, len(rows))
	for _, row := range rows {
		dept := models.DepartmentFromRow(row)
		dept.SectionName = sectionNames[dept.SectionID]
		departments = append(departments, dept)
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

// AddDepartmentRequest carries a new department.
type AddDepartmentRequest struct {
	Name        string `json:"name" validate:"required"`
	SectionID   int    `json:"section_id" validate:"required,gt=0"`
	Description string `json:"description"`
}

// AddDepartment appends one department under an existing section.
func (s *DirectoryService) AddDepartment(ctx context.Context, req AddDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	name := strings.TrimSpace(req.Name)

	sections, err := s.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	var owner *models.Section
	for i := range sections {
		if sections[i].ID == req.SectionID {
			owner = &sections[i]
			break
		}
	}
	if owner == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("section %d does not exist", req.SectionID))
	}

	rows, err := s.router.Read(ctx, store.TableDepartments)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		dept := models.DepartmentFromRow(row)
		if dept.SectionID == req.SectionID && strings.EqualFold(dept.Name, name) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department already exists in this section")
		}
	}

	dept := models.Department{
		ID:          nextID(rows),
		Name:        name,
		SectionID:   req.SectionID,
		SectionName: owner.Name,
		Description: strings.TrimSpace(req.Description),
	}
	rows = append(rows, dept.Row())
	if err := s.router.ReplaceAll(ctx, store.TableDepartments, rows); err != nil {
		return nil, err
	}
	s.logger.Info("department added", zap.String("name", dept.Name), zap.String("section", owner.Name))
	return &dept, nil
}

// DeleteDepartment removes one department by id.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id int) error {
	rows, err := s.router.Read(ctx, store.TableDepartments)
	if err != nil {
		return err
	}
	out := make([]store.Row, 0, len(rows))
	found := false
	for _, row := range rows {
		if models.DepartmentFromRow(row).ID == id {
			found = true
			continue
		}
		out = append(out, row)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	return s.router.ReplaceAll(ctx, store.TableDepartments, out)
}

// ListShifts returns all shifts sorted by name.
func (s *DirectoryService) ListShifts(ctx context.Context) ([]models.Shift, error) {
	rows, err := s.router.Read(ctx, store.TableShifts)
	if err != nil {
		return nil, err
	}
	shifts := make([]models.Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, models.ShiftFromRow(row))
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Name < shifts[j].Name })
	return shifts, nil
}

// AddShiftRequest carries a new shift.
type AddShiftRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddShift appends one shift.
func (s *DirectoryService) AddShift(ctx context.Context, req AddShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	name := strings.TrimSpace(req.Name)

	rows, err := s.router.Read(ctx, store.TableShifts)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if strings.EqualFold(models.ShiftFromRow(row).Name, name) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "shift already exists")
		}
	}

	shift := models.Shift{ID: nextID(rows), Name: name}
	rows = append(rows, shift.Row())
	if err := s.router.ReplaceAll(ctx, store.TableShifts, rows); err != nil {
		return nil, err
	}
	return &shift, nil
}

// DeleteShift removes one shift by id.
func (s *DirectoryService) DeleteShift(ctx context.Context, id int) error {
	rows, err := s.router.Read(ctx, store.TableShifts)
	if err != nil {
		return err
	}
	out := make([]store.Row, 0, len(rows))
	found := false
	for _, row := range rows {
		if models.ShiftFromRow(row).ID == id {
			found = true
			continue
		}
		out = append(out, row)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
	}
	return s.router.ReplaceAll(ctx, store.TableShifts, out)
}

// ClearTable empties one of the admin danger-zone tables. Only the
// roster and attendance tables may be cleared this way.
func (s *DirectoryService) ClearTable(ctx context.Context, table string) error {
	switch table {
	case store.TableWorkers, store.TableAttendance:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("table %q cannot be cleared", table))
	}
	if err := s.router.ReplaceAll(ctx, table, nil); err != nil {
		return err
	}
	s.logger.Warn("table cleared", zap.String("table", table))
	return nil
}
