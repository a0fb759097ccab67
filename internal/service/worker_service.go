package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// WorkerService manages the plant roster. Single adds and deletes go
// through the router so they survive offline periods in the change
// queue; roster rewrites (transfer, activate, deactivate) replace the
// whole table and are not queued.
type WorkerService struct {
	router    dataRouter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkerService constructs a WorkerService instance.
func NewWorkerService(router dataRouter, validate *validator.Validate, logger *zap.Logger) *WorkerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerService{router: router, validator: validate, logger: logger}
}

// AddWorkerRequest carries a single roster addition.
type AddWorkerRequest struct {
	Name       string `json:"name" validate:"required"`
	Section    string `json:"section" validate:"required"`
	Department string `json:"department" validate:"required"`
	Shift      string `json:"shift" validate:"required"`
}

// Add inserts one worker. Duplicate natural keys are rejected against
// the currently reachable store.
func (s *WorkerService) Add(ctx context.Context, req AddWorkerRequest) (*models.Worker, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid worker payload")
	}

	worker := models.Worker{
		Name:       strings.TrimSpace(req.Name),
		Section:    strings.TrimSpace(req.Section),
		Department: strings.TrimSpace(req.Department),
		Shift:      strings.TrimSpace(req.Shift),
		Active:     true,
	}

	existing, err := s.List(ctx, models.WorkerFilter{})
	if err != nil {
		return nil, err
	}
	for _, w := range existing {
		if w.Key() == worker.Key() {
			return nil, appErrors.Clone(appErrors.ErrConflict, "worker already exists on the roster")
		}
	}

	if err := s.router.Insert(ctx, store.TableWorkers, worker.Row()); err != nil {
		return nil, err
	}

	s.logger.Info("worker added",
		zap.String("name", worker.Name),
		zap.String("section", worker.Section),
		zap.String("department", worker.Department),
		zap.String("shift", worker.Shift))
	return &worker, nil
}

// List returns the roster, optionally filtered, sorted by name.
func (s *WorkerService) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, error) {
	rows, err := s.router.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}
	workers := make([]models.Worker, 0, len(rows))
	for _, row := range rows {
		w := models.WorkerFromRow(row)
		if filter.Matches(w) {
			workers = append(workers, w)
		}
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].Name < workers[j].Name })
	return workers, nil
}

// Get returns one worker by id.
func (s *WorkerService) Get(ctx context.Context, id int) (*models.Worker, error) {
	rows, err := s.router.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		w := models.WorkerFromRow(row)
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
}

// Delete removes one worker by id. The id is resolved to the full
// natural key before deleting so an offline delete replays correctly
// against the remote store, where the same worker carries a different
// row id.
func (s *WorkerService) Delete(ctx context.Context, id int) error {
	worker, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	pred := store.Predicate{
		"name":       worker.Name,
		"section":    worker.Section,
		"department": worker.Department,
		"shift":      worker.Shift,
	}
	affected, err := s.router.Delete(ctx, store.TableWorkers, pred)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "worker not found")
	}
	s.logger.Info("worker removed", zap.String("name", worker.Name), zap.Int("id", id))
	return nil
}

// DeleteByName removes workers matching a name, narrowed by department
// when one is given. Without the department every department's worker
// of that name is removed.
func (s *WorkerService) DeleteByName(ctx context.Context, name, department string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "worker name is required")
	}
	pred := store.Predicate{"name": name}
	if department = strings.TrimSpace(department); department != "" {
		pred["department"] = department
	}
	affected, err := s.router.Delete(ctx, store.TableWorkers, pred)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "no matching workers")
	}
	s.logger.Info("workers removed by name", zap.String("name", name), zap.Int64("count", affected))
	return affected, nil
}

// TransferRequest moves a worker to a new placement. Empty fields keep
// the current value.
type TransferRequest struct {
	Section    string `json:"section"`
	Department string `json:"department"`
	Shift      string `json:"shift"`
}

// Transfer rewrites the worker's placement in a whole-table replace.
func (s *WorkerService) Transfer(ctx context.Context, id int, req TransferRequest) (*models.Worker, error) {
	return s.rewrite(ctx, id, func(w *models.Worker) {
		if v := strings.TrimSpace(req.Section); v != "" {
			w.Section = v
		}
		if v := strings.TrimSpace(req.Department); v != "" {
			w.Department = v
		}
		if v := strings.TrimSpace(req.Shift); v != "" {
			w.Shift = v
		}
	})
}

// SetActive toggles the worker's active flag.
func (s *WorkerService) SetActive(ctx context.Context, id int, active bool) (*models.Worker, error) {
	return s.rewrite(ctx, id, func(w *models.Worker) { w.Active = active })
}

// rewrite applies mutate to one worker and replaces the table snapshot.
func (s *WorkerService) rewrite(ctx context.Context, id int, mutate func(*models.Worker)) (*models.Worker, error) {
	rows, err := s.router.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}

	var updated *models.Worker
	out := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		w := models.WorkerFromRow(row)
		if w.ID == id {
			mutate(&w)
			updated = &w
		}
		out = append(out, w.Row())
	}
	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
	}

	if err := s.router.ReplaceAll(ctx, store.TableWorkers, out); err != nil {
		return nil, err
	}
	return updated, nil
}

// bulkHeader is the column order the bulk upload template uses.
var bulkHeader = []string{"name", "section", "department", "shift"}

// Template renders the CSV template for bulk roster uploads.
func (s *WorkerService) Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(bulkHeader)
	_ = w.Write([]string{"Asha Verma", "Liquid", "Mixing", "Morning"})
	w.Flush()
	return buf.Bytes()
}

// BulkResult summarises a bulk upload.
type BulkResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// BulkUpload parses a roster CSV and inserts every row whose natural
// key is not already present. Duplicates inside the file and against
// the store are skipped, never errored.
func (s *WorkerService) BulkUpload(ctx context.Context, r io.Reader) (*BulkResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "empty or unreadable CSV")
	}
	idx, err := bulkColumnIndex(header)
	if err != nil {
		return nil, err
	}

	existing, err := s.List(ctx, models.WorkerFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[models.WorkerNaturalKey]struct{}, len(existing))
	for _, w := range existing {
		seen[w.Key()] = struct{}{}
	}

	result := &BulkResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		worker := models.Worker{
			Name:       strings.TrimSpace(record[idx["name"]]),
			Section:    strings.TrimSpace(record[idx["section"]]),
			Department: strings.TrimSpace(record[idx["department"]]),
			Shift:      strings.TrimSpace(record[idx["shift"]]),
			Active:     true,
		}
		if worker.Name == "" || worker.Section == "" || worker.Department == "" || worker.Shift == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing required fields", line))
			continue
		}
		if _, dup := seen[worker.Key()]; dup {
			result.Skipped++
			continue
		}

		if err := s.router.Insert(ctx, store.TableWorkers, worker.Row()); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		seen[worker.Key()] = struct{}{}
		result.Inserted++
	}

	s.logger.Info("bulk worker upload finished",
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func bulkColumnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range bulkHeader {
		if _, ok := idx[col]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("CSV is missing the %q column", col))
		}
	}
	return idx, nil
}
