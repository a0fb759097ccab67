package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// AttendanceService manages daily marking and the reporting views on
// top of it. Marking works as an upsert on (worker_name, date): a second
// mark on the same day overwrites the first.
type AttendanceService struct {
	router    dataRouter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(router dataRouter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{router: router, validator: validate, logger: logger, now: time.Now}
}

// MarkRequest marks one worker on one date.
type MarkRequest struct {
	WorkerID int    `json:"worker_id" validate:"required,gt=0"`
	Date     string `json:"date" validate:"required"`
	Status   string `json:"status" validate:"required"`
}

// Mark records or overwrites one worker's status for a date.
func (s *AttendanceService) Mark(ctx context.Context, req MarkRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	worker, err := s.lookupWorker(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}
	if !worker.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "worker is inactive")
	}

	record := models.AttendanceRecord{
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Date:       date,
		Section:    worker.Section,
		Department: worker.Department,
		Shift:      worker.Shift,
		Status:     status,
		RecordedAt: s.now().UTC(),
	}
	if err := s.upsert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("attendance marked",
		zap.String("worker", worker.Name),
		zap.String("date", store.DateKey(date)),
		zap.String("status", string(status)))
	return &record, nil
}

// BatchMarkRequest marks many workers at once with a shared date.
type BatchMarkRequest struct {
	Date  string           `json:"date" validate:"required"`
	Marks []BatchMarkEntry `json:"marks" validate:"required,min=1,dive"`
}

// BatchMarkEntry is one worker's status inside a batch.
type BatchMarkEntry struct {
	WorkerID int    `json:"worker_id" validate:"required,gt=0"`
	Status   string `json:"status" validate:"required"`
}

// BatchResult summarises a batch mark.
type BatchResult struct {
	Marked int      `json:"marked"`
	Errors []string `json:"errors,omitempty"`
}

// BatchMark upserts a whole register page in one call. Individual
// failures are collected, not fatal.
func (s *AttendanceService) BatchMark(ctx context.Context, req BatchMarkRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	result := &BatchResult{}
	for _, entry := range req.Marks {
		_, err := s.Mark(ctx, MarkRequest{WorkerID: entry.WorkerID, Date: req.Date, Status: entry.Status})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("worker %d: %v", entry.WorkerID, err))
			continue
		}
		result.Marked++
	}
	return result, nil
}

// RegisterFilter narrows the daily register.
type RegisterFilter struct {
	Section    string
	Department string
	Shift      string
}

// Register is one day's marked records plus the tally.
type Register struct {
	Date    string                    `json:"date"`
	Records []models.AttendanceRecord `json:"records"`
	Metrics models.DailyMetrics       `json:"metrics"`
}

// DailyRegister returns every record for a date, filtered and counted.
func (s *AttendanceService) DailyRegister(ctx context.Context, dateStr string, filter RegisterFilter) (*Register, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	key := store.DateKey(date)
	reg := &Register{Date: key, Records: []models.AttendanceRecord{}}
	for _, rec := range records {
		if store.DateKey(rec.Date) != key {
			continue
		}
		if filter.Section != "" && rec.Section != filter.Section {
			continue
		}
		if filter.Department != "" && rec.Department != filter.Department {
			continue
		}
		if filter.Shift != "" && rec.Shift != filter.Shift {
			continue
		}
		reg.Records = append(reg.Records, rec)
		reg.Metrics.Count(rec.Status)
	}
	sort.Slice(reg.Records, func(i, j int) bool { return reg.Records[i].WorkerName < reg.Records[j].WorkerName })
	return reg, nil
}

// MonthlyStats aggregates per-worker counts for one month ("2026-08").
func (s *AttendanceService) MonthlyStats(ctx context.Context, month string) ([]models.MonthlyWorkerStat, error) {
	month = strings.TrimSpace(month)
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	byWorker := make(map[string]*models.MonthlyWorkerStat)
	var order []string
	for _, rec := range records {
		if !strings.HasPrefix(store.DateKey(rec.Date), month) {
			continue
		}
		stat, ok := byWorker[rec.WorkerName]
		if !ok {
			stat = &models.MonthlyWorkerStat{
				WorkerName: rec.WorkerName,
				Section:    rec.Section,
				Department: rec.Department,
				Shift:      rec.Shift,
			}
			byWorker[rec.WorkerName] = stat
			order = append(order, rec.WorkerName)
		}
		stat.Total++
		switch rec.Status {
		case models.StatusPresent:
			stat.Present++
		case models.StatusAbsent:
			stat.Absent++
		case models.StatusLate:
			stat.Late++
		case models.StatusLeave:
			stat.Leave++
		}
	}

	sort.Strings(order)
	stats := make([]models.MonthlyWorkerStat, 0, len(order))
	for _, name := range order {
		stat := byWorker[name]
		if stat.Total > 0 {
			stat.AttendPct = float64(stat.Present+stat.Late) / float64(stat.Total) * 100
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

// Grid symbols. Late counts toward attendance but keeps its own mark.
const (
	symbolPresent  = "✓"
	symbolAbsent   = "✗"
	symbolLate     = "L"
	symbolLeave    = "Lv"
	symbolUnmarked = "-"
)

// MonthGrid builds the worker-by-day matrix for one month. Every
// active roster worker appears, with unmarked days rendered as "-".
func (s *AttendanceService) MonthGrid(ctx context.Context, month string, filter models.WorkerFilter) ([]models.GridRow, []string, error) {
	month = strings.TrimSpace(month)
	if err := validateMonth(month); err != nil {
		return nil, nil, err
	}
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}
	daysInMonth := first.AddDate(0, 1, -1).Day()
	days := make([]string, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		days = append(days, fmt.Sprintf("%s-%02d", month, d))
	}

	workerRows, err := s.router.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	// (worker, day) -> status
	marks := make(map[string]models.AttendanceStatus)
	for _, rec := range records {
		key := store.DateKey(rec.Date)
		if strings.HasPrefix(key, month) {
			marks[rec.WorkerName+"|"+key] = rec.Status
		}
	}

	var grid []models.GridRow
	for _, row := range workerRows {
		w := models.WorkerFromRow(row)
		if !filter.Matches(w) {
			continue
		}
		line := models.GridRow{
			WorkerID:   w.ID,
			WorkerName: w.Name,
			Section:    w.Section,
			Department: w.Department,
			Shift:      w.Shift,
			Days:       make(map[string]string, daysInMonth),
		}
		marked := 0
		for _, day := range days {
			status, ok := marks[w.Name+"|"+day]
			if !ok {
				line.Days[day] = symbolUnmarked
				continue
			}
			marked++
			switch status {
			case models.StatusPresent:
				line.Days[day] = symbolPresent
				line.PresentDays++
			case models.StatusAbsent:
				line.Days[day] = symbolAbsent
			case models.StatusLate:
				line.Days[day] = symbolLate
				line.PresentDays++
			case models.StatusLeave:
				line.Days[day] = symbolLeave
			}
		}
		if marked > 0 {
			line.AttendPct = float64(line.PresentDays) / float64(marked) * 100
		}
		grid = append(grid, line)
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].WorkerName < grid[j].WorkerName })
	return grid, days, nil
}

// Clear deletes one day's records, optionally narrowed to one worker.
func (s *AttendanceService) Clear(ctx context.Context, dateStr, workerName string) (int64, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return 0, err
	}
	pred := store.Predicate{"date": store.DateKey(date)}
	if workerName = strings.TrimSpace(workerName); workerName != "" {
		pred["worker_name"] = workerName
	}
	affected, err := s.router.Delete(ctx, store.TableAttendance, pred)
	if err != nil {
		return 0, err
	}
	s.logger.Info("attendance cleared",
		zap.String("date", store.DateKey(date)),
		zap.Int64("removed", affected))
	return affected, nil
}

// upsert deletes any existing (worker_name, date) record, then inserts.
func (s *AttendanceService) upsert(ctx context.Context, record models.AttendanceRecord) error {
	pred := store.Predicate{
		"worker_name": record.WorkerName,
		"date":        store.DateKey(record.Date),
	}
	if _, err := s.router.Delete(ctx, store.TableAttendance, pred); err != nil && !appErrors.Is(err, appErrors.ErrNotFound) {
		return err
	}
	return s.router.Insert(ctx, store.TableAttendance, record.Row())
}

func (s *AttendanceService) readAll(ctx context.Context) ([]models.AttendanceRecord, error) {
	rows, err := s.router.Read(ctx, store.TableAttendance)
	if err != nil {
		return nil, err
	}
	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.AttendanceFromRow(row))
	}
	return records, nil
}

func (s *AttendanceService) lookupWorker(ctx context.Context, id int) (*models.Worker, error) {
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

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return t, nil
}

func validateMonth(month string) error {
	if _, err := time.Parse("2006-01", strings.TrimSpace(month)); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM")
	}
	return nil
}
