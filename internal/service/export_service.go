package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
	"github.com/noah-isme/plant-attendance-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered document ready to send.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders attendance and roster views into downloadable
// files. It reads through the sibling services so exports show exactly
// what the API shows.
type ExportService struct {
	attendance *AttendanceService
	workers    *WorkerService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(attendance *AttendanceService, workers *WorkerService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		workers:    workers,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// DailyRegister exports one day's register.
func (s *ExportService) DailyRegister(ctx context.Context, date string, filter RegisterFilter, format ExportFormat) (*ExportFile, error) {
	reg, err := s.attendance.DailyRegister(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Attendance Register %s", reg.Date),
		Headers: []string{"Worker", "Section", "Department", "Shift", "Status"},
	}
	for _, rec := range reg.Records {
		data.Rows = append(data.Rows, map[string]string{
			"Worker":     rec.WorkerName,
			"Section":    rec.Section,
			"Department": rec.Department,
			"Shift":      rec.Shift,
			"Status":     string(rec.Status),
		})
	}
	return s.render(data, fmt.Sprintf("attendance-%s", reg.Date), format)
}

// MonthlyStats exports the per-worker monthly aggregate.
func (s *ExportService) MonthlyStats(ctx context.Context, month string, format ExportFormat) (*ExportFile, error) {
	stats, err := s.attendance.MonthlyStats(ctx, month)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Monthly Attendance %s", month),
		Headers: []string{"Worker", "Section", "Department", "Shift", "Present", "Absent", "Late", "Leave", "Attendance %"},
	}
	for _, st := range stats {
		data.Rows = append(data.Rows, map[string]string{
			"Worker":       st.WorkerName,
			"Section":      st.Section,
			"Department":   st.Department,
			"Shift":        st.Shift,
			"Present":      strconv.Itoa(st.Present),
			"Absent":       strconv.Itoa(st.Absent),
			"Late":         strconv.Itoa(st.Late),
			"Leave":        strconv.Itoa(st.Leave),
			"Attendance %": fmt.Sprintf("%.1f", st.AttendPct),
		})
	}
	return s.render(data, fmt.Sprintf("monthly-%s", month), format)
}

// MonthGrid exports the worker-by-day matrix. Wide months only fit the
// CSV rendering.
func (s *ExportService) MonthGrid(ctx context.Context, month string, filter models.WorkerFilter) (*ExportFile, error) {
	grid, days, err := s.attendance.MonthGrid(ctx, month, filter)
	if err != nil {
		return nil, err
	}

	headers := append([]string{"Worker", "Section", "Department", "Shift"}, days...)
	headers = append(headers, "Present Days", "Attendance %")
	data := export.Dataset{
		Title:   fmt.Sprintf("Attendance Grid %s", month),
		Headers: headers,
	}
	for _, line := range grid {
		row := map[string]string{
			"Worker":       line.WorkerName,
			"Section":      line.Section,
			"Department":   line.Department,
			"Shift":        line.Shift,
			"Present Days": strconv.Itoa(line.PresentDays),
			"Attendance %": fmt.Sprintf("%.1f", line.AttendPct),
		}
		for _, day := range days {
			row[day] = line.Days[day]
		}
		data.Rows = append(data.Rows, row)
	}
	return s.render(data, fmt.Sprintf("grid-%s", month), FormatCSV)
}

// Roster exports the worker directory.
func (s *ExportService) Roster(ctx context.Context, filter models.WorkerFilter, format ExportFormat) (*ExportFile, error) {
	workers, err := s.workers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Worker Roster",
		Headers: []string{"Name", "Section", "Department", "Shift", "Active"},
	}
	for _, w := range workers {
		data.Rows = append(data.Rows, map[string]string{
			"Name":       w.Name,
			"Section":    w.Section,
			"Department": w.Department,
			"Shift":      w.Shift,
			"Active":     strconv.FormatBool(w.Active),
		})
	}
	return s.render(data, "roster", format)
}

func (s *ExportService) render(data export.Dataset, base string, format ExportFormat) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	case FormatPDF:
		body, err := s.pdf.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
