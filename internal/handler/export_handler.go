package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/service"
	"github.com/noah-isme/plant-attendance-api/pkg/response"
)

// ExportHandler serves downloadable report files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(c.DefaultQuery("format", "csv"))
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// Daily godoc
// @Summary Export one day's register
// @Tags Exports
// @Produce text/csv
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv or pdf"
// @Param section query string false "Filter by section"
// @Param department query string false "Filter by department"
// @Param shift query string false "Filter by shift"
// @Success 200 {string} string "Rendered file"
// @Router /exports/daily [get]
func (h *ExportHandler) Daily(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	filter := service.RegisterFilter{
		Section:    c.Query("section"),
		Department: c.Query("department"),
		Shift:      c.Query("shift"),
	}
	file, err := h.exports.DailyRegister(c.Request.Context(), date, filter, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Monthly godoc
// @Summary Export monthly per-worker stats
// @Tags Exports
// @Produce text/csv
// @Param month query string true "Month (YYYY-MM)"
// @Param format query string false "csv or pdf"
// @Success 200 {string} string "Rendered file"
// @Router /exports/monthly [get]
func (h *ExportHandler) Monthly(c *gin.Context) {
	file, err := h.exports.MonthlyStats(c.Request.Context(), c.Query("month"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Grid godoc
// @Summary Export the worker-by-day grid
// @Tags Exports
// @Produce text/csv
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {string} string "Rendered file"
// @Router /exports/grid [get]
func (h *ExportHandler) Grid(c *gin.Context) {
	file, err := h.exports.MonthGrid(c.Request.Context(), c.Query("month"), workerFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Roster godoc
// @Summary Export the worker roster
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {string} string "Rendered file"
// @Router /exports/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	file, err := h.exports.Roster(c.Request.Context(), workerFilterFromQuery(c), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}
