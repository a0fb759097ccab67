package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/service"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
	"github.com/noah-isme/plant-attendance-api/pkg/response"
)

// AttendanceHandler exposes daily marking and reporting endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	dashboard  *service.DashboardService
}

// NewAttendanceHandler constructs AttendanceHandler. dashboard may be
// nil; it is only used to invalidate the cached summary after writes.
func NewAttendanceHandler(attendance *service.AttendanceService, dashboard *service.DashboardService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, dashboard: dashboard}
}

func (h *AttendanceHandler) invalidate(c *gin.Context, date string) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context(), date)
	}
}

// Mark godoc
// @Summary Mark one worker's attendance
// @Description Marking the same worker and date again overwrites the status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c, req.Date)
	response.JSON(c, http.StatusOK, record)
}

// BatchMark godoc
// @Summary Mark a whole register page
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BatchMarkRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) BatchMark(c *gin.Context) {
	var req service.BatchMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	result, err := h.attendance.BatchMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c, req.Date)
	response.JSON(c, http.StatusOK, result)
}

// Register godoc
// @Summary Daily attendance register
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param section query string false "Filter by section"
// @Param department query string false "Filter by department"
// @Param shift query string false "Filter by shift"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Register(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	filter := service.RegisterFilter{
		Section:    c.Query("section"),
		Department: c.Query("department"),
		Shift:      c.Query("shift"),
	}
	reg, err := h.attendance.DailyRegister(c.Request.Context(), date, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg)
}

// MonthlyStats godoc
// @Summary Monthly per-worker attendance stats
// @Tags Attendance
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/monthly [get]
func (h *AttendanceHandler) MonthlyStats(c *gin.Context) {
	stats, err := h.attendance.MonthlyStats(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Grid godoc
// @Summary Worker-by-day attendance grid for one month
// @Tags Attendance
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Param section query string false "Filter by section"
// @Param department query string false "Filter by department"
// @Param shift query string false "Filter by shift"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/grid [get]
func (h *AttendanceHandler) Grid(c *gin.Context) {
	grid, days, err := h.attendance.MonthGrid(c.Request.Context(), c.Query("month"), workerFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"days": days, "rows": grid})
}

// Clear godoc
// @Summary Clear one day's attendance
// @Tags Attendance
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param worker query string false "Narrow to one worker"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [delete]
func (h *AttendanceHandler) Clear(c *gin.Context) {
	date := c.Query("date")
	removed, err := h.attendance.Clear(c.Request.Context(), date, c.Query("worker"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c, date)
	response.JSON(c, http.StatusOK, gin.H{"removed": removed})
}
