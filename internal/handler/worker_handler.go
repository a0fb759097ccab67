package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/service"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
	"github.com/noah-isme/plant-attendance-api/pkg/response"
)

// WorkerHandler exposes roster endpoints.
type WorkerHandler struct {
	workers *service.WorkerService
}

// NewWorkerHandler constructs WorkerHandler.
func NewWorkerHandler(workers *service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workers: workers}
}

func workerFilterFromQuery(c *gin.Context) models.WorkerFilter {
	return models.WorkerFilter{
		Section:    c.Query("section"),
		Department: c.Query("department"),
		Shift:      c.Query("shift"),
		ActiveOnly: c.Query("active") == "true",
	}
}

// List godoc
// @Summary List workers
// @Tags Workers
// @Produce json
// @Param section query string false "Filter by section"
// @Param department query string false "Filter by department"
// @Param shift query string false "Filter by shift"
// @Param active query bool false "Only active workers"
// @Success 200 {object} response.Envelope
// @Router /workers [get]
func (h *WorkerHandler) List(c *gin.Context) {
	workers, err := h.workers.List(c.Request.Context(), workerFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workers)
}

// Add godoc
// @Summary Add a worker
// @Tags Workers
// @Accept json
// @Produce json
// @Param payload body service.AddWorkerRequest true "Worker payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /workers [post]
func (h *WorkerHandler) Add(c *gin.Context) {
	var req service.AddWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid worker payload"))
		return
	}
	worker, err := h.workers.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, worker)
}

// Get godoc
// @Summary Get one worker
// @Tags Workers
// @Produce json
// @Param id path int true "Worker id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers/{id} [get]
func (h *WorkerHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	worker, err := h.workers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker)
}

// Delete godoc
// @Summary Remove a worker
// @Tags Workers
// @Param id path int true "Worker id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers/{id} [delete]
func (h *WorkerHandler) Delete(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.workers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteByName godoc
// @Summary Remove workers by name
// @Tags Workers
// @Produce json
// @Param name query string true "Worker name"
// @Param department query string false "Narrow to one department"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers [delete]
func (h *WorkerHandler) DeleteByName(c *gin.Context) {
	removed, err := h.workers.DeleteByName(c.Request.Context(), c.Query("name"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed})
}

// Transfer godoc
// @Summary Transfer a worker to a new placement
// @Tags Workers
// @Accept json
// @Produce json
// @Param id path int true "Worker id"
// @Param payload body service.TransferRequest true "New placement"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers/{id}/transfer [post]
func (h *WorkerHandler) Transfer(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transfer payload"))
		return
	}
	worker, err := h.workers.Transfer(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker)
}

// Activate godoc
// @Summary Activate a worker
// @Tags Workers
// @Produce json
// @Param id path int true "Worker id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers/{id}/activate [post]
func (h *WorkerHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// @Summary Deactivate a worker
// @Tags Workers
// @Produce json
// @Param id path int true "Worker id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workers/{id}/deactivate [post]
func (h *WorkerHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *WorkerHandler) setActive(c *gin.Context, active bool) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	worker, err := h.workers.SetActive(c.Request.Context(), id, active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker)
}

// BulkUpload godoc
// @Summary Bulk upload workers from CSV
// @Tags Workers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster CSV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /workers/bulk [post]
func (h *WorkerHandler) BulkUpload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}
	defer file.Close()

	result, err := h.workers.BulkUpload(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Template godoc
// @Summary Download the bulk upload CSV template
// @Tags Workers
// @Produce text/csv
// @Success 200 {string} string "CSV template"
// @Router /workers/bulk/template [get]
func (h *WorkerHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="worker-template.csv"`)
	c.Data(http.StatusOK, "text/csv", h.workers.Template())
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter"))
		return 0, false
	}
	return v, true
}
