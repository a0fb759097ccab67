package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/service"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
	"github.com/noah-isme/plant-attendance-api/pkg/response"
)

// DirectoryHandler exposes section, department and shift endpoints.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListSections godoc
// @Summary List sections
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *DirectoryHandler) ListSections(c *gin.Context) {
	sections, err := h.directory.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections)
}

// AddSection godoc
// @Summary Add a section
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body service.AddSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections [post]
func (h *DirectoryHandler) AddSection(c *gin.Context) {
	var req service.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	section, err := h.directory.AddSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// DeleteSection godoc
// @Summary Remove a section
// @Tags Directory
// @Param id path int true "Section id"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections/{id} [delete]
func (h *DirectoryHandler) DeleteSection(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteSection(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	departments, err := h.directory.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments)
}

// AddDepartment godoc
// @Summary Add a department
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body service.AddDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /departments [post]
func (h *DirectoryHandler) AddDepartment(c *gin.Context) {
	var req service.AddDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid department payload"))
		return
	}
	dept, err := h.directory.AddDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dept)
}

// DeleteDepartment godoc
// @Summary Remove a department
// @Tags Directory
// @Param id path int true "Department id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [delete]
func (h *DirectoryHandler) DeleteDepartment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteDepartment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListShifts godoc
// @Summary List shifts
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *DirectoryHandler) ListShifts(c *gin.Context) {
	shifts, err := h.directory.ListShifts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts)
}

// AddShift godoc
// @Summary Add a shift
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body service.AddShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shifts [post]
func (h *DirectoryHandler) AddShift(c *gin.Context) {
	var req service.AddShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}
	shift, err := h.directory.AddShift(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// DeleteShift godoc
// @Summary Remove a shift
// @Tags Directory
// @Param id path int true "Shift id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shifts/{id} [delete]
func (h *DirectoryHandler) DeleteShift(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteShift(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearTable godoc
// @Summary Empty the roster or attendance table
// @Tags Directory
// @Param table path string true "Table name (workers or attendance)"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/tables/{table} [delete]
func (h *DirectoryHandler) ClearTable(c *gin.Context) {
	if err := h.directory.ClearTable(c.Request.Context(), c.Param("table")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
