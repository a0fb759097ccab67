package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/service"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
	"github.com/noah-isme/plant-attendance-api/pkg/response"
)

// SyncHandler exposes connectivity status and manual reconciliation.
type SyncHandler struct {
	sync    *service.SyncService
	metrics *service.MetricsService
}

// NewSyncHandler constructs SyncHandler. metrics may be nil.
func NewSyncHandler(sync *service.SyncService, metrics *service.MetricsService) *SyncHandler {
	return &SyncHandler{sync: sync, metrics: metrics}
}

// Status godoc
// @Summary Connectivity and queue status
// @Description Being offline is a reported state, never an error
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.sync.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SetOnline(status.Online)
		h.metrics.SetPendingChanges(status.PendingChanges)
	}
	response.JSON(c, http.StatusOK, status)
}

// Run godoc
// @Summary Run one reconciliation pass
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sync/run [post]
func (h *SyncHandler) Run(c *gin.Context) {
	outcome, err := h.sync.Run(c.Request.Context())
	if err != nil && !appErrors.Is(err, appErrors.ErrSyncPartial) {
		response.Error(c, err)
		return
	}
	if h.metrics != nil && outcome != nil {
		h.metrics.ObserveSyncPass(outcome.Result.Replayed, outcome.Result.Failed)
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, outcome)
}
