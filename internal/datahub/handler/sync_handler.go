package handler

import (
	"errors"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// SyncHandler triggers form submission backfills (admin).
type SyncHandler struct {
	svc       *service.SyncService
	analytics *service.AnalyticsService
}

func NewSyncHandler(svc *service.SyncService, analytics *service.AnalyticsService) *SyncHandler {
	return &SyncHandler{svc: svc, analytics: analytics}
}

// SyncDataset
// POST /api/v1/datahub/datasets/:datasetId/sync-submissions
func (h *SyncHandler) SyncDataset(c *gin.Context) {
	datasetID := c.Param("datasetId")
	result, err := h.svc.SyncDataset(c.Request.Context(), GetUserID(c), datasetID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "dataset not found")
		case errors.Is(err, service.ErrNoSourceForm):
			BadRequest(c, "dataset has no source form configured")
		default:
			InternalError(c, "sync failed: "+err.Error())
		}
		return
	}

	if result.Synced > 0 {
		h.analytics.Invalidate(c.Request.Context(), datasetID)
	}
	Success(c, result)
}

// SyncAll
// POST /api/v1/datahub/sync-submissions
// An empty body syncs every dataset with a linked source form.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	var req struct {
		DatasetIDs []string `json:"datasetIds"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	results, err := h.svc.SyncAll(c.Request.Context(), GetUserID(c), req.DatasetIDs)
	if err != nil {
		InternalError(c, "sync failed: "+err.Error())
		return
	}

	for _, result := range results {
		if result.Synced > 0 {
			h.analytics.Invalidate(c.Request.Context(), result.DatasetID)
		}
	}
	Success(c, results)
}
