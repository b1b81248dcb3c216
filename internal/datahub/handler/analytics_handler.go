package handler

import (
	"errors"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves per-dataset statistics (admin).
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// GetAnalytics
// GET /api/v1/datahub/datasets/:datasetId/analytics
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), c.Param("datasetId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "dataset not found")
			return
		}
		InternalError(c, "failed to compute analytics: "+err.Error())
		return
	}
	Success(c, report)
}
