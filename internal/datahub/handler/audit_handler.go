package handler

import (
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the dataset audit trail (admin).
type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// ListAuditLogs
// GET /api/v1/datahub/datasets/:datasetId/audit-logs?action=&performedBy=&page=&pageSize=
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"action":      c.Query("action"),
		"performedBy": c.Query("performedBy"),
	}

	items, total, err := h.svc.List(c.Request.Context(), c.Param("datasetId"), page, pageSize, filters)
	if err != nil {
		InternalError(c, "failed to list audit logs: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items:      items,
		Pagination: NewPagination(page, pageSize, total),
	})
}
