package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler streams dataset exports (admin).
type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportDataset
// GET /api/v1/datahub/datasets/:datasetId/export?format=csv|xlsx|json&status=&includeMetadata=
func (h *ExportHandler) ExportDataset(c *gin.Context) {
	opts := service.ExportOptions{
		Format:          c.DefaultQuery("format", service.ExportFormatCSV),
		Status:          c.DefaultQuery("status", "active"),
		IncludeMetadata: c.Query("includeMetadata") == "true",
	}

	file, err := h.svc.Export(c.Request.Context(), GetUserID(c), c.Param("datasetId"), opts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "dataset not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
