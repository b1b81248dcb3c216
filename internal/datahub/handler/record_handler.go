package handler

import (
	"errors"
	"net/http"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// RecordHandler serves record ingestion and listing. The public endpoints
// keep the external DataHub wire contract ({record, message}, {error,
// errors}) that integrating applications already parse, instead of the
// admin envelope.
type RecordHandler struct {
	svc *service.RecordService
}

func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// CreateRecord ingests one submission.
// POST /api/datasets/:datasetId/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req service.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	record, err := h.svc.Ingest(c.Request.Context(), c.Param("datasetId"), &req)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": validationErr.Errors})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create record: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record, "message": "Record created successfully"})
}

// ListRecords pages through a dataset's records.
// GET /api/datasets/:datasetId/records?page=&pageSize=&sortBy=&sortOrder=&search=&status=
func (h *RecordHandler) ListRecords(c *gin.Context) {
	page, pageSize := GetRecordPagination(c)
	opts := repository.RecordListOptions{
		Status:    c.DefaultQuery("status", "active"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "metadata.submittedAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	records, total, err := h.svc.List(c.Request.Context(), c.Param("datasetId"), page, pageSize, opts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch records: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":    records,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetRecord fetches one record by ID (admin).
// GET /api/v1/datahub/datasets/:datasetId/records/:recordId
func (h *RecordHandler) GetRecord(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), c.Param("datasetId"), c.Param("recordId"))
	if err != nil {
		NotFound(c, "record not found")
		return
	}
	Success(c, record)
}

// UpdateRecordStatus archives, restores or soft-deletes a record (admin).
// PATCH /api/v1/datahub/datasets/:datasetId/records/:recordId/status
func (h *RecordHandler) UpdateRecordStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.svc.UpdateStatus(c.Request.Context(), GetUserID(c), c.Param("datasetId"), c.Param("recordId"), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "record not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}

// UpdateRecordData replaces a record's payload after re-validation (admin).
// PUT /api/v1/datahub/datasets/:datasetId/records/:recordId
func (h *RecordHandler) UpdateRecordData(c *gin.Context) {
	var req struct {
		Data map[string]interface{} `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.svc.UpdateData(c.Request.Context(), GetUserID(c), c.Param("datasetId"), c.Param("recordId"), req.Data)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": validationErr.Errors})
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "record not found")
		default:
			InternalError(c, "failed to update record: "+err.Error())
		}
		return
	}
	Success(c, record)
}
