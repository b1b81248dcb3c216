package handler

import (
	"errors"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// DatasetHandler serves the admin dataset CRUD.
type DatasetHandler struct {
	svc *service.DatasetService
}

func NewDatasetHandler(svc *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

// ListDatasets
// GET /api/v1/datahub/datasets?search=&organizationId=&sourceApplication=&category=&page=&pageSize=
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":            c.Query("search"),
		"organizationId":    c.Query("organizationId"),
		"sourceApplication": c.Query("sourceApplication"),
		"category":          c.Query("category"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "failed to list datasets: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items:      items,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetDataset
// GET /api/v1/datahub/datasets/:datasetId
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	dataset, err := h.svc.Get(c.Request.Context(), c.Param("datasetId"))
	if err != nil {
		NotFound(c, "dataset not found")
		return
	}
	Success(c, dataset)
}

// CreateDataset
// POST /api/v1/datahub/datasets
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req service.CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	dataset, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		var schemaErr *service.SchemaError
		if errors.As(err, &schemaErr) {
			BadRequest(c, schemaErr.Error())
			return
		}
		InternalError(c, "failed to create dataset: "+err.Error())
		return
	}
	Created(c, dataset)
}

// UpdateDataset
// PUT /api/v1/datahub/datasets/:datasetId
func (h *DatasetHandler) UpdateDataset(c *gin.Context) {
	var req service.UpdateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	dataset, err := h.svc.Update(c.Request.Context(), GetUserID(c), c.Param("datasetId"), &req)
	if err != nil {
		var schemaErr *service.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			BadRequest(c, schemaErr.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "dataset not found")
		default:
			InternalError(c, "failed to update dataset: "+err.Error())
		}
		return
	}
	Success(c, dataset)
}

// DeleteDataset
// DELETE /api/v1/datahub/datasets/:datasetId
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("datasetId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "dataset not found")
			return
		}
		InternalError(c, "failed to delete dataset: "+err.Error())
		return
	}
	Success(c, nil)
}
