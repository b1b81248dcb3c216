package handler

import (
	"errors"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/gin-gonic/gin"
)

// APIKeyHandler serves API key management (admin).
type APIKeyHandler struct {
	svc *service.APIKeyService
}

func NewAPIKeyHandler(svc *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

// ListAPIKeys
// GET /api/v1/datahub/datasets/:datasetId/keys
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.svc.List(c.Request.Context(), c.Param("datasetId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "dataset not found")
			return
		}
		InternalError(c, "failed to list api keys: "+err.Error())
		return
	}
	Success(c, keys)
}

// CreateAPIKey
// POST /api/v1/datahub/datasets/:datasetId/keys
func (h *APIKeyHandler) CreateAPIKey(c *gin.Context) {
	var req service.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	key, err := h.svc.Create(c.Request.Context(), GetUserID(c), c.Param("datasetId"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "dataset not found")
			return
		}
		InternalError(c, "failed to create api key: "+err.Error())
		return
	}
	Created(c, key)
}

// RevokeAPIKey
// DELETE /api/v1/datahub/datasets/:datasetId/keys/:keyId
func (h *APIKeyHandler) RevokeAPIKey(c *gin.Context) {
	err := h.svc.Revoke(c.Request.Context(), c.Param("datasetId"), c.Param("keyId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "api key not found")
			return
		}
		InternalError(c, "failed to revoke api key: "+err.Error())
		return
	}
	Success(c, nil)
}
