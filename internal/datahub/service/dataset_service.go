package service

import (
	"context"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/schema"
	"github.com/google/uuid"
)

// DatasetService manages dataset definitions and their schemas.
type DatasetService struct {
	repo  *repository.DatasetRepository
	audit *AuditService
}

func NewDatasetService(repo *repository.DatasetRepository, audit *AuditService) *DatasetService {
	return &DatasetService{repo: repo, audit: audit}
}

// CreateDatasetRequest mirrors the admin UI's create payload.
type CreateDatasetRequest struct {
	Name              string                     `json:"name" binding:"required"`
	Description       string                     `json:"description"`
	SourceApplication string                     `json:"sourceApplication"`
	OrganizationID    string                     `json:"organizationId" binding:"required"`
	Schema            entity.DatasetSchema       `json:"schema" binding:"required"`
	Category          string                     `json:"category"`
	Tags              []interface{}              `json:"tags"`
	IsPublic          bool                       `json:"isPublic"`
	Integration       *entity.DatasetIntegration `json:"integration"`
}

// UpdateDatasetRequest carries partial updates; nil fields are untouched.
type UpdateDatasetRequest struct {
	Name        *string                    `json:"name"`
	Description *string                    `json:"description"`
	Schema      *entity.DatasetSchema      `json:"schema"`
	Category    *string                    `json:"category"`
	Tags        *[]interface{}             `json:"tags"`
	IsPublic    *bool                      `json:"isPublic"`
	Permissions *entity.DatasetPermissions `json:"permissions"`
	Integration *entity.DatasetIntegration `json:"integration"`
}

func (s *DatasetService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Dataset, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *DatasetService) Get(ctx context.Context, id string) (*entity.Dataset, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the schema definition and persists a dataset with the
// standard defaults: version 1.0.0, empty counters, creator as sole owner.
func (s *DatasetService) Create(ctx context.Context, userID string, req *CreateDatasetRequest) (*entity.Dataset, error) {
	if errs := schema.CheckSchema(&req.Schema); len(errs) > 0 {
		return nil, &SchemaError{Errors: errs}
	}

	if req.Schema.Version == "" {
		req.Schema.Version = "1.0.0"
	}
	category := req.Category
	if category == "" {
		category = "general"
	}
	sourceApp := req.SourceApplication
	if sourceApp == "" {
		sourceApp = "LeadershipConnections"
	}
	tags := entity.JSONBArray(req.Tags)
	if tags == nil {
		tags = entity.JSONBArray{}
	}

	dataset := &entity.Dataset{
		ID:                uuid.New().String()[:32],
		Name:              req.Name,
		Description:       req.Description,
		SourceApplication: sourceApp,
		OrganizationID:    req.OrganizationID,
		CreatedBy:         userID,
		Schema:            req.Schema,
		Metadata: entity.DatasetMetadata{
			RecordCount: 0,
			Tags:        tags,
			Category:    category,
			IsPublic:    req.IsPublic,
		},
		Permissions: entity.DatasetPermissions{
			Owners:  []string{userID},
			Editors: []string{},
			Viewers: []string{},
		},
	}
	if req.Integration != nil {
		dataset.Integration = *req.Integration
	}

	if err := s.repo.Create(ctx, dataset); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, dataset.ID, "", entity.AuditActionCreate, userID, entity.JSONB{
		"name":   dataset.Name,
		"fields": len(dataset.Schema.Fields),
	})
	return dataset, nil
}

// Update applies a partial update. Schema replacements are structurally
// validated but existing records are never re-validated against them.
func (s *DatasetService) Update(ctx context.Context, userID, id string, req *UpdateDatasetRequest) (*entity.Dataset, error) {
	dataset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schemaChanged := false
	if req.Schema != nil {
		if errs := schema.CheckSchema(req.Schema); len(errs) > 0 {
			return nil, &SchemaError{Errors: errs}
		}
		dataset.Schema = *req.Schema
		schemaChanged = true
	}
	if req.Name != nil {
		dataset.Name = *req.Name
	}
	if req.Description != nil {
		dataset.Description = *req.Description
	}
	if req.Category != nil {
		dataset.Metadata.Category = *req.Category
	}
	if req.Tags != nil {
		dataset.Metadata.Tags = entity.JSONBArray(*req.Tags)
	}
	if req.IsPublic != nil {
		dataset.Metadata.IsPublic = *req.IsPublic
	}
	if req.Permissions != nil {
		dataset.Permissions = *req.Permissions
	}
	if req.Integration != nil {
		dataset.Integration = *req.Integration
	}
	dataset.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, dataset); err != nil {
		return nil, err
	}

	action := entity.AuditActionUpdate
	if schemaChanged {
		action = entity.AuditActionSchemaChange
	}
	s.audit.Log(ctx, dataset.ID, "", action, userID, nil)
	return dataset, nil
}

// Delete removes the dataset and everything under it.
func (s *DatasetService) Delete(ctx context.Context, userID, id string) error {
	dataset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, id, "", entity.AuditActionDelete, userID, entity.JSONB{
		"name":            dataset.Name,
		"recordsAffected": dataset.Metadata.RecordCount,
	})
	return nil
}
