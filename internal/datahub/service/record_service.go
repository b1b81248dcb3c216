package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/schema"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/tracking"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// RecordService runs the ingestion pipeline: load schema, validate, persist,
// bump the dataset counter.
type RecordService struct {
	repo        *repository.RecordRepository
	datasetRepo *repository.DatasetRepository
	audit       *AuditService
}

func NewRecordService(repo *repository.RecordRepository, datasetRepo *repository.DatasetRepository, audit *AuditService) *RecordService {
	return &RecordService{repo: repo, datasetRepo: datasetRepo, audit: audit}
}

// IngestMetadata is the caller-supplied part of a record's metadata. IP and
// user agent are always taken from the transport, never from the body.
type IngestMetadata struct {
	SubmittedAt            *time.Time             `json:"submittedAt"`
	SubmittedBy            string                 `json:"submittedBy"`
	SourceApplication      string                 `json:"sourceApplication"`
	SourceFormSubmissionID string                 `json:"sourceFormSubmissionId"`
	DeviceType             string                 `json:"deviceType"`
	Location               *entity.RecordLocation `json:"location"`
}

// IngestRequest is one submission plus its transport envelope.
type IngestRequest struct {
	Data      map[string]interface{} `json:"data" binding:"required"`
	Metadata  *IngestMetadata        `json:"metadata"`
	IPAddress string                 `json:"-"`
	UserAgent string                 `json:"-"`
}

// Ingest validates a payload against the dataset's current schema and, when
// it passes, stores the record and increments the dataset counter. On
// validation failure nothing is written.
func (s *RecordService) Ingest(ctx context.Context, datasetID string, req *IngestRequest) (*entity.DatasetRecord, error) {
	dataset, err := s.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	result := schema.Validate(req.Data, &dataset.Schema)
	if !result.Valid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	meta := req.Metadata
	if meta == nil {
		meta = &IngestMetadata{}
	}

	source := meta.SourceApplication
	if source == "" {
		source = dataset.SourceApplication
	}
	submittedAt := time.Now()
	if meta.SubmittedAt != nil {
		submittedAt = *meta.SubmittedAt
	}
	deviceType := meta.DeviceType
	if deviceType == "" {
		deviceType = tracking.DeviceType(req.UserAgent)
	}

	record := &entity.DatasetRecord{
		ID:        uuid.New().String()[:32],
		DatasetID: dataset.ID,
		Data:      entity.JSONB(req.Data),
		DataHash:  HashData(req.Data),
		Metadata: entity.RecordMetadata{
			SubmittedAt:            submittedAt,
			SubmittedBy:            meta.SubmittedBy,
			SourceFormSubmissionID: meta.SourceFormSubmissionID,
			SourceApplication:      source,
			IPAddress:              req.IPAddress,
			UserAgent:              req.UserAgent,
			DeviceType:             deviceType,
			Location:               meta.Location,
		},
		Status:  entity.RecordStatusActive,
		Version: 1,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.datasetRepo.IncrementRecordCount(ctx, dataset.ID, submittedAt); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *RecordService) Get(ctx context.Context, datasetID, id string) (*entity.DatasetRecord, error) {
	return s.repo.FindByID(ctx, datasetID, id)
}

func (s *RecordService) List(ctx context.Context, datasetID string, page, pageSize int, opts repository.RecordListOptions) ([]entity.DatasetRecord, int64, error) {
	if _, err := s.datasetRepo.FindByID(ctx, datasetID); err != nil {
		return nil, 0, err
	}
	return s.repo.FindAll(ctx, datasetID, page, pageSize, opts)
}

// UpdateStatus moves a record between active, archived and deleted.
func (s *RecordService) UpdateStatus(ctx context.Context, userID, datasetID, id, status string) error {
	switch status {
	case entity.RecordStatusActive, entity.RecordStatusArchived, entity.RecordStatusDeleted:
	default:
		return fmt.Errorf("invalid record status: %s", status)
	}
	if err := s.repo.UpdateStatus(ctx, datasetID, id, status); err != nil {
		return err
	}
	s.audit.Log(ctx, datasetID, id, entity.AuditActionUpdate, userID, entity.JSONB{
		"status": status,
	})
	return nil
}

// UpdateData replaces a record's payload after re-validating it against the
// dataset's current schema.
func (s *RecordService) UpdateData(ctx context.Context, userID, datasetID, id string, data map[string]interface{}) (*entity.DatasetRecord, error) {
	dataset, err := s.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	result := schema.Validate(data, &dataset.Schema)
	if !result.Valid {
		return nil, &ValidationError{Errors: result.Errors}
	}
	if err := s.repo.UpdateData(ctx, datasetID, id, entity.JSONB(data)); err != nil {
		return nil, err
	}
	s.audit.Log(ctx, datasetID, id, entity.AuditActionUpdate, userID, nil)
	return s.repo.FindByID(ctx, datasetID, id)
}

// HashData fingerprints a payload for sync dedup. Marshal order is
// deterministic for map keys, so equal payloads hash equal.
func HashData(data map[string]interface{}) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(raw))
}
