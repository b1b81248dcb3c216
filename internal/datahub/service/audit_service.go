package service

import (
	"context"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditService writes the per-dataset audit trail. Failures are logged and
// swallowed so an audit hiccup never rolls back the operation it describes.
type AuditService struct {
	repo *repository.AuditRepository
}

func NewAuditService(repo *repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(ctx context.Context, datasetID, recordID, action, performedBy string, details entity.JSONB) {
	entry := &entity.DatasetAuditLog{
		ID:          uuid.New().String()[:32],
		DatasetID:   datasetID,
		RecordID:    recordID,
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: time.Now(),
		Details:     details,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		zap.L().Warn("failed to write audit log",
			zap.String("dataset_id", datasetID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// List pages through a dataset's audit entries.
func (s *AuditService) List(ctx context.Context, datasetID string, page, pageSize int, filters map[string]string) ([]entity.DatasetAuditLog, int64, error) {
	return s.repo.FindAll(ctx, datasetID, page, pageSize, filters)
}
