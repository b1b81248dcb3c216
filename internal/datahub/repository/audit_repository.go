package repository

import (
	"context"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"gorm.io/gorm"
)

// AuditRepository persists the per-dataset audit trail.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, log *entity.DatasetAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindAll lists audit entries newest first. Filters: action, performedBy.
func (r *AuditRepository) FindAll(ctx context.Context, datasetID string, page, pageSize int, filters map[string]string) ([]entity.DatasetAuditLog, int64, error) {
	var items []entity.DatasetAuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DatasetAuditLog{}).
		Where("dataset_id = ?", datasetID)

	if action := filters["action"]; action != "" {
		query = query.Where("action = ?", action)
	}
	if performedBy := filters["performedBy"]; performedBy != "" {
		query = query.Where("performed_by = ?", performedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("performed_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
