package repository

import (
	"context"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"gorm.io/gorm"
)

// FormSubmissionRepository reads the raw submissions that public forms wrote
// before datasets existed. Sync backfills them into dataset records.
type FormSubmissionRepository struct {
	db *gorm.DB
}

func NewFormSubmissionRepository(db *gorm.DB) *FormSubmissionRepository {
	return &FormSubmissionRepository{db: db}
}

func (r *FormSubmissionRepository) FindByFormID(ctx context.Context, formID string) ([]entity.FormSubmission, error) {
	var items []entity.FormSubmission
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("submitted_at ASC").
		Find(&items).Error
	return items, err
}

func (r *FormSubmissionRepository) Create(ctx context.Context, submission *entity.FormSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
