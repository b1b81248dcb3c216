package repository

import (
	"context"
	"errors"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"gorm.io/gorm"
)

// APIKeyRepository persists per-dataset API keys.
type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) FindAll(ctx context.Context, datasetID string) ([]entity.DatasetAPIKey, error) {
	var items []entity.DatasetAPIKey
	err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindByKey resolves a raw key string to its row regardless of dataset; the
// service layer checks the dataset binding and active flag.
func (r *APIKeyRepository) FindByKey(ctx context.Context, key string) (*entity.DatasetAPIKey, error) {
	var apiKey entity.DatasetAPIKey
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &apiKey, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *entity.DatasetAPIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// TouchLastUsed records key usage. Fire and forget from the caller's view;
// a failed touch never blocks the request.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.DatasetAPIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

// Revoke deactivates a key without deleting its history.
func (r *APIKeyRepository) Revoke(ctx context.Context, datasetID, id string) error {
	result := r.db.WithContext(ctx).Model(&entity.DatasetAPIKey{}).
		Where("dataset_id = ? AND id = ?", datasetID, id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
