package repository

import (
	"context"
	"errors"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"gorm.io/gorm"
)

// DatasetRepository persists datasets and owns the record counters.
type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// FindAll lists datasets with pagination. Supported filters: search (name or
// description), organizationId, sourceApplication, category.
func (r *DatasetRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Dataset, int64, error) {
	var items []entity.Dataset
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Dataset{})

	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?",
			"%"+escapeLike(search)+"%", "%"+escapeLike(search)+"%")
	}
	if org := filters["organizationId"]; org != "" {
		query = query.Where("organization_id = ?", org)
	}
	if app := filters["sourceApplication"]; app != "" {
		query = query.Where("source_application = ?", app)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *DatasetRepository) FindByID(ctx context.Context, id string) (*entity.Dataset, error) {
	var dataset entity.Dataset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dataset, nil
}

// FindBySourceFormID looks up the dataset wired to a given public form.
func (r *DatasetRepository) FindBySourceFormID(ctx context.Context, formID string) (*entity.Dataset, error) {
	var dataset entity.Dataset
	err := r.db.WithContext(ctx).
		Where("integration ->> 'sourceFormId' = ?", formID).
		First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dataset, nil
}

// FindIDsWithSourceForm returns the IDs of every dataset linked to a form.
func (r *DatasetRepository) FindIDsWithSourceForm(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Dataset{}).
		Where("COALESCE(integration ->> 'sourceFormId', '') <> ''").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *DatasetRepository) Create(ctx context.Context, dataset *entity.Dataset) error {
	return r.db.WithContext(ctx).Create(dataset).Error
}

func (r *DatasetRepository) Update(ctx context.Context, dataset *entity.Dataset) error {
	return r.db.WithContext(ctx).Save(dataset).Error
}

// Delete removes a dataset along with its records, API keys and audit trail
// in one transaction.
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset_id = ?", id).Delete(&entity.DatasetRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&entity.DatasetAPIKey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&entity.DatasetAuditLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Dataset{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IncrementRecordCount bumps the counter and last-record timestamp in a
// single UPDATE. Concurrent ingestions each land their own increment; two
// writers against a count of 5 leave 7, never 6.
func (r *DatasetRepository) IncrementRecordCount(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Dataset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"record_count":   gorm.Expr("record_count + ?", 1),
			"last_record_at": at,
		}).Error
}

// AddToRecordCount applies a batch delta after a sync run.
func (r *DatasetRepository) AddToRecordCount(ctx context.Context, id string, delta int, at time.Time) error {
	if delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Dataset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"record_count":   gorm.Expr("record_count + ?", delta),
			"last_record_at": at,
		}).Error
}
