package repository

import (
	"context"
	"errors"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"gorm.io/gorm"
)

// RecordListOptions narrows and orders a record listing.
type RecordListOptions struct {
	Status    string // default "active"
	Search    string // substring match across all data values
	SortBy    string // wire name, e.g. "metadata.submittedAt"
	SortOrder string // "asc" or "desc"
}

// sortColumns whitelists the wire-level sort keys against real columns.
var sortColumns = map[string]string{
	"metadata.submittedAt": "submitted_at",
	"submittedAt":          "submitted_at",
	"status":               "status",
	"version":              "version",
	"id":                   "id",
}

// RecordRepository persists dataset records.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, record *entity.DatasetRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateBatch inserts synced records in one statement.
func (r *RecordRepository) CreateBatch(ctx context.Context, records []entity.DatasetRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, 200).Error
}

func (r *RecordRepository) FindByID(ctx context.Context, datasetID, id string) (*entity.DatasetRecord, error) {
	var record entity.DatasetRecord
	err := r.db.WithContext(ctx).
		Where("dataset_id = ? AND id = ?", datasetID, id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAll pages through a dataset's records. Search walks every value of the
// data document server side instead of loading rows into memory.
func (r *RecordRepository) FindAll(ctx context.Context, datasetID string, page, pageSize int, opts RecordListOptions) ([]entity.DatasetRecord, int64, error) {
	var items []entity.DatasetRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ?", datasetID)

	status := opts.Status
	if status == "" {
		status = entity.RecordStatusActive
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	if opts.Search != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM jsonb_each_text(data) kv WHERE kv.value ILIKE ?)",
			"%"+escapeLike(opts.Search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "submitted_at"
	}
	direction := "DESC"
	if opts.SortOrder == "asc" {
		direction = "ASC"
	}

	offset := (page - 1) * pageSize
	err := query.
		Order(column + " " + direction).
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindAllForExport loads every matching record ordered by submission time.
func (r *RecordRepository) FindAllForExport(ctx context.Context, datasetID, status string) ([]entity.DatasetRecord, error) {
	var items []entity.DatasetRecord
	query := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("submitted_at ASC").Find(&items).Error
	return items, err
}

// UpdateStatus flips a record between active, archived and deleted.
func (r *RecordRepository) UpdateStatus(ctx context.Context, datasetID, id, status string) error {
	result := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ? AND id = ?", datasetID, id).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateData replaces a record's payload and bumps its version.
func (r *RecordRepository) UpdateData(ctx context.Context, datasetID, id string, data entity.JSONB) error {
	result := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ? AND id = ?", datasetID, id).
		Updates(map[string]interface{}{
			"data":    data,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistingSubmissionIDs returns the form-submission IDs already ingested
// into a dataset, used to dedupe sync runs.
func (r *RecordRepository) ExistingSubmissionIDs(ctx context.Context, datasetID string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ? AND source_form_submission_id <> ''", datasetID).
		Pluck("source_form_submission_id", &ids).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}

// ExistingDataHashes returns the content hashes present in a dataset, the
// second line of sync dedup for submissions without a stable ID.
func (r *RecordRepository) ExistingDataHashes(ctx context.Context, datasetID string) (map[string]bool, error) {
	var hashes []string
	err := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ? AND data_hash <> ''", datasetID).
		Pluck("data_hash", &hashes).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		seen[h] = true
	}
	return seen, nil
}

// CountSince counts active records submitted at or after a point in time.
func (r *RecordRepository) CountSince(ctx context.Context, datasetID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DatasetRecord{}).
		Where("dataset_id = ? AND status = ? AND submitted_at >= ?",
			datasetID, entity.RecordStatusActive, since).
		Count(&count).Error
	return count, err
}
