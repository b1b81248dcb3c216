package service

import (
	"context"
	"errors"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoSourceForm means the dataset has no linked form to sync from.
var ErrNoSourceForm = errors.New("dataset has no source form configured")

// SyncService backfills raw form submissions into dataset records. Synced
// rows skip schema validation: they were accepted by the form at submission
// time and the sync is a data move, not a re-review.
type SyncService struct {
	recordRepo     *repository.RecordRepository
	datasetRepo    *repository.DatasetRepository
	submissionRepo *repository.FormSubmissionRepository
	audit          *AuditService
}

func NewSyncService(recordRepo *repository.RecordRepository, datasetRepo *repository.DatasetRepository, submissionRepo *repository.FormSubmissionRepository, audit *AuditService) *SyncService {
	return &SyncService{
		recordRepo:     recordRepo,
		datasetRepo:    datasetRepo,
		submissionRepo: submissionRepo,
		audit:          audit,
	}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	DatasetID string `json:"datasetId"`
	Total     int    `json:"total"`
	Synced    int    `json:"synced"`
	Skipped   int    `json:"skipped"`
}

// SyncDataset pulls every submission of the dataset's source form and
// ingests the ones not seen before. Dedup matches first on the submission
// ID, then on a content hash for rows that predate ID tracking.
func (s *SyncService) SyncDataset(ctx context.Context, userID, datasetID string) (*SyncResult, error) {
	dataset, err := s.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.Integration.SourceFormID == "" {
		return nil, ErrNoSourceForm
	}

	submissions, err := s.submissionRepo.FindByFormID(ctx, dataset.Integration.SourceFormID)
	if err != nil {
		return nil, err
	}

	seenIDs, err := s.recordRepo.ExistingSubmissionIDs(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	seenHashes, err := s.recordRepo.ExistingDataHashes(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{DatasetID: datasetID, Total: len(submissions)}
	var records []entity.DatasetRecord
	var latest time.Time

	for _, sub := range submissions {
		hash := HashData(sub.Data)
		if seenIDs[sub.ID] || (hash != "" && seenHashes[hash]) {
			result.Skipped++
			continue
		}
		seenHashes[hash] = true

		record := entity.DatasetRecord{
			ID:        uuid.New().String()[:32],
			DatasetID: datasetID,
			Data:      sub.Data,
			DataHash:  hash,
			Metadata: entity.RecordMetadata{
				SubmittedAt:            sub.SubmittedAt,
				SourceFormSubmissionID: sub.ID,
				SourceApplication:      "LeadershipConnections",
			},
			Status:  entity.RecordStatusActive,
			Version: 1,
		}
		if tracking, ok := sub.Tracking["deviceType"].(string); ok {
			record.Metadata.DeviceType = tracking
		}
		if sub.SubmittedAt.After(latest) {
			latest = sub.SubmittedAt
		}
		records = append(records, record)
	}

	if err := s.recordRepo.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	result.Synced = len(records)

	if result.Synced > 0 {
		if latest.IsZero() {
			latest = time.Now()
		}
		if err := s.datasetRepo.AddToRecordCount(ctx, datasetID, result.Synced, latest); err != nil {
			return nil, err
		}
		s.audit.Log(ctx, datasetID, "", entity.AuditActionImport, userID, entity.JSONB{
			"recordsAffected": result.Synced,
			"skipped":         result.Skipped,
		})
	}

	zap.L().Info("dataset sync complete",
		zap.String("dataset_id", datasetID),
		zap.Int("synced", result.Synced),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// SyncAll runs SyncDataset for every given dataset with a bounded number of
// concurrent workers. An empty list means every dataset with a linked form.
// Datasets without a source form are skipped, any other failure aborts the
// run.
func (s *SyncService) SyncAll(ctx context.Context, userID string, datasetIDs []string) ([]SyncResult, error) {
	if len(datasetIDs) == 0 {
		var err error
		datasetIDs, err = s.datasetRepo.FindIDsWithSourceForm(ctx)
		if err != nil {
			return nil, err
		}
	}

	results := make([]SyncResult, len(datasetIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range datasetIDs {
		i, id := i, id
		g.Go(func() error {
			res, err := s.SyncDataset(ctx, userID, id)
			if err != nil {
				if errors.Is(err, ErrNoSourceForm) {
					results[i] = SyncResult{DatasetID: id}
					return nil
				}
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
