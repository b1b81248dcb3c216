package service

import (
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/config"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Services bundles every DataHub service.
type Services struct {
	Dataset   *DatasetService
	Record    *RecordService
	APIKey    *APIKeyService
	Sync      *SyncService
	Export    *ExportService
	Analytics *AnalyticsService
	Audit     *AuditService
}

// NewServices wires the service layer. MinIO is optional; without it exports
// are returned inline only.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// continue without export archiving
			minioClient = nil
		}
	}

	auditSvc := NewAuditService(repos.Audit)

	return &Services{
		Dataset:   NewDatasetService(repos.Dataset, auditSvc),
		Record:    NewRecordService(repos.Record, repos.Dataset, auditSvc),
		APIKey:    NewAPIKeyService(repos.APIKey, repos.Dataset, rdb),
		Sync:      NewSyncService(repos.Record, repos.Dataset, repos.FormSubmission, auditSvc),
		Export:    NewExportService(repos.Record, repos.Dataset, auditSvc, minioClient, cfg.MinIO.Bucket),
		Analytics: NewAnalyticsService(repos.Record, repos.Dataset, rdb),
		Audit:     auditSvc,
	}
}
