package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatJSON = "json"
)

// ExportService renders a dataset's records as a downloadable file and
// archives a copy to object storage when configured.
type ExportService struct {
	recordRepo  *repository.RecordRepository
	datasetRepo *repository.DatasetRepository
	audit       *AuditService
	minioClient *minio.Client
	bucket      string
}

func NewExportService(recordRepo *repository.RecordRepository, datasetRepo *repository.DatasetRepository, audit *AuditService, minioClient *minio.Client, bucket string) *ExportService {
	return &ExportService{
		recordRepo:  recordRepo,
		datasetRepo: datasetRepo,
		audit:       audit,
		minioClient: minioClient,
		bucket:      bucket,
	}
}

// ExportOptions controls format and scope.
type ExportOptions struct {
	Format          string
	Status          string
	IncludeMetadata bool
}

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	RecordCount int
}

// Export renders all matching records in schema field order. Unknown data
// keys are not exported; the schema defines the columns.
func (s *ExportService) Export(ctx context.Context, userID, datasetID string, opts ExportOptions) (*ExportFile, error) {
	dataset, err := s.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.FindAllForExport(ctx, datasetID, opts.Status)
	if err != nil {
		return nil, err
	}

	var file *ExportFile
	switch opts.Format {
	case ExportFormatCSV:
		file, err = renderCSV(dataset, records, opts.IncludeMetadata)
	case ExportFormatXLSX:
		file, err = renderXLSX(dataset, records, opts.IncludeMetadata)
	case ExportFormatJSON:
		file, err = renderJSON(dataset, records)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
	if err != nil {
		return nil, err
	}
	file.RecordCount = len(records)

	s.archive(ctx, datasetID, file)
	s.audit.Log(ctx, datasetID, "", entity.AuditActionExport, userID, entity.JSONB{
		"exportFormat":    opts.Format,
		"recordsAffected": len(records),
	})
	return file, nil
}

// archive uploads the export to MinIO when a client is configured.
func (s *ExportService) archive(ctx context.Context, datasetID string, file *ExportFile) {
	if s.minioClient == nil || s.bucket == "" {
		return
	}
	objectName := fmt.Sprintf("exports/%s/%s", datasetID, file.Filename)
	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(file.Content), int64(len(file.Content)),
		minio.PutObjectOptions{ContentType: file.ContentType})
	if err != nil {
		zap.L().Warn("failed to archive export",
			zap.String("dataset_id", datasetID),
			zap.String("object", objectName),
			zap.Error(err))
	}
}

func exportColumns(dataset *entity.Dataset, includeMetadata bool) ([]string, []string) {
	headers := make([]string, 0, len(dataset.Schema.Fields)+3)
	names := make([]string, 0, len(dataset.Schema.Fields))
	for _, field := range dataset.Schema.Fields {
		headers = append(headers, field.Label)
		names = append(names, field.Name)
	}
	if includeMetadata {
		headers = append(headers, "Submitted At", "Submitted By", "Source")
	}
	return headers, names
}

func exportRow(record *entity.DatasetRecord, names []string, includeMetadata bool) []string {
	row := make([]string, 0, len(names)+3)
	for _, name := range names {
		row = append(row, cellString(record.Data[name]))
	}
	if includeMetadata {
		row = append(row,
			record.Metadata.SubmittedAt.Format(time.RFC3339),
			record.Metadata.SubmittedBy,
			record.Metadata.SourceApplication)
	}
	return row
}

func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func exportFilename(dataset *entity.Dataset, ext string) string {
	return fmt.Sprintf("%s-%s.%s", dataset.ID, time.Now().Format("20060102-150405"), ext)
}

func renderCSV(dataset *entity.Dataset, records []entity.DatasetRecord, includeMetadata bool) (*ExportFile, error) {
	headers, names := exportColumns(dataset, includeMetadata)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for i := range records {
		if err := w.Write(exportRow(&records[i], names, includeMetadata)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &ExportFile{
		Filename:    exportFilename(dataset, "csv"),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

func renderXLSX(dataset *entity.Dataset, records []entity.DatasetRecord, includeMetadata bool) (*ExportFile, error) {
	headers, names := exportColumns(dataset, includeMetadata)

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Records"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i := range records {
		row := exportRow(&records[i], names, includeMetadata)
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    exportFilename(dataset, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func renderJSON(dataset *entity.Dataset, records []entity.DatasetRecord) (*ExportFile, error) {
	payload := map[string]interface{}{
		"dataset": map[string]interface{}{
			"id":     dataset.ID,
			"name":   dataset.Name,
			"schema": dataset.Schema,
		},
		"records":    records,
		"exportedAt": time.Now().Format(time.RFC3339),
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    exportFilename(dataset, "json"),
		ContentType: "application/json",
		Content:     raw,
	}, nil
}
