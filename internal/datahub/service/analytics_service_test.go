package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupAnalyticsTest(t *testing.T) (*gorm.DB, *AnalyticsService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAnalyticsService(repos.Record, repos.Dataset, nil)
	return db, svc
}

func seedRecordAt(t *testing.T, db *gorm.DB, datasetID string, data entity.JSONB, at time.Time) {
	t.Helper()
	record := &entity.DatasetRecord{
		ID:        uuid.New().String()[:32],
		DatasetID: datasetID,
		Data:      data,
		Metadata:  entity.RecordMetadata{SubmittedAt: at},
		Status:    entity.RecordStatusActive,
		Version:   1,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
}

func TestAnalyticsCounts(t *testing.T) {
	db, svc := setupAnalyticsTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())

	now := time.Now()
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org", "age": 30}, now)
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Grace", "email": "grace@example.org", "age": 40}, now.AddDate(0, 0, -3))
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Edsger", "email": "edsger@example.org"}, now.AddDate(0, 0, -20))

	report, err := svc.Get(context.Background(), dataset.ID)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if report.TotalRecords != 3 {
		t.Fatalf("expected 3 total records, got %d", report.TotalRecords)
	}
	if report.RecordsToday != 1 {
		t.Fatalf("expected 1 record today, got %d", report.RecordsToday)
	}
	if report.RecordsThisWeek != 2 {
		t.Fatalf("expected 2 records this week, got %d", report.RecordsThisWeek)
	}
	if report.RecordsThisMonth != 3 {
		t.Fatalf("expected 3 records this month, got %d", report.RecordsThisMonth)
	}
	if report.AverageRecordsPerDay <= 0 {
		t.Fatalf("expected positive average, got %f", report.AverageRecordsPerDay)
	}

	if len(report.TimeSeries) != 30 {
		t.Fatalf("expected 30-day series, got %d", len(report.TimeSeries))
	}
	last := report.TimeSeries[len(report.TimeSeries)-1]
	if last.Date != now.Format("2006-01-02") || last.Count != 1 {
		t.Fatalf("unexpected last bucket: %+v", last)
	}
}

func TestAnalyticsFieldStats(t *testing.T) {
	db, svc := setupAnalyticsTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())

	now := time.Now()
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org", "age": 30}, now)
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada2@example.org", "age": 50}, now)
	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Grace", "email": "grace@example.org"}, now)

	report, err := svc.Get(context.Background(), dataset.ID)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}

	age := report.FieldStatistics["age"]
	if age.TotalValues != 2 || age.NullValues != 1 {
		t.Fatalf("unexpected age counts: %+v", age)
	}
	if age.Min == nil || *age.Min != 30 {
		t.Fatalf("unexpected min: %v", age.Min)
	}
	if age.Max == nil || *age.Max != 50 {
		t.Fatalf("unexpected max: %v", age.Max)
	}
	if age.Average == nil || *age.Average != 40 {
		t.Fatalf("unexpected average: %v", age.Average)
	}
	if age.Sum == nil || *age.Sum != 80 {
		t.Fatalf("unexpected sum: %v", age.Sum)
	}

	name := report.FieldStatistics["name"]
	if name.UniqueValues != 2 {
		t.Fatalf("expected 2 unique names, got %d", name.UniqueValues)
	}
	if len(name.TopValues) == 0 || name.TopValues[0].Value != "Ada" || name.TopValues[0].Count != 2 {
		t.Fatalf("unexpected top values: %+v", name.TopValues)
	}
	if name.AverageLength == nil {
		t.Fatalf("expected average length for text field")
	}
}

func TestAnalyticsIgnoresArchivedRecords(t *testing.T) {
	db, svc := setupAnalyticsTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())

	seedRecordAt(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"}, time.Now())
	archived := testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Old", "email": "old@example.org"})
	db.Model(&entity.DatasetRecord{}).Where("id = ?", archived.ID).Update("status", entity.RecordStatusArchived)

	report, err := svc.Get(context.Background(), dataset.ID)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if report.TotalRecords != 1 {
		t.Fatalf("expected archived records excluded, got %d", report.TotalRecords)
	}
}

func TestAnalyticsUnknownDataset(t *testing.T) {
	_, svc := setupAnalyticsTest(t)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
