package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/testutil"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupExportTest(t *testing.T) (*gorm.DB, *ExportService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	audit := NewAuditService(repos.Audit)
	svc := NewExportService(repos.Record, repos.Dataset, audit, nil, "")
	return db, svc
}

func TestExportCSV(t *testing.T) {
	db, svc := setupExportTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())
	testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org", "age": 36})
	testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Grace", "email": "grace@example.org"})

	file, err := svc.Export(context.Background(), "admin-001", dataset.ID, ExportOptions{Format: ExportFormatCSV})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.ContentType != "text/csv" {
		t.Fatalf("unexpected content type: %s", file.ContentType)
	}
	if !strings.HasSuffix(file.Filename, ".csv") {
		t.Fatalf("unexpected filename: %s", file.Filename)
	}
	if file.RecordCount != 2 {
		t.Fatalf("expected 2 records, got %d", file.RecordCount)
	}

	rows, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	// headers are the schema labels
	if rows[0][0] != "Name" || rows[0][1] != "Email" || rows[0][2] != "Age" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Ada" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	// missing optional values export empty
	if rows[2][2] != "" {
		t.Fatalf("expected empty age cell, got %q", rows[2][2])
	}
}

func TestExportCSVWithMetadata(t *testing.T) {
	db, svc := setupExportTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())
	testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"})

	file, err := svc.Export(context.Background(), "admin-001", dataset.ID, ExportOptions{
		Format:          ExportFormatCSV,
		IncludeMetadata: true,
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	header := rows[0]
	if header[len(header)-3] != "Submitted At" || header[len(header)-1] != "Source" {
		t.Fatalf("expected metadata columns, got %v", header)
	}
}

func TestExportJSON(t *testing.T) {
	db, svc := setupExportTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())
	testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"})

	file, err := svc.Export(context.Background(), "admin-001", dataset.ID, ExportOptions{Format: ExportFormatJSON})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.ContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", file.ContentType)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(file.Content, &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ds := payload["dataset"].(map[string]interface{})
	if ds["id"] != dataset.ID {
		t.Fatalf("unexpected dataset id: %v", ds["id"])
	}
	records := payload["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if payload["exportedAt"] == nil {
		t.Fatalf("missing exportedAt")
	}
}

func TestExportXLSX(t *testing.T) {
	db, svc := setupExportTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())
	testutil.SeedRecord(t, db, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"})

	file, err := svc.Export(context.Background(), "admin-001", dataset.ID, ExportOptions{Format: ExportFormatXLSX})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	book, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		t.Fatalf("invalid workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Records")
	if err != nil {
		t.Fatalf("missing Records sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][0] != "Ada" {
		t.Fatalf("unexpected cell: %v", rows[1])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	db, svc := setupExportTest(t)
	dataset := testutil.SeedDataset(t, db, testutil.ContactSchema())

	_, err := svc.Export(context.Background(), "admin-001", dataset.ID, ExportOptions{Format: "xml"})
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
