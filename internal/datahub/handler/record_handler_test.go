package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/testutil"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/middleware"
	"gorm.io/gorm"
)

type recordTestEnv struct {
	*testutil.TestEnv
	repos *repository.Repositories
	svc   *service.RecordService
	keys  *service.APIKeyService
}

func setupRecordTest(t *testing.T) *recordTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	auditSvc := service.NewAuditService(repos.Audit)
	recordSvc := service.NewRecordService(repos.Record, repos.Dataset, auditSvc)
	keySvc := service.NewAPIKeyService(repos.APIKey, repos.Dataset, nil)
	h := NewRecordHandler(recordSvc)

	auth := middleware.KeyAuthorizerFunc(func(ctx context.Context, datasetID, rawKey, perm string) (string, error) {
		apiKey, err := keySvc.Authorize(ctx, datasetID, rawKey, perm)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				return "", middleware.ErrKeyForbidden
			}
			return "", err
		}
		return apiKey.ID, nil
	})

	router := testutil.SetupRouter()
	public := router.Group("/api/datasets/:datasetId")
	public.POST("/records", middleware.APIKeyAuth(auth, service.PermWrite), h.CreateRecord)
	public.GET("/records", middleware.APIKeyAuth(auth, service.PermRead), h.ListRecords)

	admin := testutil.AuthGroup(router, "/api/v1/datahub")
	admin.PATCH("/datasets/:datasetId/records/:recordId/status", h.UpdateRecordStatus)

	return &recordTestEnv{
		TestEnv: &testutil.TestEnv{DB: db, Router: router, T: t},
		repos:   repos,
		svc:     recordSvc,
		keys:    keySvc,
	}
}

func datasetRecordCount(t *testing.T, db *gorm.DB, id string) int64 {
	t.Helper()
	var dataset entity.Dataset
	if err := db.First(&dataset, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload dataset: %v", err)
	}
	return dataset.Metadata.RecordCount
}

func TestCreateRecordSuccess(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	key := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, true)

	body := map[string]interface{}{
		"data": map[string]interface{}{
			"name":  "Ada Lovelace",
			"email": "ada@example.org",
			"age":   36,
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, key.Key)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["message"] != "Record created successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	record := resp["record"].(map[string]interface{})
	if record["datasetId"] != dataset.ID {
		t.Fatalf("unexpected datasetId: %v", record["datasetId"])
	}
	data := record["data"].(map[string]interface{})
	if data["email"] != "ada@example.org" {
		t.Fatalf("payload not stored as submitted: %v", data)
	}

	if count := datasetRecordCount(t, env.DB, dataset.ID); count != 1 {
		t.Fatalf("expected record count 1, got %d", count)
	}
}

func TestCreateRecordMetadataPassthrough(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	key := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, true)

	submittedAt := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"name":  "Ada Lovelace",
			"email": "ada@example.org",
		},
		"metadata": map[string]interface{}{
			"submittedAt":            submittedAt.Format(time.RFC3339),
			"submittedBy":            "form-widget",
			"sourceFormSubmissionId": "sub-12345",
			"deviceType":             "mobile",
			"location":               map[string]interface{}{"city": "Durham", "country": "US"},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, key.Key)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	record := resp["record"].(map[string]interface{})
	var stored entity.DatasetRecord
	if err := env.DB.First(&stored, "id = ?", record["id"]).Error; err != nil {
		t.Fatalf("failed to reload record: %v", err)
	}
	if stored.Metadata.SubmittedBy != "form-widget" {
		t.Fatalf("unexpected submittedBy: %q", stored.Metadata.SubmittedBy)
	}
	if stored.Metadata.SourceFormSubmissionID != "sub-12345" {
		t.Fatalf("unexpected sourceFormSubmissionId: %q", stored.Metadata.SourceFormSubmissionID)
	}
	if !stored.Metadata.SubmittedAt.Equal(submittedAt) {
		t.Fatalf("unexpected submittedAt: %v", stored.Metadata.SubmittedAt)
	}
	// caller-supplied deviceType wins over user-agent detection
	if stored.Metadata.DeviceType != "mobile" {
		t.Fatalf("unexpected deviceType: %q", stored.Metadata.DeviceType)
	}
	if stored.Metadata.Location == nil || stored.Metadata.Location.City != "Durham" {
		t.Fatalf("unexpected location: %+v", stored.Metadata.Location)
	}
}

func TestCreateRecordValidationFailure(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	key := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, true)

	body := map[string]interface{}{
		"data": map[string]interface{}{
			"email": "not-an-email",
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, key.Key)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["error"] != "Validation failed" {
		t.Fatalf("unexpected error: %v", resp["error"])
	}
	errs := resp["errors"].([]interface{})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0] != "Field 'Name' is required" {
		t.Fatalf("unexpected first error: %v", errs[0])
	}
	if errs[1] != "Field 'Email' must be a valid email address" {
		t.Fatalf("unexpected second error: %v", errs[1])
	}

	// rejection writes nothing
	var records int64
	env.DB.Model(&entity.DatasetRecord{}).Where("dataset_id = ?", dataset.ID).Count(&records)
	if records != 0 {
		t.Fatalf("expected no records, got %d", records)
	}
	if count := datasetRecordCount(t, env.DB, dataset.ID); count != 0 {
		t.Fatalf("expected record count 0, got %d", count)
	}
}

func TestCreateRecordRequiresWritePermission(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	readOnly := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, false)

	body := map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada", "email": "ada@example.org"},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, readOnly.Key)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRecordRejectsForeignKey(t *testing.T) {
	env := setupRecordTest(t)
	datasetA := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	datasetB := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	keyA := testutil.SeedAPIKey(t, env.DB, datasetA.ID, true, true)

	body := map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada", "email": "ada@example.org"},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+datasetB.ID+"/records", body, keyA.Key)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRecordWithoutKey(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())

	body := map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada", "email": "ada@example.org"},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

// A storage failure during ingestion surfaces the underlying driver error in
// the 500 body instead of a fixed message.
func TestCreateRecordStorageErrorMessage(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())

	// no key middleware here, it would hit the closed pool first
	router := testutil.SetupRouter()
	router.POST("/api/datasets/:datasetId/records", NewRecordHandler(env.svc).CreateRecord)

	sqlDB, err := env.DB.DB()
	if err != nil {
		t.Fatalf("failed to unwrap sql db: %v", err)
	}
	sqlDB.Close()

	body := map[string]interface{}{
		"data": map[string]interface{}{"name": "Ada", "email": "ada@example.org"},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/datasets/"+dataset.ID+"/records", body, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	msg, _ := resp["error"].(string)
	if !strings.HasPrefix(msg, "Failed to create record: ") {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if msg == "Failed to create record: " {
		t.Fatalf("driver error missing from message: %q", msg)
	}
}

func TestListRecords(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	key := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, false)

	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"})
	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "Grace", "email": "grace@example.org"})
	archived := testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "Old", "email": "old@example.org"})
	env.DB.Model(&entity.DatasetRecord{}).Where("id = ?", archived.ID).Update("status", entity.RecordStatusArchived)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/datasets/"+dataset.ID+"/records", nil, key.Key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	records := resp["records"].([]interface{})
	if len(records) != 2 {
		t.Fatalf("expected 2 active records, got %d", len(records))
	}
	pagination := resp["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Fatalf("unexpected total: %v", pagination["total"])
	}
	if pagination["pageSize"].(float64) != 50 {
		t.Fatalf("unexpected default pageSize: %v", pagination["pageSize"])
	}

	// search matches any data value
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/datasets/"+dataset.ID+"/records?search=grace", nil, key.Key)
	resp = testutil.ParseResponse(w)
	records = resp["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(records))
	}

	// archived records are reachable via status param
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/datasets/"+dataset.ID+"/records?status=archived", nil, key.Key)
	resp = testutil.ParseResponse(w)
	records = resp["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("expected 1 archived record, got %d", len(records))
	}
}

// Search terms containing % or _ must match those characters literally
// instead of being treated as SQL wildcards.
func TestListRecordsSearchLiteralWildcards(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	key := testutil.SeedAPIKey(t, env.DB, dataset.ID, true, false)

	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "100% complete", "email": "done@example.org"})
	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "100 percent complete", "email": "also@example.org"})
	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "ada_l", "email": "ada@example.org"})
	testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "adall", "email": "adal@example.org"})

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/datasets/"+dataset.ID+"/records?search="+url.QueryEscape("100%"), nil, key.Key)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	records := resp["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("expected 1 literal %% hit, got %d", len(records))
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/datasets/"+dataset.ID+"/records?search="+url.QueryEscape("ada_"), nil, key.Key)
	resp = testutil.ParseResponse(w)
	records = resp["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("expected 1 literal _ hit, got %d", len(records))
	}
}

// Two concurrent ingestions against a dataset with 5 records must both land
// their increment: the counter update is a single SQL UPDATE, so the final
// count is 7, never a lost-update 6.
func TestConcurrentIngestionCounter(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	env.DB.Model(&entity.Dataset{}).Where("id = ?", dataset.ID).Update("record_count", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Ingest(context.Background(), dataset.ID, &service.IngestRequest{
				Data: map[string]interface{}{
					"name":  "Concurrent",
					"email": "concurrent@example.org",
				},
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("ingestion failed: %v", err)
		}
	}
	if count := datasetRecordCount(t, env.DB, dataset.ID); count != 7 {
		t.Fatalf("expected record count 7, got %d", count)
	}
}

func TestUpdateRecordStatus(t *testing.T) {
	env := setupRecordTest(t)
	dataset := testutil.SeedDataset(t, env.DB, testutil.ContactSchema())
	record := testutil.SeedRecord(t, env.DB, dataset.ID, entity.JSONB{"name": "Ada", "email": "ada@example.org"})
	token := testutil.DefaultTestToken()

	path := "/api/v1/datahub/datasets/" + dataset.ID + "/records/" + record.ID + "/status"
	w := testutil.DoRequest(env.Router, http.MethodPatch, path, map[string]interface{}{"status": "archived"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded entity.DatasetRecord
	env.DB.First(&reloaded, "id = ?", record.ID)
	if reloaded.Status != entity.RecordStatusArchived {
		t.Fatalf("expected archived, got %s", reloaded.Status)
	}
	if reloaded.Version != 2 {
		t.Fatalf("expected version bump to 2, got %d", reloaded.Version)
	}

	w = testutil.DoRequest(env.Router, http.MethodPatch, path, map[string]interface{}{"status": "bogus"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", w.Code)
	}
}

func TestIngestUnknownDataset(t *testing.T) {
	env := setupRecordTest(t)

	_, err := env.svc.Ingest(context.Background(), "missing", &service.IngestRequest{
		Data: map[string]interface{}{"name": "Ada"},
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
