package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_datahub"
	JWTSecret  = "datahub-jwt-secret-key-2025"

	// DefaultTestUserID is the user behind DefaultTestToken and the seed helpers.
	DefaultTestUserID = "test-user-001"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test
// schema. Each test gets an isolated schema that is cleaned up afterwards.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "datahub")
	password := getEnv("DB_PASSWORD", "datahub123")
	dbname := getEnv("DB_NAME", "datahub")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Dataset{},
		&entity.DatasetRecord{},
		&entity.DatasetAPIKey{},
		&entity.DatasetAuditLog{},
		&entity.FormSubmission{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing.
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "datahub",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user.
func DefaultTestToken() string {
	return GenerateTestToken(
		DefaultTestUserID,
		"Test Admin",
		"admin@test.com",
		[]string{"datahub_admin"},
	)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// ContactSchema is a small ready-made schema used across tests.
func ContactSchema() entity.DatasetSchema {
	return entity.DatasetSchema{
		Version: "1.0.0",
		Fields: []entity.DatasetField{
			{Name: "name", Label: "Name", Type: "text", Required: true},
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "age", Label: "Age", Type: "number"},
		},
	}
}

// SeedDataset creates a dataset ready for ingestion tests.
func SeedDataset(t *testing.T, db *gorm.DB, sch entity.DatasetSchema) *entity.Dataset {
	t.Helper()
	dataset := &entity.Dataset{
		ID:                uuid.New().String()[:32],
		Name:              "Test Dataset",
		SourceApplication: "LeadershipConnections",
		OrganizationID:    "org-test",
		CreatedBy:         DefaultTestUserID,
		Schema:            sch,
		Metadata: entity.DatasetMetadata{
			Tags:     entity.JSONBArray{},
			Category: "general",
		},
		Permissions: entity.DatasetPermissions{
			Owners:  []string{DefaultTestUserID},
			Editors: []string{},
			Viewers: []string{},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(dataset).Error; err != nil {
		t.Fatalf("Failed to seed dataset: %v", err)
	}
	return dataset
}

// SeedRecord inserts one active record into a dataset.
func SeedRecord(t *testing.T, db *gorm.DB, datasetID string, data entity.JSONB) *entity.DatasetRecord {
	t.Helper()
	record := &entity.DatasetRecord{
		ID:        uuid.New().String()[:32],
		DatasetID: datasetID,
		Data:      data,
		Metadata: entity.RecordMetadata{
			SubmittedAt:       time.Now(),
			SourceApplication: "LeadershipConnections",
		},
		Status:  entity.RecordStatusActive,
		Version: 1,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}
	return record
}

// SeedAPIKey creates an active key with the given permissions.
func SeedAPIKey(t *testing.T, db *gorm.DB, datasetID string, read, write bool) *entity.DatasetAPIKey {
	t.Helper()
	key := &entity.DatasetAPIKey{
		ID:        uuid.New().String()[:32],
		DatasetID: datasetID,
		Name:      "test key",
		Key:       "lc_" + uuid.New().String()[:8] + uuid.New().String()[:24],
		CreatedBy: DefaultTestUserID,
		CreatedAt: time.Now(),
		CanRead:   read,
		CanWrite:  write,
		IsActive:  true,
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("Failed to seed api key: %v", err)
	}
	return key
}

// SeedFormSubmission inserts a raw form submission for sync tests.
func SeedFormSubmission(t *testing.T, db *gorm.DB, formID string, data entity.JSONB, at time.Time) *entity.FormSubmission {
	t.Helper()
	sub := &entity.FormSubmission{
		ID:          uuid.New().String()[:32],
		FormID:      formID,
		Data:        data,
		SubmittedAt: at,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to seed form submission: %v", err)
	}
	return sub
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
