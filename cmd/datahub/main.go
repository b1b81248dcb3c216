package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/config"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/handler"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/service"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	zapLogger.Info("Starting datahub service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Dataset{},
		&entity.DatasetRecord{},
		&entity.DatasetAPIKey{},
		&entity.DatasetAuditLog{},
		&entity.FormSubmission{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// Indexes AutoMigrate does not cover.
	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_lc_datasets_source_form ON lc_datasets ((integration ->> 'sourceFormId'))",
		"CREATE INDEX IF NOT EXISTS idx_lc_dataset_records_dataset_status ON lc_dataset_records (dataset_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_lc_dataset_records_data ON lc_dataset_records USING gin (data)",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, services, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// keyAuthorizer bridges the API key service to the middleware, mapping
// service errors onto the middleware's sentinels.
func keyAuthorizer(svc *service.APIKeyService) middleware.KeyAuthorizerFunc {
	return func(ctx context.Context, datasetID, rawKey, perm string) (string, error) {
		apiKey, err := svc.Authorize(ctx, datasetID, rawKey, perm)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrForbidden):
				return "", middleware.ErrKeyForbidden
			case errors.Is(err, service.ErrRateLimited):
				return "", middleware.ErrKeyRateLimited
			default:
				return "", err
			}
		}
		return apiKey.ID, nil
	}
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, svc *service.Services, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	auth := keyAuthorizer(svc.APIKey)

	// Public ingestion API, authenticated per dataset with API keys.
	public := r.Group("/api/datasets/:datasetId")
	{
		public.POST("/records", middleware.APIKeyAuth(auth, service.PermWrite), h.Record.CreateRecord)
		public.GET("/records", middleware.APIKeyAuth(auth, service.PermRead), h.Record.ListRecords)
	}

	// Admin API, JWT authenticated.
	v1 := r.Group("/api/v1/datahub")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		datasets := v1.Group("/datasets")
		{
			datasets.GET("", h.Dataset.ListDatasets)
			datasets.POST("", h.Dataset.CreateDataset)
			datasets.GET("/:datasetId", h.Dataset.GetDataset)
			datasets.PUT("/:datasetId", h.Dataset.UpdateDataset)
			datasets.DELETE("/:datasetId", middleware.RequireRole("datahub_admin"), h.Dataset.DeleteDataset)

			datasets.GET("/:datasetId/records/:recordId", h.Record.GetRecord)
			datasets.PUT("/:datasetId/records/:recordId", h.Record.UpdateRecordData)
			datasets.PATCH("/:datasetId/records/:recordId/status", h.Record.UpdateRecordStatus)

			datasets.GET("/:datasetId/keys", h.APIKey.ListAPIKeys)
			datasets.POST("/:datasetId/keys", h.APIKey.CreateAPIKey)
			datasets.DELETE("/:datasetId/keys/:keyId", h.APIKey.RevokeAPIKey)

			datasets.POST("/:datasetId/sync-submissions", h.Sync.SyncDataset)
			datasets.GET("/:datasetId/export", h.Export.ExportDataset)
			datasets.GET("/:datasetId/analytics", h.Analytics.GetAnalytics)
			datasets.GET("/:datasetId/audit-logs", h.Audit.ListAuditLogs)
		}

		v1.POST("/sync-submissions", h.Sync.SyncAll)
	}
}
