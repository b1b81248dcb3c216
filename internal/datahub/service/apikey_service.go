package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// APIKeyService issues and authorizes per-dataset API keys. Rate limits are
// tracked in Redis with a one-minute window per key.
type APIKeyService struct {
	repo        *repository.APIKeyRepository
	datasetRepo *repository.DatasetRepository
	rdb         *redis.Client
}

func NewAPIKeyService(repo *repository.APIKeyRepository, datasetRepo *repository.DatasetRepository, rdb *redis.Client) *APIKeyService {
	return &APIKeyService{repo: repo, datasetRepo: datasetRepo, rdb: rdb}
}

// CreateAPIKeyRequest names a new key and scopes its permissions.
type CreateAPIKeyRequest struct {
	Name      string     `json:"name" binding:"required"`
	CanRead   bool       `json:"canRead"`
	CanWrite  bool       `json:"canWrite"`
	CanDelete bool       `json:"canDelete"`
	RateLimit int        `json:"rateLimit"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (s *APIKeyService) List(ctx context.Context, datasetID string) ([]entity.DatasetAPIKey, error) {
	if _, err := s.datasetRepo.FindByID(ctx, datasetID); err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, datasetID)
}

// Create issues a key in the "lc_" + 32 alphanumeric format.
func (s *APIKeyService) Create(ctx context.Context, userID, datasetID string, req *CreateAPIKeyRequest) (*entity.DatasetAPIKey, error) {
	if _, err := s.datasetRepo.FindByID(ctx, datasetID); err != nil {
		return nil, err
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	apiKey := &entity.DatasetAPIKey{
		ID:        uuid.New().String()[:32],
		DatasetID: datasetID,
		Name:      req.Name,
		Key:       key,
		CreatedBy: userID,
		ExpiresAt: req.ExpiresAt,
		CanRead:   req.CanRead,
		CanWrite:  req.CanWrite,
		CanDelete: req.CanDelete,
		RateLimit: req.RateLimit,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, apiKey); err != nil {
		return nil, err
	}
	return apiKey, nil
}

func (s *APIKeyService) Revoke(ctx context.Context, datasetID, id string) error {
	return s.repo.Revoke(ctx, datasetID, id)
}

// Permission names accepted by Authorize.
const (
	PermRead   = "read"
	PermWrite  = "write"
	PermDelete = "delete"
)

// Authorize resolves a raw key, checks it against the dataset and requested
// permission, applies the rate limit and touches last-used. It returns the
// key row so handlers can attribute the request.
func (s *APIKeyService) Authorize(ctx context.Context, datasetID, rawKey, perm string) (*entity.DatasetAPIKey, error) {
	apiKey, err := s.repo.FindByKey(ctx, rawKey)
	if err != nil {
		return nil, err
	}
	if apiKey.DatasetID != datasetID {
		return nil, repository.ErrNotFound
	}
	if !apiKey.IsActive {
		return nil, ErrKeyInactive
	}
	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
		return nil, ErrKeyExpired
	}

	allowed := false
	switch perm {
	case PermRead:
		allowed = apiKey.CanRead
	case PermWrite:
		allowed = apiKey.CanWrite
	case PermDelete:
		allowed = apiKey.CanDelete
	}
	if !allowed {
		return nil, ErrForbidden
	}

	if apiKey.RateLimit > 0 && s.rdb != nil {
		if err := s.checkRateLimit(ctx, apiKey); err != nil {
			return nil, err
		}
	}

	if err := s.repo.TouchLastUsed(ctx, apiKey.ID, time.Now()); err != nil {
		zap.L().Warn("failed to touch api key", zap.String("key_id", apiKey.ID), zap.Error(err))
	}
	return apiKey, nil
}

func (s *APIKeyService) checkRateLimit(ctx context.Context, apiKey *entity.DatasetAPIKey) error {
	rlKey := fmt.Sprintf("datahub:ratelimit:%s", apiKey.ID)
	count, err := s.rdb.Incr(ctx, rlKey).Result()
	if err != nil {
		// Redis being down should not take ingestion with it
		zap.L().Warn("rate limit check failed", zap.Error(err))
		return nil
	}
	if count == 1 {
		s.rdb.Expire(ctx, rlKey, time.Minute)
	}
	if count > int64(apiKey.RateLimit) {
		return ErrRateLimited
	}
	return nil
}

// GenerateKey builds an "lc_" prefixed key from 32 random alphanumerics.
func GenerateKey() (string, error) {
	out := make([]byte, 32)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = keyAlphabet[n.Int64()]
	}
	return "lc_" + string(out), nil
}
