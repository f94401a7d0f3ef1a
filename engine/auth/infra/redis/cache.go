package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// CachedRepository wraps a repository with Redis caching for API key lookups.
// Keys are cached under their SHA-256 fingerprint; user records are never
// cached so status changes take effect immediately.
type CachedRepository struct {
	repo   uc.Repository
	client Interface
	ttl    time.Duration
}

// Interface defines the minimal Redis interface needed for caching
type Interface interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// NewCachedRepository creates a new cached repository
func NewCachedRepository(repo uc.Repository, client Interface, ttl time.Duration) uc.Repository {
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &CachedRepository{
		repo:   repo,
		client: client,
		ttl:    ttl,
	}
}

func (c *CachedRepository) fingerprintKey(fingerprint []byte) string {
	return fmt.Sprintf("auth:apikey:fp:%x", fingerprint)
}

func (c *CachedRepository) idKey(id core.ID) string {
	return fmt.Sprintf("auth:apikey:id:%s", id)
}

// GetAPIKeyByFingerprint retrieves an API key by fingerprint with read-through caching
func (c *CachedRepository) GetAPIKeyByFingerprint(ctx context.Context, fingerprint []byte) (*model.APIKey, error) {
	log := logger.FromContext(ctx)
	cacheKey := c.fingerprintKey(fingerprint)

	cached := c.client.Get(ctx, cacheKey)
	if cached.Err() == nil {
		var key model.APIKey
		unmarshalErr := json.Unmarshal([]byte(cached.Val()), &key)
		if unmarshalErr == nil {
			log.Debug("API key cache hit", "cache_key", cacheKey)
			return &key, nil
		}
		log.Debug("failed to unmarshal cached API key", "error", unmarshalErr)
	}

	log.Debug("API key cache miss", "cache_key", cacheKey)
	key, err := c.repo.GetAPIKeyByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, err
	}

	keyJSON, err := json.Marshal(key)
	if err != nil {
		log.Warn("failed to marshal API key for cache", "error", err)
		return key, nil // return result even if caching fails
	}
	if err := c.client.Set(ctx, cacheKey, keyJSON, c.ttl).Err(); err != nil {
		log.Warn("failed to cache API key", "error", err)
	}

	return key, nil
}

func (c *CachedRepository) GetAPIKeyByID(ctx context.Context, id core.ID) (*model.APIKey, error) {
	log := logger.FromContext(ctx)
	cacheKey := c.idKey(id)

	cached := c.client.Get(ctx, cacheKey)
	if cached.Err() == nil {
		var key model.APIKey
		if err := json.Unmarshal([]byte(cached.Val()), &key); err == nil {
			log.Debug("API key cache hit", "cache_key", cacheKey)
			return &key, nil
		}
	}

	key, err := c.repo.GetAPIKeyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	keyJSON, err := json.Marshal(key)
	if err != nil {
		log.Error("Failed to marshal API key for cache", "error", err)
		return key, nil
	}
	c.client.Set(ctx, cacheKey, keyJSON, c.ttl)

	return key, nil
}

// invalidateAPIKeyCache drops both the ID and fingerprint entries for a key
func (c *CachedRepository) invalidateAPIKeyCache(ctx context.Context, keyID core.ID) error {
	log := logger.FromContext(ctx)

	idCacheKey := c.idKey(keyID)
	if err := c.client.Del(ctx, idCacheKey).Err(); err != nil {
		log.Warn("failed to delete ID-based cache entry", "cache_key", idCacheKey, "error", err)
		return fmt.Errorf("failed to delete ID-based cache entry: %w", err)
	}

	// Look up the key to find its fingerprint entry
	key, err := c.repo.GetAPIKeyByID(ctx, keyID)
	if err != nil {
		log.Debug("API key ID cache invalidated, key gone from store", "key_id", keyID)
		return nil
	}

	fpCacheKey := c.fingerprintKey(key.Fingerprint)
	if err := c.client.Del(ctx, fpCacheKey).Err(); err != nil {
		log.Warn("failed to delete fingerprint cache entry", "cache_key", fpCacheKey, "error", err)
		return fmt.Errorf("failed to delete fingerprint cache entry: %w", err)
	}

	return nil
}

// Delegate all other methods to the wrapped repository

func (c *CachedRepository) CreateUser(ctx context.Context, user *model.User) error {
	return c.repo.CreateUser(ctx, user)
}

func (c *CachedRepository) GetUserByID(ctx context.Context, id core.ID) (*model.User, error) {
	return c.repo.GetUserByID(ctx, id)
}

func (c *CachedRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return c.repo.GetUserByEmail(ctx, email)
}

func (c *CachedRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	return c.repo.ListUsers(ctx)
}

func (c *CachedRepository) UpdateUser(ctx context.Context, user *model.User) error {
	return c.repo.UpdateUser(ctx, user)
}

func (c *CachedRepository) DeleteUser(ctx context.Context, id core.ID) error {
	return c.repo.DeleteUser(ctx, id)
}

func (c *CachedRepository) CreateInitialAdminIfNone(ctx context.Context, user *model.User) error {
	return c.repo.CreateInitialAdminIfNone(ctx, user)
}

func (c *CachedRepository) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	return c.repo.CreateAPIKey(ctx, key)
}

func (c *CachedRepository) ListAPIKeysByUserID(ctx context.Context, userID core.ID) ([]*model.APIKey, error) {
	return c.repo.ListAPIKeysByUserID(ctx, userID)
}

func (c *CachedRepository) UpdateAPIKeyLastUsed(ctx context.Context, id core.ID) error {
	// Invalidate cache first, but don't fail the operation if cache invalidation fails
	if err := c.invalidateAPIKeyCache(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed during update", "error", err)
	}
	return c.repo.UpdateAPIKeyLastUsed(ctx, id)
}

func (c *CachedRepository) DeleteAPIKey(ctx context.Context, id core.ID) error {
	// Invalidate cache first, but don't fail the operation if cache invalidation fails
	if err := c.invalidateAPIKeyCache(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed during delete", "error", err)
	}
	return c.repo.DeleteAPIKey(ctx, id)
}
