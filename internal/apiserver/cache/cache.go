package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Well-known catalog cache keys. Writes to the catalog invalidate them.
const (
	KeyProducts   = "catalog:products"
	KeyCategories = "catalog:categories"
)

const keyPrefix = "storefront:"

// CatalogCache is an L1 memory + optional L2 Redis cache for catalog
// reads. Values are opaque JSON. With no Redis client configured only the
// memory layer is used; the catalog stays correct either way because every
// catalog write invalidates.
type CatalogCache struct {
	logger *zap.Logger
	redis  redis.Cmdable

	memTTL   time.Duration
	redisTTL time.Duration

	mu    sync.RWMutex
	items map[string]memEntry
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// Config holds the cache configuration
type Config struct {
	RedisClient redis.Cmdable
	MemoryTTL   time.Duration
	RedisTTL    time.Duration
}

// NewCatalogCache creates a catalog cache
func NewCatalogCache(logger *zap.Logger, cfg Config) *CatalogCache {
	if cfg.MemoryTTL == 0 {
		cfg.MemoryTTL = time.Minute
	}
	if cfg.RedisTTL == 0 {
		cfg.RedisTTL = 10 * time.Minute
	}
	return &CatalogCache{
		logger:   logger.Named("apiserver.cache"),
		redis:    cfg.RedisClient,
		memTTL:   cfg.MemoryTTL,
		redisTTL: cfg.RedisTTL,
		items:    make(map[string]memEntry),
	}
}

// Get returns the cached value for key, promoting Redis hits into memory
func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.data, true
	}

	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	c.mu.Lock()
	c.items[key] = memEntry{data: data, expiresAt: time.Now().Add(c.memTTL)}
	c.mu.Unlock()
	return data, true
}

// Set writes the value to both layers
func (c *CatalogCache) Set(ctx context.Context, key string, data []byte) {
	c.mu.Lock()
	c.items[key] = memEntry{data: data, expiresAt: time.Now().Add(c.memTTL)}
	c.mu.Unlock()

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, keyPrefix+key, data, c.redisTTL).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys from both layers
func (c *CatalogCache) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if c.redis == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}
	if err := c.redis.Del(ctx, prefixed...).Err(); err != nil {
		c.logger.Warn("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateCatalog drops every catalog key
func (c *CatalogCache) InvalidateCatalog(ctx context.Context) {
	c.Invalidate(ctx, KeyProducts, KeyCategories)
}
