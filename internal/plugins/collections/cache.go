package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/tagboard/internal/membership"
)

// previewKeyPrefix namespaces memoized previews in Redis.
const previewKeyPrefix = "tagboard:preview:"

// PreviewCache memoizes evaluation results by input fingerprint.
type PreviewCache interface {
	// Get returns the cached products for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]membership.Product, bool, error)
	Set(ctx context.Context, key string, products []membership.Product) error
}

type redisPreviewCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisPreviewCache creates a PreviewCache storing JSON in Redis.
// Returns nil when ttl is not positive, which disables caching.
func NewRedisPreviewCache(rdb redis.Cmdable, ttl time.Duration) PreviewCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &redisPreviewCache{rdb: rdb, ttl: ttl}
}

func (c *redisPreviewCache) Get(ctx context.Context, key string) ([]membership.Product, bool, error) {
	data, err := c.rdb.Get(ctx, previewKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading preview from Redis: %w", err)
	}

	var products []membership.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("unmarshaling preview: %w", err)
	}
	return products, true, nil
}

func (c *redisPreviewCache) Set(ctx context.Context, key string, products []membership.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshaling preview: %w", err)
	}
	if err := c.rdb.Set(ctx, previewKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing preview in Redis: %w", err)
	}
	return nil
}
