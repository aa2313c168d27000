package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BAWSA3/brandos/internal/types"
)

// Redis is a Store backed by a redis instance, for deployments where
// multiple conductor processes share one cache.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a redis-backed cache from a redis URL, e.g.
// "redis://localhost:6379/0".
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &Redis{
		client: redis.NewClient(opts),
		prefix: "brandos:report:",
	}, nil
}

// Get returns the cached report if present; redis handles expiry.
func (r *Redis) Get(ctx context.Context, handle types.Handle) (*types.UnifiedReport, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+string(handle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read failed: %w", err)
	}

	var report types.UnifiedReport
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt entry is treated as a miss so the run can repopulate it.
		return nil, false, nil
	}
	return &report, true, nil
}

// Set stores the report under the handle key with the given TTL.
func (r *Redis) Set(ctx context.Context, handle types.Handle, report *types.UnifiedReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+string(handle), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Close releases the underlying redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
