package cache

import (
	"context"
	"time"

	"pdf-reader/internal/scripts"
)

// NoOpCache does nothing. Used when no Redis is configured: every lookup
// is a miss and writes succeed silently.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetQuery(ctx context.Context, key string) (*scripts.QueryResult, error) {
	return nil, nil
}

func (c *NoOpCache) SetQuery(ctx context.Context, key string, result *scripts.QueryResult, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
