package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"pdf-reader/internal/scripts"
)

// Cache stores retrieval results so re-analyzing the same selection does
// not re-run the retrieval backend.
type Cache interface {
	// GetQuery retrieves a cached retrieval result by key. Returns nil on
	// a miss.
	GetQuery(ctx context.Context, key string) (*scripts.QueryResult, error)

	// SetQuery stores a retrieval result with TTL.
	SetQuery(ctx context.Context, key string, result *scripts.QueryResult, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Key derives the cache key for a selection text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
