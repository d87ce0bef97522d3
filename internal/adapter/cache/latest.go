// Package cache provides a short-TTL Redis cache for the latest-interviews
// feed. The feed is recomputed in memory on every read (the store cannot
// combine its filters with a sort), so a small cache keeps the hot path cheap.
// The cache is strictly optional; a nil *LatestInterviews is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// LatestInterviews caches the per-viewer latest-interviews list.
type LatestInterviews struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLatestInterviews constructs the cache from a Redis URL. Returns an error
// when the URL does not parse; connectivity failures surface lazily per call.
func NewLatestInterviews(redisURL string, ttl time.Duration) (*LatestInterviews, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("op=cache.parse_url: %w", err)
	}
	return &LatestInterviews{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func key(excludeUserID string, limit int) string {
	return fmt.Sprintf("latest_interviews:%s:%d", excludeUserID, limit)
}

// Get returns the cached list, or (nil, false) on miss or cache trouble.
// Cache failures are logged and treated as misses; the read path must keep
// working with Redis down.
func (c *LatestInterviews) Get(ctx context.Context, excludeUserID string, limit int) ([]domain.Interview, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key(excludeUserID, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("latest cache get failed", slog.Any("error", err))
		}
		return nil, false
	}
	var out []domain.Interview
	if err := json.Unmarshal(b, &out); err != nil {
		slog.Warn("latest cache entry corrupt", slog.Any("error", err))
		return nil, false
	}
	return out, true
}

// Ping probes the Redis connection. A nil cache reports healthy.
func (c *LatestInterviews) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Put stores the list under the viewer's key; best effort.
func (c *LatestInterviews) Put(ctx context.Context, excludeUserID string, limit int, ivs []domain.Interview) {
	if c == nil {
		return
	}
	b, err := json.Marshal(ivs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(excludeUserID, limit), b, c.ttl).Err(); err != nil {
		slog.Debug("latest cache put failed", slog.Any("error", err))
	}
}
