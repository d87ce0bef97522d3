package app

import (
	"context"
	"fmt"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/cache"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns the db and redis readiness checks. Either
// dependency may be absent: an in-memory store runs without Postgres and the
// latest-interviews cache is optional. Absent dependencies pass the check
// rather than fail it.
func BuildReadinessChecks(pool Pinger, latest *cache.LatestInterviews) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	dbCheck := func(ctx context.Context) error {
		if pool == nil {
			return nil // in-memory store, nothing to probe
		}
		return pool.Ping(ctx)
	}
	redisCheck := func(ctx context.Context) error {
		if err := latest.Ping(ctx); err != nil {
			return fmt.Errorf("op=readiness.redis: %w", err)
		}
		return nil
	}
	return dbCheck, redisCheck
}
