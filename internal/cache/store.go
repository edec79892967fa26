package cache

import (
	"context"
	"time"
)

// Store is the counter store shared by rate limiting. Implementations must be
// safe for concurrent use.
type Store interface {
	// IncrementWithTTL increments key, starting a fixed window of the given
	// length on the first increment, and returns the current count plus the
	// remaining time-to-live.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
