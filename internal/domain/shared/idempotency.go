package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled.
// Payment callbacks use it so a provider retrying the same notification
// does not apply a status change twice.
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Forget removes a key so a failed attempt can be retried
	Forget(ctx context.Context, key string) error
	Close() error
}
