package cache

import (
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the Redis-backed stores, or their in-memory fallbacks
// when Redis is disabled
type Stores struct {
	Idempotency shared.IdempotencyStore
	AccessState AccessStateStore
}

// NewStores builds the stores on client. A nil client selects the
// in-memory implementations, which do not share state across instances.
func NewStores(client *redis.Client, logger *zap.Logger) *Stores {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		logger.Warn("Redis disabled, using in-memory callback dedupe and access cache. " +
			"Run a single instance in this mode.")
		return &Stores{
			Idempotency: NewInMemoryIdempotencyStore(),
			AccessState: NewInMemoryAccessStateCache(),
		}
	}
	return &Stores{
		Idempotency: NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix),
		AccessState: NewRedisAccessStateCache(client, logger),
	}
}
