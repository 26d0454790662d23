package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AccessStateStore caches evaluated access states by firm
type AccessStateStore interface {
	Get(ctx context.Context, firmID uuid.UUID) (*subscription.AccessState, error)
	Set(ctx context.Context, firmID uuid.UUID, state subscription.AccessState, ttl time.Duration) error
	Invalidate(ctx context.Context, firmID uuid.UUID) error
}

// RedisAccessStateCache caches evaluated subscription access per firm so
// the global access guard does not load the firm row on every request
type RedisAccessStateCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisAccessStateCache creates a cache on a shared Redis client
func NewRedisAccessStateCache(client *redis.Client, logger *zap.Logger) *RedisAccessStateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisAccessStateCache{
		client:    client,
		keyPrefix: "subscription:access:",
		logger:    logger,
	}
}

func (c *RedisAccessStateCache) key(firmID uuid.UUID) string {
	return c.keyPrefix + firmID.String()
}

// Get returns the cached state; a miss returns (nil, nil)
func (c *RedisAccessStateCache) Get(ctx context.Context, firmID uuid.UUID) (*subscription.AccessState, error) {
	data, err := c.client.Get(ctx, c.key(firmID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access state from cache: %w", err)
	}

	var state subscription.AccessState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Warn("Dropping corrupted access state cache entry",
			zap.String("firm_id", firmID.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, c.key(firmID))
		return nil, nil
	}
	return &state, nil
}

// Set stores state for ttl
func (c *RedisAccessStateCache) Set(ctx context.Context, firmID uuid.UUID, state subscription.AccessState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal access state: %w", err)
	}
	if err := c.client.Set(ctx, c.key(firmID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache access state: %w", err)
	}
	return nil
}

// Invalidate drops the cached state of a firm
func (c *RedisAccessStateCache) Invalidate(ctx context.Context, firmID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(firmID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate access state: %w", err)
	}
	return nil
}

type cachedState struct {
	state     subscription.AccessState
	expiresAt time.Time
}

// InMemoryAccessStateCache is the single-instance fallback
type InMemoryAccessStateCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cachedState
	now     func() time.Time
}

// NewInMemoryAccessStateCache creates an empty cache
func NewInMemoryAccessStateCache() *InMemoryAccessStateCache {
	return &InMemoryAccessStateCache{
		entries: make(map[uuid.UUID]cachedState),
		now:     time.Now,
	}
}

// Get returns the cached state; a miss returns (nil, nil)
func (c *InMemoryAccessStateCache) Get(_ context.Context, firmID uuid.UUID) (*subscription.AccessState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[firmID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	state := e.state
	return &state, nil
}

// Set stores state for ttl
func (c *InMemoryAccessStateCache) Set(_ context.Context, firmID uuid.UUID, state subscription.AccessState, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[firmID] = cachedState{state: state, expiresAt: c.now().Add(ttl)}
	return nil
}

// Invalidate drops the cached state of a firm
func (c *InMemoryAccessStateCache) Invalidate(_ context.Context, firmID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, firmID)
	return nil
}

var (
	_ AccessStateStore = (*RedisAccessStateCache)(nil)
	_ AccessStateStore = (*InMemoryAccessStateCache)(nil)
)
