package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether a keyed request may proceed
type Limiter interface {
	// Allow consumes one request for key and reports whether it fits, plus
	// the requests left in the current window
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimiter is an in-process token bucket per key: limit requests burst,
// refilled evenly over period. Call Stop to end its sweeper.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   int
	every   rate.Limit
	stop    chan struct{}
	once    sync.Once
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		every:   rate.Every(period / time.Duration(max(limit, 1))),
		stop:    make(chan struct{}),
	}
	go rl.sweep(period * 2)
	return rl
}

// sweep drops full buckets; a returning caller gets a fresh, equal one
func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.TokensAt(now) >= float64(rl.limit) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rl.every, rl.limit)
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	now := time.Now()
	if !b.AllowN(now, 1) {
		return false, 0, nil
	}
	return true, max(int(b.TokensAt(now)), 0), nil
}

// RedisRateLimiter shares windows across API instances
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	period time.Duration
}

// NewRedisRateLimiter creates a limiter on a shared Redis client
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, period time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, period: period}
}

// Limit returns the requests allowed per window
func (rl *RedisRateLimiter) Limit() int {
	return rl.limit
}

// Allow implements Limiter with INCR on a key that expires with the window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	windowStart := time.Now().Truncate(rl.period).Unix()
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, key, windowStart)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}

	used := int(incr.Val())
	if used > rl.limit {
		return false, 0, nil
	}
	return true, rl.limit - used, nil
}

// ClientIPKey limits per caller address
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// FirmKey limits per authenticated firm, falling back to the caller address
func FirmKey(c *gin.Context) string {
	if firmID := c.GetString(JWTFirmIDKey); firmID != "" {
		return "firm:" + firmID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit returns a middleware limiting requests per client IP
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, ClientIPKey, logger)
}

// RateLimitByKey returns a rate limiting middleware with a custom key. A
// failing limiter lets requests through.
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited, "Too many requests. Please try again later.", GetRequestID(c)))
			return
		}

		c.Next()
	}
}
