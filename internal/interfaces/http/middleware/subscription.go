package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Subscription response headers
const (
	SubscriptionStateHeader  = "X-Subscription-State"
	GraceDaysRemainingHeader = "X-Subscription-Grace-Days-Remaining"

	// AccessStateKey holds the evaluated subscription.AccessState
	AccessStateKey = "subscription_access"
)

// AccessEvaluator returns the current access state of a firm
type AccessEvaluator interface {
	AccessState(ctx context.Context, firmID uuid.UUID) (subscription.AccessState, error)
}

// AccessGuardConfig configures GlobalAccessGuard
type AccessGuardConfig struct {
	Evaluator AccessEvaluator
	// ExemptPathPrefixes stay reachable when the firm is blocked so it can
	// sign in, see its status and pay
	ExemptPathPrefixes []string
	Logger             *zap.Logger
}

// DefaultExemptPathPrefixes are the routes a blocked firm can still use
func DefaultExemptPathPrefixes() []string {
	return []string{
		"/api/v1/auth",
		"/api/v1/subscription",
		"/api/v1/payments",
		"/api/v1/profile",
	}
}

// GlobalAccessGuard blocks authenticated requests with 402 while the firm's
// subscription is expired past grace, suspended or cancelled. It must run
// after JWT authentication; requests without a firm pass through.
func GlobalAccessGuard(cfg AccessGuardConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ExemptPathPrefixes == nil {
		cfg.ExemptPathPrefixes = DefaultExemptPathPrefixes()
	}

	return func(c *gin.Context) {
		firmID := GetFirmID(c)
		if firmID == uuid.Nil {
			c.Next()
			return
		}

		state, err := cfg.Evaluator.AccessState(c.Request.Context(), firmID)
		if err != nil {
			log.Error("Failed to evaluate subscription access",
				zap.String("firm_id", firmID.String()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "Could not verify subscription", GetRequestID(c)))
			return
		}

		c.Set(AccessStateKey, state)
		c.Header(SubscriptionStateHeader, string(state.Level))
		if state.InGracePeriod {
			c.Header(GraceDaysRemainingHeader, strconv.Itoa(state.GraceDaysRemaining))
		}

		if state.IsBlocked() && !skipPath(c.Request.URL.Path, nil, cfg.ExemptPathPrefixes) {
			code, message := blockedError(state.Reason)
			log.Info("Request blocked by subscription state",
				zap.String("firm_id", firmID.String()),
				zap.String("reason", string(state.Reason)),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusPaymentRequired,
				dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
			return
		}

		c.Next()
	}
}

func blockedError(reason subscription.BlockReason) (code, message string) {
	switch reason {
	case subscription.BlockSuspended:
		return dto.ErrCodeSubscriptionSuspended, "Subscription is suspended"
	case subscription.BlockCancelled:
		return dto.ErrCodeFirmCancelled, "Firm account is cancelled"
	default:
		return dto.ErrCodeSubscriptionExpired, "Subscription has expired, renew to continue"
	}
}

// GetAccessState returns the state evaluated by GlobalAccessGuard
func GetAccessState(c *gin.Context) (subscription.AccessState, bool) {
	v, ok := c.Get(AccessStateKey)
	if !ok {
		return subscription.AccessState{}, false
	}
	state, ok := v.(subscription.AccessState)
	return state, ok
}

// SubscriptionGuard checks plan limits before a route runs
type SubscriptionGuard struct {
	gate   subscription.Gate
	logger *zap.Logger
}

// NewSubscriptionGuard creates a guard over the subscription gate
func NewSubscriptionGuard(gate subscription.Gate, logger *zap.Logger) *SubscriptionGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionGuard{gate: gate, logger: logger}
}

// RequireQuota rejects the request with 403 when one more resource would
// exceed the plan limit. Panics on an unknown resource.
func (g *SubscriptionGuard) RequireQuota(resource subscription.Resource) gin.HandlerFunc {
	if !resource.IsValid() {
		panic("unknown subscription resource: " + string(resource))
	}
	return func(c *gin.Context) {
		firmID := GetFirmID(c)
		if firmID == uuid.Nil {
			abortUnauthenticated(c)
			return
		}
		if err := g.gate.RequireQuota(c.Request.Context(), firmID, resource, 1); err != nil {
			g.deny(c, err, zap.String("resource", string(resource)))
			return
		}
		c.Next()
	}
}

// RequireFeature rejects the request with 403 when the plan lacks f
func (g *SubscriptionGuard) RequireFeature(f subscription.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		firmID := GetFirmID(c)
		if firmID == uuid.Nil {
			abortUnauthenticated(c)
			return
		}
		if err := g.gate.RequireFeature(c.Request.Context(), firmID, f); err != nil {
			g.deny(c, err, zap.String("feature", string(f)))
			return
		}
		c.Next()
	}
}

func (g *SubscriptionGuard) deny(c *gin.Context, err error, field zap.Field) {
	code, message := domainErrorCode(err)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Subscription check failed", field, zap.Error(err))
	} else {
		g.logger.Info("Subscription check denied request",
			zap.String("firm_id", GetFirmID(c).String()),
			zap.String("code", code),
			field)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
}

// domainErrorCode returns the API code and message of err; errors that are
// not domain errors become internal errors
func domainErrorCode(err error) (code, message string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return dto.NormalizeErrorCode(domainErr.Code), domainErr.Message
	}
	return dto.ErrCodeInternal, "An unexpected error occurred"
}
