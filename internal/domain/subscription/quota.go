package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// CanAdd reports whether one more unit fits: unlimited, or used < limit
func CanAdd(used int64, limit int) bool {
	if limit < 0 {
		return true
	}
	return used < int64(limit)
}

// CanAddN reports whether n more units fit
func CanAddN(used int64, n int64, limit int) bool {
	if limit < 0 {
		return true
	}
	return used+n <= int64(limit)
}

// Remaining returns the units left, or -1 when unlimited
func Remaining(used int64, limit int) int64 {
	if limit < 0 {
		return Unlimited
	}
	if used >= int64(limit) {
		return 0
	}
	return int64(limit) - used
}

// UsagePercent returns used/limit as a percentage, 0 for unlimited
func UsagePercent(used int64, limit int) float64 {
	if limit <= 0 {
		if limit == 0 && used > 0 {
			return 100
		}
		return 0
	}
	return float64(used) / float64(limit) * 100
}

// QuotaCheck is the result of checking one resource
type QuotaCheck struct {
	Resource  Resource `json:"resource"`
	Used      int64    `json:"used"`
	Limit     int      `json:"limit"`
	Remaining int64    `json:"remaining"`
	CanAdd    bool     `json:"can_add"`
	Unlimited bool     `json:"unlimited"`
	Percent   float64  `json:"percent"`
}

// Check builds a QuotaCheck for resource
func Check(resource Resource, used int64, limit int) QuotaCheck {
	return QuotaCheck{
		Resource:  resource,
		Used:      used,
		Limit:     limit,
		Remaining: Remaining(used, limit),
		CanAdd:    CanAdd(used, limit),
		Unlimited: limit < 0,
		Percent:   UsagePercent(used, limit),
	}
}

// Err returns a QUOTA_EXCEEDED error when no unit can be added
func (q QuotaCheck) Err() error {
	if q.CanAdd {
		return nil
	}
	return shared.NewDomainError("QUOTA_EXCEEDED",
		fmt.Sprintf("Plan limit reached for %s (%d/%d)", q.Resource, q.Used, q.Limit))
}

// UsageCounter reports the current usage of a resource by a firm.
// Monthly resources count from the first day of the current month.
type UsageCounter interface {
	CountUsage(ctx context.Context, firmID uuid.UUID, resource Resource) (int64, error)
}

// Gate enforces plan limits and features before a write. Application
// services depend on it rather than on the subscription service itself.
type Gate interface {
	// RequireQuota fails with QUOTA_EXCEEDED unless n more units fit
	RequireQuota(ctx context.Context, firmID uuid.UUID, resource Resource, n int64) error
	// RequireFeature fails with FEATURE_NOT_AVAILABLE when the plan lacks f
	RequireFeature(ctx context.Context, firmID uuid.UUID, f Feature) error
}
