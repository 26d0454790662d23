package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/shopspring/decimal"
)

// AccessStateResponse is the access part of the status endpoint
type AccessStateResponse struct {
	Level              string     `json:"level"`
	Reason             string     `json:"reason,omitempty"`
	HasAccess          bool       `json:"has_access"`
	IsTrial            bool       `json:"is_trial"`
	IsExpired          bool       `json:"is_expired"`
	InGracePeriod      bool       `json:"in_grace_period"`
	ExpiringSoon       bool       `json:"expiring_soon"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	GraceEndsAt        *time.Time `json:"grace_ends_at,omitempty"`
	DaysRemaining      int        `json:"days_remaining"`
	GraceDaysRemaining int        `json:"grace_days_remaining"`
	EvaluatedAt        time.Time  `json:"evaluated_at"`
}

// ToAccessStateResponse converts a domain access state
func ToAccessStateResponse(s subscription.AccessState) AccessStateResponse {
	return AccessStateResponse{
		Level:              string(s.Level),
		Reason:             string(s.Reason),
		HasAccess:          s.HasAccess,
		IsTrial:            s.IsTrial,
		IsExpired:          s.IsExpired,
		InGracePeriod:      s.InGracePeriod,
		ExpiringSoon:       s.ExpiringSoon,
		ExpiresAt:          s.ExpiresAt,
		GraceEndsAt:        s.GraceEndsAt,
		DaysRemaining:      s.DaysRemaining,
		GraceDaysRemaining: s.GraceDaysRemaining,
		EvaluatedAt:        s.EvaluatedAt,
	}
}

// StatusResponse is the full subscription status of a firm
type StatusResponse struct {
	FirmID                uuid.UUID                 `json:"firm_id"`
	Plan                  string                    `json:"plan"`
	PlanName              string                    `json:"plan_name"`
	Status                string                    `json:"status"`
	TrialEndsAt           *time.Time                `json:"trial_ends_at,omitempty"`
	SubscriptionStartedAt *time.Time                `json:"subscription_started_at,omitempty"`
	SubscriptionExpiresAt *time.Time                `json:"subscription_expires_at,omitempty"`
	SuspendedReason       string                    `json:"suspended_reason,omitempty"`
	Access                AccessStateResponse       `json:"access"`
	Usage                 []subscription.QuotaCheck `json:"usage"`
	Features              []string                  `json:"features"`
}

// PlanResponse describes a plan for the pricing page
type PlanResponse struct {
	Plan         string                        `json:"plan"`
	Name         string                        `json:"name"`
	MonthlyPrice decimal.Decimal               `json:"monthly_price"`
	Currency     string                        `json:"currency"`
	Purchasable  bool                          `json:"purchasable"`
	Limits       map[subscription.Resource]int `json:"limits"`
	Features     []string                      `json:"features"`
	Prices       []PeriodPrice                 `json:"prices"`
}

// PeriodPrice is the amount due for one billing period
type PeriodPrice struct {
	Months int             `json:"months"`
	Amount decimal.Decimal `json:"amount"`
}

// ToPlanResponse converts a plan definition
func ToPlanResponse(d subscription.PlanDefinition, currency string) PlanResponse {
	resp := PlanResponse{
		Plan:         string(d.Plan),
		Name:         d.Name,
		MonthlyPrice: d.MonthlyPrice,
		Currency:     currency,
		Purchasable:  d.Purchasable(),
		Limits:       make(map[subscription.Resource]int, len(d.Limits)),
		Features:     featureList(d),
	}
	for _, r := range subscription.AllResources() {
		resp.Limits[r] = d.Limit(r)
	}
	if d.Purchasable() {
		for _, m := range subscription.AllowedPeriods {
			resp.Prices = append(resp.Prices, PeriodPrice{Months: m, Amount: d.PriceFor(m)})
		}
	}
	return resp
}

func featureList(d subscription.PlanDefinition) []string {
	all := []subscription.Feature{
		subscription.FeatureSMS,
		subscription.FeatureWhatsApp,
		subscription.FeatureInvoicePDF,
		subscription.FeatureTimeTracking,
		subscription.FeatureDocumentStorage,
	}
	out := make([]string, 0, len(all))
	for _, f := range all {
		if d.HasFeature(f) {
			out = append(out, string(f))
		}
	}
	return out
}

// ChangePlanRequest switches a firm to another plan
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=starter professional enterprise"`
}

// ActivateRequest applies a paid period without a gateway, for
// back-office renewals
type ActivateRequest struct {
	Plan   string `json:"plan" binding:"required,oneof=starter professional enterprise"`
	Months int    `json:"months" binding:"required,oneof=1 3 6 12"`
}

// ActivateResponse reports the applied period
type ActivateResponse struct {
	Plan        string    `json:"plan"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// SuspendRequest blocks a firm
type SuspendRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SweepResult counts what one subscription sweep did
type SweepResult struct {
	Scanned       int `json:"scanned"`
	RemindersSent int `json:"reminders_sent"`
	GraceNotices  int `json:"grace_notices"`
	Expired       int `json:"expired"`
	Failed        int `json:"failed"`
}

func planOf(p string) firm.Plan {
	return firm.Plan(p)
}
