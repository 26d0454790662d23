package subscription

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// Notifier creates firm-wide notices. NotifyFirmOnce does nothing and
// returns false when a notice with the same type and link exists since.
type Notifier interface {
	NotifyFirmOnce(ctx context.Context, firmID uuid.UUID, typ messaging.NotificationType, link string, since time.Time, data map[string]any) (bool, error)
}

// Sweep walks every trial and active firm: it sends expiry reminders at
// the configured days before expiry, a notice on entering the grace
// period, and marks firms expired once the grace period is over.
// One failing firm never stops the sweep.
func (s *SubscriptionService) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	firms, err := s.firmRepo.FindByStatuses(ctx, firm.StatusTrial, firm.StatusActive)
	if err != nil {
		return result, fmt.Errorf("failed to load firms: %w", err)
	}

	now := s.now()
	for i := range firms {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		f := &firms[i]
		result.Scanned++
		if err := s.sweepFirm(ctx, f, now, &result); err != nil {
			result.Failed++
			s.logger.Error("Subscription sweep failed for firm",
				zap.String("firm_id", f.ID.String()),
				zap.Error(err))
		}
	}
	return result, nil
}

func (s *SubscriptionService) sweepFirm(ctx context.Context, f *firm.Firm, now time.Time, result *SweepResult) error {
	state := subscription.Evaluate(f, now, s.cfg.Policy)

	switch {
	case state.Reason == subscription.BlockExpired:
		if err := s.expire(ctx, f); err != nil {
			return err
		}
		result.Expired++

	case state.InGracePeriod:
		sent, err := s.notify(ctx, f, messaging.TypeSubscriptionGrace, "grace", state, map[string]any{
			"ExpiresAt":   *state.ExpiresAt,
			"GraceEndsAt": *state.GraceEndsAt,
		})
		if err != nil {
			return err
		}
		if sent {
			result.GraceNotices++
		}

	case state.ExpiresAt != nil && !state.IsExpired:
		threshold, ok := reminderThreshold(s.cfg.ReminderDays, state.DaysRemaining)
		if !ok {
			return nil
		}
		sent, err := s.notify(ctx, f, messaging.TypeSubscriptionExpiring, fmt.Sprintf("expiring-%d", threshold), state, map[string]any{
			"Plan":          string(f.Plan),
			"ExpiresAt":     *state.ExpiresAt,
			"DaysRemaining": state.DaysRemaining,
		})
		if err != nil {
			return err
		}
		if sent {
			result.RemindersSent++
		}
	}
	return nil
}

func (s *SubscriptionService) expire(ctx context.Context, f *firm.Firm) error {
	if err := f.MarkExpired(); err != nil {
		return err
	}
	if err := s.save(ctx, f); err != nil {
		return err
	}
	s.logger.Info("Subscription expired",
		zap.String("firm_id", f.ID.String()),
		zap.String("plan", string(f.Plan)))
	return nil
}

// notify sends one notice per subscription period; the link carries the
// expiry date so a renewed firm gets fresh reminders
func (s *SubscriptionService) notify(ctx context.Context, f *firm.Firm, typ messaging.NotificationType, tag string, state subscription.AccessState, data map[string]any) (bool, error) {
	if s.notifier == nil {
		return false, nil
	}
	link := fmt.Sprintf("/subscription?notice=%s&period=%s", tag, state.ExpiresAt.UTC().Format("20060102"))
	since := state.ExpiresAt.AddDate(0, 0, -(maxDays(s.cfg.ReminderDays) + 1))
	return s.notifier.NotifyFirmOnce(ctx, f.ID, typ, link, since, data)
}

// reminderThreshold picks the smallest configured reminder day that the
// remaining days have reached
func reminderThreshold(days []int, remaining int) (int, bool) {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	for _, d := range sorted {
		if d > 0 && remaining <= d {
			return d, true
		}
	}
	return 0, false
}

func maxDays(days []int) int {
	m := 0
	for _, d := range days {
		if d > m {
			m = d
		}
	}
	return m
}
