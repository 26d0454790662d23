// Package dashboard assembles the per-firm home screen summary.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	appsub "github.com/lexdesk/backend/internal/application/subscription"
	"github.com/lexdesk/backend/internal/domain/calendar"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// UpcomingWindow is how far ahead events are counted
	UpcomingWindow = 7 * 24 * time.Hour
	// NextEventsLimit caps the events listed on the summary
	NextEventsLimit = 5
)

// StatusReader returns the firm's plan, access state and usage
type StatusReader interface {
	GetStatus(ctx context.Context, firmID uuid.UUID) (*appsub.StatusResponse, error)
}

// SummaryResponse is the dashboard payload
type SummaryResponse struct {
	ActiveClients       int64                      `json:"active_clients"`
	OpenCases           int64                      `json:"open_cases"`
	UpcomingEvents      int64                      `json:"upcoming_events"`
	NextEvents          []EventBrief               `json:"next_events"`
	OutstandingBalance  decimal.Decimal            `json:"outstanding_balance"`
	Currency            string                     `json:"currency"`
	InvoicesThisMonth   int64                      `json:"invoices_this_month"`
	UnreadNotifications int64                      `json:"unread_notifications"`
	Plan                string                     `json:"plan"`
	Access              appsub.AccessStateResponse `json:"access"`
	Usage               []subscription.QuotaCheck  `json:"usage"`
	GeneratedAt         time.Time                  `json:"generated_at"`
}

// EventBrief is an upcoming event on the summary
type EventBrief struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	Type     string     `json:"type"`
	StartAt  time.Time  `json:"start_at"`
	Location string     `json:"location,omitempty"`
	CaseID   *uuid.UUID `json:"case_id,omitempty"`
}

// DashboardService computes firm summaries
type DashboardService struct {
	firms         firm.FirmRepository
	clients       client.ClientRepository
	cases         matter.CaseRepository
	events        calendar.EventRepository
	invoices      invoice.InvoiceRepository
	notifications messaging.NotificationRepository
	status        StatusReader
	logger        *zap.Logger
	now           func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	firms firm.FirmRepository,
	clients client.ClientRepository,
	cases matter.CaseRepository,
	events calendar.EventRepository,
	invoices invoice.InvoiceRepository,
	notifications messaging.NotificationRepository,
	status StatusReader,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		firms:         firms,
		clients:       clients,
		cases:         cases,
		events:        events,
		invoices:      invoices,
		notifications: notifications,
		status:        status,
		logger:        logger,
		now:           time.Now,
	}
}

// Summary returns the dashboard for the profile viewing it
func (s *DashboardService) Summary(ctx context.Context, firmID, profileID uuid.UUID) (*SummaryResponse, error) {
	now := s.now()
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	out := &SummaryResponse{Currency: f.Currency, GeneratedAt: now}

	if out.ActiveClients, err = s.clients.CountForFirm(ctx, firmID); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if out.OpenCases, err = s.cases.CountByStatus(ctx, firmID, matter.StatusOpen, matter.StatusInProgress, matter.StatusPending); err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}

	until := now.Add(UpcomingWindow)
	if out.UpcomingEvents, err = s.events.CountUpcoming(ctx, firmID, now, until); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	upcoming, err := s.events.FindInRange(ctx, firmID, now, until)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out.NextEvents = nextEvents(upcoming, now)

	if out.OutstandingBalance, err = s.invoices.OutstandingTotal(ctx, firmID); err != nil {
		return nil, fmt.Errorf("outstanding total: %w", err)
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if out.InvoicesThisMonth, err = s.invoices.CountCreatedSince(ctx, firmID, monthStart); err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}
	if out.UnreadNotifications, err = s.notifications.CountUnread(ctx, firmID, profileID); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	st, err := s.status.GetStatus(ctx, firmID)
	if err != nil {
		return nil, err
	}
	out.Plan = st.Plan
	out.Access = st.Access
	out.Usage = st.Usage

	s.logger.Debug("Dashboard computed",
		zap.String("firm_id", firmID.String()),
		zap.Duration("elapsed", s.now().Sub(now)))
	return out, nil
}

// nextEvents keeps scheduled events that have not started, soonest first
func nextEvents(events []calendar.Event, now time.Time) []EventBrief {
	out := make([]EventBrief, 0, NextEventsLimit)
	sort.Slice(events, func(i, j int) bool { return events[i].StartAt.Before(events[j].StartAt) })
	for _, e := range events {
		if e.Status != calendar.StatusScheduled || e.StartAt.Before(now) {
			continue
		}
		out = append(out, EventBrief{
			ID:       e.ID,
			Title:    e.Title,
			Type:     string(e.Type),
			StartAt:  e.StartAt,
			Location: e.Location,
			CaseID:   e.CaseID,
		})
		if len(out) == NextEventsLimit {
			break
		}
	}
	return out
}
