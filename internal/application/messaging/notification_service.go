package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationService creates in-app notifications and mirrors them by
// email when asked
type NotificationService struct {
	notifications messaging.NotificationRepository
	firms         firm.FirmRepository
	profiles      firm.ProfileRepository
	renderer      *messaging.Renderer
	sender        MessageSender
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotificationService creates a NotificationService. sender may be nil,
// which disables the email copy.
func NewNotificationService(
	notifications messaging.NotificationRepository,
	firms firm.FirmRepository,
	profiles firm.ProfileRepository,
	renderer *messaging.Renderer,
	sender MessageSender,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = messaging.MustNewRenderer()
	}
	return &NotificationService{
		notifications: notifications,
		firms:         firms,
		profiles:      profiles,
		renderer:      renderer,
		sender:        sender,
		logger:        logger,
		now:           time.Now,
	}
}

// Notify stores a notification and sends the optional email copy. Email
// failures are logged and do not fail the call.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*NotificationResponse, error) {
	f, err := s.firms.FindByID(ctx, in.FirmID)
	if err != nil {
		return nil, err
	}

	title, message := in.Title, in.Message
	if s.renderer.Has(in.Type) {
		data := map[string]any{"FirmName": f.Name, "Currency": f.Currency}
		for k, v := range in.Data {
			data[k] = v
		}
		rendered, err := s.renderer.Render(string(f.Locale), in.Type, data)
		if err != nil {
			return nil, err
		}
		title, message = rendered.Title, rendered.Body
	}

	n, err := messaging.NewNotification(in.FirmID, in.ProfileID, in.Type, title, message)
	if err != nil {
		return nil, err
	}
	n.Link = in.Link
	if in.Priority != "" {
		n.WithPriority(in.Priority)
	}
	if err := s.notifications.Save(ctx, n); err != nil {
		return nil, err
	}

	if in.Email {
		s.mail(ctx, f, n)
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// NotifyFirmOnce creates a firm-wide notice unless one with the same type
// and link exists since. It reports whether a notice was created.
func (s *NotificationService) NotifyFirmOnce(ctx context.Context, firmID uuid.UUID, typ messaging.NotificationType, link string, since time.Time, data map[string]any) (bool, error) {
	exists, err := s.notifications.ExistsSince(ctx, firmID, typ, link, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	priority := messaging.PriorityNormal
	if typ == messaging.TypeSubscriptionGrace || typ == messaging.TypeSubscriptionExpired {
		priority = messaging.PriorityHigh
	}
	if _, err := s.Notify(ctx, NotifyInput{
		FirmID:   firmID,
		Type:     typ,
		Link:     link,
		Priority: priority,
		Data:     data,
		Email:    true,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// NotifyProfile notifies one profile, or the whole firm when profileID is
// nil, and sends the email copy
func (s *NotificationService) NotifyProfile(ctx context.Context, firmID uuid.UUID, profileID *uuid.UUID, typ messaging.NotificationType, link string, data map[string]any) error {
	_, err := s.Notify(ctx, NotifyInput{
		FirmID:    firmID,
		ProfileID: profileID,
		Type:      typ,
		Link:      link,
		Data:      data,
		Email:     true,
	})
	return err
}

// List returns the profile's notifications, newest first
func (s *NotificationService) List(ctx context.Context, firmID, profileID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	items, total, err := s.notifications.FindForProfile(ctx, firmID, profileID, filter.UnreadOnly, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = ToNotificationResponse(&items[i])
	}
	return out, total, nil
}

// UnreadCount returns the unread badge count
func (s *NotificationService) UnreadCount(ctx context.Context, firmID, profileID uuid.UUID) (*UnreadCountResponse, error) {
	n, err := s.notifications.CountUnread(ctx, firmID, profileID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Unread: n}, nil
}

// MarkRead marks one notification visible to the profile as read
func (s *NotificationService) MarkRead(ctx context.Context, firmID, profileID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.visible(ctx, firmID, profileID, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead() {
		n.MarkRead(s.now())
		if err := s.notifications.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// MarkAllRead marks every notification visible to the profile as read
func (s *NotificationService) MarkAllRead(ctx context.Context, firmID, profileID uuid.UUID) (*MarkAllReadResponse, error) {
	updated, err := s.notifications.MarkAllRead(ctx, firmID, profileID, s.now())
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: updated}, nil
}

// Delete removes a notification visible to the profile
func (s *NotificationService) Delete(ctx context.Context, firmID, profileID, id uuid.UUID) error {
	if _, err := s.visible(ctx, firmID, profileID, id); err != nil {
		return err
	}
	return s.notifications.DeleteForFirm(ctx, firmID, id)
}

func (s *NotificationService) visible(ctx context.Context, firmID, profileID, id uuid.UUID) (*messaging.Notification, error) {
	n, err := s.notifications.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	if !n.VisibleTo(profileID) {
		return nil, shared.ErrNotFound
	}
	return n, nil
}

// mail sends the email copy to the target profile or to the firm address
func (s *NotificationService) mail(ctx context.Context, f *firm.Firm, n *messaging.Notification) {
	if s.sender == nil || !s.sender.Has(messaging.ChannelEmail) {
		return
	}
	to := f.Email
	if n.ProfileID != nil {
		p, err := s.profiles.FindByIDForFirm(ctx, f.ID, *n.ProfileID)
		if err != nil {
			s.logger.Warn("Notification email skipped", zap.Error(err))
			return
		}
		if !p.Active {
			return
		}
		to = p.Email
	}
	if to == "" {
		return
	}
	if _, err := s.sender.Send(ctx, messaging.OutboundMessage{
		Channel:  messaging.ChannelEmail,
		To:       to,
		Subject:  n.Title,
		Body:     n.Message,
		FromName: f.Name,
	}); err != nil {
		s.logger.Warn("Notification email failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err))
	}
}
