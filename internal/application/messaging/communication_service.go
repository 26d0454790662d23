// Package messaging sends and logs client communications and manages
// in-app notifications.
package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// MessageSender delivers on whichever channels are configured
type MessageSender interface {
	Has(channel messaging.Channel) bool
	Send(ctx context.Context, msg messaging.OutboundMessage) (messaging.DeliveryResult, error)
}

// CommunicationService sends messages to clients and keeps the log
type CommunicationService struct {
	comms    messaging.CommunicationRepository
	clients  client.ClientRepository
	cases    matter.CaseRepository
	firms    firm.FirmRepository
	sender   MessageSender
	renderer *messaging.Renderer
	gate     subscription.Gate
	logger   *zap.Logger
	now      func() time.Time
}

// NewCommunicationService creates a new CommunicationService
func NewCommunicationService(
	comms messaging.CommunicationRepository,
	clients client.ClientRepository,
	cases matter.CaseRepository,
	firms firm.FirmRepository,
	sender MessageSender,
	renderer *messaging.Renderer,
	gate subscription.Gate,
	logger *zap.Logger,
) *CommunicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = messaging.MustNewRenderer()
	}
	return &CommunicationService{
		comms:    comms,
		clients:  clients,
		cases:    cases,
		firms:    firms,
		sender:   sender,
		renderer: renderer,
		gate:     gate,
		logger:   logger,
		now:      time.Now,
	}
}

// Send delivers a message and logs it with its final status. A delivery
// failure is logged as failed and returned as DELIVERY_FAILED.
func (s *CommunicationService) Send(ctx context.Context, firmID, actorID uuid.UUID, req SendMessageRequest) (*CommunicationResponse, error) {
	channel := messaging.Channel(req.Channel)
	if err := s.checkPlan(ctx, firmID, channel); err != nil {
		return nil, err
	}

	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.resolveRecipient(ctx, firmID, channel, req)
	if err != nil {
		return nil, err
	}
	if req.CaseID != nil {
		if _, err := s.cases.FindByIDForFirm(ctx, firmID, *req.CaseID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CASE", "Case does not exist")
			}
			return nil, err
		}
	}

	subject, body := req.Subject, req.Body
	if req.Template != "" {
		typ := messaging.NotificationType(req.Template)
		if !s.renderer.Has(typ) {
			return nil, shared.NewDomainError("INVALID_TEMPLATE", "Unknown message template")
		}
		data := map[string]any{"FirmName": f.Name, "Currency": f.Currency}
		for k, v := range req.Data {
			data[k] = v
		}
		rendered, err := s.renderer.Render(string(f.Locale), typ, data)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_TEMPLATE", err.Error())
		}
		subject, body = rendered.Title, rendered.Body
	}

	comm, err := messaging.NewOutbound(firmID, channel, recipient, subject, body)
	if err != nil {
		return nil, err
	}
	comm.Link(req.ClientID, req.CaseID)
	comm.Template = req.Template
	comm.SetCreatedBy(actorID)
	if err := s.comms.Save(ctx, comm); err != nil {
		return nil, err
	}

	deliveryErr := s.deliver(ctx, comm, f.Name)
	if err := s.comms.Save(ctx, comm); err != nil {
		return nil, err
	}
	if deliveryErr != nil {
		return nil, deliveryErr
	}
	resp := ToCommunicationResponse(comm)
	return &resp, nil
}

// LogInbound records a message received from a client
func (s *CommunicationService) LogInbound(ctx context.Context, firmID, actorID uuid.UUID, req LogInboundRequest) (*CommunicationResponse, error) {
	if req.ClientID != nil {
		if _, err := s.findClient(ctx, firmID, *req.ClientID); err != nil {
			return nil, err
		}
	}
	receivedAt := s.now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	comm, err := messaging.NewInbound(firmID, messaging.Channel(req.Channel), req.Sender, req.Subject, req.Body, receivedAt)
	if err != nil {
		return nil, err
	}
	comm.Link(req.ClientID, req.CaseID)
	comm.SetCreatedBy(actorID)
	if err := s.comms.Save(ctx, comm); err != nil {
		return nil, err
	}
	resp := ToCommunicationResponse(comm)
	return &resp, nil
}

// GetByID retrieves a logged communication
func (s *CommunicationService) GetByID(ctx context.Context, firmID, id uuid.UUID) (*CommunicationResponse, error) {
	c, err := s.comms.FindByIDForFirm(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCommunicationResponse(c)
	return &resp, nil
}

// List retrieves a paginated communication log
func (s *CommunicationService) List(ctx context.Context, firmID uuid.UUID, filter CommunicationListFilter) ([]CommunicationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
		From:     filter.StartDate,
		To:       filter.EndDate,
	}
	if filter.Channel != "" {
		domainFilter.Filters["channel"] = filter.Channel
	}
	if filter.Direction != "" {
		domainFilter.Filters["direction"] = filter.Direction
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.CaseID != "" {
		domainFilter.Filters["case_id"] = filter.CaseID
	}

	comms, total, err := s.comms.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CommunicationResponse, len(comms))
	for i := range comms {
		out[i] = ToCommunicationResponse(&comms[i])
	}
	return out, total, nil
}

// checkPlan applies the plan's channel features and monthly SMS allowance
func (s *CommunicationService) checkPlan(ctx context.Context, firmID uuid.UUID, channel messaging.Channel) error {
	switch channel {
	case messaging.ChannelSMS:
		if err := s.gate.RequireFeature(ctx, firmID, subscription.FeatureSMS); err != nil {
			return err
		}
		return s.gate.RequireQuota(ctx, firmID, subscription.ResourceSMSPerMonth, 1)
	case messaging.ChannelWhatsApp:
		return s.gate.RequireFeature(ctx, firmID, subscription.FeatureWhatsApp)
	}
	return nil
}

func (s *CommunicationService) resolveRecipient(ctx context.Context, firmID uuid.UUID, channel messaging.Channel, req SendMessageRequest) (string, error) {
	if req.ClientID == nil {
		if req.Recipient == "" {
			return "", shared.NewDomainError("INVALID_RECIPIENT", "A recipient or a client is required")
		}
		return req.Recipient, nil
	}
	c, err := s.findClient(ctx, firmID, *req.ClientID)
	if err != nil {
		return "", err
	}
	if req.Recipient != "" {
		return req.Recipient, nil
	}
	if channel == messaging.ChannelEmail {
		if !c.HasReachableEmail() {
			return "", shared.NewDomainError("INVALID_RECIPIENT", "Client has no email address")
		}
		return c.Email, nil
	}
	if c.Phone == "" {
		return "", shared.NewDomainError("INVALID_RECIPIENT", "Client has no phone number")
	}
	return c.Phone, nil
}

func (s *CommunicationService) findClient(ctx context.Context, firmID, clientID uuid.UUID) (*client.Client, error) {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CLIENT", "Client does not exist")
		}
		return nil, err
	}
	return c, nil
}

// deliver sends comm and records the outcome on it
func (s *CommunicationService) deliver(ctx context.Context, comm *messaging.Communication, fromName string) error {
	if s.sender == nil || !s.sender.Has(comm.Channel) {
		comm.MarkFailed("", messaging.ErrChannelNotConfigured)
		return shared.NewDomainError("CHANNEL_NOT_CONFIGURED", "This channel is not configured")
	}
	res, err := s.sender.Send(ctx, messaging.OutboundMessage{
		Channel:  comm.Channel,
		To:       comm.Recipient,
		Subject:  comm.Subject,
		Body:     comm.Body,
		FromName: fromName,
	})
	if err != nil {
		comm.MarkFailed(res.Provider, err)
		s.logger.Warn("Communication failed",
			zap.String("communication_id", comm.ID.String()),
			zap.String("channel", string(comm.Channel)),
			zap.Error(err))
		return shared.NewDomainError("DELIVERY_FAILED", "The message could not be delivered")
	}
	comm.MarkSent(res.Provider, res.MessageID, s.now())
	s.logger.Info("Communication sent",
		zap.String("communication_id", comm.ID.String()),
		zap.String("channel", string(comm.Channel)),
		zap.String("provider", res.Provider))
	return nil
}
