// Package payment runs subscription payments through the mobile-money
// gateways and records manual invoice payments.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrCallbackUnknownTransaction is returned when a callback matches no transaction
	ErrCallbackUnknownTransaction = errors.New("payment callback: unknown transaction")
	// ErrCallbackUnderpaid is returned when the reported amount is below the amount due
	ErrCallbackUnderpaid = errors.New("payment callback: amount below the amount due")
)

// maxConflictAttempts bounds the retries after a version conflict
const maxConflictAttempts = 3

// AccessInvalidator drops cached subscription access after a renewal
type AccessInvalidator interface {
	Invalidate(ctx context.Context, firmID uuid.UUID)
}

// ServiceConfig holds the callback settings
type ServiceConfig struct {
	// CallbackBaseURL is extended with /<provider>
	CallbackBaseURL string
	ReturnURL       string
	Currency        string
	DedupeTTL       time.Duration
}

// PaymentService initiates, settles and lists payments
type PaymentService struct {
	gateways     *payment.GatewayRegistry
	validator    *payment.ValidationService
	firms        firm.FirmRepository
	payments     payment.SubscriptionPaymentRepository
	transactions payment.TransactionRepository
	scope        TransactionScope
	idempotency  shared.IdempotencyStore
	access       AccessInvalidator
	publisher    shared.EventPublisher
	cfg          ServiceConfig
	logger       *zap.Logger
	now          func() time.Time
}

// PaymentServiceDeps groups the collaborators of PaymentService
type PaymentServiceDeps struct {
	Gateways     *payment.GatewayRegistry
	Validator    *payment.ValidationService
	Firms        firm.FirmRepository
	Payments     payment.SubscriptionPaymentRepository
	Transactions payment.TransactionRepository
	Scope        TransactionScope
	Idempotency  shared.IdempotencyStore
	Access       AccessInvalidator
	Publisher    shared.EventPublisher
	Logger       *zap.Logger
}

// NewPaymentService creates a PaymentService
func NewPaymentService(deps PaymentServiceDeps, cfg ServiceConfig) *PaymentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = 24 * time.Hour
	}
	gateways := deps.Gateways
	if gateways == nil {
		gateways = payment.NewGatewayRegistry()
	}
	return &PaymentService{
		gateways:     gateways,
		validator:    deps.Validator,
		firms:        deps.Firms,
		payments:     deps.Payments,
		transactions: deps.Transactions,
		scope:        deps.Scope,
		idempotency:  deps.Idempotency,
		access:       deps.Access,
		publisher:    deps.Publisher,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Providers lists the configured gateways
func (s *PaymentService) Providers() ProvidersResponse {
	providers := s.gateways.Providers()
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = string(p)
	}
	return ProvidersResponse{Providers: out, Currency: strings.ToUpper(s.cfg.Currency)}
}

// InitiateSubscriptionPayment validates the request, records a pending
// payment and asks the gateway to collect it. A gateway failure marks the
// payment failed and is returned to the caller.
func (s *PaymentService) InitiateSubscriptionPayment(ctx context.Context, firmID uuid.UUID, req InitiateSubscriptionPaymentRequest) (*SubscriptionPaymentResponse, error) {
	validated, err := s.validator.Validate(ctx, payment.SubscriptionPaymentRequest{
		FirmID:   firmID,
		Plan:     firm.Plan(req.Plan),
		Months:   req.Months,
		Amount:   req.Amount,
		Currency: req.Currency,
		Provider: payment.Provider(req.Provider),
		Phone:    req.Phone,
	})
	if err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(validated.Provider)
	if err != nil {
		return nil, err
	}
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}

	p := payment.NewSubscriptionPayment(firmID, validated.Plan.Plan, validated.Months,
		validated.Amount, validated.Currency, validated.Provider, validated.Phone)
	tx, err := payment.NewTransaction(firmID, payment.PurposeSubscription, validated.Provider,
		validated.Provider.Method(), validated.Amount, validated.Currency)
	if err != nil {
		return nil, err
	}
	tx.ForSubscription(p.ID)
	tx.PayerPhone = validated.Phone
	p.AttachTransaction(tx.ID)

	if err := s.persist(ctx, p, tx); err != nil {
		return nil, err
	}

	resp, gwErr := gateway.InitiatePayment(ctx, &payment.InitiateRequest{
		ExternalID:    tx.ExternalID,
		Amount:        validated.Amount,
		Currency:      validated.Currency,
		PayerPhone:    validated.Phone,
		Description:   fmt.Sprintf("Abonnement %s %d mois", validated.Plan.Name, validated.Months),
		CallbackURL:   s.callbackURL(validated.Provider),
		ReturnURL:     s.cfg.ReturnURL,
		CustomerName:  f.Name,
		CustomerEmail: f.Email,
	})
	if gwErr != nil {
		s.logger.Warn("Payment initiation failed",
			zap.String("firm_id", firmID.String()),
			zap.String("provider", string(validated.Provider)),
			zap.String("external_id", tx.ExternalID),
			zap.Error(gwErr))
		reason := truncate(gwErr.Error(), 500)
		_ = tx.Fail(reason)
		_ = p.Fail(reason)
		if err := s.persist(ctx, p, tx); err != nil {
			s.logger.Error("Failed to record failed payment", zap.Error(err))
		}
		s.publish(ctx, p.GetDomainEvents()...)
		p.ClearDomainEvents()
		return nil, gwErr
	}

	tx.Initiated(resp.ProviderReference, resp.PaymentURL)
	if err := p.MarkProcessing(); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Payment initiated",
		zap.String("firm_id", firmID.String()),
		zap.String("payment_id", p.ID.String()),
		zap.String("provider", string(validated.Provider)),
		zap.String("external_id", tx.ExternalID),
		zap.String("amount", validated.Amount.String()))

	if resp.Status != payment.GatewayStatusPending && resp.Status != "" {
		if _, err := s.settle(ctx, tx.ID, firmID, &payment.StatusResponse{
			Provider:          resp.Provider,
			ExternalID:        tx.ExternalID,
			ProviderReference: resp.ProviderReference,
			Status:            resp.Status,
		}); err != nil {
			return nil, err
		}
		return s.GetSubscriptionPayment(ctx, firmID, p.ID)
	}

	out := ToSubscriptionPaymentResponse(p, tx)
	return &out, nil
}

func (s *PaymentService) persist(ctx context.Context, p *payment.SubscriptionPayment, tx *payment.Transaction) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.SubscriptionPayments().Save(ctx, p); err != nil {
			return err
		}
		return repos.Transactions().Save(ctx, tx)
	})
}

func (s *PaymentService) callbackURL(provider payment.Provider) string {
	if s.cfg.CallbackBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.CallbackBaseURL, "/") + "/" + string(provider)
}

// GetSubscriptionPayment returns one payment of the firm
func (s *PaymentService) GetSubscriptionPayment(ctx context.Context, firmID, paymentID uuid.UUID) (*SubscriptionPaymentResponse, error) {
	p, err := s.payments.FindByIDForFirm(ctx, firmID, paymentID)
	if err != nil {
		return nil, err
	}
	var tx *payment.Transaction
	if p.TransactionID != nil {
		tx, err = s.transactions.FindByIDForFirm(ctx, firmID, *p.TransactionID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	out := ToSubscriptionPaymentResponse(p, tx)
	return &out, nil
}

// RefreshPaymentStatus asks the gateway for the current outcome of an
// unsettled payment and applies it
func (s *PaymentService) RefreshPaymentStatus(ctx context.Context, firmID, paymentID uuid.UUID) (*SubscriptionPaymentResponse, error) {
	p, err := s.payments.FindByIDForFirm(ctx, firmID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsFinal() || p.TransactionID == nil {
		return s.GetSubscriptionPayment(ctx, firmID, paymentID)
	}
	tx, err := s.transactions.FindByIDForFirm(ctx, firmID, *p.TransactionID)
	if err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(tx.Provider)
	if err != nil {
		return nil, err
	}
	status, err := gateway.QueryPayment(ctx, tx.ExternalID, tx.ProviderReference)
	if err != nil {
		return nil, err
	}
	if _, err := s.settle(ctx, tx.ID, firmID, status); err != nil {
		return nil, err
	}
	return s.GetSubscriptionPayment(ctx, firmID, paymentID)
}

// HandleCallback verifies a gateway notification and applies the status
// it reports. Repeated notifications for the same transaction and outcome
// are acknowledged without being applied twice.
func (s *PaymentService) HandleCallback(ctx context.Context, provider payment.Provider, payload []byte, signature string) (*CallbackResult, error) {
	gateway, err := s.gateways.Get(provider)
	if err != nil {
		return nil, err
	}
	status, err := gateway.ParseCallback(ctx, payload, signature)
	if err != nil {
		s.logger.Warn("Callback verification failed",
			zap.String("provider", string(provider)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment callback received",
		zap.String("provider", string(provider)),
		zap.String("external_id", status.ExternalID),
		zap.String("provider_reference", status.ProviderReference),
		zap.String("status", string(status.Status)))

	tx, err := s.lookupTransaction(ctx, provider, status)
	if err != nil {
		return nil, err
	}
	result := &CallbackResult{
		Provider:   string(provider),
		ExternalID: tx.ExternalID,
		Status:     string(status.Status),
	}
	if status.Status == payment.GatewayStatusPending {
		return result, nil
	}

	key := fmt.Sprintf("%s:%s:%s", provider, tx.ExternalID, status.Status)
	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.cfg.DedupeTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check callback idempotency: %w", err)
		}
		if !fresh {
			s.logger.Info("Callback already processed", zap.String("idempotency_key", key))
			result.AlreadyProcessed = true
			return result, nil
		}
	}

	applied, err := s.settle(ctx, tx.ID, tx.FirmID, status)
	if err != nil {
		if s.idempotency != nil {
			if ferr := s.idempotency.Forget(ctx, key); ferr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(ferr))
			}
		}
		s.logger.Error("Failed to apply payment callback",
			zap.String("external_id", tx.ExternalID),
			zap.Error(err))
		return nil, err
	}
	result.AlreadyProcessed = !applied
	return result, nil
}

func (s *PaymentService) lookupTransaction(ctx context.Context, provider payment.Provider, status *payment.StatusResponse) (*payment.Transaction, error) {
	var (
		tx  *payment.Transaction
		err error
	)
	if status.ExternalID != "" {
		tx, err = s.transactions.FindByExternalID(ctx, provider, status.ExternalID)
	} else if status.ProviderReference != "" {
		tx, err = s.transactions.FindByProviderReference(ctx, provider, status.ProviderReference)
	} else {
		return nil, fmt.Errorf("%w: no reference", payment.ErrGatewayInvalidCallback)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrCallbackUnknownTransaction
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// settle applies a gateway outcome inside one database transaction. It
// returns false when the transaction was already settled.
func (s *PaymentService) settle(ctx context.Context, txID, firmID uuid.UUID, status *payment.StatusResponse) (bool, error) {
	target := status.Status.ToStatus()
	if !target.IsFinal() {
		return false, nil
	}

	var (
		applied bool
		events  []shared.DomainEvent
	)
	err := s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		applied, events = false, nil
		tx, err := repos.Transactions().FindByIDForFirm(ctx, firmID, txID)
		if err != nil {
			return err
		}
		if tx.Status.IsFinal() {
			return nil
		}
		// gateways collect whole units, so only an underpayment is refused
		if target == payment.StatusCompleted && !status.Amount.IsZero() && status.Amount.LessThan(tx.Amount.Floor()) {
			return fmt.Errorf("%w: got %s, expected %s", ErrCallbackUnderpaid,
				status.Amount.String(), tx.Amount.String())
		}
		if status.ProviderReference != "" && tx.ProviderReference == "" {
			tx.ProviderReference = status.ProviderReference
		}

		var (
			p *payment.SubscriptionPayment
			f *firm.Firm
		)
		if tx.SubscriptionPaymentID != nil {
			p, err = repos.SubscriptionPayments().FindByIDForFirm(ctx, firmID, *tx.SubscriptionPaymentID)
			if err != nil {
				return err
			}
		}

		now := s.now()
		switch target {
		case payment.StatusCompleted:
			paidAt := now
			if status.PaidAt != nil {
				paidAt = *status.PaidAt
			}
			if err := tx.Complete(paidAt); err != nil {
				return err
			}
			if p != nil && p.Status.InFlight() {
				f, err = repos.Firms().FindByID(ctx, firmID)
				if err != nil {
					return err
				}
				start, end, err := f.ActivateSubscription(p.Plan, p.Months, now)
				if err != nil {
					return err
				}
				if err := p.Complete(start, end, paidAt); err != nil {
					return err
				}
			}
		case payment.StatusCancelled:
			reason := firstNonEmpty(status.Reason, "cancelled by payer")
			if err := tx.Fail(reason); err != nil {
				return err
			}
			if p != nil && p.Status.InFlight() {
				if err := p.Cancel(); err != nil {
					return err
				}
			}
		default:
			reason := firstNonEmpty(status.Reason, "rejected by provider")
			if err := tx.Fail(reason); err != nil {
				return err
			}
			if p != nil && p.Status.InFlight() {
				if err := p.Fail(reason); err != nil {
					return err
				}
			}
		}

		// the version-checked transaction write claims the settlement, so a
		// concurrent settler loses before touching the firm
		if err := repos.Transactions().SaveWithLock(ctx, tx); err != nil {
			return err
		}
		if f != nil {
			if err := repos.Firms().SaveWithLock(ctx, f); err != nil {
				return err
			}
			events = append(events, f.GetDomainEvents()...)
			f.ClearDomainEvents()
		}
		if p != nil {
			if err := repos.SubscriptionPayments().Save(ctx, p); err != nil {
				return err
			}
			events = append(events, p.GetDomainEvents()...)
			p.ClearDomainEvents()
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	s.logger.Info("Payment settled",
		zap.String("firm_id", firmID.String()),
		zap.String("transaction_id", txID.String()),
		zap.String("status", string(target)))
	if target == payment.StatusCompleted && s.access != nil {
		s.access.Invalidate(ctx, firmID)
	}
	s.publish(ctx, events...)
	return true, nil
}

// executeWithRetry runs fn in a fresh unit of work until it commits without
// an optimistic lock conflict or the attempts run out
func (s *PaymentService) executeWithRetry(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = s.scope.Execute(ctx, fn)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Warn("Concurrent update detected, retrying", zap.Int("attempt", attempt))
	}
	return err
}

func (s *PaymentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish payment events", zap.Error(err))
	}
}

// ListSubscriptionPayments lists the firm's subscription payments
func (s *PaymentService) ListSubscriptionPayments(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]SubscriptionPaymentResponse, int64, error) {
	payments, total, err := s.payments.FindAllForFirm(ctx, firmID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SubscriptionPaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToSubscriptionPaymentResponse(&payments[i], nil)
	}
	return out, total, nil
}

// ListTransactions lists the firm's payment transactions
func (s *PaymentService) ListTransactions(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]TransactionResponse, int64, error) {
	txs, total, err := s.transactions.FindAllForFirm(ctx, firmID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}

// ListInvoiceTransactions lists the payments recorded against an invoice
func (s *PaymentService) ListInvoiceTransactions(ctx context.Context, firmID, invoiceID uuid.UUID) ([]TransactionResponse, error) {
	txs, err := s.transactions.FindByInvoice(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponses(txs), nil
}

// RecordInvoicePayment records a payment collected outside any gateway and
// applies it to the invoice balance. Amounts above the balance are refused.
func (s *PaymentService) RecordInvoicePayment(ctx context.Context, firmID, invoiceID uuid.UUID, req RecordInvoicePaymentRequest) (*TransactionResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method := payment.Method(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	now := s.now()
	paidAt := now
	if req.PaidAt != nil {
		if req.PaidAt.After(now) {
			return nil, shared.NewDomainError("INVALID_DATE", "Payment date cannot be in the future")
		}
		paidAt = *req.PaidAt
	}

	var (
		tx     *payment.Transaction
		events []shared.DomainEvent
	)
	err := s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		events = nil
		inv, err := repos.Invoices().FindByIDForFirm(ctx, firmID, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.RecordPayment(req.Amount, now); err != nil {
			return err
		}
		tx, err = payment.NewTransaction(firmID, payment.PurposeInvoice, payment.ProviderManual, method, req.Amount, inv.Currency)
		if err != nil {
			return err
		}
		tx.ForInvoice(inv.ID)
		tx.PayerPhone = req.Phone
		tx.Notes = req.Notes
		if req.Reference != "" {
			tx.ProviderReference = req.Reference
		}
		if err := tx.Complete(paidAt); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		events = append(events, inv.GetDomainEvents()...)
		inv.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events...)
	out := ToTransactionResponse(tx)
	return &out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// truncate keeps at most n runes of s
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
