package main

import (
	"context"
	"net/http"

	calendarapp "github.com/lexdesk/backend/internal/application/calendar"
	clientapp "github.com/lexdesk/backend/internal/application/client"
	dashboardapp "github.com/lexdesk/backend/internal/application/dashboard"
	documentapp "github.com/lexdesk/backend/internal/application/document"
	firmapp "github.com/lexdesk/backend/internal/application/firm"
	invoiceapp "github.com/lexdesk/backend/internal/application/invoice"
	matterapp "github.com/lexdesk/backend/internal/application/matter"
	messagingapp "github.com/lexdesk/backend/internal/application/messaging"
	paymentapp "github.com/lexdesk/backend/internal/application/payment"
	subscriptionapp "github.com/lexdesk/backend/internal/application/subscription"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/infrastructure/cache"
	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/lexdesk/backend/internal/infrastructure/event"
	inframes "github.com/lexdesk/backend/internal/infrastructure/messaging"
	infrapay "github.com/lexdesk/backend/internal/infrastructure/payment"
	"github.com/lexdesk/backend/internal/infrastructure/persistence"
	"github.com/lexdesk/backend/internal/infrastructure/printing"
	"github.com/lexdesk/backend/internal/infrastructure/scheduler"
	"github.com/lexdesk/backend/internal/infrastructure/storage"
	"github.com/lexdesk/backend/internal/infrastructure/telemetry"
	"github.com/lexdesk/backend/internal/interfaces/http/handler"
	"github.com/lexdesk/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the long-lived components main starts and stops
type app struct {
	jwt           *auth.JWTService
	blacklist     auth.TokenBlacklist
	subscriptions *subscriptionapp.SubscriptionService
	bus           *event.InMemoryEventBus
	sweeper       *scheduler.Sweeper
	handlers      router.Handlers
	pdfEngine     *printing.ChromedpRenderer
}

func newApp(ctx context.Context, cfg *config.Config, db *persistence.Database, redisClient *redis.Client, providers *telemetry.Providers, log *zap.Logger) (*app, error) {
	gdb := db.DB

	// Repositories
	firmRepo := persistence.NewGormFirmRepository(gdb)
	profileRepo := persistence.NewGormProfileRepository(gdb)
	clientRepo := persistence.NewGormClientRepository(gdb)
	contactRepo := persistence.NewGormContactRepository(gdb)
	caseRepo := persistence.NewGormCaseRepository(gdb)
	timeEntryRepo := persistence.NewGormTimeEntryRepository(gdb)
	eventRepo := persistence.NewGormCalendarEventRepository(gdb)
	documentRepo := persistence.NewGormDocumentRepository(gdb)
	invoiceRepo := persistence.NewGormInvoiceRepository(gdb)
	communicationRepo := persistence.NewGormCommunicationRepository(gdb)
	notificationRepo := persistence.NewGormNotificationRepository(gdb)
	subscriptionPaymentRepo := persistence.NewGormSubscriptionPaymentRepository(gdb)
	transactionRepo := persistence.NewGormTransactionRepository(gdb)

	stores := cache.NewStores(redisClient, log)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Outbound adapters share one client; each adapter applies its own
	// per-request deadline
	httpClient := &http.Client{Timeout: cfg.Payment.StatusPollTimeout}
	gateways, err := infrapay.NewRegistry(cfg.Payment, httpClient, log)
	if err != nil {
		return nil, err
	}
	dispatcher, err := inframes.NewDispatcherFromConfig(cfg.Messaging, httpClient, log)
	if err != nil {
		return nil, err
	}
	objects, err := storage.New(ctx, &cfg.Storage, cfg.App.PublicURL, log)
	if err != nil {
		return nil, err
	}
	renderer, err := messaging.NewRenderer()
	if err != nil {
		return nil, err
	}

	a := &app{
		jwt:       auth.NewJWTService(cfg.JWT),
		blacklist: blacklist,
		bus:       event.NewInMemoryEventBus(log),
	}

	var pdf invoiceapp.PDFRenderer
	if cfg.Printing.Enabled {
		a.pdfEngine = printing.NewChromedpRenderer(cfg.Printing, log)
		invoicePDF, err := printing.NewInvoicePDF(a.pdfEngine)
		if err != nil {
			return nil, err
		}
		pdf = invoicePDF
	}

	// Subscription and notifications come first: every other service is
	// gated by the plan and notifies through the inbox
	catalog := subscription.DefaultCatalog()
	a.subscriptions = subscriptionapp.NewSubscriptionService(
		firmRepo,
		catalog,
		persistence.NewGormUsageCounter(gdb),
		stores.AccessState,
		subscriptionapp.ServiceConfig{
			Policy: subscription.Policy{
				GraceDays:    cfg.Subscription.GraceDays,
				ReminderDays: cfg.Subscription.MaxReminderDays(),
			},
			ReminderDays: cfg.Subscription.ReminderDays,
			Currency:     cfg.Subscription.Currency,
			CacheTTL:     cfg.Subscription.AccessCacheTTL,
		},
		log,
	)
	gate := a.subscriptions

	notifications := messagingapp.NewNotificationService(notificationRepo, firmRepo, profileRepo, renderer, dispatcher, log)
	a.subscriptions.SetNotifier(notifications)
	a.subscriptions.SetEventPublisher(a.bus)

	firms := firmapp.NewFirmService(firmRepo, profileRepo, nil, gate, firmapp.FirmServiceConfig{
		TrialDays:  cfg.Subscription.TrialDays,
		SessionTTL: cfg.JWT.RefreshTokenExpiration,
	}, log)
	firms.SetEventPublisher(a.bus)
	firms.SetSessionRevoker(blacklist)
	authService := firmapp.NewAuthService(profileRepo, firmRepo, a.jwt, nil, blacklist, log)

	payments := paymentapp.NewPaymentService(paymentapp.PaymentServiceDeps{
		Gateways:     gateways,
		Validator:    payment.NewValidationService(catalog, cfg.Subscription.Currency, gateways, subscriptionPaymentRepo),
		Firms:        firmRepo,
		Payments:     subscriptionPaymentRepo,
		Transactions: transactionRepo,
		Scope:        persistence.NewGormTransactionScope(gdb),
		Idempotency:  stores.Idempotency,
		Access:       a.subscriptions,
		Publisher:    a.bus,
		Logger:       log,
	}, paymentapp.ServiceConfig{
		CallbackBaseURL: cfg.Payment.CallbackBaseURL,
		ReturnURL:       cfg.Payment.CinetPay.ReturnURL,
		Currency:        cfg.Subscription.Currency,
		DedupeTTL:       cfg.Payment.CallbackDedupeTTL,
	})

	clients := clientapp.NewClientService(clientRepo, caseRepo, gate, log)
	contacts := clientapp.NewContactService(contactRepo, log)
	cases := matterapp.NewCaseService(caseRepo, clientRepo, firmRepo, profileRepo, timeEntryRepo, gate, log)
	cases.SetEventPublisher(a.bus)
	timeEntries := matterapp.NewTimeEntryService(timeEntryRepo, caseRepo, gate, log)
	events := calendarapp.NewEventService(eventRepo, caseRepo, clientRepo, profileRepo, notifications, log)
	documents := documentapp.NewDocumentService(documentRepo, caseRepo, clientRepo, objects, gate, log)
	if cfg.Storage.PresignTTL > 0 {
		documents.SetDownloadTTL(cfg.Storage.PresignTTL)
	}
	communications := messagingapp.NewCommunicationService(communicationRepo, clientRepo, caseRepo, firmRepo, dispatcher, renderer, gate, log)
	invoices := invoiceapp.NewInvoiceService(invoiceRepo, clientRepo, caseRepo, firmRepo, timeEntryRepo, gate, communications, pdf, log)
	invoices.SetEventPublisher(a.bus)
	dashboard := dashboardapp.NewDashboardService(firmRepo, clientRepo, caseRepo, eventRepo, invoiceRepo, notificationRepo, a.subscriptions, log)

	// Event subscribers
	a.bus.Subscribe(messagingapp.NewNotificationEventHandler(notifications, log))
	var recorder scheduler.JobRecorder
	if cfg.Telemetry.MetricsEnabled {
		metrics, err := telemetry.NewBusinessMetrics(providers.Meter("lexdesk/business"))
		if err != nil {
			return nil, err
		}
		a.bus.Subscribe(metrics)
		recorder = metrics
	}

	a.sweeper = scheduler.NewSweeper(cfg.Scheduler, recorder, log,
		scheduler.SubscriptionSweepJob(a.subscriptions, log),
		scheduler.InvoiceOverdueJob(invoices, log),
		scheduler.EventRemindersJob(events, cfg.Scheduler.ReminderHorizon, log),
	)

	system := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", db.Ping)
	if redisClient != nil {
		system.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	a.handlers = router.Handlers{
		Auth:          handler.NewAuthHandler(firms, authService),
		Firm:          handler.NewFirmHandler(firms),
		Subscription:  handler.NewSubscriptionHandler(a.subscriptions),
		Payment:       handler.NewPaymentHandler(payments),
		Client:        handler.NewClientHandler(clients),
		Contact:       handler.NewContactHandler(contacts),
		Case:          handler.NewCaseHandler(cases, timeEntries),
		Calendar:      handler.NewCalendarHandler(events),
		Document:      handler.NewDocumentHandler(documents),
		Invoice:       handler.NewInvoiceHandler(invoices),
		Communication: handler.NewCommunicationHandler(communications),
		Notification:  handler.NewNotificationHandler(notifications),
		Dashboard:     handler.NewDashboardHandler(dashboard),
		System:        system,
	}
	return a, nil
}

func (a *app) close(log *zap.Logger) {
	if a.pdfEngine == nil {
		return
	}
	if err := a.pdfEngine.Close(); err != nil {
		log.Warn("PDF renderer shutdown incomplete", zap.Error(err))
	}
}
