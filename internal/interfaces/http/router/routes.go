package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/interfaces/http/handler"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
)

// Handlers holds every HTTP handler mounted by Mount
type Handlers struct {
	Auth          *handler.AuthHandler
	Firm          *handler.FirmHandler
	Subscription  *handler.SubscriptionHandler
	Payment       *handler.PaymentHandler
	Client        *handler.ClientHandler
	Contact       *handler.ContactHandler
	Case          *handler.CaseHandler
	Calendar      *handler.CalendarHandler
	Document      *handler.DocumentHandler
	Invoice       *handler.InvoiceHandler
	Communication *handler.CommunicationHandler
	Notification  *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
	System        *handler.SystemHandler
}

// Guards are the route-level checks layered on top of authentication
type Guards struct {
	Subscription *middleware.SubscriptionGuard
	// Admin protects the back-office firm lifecycle routes
	Admin gin.HandlerFunc
	// AuthRateLimit throttles sign-up and sign-in when set
	AuthRateLimit gin.HandlerFunc
}

// Mount registers the public and protected lexdesk routes on r
func Mount(r *Router, h Handlers, g Guards) {
	r.RegisterPublic(publicRoutes(h, g)...)
	r.RegisterPublic(adminRoutes(h, g))
	r.Register(protectedRoutes(h, g)...)
}

func publicRoutes(h Handlers, g Guards) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth")
	if g.AuthRateLimit != nil {
		auth.Use(g.AuthRateLimit)
	}
	auth.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh)

	callbacks := NewDomainGroup("payment-callbacks", "/payments/callbacks").
		POST("/:provider", h.Payment.Callback)

	health := NewDomainGroup("health", "").
		GET("/health", h.System.Health)

	return []RouteRegistrar{auth, callbacks, health}
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(g.Admin)
	admin.Group("admin-firms", "/firms").
		POST("/:id/activate", h.Subscription.AdminActivate).
		POST("/:id/suspend", h.Subscription.AdminSuspend).
		POST("/:id/reactivate", h.Subscription.AdminReactivate)
	return admin
}

func protectedRoutes(h Handlers, g Guards) []RouteRegistrar {
	quota := g.Subscription.RequireQuota
	feature := g.Subscription.RequireFeature
	manager := middleware.RequireFirmManager()
	owner := middleware.RequireRole(firm.RoleOwner)

	session := NewDomainGroup("session", "/auth").
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	firmRoutes := NewDomainGroup("firm", "/firm").
		GET("", h.Firm.GetFirm).
		PUT("", manager, h.Firm.UpdateFirm)
	firmRoutes.Group("profiles", "/profiles").
		GET("", h.Firm.ListProfiles).
		GET("/:id", h.Firm.GetProfile).
		POST("", manager, quota(subscription.ResourceUsers), h.Firm.AddProfile).
		PUT("/:id", manager, h.Firm.UpdateProfile).
		POST("/:id/deactivate", manager, h.Firm.DeactivateProfile).
		POST("/:id/activate", manager, quota(subscription.ResourceUsers), h.Firm.ReactivateProfile)

	profile := NewDomainGroup("profile", "/profile").
		PUT("/password", h.Firm.ChangePassword)

	subscriptionRoutes := NewDomainGroup("subscription", "/subscription").
		GET("", h.Subscription.GetStatus).
		GET("/plans", h.Subscription.ListPlans).
		GET("/quotas/:resource", h.Subscription.CheckQuota).
		PUT("/plan", owner, h.Subscription.ChangePlan).
		POST("/cancel", owner, h.Subscription.Cancel)

	payments := NewDomainGroup("payments", "/payments").
		GET("/providers", h.Payment.Providers).
		GET("/transactions", h.Payment.ListTransactions)
	payments.Group("subscription-payments", "/subscriptions").
		POST("", manager, h.Payment.InitiateSubscriptionPayment).
		GET("", h.Payment.ListSubscriptionPayments).
		GET("/:id", h.Payment.GetSubscriptionPayment).
		POST("/:id/refresh", h.Payment.RefreshPaymentStatus)

	clients := NewDomainGroup("clients", "/clients").
		POST("", quota(subscription.ResourceClients), h.Client.Create).
		GET("", h.Client.List).
		GET("/:id", h.Client.GetByID).
		PUT("/:id", h.Client.Update).
		POST("/:id/archive", h.Client.Archive).
		PUT("/:id/status", h.Client.SetStatus).
		DELETE("/:id", manager, h.Client.Delete)

	contacts := NewDomainGroup("contacts", "/contacts").
		POST("", h.Contact.Create).
		GET("", h.Contact.List).
		GET("/:id", h.Contact.GetByID).
		PUT("/:id", h.Contact.Update).
		DELETE("/:id", h.Contact.Delete)

	timeTracking := feature(subscription.FeatureTimeTracking)
	cases := NewDomainGroup("cases", "/cases").
		POST("", quota(subscription.ResourceCases), h.Case.Create).
		GET("", h.Case.List).
		GET("/:id", h.Case.GetByID).
		PUT("/:id", h.Case.Update).
		PUT("/:id/assign", h.Case.Assign).
		PUT("/:id/status", h.Case.ChangeStatus).
		DELETE("/:id", manager, h.Case.Delete)
	cases.Group("case-time-entries", "/:id/time-entries").
		POST("", timeTracking, h.Case.CreateTimeEntry).
		GET("", h.Case.ListCaseTimeEntries).
		GET("/unbilled", h.Case.UnbilledSummary)

	timeEntries := NewDomainGroup("time-entries", "/time-entries").
		GET("", h.Case.ListTimeEntries).
		GET("/:id", h.Case.GetTimeEntry).
		PUT("/:id", timeTracking, h.Case.UpdateTimeEntry).
		DELETE("/:id", h.Case.DeleteTimeEntry)

	events := NewDomainGroup("events", "/events").
		POST("", h.Calendar.Create).
		GET("", h.Calendar.List).
		GET("/range", h.Calendar.Range).
		GET("/upcoming", h.Calendar.Upcoming).
		GET("/:id", h.Calendar.GetByID).
		PUT("/:id", h.Calendar.Update).
		POST("/:id/complete", h.Calendar.Complete).
		POST("/:id/cancel", h.Calendar.Cancel).
		DELETE("/:id", h.Calendar.Delete)

	storage := feature(subscription.FeatureDocumentStorage)
	documents := NewDomainGroup("documents", "/documents").
		POST("", storage, quota(subscription.ResourceDocuments), h.Document.Upload).
		GET("", h.Document.List).
		GET("/usage", h.Document.Usage).
		GET("/:id", h.Document.GetByID).
		PUT("/:id", h.Document.Update).
		GET("/:id/download", h.Document.Download).
		GET("/:id/content", h.Document.Content).
		DELETE("/:id", h.Document.Delete)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", quota(subscription.ResourceInvoicesPerMonth), h.Invoice.Create).
		GET("", h.Invoice.List).
		GET("/:id", h.Invoice.GetByID).
		PUT("/:id", h.Invoice.Update).
		DELETE("/:id", manager, h.Invoice.Delete).
		POST("/:id/time-entries", h.Invoice.AddTimeEntries).
		DELETE("/:id/items/:item_id", h.Invoice.RemoveItem).
		POST("/:id/send", h.Invoice.Send).
		POST("/:id/cancel", manager, h.Invoice.Cancel).
		GET("/:id/pdf", feature(subscription.FeatureInvoicePDF), h.Invoice.PDF).
		GET("/:id/payments", h.Payment.ListInvoiceTransactions).
		POST("/:id/payments", h.Payment.RecordInvoicePayment)

	communications := NewDomainGroup("communications", "/communications").
		POST("", h.Communication.Send).
		POST("/inbound", h.Communication.LogInbound).
		GET("", h.Communication.List).
		GET("/:id", h.Communication.GetByID)

	notifications := NewDomainGroup("notifications", "/notifications").
		GET("", h.Notification.List).
		GET("/unread-count", h.Notification.UnreadCount).
		PUT("/read-all", h.Notification.MarkAllRead).
		PUT("/:id/read", h.Notification.MarkRead).
		DELETE("/:id", h.Notification.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("", h.Dashboard.Summary)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []RouteRegistrar{
		session, firmRoutes, profile, subscriptionRoutes, payments,
		clients, contacts, cases, timeEntries, events, documents,
		invoices, communications, notifications, dashboard, system,
	}
}
