package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	calendarapp "github.com/lexdesk/backend/internal/application/calendar"
	clientapp "github.com/lexdesk/backend/internal/application/client"
	documentapp "github.com/lexdesk/backend/internal/application/document"
	firmapp "github.com/lexdesk/backend/internal/application/firm"
	invoiceapp "github.com/lexdesk/backend/internal/application/invoice"
	matterapp "github.com/lexdesk/backend/internal/application/matter"
	messagingapp "github.com/lexdesk/backend/internal/application/messaging"
	paymentapp "github.com/lexdesk/backend/internal/application/payment"
	subapp "github.com/lexdesk/backend/internal/application/subscription"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/mock"
)

// result returns the first mocked value as *T, tolerating a nil return
func result[T any](args mock.Arguments) *T {
	if v := args.Get(0); v != nil {
		return v.(*T)
	}
	return nil
}

// =============================================================================
// Auth and firm
// =============================================================================

type mockRegistrar struct{ mock.Mock }

func (m *mockRegistrar) RegisterFirm(ctx context.Context, req firmapp.RegisterFirmRequest) (*firmapp.RegisterResponse, error) {
	args := m.Called(ctx, req)
	return result[firmapp.RegisterResponse](args), args.Error(1)
}

type mockAuthenticator struct{ mock.Mock }

func (m *mockAuthenticator) Login(ctx context.Context, req firmapp.LoginRequest) (*firmapp.LoginResponse, error) {
	args := m.Called(ctx, req)
	return result[firmapp.LoginResponse](args), args.Error(1)
}

func (m *mockAuthenticator) Refresh(ctx context.Context, req firmapp.RefreshRequest) (*firmapp.TokenResponse, error) {
	args := m.Called(ctx, req)
	return result[firmapp.TokenResponse](args), args.Error(1)
}

func (m *mockAuthenticator) Logout(ctx context.Context, claims *auth.Claims, req firmapp.LogoutRequest) error {
	return m.Called(ctx, claims, req).Error(0)
}

func (m *mockAuthenticator) Me(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.MeResponse, error) {
	args := m.Called(ctx, firmID, profileID)
	return result[firmapp.MeResponse](args), args.Error(1)
}

type mockFirmManager struct{ mock.Mock }

func (m *mockFirmManager) GetFirm(ctx context.Context, firmID uuid.UUID) (*firmapp.FirmResponse, error) {
	args := m.Called(ctx, firmID)
	return result[firmapp.FirmResponse](args), args.Error(1)
}

func (m *mockFirmManager) UpdateFirm(ctx context.Context, firmID uuid.UUID, req firmapp.UpdateFirmRequest) (*firmapp.FirmResponse, error) {
	args := m.Called(ctx, firmID, req)
	return result[firmapp.FirmResponse](args), args.Error(1)
}

func (m *mockFirmManager) ListProfiles(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]firmapp.ProfileResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]firmapp.ProfileResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockFirmManager) GetProfile(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.ProfileResponse, error) {
	args := m.Called(ctx, firmID, profileID)
	return result[firmapp.ProfileResponse](args), args.Error(1)
}

func (m *mockFirmManager) AddProfile(ctx context.Context, firmID uuid.UUID, req firmapp.CreateProfileRequest) (*firmapp.ProfileResponse, error) {
	args := m.Called(ctx, firmID, req)
	return result[firmapp.ProfileResponse](args), args.Error(1)
}

func (m *mockFirmManager) UpdateProfile(ctx context.Context, firmID, profileID uuid.UUID, req firmapp.UpdateProfileRequest) (*firmapp.ProfileResponse, error) {
	args := m.Called(ctx, firmID, profileID, req)
	return result[firmapp.ProfileResponse](args), args.Error(1)
}

func (m *mockFirmManager) DeactivateProfile(ctx context.Context, firmID, actorID, profileID uuid.UUID) error {
	return m.Called(ctx, firmID, actorID, profileID).Error(0)
}

func (m *mockFirmManager) ReactivateProfile(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.ProfileResponse, error) {
	args := m.Called(ctx, firmID, profileID)
	return result[firmapp.ProfileResponse](args), args.Error(1)
}

func (m *mockFirmManager) ChangePassword(ctx context.Context, firmID, profileID uuid.UUID, req firmapp.ChangePasswordRequest) error {
	return m.Called(ctx, firmID, profileID, req).Error(0)
}

// =============================================================================
// Subscription and payments
// =============================================================================

type mockSubscriptionManager struct{ mock.Mock }

func (m *mockSubscriptionManager) GetStatus(ctx context.Context, firmID uuid.UUID) (*subapp.StatusResponse, error) {
	args := m.Called(ctx, firmID)
	return result[subapp.StatusResponse](args), args.Error(1)
}

func (m *mockSubscriptionManager) CheckQuota(ctx context.Context, firmID uuid.UUID, resource subscription.Resource) (*subscription.QuotaCheck, error) {
	args := m.Called(ctx, firmID, resource)
	return result[subscription.QuotaCheck](args), args.Error(1)
}

func (m *mockSubscriptionManager) ListPlans() []subapp.PlanResponse {
	return m.Called().Get(0).([]subapp.PlanResponse)
}

func (m *mockSubscriptionManager) ChangePlan(ctx context.Context, firmID uuid.UUID, req subapp.ChangePlanRequest) (*subapp.StatusResponse, error) {
	args := m.Called(ctx, firmID, req)
	return result[subapp.StatusResponse](args), args.Error(1)
}

func (m *mockSubscriptionManager) Activate(ctx context.Context, firmID uuid.UUID, req subapp.ActivateRequest) (*subapp.ActivateResponse, error) {
	args := m.Called(ctx, firmID, req)
	return result[subapp.ActivateResponse](args), args.Error(1)
}

func (m *mockSubscriptionManager) Suspend(ctx context.Context, firmID uuid.UUID, req subapp.SuspendRequest) error {
	return m.Called(ctx, firmID, req).Error(0)
}

func (m *mockSubscriptionManager) Reactivate(ctx context.Context, firmID uuid.UUID) error {
	return m.Called(ctx, firmID).Error(0)
}

func (m *mockSubscriptionManager) Cancel(ctx context.Context, firmID uuid.UUID) error {
	return m.Called(ctx, firmID).Error(0)
}

type mockPaymentProcessor struct{ mock.Mock }

func (m *mockPaymentProcessor) Providers() paymentapp.ProvidersResponse {
	return m.Called().Get(0).(paymentapp.ProvidersResponse)
}

func (m *mockPaymentProcessor) InitiateSubscriptionPayment(ctx context.Context, firmID uuid.UUID, req paymentapp.InitiateSubscriptionPaymentRequest) (*paymentapp.SubscriptionPaymentResponse, error) {
	args := m.Called(ctx, firmID, req)
	return result[paymentapp.SubscriptionPaymentResponse](args), args.Error(1)
}

func (m *mockPaymentProcessor) GetSubscriptionPayment(ctx context.Context, firmID, paymentID uuid.UUID) (*paymentapp.SubscriptionPaymentResponse, error) {
	args := m.Called(ctx, firmID, paymentID)
	return result[paymentapp.SubscriptionPaymentResponse](args), args.Error(1)
}

func (m *mockPaymentProcessor) RefreshPaymentStatus(ctx context.Context, firmID, paymentID uuid.UUID) (*paymentapp.SubscriptionPaymentResponse, error) {
	args := m.Called(ctx, firmID, paymentID)
	return result[paymentapp.SubscriptionPaymentResponse](args), args.Error(1)
}

func (m *mockPaymentProcessor) HandleCallback(ctx context.Context, provider payment.Provider, payload []byte, signature string) (*paymentapp.CallbackResult, error) {
	args := m.Called(ctx, provider, payload, signature)
	return result[paymentapp.CallbackResult](args), args.Error(1)
}

func (m *mockPaymentProcessor) ListSubscriptionPayments(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]paymentapp.SubscriptionPaymentResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]paymentapp.SubscriptionPaymentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentProcessor) ListTransactions(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]paymentapp.TransactionResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]paymentapp.TransactionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentProcessor) ListInvoiceTransactions(ctx context.Context, firmID, invoiceID uuid.UUID) ([]paymentapp.TransactionResponse, error) {
	args := m.Called(ctx, firmID, invoiceID)
	return args.Get(0).([]paymentapp.TransactionResponse), args.Error(1)
}

func (m *mockPaymentProcessor) RecordInvoicePayment(ctx context.Context, firmID, invoiceID uuid.UUID, req paymentapp.RecordInvoicePaymentRequest) (*paymentapp.TransactionResponse, error) {
	args := m.Called(ctx, firmID, invoiceID, req)
	return result[paymentapp.TransactionResponse](args), args.Error(1)
}

// =============================================================================
// Clients, cases and time
// =============================================================================

type mockClientManager struct{ mock.Mock }

func (m *mockClientManager) Create(ctx context.Context, firmID, actorID uuid.UUID, req clientapp.CreateClientRequest) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[clientapp.ClientResponse](args), args.Error(1)
}

func (m *mockClientManager) GetByID(ctx context.Context, firmID, clientID uuid.UUID) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, firmID, clientID)
	return result[clientapp.ClientResponse](args), args.Error(1)
}

func (m *mockClientManager) List(ctx context.Context, firmID uuid.UUID, filter clientapp.ClientListFilter) ([]clientapp.ClientResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]clientapp.ClientResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockClientManager) Update(ctx context.Context, firmID, clientID uuid.UUID, req clientapp.UpdateClientRequest) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, firmID, clientID, req)
	return result[clientapp.ClientResponse](args), args.Error(1)
}

func (m *mockClientManager) Archive(ctx context.Context, firmID, clientID uuid.UUID) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, firmID, clientID)
	return result[clientapp.ClientResponse](args), args.Error(1)
}

func (m *mockClientManager) SetStatus(ctx context.Context, firmID, clientID uuid.UUID, req clientapp.UpdateClientStatusRequest) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, firmID, clientID, req)
	return result[clientapp.ClientResponse](args), args.Error(1)
}

func (m *mockClientManager) Delete(ctx context.Context, firmID, clientID uuid.UUID) error {
	return m.Called(ctx, firmID, clientID).Error(0)
}

type mockCaseManager struct{ mock.Mock }

func (m *mockCaseManager) Create(ctx context.Context, firmID, actorID uuid.UUID, req matterapp.CreateCaseRequest) (*matterapp.CaseResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[matterapp.CaseResponse](args), args.Error(1)
}

func (m *mockCaseManager) GetByID(ctx context.Context, firmID, caseID uuid.UUID) (*matterapp.CaseResponse, error) {
	args := m.Called(ctx, firmID, caseID)
	return result[matterapp.CaseResponse](args), args.Error(1)
}

func (m *mockCaseManager) List(ctx context.Context, firmID uuid.UUID, filter matterapp.CaseListFilter) ([]matterapp.CaseResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]matterapp.CaseResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockCaseManager) Update(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.UpdateCaseRequest) (*matterapp.CaseResponse, error) {
	args := m.Called(ctx, firmID, caseID, req)
	return result[matterapp.CaseResponse](args), args.Error(1)
}

func (m *mockCaseManager) Assign(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.AssignCaseRequest) (*matterapp.CaseResponse, error) {
	args := m.Called(ctx, firmID, caseID, req)
	return result[matterapp.CaseResponse](args), args.Error(1)
}

func (m *mockCaseManager) ChangeStatus(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.ChangeCaseStatusRequest) (*matterapp.CaseResponse, error) {
	args := m.Called(ctx, firmID, caseID, req)
	return result[matterapp.CaseResponse](args), args.Error(1)
}

func (m *mockCaseManager) Delete(ctx context.Context, firmID, caseID uuid.UUID) error {
	return m.Called(ctx, firmID, caseID).Error(0)
}

type mockTimeTracker struct{ mock.Mock }

func (m *mockTimeTracker) Create(ctx context.Context, firmID, profileID, caseID uuid.UUID, req matterapp.TimeEntryRequest) (*matterapp.TimeEntryResponse, error) {
	args := m.Called(ctx, firmID, profileID, caseID, req)
	return result[matterapp.TimeEntryResponse](args), args.Error(1)
}

func (m *mockTimeTracker) GetByID(ctx context.Context, firmID, entryID uuid.UUID) (*matterapp.TimeEntryResponse, error) {
	args := m.Called(ctx, firmID, entryID)
	return result[matterapp.TimeEntryResponse](args), args.Error(1)
}

func (m *mockTimeTracker) List(ctx context.Context, firmID uuid.UUID, filter matterapp.TimeEntryListFilter) ([]matterapp.TimeEntryResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]matterapp.TimeEntryResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockTimeTracker) Update(ctx context.Context, firmID, entryID uuid.UUID, req matterapp.TimeEntryRequest) (*matterapp.TimeEntryResponse, error) {
	args := m.Called(ctx, firmID, entryID, req)
	return result[matterapp.TimeEntryResponse](args), args.Error(1)
}

func (m *mockTimeTracker) Delete(ctx context.Context, firmID, entryID uuid.UUID) error {
	return m.Called(ctx, firmID, entryID).Error(0)
}

func (m *mockTimeTracker) UnbilledSummary(ctx context.Context, firmID, caseID uuid.UUID) (*matterapp.TimeSummary, error) {
	args := m.Called(ctx, firmID, caseID)
	return result[matterapp.TimeSummary](args), args.Error(1)
}

// =============================================================================
// Calendar, documents and invoices
// =============================================================================

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) Create(ctx context.Context, firmID, actorID uuid.UUID, req calendarapp.EventRequest) (*calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[calendarapp.EventResponse](args), args.Error(1)
}

func (m *mockScheduler) GetByID(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, eventID)
	return result[calendarapp.EventResponse](args), args.Error(1)
}

func (m *mockScheduler) List(ctx context.Context, firmID uuid.UUID, filter calendarapp.EventListFilter) ([]calendarapp.EventResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]calendarapp.EventResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockScheduler) Range(ctx context.Context, firmID uuid.UUID, q calendarapp.RangeQuery) ([]calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, q)
	return args.Get(0).([]calendarapp.EventResponse), args.Error(1)
}

func (m *mockScheduler) Upcoming(ctx context.Context, firmID uuid.UUID, days int) ([]calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, days)
	return args.Get(0).([]calendarapp.EventResponse), args.Error(1)
}

func (m *mockScheduler) Update(ctx context.Context, firmID, eventID uuid.UUID, req calendarapp.EventRequest) (*calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, eventID, req)
	return result[calendarapp.EventResponse](args), args.Error(1)
}

func (m *mockScheduler) Complete(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, eventID)
	return result[calendarapp.EventResponse](args), args.Error(1)
}

func (m *mockScheduler) Cancel(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error) {
	args := m.Called(ctx, firmID, eventID)
	return result[calendarapp.EventResponse](args), args.Error(1)
}

func (m *mockScheduler) Delete(ctx context.Context, firmID, eventID uuid.UUID) error {
	return m.Called(ctx, firmID, eventID).Error(0)
}

type mockDocumentStore struct{ mock.Mock }

func (m *mockDocumentStore) Upload(ctx context.Context, firmID, actorID uuid.UUID, req documentapp.UploadRequest, file documentapp.Upload) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, firmID, actorID, req, file)
	return result[documentapp.DocumentResponse](args), args.Error(1)
}

func (m *mockDocumentStore) GetByID(ctx context.Context, firmID, docID uuid.UUID) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, firmID, docID)
	return result[documentapp.DocumentResponse](args), args.Error(1)
}

func (m *mockDocumentStore) List(ctx context.Context, firmID uuid.UUID, filter documentapp.DocumentListFilter) ([]documentapp.DocumentResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]documentapp.DocumentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockDocumentStore) Update(ctx context.Context, firmID, docID uuid.UUID, req documentapp.UpdateDocumentRequest) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, firmID, docID, req)
	return result[documentapp.DocumentResponse](args), args.Error(1)
}

func (m *mockDocumentStore) Download(ctx context.Context, firmID, docID uuid.UUID) (*documentapp.DownloadResponse, error) {
	args := m.Called(ctx, firmID, docID)
	return result[documentapp.DownloadResponse](args), args.Error(1)
}

func (m *mockDocumentStore) Open(ctx context.Context, firmID, docID uuid.UUID) (io.ReadCloser, *documentapp.DocumentResponse, error) {
	args := m.Called(ctx, firmID, docID)
	var body io.ReadCloser
	if v := args.Get(0); v != nil {
		body = v.(io.ReadCloser)
	}
	var doc *documentapp.DocumentResponse
	if v := args.Get(1); v != nil {
		doc = v.(*documentapp.DocumentResponse)
	}
	return body, doc, args.Error(2)
}

func (m *mockDocumentStore) Delete(ctx context.Context, firmID, docID uuid.UUID) error {
	return m.Called(ctx, firmID, docID).Error(0)
}

func (m *mockDocumentStore) Usage(ctx context.Context, firmID uuid.UUID) (*documentapp.StorageUsageResponse, error) {
	args := m.Called(ctx, firmID)
	return result[documentapp.StorageUsageResponse](args), args.Error(1)
}

type mockBiller struct{ mock.Mock }

func (m *mockBiller) Create(ctx context.Context, firmID, actorID uuid.UUID, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) GetByID(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, invoiceID)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) List(ctx context.Context, firmID uuid.UUID, filter invoiceapp.InvoiceListFilter) ([]invoiceapp.InvoiceResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]invoiceapp.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockBiller) Update(ctx context.Context, firmID, invoiceID uuid.UUID, req invoiceapp.UpdateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, invoiceID, req)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) AddTimeEntries(ctx context.Context, firmID, invoiceID uuid.UUID, req invoiceapp.AddTimeEntriesRequest) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, invoiceID, req)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) RemoveItem(ctx context.Context, firmID, invoiceID, itemID uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, invoiceID, itemID)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) Send(ctx context.Context, firmID, actorID, invoiceID uuid.UUID) (*invoiceapp.SendInvoiceResponse, error) {
	args := m.Called(ctx, firmID, actorID, invoiceID)
	return result[invoiceapp.SendInvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) Cancel(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, firmID, invoiceID)
	return result[invoiceapp.InvoiceResponse](args), args.Error(1)
}

func (m *mockBiller) Delete(ctx context.Context, firmID, invoiceID uuid.UUID) error {
	return m.Called(ctx, firmID, invoiceID).Error(0)
}

func (m *mockBiller) RenderPDF(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.PDFFile, error) {
	args := m.Called(ctx, firmID, invoiceID)
	return result[invoiceapp.PDFFile](args), args.Error(1)
}

// =============================================================================
// Messaging and dashboard
// =============================================================================

type mockMessenger struct{ mock.Mock }

func (m *mockMessenger) Send(ctx context.Context, firmID, actorID uuid.UUID, req messagingapp.SendMessageRequest) (*messagingapp.CommunicationResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[messagingapp.CommunicationResponse](args), args.Error(1)
}

func (m *mockMessenger) LogInbound(ctx context.Context, firmID, actorID uuid.UUID, req messagingapp.LogInboundRequest) (*messagingapp.CommunicationResponse, error) {
	args := m.Called(ctx, firmID, actorID, req)
	return result[messagingapp.CommunicationResponse](args), args.Error(1)
}

func (m *mockMessenger) GetByID(ctx context.Context, firmID, id uuid.UUID) (*messagingapp.CommunicationResponse, error) {
	args := m.Called(ctx, firmID, id)
	return result[messagingapp.CommunicationResponse](args), args.Error(1)
}

func (m *mockMessenger) List(ctx context.Context, firmID uuid.UUID, filter messagingapp.CommunicationListFilter) ([]messagingapp.CommunicationResponse, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]messagingapp.CommunicationResponse), args.Get(1).(int64), args.Error(2)
}

type mockInbox struct{ mock.Mock }

func (m *mockInbox) List(ctx context.Context, firmID, profileID uuid.UUID, filter messagingapp.NotificationListFilter) ([]messagingapp.NotificationResponse, int64, error) {
	args := m.Called(ctx, firmID, profileID, filter)
	return args.Get(0).([]messagingapp.NotificationResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockInbox) UnreadCount(ctx context.Context, firmID, profileID uuid.UUID) (*messagingapp.UnreadCountResponse, error) {
	args := m.Called(ctx, firmID, profileID)
	return result[messagingapp.UnreadCountResponse](args), args.Error(1)
}

func (m *mockInbox) MarkRead(ctx context.Context, firmID, profileID, id uuid.UUID) (*messagingapp.NotificationResponse, error) {
	args := m.Called(ctx, firmID, profileID, id)
	return result[messagingapp.NotificationResponse](args), args.Error(1)
}

func (m *mockInbox) MarkAllRead(ctx context.Context, firmID, profileID uuid.UUID) (*messagingapp.MarkAllReadResponse, error) {
	args := m.Called(ctx, firmID, profileID)
	return result[messagingapp.MarkAllReadResponse](args), args.Error(1)
}

func (m *mockInbox) Delete(ctx context.Context, firmID, profileID, id uuid.UUID) error {
	return m.Called(ctx, firmID, profileID, id).Error(0)
}
