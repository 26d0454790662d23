package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/document"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]document.Document, int64, error) {
	args := m.Called(ctx, firmID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]document.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	args := m.Called(ctx, firmID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) TotalSizeForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	args := m.Called(ctx, firmID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	args := m.Called(ctx, firmID, id)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStorage) PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, filename, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockGate struct {
	mock.Mock
}

func (m *MockGate) RequireQuota(ctx context.Context, firmID uuid.UUID, resource subscription.Resource, n int64) error {
	args := m.Called(ctx, firmID, resource, n)
	return args.Error(0)
}

func (m *MockGate) RequireFeature(ctx context.Context, firmID uuid.UUID, f subscription.Feature) error {
	args := m.Called(ctx, firmID, f)
	return args.Error(0)
}

type stubCases struct {
	matter.CaseRepository
	rows map[uuid.UUID]*matter.Case
}

func (s *stubCases) FindByIDForFirm(_ context.Context, firmID, id uuid.UUID) (*matter.Case, error) {
	c, ok := s.rows[id]
	if !ok || c.FirmID != firmID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

type stubClients struct {
	client.ClientRepository
	rows map[uuid.UUID]*client.Client
}

func (s *stubClients) FindByIDForFirm(_ context.Context, firmID, id uuid.UUID) (*client.Client, error) {
	c, ok := s.rows[id]
	if !ok || c.FirmID != firmID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

type fixture struct {
	firmID  uuid.UUID
	client  *client.Client
	matter  *matter.Case
	repo    *MockDocumentRepository
	storage *MockObjectStorage
	gate    *MockGate
	svc     *DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	firmID := uuid.New()
	c, err := client.NewClient(firmID, client.KindIndividual, "Marie Tchoumi")
	require.NoError(t, err)
	cs, err := matter.NewCase(firmID, c.ID, "DOS-2026-0011", "Divorce Tchoumi", matter.TypeFamily)
	require.NoError(t, err)
	fx := &fixture{
		firmID:  firmID,
		client:  c,
		matter:  cs,
		repo:    new(MockDocumentRepository),
		storage: new(MockObjectStorage),
		gate:    new(MockGate),
	}
	fx.svc = NewDocumentService(
		fx.repo,
		&stubCases{rows: map[uuid.UUID]*matter.Case{cs.ID: cs}},
		&stubClients{rows: map[uuid.UUID]*client.Client{c.ID: c}},
		fx.storage,
		fx.gate,
		nil,
	)
	return fx
}

func (fx *fixture) allowPlan(ctx context.Context, sizeMB int64) {
	fx.gate.On("RequireFeature", ctx, fx.firmID, subscription.FeatureDocumentStorage).Return(nil)
	fx.gate.On("RequireQuota", ctx, fx.firmID, subscription.ResourceDocuments, int64(1)).Return(nil)
	fx.gate.On("RequireQuota", ctx, fx.firmID, subscription.ResourceStorageMB, sizeMB).Return(nil)
}

func pdf(size int) Upload {
	return Upload{
		Filename:    "Requete.pdf",
		ContentType: "application/pdf",
		Size:        int64(size),
		Body:        strings.NewReader(strings.Repeat("x", size)),
	}
}

// =============================================================================
// Upload
// =============================================================================

func TestDocumentService_Upload(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	actor := uuid.New()
	fx.allowPlan(ctx, 1)
	keyPrefix := "firms/" + fx.firmID.String() + "/documents/"
	fx.storage.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, keyPrefix) && strings.HasSuffix(key, ".pdf")
	}), mock.Anything, int64(2048), "application/pdf").Return(nil).Once()
	fx.repo.On("Save", ctx, mock.AnythingOfType("*document.Document")).Return(nil).Once()

	resp, err := fx.svc.Upload(ctx, fx.firmID, actor, UploadRequest{
		Name:     "Requête en divorce",
		Category: "pleading",
		CaseID:   fx.matter.ID.String(),
		ClientID: fx.client.ID.String(),
	}, pdf(2048))
	require.NoError(t, err)
	assert.Equal(t, "Requête en divorce", resp.Name)
	assert.Equal(t, "pleading", resp.Category)
	assert.Equal(t, int64(2048), resp.SizeBytes)
	assert.Equal(t, actor, *resp.UploadedBy)
	assert.Equal(t, fx.matter.ID, *resp.CaseID)
	fx.storage.AssertExpectations(t)
	fx.repo.AssertExpectations(t)
}

func TestDocumentService_Upload_PlanLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("feature missing", func(t *testing.T) {
		fx := newFixture(t)
		fx.gate.On("RequireFeature", ctx, fx.firmID, subscription.FeatureDocumentStorage).Return(shared.ErrFeatureNotAvailable)
		_, err := fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{}, pdf(10))
		assert.ErrorIs(t, err, shared.ErrFeatureNotAvailable)
		fx.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage full", func(t *testing.T) {
		fx := newFixture(t)
		fx.gate.On("RequireFeature", ctx, fx.firmID, subscription.FeatureDocumentStorage).Return(nil)
		fx.gate.On("RequireQuota", ctx, fx.firmID, subscription.ResourceDocuments, int64(1)).Return(nil)
		fx.gate.On("RequireQuota", ctx, fx.firmID, subscription.ResourceStorageMB, int64(3)).Return(shared.ErrQuotaExceeded)
		_, err := fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{}, pdf((2<<20)+1))
		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
		fx.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("too large", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{}, Upload{Filename: "scan.tiff", Size: document.MaxSizeBytes + 1, Body: strings.NewReader("")})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "FILE_TOO_LARGE", de.Code)
		fx.gate.AssertNotCalled(t, "RequireFeature", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentService_Upload_RejectsForeignLinks(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.allowPlan(ctx, 1)
	other := uuid.New()

	_, err := fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{CaseID: other.String()}, pdf(10))
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CASE", de.Code)

	_, err = fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{CaseID: fx.matter.ID.String(), ClientID: other.String()}, pdf(10))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CLIENT", de.Code)
}

func TestDocumentService_Upload_RemovesObjectWhenSaveFails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.allowPlan(ctx, 1)
	var storedKey string
	fx.storage.On("Put", ctx, mock.Anything, mock.Anything, int64(10), "application/pdf").
		Run(func(args mock.Arguments) { storedKey = args.String(1) }).
		Return(nil)
	fx.repo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))
	fx.storage.On("Delete", ctx, mock.Anything).Return(nil)

	_, err := fx.svc.Upload(ctx, fx.firmID, uuid.New(), UploadRequest{}, pdf(10))
	assert.EqualError(t, err, "connection reset")
	fx.storage.AssertCalled(t, "Delete", ctx, storedKey)
}

// =============================================================================
// Download and delete
// =============================================================================

func TestDocumentService_Download(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	d, err := document.NewDocument(fx.firmID, "Jugement.pdf", document.CategoryJudgment, "application/pdf", 100)
	require.NoError(t, err)
	expires := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	fx.repo.On("FindByIDForFirm", ctx, fx.firmID, d.ID).Return(d, nil)
	fx.storage.On("PresignDownload", ctx, d.StorageKey, "Jugement.pdf", 5*time.Minute).
		Return("https://s3.example/obj?sig=abc", expires, nil)

	fx.svc.SetDownloadTTL(5 * time.Minute)
	link, err := fx.svc.Download(ctx, fx.firmID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example/obj?sig=abc", link.URL)
	assert.Equal(t, expires, link.ExpiresAt)

	missing := uuid.New()
	fx.repo.On("FindByIDForFirm", ctx, fx.firmID, missing).Return(nil, shared.ErrNotFound)
	_, err = fx.svc.Download(ctx, fx.firmID, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDocumentService_Delete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	d, err := document.NewDocument(fx.firmID, "Contrat.docx", document.CategoryContract, "", 100)
	require.NoError(t, err)
	fx.repo.On("FindByIDForFirm", ctx, fx.firmID, d.ID).Return(d, nil)

	fx.storage.On("Delete", ctx, d.StorageKey).Return(errors.New("access denied")).Once()
	assert.Error(t, fx.svc.Delete(ctx, fx.firmID, d.ID))
	fx.repo.AssertNotCalled(t, "DeleteForFirm", mock.Anything, mock.Anything, mock.Anything)

	fx.storage.On("Delete", ctx, d.StorageKey).Return(nil).Once()
	fx.repo.On("DeleteForFirm", ctx, fx.firmID, d.ID).Return(nil).Once()
	require.NoError(t, fx.svc.Delete(ctx, fx.firmID, d.ID))
	fx.repo.AssertExpectations(t)
}

func TestDocumentService_ListAndUsage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.repo.On("FindAllForFirm", ctx, fx.firmID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" &&
			f.Filters["case_id"] == fx.matter.ID.String() && f.Filters["category"] == "evidence"
	})).Return([]document.Document{}, int64(0), nil)
	fx.repo.On("CountForFirm", ctx, fx.firmID).Return(int64(4), nil)
	fx.repo.On("TotalSizeForFirm", ctx, fx.firmID).Return(int64(5<<20), nil)

	items, total, err := fx.svc.List(ctx, fx.firmID, DocumentListFilter{CaseID: fx.matter.ID.String(), Category: "evidence"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	usage, err := fx.svc.Usage(ctx, fx.firmID)
	require.NoError(t, err)
	assert.Equal(t, &StorageUsageResponse{Documents: 4, Bytes: 5 << 20}, usage)
}
