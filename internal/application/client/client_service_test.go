package client

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
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

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]client.Client, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]client.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	args := m.Called(ctx, firmID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) ExistsByEmail(ctx context.Context, firmID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, firmID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	args := m.Called(ctx, firmID, id)
	return args.Error(0)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*client.ProfessionalContact, error) {
	args := m.Called(ctx, firmID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ProfessionalContact), args.Error(1)
}

func (m *MockContactRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]client.ProfessionalContact, int64, error) {
	args := m.Called(ctx, firmID, filter)
	return args.Get(0).([]client.ProfessionalContact), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactRepository) Save(ctx context.Context, c *client.ProfessionalContact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	args := m.Called(ctx, firmID, id)
	return args.Error(0)
}

// MockCaseRepository only backs the delete guard
type MockCaseRepository struct {
	matter.CaseRepository
	mock.Mock
}

func (m *MockCaseRepository) CountByClient(ctx context.Context, firmID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, firmID, clientID)
	return args.Get(0).(int64), args.Error(1)
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

func newClientService() (*ClientService, *MockClientRepository, *MockCaseRepository, *MockGate) {
	clients := new(MockClientRepository)
	cases := new(MockCaseRepository)
	gate := new(MockGate)
	return NewClientService(clients, cases, gate, nil), clients, cases, gate
}

func existingClient(t *testing.T, firmID uuid.UUID) *client.Client {
	t.Helper()
	c, err := client.NewClient(firmID, client.KindIndividual, "Jean Mbarga")
	require.NoError(t, err)
	require.NoError(t, c.SetContact("jean@mbarga.cm", "677000111", "", "Yaoundé"))
	return c
}

// =============================================================================
// ClientService
// =============================================================================

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	firmID, actorID := uuid.New(), uuid.New()

	t.Run("creates within quota", func(t *testing.T) {
		svc, clients, _, gate := newClientService()
		gate.On("RequireQuota", ctx, firmID, subscription.ResourceClients, int64(1)).Return(nil)
		clients.On("ExistsByEmail", ctx, firmID, "contact@sabc.cm").Return(false, nil)
		clients.On("Save", ctx, mock.AnythingOfType("*client.Client")).Return(nil)

		resp, err := svc.Create(ctx, firmID, actorID, CreateClientRequest{
			Kind:               "company",
			Name:               "SABC SA",
			Email:              " Contact@SABC.cm ",
			City:               "Douala",
			RegistrationNumber: "RC/DLA/2001/B/123",
		})
		require.NoError(t, err)
		assert.Equal(t, "company", resp.Kind)
		assert.Equal(t, "contact@sabc.cm", resp.Email)
		assert.Equal(t, "active", resp.Status)
		require.NotNil(t, resp.CreatedBy)
		assert.Equal(t, actorID, *resp.CreatedBy)
		clients.AssertExpectations(t)
	})

	t.Run("quota exceeded stops before any write", func(t *testing.T) {
		svc, clients, _, gate := newClientService()
		gate.On("RequireQuota", ctx, firmID, subscription.ResourceClients, int64(1)).Return(shared.ErrQuotaExceeded)

		_, err := svc.Create(ctx, firmID, actorID, CreateClientRequest{Kind: "individual", Name: "Alain Fouda"})
		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
		clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, clients, _, gate := newClientService()
		gate.On("RequireQuota", ctx, firmID, subscription.ResourceClients, int64(1)).Return(nil)
		clients.On("ExistsByEmail", ctx, firmID, "jean@mbarga.cm").Return(true, nil)

		_, err := svc.Create(ctx, firmID, actorID, CreateClientRequest{Kind: "individual", Name: "Jean", Email: "jean@mbarga.cm"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()
	firmID := uuid.New()
	svc, clients, _, _ := newClientService()

	clients.On("FindAllForFirm", ctx, firmID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "name" && f.OrderDir == "asc" &&
			f.Search == "mba" && f.Filters["status"] == "active" && f.Filters["city"] == "Yaoundé" &&
			len(f.Filters) == 2
	})).Return([]client.Client{*existingClient(t, firmID)}, int64(1), nil)

	items, total, err := svc.List(ctx, firmID, ClientListFilter{Search: "mba", Status: "active", City: "Yaoundé"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Jean Mbarga", items[0].Name)
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()
	firmID := uuid.New()

	t.Run("keeping the same email skips the uniqueness check", func(t *testing.T) {
		svc, clients, _, _ := newClientService()
		c := existingClient(t, firmID)
		clients.On("FindByIDForFirm", ctx, firmID, c.ID).Return(c, nil)
		clients.On("Save", ctx, c).Return(nil)

		resp, err := svc.Update(ctx, firmID, c.ID, UpdateClientRequest{
			Name:  "Jean-Pierre Mbarga",
			Email: "jean@mbarga.cm",
			Phone: "699000111",
			Notes: "Prefers WhatsApp",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jean-Pierre Mbarga", resp.Name)
		assert.Equal(t, "individual", resp.Kind)
		assert.Equal(t, "699000111", resp.Phone)
		clients.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other firm's client is not found", func(t *testing.T) {
		svc, clients, _, _ := newClientService()
		id := uuid.New()
		clients.On("FindByIDForFirm", ctx, firmID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, firmID, id, UpdateClientRequest{Name: "Someone"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestClientService_ArchiveAndRestore(t *testing.T) {
	ctx := context.Background()
	firmID := uuid.New()
	svc, clients, _, gate := newClientService()
	c := existingClient(t, firmID)
	clients.On("FindByIDForFirm", ctx, firmID, c.ID).Return(c, nil)
	clients.On("Save", ctx, c).Return(nil)

	resp, err := svc.Archive(ctx, firmID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "archived", resp.Status)

	_, err = svc.Archive(ctx, firmID, c.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	gate.On("RequireQuota", ctx, firmID, subscription.ResourceClients, int64(1)).Return(shared.ErrQuotaExceeded).Once()
	_, err = svc.SetStatus(ctx, firmID, c.ID, UpdateClientStatusRequest{Status: "active"})
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	assert.Equal(t, client.StatusArchived, c.Status)

	gate.On("RequireQuota", ctx, firmID, subscription.ResourceClients, int64(1)).Return(nil).Once()
	resp, err = svc.SetStatus(ctx, firmID, c.ID, UpdateClientStatusRequest{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	resp, err = svc.SetStatus(ctx, firmID, c.ID, UpdateClientStatusRequest{Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	gate.AssertNumberOfCalls(t, "RequireQuota", 2)
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()
	firmID := uuid.New()

	t.Run("refused while cases exist", func(t *testing.T) {
		svc, clients, cases, _ := newClientService()
		c := existingClient(t, firmID)
		clients.On("FindByIDForFirm", ctx, firmID, c.ID).Return(c, nil)
		cases.On("CountByClient", ctx, firmID, c.ID).Return(int64(2), nil)

		err := svc.Delete(ctx, firmID, c.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CLIENT_HAS_CASES", de.Code)
		clients.AssertNotCalled(t, "DeleteForFirm", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes a client without cases", func(t *testing.T) {
		svc, clients, cases, _ := newClientService()
		c := existingClient(t, firmID)
		clients.On("FindByIDForFirm", ctx, firmID, c.ID).Return(c, nil)
		cases.On("CountByClient", ctx, firmID, c.ID).Return(int64(0), nil)
		clients.On("DeleteForFirm", ctx, firmID, c.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, firmID, c.ID))
		clients.AssertExpectations(t)
	})
}

// =============================================================================
// ContactService
// =============================================================================

func TestContactService(t *testing.T) {
	ctx := context.Background()
	firmID, actorID := uuid.New(), uuid.New()
	repo := new(MockContactRepository)
	svc := NewContactService(repo, nil)

	var saved *client.ProfessionalContact
	repo.On("Save", ctx, mock.AnythingOfType("*client.ProfessionalContact")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*client.ProfessionalContact) }).
		Return(nil)

	resp, err := svc.Create(ctx, firmID, actorID, ContactRequest{
		Name:         "Me Ngono",
		Category:     "bailiff",
		Organization: "Etude Ngono",
		Email:        "NGONO@etude.cm",
	})
	require.NoError(t, err)
	assert.Equal(t, "bailiff", resp.Category)
	assert.Equal(t, "ngono@etude.cm", resp.Email)
	ngono := saved

	t.Run("empty category defaults to other", func(t *testing.T) {
		resp, err := svc.Create(ctx, firmID, actorID, ContactRequest{Name: "Cabinet Expert"})
		require.NoError(t, err)
		assert.Equal(t, "other", resp.Category)
	})

	t.Run("update keeps category when omitted", func(t *testing.T) {
		repo.On("FindByIDForFirm", ctx, firmID, resp.ID).Return(ngono, nil)
		upd, err := svc.Update(ctx, firmID, resp.ID, ContactRequest{Name: "Me Ngono Paul", Phone: "699112233"})
		require.NoError(t, err)
		assert.Equal(t, "bailiff", upd.Category)
		assert.Equal(t, "699112233", upd.Phone)
	})

	t.Run("list filters by category", func(t *testing.T) {
		repo.On("FindAllForFirm", ctx, firmID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["category"] == "notary" && f.OrderBy == "name"
		})).Return([]client.ProfessionalContact{}, int64(0), nil)

		items, total, err := svc.List(ctx, firmID, ContactListFilter{Category: "notary"})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, total)
	})
}
