package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	clientapp "github.com/lexdesk/backend/internal/application/client"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupClientRouter(s *session) (*mockClientManager, http.Handler) {
	clients := new(mockClientManager)
	h := NewClientHandler(clients)

	r := newTestRouter(s)
	r.POST("/clients", h.Create)
	r.GET("/clients", h.List)
	r.GET("/clients/:id", h.GetByID)
	r.POST("/clients/:id/archive", h.Archive)
	r.PUT("/clients/:id/status", h.SetStatus)
	r.DELETE("/clients/:id", h.Delete)
	return clients, r
}

func TestClientHandler_Create(t *testing.T) {
	s := newSession()
	clients, r := setupClientRouter(s)
	req := clientapp.CreateClientRequest{Kind: "company", Name: "Brasseries du Littoral", City: "Douala"}
	clients.On("Create", mock.Anything, s.firmID, s.profileID, req).
		Return(&clientapp.ClientResponse{ID: uuid.New(), Name: req.Name, Status: "active"}, nil)

	rec := doRequest(r, http.MethodPost, "/clients", req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "active", decodeResponse[clientapp.ClientResponse](t, rec).Data.Status)
	clients.AssertExpectations(t)
}

func TestClientHandler_CreateRejectsUnknownKind(t *testing.T) {
	clients, r := setupClientRouter(newSession())

	rec := doRequest(r, http.MethodPost, "/clients", map[string]string{"kind": "trust", "name": "Some Trust"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClientHandler_List(t *testing.T) {
	s := newSession()
	clients, r := setupClientRouter(s)
	clients.On("List", mock.Anything, s.firmID, clientapp.ClientListFilter{Search: "douala", Status: "active"}).
		Return([]clientapp.ClientResponse{{Name: "A"}, {Name: "B"}}, int64(2), nil)

	rec := doRequest(r, http.MethodGet, "/clients?search=douala&status=active", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse[[]clientapp.ClientResponse](t, rec)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestClientHandler_GetByIDScopedToFirm(t *testing.T) {
	s := newSession()
	clients, r := setupClientRouter(s)
	other := uuid.New()
	clients.On("GetByID", mock.Anything, s.firmID, other).Return(nil, shared.ErrNotFound)

	rec := doRequest(r, http.MethodGet, "/clients/"+other.String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	clients.AssertExpectations(t)
}

func TestClientHandler_SetStatus(t *testing.T) {
	s := newSession()
	id := uuid.New()
	clients, r := setupClientRouter(s)
	clients.On("SetStatus", mock.Anything, s.firmID, id, clientapp.UpdateClientStatusRequest{Status: "inactive"}).
		Return(&clientapp.ClientResponse{ID: id, Status: "inactive"}, nil)

	rec := doRequest(r, http.MethodPut, "/clients/"+id.String()+"/status", clientapp.UpdateClientStatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodPut, "/clients/"+id.String()+"/status", clientapp.UpdateClientStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "archiving has its own route")
}

func TestClientHandler_Delete(t *testing.T) {
	s := newSession()
	id := uuid.New()

	t.Run("removed", func(t *testing.T) {
		clients, r := setupClientRouter(s)
		clients.On("Delete", mock.Anything, s.firmID, id).Return(nil)

		rec := doRequest(r, http.MethodDelete, "/clients/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("has cases", func(t *testing.T) {
		clients, r := setupClientRouter(s)
		clients.On("Delete", mock.Anything, s.firmID, id).
			Return(shared.NewDomainError("INVALID_STATE", "Client has cases; archive it instead"))

		rec := doRequest(r, http.MethodDelete, "/clients/"+id.String(), nil)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
