package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// session is the authenticated caller a test router impersonates
type session struct {
	firmID    uuid.UUID
	profileID uuid.UUID
	role      string
}

func newSession() *session {
	return &session{firmID: uuid.New(), profileID: uuid.New(), role: "owner"}
}

// newTestRouter returns an engine that sets the JWT context values the
// real middleware would. A nil session leaves the request anonymous.
func newTestRouter(s *session) *gin.Engine {
	r := gin.New()
	if s != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTFirmIDKey, s.firmID.String())
			c.Set(middleware.JWTProfileIDKey, s.profileID.String())
			c.Set(middleware.JWTRoleKey, s.role)
			c.Set(middleware.JWTClaimsKey, &auth.Claims{
				FirmID:    s.firmID.String(),
				ProfileID: s.profileID.String(),
				Role:      s.role,
				TokenType: auth.TokenTypeAccess,
			})
			c.Next()
		})
	}
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.NotNil(t, resp.Error, rec.Body.String())
	return resp.Error.Code
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", errors.Join(errors.New("ctx"), shared.NewDomainError("QUOTA_EXCEEDED", "limit")), http.StatusForbidden, dto.ErrCodeQuotaExceeded},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := gin.New()
			r.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			rec := doRequest(r, http.MethodGet, "/", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalMessage(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/", func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })

	rec := doRequest(r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")
}

func TestBaseHandler_FirmIDRequiresAuthentication(t *testing.T) {
	h := &BaseHandler{}
	handler := func(c *gin.Context) {
		if _, ok := h.firmID(c); ok {
			h.NoContent(c)
		}
	}

	anonymous := newTestRouter(nil)
	anonymous.GET("/", handler)
	rec := doRequest(anonymous, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, rec))

	authed := newTestRouter(newSession())
	authed.GET("/", handler)
	rec = doRequest(authed, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id)
	})

	rec := doRequest(r, http.MethodGet, "/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, rec))

	id := uuid.New()
	rec = doRequest(r, http.MethodGet, "/items/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeResponse[uuid.UUID](t, rec).Data)
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req body
		if !h.bindJSON(c, &req) {
			return
		}
		h.Success(c, req.Name)
	})

	rec := doRequest(r, http.MethodPost, "/", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, rec))

	rec = doRequest(r, http.MethodPost, "/", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(t, rec))

	rec = doRequest(r, http.MethodPost, "/", map[string]string{"name": "Ndiaye"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ndiaye", decodeResponse[string](t, rec).Data)
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		page, size := pageOf(0, 0)
		h.SuccessWithMeta(c, []string{"a"}, 45, page, size)
	})

	rec := doRequest(r, http.MethodGet, "/", nil)

	resp := decodeResponse[[]string](t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func doSignedCallback(r http.Handler, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CallbackSignatureHeader, token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
