package testutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	require.NotNil(t, m.DB)
	require.NotNil(t, m.Mock)
	m.ExpectationsWereMet(t)
}

func TestSessionApply(t *testing.T) {
	tc := NewTestContext(t)
	tc.SetSession(Session{FirmID: TestFirmID(), ProfileID: TestProfileID(), Role: "lawyer"})

	assert.Equal(t, TestFirmID(), middleware.GetFirmID(tc.Context))
	assert.Equal(t, TestProfileID(), middleware.GetProfileID(tc.Context))
	assert.Equal(t, "lawyer", middleware.GetRole(tc.Context))
}

func TestSessionMiddleware(t *testing.T) {
	engine := gin.New()
	engine.GET("/whoami", OwnerSession().Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRole(c))
	})

	tc := NewTestContextWithRequest(t, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	engine.ServeHTTP(tc.Recorder, tc.Context.Request)
	assert.Equal(t, http.StatusOK, tc.ResponseCode())
	assert.Equal(t, "owner", tc.Recorder.Body.String())
}

func TestTestContextSetters(t *testing.T) {
	tc := NewTestContext(t)
	tc.SetRequestID("req-1")
	tc.SetHeader("X-Custom", "v")

	assert.Equal(t, "req-1", tc.Context.GetString(middleware.RequestIDKey))
	assert.Equal(t, "v", tc.Context.Request.Header.Get("X-Custom"))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.NotEqual(t, TestFirmID(), TestProfileID())
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, 10*time.Millisecond)
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}

func TestWaitForCondition(t *testing.T) {
	start := time.Now()
	assert.True(t, WaitForCondition(func() bool {
		return time.Since(start) > 20*time.Millisecond
	}, time.Second, 5*time.Millisecond))

	assert.False(t, WaitForCondition(func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond))
}

func TestRequireEventuallyAndAssertNever(t *testing.T) {
	ready := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(ready)
	}()
	RequireEventually(t, func() bool {
		select {
		case <-ready:
			return true
		default:
			return false
		}
	}, time.Second, 2*time.Millisecond)

	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		if middleware.GetFirmID(c) != TestFirmID() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Sign in first"},
			})
			return
		}
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_REQUEST", "message": err.Error()},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": c.Param("id"), "name": body["name"]}})
	}

	owner := OwnerSession()
	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "anonymous",
			Method:         http.MethodPost,
			Body:           map[string]string{"name": "Diallo"},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "UNAUTHORIZED",
		},
		{
			Name:           "missing body",
			Method:         http.MethodPost,
			Session:        &owner,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "INVALID_REQUEST",
		},
		{
			Name:           "ok",
			Method:         http.MethodPut,
			Path:           "/clients/42",
			Params:         gin.Params{{Key: "id", Value: "42"}},
			Body:           map[string]string{"name": "Diallo"},
			Session:        &owner,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc)
				resp := JSONResponseAs[struct {
					Data struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"data"`
				}](t, tc)
				assert.Equal(t, "42", resp.Data.ID)
				assert.Equal(t, "Diallo", resp.Data.Name)
			},
		},
	})
}

func TestRecordingPublisher(t *testing.T) {
	p := NewRecordingPublisher()
	ctx := ContextWithTimeout(t, time.Second)

	require.NoError(t, p.Publish(ctx, NewTestEvent("case.opened", "a"), NewTestEvent("case.closed", "b")))
	assert.Equal(t, []string{"case.opened", "case.closed"}, p.Types())
	assert.Len(t, p.OfType("case.closed"), 1)

	p.FailWith(errors.New("bus down"))
	assert.Error(t, p.Publish(ctx, NewTestEvent("case.opened", "c")))
	assert.Len(t, p.Events(), 3)

	var _ shared.EventPublisher = p
}
