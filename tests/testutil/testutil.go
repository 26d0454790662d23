// Package testutil holds helpers shared by unit and integration tests:
// sqlmock-backed GORM, authenticated gin contexts and polling assertions.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is GORM on top of sqlmock
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a postgres-dialect GORM connection on sqlmock. The
// connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: sqlDB}
}

// ExpectationsWereMet fails the test on unmet database expectations
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// Session is the identity a test request runs as
type Session struct {
	FirmID    uuid.UUID
	ProfileID uuid.UUID
	Role      string
}

// OwnerSession returns a session for the standard test firm's owner
func OwnerSession() Session {
	return Session{FirmID: TestFirmID(), ProfileID: TestProfileID(), Role: "owner"}
}

// Apply stores the session the way the JWT middleware does
func (s Session) Apply(c *gin.Context) {
	c.Set(middleware.JWTFirmIDKey, s.FirmID.String())
	c.Set(middleware.JWTProfileIDKey, s.ProfileID.String())
	c.Set(middleware.JWTRoleKey, s.Role)
	c.Set(middleware.JWTClaimsKey, &auth.Claims{
		FirmID:    s.FirmID.String(),
		ProfileID: s.ProfileID.String(),
		Role:      s.Role,
		TokenType: auth.TokenTypeAccess,
	})
}

// Middleware signs every request in as s
func (s Session) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.Apply(c)
		c.Next()
	}
}

// TestContext is a gin context with its recorder
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a context for a GET / request
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	return NewTestContextWithRequest(t, httptest.NewRequest(http.MethodGet, "/", nil))
}

// NewTestContextWithRequest creates a context serving req
func NewTestContextWithRequest(t *testing.T, req *http.Request) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = req
	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetSession authenticates the context as s
func (tc *TestContext) SetSession(s Session) {
	s.Apply(tc.Context)
}

// SetRequestID sets the request id read by response helpers
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set(middleware.RequestIDKey, id)
}

// SetHeader sets a request header
func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

// ResponseBody returns the response body
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a reproducible UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("lexdesk-test:"+seed))
}

// TestFirmID is the standard firm used across tests
func TestFirmID() uuid.UUID {
	return NewTestUUID("firm")
}

// TestProfileID is the standard profile used across tests
func TestProfileID() uuid.UUID {
	return NewTestUUID("profile")
}

// ContextWithTimeout returns a context cancelled when the test ends or
// after timeout
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout expires
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !WaitForCondition(condition, timeout, interval) {
		require.Fail(t, "Condition not met within "+timeout.String(), msgAndArgs...)
	}
}

// AssertNever fails if condition becomes true within duration
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if WaitForCondition(condition, duration, interval) {
		require.Fail(t, "Condition unexpectedly became true", msgAndArgs...)
	}
}

// WaitForCondition polls condition and reports whether it held in time
func WaitForCondition(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
