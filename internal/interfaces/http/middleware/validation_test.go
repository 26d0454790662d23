package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentInput struct {
	Phone  string `json:"phone" binding:"required,msisdn"`
	Months int    `json:"months" binding:"required,oneof=1 3 6 12"`
	Email  string `json:"email" binding:"omitempty,email"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID(nil))
	router.POST("/test", func(c *gin.Context) {
		var in paymentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_MSISDN(t *testing.T) {
	router := validationRouter()

	tests := []struct {
		phone string
		ok    bool
	}{
		{"677123456", true},
		{"+237 699 12 34 56", true},
		{"00237650123456", true},
		{"222123456", false},
		{"12345", false},
		{"+33612345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			w := postJSON(router, `{"phone":"`+tt.phone+`","months":1}`)
			if tt.ok {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid mobile number")
		})
	}
}

func TestHandleValidationError_Details(t *testing.T) {
	router := validationRouter()

	w := postJSON(router, `{"months":2,"email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["phone"])
	assert.Equal(t, "Must be one of: 1 3 6 12", messages["months"])
	assert.Equal(t, "Invalid email format", messages["email"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := validationRouter()

	w := postJSON(router, `{"phone":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error.Details)
}
