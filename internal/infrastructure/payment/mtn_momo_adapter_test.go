package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

type fakeMTN struct {
	tokenCalls atomic.Int32
	lastBody   mtnRequestToPay
	lastRef    string
	lastCB     string
	status     string
}

func (f *fakeMTN) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collection/token/", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api-user", user)
		assert.Equal(t, "api-key", pass)
		assert.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		f.tokenCalls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"access_token","expires_in":3600}`))
	})
	mux.HandleFunc("POST /collection/v1_0/requesttopay", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "sandbox", r.Header.Get("X-Target-Environment"))
		f.lastRef = r.Header.Get("X-Reference-Id")
		f.lastCB = r.Header.Get("X-Callback-Url")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastBody))
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /collection/v1_0/requesttopay/{ref}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"amount":                 "5000",
			"currency":               "EUR",
			"financialTransactionId": "fin-1",
			"externalId":             r.PathValue("ref"),
			"payer":                  map[string]string{"partyIdType": "MSISDN", "partyId": "237670000000"},
			"status":                 f.status,
			"reason":                 "APPROVAL_REJECTED",
		})
	})
	return mux
}

func newTestMTN(t *testing.T, f *fakeMTN) *MTNMoMoAdapter {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	a, err := NewMTNMoMoAdapter(config.MTNMoMoConfig{
		BaseURL:         srv.URL + "/",
		SubscriptionKey: "sub-key",
		APIUser:         "api-user",
		APIKey:          "api-key",
	}, srv.Client())
	require.NoError(t, err)
	return a
}

func TestNewMTNMoMoAdapter_Validation(t *testing.T) {
	_, err := NewMTNMoMoAdapter(config.MTNMoMoConfig{APIUser: "u", APIKey: "k"}, nil)
	assert.ErrorIs(t, err, ErrMTNMissingSubscriptionKey)

	_, err = NewMTNMoMoAdapter(config.MTNMoMoConfig{SubscriptionKey: "s"}, nil)
	assert.ErrorIs(t, err, ErrMTNMissingAPIUser)
}

func TestMTNMoMoAdapter_InitiatePayment(t *testing.T) {
	f := &fakeMTN{}
	a := newTestMTN(t, f)
	ext := uuid.New().String()

	res, err := a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID:  ext,
		Amount:      decimal.NewFromInt(5000),
		Currency:    "XAF",
		PayerPhone:  "+237670000000",
		Description: "LexDesk pro x1",
		CallbackURL: "https://api.test/callback/mtn_momo",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderMTNMoMo, res.Provider)
	assert.Equal(t, ext, res.ProviderReference)
	assert.Equal(t, domain.GatewayStatusPending, res.Status)
	assert.Equal(t, ext, f.lastRef)
	assert.Equal(t, "https://api.test/callback/mtn_momo", f.lastCB)
	assert.Equal(t, "237670000000", f.lastBody.Payer.PartyID)
	assert.Equal(t, "5000", f.lastBody.Amount)
	assert.Equal(t, "EUR", f.lastBody.Currency, "sandbox only accepts EUR")

	// token is cached
	_, err = a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID: uuid.New().String(), Amount: decimal.NewFromInt(1), Currency: "XAF", PayerPhone: "+237670000000",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestMTNMoMoAdapter_InitiatePayment_Validation(t *testing.T) {
	a := newTestMTN(t, &fakeMTN{})

	_, err := a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID: "not-a-uuid", Amount: decimal.NewFromInt(1), Currency: "XAF", PayerPhone: "+237670000000",
	})
	assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)

	_, err = a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID: uuid.New().String(), Amount: decimal.Zero, Currency: "XAF", PayerPhone: "+237670000000",
	})
	assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
}

func TestMTNMoMoAdapter_QueryPayment(t *testing.T) {
	tests := []struct {
		status string
		want   domain.GatewayStatus
	}{
		{"SUCCESSFUL", domain.GatewayStatusSuccessful},
		{"PENDING", domain.GatewayStatusPending},
		{"FAILED", domain.GatewayStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			a := newTestMTN(t, &fakeMTN{status: tt.status})
			ref := uuid.New().String()

			res, err := a.QueryPayment(context.Background(), ref, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, ref, res.ExternalID)
			assert.True(t, decimal.NewFromInt(5000).Equal(res.Amount))
			if tt.want == domain.GatewayStatusSuccessful {
				assert.NotNil(t, res.PaidAt)
			}
			if tt.want == domain.GatewayStatusFailed {
				assert.Equal(t, "APPROVAL_REJECTED", res.Reason)
			}
		})
	}
}

func TestMTNMoMoAdapter_ParseCallback_ConfirmsWithQuery(t *testing.T) {
	// the callback claims success but the API says it failed
	a := newTestMTN(t, &fakeMTN{status: "FAILED"})
	ref := uuid.New().String()
	payload := []byte(`{"externalId":"` + ref + `","status":"SUCCESSFUL","amount":"5000","currency":"EUR"}`)

	res, err := a.ParseCallback(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayStatusFailed, res.Status)
	assert.Equal(t, ref, res.ExternalID)

	_, err = a.ParseCallback(context.Background(), []byte(`{}`), "")
	assert.ErrorIs(t, err, domain.ErrGatewayInvalidCallback)

	_, err = a.ParseCallback(context.Background(), []byte(`not json`), "")
	assert.ErrorIs(t, err, domain.ErrGatewayInvalidCallback)
}

func TestMTNMoMoAdapter_UnauthorizedResetsToken(t *testing.T) {
	var tokenCalls atomic.Int32
	var first atomic.Bool
	first.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collection/token/", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":"3600"}`))
	})
	mux.HandleFunc("GET /collection/v1_0/requesttopay/{ref}", func(w http.ResponseWriter, r *http.Request) {
		if first.Swap(false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"status":"PENDING"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a, err := NewMTNMoMoAdapter(config.MTNMoMoConfig{BaseURL: srv.URL, SubscriptionKey: "s", APIUser: "u", APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	_, err = a.QueryPayment(context.Background(), "r", "r")
	assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)

	res, err := a.QueryPayment(context.Background(), "r", "r")
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayStatusPending, res.Status)
	assert.Equal(t, int32(2), tokenCalls.Load())
}

func TestMTNMoMoAdapter_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a, err := NewMTNMoMoAdapter(config.MTNMoMoConfig{BaseURL: srv.URL, SubscriptionKey: "s", APIUser: "u", APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	_, err = a.QueryPayment(context.Background(), "r", "r")
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}
