package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

func newTestOrange(t *testing.T, status string, gotPay *orangePayRequest) *OrangeMoneyAdapter {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, _ := r.BasicAuth()
		assert.Equal(t, "client", id)
		assert.Equal(t, "secret", secret)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"otok","expires_in":3600}`))
	})
	mux.HandleFunc("POST /mp/init", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer otok", r.Header.Get("Authorization"))
		assert.Equal(t, "x-auth", r.Header.Get("X-AUTH-TOKEN"))
		_, _ = w.Write([]byte(`{"message":"Payment request successfully initiated","data":{"payToken":"MP123"}}`))
	})
	mux.HandleFunc("POST /mp/pay", func(w http.ResponseWriter, r *http.Request) {
		if gotPay != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(gotPay))
		}
		_, _ = w.Write([]byte(`{"message":"ok","data":{"payToken":"MP123","status":"PENDING","orderId":"ord-1"}}`))
	})
	mux.HandleFunc("GET /mp/paymentstatus/{token}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MP123", r.PathValue("token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"data": map[string]any{
				"payToken":          "MP123",
				"status":            status,
				"orderId":           "ord-1",
				"amount":            15000,
				"subscriberMsisdn":  "690000000",
				"confirmtxnmessage": "Solde insuffisant",
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	a, err := NewOrangeMoneyAdapter(config.OrangeMoneyConfig{
		BaseURL:       srv.URL,
		TokenURL:      srv.URL + "/token",
		ClientID:      "client",
		ClientSecret:  "secret",
		AuthToken:     "x-auth",
		ChannelMSISDN: "691111111",
		PIN:           "2222",
	}, srv.Client())
	require.NoError(t, err)
	return a
}

func TestNewOrangeMoneyAdapter_Validation(t *testing.T) {
	_, err := NewOrangeMoneyAdapter(config.OrangeMoneyConfig{}, nil)
	assert.ErrorIs(t, err, ErrOrangeMissingCredentials)

	_, err = NewOrangeMoneyAdapter(config.OrangeMoneyConfig{ClientID: "a", ClientSecret: "b"}, nil)
	assert.ErrorIs(t, err, ErrOrangeMissingMerchant)
}

func TestOrangeMoneyAdapter_InitiatePayment(t *testing.T) {
	var pay orangePayRequest
	a := newTestOrange(t, "PENDING", &pay)

	res, err := a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID:  "ord-1",
		Amount:      decimal.RequireFromString("15000"),
		Currency:    "XAF",
		PayerPhone:  "+237690000000",
		Description: "Subscription",
		CallbackURL: "https://api.test/cb/orange_money",
	})
	require.NoError(t, err)

	assert.Equal(t, "MP123", res.ProviderReference)
	assert.Equal(t, domain.GatewayStatusPending, res.Status)
	assert.Equal(t, "690000000", pay.SubscriberMsisdn)
	assert.Equal(t, "691111111", pay.ChannelUserMsisdn)
	assert.Equal(t, "15000", pay.Amount)
	assert.Equal(t, "MP123", pay.PayToken)
	assert.Equal(t, "https://api.test/cb/orange_money", pay.NotifURL)
}

func TestOrangeMoneyAdapter_QueryPayment(t *testing.T) {
	tests := []struct {
		status string
		want   domain.GatewayStatus
	}{
		{"SUCCESSFULL", domain.GatewayStatusSuccessful},
		{"PENDING", domain.GatewayStatusPending},
		{"FAILED", domain.GatewayStatusFailed},
		{"EXPIRED", domain.GatewayStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			a := newTestOrange(t, tt.status, nil)
			res, err := a.QueryPayment(context.Background(), "ord-1", "MP123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, "ord-1", res.ExternalID)
			assert.True(t, decimal.NewFromInt(15000).Equal(res.Amount))
			if tt.want == domain.GatewayStatusFailed {
				assert.Equal(t, "Solde insuffisant", res.Reason)
			}
		})
	}

	a := newTestOrange(t, "PENDING", nil)
	_, err := a.QueryPayment(context.Background(), "ord-1", "")
	assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
}

func TestOrangeMoneyAdapter_ParseCallback(t *testing.T) {
	a := newTestOrange(t, "SUCCESSFULL", nil)

	res, err := a.ParseCallback(context.Background(), []byte(`{"payToken":"MP123","status":"SUCCESSFULL","txnid":"MP2301"}`), "")
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayStatusSuccessful, res.Status)
	assert.NotNil(t, res.PaidAt)

	_, err = a.ParseCallback(context.Background(), []byte(`{"status":"SUCCESSFULL"}`), "")
	assert.ErrorIs(t, err, domain.ErrGatewayInvalidCallback)
}
