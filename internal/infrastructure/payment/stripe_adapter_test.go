package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

const stripeTestSecret = "whsec_test"

func newTestStripe(t *testing.T, handler http.Handler) *StripeAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a, err := NewStripeAdapter(config.StripeConfig{
		Enabled:       true,
		BaseURL:       srv.URL,
		SecretKey:     "sk_test_123",
		WebhookSecret: stripeTestSecret,
		SuccessURL:    "https://app.test/billing/done",
		CancelURL:     "https://app.test/billing",
	}, srv.Client(), nil)
	require.NoError(t, err)
	return a
}

func stripeSessionJSON(status, paymentStatus string) string {
	return fmt.Sprintf(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1",`+
		`"status":%q,"payment_status":%q,"amount_total":15000,"currency":"xaf",`+
		`"client_reference_id":"ext-1","metadata":{"external_id":"ext-1"}}`, status, paymentStatus)
}

func TestNewStripeAdapter_RequiresCredentials(t *testing.T) {
	_, err := NewStripeAdapter(config.StripeConfig{Enabled: true, SecretKey: "sk"}, nil, nil)
	assert.ErrorIs(t, err, ErrStripeMissingCredentials)
}

func TestStripeAdapter_InitiatePayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "checkout-ext-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "ext-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "ext-1", r.PostForm.Get("metadata[external_id]"))
		assert.Equal(t, "xaf", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "15000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "https://app.test/billing/done", r.PostForm.Get("success_url"))
		assert.Equal(t, "owner@firm.test", r.PostForm.Get("customer_email"))
		_, _ = w.Write([]byte(stripeSessionJSON("open", "unpaid")))
	})
	a := newTestStripe(t, mux)

	resp, err := a.InitiatePayment(context.Background(), &domain.InitiateRequest{
		ExternalID:    "ext-1",
		Amount:        decimal.NewFromInt(15000),
		Currency:      "XAF",
		Description:   "Pro plan, 1 month",
		CustomerEmail: "owner@firm.test",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStripe, resp.Provider)
	assert.Equal(t, "cs_test_1", resp.ProviderReference)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", resp.PaymentURL)
	assert.Equal(t, domain.GatewayStatusPending, resp.Status)
}

func TestStripeAdapter_InitiatePayment_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"card declined", http.StatusPaymentRequired, domain.ErrGatewayRequestFailed},
		{"stripe down", http.StatusInternalServerError, domain.ErrGatewayUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestStripe(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"nope"}}`))
			}))
			_, err := a.InitiatePayment(context.Background(), &domain.InitiateRequest{
				ExternalID: "ext-1", Amount: decimal.NewFromInt(100), Currency: "EUR",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStripeAdapter_QueryPayment(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		paymentStatus string
		want          domain.GatewayStatus
	}{
		{"paid", "complete", "paid", domain.GatewayStatusSuccessful},
		{"open", "open", "unpaid", domain.GatewayStatusPending},
		{"completed awaiting async payment", "complete", "unpaid", domain.GatewayStatusPending},
		{"expired", "expired", "unpaid", domain.GatewayStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /v1/checkout/sessions/cs_test_1", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(stripeSessionJSON(tt.status, tt.paymentStatus)))
			})
			a := newTestStripe(t, mux)

			resp, err := a.QueryPayment(context.Background(), "ext-1", "cs_test_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, "ext-1", resp.ExternalID)
			assert.Equal(t, "XAF", resp.Currency)
			assert.True(t, decimal.NewFromInt(15000).Equal(resp.Amount))
			assert.Equal(t, tt.want == domain.GatewayStatusSuccessful, resp.PaidAt != nil)
		})
	}

	a := newTestStripe(t, http.NotFoundHandler())
	_, err := a.QueryPayment(context.Background(), "ext-1", "")
	assert.ErrorIs(t, err, domain.ErrGatewayRequestFailed)
}

func signedStripeEvent(t *testing.T, eventType, session string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":"2020-08-27","data":{"object":%s}}`,
		eventType, session))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    stripeTestSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return payload, signed.Header
}

func TestStripeAdapter_ParseCallback(t *testing.T) {
	a := newTestStripe(t, http.NotFoundHandler())
	ctx := context.Background()

	tests := []struct {
		name      string
		eventType string
		session   string
		want      domain.GatewayStatus
	}{
		{"completed and paid", "checkout.session.completed", stripeSessionJSON("complete", "paid"), domain.GatewayStatusSuccessful},
		{"completed awaiting funds", "checkout.session.completed", stripeSessionJSON("complete", "unpaid"), domain.GatewayStatusPending},
		{"async succeeded", "checkout.session.async_payment_succeeded", stripeSessionJSON("complete", "paid"), domain.GatewayStatusSuccessful},
		{"async failed", "checkout.session.async_payment_failed", stripeSessionJSON("complete", "unpaid"), domain.GatewayStatusFailed},
		{"expired", "checkout.session.expired", stripeSessionJSON("expired", "unpaid"), domain.GatewayStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, sig := signedStripeEvent(t, tt.eventType, tt.session)
			resp, err := a.ParseCallback(ctx, payload, sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, "ext-1", resp.ExternalID)
			assert.Equal(t, "cs_test_1", resp.ProviderReference)
		})
	}

	t.Run("bad signature", func(t *testing.T) {
		payload, _ := signedStripeEvent(t, "checkout.session.completed", stripeSessionJSON("complete", "paid"))
		_, err := a.ParseCallback(ctx, payload, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, domain.ErrGatewayInvalidCallback)
	})

	t.Run("unrelated event", func(t *testing.T) {
		obj, _ := json.Marshal(map[string]string{"id": "in_1", "object": "invoice"})
		payload, sig := signedStripeEvent(t, "invoice.paid", string(obj))
		_, err := a.ParseCallback(ctx, payload, sig)
		assert.ErrorIs(t, err, domain.ErrGatewayInvalidCallback)
	})
}

func TestStripeMinorUnits(t *testing.T) {
	assert.Equal(t, int64(5000), toMinorUnits(decimal.NewFromInt(5000), "XAF"))
	assert.Equal(t, int64(1999), toMinorUnits(decimal.RequireFromString("19.99"), "eur"))
	assert.True(t, decimal.RequireFromString("19.99").Equal(fromMinorUnits(1999, "EUR")))
	assert.True(t, decimal.NewFromInt(5000).Equal(fromMinorUnits(5000, "XOF")))
}
