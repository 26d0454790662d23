package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

const (
	cinetpayPaymentPath = "/payment"
	cinetpayCheckPath   = "/payment/check"

	cinetpayCodeCreated = "201"
	cinetpayCodeOK      = "00"
)

var ErrCinetPayMissingCredentials = errors.New("cinetpay: missing api key or site id")

// cinetpayTokenFields are the notification fields, in the order they are
// concatenated to compute the x-token HMAC
var cinetpayTokenFields = []string{
	"cpm_site_id", "cpm_trans_id", "cpm_trans_date", "cpm_amount", "cpm_currency",
	"signature", "payment_method", "cel_phone_num", "cpm_phone_prefixe",
	"cpm_language", "cpm_version", "cpm_payment_config", "cpm_page_action",
	"cpm_custom", "cpm_designation", "cpm_error_message",
}

// CinetPayAdapter uses the CinetPay hosted checkout. The payer finishes
// on the returned payment URL and CinetPay posts a form notification.
type CinetPayAdapter struct {
	cfg        config.CinetPayConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewCinetPayAdapter validates cfg and builds the adapter
func NewCinetPayAdapter(cfg config.CinetPayConfig, httpClient *http.Client) (*CinetPayAdapter, error) {
	if cfg.APIKey == "" || cfg.SiteID == "" {
		return nil, ErrCinetPayMissingCredentials
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &CinetPayAdapter{cfg: cfg, httpClient: httpClient, now: time.Now}, nil
}

// Provider returns the provider identifier
func (a *CinetPayAdapter) Provider() domain.Provider {
	return domain.ProviderCinetPay
}

// InitiatePayment creates a checkout and returns its payment URL
func (a *CinetPayAdapter) InitiatePayment(ctx context.Context, req *domain.InitiateRequest) (*domain.InitiateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = a.cfg.ReturnURL
	}
	body := cinetpayInitRequest{
		APIKey:              a.cfg.APIKey,
		SiteID:              a.cfg.SiteID,
		TransactionID:       req.ExternalID,
		Amount:              req.Amount.Ceil().IntPart(),
		Currency:            req.Currency,
		Description:         sanitizeCinetPayDescription(req.Description),
		NotifyURL:           req.CallbackURL,
		ReturnURL:           returnURL,
		Channels:            "MOBILE_MONEY",
		Lang:                "fr",
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhoneNumber: req.PayerPhone,
	}
	httpReq, err := newJSONRequest(ctx, http.MethodPost, a.cfg.BaseURL+cinetpayPaymentPath, body)
	if err != nil {
		return nil, fmt.Errorf("cinetpay: %w", err)
	}
	raw, _, err := do(a.httpClient, domain.ProviderCinetPay, httpReq)
	if err != nil {
		return nil, err
	}
	var res cinetpayResponse[cinetpayInitData]
	if err := decodeJSON(domain.ProviderCinetPay, raw, &res); err != nil {
		return nil, err
	}
	if res.Code != cinetpayCodeCreated {
		return nil, fmt.Errorf("%w: cinetpay: %s %s", domain.ErrGatewayRequestFailed, res.Code, res.Message)
	}
	return &domain.InitiateResponse{
		Provider:          domain.ProviderCinetPay,
		ProviderReference: res.Data.PaymentToken,
		PaymentURL:        res.Data.PaymentURL,
		Status:            domain.GatewayStatusPending,
		RawResponse:       string(raw),
	}, nil
}

// QueryPayment checks a transaction by our transaction id
func (a *CinetPayAdapter) QueryPayment(ctx context.Context, externalID, providerReference string) (*domain.StatusResponse, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: cinetpay check needs the transaction id", domain.ErrGatewayRequestFailed)
	}
	body := cinetpayCheckRequest{APIKey: a.cfg.APIKey, SiteID: a.cfg.SiteID, TransactionID: externalID}
	httpReq, err := newJSONRequest(ctx, http.MethodPost, a.cfg.BaseURL+cinetpayCheckPath, body)
	if err != nil {
		return nil, fmt.Errorf("cinetpay: %w", err)
	}
	raw, status, err := do(a.httpClient, domain.ProviderCinetPay, httpReq)
	if err != nil {
		// unpaid transactions are reported with a 4xx and a JSON body
		var he *httpError
		if !errors.As(err, &he) || status >= 500 {
			return nil, err
		}
		raw = []byte(he.body)
	}
	var res cinetpayResponse[cinetpayCheckData]
	if err := decodeJSON(domain.ProviderCinetPay, raw, &res); err != nil {
		return nil, err
	}

	out := &domain.StatusResponse{
		Provider:          domain.ProviderCinetPay,
		ExternalID:        externalID,
		ProviderReference: providerReference,
		Status:            mapCinetPayStatus(res.Code, res.Data.Status),
		Currency:          res.Data.Currency,
		RawResponse:       string(raw),
	}
	if res.Data.OperatorID != "" {
		out.ProviderReference = res.Data.OperatorID
	}
	if amt, err := decimal.NewFromString(string(res.Data.Amount)); err == nil {
		out.Amount = amt
	}
	switch out.Status {
	case domain.GatewayStatusSuccessful:
		paid := a.now()
		if t, err := time.Parse("2006-01-02 15:04:05", res.Data.PaymentDate); err == nil {
			paid = t
		}
		out.PaidAt = &paid
	case domain.GatewayStatusFailed, domain.GatewayStatusCancelled:
		out.Reason = res.Message
	}
	return out, nil
}

// ParseCallback verifies the x-token HMAC of a form notification and then
// checks the transaction, since the notification carries no status
func (a *CinetPayAdapter) ParseCallback(ctx context.Context, payload []byte, signature string) (*domain.StatusResponse, error) {
	form, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: cinetpay: %v", domain.ErrGatewayInvalidCallback, err)
	}
	if a.cfg.SecretKey != "" {
		if signature == "" || !hmac.Equal([]byte(strings.ToLower(signature)), []byte(a.notificationToken(form))) {
			return nil, fmt.Errorf("%w: cinetpay: bad x-token", domain.ErrGatewayInvalidCallback)
		}
	}
	if form.Get("cpm_site_id") != a.cfg.SiteID {
		return nil, fmt.Errorf("%w: cinetpay: unknown site id", domain.ErrGatewayInvalidCallback)
	}
	txID := form.Get("cpm_trans_id")
	if txID == "" {
		return nil, fmt.Errorf("%w: cinetpay: missing transaction id", domain.ErrGatewayInvalidCallback)
	}
	return a.QueryPayment(ctx, txID, "")
}

// notificationToken computes the hex HMAC-SHA256 CinetPay sends as x-token
func (a *CinetPayAdapter) notificationToken(form url.Values) string {
	var sb strings.Builder
	for _, f := range cinetpayTokenFields {
		sb.WriteString(form.Get(f))
	}
	mac := hmac.New(sha256.New, []byte(a.cfg.SecretKey))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func mapCinetPayStatus(code, status string) domain.GatewayStatus {
	switch strings.ToUpper(status) {
	case "ACCEPTED":
		if code == cinetpayCodeOK {
			return domain.GatewayStatusSuccessful
		}
		return domain.GatewayStatusPending
	case "REFUSED":
		return domain.GatewayStatusFailed
	case "CANCELED", "CANCELLED":
		return domain.GatewayStatusCancelled
	default:
		return domain.GatewayStatusPending
	}
}

// CinetPay rejects descriptions containing some special characters
func sanitizeCinetPayDescription(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '#', '/', '$', '_', '&':
			return ' '
		}
		return r
	}, s)
	return truncate(s, 200)
}

var _ domain.Gateway = (*CinetPayAdapter)(nil)
