package payment

import (
	"context"
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
	orangeInitPath   = "/mp/init"
	orangePayPath    = "/mp/pay"
	orangeStatusPath = "/mp/paymentstatus/%s"
)

var (
	ErrOrangeMissingCredentials = errors.New("orange: missing client id or client secret")
	ErrOrangeMissingMerchant    = errors.New("orange: missing auth token, channel msisdn or pin")
)

// OrangeMoneyAdapter collects payments through the Orange Money merchant
// payment API. A payment is opened with init (which yields a pay token)
// and pushed to the payer's handset with pay.
type OrangeMoneyAdapter struct {
	cfg        config.OrangeMoneyConfig
	httpClient *http.Client
	token      accessToken
	now        func() time.Time
}

// NewOrangeMoneyAdapter validates cfg and builds the adapter
func NewOrangeMoneyAdapter(cfg config.OrangeMoneyConfig, httpClient *http.Client) (*OrangeMoneyAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrOrangeMissingCredentials
	}
	if cfg.AuthToken == "" || cfg.ChannelMSISDN == "" || cfg.PIN == "" {
		return nil, ErrOrangeMissingMerchant
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &OrangeMoneyAdapter{cfg: cfg, httpClient: httpClient, now: time.Now}, nil
}

// Provider returns the provider identifier
func (a *OrangeMoneyAdapter) Provider() domain.Provider {
	return domain.ProviderOrangeMoney
}

// InitiatePayment opens a payment and pushes the prompt to the payer
func (a *OrangeMoneyAdapter) InitiatePayment(ctx context.Context, req *domain.InitiateRequest) (*domain.InitiateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.PayerPhone == "" {
		return nil, fmt.Errorf("%w: missing payer phone", domain.ErrGatewayRequestFailed)
	}

	initReq, err := a.newRequest(ctx, http.MethodPost, orangeInitPath, nil)
	if err != nil {
		return nil, err
	}
	raw, status, err := do(a.httpClient, domain.ProviderOrangeMoney, initReq)
	if err != nil {
		a.resetOnUnauthorized(status)
		return nil, err
	}
	var initRes orangeEnvelope[orangeInitData]
	if err := decodeJSON(domain.ProviderOrangeMoney, raw, &initRes); err != nil {
		return nil, err
	}
	if initRes.Data.PayToken == "" {
		return nil, fmt.Errorf("%w: orange: init returned no pay token", domain.ErrGatewayInvalidResponse)
	}

	body := orangePayRequest{
		NotifURL:          req.CallbackURL,
		ChannelUserMsisdn: a.cfg.ChannelMSISDN,
		Amount:            wholeAmount(req.Amount),
		SubscriberMsisdn:  domain.LocalNumber(req.PayerPhone),
		PIN:               a.cfg.PIN,
		OrderID:           req.ExternalID,
		Description:       truncate(req.Description, 125),
		PayToken:          initRes.Data.PayToken,
	}
	payReq, err := a.newRequest(ctx, http.MethodPost, orangePayPath, body)
	if err != nil {
		return nil, err
	}
	raw, status, err = do(a.httpClient, domain.ProviderOrangeMoney, payReq)
	if err != nil {
		a.resetOnUnauthorized(status)
		return nil, err
	}
	var payRes orangeEnvelope[orangePaymentData]
	if err := decodeJSON(domain.ProviderOrangeMoney, raw, &payRes); err != nil {
		return nil, err
	}

	gs := mapOrangeStatus(payRes.Data.Status)
	if gs == domain.GatewayStatusSuccessful {
		// the handset prompt can't have been approved yet; wait for the callback
		gs = domain.GatewayStatusPending
	}
	return &domain.InitiateResponse{
		Provider:          domain.ProviderOrangeMoney,
		ProviderReference: initRes.Data.PayToken,
		Status:            gs,
		RawResponse:       string(raw),
	}, nil
}

// QueryPayment fetches the status of a pay token
func (a *OrangeMoneyAdapter) QueryPayment(ctx context.Context, externalID, providerReference string) (*domain.StatusResponse, error) {
	if providerReference == "" {
		return nil, fmt.Errorf("%w: orange status needs the pay token", domain.ErrGatewayRequestFailed)
	}
	req, err := a.newRequest(ctx, http.MethodGet, fmt.Sprintf(orangeStatusPath, url.PathEscape(providerReference)), nil)
	if err != nil {
		return nil, err
	}
	raw, status, err := do(a.httpClient, domain.ProviderOrangeMoney, req)
	if err != nil {
		a.resetOnUnauthorized(status)
		return nil, err
	}
	var res orangeEnvelope[orangePaymentData]
	if err := decodeJSON(domain.ProviderOrangeMoney, raw, &res); err != nil {
		return nil, err
	}

	d := res.Data
	out := &domain.StatusResponse{
		Provider:          domain.ProviderOrangeMoney,
		ExternalID:        d.OrderID,
		ProviderReference: providerReference,
		Status:            mapOrangeStatus(d.Status),
		Currency:          "XAF",
		PayerPhone:        d.SubscriberMsisdn,
		RawResponse:       string(raw),
	}
	if out.ExternalID == "" {
		out.ExternalID = externalID
	}
	if amt, err := decimal.NewFromString(string(d.Amount)); err == nil {
		out.Amount = amt
	}
	switch out.Status {
	case domain.GatewayStatusSuccessful:
		paid := a.now()
		out.PaidAt = &paid
	case domain.GatewayStatusFailed, domain.GatewayStatusCancelled:
		out.Reason = d.ConfirmTxnMessage
		if out.Reason == "" {
			out.Reason = d.InitTxnMessage
		}
	}
	return out, nil
}

// ParseCallback decodes a notification and confirms it with a status query
func (a *OrangeMoneyAdapter) ParseCallback(ctx context.Context, payload []byte, _ string) (*domain.StatusResponse, error) {
	var cb orangeCallback
	if err := decodeJSON(domain.ProviderOrangeMoney, payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayInvalidCallback, err)
	}
	if cb.PayToken == "" {
		return nil, fmt.Errorf("%w: orange callback without pay token", domain.ErrGatewayInvalidCallback)
	}
	return a.QueryPayment(ctx, cb.OrderID, cb.PayToken)
}

func (a *OrangeMoneyAdapter) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	token, err := a.token.get(ctx, a.now(), a.fetchToken)
	if err != nil {
		return nil, err
	}
	req, err := newJSONRequest(ctx, method, a.cfg.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("orange: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-AUTH-TOKEN", a.cfg.AuthToken)
	return req, nil
}

func (a *OrangeMoneyAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("orange: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	raw, _, err := do(a.httpClient, domain.ProviderOrangeMoney, req)
	if err != nil {
		return "", 0, err
	}
	var tok oauthToken
	if err := decodeJSON(domain.ProviderOrangeMoney, raw, &tok); err != nil {
		return "", 0, err
	}
	if tok.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: orange: empty access token", domain.ErrGatewayInvalidResponse)
	}
	return tok.AccessToken, tok.ttl(), nil
}

func (a *OrangeMoneyAdapter) resetOnUnauthorized(status int) {
	if status == http.StatusUnauthorized {
		a.token.reset()
	}
}

func mapOrangeStatus(s string) domain.GatewayStatus {
	switch strings.ToUpper(s) {
	case "SUCCESSFULL", "SUCCESSFUL", "SUCCESS":
		return domain.GatewayStatusSuccessful
	case "FAILED":
		return domain.GatewayStatusFailed
	case "CANCELLED", "EXPIRED":
		return domain.GatewayStatusCancelled
	default:
		return domain.GatewayStatusPending
	}
}

var _ domain.Gateway = (*OrangeMoneyAdapter)(nil)
