package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

const (
	mtnTokenPath         = "/collection/token/"
	mtnRequestToPayPath  = "/collection/v1_0/requesttopay"
	mtnRequestStatusPath = "/collection/v1_0/requesttopay/%s"
)

var (
	ErrMTNMissingSubscriptionKey = errors.New("mtn: missing subscription key")
	ErrMTNMissingAPIUser         = errors.New("mtn: missing api user or api key")
)

// MTNMoMoAdapter collects payments through the MTN MoMo Collection API.
// The X-Reference-Id of a request to pay is our ExternalID, so status
// queries and callbacks only need that value.
type MTNMoMoAdapter struct {
	cfg        config.MTNMoMoConfig
	httpClient *http.Client
	token      accessToken
	now        func() time.Time
}

// NewMTNMoMoAdapter validates cfg and builds the adapter
func NewMTNMoMoAdapter(cfg config.MTNMoMoConfig, httpClient *http.Client) (*MTNMoMoAdapter, error) {
	if cfg.SubscriptionKey == "" {
		return nil, ErrMTNMissingSubscriptionKey
	}
	if cfg.APIUser == "" || cfg.APIKey == "" {
		return nil, ErrMTNMissingAPIUser
	}
	if cfg.TargetEnvironment == "" {
		cfg.TargetEnvironment = "sandbox"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &MTNMoMoAdapter{cfg: cfg, httpClient: httpClient, now: time.Now}, nil
}

// Provider returns the provider identifier
func (a *MTNMoMoAdapter) Provider() domain.Provider {
	return domain.ProviderMTNMoMo
}

// InitiatePayment sends a request to pay; the payer approves it on their handset
func (a *MTNMoMoAdapter) InitiatePayment(ctx context.Context, req *domain.InitiateRequest) (*domain.InitiateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ExternalID); err != nil {
		return nil, fmt.Errorf("%w: mtn reference must be a UUID", domain.ErrGatewayRequestFailed)
	}
	if req.PayerPhone == "" {
		return nil, fmt.Errorf("%w: missing payer phone", domain.ErrGatewayRequestFailed)
	}

	body := mtnRequestToPay{
		Amount:       wholeAmount(req.Amount),
		Currency:     a.currency(req.Currency),
		ExternalID:   req.ExternalID,
		Payer:        mtnParty{PartyIDType: "MSISDN", PartyID: strings.TrimPrefix(req.PayerPhone, "+")},
		PayerMessage: truncate(req.Description, 160),
		PayeeNote:    truncate(req.Description, 160),
	}
	httpReq, err := a.newRequest(ctx, http.MethodPost, mtnRequestToPayPath, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Reference-Id", req.ExternalID)
	if req.CallbackURL != "" {
		httpReq.Header.Set("X-Callback-Url", req.CallbackURL)
	}

	raw, status, err := do(a.httpClient, domain.ProviderMTNMoMo, httpReq)
	if err != nil {
		a.resetOnUnauthorized(status)
		return nil, err
	}
	if status != http.StatusAccepted {
		return nil, fmt.Errorf("%w: mtn: unexpected status %d", domain.ErrGatewayInvalidResponse, status)
	}

	return &domain.InitiateResponse{
		Provider:          domain.ProviderMTNMoMo,
		ProviderReference: req.ExternalID,
		Status:            domain.GatewayStatusPending,
		RawResponse:       string(raw),
	}, nil
}

// QueryPayment fetches the status of a request to pay
func (a *MTNMoMoAdapter) QueryPayment(ctx context.Context, externalID, providerReference string) (*domain.StatusResponse, error) {
	ref := providerReference
	if ref == "" {
		ref = externalID
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: missing reference", domain.ErrGatewayRequestFailed)
	}

	httpReq, err := a.newRequest(ctx, http.MethodGet, fmt.Sprintf(mtnRequestStatusPath, ref), nil)
	if err != nil {
		return nil, err
	}
	raw, status, err := do(a.httpClient, domain.ProviderMTNMoMo, httpReq)
	if err != nil {
		a.resetOnUnauthorized(status)
		return nil, err
	}

	var res mtnRequestToPayResult
	if err := decodeJSON(domain.ProviderMTNMoMo, raw, &res); err != nil {
		return nil, err
	}
	out := a.toStatus(&res, string(raw))
	out.ProviderReference = ref
	if out.ExternalID == "" {
		out.ExternalID = externalID
	}
	return out, nil
}

// ParseCallback decodes a callback. MTN callbacks are unsigned, so the
// reported outcome is confirmed with a status query before it is trusted.
func (a *MTNMoMoAdapter) ParseCallback(ctx context.Context, payload []byte, _ string) (*domain.StatusResponse, error) {
	var cb mtnRequestToPayResult
	if err := decodeJSON(domain.ProviderMTNMoMo, payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayInvalidCallback, err)
	}
	ref := cb.ReferenceID
	if ref == "" {
		ref = cb.ExternalID
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: mtn callback without reference", domain.ErrGatewayInvalidCallback)
	}
	confirmed, err := a.QueryPayment(ctx, cb.ExternalID, ref)
	if err != nil {
		return nil, err
	}
	if cb.ExternalID != "" && confirmed.ExternalID != "" && cb.ExternalID != confirmed.ExternalID {
		return nil, fmt.Errorf("%w: mtn callback reference mismatch", domain.ErrGatewayInvalidCallback)
	}
	return confirmed, nil
}

func (a *MTNMoMoAdapter) toStatus(res *mtnRequestToPayResult, raw string) *domain.StatusResponse {
	out := &domain.StatusResponse{
		Provider:          domain.ProviderMTNMoMo,
		ExternalID:        res.ExternalID,
		ProviderReference: res.FinancialTransactionID,
		Status:            mapMTNStatus(res.Status),
		Currency:          res.Currency,
		PayerPhone:        res.Payer.PartyID,
		Reason:            res.Reason.String(),
		RawResponse:       raw,
	}
	if amt, err := decimal.NewFromString(res.Amount); err == nil {
		out.Amount = amt
	}
	if out.Status == domain.GatewayStatusSuccessful {
		paid := a.now()
		out.PaidAt = &paid
	}
	return out
}

// sandbox only accepts EUR
func (a *MTNMoMoAdapter) currency(c string) string {
	if a.cfg.TargetEnvironment == "sandbox" {
		return "EUR"
	}
	return c
}

func (a *MTNMoMoAdapter) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	token, err := a.token.get(ctx, a.now(), a.fetchToken)
	if err != nil {
		return nil, err
	}
	req, err := newJSONRequest(ctx, method, a.cfg.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("mtn: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", a.cfg.TargetEnvironment)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.SubscriptionKey)
	return req, nil
}

func (a *MTNMoMoAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+mtnTokenPath, nil)
	if err != nil {
		return "", 0, fmt.Errorf("mtn: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.cfg.APIUser, a.cfg.APIKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.SubscriptionKey)

	raw, _, err := do(a.httpClient, domain.ProviderMTNMoMo, req)
	if err != nil {
		return "", 0, err
	}
	var tok oauthToken
	if err := decodeJSON(domain.ProviderMTNMoMo, raw, &tok); err != nil {
		return "", 0, err
	}
	if tok.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: mtn: empty access token", domain.ErrGatewayInvalidResponse)
	}
	return tok.AccessToken, tok.ttl(), nil
}

func (a *MTNMoMoAdapter) resetOnUnauthorized(status int) {
	if status == http.StatusUnauthorized {
		a.token.reset()
	}
}

func mapMTNStatus(s string) domain.GatewayStatus {
	switch strings.ToUpper(s) {
	case "SUCCESSFUL":
		return domain.GatewayStatusSuccessful
	case "FAILED", "REJECTED", "TIMEOUT":
		return domain.GatewayStatusFailed
	default:
		return domain.GatewayStatusPending
	}
}

var _ domain.Gateway = (*MTNMoMoAdapter)(nil)
