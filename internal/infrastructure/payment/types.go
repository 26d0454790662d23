package payment

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// oauthToken is the token response shared by MTN and Orange
type oauthToken struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
}

// ttl tolerates expires_in sent as a number or a string
func (t oauthToken) ttl() time.Duration {
	s := strings.Trim(string(t.ExpiresIn), `"`)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

type mtnParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type mtnRequestToPay struct {
	Amount       string   `json:"amount"`
	Currency     string   `json:"currency"`
	ExternalID   string   `json:"externalId"`
	Payer        mtnParty `json:"payer"`
	PayerMessage string   `json:"payerMessage"`
	PayeeNote    string   `json:"payeeNote"`
}

type mtnRequestToPayResult struct {
	ReferenceID            string    `json:"referenceId"`
	Amount                 string    `json:"amount"`
	Currency               string    `json:"currency"`
	FinancialTransactionID string    `json:"financialTransactionId"`
	ExternalID             string    `json:"externalId"`
	Payer                  mtnParty  `json:"payer"`
	Status                 string    `json:"status"`
	Reason                 mtnReason `json:"reason"`
}

// mtnReason is either a bare string or {code, message}
type mtnReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *mtnReason) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Code = s
		return nil
	}
	type plain mtnReason
	return json.Unmarshal(b, (*plain)(r))
}

func (r mtnReason) String() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Code
}

type orangeEnvelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type orangeInitData struct {
	PayToken string `json:"payToken"`
}

type orangePayRequest struct {
	NotifURL          string `json:"notifUrl"`
	ChannelUserMsisdn string `json:"channelUserMsisdn"`
	Amount            string `json:"amount"`
	SubscriberMsisdn  string `json:"subscriberMsisdn"`
	PIN               string `json:"pin"`
	OrderID           string `json:"orderId"`
	Description       string `json:"description"`
	PayToken          string `json:"payToken"`
}

type orangePaymentData struct {
	ID                int64      `json:"id"`
	CreatedAt         string     `json:"createtime"`
	SubscriberMsisdn  string     `json:"subscriberMsisdn"`
	Amount            flexString `json:"amount"`
	PayToken          string     `json:"payToken"`
	TxnID             string     `json:"txnid"`
	TxnMode           string     `json:"txnmode"`
	InitTxnMessage    string     `json:"inittxnmessage"`
	InitTxnStatus     string     `json:"inittxnstatus"`
	ConfirmTxnStatus  string     `json:"confirmtxnstatus"`
	ConfirmTxnMessage string     `json:"confirmtxnmessage"`
	Status            string     `json:"status"`
	NotifURL          string     `json:"notifUrl"`
	Description       string     `json:"description"`
	ChannelUserMsisdn string     `json:"channelUserMsisdn"`
	OrderID           string     `json:"orderId"`
}

type orangeCallback struct {
	PayToken string `json:"payToken"`
	Status   string `json:"status"`
	TxnID    string `json:"txnid"`
	OrderID  string `json:"orderId"`
}

type cinetpayInitRequest struct {
	APIKey              string `json:"apikey"`
	SiteID              string `json:"site_id"`
	TransactionID       string `json:"transaction_id"`
	Amount              int64  `json:"amount"`
	Currency            string `json:"currency"`
	Description         string `json:"description"`
	NotifyURL           string `json:"notify_url"`
	ReturnURL           string `json:"return_url"`
	Channels            string `json:"channels"`
	Lang                string `json:"lang,omitempty"`
	CustomerName        string `json:"customer_name,omitempty"`
	CustomerEmail       string `json:"customer_email,omitempty"`
	CustomerPhoneNumber string `json:"customer_phone_number,omitempty"`
}

type cinetpayCheckRequest struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
}

type cinetpayResponse[T any] struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	APIResponse string `json:"api_response_id"`
	Data        T      `json:"data"`
}

type cinetpayInitData struct {
	PaymentToken string `json:"payment_token"`
	PaymentURL   string `json:"payment_url"`
}

type cinetpayCheckData struct {
	Amount        flexString `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	Description   string     `json:"description"`
	OperatorID    string     `json:"operator_id"`
	PaymentDate   string     `json:"payment_date"`
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
