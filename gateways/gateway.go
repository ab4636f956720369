package gateways

import (
	"strings"

	"github.com/shopspring/decimal"
)

type InitiateResult struct {
	ExternalRef string
	RedirectURL string
	Raw         []byte
}

// VerifyResult reports a settlement lookup. Pending means the gateway has
// not settled the charge yet; OK false with Pending false is a hard
// mismatch or terminal failure.
type VerifyResult struct {
	OK           bool
	Pending      bool
	GatewayTxnID string
	Raw          []byte
}

// WebhookEvent is the normalized outcome parsed from a gateway callback.
type WebhookEvent struct {
	ExternalRef  string
	GatewayTxnID string
	Amount       decimal.Decimal
	Completed    bool
	Raw          []byte
}

// PaymentGateway is the uniform contract both payment providers implement.
// Credentials are injected at construction, never read from the environment
// by the adapter itself.
type PaymentGateway interface {
	Code() string
	Initiate(amount decimal.Decimal, currency, orderRef string) (InitiateResult, error)
	Verify(externalRef string, expectedAmount decimal.Decimal) (VerifyResult, error)
	Refund(externalRef, gatewayTxnID string, amount decimal.Decimal) error
	ParseWebhook(body []byte, sigHeader string) (WebhookEvent, error)
}

var registry = map[string]PaymentGateway{}

func Register(gw PaymentGateway) {
	registry[strings.ToUpper(gw.Code())] = gw
}

func Get(code string) PaymentGateway {
	return registry[strings.ToUpper(code)]
}
