package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"yatra/models"

	"github.com/shopspring/decimal"
)

const stripeAPIURL = "https://api.stripe.com/v1"

// StripeGateway charges international cards through hosted checkout sessions.
type StripeGateway struct {
	SecretKey     string
	WebhookSecret string
	FrontendURL   string
	APIURL        string

	client *http.Client
}

func NewStripeGateway(secretKey, webhookSecret, frontendURL string) *StripeGateway {
	return &StripeGateway{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		FrontendURL:   frontendURL,
		APIURL:        stripeAPIURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *StripeGateway) Code() string { return models.GatewayStripe }

func (g *StripeGateway) Initiate(amount decimal.Decimal, currency, orderRef string) (InitiateResult, error) {
	if g.SecretKey == "" {
		return InitiateResult{}, fmt.Errorf("stripe not configured")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	form.Set("line_items[0][price_data][product_data][name]", orderRef)
	form.Set("line_items[0][price_data][unit_amount]", amount.Mul(decimal.NewFromInt(100)).StringFixed(0))
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", orderRef)
	form.Set("success_url", g.FrontendURL+"/payment/success?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", g.FrontendURL+"/payment/cancel")

	raw, err := g.post("/checkout/sessions", form)
	if err != nil {
		return InitiateResult{}, err
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &session); err != nil {
		return InitiateResult{}, fmt.Errorf("decode checkout session: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return InitiateResult{}, fmt.Errorf("checkout session missing id or url")
	}

	return InitiateResult{ExternalRef: session.ID, RedirectURL: session.URL, Raw: raw}, nil
}

func (g *StripeGateway) Verify(externalRef string, expectedAmount decimal.Decimal) (VerifyResult, error) {
	req, err := http.NewRequest(http.MethodGet, g.APIURL+"/checkout/sessions/"+externalRef, nil)
	if err != nil {
		return VerifyResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return VerifyResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return VerifyResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return VerifyResult{Raw: raw}, fmt.Errorf("session lookup status %s", resp.Status)
	}

	var session struct {
		PaymentStatus string `json:"payment_status"`
		PaymentIntent string `json:"payment_intent"`
		AmountTotal   int64  `json:"amount_total"`
	}
	if err := json.Unmarshal(raw, &session); err != nil {
		return VerifyResult{}, fmt.Errorf("decode checkout session: %w", err)
	}

	expectedCents := expectedAmount.Mul(decimal.NewFromInt(100)).IntPart()
	ok := session.PaymentStatus == "paid" && session.AmountTotal == expectedCents
	pending := session.PaymentStatus == "unpaid"

	return VerifyResult{OK: ok, Pending: pending, GatewayTxnID: session.PaymentIntent, Raw: raw}, nil
}

func (g *StripeGateway) Refund(externalRef, gatewayTxnID string, amount decimal.Decimal) error {
	if gatewayTxnID == "" {
		return fmt.Errorf("missing payment intent for refund")
	}

	form := url.Values{}
	form.Set("payment_intent", gatewayTxnID)

	_, err := g.post("/refunds", form)
	return err
}

// ParseWebhook checks the Stripe-Signature header (t=<ts>,v1=<hmac>) and
// extracts the checkout.session.completed outcome.
func (g *StripeGateway) ParseWebhook(body []byte, sigHeader string) (WebhookEvent, error) {
	var ts, v1 string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return WebhookEvent{}, fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(g.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return WebhookEvent{}, fmt.Errorf("signature mismatch")
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string `json:"id"`
				PaymentIntent string `json:"payment_intent"`
				AmountTotal   int64  `json:"amount_total"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode event: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return WebhookEvent{Raw: body}, nil
	}

	return WebhookEvent{
		ExternalRef:  event.Data.Object.ID,
		GatewayTxnID: event.Data.Object.PaymentIntent,
		Amount:       decimal.NewFromInt(event.Data.Object.AmountTotal).Div(decimal.NewFromInt(100)),
		Completed:    true,
		Raw:          body,
	}, nil
}

func (g *StripeGateway) post(path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, g.APIURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return raw, fmt.Errorf("stripe %s status %s: %s", path, resp.Status, raw)
	}
	return raw, nil
}
