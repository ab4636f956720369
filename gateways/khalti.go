package gateways

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"yatra/models"

	"github.com/shopspring/decimal"
)

const khaltiAPIURL = "https://khalti.com/api/v2"

var paisaPerRupee = decimal.NewFromInt(100)

// KhaltiGateway charges Nepali mobile wallets. Redirect model: the customer
// pays at the hosted payment_url and the pidx is verified server-side.
type KhaltiGateway struct {
	SecretKey     string
	WebhookSecret string
	FrontendURL   string
	APIURL        string

	client *http.Client
}

func NewKhaltiGateway(secretKey, webhookSecret, frontendURL string) *KhaltiGateway {
	return &KhaltiGateway{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		FrontendURL:   frontendURL,
		APIURL:        khaltiAPIURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *KhaltiGateway) Code() string { return models.GatewayKhalti }

func (g *KhaltiGateway) Initiate(amount decimal.Decimal, currency, orderRef string) (InitiateResult, error) {
	if g.SecretKey == "" {
		return InitiateResult{}, fmt.Errorf("khalti not configured")
	}

	payload := map[string]any{
		"return_url":          g.FrontendURL + "/payment/khalti/verify",
		"website_url":         g.FrontendURL,
		"amount":              amount.Mul(paisaPerRupee).IntPart(),
		"purchase_order_id":   orderRef,
		"purchase_order_name": "Booking " + orderRef,
	}

	raw, err := g.post("/epayment/initiate/", payload)
	if err != nil {
		return InitiateResult{}, err
	}

	var body struct {
		Pidx       string `json:"pidx"`
		PaymentURL string `json:"payment_url"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return InitiateResult{}, fmt.Errorf("decode initiate response: %w", err)
	}
	if body.Pidx == "" || body.PaymentURL == "" {
		return InitiateResult{}, fmt.Errorf("initiate response missing pidx or payment_url")
	}

	return InitiateResult{ExternalRef: body.Pidx, RedirectURL: body.PaymentURL, Raw: raw}, nil
}

func (g *KhaltiGateway) Verify(externalRef string, expectedAmount decimal.Decimal) (VerifyResult, error) {
	raw, err := g.post("/epayment/lookup/", map[string]any{"pidx": externalRef})
	if err != nil {
		return VerifyResult{}, err
	}

	var body struct {
		Status        string `json:"status"`
		TotalAmount   int64  `json:"total_amount"`
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return VerifyResult{}, fmt.Errorf("decode lookup response: %w", err)
	}

	expectedPaisa := expectedAmount.Mul(paisaPerRupee).IntPart()
	ok := body.Status == "Completed" && body.TotalAmount == expectedPaisa
	pending := body.Status == "Pending" || body.Status == "Initiated"

	return VerifyResult{OK: ok, Pending: pending, GatewayTxnID: body.TransactionID, Raw: raw}, nil
}

func (g *KhaltiGateway) Refund(externalRef, gatewayTxnID string, amount decimal.Decimal) error {
	if externalRef == "" {
		return fmt.Errorf("missing pidx for refund")
	}

	_, err := g.post("/merchant-transaction/"+externalRef+"/refund/", map[string]any{
		"amount": amount.Mul(paisaPerRupee).IntPart(),
	})
	return err
}

// ParseWebhook checks the hex HMAC-SHA256 of the body carried in the
// signature header.
func (g *KhaltiGateway) ParseWebhook(body []byte, sigHeader string) (WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(g.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(sigHeader)) {
		return WebhookEvent{}, fmt.Errorf("signature mismatch")
	}

	var payload struct {
		Pidx          string `json:"pidx"`
		Status        string `json:"status"`
		TotalAmount   int64  `json:"total_amount"`
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode payload: %w", err)
	}

	return WebhookEvent{
		ExternalRef:  payload.Pidx,
		GatewayTxnID: payload.TransactionID,
		Amount:       decimal.NewFromInt(payload.TotalAmount).Div(paisaPerRupee),
		Completed:    payload.Status == "Completed",
		Raw:          body,
	}, nil
}

func (g *KhaltiGateway) post(path string, payload map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, g.APIURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+g.SecretKey)
	req.Header.Set("Content-Type", "application/json")

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
		return raw, fmt.Errorf("khalti %s status %s: %s", path, resp.Status, raw)
	}
	return raw, nil
}
