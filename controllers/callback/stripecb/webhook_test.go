package stripecb

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"yatra/database"
	"yatra/gateways"
	"yatra/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	gateways.Register(gateways.NewStripeGateway("sk_test", testWebhookSecret, "http://localhost"))

	app := fiber.New()
	app.Post("/callbacks/stripe", Webhook)
	return app, db
}

func signedRequest(body []byte) *http.Request {
	ts := "1700000000"
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)

	req := httptest.NewRequest(http.MethodPost, "/callbacks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t="+ts+",v1="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestWebhookLogsBeforeAcknowledging(t *testing.T) {
	app, db := newTestApp(t)

	body := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_unknown", "payment_intent": "pi_1", "amount_total": 975}}
	}`)
	resp, err := app.Test(signedRequest(body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var logs []models.PaymentWebhookLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.GatewayStripe, logs[0].Gateway)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/callbacks/stripe",
		bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1=deadbeef")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The payload is still on record for investigation.
	var count int64
	require.NoError(t, db.Model(&models.PaymentWebhookLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWebhookFailsWhenLogCannotBeWritten(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Migrator().DropTable(&models.PaymentWebhookLog{}))

	body := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "payment_intent": "pi_1", "amount_total": 975}}
	}`)
	resp, err := app.Test(signedRequest(body), -1)
	require.NoError(t, err)

	// Without a durable log there is no acknowledgement; the gateway retries.
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
