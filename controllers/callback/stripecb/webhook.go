package stripecb

import (
	"encoding/json"
	"errors"
	"log"
	"yatra/database"
	"yatra/gateways"
	"yatra/helpers"
	"yatra/models"
	"yatra/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// Webhook ingests Stripe events. The raw payload is persisted before any
// processing; the 200 acknowledgement is tied to that write, so a log
// failure makes Stripe redeliver. After a valid signature the event is
// always acknowledged and failures go to the error log.
func Webhook(c *fiber.Ctx) error {
	body := c.Body()
	sig := c.Get("Stripe-Signature")

	headers, _ := json.Marshal(c.GetReqHeaders())
	webhookLog := models.PaymentWebhookLog{
		Gateway: models.GatewayStripe,
		Payload: datatypes.JSON(body),
		Headers: datatypes.JSON(headers),
	}
	if err := database.DB.Create(&webhookLog).Error; err != nil {
		log.Printf("⚠️  stripe webhook log write failed: %v", err)
		return helpers.JSONError(c, fiber.StatusInternalServerError, "could not record event")
	}

	gw := gateways.Get(models.GatewayStripe)
	event, err := gw.ParseWebhook(body, sig)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid signature")
	}

	// Event types we do not settle on are acknowledged untouched.
	if event.ExternalRef == "" {
		return helpers.JSONSuccess(c, "ignored", nil)
	}

	if err := services.Reconcile(database.DB, gw, event.ExternalRef, &event); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("⚠️  stripe webhook reconcile %s: %v", event.ExternalRef, err)
		}
		// Retrying would not change the outcome; acknowledge anyway.
		return helpers.JSONSuccess(c, "received", nil)
	}

	if err := database.DB.Model(&webhookLog).Update("processed", true).Error; err != nil {
		log.Printf("⚠️  stripe webhook log update failed: %v", err)
	}
	return helpers.JSONSuccess(c, "processed", nil)
}
