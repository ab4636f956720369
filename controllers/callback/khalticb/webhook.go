package khalticb

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

// Webhook ingests Khalti callbacks. Same contract as the Stripe side: the
// payload must be durably logged before anything is acknowledged, bad
// signatures get 400, everything else 200.
func Webhook(c *fiber.Ctx) error {
	body := c.Body()
	sig := c.Get("X-Khalti-Signature")

	headers, _ := json.Marshal(c.GetReqHeaders())
	webhookLog := models.PaymentWebhookLog{
		Gateway: models.GatewayKhalti,
		Payload: datatypes.JSON(body),
		Headers: datatypes.JSON(headers),
	}
	if err := database.DB.Create(&webhookLog).Error; err != nil {
		log.Printf("⚠️  khalti webhook log write failed: %v", err)
		return helpers.JSONError(c, fiber.StatusInternalServerError, "could not record event")
	}

	gw := gateways.Get(models.GatewayKhalti)
	event, err := gw.ParseWebhook(body, sig)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid signature")
	}
	if event.ExternalRef == "" {
		return helpers.JSONSuccess(c, "ignored", nil)
	}

	if err := services.Reconcile(database.DB, gw, event.ExternalRef, &event); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("⚠️  khalti webhook reconcile %s: %v", event.ExternalRef, err)
		}
		return helpers.JSONSuccess(c, "received", nil)
	}

	if err := database.DB.Model(&webhookLog).Update("processed", true).Error; err != nil {
		log.Printf("⚠️  khalti webhook log update failed: %v", err)
	}
	return helpers.JSONSuccess(c, "processed", nil)
}
