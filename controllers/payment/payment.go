package payment

import (
	"yatra/database"
	"yatra/gateways"
	"yatra/helpers"
	"yatra/models"
	"yatra/services"
	"yatra/task"

	"github.com/gofiber/fiber/v2"
)

type InitiateRequest struct {
	BookingID uint   `json:"booking_id"`
	Gateway   string `json:"gateway"`
}

type RefundRequest struct {
	Reason string `json:"reason"`
}

func Initiate(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var req InitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}

	payment, redirectURL, err := services.InitiatePayment(database.DB, user, req.BookingID, req.Gateway)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "payment initiated", fiber.Map{
		"payment_id":   payment.ID,
		"external_ref": payment.ExternalRef,
		"redirect_url": redirectURL,
	})
}

// Verify is the customer's return leg after the hosted gateway page. It runs
// the same reconciliation as the webhook, so whichever arrives first wins
// and the other becomes a no-op.
func Verify(c *fiber.Ctx) error {
	gw := gateways.Get(c.Params("gateway"))
	if gw == nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "unknown gateway")
	}
	ref := c.Query("ref")
	if ref == "" {
		// Khalti's return redirect carries the reference as pidx.
		ref = c.Query("pidx")
	}
	if ref == "" {
		return helpers.JSONError(c, fiber.StatusBadRequest, "missing payment reference")
	}

	if err := services.Reconcile(database.DB, gw, ref, nil); err != nil {
		return helpers.JSONDomainError(c, err)
	}

	var payment models.Payment
	if err := database.DB.Where("external_ref = ?", ref).First(&payment).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "payment not found")
	}
	return helpers.JSONSuccess(c, "payment verified", payment)
}

// StatusForBooking lets the frontend poll while the webhook is in flight.
func StatusForBooking(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	var payment models.Payment
	q := database.DB.Where("booking_id = ?", id)
	if !user.IsAdmin() {
		q = q.Where("user_id = ?", user.ID)
	}
	if err := q.First(&payment).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "payment not found")
	}
	return helpers.JSONSuccess(c, "payment status", fiber.Map{
		"status":       payment.Status,
		"gateway":      payment.Gateway,
		"amount":       payment.Amount,
		"currency":     payment.Currency,
		"completed_at": payment.CompletedAt,
	})
}

func ExchangeRate(c *fiber.Ctx) error {
	rate := helpers.GetExchangeRate()
	return helpers.JSONSuccess(c, "exchange rate", fiber.Map{
		"base":  "NPR",
		"quote": "USD",
		"rate":  rate,
	})
}

// Admin handlers.

func AdminList(c *fiber.Ctx) error {
	q := database.DB.Order("id DESC").Limit(200)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if gateway := c.Query("gateway"); gateway != "" {
		q = q.Where("gateway = ?", gateway)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "payments", payments)
}

func AdminRefund(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Reason == "" {
		req.Reason = "refunded by admin"
	}

	payment, err := services.RefundPayment(database.DB, uint(id), req.Reason)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "payment refunded", payment)
}

// AdminPruneWebhookLogs is the maintenance endpoint for the webhook log
// table; processed rows older than ?days (default 30) are removed.
func AdminPruneWebhookLogs(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)

	pruned, err := task.PruneWebhookLogs(database.DB, days)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "webhook logs pruned", fiber.Map{"pruned": pruned})
}

func AdminErrorLogs(c *fiber.Ctx) error {
	var logs []models.PaymentErrorLog
	if err := database.DB.Order("id DESC").Limit(200).Find(&logs).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "payment error logs", logs)
}
