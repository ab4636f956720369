package shop

import (
	"errors"
	"yatra/database"
	"yatra/helpers"
	"yatra/models"
	"yatra/services"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	Gateway string                  `json:"gateway"`
	Items   []services.CheckoutLine `json:"items"`

	ShippingName    string `json:"shipping_name"`
	ShippingPhone   string `json:"shipping_phone"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
}

// Items lists purchasable inventory. In-stock only unless all=true.
func Items(c *fiber.Ctx) error {
	q := database.DB.Order("category, name")
	if c.Query("all") != "true" {
		q = q.Where("stock_quantity > 0")
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var items []models.InventoryItem
	if err := q.Find(&items).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "items", items)
}

func Checkout(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}

	order, redirectURL, err := services.Checkout(database.DB, services.CheckoutInput{
		UserID:          user.ID,
		Gateway:         req.Gateway,
		Lines:           req.Items,
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
	})
	if err != nil {
		// The order may already exist with stock held; surface it so the
		// client can retry the payment.
		if order != nil && errors.Is(err, models.ErrGateway) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success":   false,
				"message":   "order created but payment could not be started",
				"order_ref": order.OrderRef,
			})
		}
		return helpers.JSONDomainError(c, err)
	}

	return helpers.JSONSuccess(c, "order created", fiber.Map{
		"order_ref":    order.OrderRef,
		"total_amount": order.TotalAmount,
		"redirect_url": redirectURL,
	})
}

func Orders(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var orders []models.ShopOrder
	if err := database.DB.Preload("Items").Preload("Items.InventoryItem").
		Where("user_id = ?", user.ID).Order("id DESC").Find(&orders).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "orders", orders)
}

func Order(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var order models.ShopOrder
	q := database.DB.Preload("Items").Preload("Items.InventoryItem").
		Where("order_ref = ?", c.Params("ref"))
	if !user.IsAdmin() {
		q = q.Where("user_id = ?", user.ID)
	}
	if err := q.First(&order).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "order not found")
	}
	return helpers.JSONSuccess(c, "order", order)
}
