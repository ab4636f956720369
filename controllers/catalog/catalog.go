package catalog

import (
	"yatra/database"
	"yatra/helpers"
	"yatra/models"

	"github.com/gofiber/fiber/v2"
)

// Pandits lists verified, available pandits for the public directory.
func Pandits(c *fiber.Ctx) error {
	q := database.DB.Preload("User").
		Where("is_verified = ? AND is_available = ?", true, true).
		Order("rating DESC")
	if expertise := c.Query("expertise"); expertise != "" {
		q = q.Where("expertise = ?", expertise)
	}

	var pandits []models.Pandit
	if err := q.Find(&pandits).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "pandits", pandits)
}

func Pandit(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid pandit id")
	}

	var pandit models.Pandit
	if err := database.DB.Preload("User").First(&pandit, id).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "pandit not found")
	}
	return helpers.JSONSuccess(c, "pandit", pandit)
}

func Services(c *fiber.Ctx) error {
	var services []models.PujaService
	if err := database.DB.Order("name").Find(&services).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "services", services)
}

func SamagriItems(c *fiber.Ctx) error {
	q := database.DB.Order("category, name")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var items []models.SamagriItem
	if err := q.Find(&items).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "samagri items", items)
}
