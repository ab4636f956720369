package middlewares

import (
	"strings"
	"yatra/database"
	"yatra/helpers"
	"yatra/models"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token and loads the user into Locals.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		claims, err := helpers.ValidateToken(tokenStr, secret)
		if err != nil {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "invalid or missing token")
		}

		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "unknown user")
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// PanditOnly runs after RequireAuth and loads the caller's pandit profile.
func PanditOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok || user.Role != models.RolePandit {
			return helpers.JSONError(c, fiber.StatusForbidden, "pandits only")
		}

		var pandit models.Pandit
		if err := database.DB.Where("user_id = ?", user.ID).First(&pandit).Error; err != nil {
			return helpers.JSONError(c, fiber.StatusForbidden, "no pandit profile")
		}

		c.Locals("pandit", pandit)
		return c.Next()
	}
}

// AdminOnly runs after RequireAuth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok || !user.IsAdmin() {
			return helpers.JSONError(c, fiber.StatusForbidden, "admins only")
		}
		return c.Next()
	}
}
