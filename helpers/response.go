package helpers

import (
	"errors"
	"yatra/models"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// JSONDomainError maps the domain error taxonomy onto HTTP statuses.
func JSONDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return JSONError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrPermission):
		return JSONError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrSlotConflict):
		return JSONError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrAlreadyRefunded),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInsufficientStock):
		return JSONError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrGateway):
		return JSONError(c, fiber.StatusBadRequest, "payment could not be completed, please try again")
	default:
		return JSONError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
