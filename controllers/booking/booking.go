package booking

import (
	"yatra/database"
	"yatra/helpers"
	"yatra/models"
	"yatra/services"

	"github.com/gofiber/fiber/v2"
)

type CreateBookingRequest struct {
	PanditID        uint                      `json:"pandit_id"`
	ServiceID       *uint                     `json:"service_id"`
	ServiceLocation string                    `json:"service_location"`
	BookingDate     string                    `json:"booking_date"`
	BookingTime     string                    `json:"booking_time"`
	Notes           string                    `json:"notes"`
	Goods           []services.GoodsSelection `json:"goods"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type UpdateGoodsRequest struct {
	Goods []services.GoodsSelection `json:"goods"`
}

func Create(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.ServiceLocation == "" {
		req.ServiceLocation = models.LocationHome
	}

	booking, err := services.CreateBooking(database.DB, services.CreateBookingInput{
		UserID:          user.ID,
		PanditID:        req.PanditID,
		ServiceID:       req.ServiceID,
		ServiceLocation: req.ServiceLocation,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		Notes:           req.Notes,
		Goods:           req.Goods,
	})
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "booking created", booking)
}

// List returns the caller's bookings: their own for customers, assigned ones
// for pandits, everything for admins.
func List(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	q := database.DB.Preload("Goods").Order("id DESC")
	switch user.Role {
	case models.RoleAdmin:
	case models.RolePandit:
		var pandit models.Pandit
		if err := database.DB.Where("user_id = ?", user.ID).First(&pandit).Error; err != nil {
			return helpers.JSONError(c, fiber.StatusForbidden, "no pandit profile")
		}
		q = q.Where("pandit_id = ?", pandit.ID)
	default:
		q = q.Where("user_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "bookings", bookings)
}

func Get(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	var booking models.Booking
	if err := database.DB.Preload("Goods").Preload("Goods.SamagriItem").First(&booking, id).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "booking not found")
	}
	if !canView(user, &booking) {
		return helpers.JSONError(c, fiber.StatusForbidden, "not your booking")
	}
	return helpers.JSONSuccess(c, "booking", booking)
}

// UpdateStatus drives the lifecycle. An admin cancelling a paid booking goes
// through the refund path.
func UpdateStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var booking *models.Booking
	if req.Status == models.BookingCancelled && user.IsAdmin() {
		reason := req.Reason
		if reason == "" {
			reason = "booking cancelled by admin"
		}
		booking, err = services.CancelBookingWithRefund(database.DB, user, uint(id), reason)
	} else {
		booking, err = services.TransitionBooking(database.DB, user, uint(id), req.Status)
	}
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "booking updated", booking)
}

func UpdateGoods(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid booking id")
	}

	var req UpdateGoodsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}

	booking, err := services.UpdateGoodsSelection(database.DB, user, uint(id), req.Goods)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "goods updated", booking)
}

// Slots is public so customers can pick a time before signing up.
func Slots(c *fiber.Ctx) error {
	panditID, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid pandit id")
	}
	date := c.Query("date")
	duration := c.QueryInt("duration", 60)

	slots, err := services.AvailableSlots(database.DB, uint(panditID), date, duration)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "available slots", fiber.Map{
		"date":     date,
		"duration": duration,
		"slots":    slots,
	})
}

func canView(user models.User, booking *models.Booking) bool {
	if user.IsAdmin() || booking.UserID == user.ID {
		return true
	}
	if user.Role == models.RolePandit {
		var pandit models.Pandit
		if err := database.DB.Where("user_id = ?", user.ID).First(&pandit).Error; err == nil {
			return pandit.ID == booking.PanditID
		}
	}
	return false
}
