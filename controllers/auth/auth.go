package auth

import (
	"errors"
	"yatra/database"
	"yatra/helpers"
	"yatra/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`

	// Pandit profile fields, used when role is pandit.
	Expertise string          `json:"expertise"`
	Language  string          `json:"language"`
	Bio       string          `json:"bio"`
	BasePrice decimal.Decimal `json:"base_price"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Email == "" || req.Password == "" || req.FullName == "" {
			return helpers.JSONError(c, fiber.StatusBadRequest, "email, password and full_name are required")
		}
		if req.Role == "" {
			req.Role = models.RoleCustomer
		}
		if req.Role != models.RoleCustomer && req.Role != models.RolePandit {
			return helpers.JSONError(c, fiber.StatusBadRequest, "role must be customer or pandit")
		}

		var existing models.User
		err := database.DB.Where("email = ?", req.Email).First(&existing).Error
		if err == nil {
			return helpers.JSONError(c, fiber.StatusConflict, "email already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONDomainError(c, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return helpers.JSONDomainError(c, err)
		}

		user := models.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			FullName:     req.FullName,
			Role:         req.Role,
			Country:      req.Country,
			Phone:        req.Phone,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if user.Role == models.RolePandit {
				return tx.Create(&models.Pandit{
					UserID:    user.ID,
					Expertise: req.Expertise,
					Language:  req.Language,
					Bio:       req.Bio,
					BasePrice: req.BasePrice,
				}).Error
			}
			return nil
		})
		if err != nil {
			return helpers.JSONDomainError(c, err)
		}

		token, err := helpers.CreateToken(user.ID, user.Role, jwtSecret)
		if err != nil {
			return helpers.JSONDomainError(c, err)
		}
		return helpers.JSONSuccess(c, "registered", fiber.Map{"token": token, "user": user})
	}
}

func Login(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
		}

		var user models.User
		if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "invalid credentials")
		}

		token, err := helpers.CreateToken(user.ID, user.Role, jwtSecret)
		if err != nil {
			return helpers.JSONDomainError(c, err)
		}
		return helpers.JSONSuccess(c, "logged in", fiber.Map{"token": token, "user": user})
	}
}

// Me returns the authenticated user's profile.
func Me(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)
	return helpers.JSONSuccess(c, "profile", user)
}
