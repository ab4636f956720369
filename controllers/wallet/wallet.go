package wallet

import (
	"yatra/database"
	"yatra/helpers"
	"yatra/models"
	"yatra/notify"
	"yatra/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Get returns the caller's wallet with recent transactions.
func Get(c *fiber.Ctx) error {
	pandit := c.Locals("pandit").(models.Pandit)

	wallet, err := services.GetWallet(database.DB, pandit.ID)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}

	var transactions []models.WalletTransaction
	if err := database.DB.Where("wallet_id = ?", wallet.ID).
		Order("id DESC").Limit(50).Find(&transactions).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}

	return helpers.JSONSuccess(c, "wallet", fiber.Map{
		"wallet":       wallet,
		"transactions": transactions,
	})
}

func Withdraw(c *fiber.Ctx) error {
	pandit := c.Locals("pandit").(models.Pandit)

	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := services.RequestWithdrawal(database.DB, pandit.ID, req.Amount)
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "withdrawal requested", request)
}

func ListWithdrawals(c *fiber.Ctx) error {
	pandit := c.Locals("pandit").(models.Pandit)

	var requests []models.WithdrawalRequest
	if err := database.DB.Where("pandit_id = ?", pandit.ID).
		Order("id DESC").Find(&requests).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "withdrawal requests", requests)
}

// Admin handlers.

func AdminListWithdrawals(c *fiber.Ctx) error {
	q := database.DB.Preload("Pandit").Preload("Pandit.User").Order("id DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []models.WithdrawalRequest
	if err := q.Find(&requests).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "withdrawal requests", requests)
}

func AdminApproveWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request id")
	}

	request, err := services.ApproveWithdrawal(database.DB, uint(id))
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}

	notify.WithdrawalApproved(request)
	return helpers.JSONSuccess(c, "withdrawal approved", request)
}

func AdminRejectWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "invalid request id")
	}

	request, err := services.RejectWithdrawal(database.DB, uint(id))
	if err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "withdrawal rejected", request)
}

// AdminPayouts lists the payout ledger across all pandits.
func AdminPayouts(c *fiber.Ctx) error {
	var transactions []models.WalletTransaction
	if err := database.DB.Where("trx_type = ?", models.WalletTrxWithdrawal).
		Order("id DESC").Limit(200).Find(&transactions).Error; err != nil {
		return helpers.JSONDomainError(c, err)
	}
	return helpers.JSONSuccess(c, "payouts", transactions)
}
