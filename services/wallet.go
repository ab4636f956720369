package services

import (
	"errors"
	"fmt"
	"time"
	"yatra/database"
	"yatra/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// panditShare is the portion of the booking fee the pandit earns; the rest
// is the platform commission.
var panditShare = decimal.RequireFromString("0.80")

func PanditShareOf(total decimal.Decimal) decimal.Decimal {
	return total.Mul(panditShare).Round(2)
}

// GetWallet returns the pandit's wallet, creating an empty one on first use.
func GetWallet(db *gorm.DB, panditID uint) (*models.PanditWallet, error) {
	var wallet models.PanditWallet
	err := db.Where("pandit_id = ?", panditID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.PanditWallet{PanditID: panditID}
		if err := db.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// creditForBooking runs inside the caller's transaction. The wallet row is
// locked for the whole mutation and an audit row records before/after.
func creditForBooking(tx *gorm.DB, booking *models.Booking) error {
	wallet, err := lockWallet(tx, booking.PanditID)
	if err != nil {
		return err
	}

	share := PanditShareOf(booking.TotalFee)
	before := wallet.AvailableBalance

	wallet.TotalEarned = wallet.TotalEarned.Add(share)
	wallet.AvailableBalance = wallet.AvailableBalance.Add(share)
	if err := tx.Save(wallet).Error; err != nil {
		return err
	}

	return tx.Create(&models.WalletTransaction{
		WalletID:      wallet.ID,
		PanditID:      wallet.PanditID,
		TrxType:       models.WalletTrxCredit,
		Amount:        share,
		BalanceBefore: before,
		BalanceAfter:  wallet.AvailableBalance,
		Note:          "earning for " + booking.ServiceName,
		RefID:         fmt.Sprintf("BOOKING-%d", booking.ID),
	}).Error
}

// reverseForBooking claws back a previously credited share after a refund.
// The balance is allowed to go negative when a withdrawal already consumed
// the funds.
func reverseForBooking(tx *gorm.DB, booking *models.Booking) error {
	wallet, err := lockWallet(tx, booking.PanditID)
	if err != nil {
		return err
	}

	share := PanditShareOf(booking.TotalFee)
	before := wallet.AvailableBalance

	wallet.TotalEarned = wallet.TotalEarned.Sub(share)
	wallet.AvailableBalance = wallet.AvailableBalance.Sub(share)
	if err := tx.Save(wallet).Error; err != nil {
		return err
	}

	return tx.Create(&models.WalletTransaction{
		WalletID:      wallet.ID,
		PanditID:      wallet.PanditID,
		TrxType:       models.WalletTrxReversal,
		Amount:        share.Neg(),
		BalanceBefore: before,
		BalanceAfter:  wallet.AvailableBalance,
		Note:          "refund reversal for " + booking.ServiceName,
		RefID:         fmt.Sprintf("BOOKING-%d", booking.ID),
	}).Error
}

func RequestWithdrawal(db *gorm.DB, panditID uint, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}

	wallet, err := GetWallet(db, panditID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(wallet.AvailableBalance) {
		return nil, models.ErrInsufficientFunds
	}

	request := models.WithdrawalRequest{
		PanditID: panditID,
		Amount:   amount,
		Status:   models.WithdrawalPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ApproveWithdrawal re-checks the balance under lock; the request-time check
// can be stale by the time an admin acts on it.
func ApproveWithdrawal(db *gorm.DB, requestID uint) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: withdrawal request", models.ErrNotFound)
			}
			return err
		}
		if request.Status != models.WithdrawalPending {
			return fmt.Errorf("%w: request already %s", models.ErrValidation, request.Status)
		}

		wallet, err := lockWallet(tx, request.PanditID)
		if err != nil {
			return err
		}
		if request.Amount.GreaterThan(wallet.AvailableBalance) {
			return models.ErrInsufficientFunds
		}

		before := wallet.AvailableBalance
		wallet.AvailableBalance = wallet.AvailableBalance.Sub(request.Amount)
		wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(request.Amount)
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.WalletTransaction{
			WalletID:      wallet.ID,
			PanditID:      wallet.PanditID,
			TrxType:       models.WalletTrxWithdrawal,
			Amount:        request.Amount.Neg(),
			BalanceBefore: before,
			BalanceAfter:  wallet.AvailableBalance,
			Note:          "withdrawal payout",
			RefID:         fmt.Sprintf("WITHDRAWAL-%d", request.ID),
		}).Error; err != nil {
			return err
		}

		now := time.Now()
		request.Status = models.WithdrawalApproved
		request.ProcessedAt = &now
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func RejectWithdrawal(db *gorm.DB, requestID uint) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: withdrawal request", models.ErrNotFound)
			}
			return err
		}
		if request.Status != models.WithdrawalPending {
			return fmt.Errorf("%w: request already %s", models.ErrValidation, request.Status)
		}

		now := time.Now()
		request.Status = models.WithdrawalRejected
		request.ProcessedAt = &now
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func lockWallet(tx *gorm.DB, panditID uint) (*models.PanditWallet, error) {
	var wallet models.PanditWallet
	err := database.LockForUpdate(tx).Where("pandit_id = ?", panditID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.PanditWallet{PanditID: panditID}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
