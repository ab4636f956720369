package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "PENDING"
	WithdrawalApproved = "APPROVED"
	WithdrawalRejected = "REJECTED"
)

const (
	WalletTrxCredit     = "CREDIT"
	WalletTrxReversal   = "REVERSAL"
	WalletTrxWithdrawal = "WITHDRAWAL"
)

// PanditWallet keeps running totals maintained incrementally. After every
// committed operation: AvailableBalance = TotalEarned - TotalWithdrawn - sum
// of reversals. Reversals may drive AvailableBalance negative when a
// withdrawal already consumed the funds.
type PanditWallet struct {
	gorm.Model

	PanditID         uint            `gorm:"uniqueIndex" json:"pandit_id"`
	TotalEarned      decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_earned"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"available_balance"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_withdrawn"`
}

type WalletTransaction struct {
	gorm.Model

	WalletID      uint            `gorm:"index" json:"wallet_id"`
	PanditID      uint            `gorm:"index" json:"pandit_id"`
	TrxType       string          `gorm:"size:16" json:"trx_type"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(12,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(12,2)" json:"balance_after"`
	Note          string          `gorm:"size:255" json:"note"`
	RefID         string          `gorm:"size:64;index" json:"ref_id"`
}

type WithdrawalRequest struct {
	gorm.Model

	PanditID    uint            `gorm:"index" json:"pandit_id"`
	Pandit      Pandit          `json:"pandit"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Status      string          `gorm:"size:10;index;default:PENDING" json:"status"`
	ProcessedAt *time.Time      `json:"processed_at"`
}
