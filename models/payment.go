package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentPending    = "PENDING"
	PaymentProcessing = "PROCESSING"
	PaymentCompleted  = "COMPLETED"
	PaymentFailed     = "FAILED"
	PaymentRefunded   = "REFUNDED"
)

const (
	GatewayStripe = "STRIPE"
	GatewayKhalti = "KHALTI"
)

type Payment struct {
	gorm.Model

	BookingID *uint    `gorm:"uniqueIndex" json:"booking_id"`
	Booking   *Booking `json:"booking,omitempty"`
	OrderID   *uint    `gorm:"uniqueIndex" json:"order_id"`
	UserID    uint     `gorm:"index" json:"user_id"`

	Gateway string `gorm:"size:20;index" json:"gateway"`

	// ExternalRef is the gateway's reference issued at initiation (checkout
	// session id, pidx). It is the idempotency key for reconciliation. Rows
	// carry a provisional TMP- ref until a gateway session is opened, so the
	// unique index holds before initiation too.
	ExternalRef  string `gorm:"uniqueIndex;size:100" json:"external_ref"`
	GatewayTxnID string `gorm:"size:100;index" json:"gateway_txn_id"`

	AmountNPR    decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount_npr"`
	AmountUSD    decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount_usd"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(12,6)" json:"exchange_rate"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency     string          `gorm:"size:3;default:NPR" json:"currency"`

	Status          string         `gorm:"size:20;index;default:PENDING" json:"status"`
	GatewayResponse datatypes.JSON `json:"gateway_response"`
	CompletedAt     *time.Time     `json:"completed_at"`

	RefundAmount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"refund_amount"`
	RefundReason string          `gorm:"size:500" json:"refund_reason"`
	RefundedAt   *time.Time      `json:"refunded_at"`
}

// PaymentWebhookLog records every gateway callback before any processing.
type PaymentWebhookLog struct {
	gorm.Model

	Gateway   string         `gorm:"size:20;index" json:"gateway"`
	Payload   datatypes.JSON `json:"payload"`
	Headers   datatypes.JSON `json:"headers"`
	Processed bool           `gorm:"default:false" json:"processed"`
}

// PaymentErrorLog captures failures swallowed by the webhook pipeline for
// operator review.
type PaymentErrorLog struct {
	gorm.Model

	ErrorType string         `gorm:"size:32;index" json:"error_type"`
	Message   string         `gorm:"size:1000" json:"message"`
	Context   datatypes.JSON `json:"context"`
}
