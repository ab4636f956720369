package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BookingPending   = "PENDING"
	BookingAccepted  = "ACCEPTED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
	BookingFailed    = "FAILED"
)

const (
	LocationOnline = "ONLINE"
	LocationHome   = "HOME"
	LocationTemple = "TEMPLE"
)

type Booking struct {
	gorm.Model

	UserID   uint   `gorm:"index" json:"user_id"`
	User     User   `json:"user"`
	PanditID uint   `gorm:"index" json:"pandit_id"`
	Pandit   Pandit `json:"pandit"`

	ServiceID       *uint  `json:"service_id"`
	ServiceName     string `gorm:"size:100" json:"service_name"`
	ServiceLocation string `gorm:"size:16;default:HOME" json:"service_location"`

	BookingDate string `gorm:"size:10;index" json:"booking_date"` // 2006-01-02
	BookingTime string `gorm:"size:5" json:"booking_time"`        // 15:04
	Status      string `gorm:"size:10;index;default:PENDING" json:"status"`

	// SlotKey is set while the booking is non-terminal and cleared on any
	// terminal transition. The unique index is the safety net against two
	// concurrent creates for the same slot; NULLs never collide.
	SlotKey *string `gorm:"uniqueIndex;size:64" json:"-"`

	ServiceFee   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"service_fee"`
	GoodsFee     decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"goods_fee"`
	TotalFee     decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_fee"`
	TotalFeeUSD  decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_fee_usd"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(12,6);default:0" json:"exchange_rate"`

	PaymentStatus bool   `gorm:"default:false" json:"payment_status"`
	PaymentMethod string `gorm:"size:20" json:"payment_method"`
	GatewayTxnID  string `gorm:"size:100" json:"gateway_txn_id"`

	VideoRoomURL string     `gorm:"size:255" json:"video_room_url"`
	Notes        string     `gorm:"size:500" json:"notes"`
	CompletedAt  *time.Time `json:"completed_at"`

	Goods []BookingGoods `gorm:"foreignKey:BookingID" json:"goods"`
}

type BookingGoods struct {
	gorm.Model

	BookingID     uint            `gorm:"index" json:"booking_id"`
	SamagriItemID uint            `json:"samagri_item_id"`
	SamagriItem   SamagriItem     `json:"samagri_item"`
	Quantity      int             `gorm:"default:1" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"` // snapshot at selection time
}

func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingCompleted, BookingCancelled, BookingFailed:
		return true
	}
	return false
}

func SlotKeyFor(panditID uint, date, t string) string {
	return fmt.Sprintf("%d|%s|%s", panditID, date, t)
}
