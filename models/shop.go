package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderPending = "PENDING"
	OrderPaid    = "PAID"
	OrderFailed  = "FAILED"
)

type InventoryItem struct {
	gorm.Model

	Name          string          `gorm:"size:150" json:"name"`
	Category      string          `gorm:"size:100;index" json:"category"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
}

type ShopOrder struct {
	gorm.Model

	UserID      uint            `gorm:"index" json:"user_id"`
	OrderRef    string          `gorm:"uniqueIndex;size:64" json:"order_ref"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"total_amount"`
	Status      string          `gorm:"size:10;index;default:PENDING" json:"status"`
	Gateway     string          `gorm:"size:20" json:"gateway"`

	ShippingName    string `gorm:"size:100" json:"shipping_name"`
	ShippingPhone   string `gorm:"size:20" json:"shipping_phone"`
	ShippingAddress string `gorm:"size:255" json:"shipping_address"`
	ShippingCity    string `gorm:"size:100" json:"shipping_city"`

	Items []ShopOrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// ShopOrderItem snapshots the price at purchase; rows are immutable after
// order creation.
type ShopOrderItem struct {
	gorm.Model

	OrderID         uint            `gorm:"index" json:"order_id"`
	InventoryItemID uint            `json:"inventory_item_id"`
	InventoryItem   InventoryItem   `json:"inventory_item"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_at_purchase"`
}
