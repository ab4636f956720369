package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PujaService is a catalog entry for a ritual service. The price is the
// default service fee; a pandit's BasePrice applies when no service is chosen.
type PujaService struct {
	gorm.Model

	Name        string          `gorm:"size:100" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	DurationMin int             `gorm:"default:60" json:"duration_min"`
}

// SamagriItem is a ritual-goods catalog entry selectable on a booking.
// Shop inventory is tracked separately on InventoryItem.
type SamagriItem struct {
	gorm.Model

	Name     string          `gorm:"size:150" json:"name"`
	Category string          `gorm:"size:100;index" json:"category"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Unit     string          `gorm:"size:50;default:pcs" json:"unit"`
}
