package services

import (
	"errors"
	"fmt"
	"yatra/database"
	"yatra/gateways"
	"yatra/helpers"
	"yatra/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutLine struct {
	InventoryItemID uint `json:"inventory_item_id"`
	Quantity        int  `json:"quantity"`
}

type CheckoutInput struct {
	UserID  uint
	Gateway string
	Lines   []CheckoutLine

	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingCity    string
}

// Checkout reserves stock and opens the payment session. Stock is
// decremented in the same transaction that creates the order; a failed
// payment initiation leaves the order PENDING with the stock held.
func Checkout(db *gorm.DB, in CheckoutInput) (*models.ShopOrder, string, error) {
	if len(in.Lines) == 0 {
		return nil, "", fmt.Errorf("%w: empty order", models.ErrValidation)
	}
	if in.ShippingName == "" || in.ShippingPhone == "" || in.ShippingAddress == "" {
		return nil, "", fmt.Errorf("%w: shipping details required", models.ErrValidation)
	}

	gw := gateways.Get(in.Gateway)
	if gw == nil {
		return nil, "", fmt.Errorf("%w: unknown gateway %q", models.ErrValidation, in.Gateway)
	}

	order := models.ShopOrder{
		UserID:          in.UserID,
		OrderRef:        "ORD-" + uuid.NewString(),
		Status:          models.OrderPending,
		Gateway:         gw.Code(),
		ShippingName:    in.ShippingName,
		ShippingPhone:   in.ShippingPhone,
		ShippingAddress: in.ShippingAddress,
		ShippingCity:    in.ShippingCity,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range in.Lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
			}

			var item models.InventoryItem
			if err := database.LockForUpdate(tx).First(&item, line.InventoryItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: item %d", models.ErrNotFound, line.InventoryItemID)
				}
				return err
			}
			if item.StockQuantity < line.Quantity {
				return fmt.Errorf("%w: %s", models.ErrInsufficientStock, item.Name)
			}

			item.StockQuantity -= line.Quantity
			if err := tx.Save(&item).Error; err != nil {
				return err
			}

			if err := tx.Create(&models.ShopOrderItem{
				OrderID:         order.ID,
				InventoryItemID: item.ID,
				Quantity:        line.Quantity,
				PriceAtPurchase: item.Price,
			}).Error; err != nil {
				return err
			}
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.TotalAmount = total
		return tx.Model(&order).Update("total_amount", total).Error
	})
	if err != nil {
		return nil, "", err
	}

	// Payment initiation happens after the stock commit; failure here leaves
	// the order PENDING for a retry through the payment endpoints.
	payment := models.Payment{OrderID: &order.ID, UserID: in.UserID, ExternalRef: provisionalRef()}
	if err := db.Create(&payment).Error; err != nil {
		return nil, "", err
	}

	rate := helpers.GetExchangeRate()
	amountNPR := order.TotalAmount
	amountUSD := helpers.ConvertNPRToUSD(amountNPR, rate)

	redirectURL, err := openSession(db, &payment, gw, amountNPR, amountUSD, rate, order.OrderRef)
	if err != nil {
		return &order, "", err
	}
	return &order, redirectURL, nil
}
