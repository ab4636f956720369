package services

import (
	"fmt"
	"testing"
	"yatra/gateways"
	"yatra/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	diya := createInventoryItem(t, db, "Brass Diya", "150", 10)
	mala := createInventoryItem(t, db, "Rudraksha Mala", "800", 3)

	fake := &fakeGateway{}
	registerFake(t, fake)

	order, redirectURL, err := Checkout(db, CheckoutInput{
		UserID:  customer.ID,
		Gateway: "khalti",
		Lines: []CheckoutLine{
			{InventoryItemID: diya.ID, Quantity: 2},
			{InventoryItemID: mala.ID, Quantity: 1},
		},
		ShippingName:    "Asha",
		ShippingPhone:   "9800000000",
		ShippingAddress: "Patan Durbar Square",
		ShippingCity:    "Lalitpur",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, redirectURL)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1100")))

	var reloadedDiya models.InventoryItem
	require.NoError(t, db.First(&reloadedDiya, diya.ID).Error)
	assert.Equal(t, 8, reloadedDiya.StockQuantity)

	var items []models.ShopOrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&items).Error)
	require.Len(t, items, 2)

	// Settling the payment marks the order PAID.
	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	require.NoError(t, Reconcile(db, fake, payment.ExternalRef, &gateways.WebhookEvent{
		ExternalRef: payment.ExternalRef,
		Amount:      decimal.RequireFromString("1100"),
		Completed:   true,
	}))

	var reloadedOrder models.ShopOrder
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderPaid, reloadedOrder.Status)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	mala := createInventoryItem(t, db, "Rudraksha Mala", "800", 1)

	fake := &fakeGateway{}
	registerFake(t, fake)

	_, _, err := Checkout(db, CheckoutInput{
		UserID:          customer.ID,
		Gateway:         "khalti",
		Lines:           []CheckoutLine{{InventoryItemID: mala.ID, Quantity: 2}},
		ShippingName:    "Asha",
		ShippingPhone:   "9800000000",
		ShippingAddress: "Patan Durbar Square",
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// The whole order rolls back; no stock is held and nothing is charged.
	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, mala.ID).Error)
	assert.Equal(t, 1, reloaded.StockQuantity)

	var orders int64
	require.NoError(t, db.Model(&models.ShopOrder{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Zero(t, fake.initiated)
}

func TestCheckoutLastUnitGoesToOneBuyer(t *testing.T) {
	db := newTestDB(t)
	first := createCustomer(t, db)
	second := createCustomer(t, db)
	mala := createInventoryItem(t, db, "Rudraksha Mala", "800", 1)

	fake := &fakeGateway{}
	registerFake(t, fake)

	buy := func(user models.User) error {
		_, _, err := Checkout(db, CheckoutInput{
			UserID:          user.ID,
			Gateway:         "khalti",
			Lines:           []CheckoutLine{{InventoryItemID: mala.ID, Quantity: 1}},
			ShippingName:    "Asha",
			ShippingPhone:   "9800000000",
			ShippingAddress: "Patan Durbar Square",
		})
		return err
	}

	require.NoError(t, buy(first))
	assert.ErrorIs(t, buy(second), models.ErrInsufficientStock)

	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, mala.ID).Error)
	assert.Equal(t, 0, reloaded.StockQuantity)

	var orders int64
	require.NoError(t, db.Model(&models.ShopOrder{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
	assert.Equal(t, 1, fake.initiated)
}

func TestCheckoutSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	diya := createInventoryItem(t, db, "Brass Diya", "150", 10)

	fake := &fakeGateway{}
	registerFake(t, fake)

	order, _, err := Checkout(db, CheckoutInput{
		UserID:          customer.ID,
		Gateway:         "khalti",
		Lines:           []CheckoutLine{{InventoryItemID: diya.ID, Quantity: 1}},
		ShippingName:    "Asha",
		ShippingPhone:   "9800000000",
		ShippingAddress: "Patan Durbar Square",
	})
	require.NoError(t, err)

	// A later price change does not touch the recorded line.
	require.NoError(t, db.Model(&models.InventoryItem{}).Where("id = ?", diya.ID).
		Update("price", decimal.RequireFromString("999")).Error)

	var item models.ShopOrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.True(t, item.PriceAtPurchase.Equal(decimal.RequireFromString("150")))
}

func TestCheckoutGatewayFailureKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	diya := createInventoryItem(t, db, "Brass Diya", "150", 5)

	fake := &fakeGateway{initiateErr: fmt.Errorf("gateway down")}
	registerFake(t, fake)

	order, _, err := Checkout(db, CheckoutInput{
		UserID:          customer.ID,
		Gateway:         "khalti",
		Lines:           []CheckoutLine{{InventoryItemID: diya.ID, Quantity: 2}},
		ShippingName:    "Asha",
		ShippingPhone:   "9800000000",
		ShippingAddress: "Patan Durbar Square",
	})
	assert.ErrorIs(t, err, models.ErrGateway)
	require.NotNil(t, order)

	// Stock stays reserved and the order stays PENDING for a payment retry.
	var reloadedOrder models.ShopOrder
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderPending, reloadedOrder.Status)

	var reloadedItem models.InventoryItem
	require.NoError(t, db.First(&reloadedItem, diya.ID).Error)
	assert.Equal(t, 3, reloadedItem.StockQuantity)
}

func TestCheckoutValidation(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)

	fake := &fakeGateway{}
	registerFake(t, fake)

	_, _, err := Checkout(db, CheckoutInput{UserID: customer.ID, Gateway: "khalti"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = Checkout(db, CheckoutInput{
		UserID:       customer.ID,
		Gateway:      "khalti",
		Lines:        []CheckoutLine{{InventoryItemID: 1, Quantity: 1}},
		ShippingName: "Asha",
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}
