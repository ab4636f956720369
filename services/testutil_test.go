package services

import (
	"fmt"
	"testing"
	"yatra/database"
	"yatra/helpers"
	"yatra/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	helpers.PrimeExchangeRate(decimal.RequireFromString("0.0075"))
	return db
}

func createCustomer(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Email:    uuid.NewString() + "@test.local",
		FullName: "Test Customer",
		Role:     models.RoleCustomer,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createAdmin(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Email:    uuid.NewString() + "@test.local",
		FullName: "Test Admin",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPandit(t *testing.T, db *gorm.DB, basePrice string) (models.User, models.Pandit) {
	t.Helper()
	user := models.User{
		Email:    uuid.NewString() + "@test.local",
		FullName: "Test Pandit",
		Role:     models.RolePandit,
	}
	require.NoError(t, db.Create(&user).Error)

	pandit := models.Pandit{
		UserID:      user.ID,
		Expertise:   "Vedic",
		BasePrice:   decimal.RequireFromString(basePrice),
		IsVerified:  true,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&pandit).Error)
	return user, pandit
}

func createSamagriItem(t *testing.T, db *gorm.DB, name, price string) models.SamagriItem {
	t.Helper()
	item := models.SamagriItem{Name: name, Category: "puja", Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func createInventoryItem(t *testing.T, db *gorm.DB, name, price string, stock int) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		Name:          name,
		Category:      "puja",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func createBooking(t *testing.T, db *gorm.DB, user models.User, pandit models.Pandit) *models.Booking {
	t.Helper()
	booking, err := CreateBooking(db, CreateBookingInput{
		UserID:          user.ID,
		PanditID:        pandit.ID,
		ServiceLocation: models.LocationHome,
		BookingDate:     "2026-09-15",
		BookingTime:     "10:00",
	})
	require.NoError(t, err)
	return booking
}
