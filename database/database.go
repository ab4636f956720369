package database

import (
	"fmt"
	"log"
	"yatra/config"
	"yatra/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Connect(cfg config.App) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db
	log.Println("✅ Connected to database")

	if cfg.DBAutoMigrate {
		log.Println("🟡 Starting auto-migration...")

		if err := Migrate(DB); err != nil {
			log.Fatal("❌ Failed to auto-migrate database:", err)
		}

		log.Println("✅ Auto migration completed")
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Pandit{},
		&models.PujaService{},
		&models.SamagriItem{},
		&models.Booking{},
		&models.BookingGoods{},
		&models.Payment{},
		&models.PaymentWebhookLog{},
		&models.PaymentErrorLog{},
		&models.PanditWallet{},
		&models.WalletTransaction{},
		&models.WithdrawalRequest{},
		&models.InventoryItem{},
		&models.ShopOrder{},
		&models.ShopOrderItem{},
	)
}

// LockForUpdate applies an exclusive row lock. The sqlite dialect used in
// tests rejects FOR UPDATE, so it is skipped there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
