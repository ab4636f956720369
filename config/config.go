package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port string `envconfig:"PORT" default:"3000"`

	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	// DB
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" required:"true"`
	DBPassword    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName        string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Card gateway (Stripe)
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Wallet gateway (Khalti)
	KhaltiSecretKey     string `envconfig:"KHALTI_SECRET_KEY"`
	KhaltiWebhookSecret string `envconfig:"KHALTI_WEBHOOK_SECRET"`

	// Video rooms
	DailyAPIKey string `envconfig:"DAILY_API_KEY"`

	// Notifications
	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
