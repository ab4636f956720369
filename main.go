package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"yatra/config"
	"yatra/database"
	"yatra/gateways"
	"yatra/notify"
	"yatra/routes"
	"yatra/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	database.Connect(cfg)

	gateways.Register(gateways.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.FrontendURL))
	gateways.Register(gateways.NewKhaltiGateway(cfg.KhaltiSecretKey, cfg.KhaltiWebhookSecret, cfg.FrontendURL))

	if cfg.DailyAPIKey != "" {
		services.Video = services.NewVideoRoomClient(cfg.DailyAPIKey)
	}
	notify.Init(cfg.TelegramBotToken, cfg.TelegramAdminChatID)

	app := fiber.New(fiber.Config{
		AppName:               "yatra",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.FrontendURL}))

	routes.Setup(app, cfg)

	go func() {
		addr := cfg.Host + ":" + cfg.Port
		log.Printf("🚀 listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("❌ server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 shutting down")
	if err := app.Shutdown(); err != nil {
		log.Printf("⚠️  shutdown: %v", err)
	}
}
