package routes

import (
	"yatra/config"
	"yatra/controllers/auth"
	"yatra/controllers/booking"
	"yatra/controllers/callback/khalticb"
	"yatra/controllers/callback/stripecb"
	"yatra/controllers/catalog"
	"yatra/controllers/payment"
	"yatra/controllers/shop"
	"yatra/controllers/wallet"
	"yatra/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, cfg config.App) {
	api := app.Group("/api/v1")

	// Public surface.
	api.Post("/auth/register", auth.Register(cfg.JWTSecret))
	api.Post("/auth/login", auth.Login(cfg.JWTSecret))

	api.Get("/pandits", catalog.Pandits)
	api.Get("/pandits/:id", catalog.Pandit)
	api.Get("/pandits/:id/slots", booking.Slots)
	api.Get("/services", catalog.Services)
	api.Get("/samagri", catalog.SamagriItems)
	api.Get("/shop/items", shop.Items)
	api.Get("/payments/exchange-rate", payment.ExchangeRate)

	// Gateway callbacks authenticate by signature, not by token.
	callbacks := api.Group("/callbacks")
	callbacks.Post("/stripe", stripecb.Webhook)
	callbacks.Post("/khalti", khalticb.Webhook)

	// Authenticated surface.
	authed := api.Group("", middlewares.RequireAuth(cfg.JWTSecret))
	authed.Get("/auth/me", auth.Me)

	bookings := authed.Group("/bookings")
	bookings.Post("/", booking.Create)
	bookings.Get("/", booking.List)
	bookings.Get("/:id", booking.Get)
	bookings.Patch("/:id/status", booking.UpdateStatus)
	bookings.Patch("/:id/goods", booking.UpdateGoods)

	payments := authed.Group("/payments")
	payments.Post("/initiate", payment.Initiate)
	payments.Get("/status/:id", payment.StatusForBooking)
	payments.Get("/:gateway/verify", payment.Verify)

	authed.Post("/shop/checkout", shop.Checkout)
	authed.Get("/shop/orders", shop.Orders)
	authed.Get("/shop/orders/:ref", shop.Order)

	wallets := authed.Group("/wallet", middlewares.PanditOnly())
	wallets.Get("/", wallet.Get)
	wallets.Get("/withdrawals", wallet.ListWithdrawals)
	wallets.Post("/withdrawals", wallet.Withdraw)

	admin := authed.Group("/admin", middlewares.AdminOnly())
	admin.Get("/payments", payment.AdminList)
	admin.Post("/payments/:id/refund", payment.AdminRefund)
	admin.Get("/error-logs", payment.AdminErrorLogs)
	admin.Post("/maintenance/prune-webhook-logs", payment.AdminPruneWebhookLogs)
	admin.Get("/withdrawals", wallet.AdminListWithdrawals)
	admin.Post("/withdrawals/:id/approve", wallet.AdminApproveWithdrawal)
	admin.Post("/withdrawals/:id/reject", wallet.AdminRejectWithdrawal)
	admin.Get("/payouts", wallet.AdminPayouts)
}
