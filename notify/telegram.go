package notify

import (
	"fmt"
	"log"
	"yatra/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	bot         *tgbotapi.BotAPI
	adminChatID int64
)

// Init connects the Telegram bot. With an empty token notifications become
// no-ops, which is how local development runs.
func Init(token string, chatID int64) {
	if token == "" || chatID == 0 {
		log.Println("ℹ️  telegram notifications disabled")
		return
	}

	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("⚠️  telegram init failed: %v", err)
		return
	}
	bot = b
	adminChatID = chatID
	log.Printf("✅ telegram notifications enabled as @%s", b.Self.UserName)
}

func send(text string) {
	if bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(adminChatID, text)
	if _, err := bot.Send(msg); err != nil {
		log.Printf("⚠️  telegram send failed: %v", err)
	}
}

func BookingPaid(booking *models.Booking, payment *models.Payment) {
	send(fmt.Sprintf(
		"💰 Booking #%d paid\n%s on %s %s\nAmount: %s %s via %s",
		booking.ID, booking.ServiceName, booking.BookingDate, booking.BookingTime,
		payment.Amount.StringFixed(2), payment.Currency, payment.Gateway,
	))
}

func OrderPaid(order *models.ShopOrder, payment *models.Payment) {
	send(fmt.Sprintf(
		"🛒 Order %s paid\nAmount: %s %s via %s\nShip to: %s, %s",
		order.OrderRef,
		payment.Amount.StringFixed(2), payment.Currency, payment.Gateway,
		order.ShippingName, order.ShippingCity,
	))
}

func PaymentRefunded(payment *models.Payment, reason string) {
	send(fmt.Sprintf(
		"↩️ Payment #%d refunded\nAmount: %s %s\nReason: %s",
		payment.ID, payment.RefundAmount.StringFixed(2), payment.Currency, reason,
	))
}

func WithdrawalApproved(request *models.WithdrawalRequest) {
	send(fmt.Sprintf(
		"🏦 Withdrawal #%d approved for pandit %d\nAmount: %s NPR",
		request.ID, request.PanditID, request.Amount.StringFixed(2),
	))
}
