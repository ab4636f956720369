package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"yatra/database"
	"yatra/gateways"
	"yatra/helpers"
	"yatra/models"
	"yatra/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InitiatePayment creates (or resumes) the payment for a booking and opens a
// gateway session. A payment only ever reaches COMPLETED through Reconcile.
func InitiatePayment(db *gorm.DB, user models.User, bookingID uint, gatewayCode string) (*models.Payment, string, error) {
	var booking models.Booking
	if err := db.Where("id = ? AND user_id = ?", bookingID, user.ID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: booking", models.ErrNotFound)
		}
		return nil, "", err
	}
	if booking.PaymentStatus {
		return nil, "", models.ErrAlreadyPaid
	}
	if booking.IsTerminal() {
		return nil, "", fmt.Errorf("%w: booking is %s", models.ErrValidation, booking.Status)
	}

	gw := gateways.Get(gatewayCode)
	if gw == nil {
		return nil, "", fmt.Errorf("%w: unknown gateway %q", models.ErrValidation, gatewayCode)
	}

	rate := booking.ExchangeRate
	if rate.IsZero() {
		rate = helpers.GetExchangeRate()
	}
	amountNPR := booking.TotalFee
	amountUSD := helpers.ConvertNPRToUSD(amountNPR, rate)

	var payment models.Payment
	err := db.Where("booking_id = ?", booking.ID).First(&payment).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = models.Payment{
			BookingID:   &booking.ID,
			UserID:      user.ID,
			ExternalRef: provisionalRef(),
		}
		if err := db.Create(&payment).Error; err != nil {
			// A concurrent initiation won the unique booking_id index.
			if isDuplicateKey(err) {
				if err := db.Where("booking_id = ?", booking.ID).First(&payment).Error; err != nil {
					return nil, "", err
				}
			} else {
				return nil, "", err
			}
		}
	case err != nil:
		return nil, "", err
	}
	if payment.Status == models.PaymentCompleted {
		return nil, "", models.ErrAlreadyPaid
	}

	redirectURL, err := openSession(db, &payment, gw, amountNPR, amountUSD, rate, fmt.Sprintf("BOOKING-%d", booking.ID))
	if err != nil {
		return nil, "", err
	}
	return &payment, redirectURL, nil
}

// openSession calls the gateway and moves the payment to PROCESSING. On
// gateway failure the payment keeps its previous status so the customer can
// retry with either gateway.
func openSession(db *gorm.DB, payment *models.Payment, gw gateways.PaymentGateway,
	amountNPR, amountUSD, rate decimal.Decimal, orderRef string) (string, error) {

	// Stripe charges in USD, Khalti in NPR.
	amount, currency := amountNPR, "NPR"
	if gw.Code() == models.GatewayStripe {
		amount, currency = amountUSD, "USD"
	}

	res, err := gw.Initiate(amount, currency, orderRef)
	if err != nil {
		logPaymentError(db, "INITIATE", err, map[string]any{
			"payment_id": payment.ID,
			"gateway":    gw.Code(),
			"order_ref":  orderRef,
		})
		return "", fmt.Errorf("%w: %v", models.ErrGateway, err)
	}

	updates := map[string]any{
		"gateway":          gw.Code(),
		"external_ref":     res.ExternalRef,
		"amount":           amount,
		"currency":         currency,
		"amount_npr":       amountNPR,
		"amount_usd":       amountUSD,
		"exchange_rate":    rate,
		"status":           models.PaymentProcessing,
		"gateway_response": datatypes.JSON(res.Raw),
	}
	if err := db.Model(payment).Updates(updates).Error; err != nil {
		return "", err
	}

	payment.Gateway = gw.Code()
	payment.ExternalRef = res.ExternalRef
	payment.Amount = amount
	payment.Currency = currency
	payment.AmountNPR = amountNPR
	payment.AmountUSD = amountUSD
	payment.ExchangeRate = rate
	payment.Status = models.PaymentProcessing
	return res.RedirectURL, nil
}

// Reconcile settles a payment identified by its gateway reference. It is the
// single convergence point for webhooks and redirect verification and is
// safe to run any number of times for the same reference.
//
// When event is nil the outcome is fetched from the gateway; otherwise the
// already-verified webhook event is trusted.
func Reconcile(db *gorm.DB, gw gateways.PaymentGateway, externalRef string, event *gateways.WebhookEvent) error {
	var payment models.Payment
	if err := db.Where("external_ref = ?", externalRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment for ref %s", models.ErrNotFound, externalRef)
		}
		return err
	}
	if payment.Status == models.PaymentCompleted {
		return nil
	}

	var (
		ok    bool
		txnID string
		raw   []byte
	)
	if event != nil {
		if !event.Completed {
			// Not a settlement event; acknowledge and keep waiting.
			return nil
		}
		ok = event.Amount.Equal(payment.Amount)
		txnID = event.GatewayTxnID
		raw = event.Raw
	} else {
		// External call stays outside the transaction.
		res, err := gw.Verify(externalRef, payment.Amount)
		if err != nil {
			logPaymentError(db, "VERIFY", err, map[string]any{
				"payment_id":   payment.ID,
				"external_ref": externalRef,
			})
			return fmt.Errorf("%w: %v", models.ErrGateway, err)
		}
		if res.Pending {
			// Not settled on the gateway side yet; the webhook or a later
			// verify will finish the job.
			return nil
		}
		ok = res.OK
		txnID = res.GatewayTxnID
		raw = res.Raw
	}

	var settledBooking *models.Booking
	var settledOrder *models.ShopOrder

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&payment, payment.ID).Error; err != nil {
			return err
		}
		// A concurrent webhook or verify may have settled it already.
		if payment.Status == models.PaymentCompleted {
			return nil
		}

		if !ok {
			return tx.Model(&payment).Updates(map[string]any{
				"status":           models.PaymentFailed,
				"gateway_response": datatypes.JSON(raw),
			}).Error
		}

		now := time.Now()
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":           models.PaymentCompleted,
			"gateway_txn_id":   txnID,
			"gateway_response": datatypes.JSON(raw),
			"completed_at":     now,
		}).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentCompleted
		payment.GatewayTxnID = txnID
		payment.CompletedAt = &now

		if payment.BookingID != nil {
			var booking models.Booking
			if err := database.LockForUpdate(tx).First(&booking, *payment.BookingID).Error; err != nil {
				return err
			}
			updates := map[string]any{
				"payment_status": true,
				"payment_method": payment.Gateway,
				"gateway_txn_id": txnID,
			}
			if booking.Status == models.BookingPending {
				updates["status"] = models.BookingAccepted
				booking.Status = models.BookingAccepted
			}
			if err := tx.Model(&booking).Updates(updates).Error; err != nil {
				return err
			}
			booking.PaymentStatus = true
			booking.PaymentMethod = payment.Gateway
			settledBooking = &booking
		}

		if payment.OrderID != nil {
			var order models.ShopOrder
			if err := database.LockForUpdate(tx).First(&order, *payment.OrderID).Error; err != nil {
				return err
			}
			if err := tx.Model(&order).Update("status", models.OrderPaid).Error; err != nil {
				return err
			}
			order.Status = models.OrderPaid
			settledOrder = &order
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: amount or status mismatch", models.ErrGateway)
	}

	// Post-commit side effects are best effort.
	if settledBooking != nil {
		attachVideoRoom(db, settledBooking)
		notify.BookingPaid(settledBooking, &payment)
	}
	if settledOrder != nil {
		notify.OrderPaid(settledOrder, &payment)
	}
	return nil
}

// RefundPayment pushes the refund to the gateway first and only then records
// it, so a write failure can be retried without double-paying the customer.
func RefundPayment(db *gorm.DB, paymentID uint, reason string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment", models.ErrNotFound)
		}
		return nil, err
	}
	if payment.Status == models.PaymentRefunded {
		return nil, models.ErrAlreadyRefunded
	}
	if payment.Status != models.PaymentCompleted {
		return nil, fmt.Errorf("%w: only completed payments can be refunded", models.ErrValidation)
	}

	gw := gateways.Get(payment.Gateway)
	if gw == nil {
		return nil, fmt.Errorf("%w: unknown gateway %q", models.ErrValidation, payment.Gateway)
	}
	if err := gw.Refund(payment.ExternalRef, payment.GatewayTxnID, payment.Amount); err != nil {
		logPaymentError(db, "REFUND", err, map[string]any{"payment_id": payment.ID})
		return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&payment, payment.ID).Error; err != nil {
			return err
		}
		if payment.Status == models.PaymentRefunded {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":        models.PaymentRefunded,
			"refund_amount": payment.Amount,
			"refund_reason": reason,
			"refunded_at":   now,
		}).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentRefunded
		payment.RefundAmount = payment.Amount
		payment.RefundReason = reason
		payment.RefundedAt = &now

		// Claw back the pandit's share when the work was already paid out.
		if payment.BookingID != nil {
			var booking models.Booking
			if err := database.LockForUpdate(tx).First(&booking, *payment.BookingID).Error; err != nil {
				return err
			}
			if booking.Status == models.BookingCompleted {
				if err := reverseForBooking(tx, &booking); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify.PaymentRefunded(&payment, reason)
	return &payment, nil
}

// CancelBookingWithRefund is the admin path for cancelling a booking. The
// transition is validated before any money moves; only then refund, then the
// status change. If the refund succeeds and the cancel write fails the
// booking can be cancelled again without a second charge to the gateway.
func CancelBookingWithRefund(db *gorm.DB, admin models.User, bookingID uint, reason string) (*models.Booking, error) {
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
		}
		return nil, err
	}
	if err := checkTransition(db, &booking, admin, models.BookingCancelled); err != nil {
		return nil, err
	}

	var payment models.Payment
	err := db.Where("booking_id = ?", bookingID).First(&payment).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && payment.Status == models.PaymentCompleted {
		if _, err := RefundPayment(db, payment.ID, reason); err != nil {
			return nil, err
		}
	}
	return TransitionBooking(db, admin, bookingID, models.BookingCancelled)
}

func attachVideoRoom(db *gorm.DB, booking *models.Booking) {
	if booking.ServiceLocation != models.LocationOnline || booking.VideoRoomURL != "" {
		return
	}
	url, err := Video.CreateRoom(fmt.Sprintf("puja-%d", booking.ID), booking.BookingDate)
	if err != nil {
		log.Printf("⚠️  video room for booking %d: %v", booking.ID, err)
		return
	}
	if err := db.Model(booking).Update("video_room_url", url).Error; err != nil {
		log.Printf("⚠️  saving video room for booking %d: %v", booking.ID, err)
		return
	}
	booking.VideoRoomURL = url
}

// provisionalRef keeps the external_ref unique index satisfied on rows that
// have not opened a gateway session yet.
func provisionalRef() string {
	return "TMP-" + uuid.NewString()
}

func logPaymentError(db *gorm.DB, errType string, cause error, ctx map[string]any) {
	raw, _ := json.Marshal(ctx)
	entry := models.PaymentErrorLog{
		ErrorType: errType,
		Message:   cause.Error(),
		Context:   datatypes.JSON(raw),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("⚠️  writing payment error log: %v", err)
	}
}
