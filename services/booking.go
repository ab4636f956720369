package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"yatra/database"
	"yatra/helpers"
	"yatra/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	workingDayStart = 8 * 60  // minutes since midnight
	workingDayEnd   = 20 * 60 // exclusive
	slotStepMin     = 30
)

type GoodsSelection struct {
	SamagriItemID uint `json:"samagri_item_id"`
	Quantity      int  `json:"quantity"`
}

type CreateBookingInput struct {
	UserID          uint
	PanditID        uint
	ServiceID       *uint
	ServiceLocation string
	BookingDate     string
	BookingTime     string
	Notes           string
	Goods           []GoodsSelection
}

func CreateBooking(db *gorm.DB, in CreateBookingInput) (*models.Booking, error) {
	if _, err := time.Parse("2006-01-02", in.BookingDate); err != nil {
		return nil, fmt.Errorf("%w: invalid booking_date", models.ErrValidation)
	}
	if _, err := time.Parse("15:04", in.BookingTime); err != nil {
		return nil, fmt.Errorf("%w: invalid booking_time", models.ErrValidation)
	}
	switch in.ServiceLocation {
	case models.LocationOnline, models.LocationHome, models.LocationTemple:
	default:
		return nil, fmt.Errorf("%w: invalid service_location", models.ErrValidation)
	}

	var pandit models.Pandit
	if err := db.First(&pandit, in.PanditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pandit", models.ErrNotFound)
		}
		return nil, err
	}
	if !pandit.IsVerified || !pandit.IsAvailable {
		return nil, fmt.Errorf("%w: pandit is not accepting bookings", models.ErrValidation)
	}

	serviceFee := pandit.BasePrice
	serviceName := "Custom Puja"
	if in.ServiceID != nil {
		var svc models.PujaService
		if err := db.First(&svc, *in.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: service", models.ErrNotFound)
			}
			return nil, err
		}
		serviceFee = svc.Price
		serviceName = svc.Name
	}

	goods, goodsFee, err := snapshotGoods(db, in.Goods)
	if err != nil {
		return nil, err
	}

	// Unlocked existence check; the unique slot_key index is the safety net
	// against a concurrent create for the same slot.
	var clash int64
	err = db.Model(&models.Booking{}).
		Where("pandit_id = ? AND booking_date = ? AND booking_time = ? AND status IN ?",
			in.PanditID, in.BookingDate, in.BookingTime,
			[]string{models.BookingPending, models.BookingAccepted}).
		Count(&clash).Error
	if err != nil {
		return nil, err
	}
	if clash > 0 {
		return nil, models.ErrSlotConflict
	}

	rate := helpers.GetExchangeRate()
	totalFee := serviceFee.Add(goodsFee)
	slotKey := models.SlotKeyFor(in.PanditID, in.BookingDate, in.BookingTime)

	booking := models.Booking{
		UserID:          in.UserID,
		PanditID:        in.PanditID,
		ServiceID:       in.ServiceID,
		ServiceName:     serviceName,
		ServiceLocation: in.ServiceLocation,
		BookingDate:     in.BookingDate,
		BookingTime:     in.BookingTime,
		Status:          models.BookingPending,
		SlotKey:         &slotKey,
		ServiceFee:      serviceFee,
		GoodsFee:        goodsFee,
		TotalFee:        totalFee,
		TotalFeeUSD:     helpers.ConvertNPRToUSD(totalFee, rate),
		ExchangeRate:    rate,
		Notes:           in.Notes,
		Goods:           goods,
	}

	if err := db.Create(&booking).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrSlotConflict
		}
		return nil, err
	}
	return &booking, nil
}

// UpdateGoodsSelection replaces the goods on a PENDING booking and recomputes
// goods_fee and total_fee.
func UpdateGoodsSelection(db *gorm.DB, actor models.User, bookingID uint, selection []GoodsSelection) (*models.Booking, error) {
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
		}
		return nil, err
	}
	if booking.UserID != actor.ID && !actor.IsAdmin() {
		return nil, models.ErrPermission
	}
	if booking.Status != models.BookingPending {
		return nil, fmt.Errorf("%w: goods can only change while pending", models.ErrValidation)
	}

	goods, goodsFee, err := snapshotGoods(db, selection)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.BookingGoods{}).Error; err != nil {
			return err
		}
		for i := range goods {
			goods[i].BookingID = booking.ID
			if err := tx.Create(&goods[i]).Error; err != nil {
				return err
			}
		}

		booking.GoodsFee = goodsFee
		booking.TotalFee = booking.ServiceFee.Add(goodsFee)
		booking.TotalFeeUSD = helpers.ConvertNPRToUSD(booking.TotalFee, booking.ExchangeRate)
		return tx.Model(&booking).Updates(map[string]any{
			"goods_fee":     booking.GoodsFee,
			"total_fee":     booking.TotalFee,
			"total_fee_usd": booking.TotalFeeUSD,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	booking.Goods = goods
	return &booking, nil
}

// TransitionBooking applies the status table. The wallet credit on
// completion happens in the same transaction as the status write.
func TransitionBooking(db *gorm.DB, actor models.User, bookingID uint, target string) (*models.Booking, error) {
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
		}
		return nil, err
	}

	if err := checkTransition(db, &booking, actor, target); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&booking, booking.ID).Error; err != nil {
			return err
		}
		// Re-validate under lock; a concurrent request may have moved it.
		if err := checkTransition(tx, &booking, actor, target); err != nil {
			return err
		}

		updates := map[string]any{"status": target}
		switch target {
		case models.BookingCompleted:
			now := time.Now()
			updates["completed_at"] = now
			updates["slot_key"] = nil
			booking.CompletedAt = &now
			if err := creditForBooking(tx, &booking); err != nil {
				return err
			}
		case models.BookingCancelled, models.BookingFailed:
			updates["slot_key"] = nil
		}

		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return err
		}
		booking.Status = target
		if target != models.BookingAccepted {
			booking.SlotKey = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func checkTransition(db *gorm.DB, booking *models.Booking, actor models.User, target string) error {
	switch {
	case booking.Status == models.BookingPending && target == models.BookingAccepted:
		return requireAssignedPandit(db, booking, actor)
	case booking.Status == models.BookingPending && target == models.BookingCancelled:
		if booking.UserID == actor.ID || actor.IsAdmin() {
			return nil
		}
		return models.ErrPermission
	case booking.Status == models.BookingAccepted && target == models.BookingCompleted:
		return requireAssignedPandit(db, booking, actor)
	case booking.Status == models.BookingAccepted && target == models.BookingCancelled:
		if actor.IsAdmin() {
			return nil
		}
		return models.ErrPermission
	}
	return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, booking.Status, target)
}

func requireAssignedPandit(db *gorm.DB, booking *models.Booking, actor models.User) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != models.RolePandit {
		return models.ErrPermission
	}
	var pandit models.Pandit
	if err := db.Where("user_id = ?", actor.ID).First(&pandit).Error; err != nil {
		return models.ErrPermission
	}
	if pandit.ID != booking.PanditID {
		return models.ErrPermission
	}
	return nil
}

// AvailableSlots subtracts the intervals occupied by non-terminal bookings
// from the 08:00-20:00 working window at a 30 minute step.
func AvailableSlots(db *gorm.DB, panditID uint, date string, durationMin int) ([]string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: invalid date", models.ErrValidation)
	}
	if durationMin <= 0 {
		durationMin = 60
	}

	var bookings []models.Booking
	err := db.Where("pandit_id = ? AND booking_date = ? AND status IN ?",
		panditID, date, []string{models.BookingPending, models.BookingAccepted}).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	type interval struct{ start, end int }
	busy := make([]interval, 0, len(bookings))
	for _, b := range bookings {
		start, err := minutesOfDay(b.BookingTime)
		if err != nil {
			continue
		}
		busy = append(busy, interval{start, start + durationMin})
	}

	slots := []string{}
	for start := workingDayStart; start+durationMin <= workingDayEnd; start += slotStepMin {
		end := start + durationMin
		free := true
		for _, iv := range busy {
			// half-open overlap
			if start < iv.end && end > iv.start {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, fmt.Sprintf("%02d:%02d", start/60, start%60))
		}
	}
	return slots, nil
}

func snapshotGoods(db *gorm.DB, selection []GoodsSelection) ([]models.BookingGoods, decimal.Decimal, error) {
	goods := make([]models.BookingGoods, 0, len(selection))
	fee := decimal.Zero
	for _, sel := range selection {
		if sel.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: goods quantity must be positive", models.ErrValidation)
		}
		var item models.SamagriItem
		if err := db.First(&item, sel.SamagriItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, fmt.Errorf("%w: samagri item %d", models.ErrNotFound, sel.SamagriItemID)
			}
			return nil, decimal.Zero, err
		}
		goods = append(goods, models.BookingGoods{
			SamagriItemID: item.ID,
			Quantity:      sel.Quantity,
			Price:         item.Price,
		})
		fee = fee.Add(item.Price.Mul(decimal.NewFromInt(int64(sel.Quantity))))
	}
	return goods, fee, nil
}

func minutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
