package services

import (
	"testing"
	"yatra/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalLifecycle(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	panditUser, pandit := createPandit(t, db, "1000")

	booking := createBooking(t, db, customer, pandit)
	_, err := TransitionBooking(db, panditUser, booking.ID, models.BookingAccepted)
	require.NoError(t, err)
	_, err = TransitionBooking(db, panditUser, booking.ID, models.BookingCompleted)
	require.NoError(t, err)

	// Balance is 800; more than that is rejected.
	_, err = RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("900"))
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	_, err = RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("-5"))
	assert.ErrorIs(t, err, models.ErrValidation)

	request, err := RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("500"))
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, request.Status)

	approved, err := ApproveWithdrawal(db, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	wallet, err := GetWallet(db, pandit.ID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.RequireFromString("300")))
	assert.True(t, wallet.TotalWithdrawn.Equal(decimal.RequireFromString("500")))
	assert.True(t, wallet.TotalEarned.Equal(decimal.RequireFromString("800")))

	// A settled request cannot be processed twice.
	_, err = ApproveWithdrawal(db, request.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = RejectWithdrawal(db, request.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApproveRechecksBalance(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	panditUser, pandit := createPandit(t, db, "1000")

	booking := createBooking(t, db, customer, pandit)
	_, err := TransitionBooking(db, panditUser, booking.ID, models.BookingAccepted)
	require.NoError(t, err)
	_, err = TransitionBooking(db, panditUser, booking.ID, models.BookingCompleted)
	require.NoError(t, err)

	// Two requests both pass the request-time check against the 800 balance.
	first, err := RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("600"))
	require.NoError(t, err)
	second, err := RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("600"))
	require.NoError(t, err)

	_, err = ApproveWithdrawal(db, first.ID)
	require.NoError(t, err)

	// Only 200 left; the second approval must fail.
	_, err = ApproveWithdrawal(db, second.ID)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	var reloaded models.WithdrawalRequest
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.Equal(t, models.WithdrawalPending, reloaded.Status)
}

func TestRejectWithdrawalLeavesBalance(t *testing.T) {
	db := newTestDB(t)
	customer := createCustomer(t, db)
	panditUser, pandit := createPandit(t, db, "1000")

	booking := createBooking(t, db, customer, pandit)
	_, err := TransitionBooking(db, panditUser, booking.ID, models.BookingAccepted)
	require.NoError(t, err)
	_, err = TransitionBooking(db, panditUser, booking.ID, models.BookingCompleted)
	require.NoError(t, err)

	request, err := RequestWithdrawal(db, pandit.ID, decimal.RequireFromString("400"))
	require.NoError(t, err)

	rejected, err := RejectWithdrawal(db, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, rejected.Status)

	wallet, err := GetWallet(db, pandit.ID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.RequireFromString("800")))
	assert.True(t, wallet.TotalWithdrawn.Equal(decimal.Zero))
}
