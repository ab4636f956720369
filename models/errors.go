package models

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
	ErrPermission = errors.New("permission denied")
)

var (
	ErrSlotConflict      = errors.New("time slot already booked")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

var (
	ErrAlreadyPaid     = errors.New("booking already paid")
	ErrAlreadyRefunded = errors.New("payment already refunded")
	ErrGateway         = errors.New("payment gateway error")
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInsufficientStock = errors.New("insufficient stock")
)
