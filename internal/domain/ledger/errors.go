package ledger

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInsufficientBalance is returned when a hold exceeds the spendable balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientHeld is returned when a release or spend exceeds the held balance
	ErrInsufficientHeld = errors.New("insufficient held balance")

	// ErrAccountNotFound is returned when the account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	ErrInternal = errors.New("ledger internal error")
)
