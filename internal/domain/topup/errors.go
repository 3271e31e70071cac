package topup

import "errors"

var (
	// ErrNotFound is returned when the intent doesn't exist
	ErrNotFound = errors.New("top-up intent not found")

	// ErrForbidden is returned when the intent belongs to another user
	ErrForbidden = errors.New("top-up intent belongs to another user")

	// ErrInvalidCredits is returned when the credit amount is out of range
	ErrInvalidCredits = errors.New("credit amount out of range")

	// ErrAlreadyFailed is returned when confirming an intent that already failed
	ErrAlreadyFailed = errors.New("top-up intent already failed")

	// ErrVerificationFailed is returned when a manual payment reference can't be verified
	ErrVerificationFailed = errors.New("payment reference verification failed")
)
