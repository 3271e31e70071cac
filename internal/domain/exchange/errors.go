package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the exchange doesn't exist
	ErrNotFound = errors.New("exchange not found")

	// ErrInvalidTransition is returned for a status move the lifecycle doesn't allow
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden is returned when the actor isn't allowed to perform the action
	ErrForbidden = errors.New("not allowed to perform this action")

	// ErrSelfExchange is returned when provider and receiver are the same user
	ErrSelfExchange = errors.New("cannot request an exchange with yourself")

	// ErrProviderUnavailable is returned when the provider is not accepting exchanges
	ErrProviderUnavailable = errors.New("provider is not available")
)

// InsufficientCreditsError is returned when the receiver can't cover the
// exchange price. Missing and AmountFiat tell the client how big a top-up
// would make the request succeed.
type InsufficientCreditsError struct {
	Required   int64   `json:"required"`
	Available  int64   `json:"available"`
	Missing    int64   `json:"missing"`
	AmountFiat float64 `json:"amount_fiat"`
	Currency   string  `json:"currency"`
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}
