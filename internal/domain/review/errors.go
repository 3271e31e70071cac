package review

import "errors"

var (
	// ErrNotFound is returned when the review doesn't exist
	ErrNotFound = errors.New("review not found")

	// ErrForbidden is returned when the actor may not review this exchange
	ErrForbidden = errors.New("not allowed to review this exchange")

	// ErrNotCompleted is returned when reviewing an exchange that hasn't completed
	ErrNotCompleted = errors.New("exchange is not completed")

	// ErrAlreadyReviewed is returned on a second review of the same exchange
	ErrAlreadyReviewed = errors.New("exchange already reviewed")
)
