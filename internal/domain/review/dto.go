package review

import "github.com/google/uuid"

// CreateRequest is the payload for reviewing a completed exchange
type CreateRequest struct {
	ExchangeID uuid.UUID `json:"exchange_id" validate:"required"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `json:"comment" validate:"max=1000"`
}

// UpdateRequest is the payload for editing an existing review
type UpdateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}
