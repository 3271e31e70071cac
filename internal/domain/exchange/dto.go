package exchange

import "github.com/google/uuid"

// CreateRequest is the payload for requesting a new exchange.
// Amount and Discount describe an optional cash price next to the credit
// cost; they are display-only and settle outside the platform.
type CreateRequest struct {
	ProviderID      uuid.UUID `json:"provider_id" validate:"required"`
	SkillName       string    `json:"skill_name" validate:"required,min=2,max=100"`
	Description     string    `json:"description" validate:"max=2000"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0,lte=480"`
	Credits         int64     `json:"credits" validate:"required,gt=0"`
	Amount          float64   `json:"amount" validate:"omitempty,gt=0"`
	Discount        float64   `json:"discount" validate:"omitempty,gte=0"`
	Currency        string    `json:"currency" validate:"omitempty,currency"`
}

// TransitionRequest carries an optional note for a status change
type TransitionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// ListFilter narrows the exchange listing
type ListFilter struct {
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	Role   string `json:"role" validate:"omitempty,oneof=provider receiver"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
