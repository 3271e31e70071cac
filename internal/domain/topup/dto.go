package topup

// StartRequest is the payload for starting a top-up
type StartRequest struct {
	Provider string `json:"provider" validate:"required,provider"`
	Credits  int64  `json:"credits" validate:"required,gt=0"`
}

// ConfirmRequest carries the manual payment reference (bKash trx ID)
type ConfirmRequest struct {
	ExternalRef string `json:"external_ref" validate:"required,min=4,max=100"`
}
