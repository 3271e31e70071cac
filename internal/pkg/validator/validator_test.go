package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type topUpForm struct {
	Provider string `json:"provider" validate:"required,provider"`
	Credits  int64  `json:"credits" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,currency"`
}

func TestValidateAcceptsKnownProviders(t *testing.T) {
	assert.Nil(t, Validate(topUpForm{Provider: "stripe", Credits: 50}))
	assert.Nil(t, Validate(topUpForm{Provider: "bkash", Credits: 1, Currency: "BDT"}))
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	errs := Validate(topUpForm{Provider: "paypal", Credits: 50})
	assert.Contains(t, errs, "provider")
}

func TestValidateRejectsUnknownCurrency(t *testing.T) {
	errs := Validate(topUpForm{Provider: "stripe", Credits: 50, Currency: "EUR"})
	assert.Contains(t, errs, "currency")
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	errs := Validate(topUpForm{Provider: "stripe"})
	assert.Contains(t, errs, "credits")
	assert.NotContains(t, errs, "Credits")
}

func TestValidateRequiredAndRange(t *testing.T) {
	errs := Validate(topUpForm{})
	assert.Contains(t, errs, "provider")
	assert.Contains(t, errs, "credits")
}
