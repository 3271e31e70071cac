package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
	}{
		{"BDT uses cents", 2500.00, "BDT", 250000},
		{"USD uses cents", 12.34, "USD", 1234},
		{"fractional cents rounded", 10.005, "USD", 1001},
		{"JPY is zero-decimal", 1200, "JPY", 1200},
		{"KRW is zero-decimal", 5000.4, "KRW", 5000},
		{"zero amount", 0, "BDT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinorUnits(tt.amount, tt.currency))
		})
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 2500.00, RoundMoney(50*50.0))
	assert.Equal(t, 33.33, RoundMoney(100.0/3))
	assert.Equal(t, 0.1, RoundMoney(0.1+1e-9))
	assert.Equal(t, 12.35, RoundMoney(12.345))
}
