package payment

import "math"

// zeroDecimalCurrencies are charged in whole units by the processor
// (Stripe's minor-unit factor is 1 for these instead of 100).
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true,
	"JPY": true, "KMF": true, "KRW": true, "MGA": true,
	"PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// MinorUnits converts a major-unit amount to the processor's minor-unit
// convention for the given currency.
func MinorUnits(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

// RoundMoney rounds a monetary amount to 2 decimal places for display
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
