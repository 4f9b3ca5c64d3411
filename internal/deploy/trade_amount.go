package deploy

import (
	"math"

	"github.com/shopspring/decimal"
)

// maxAmountPlaces caps trade amount precision at what exchanges accept.
const maxAmountPlaces = 8

// TradeAmount converts a target USDT notional into a base-currency
// amount at the given price, rounded to smart precision: at least four
// significant digits, never rounded down to zero, at most eight
// decimal places.
func TradeAmount(targetUSDT, price float64) float64 {
	if price <= 0 {
		return targetUSDT
	}

	amount := decimal.NewFromFloat(targetUSDT).
		DivRound(decimal.NewFromFloat(price), maxAmountPlaces+4)

	rounded := smartRound(amount)
	f, _ := rounded.Float64()
	return f
}

// smartRound picks decimal places based on magnitude so small amounts
// (expensive base assets) keep their significant digits.
func smartRound(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	places := int32(2)
	if f > 0 && f < 1 {
		places = int32(math.Ceil(-math.Log10(f))) + 3
	}
	if places > maxAmountPlaces {
		places = maxAmountPlaces
	}
	return d.Round(places)
}
