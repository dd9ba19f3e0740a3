// Package currency converts base-currency amounts for display.
// Stored prices, carts and order totals always stay in the base currency.
package currency

import (
	"fmt"
	"sort"
)

// Base is the reference currency all prices are recorded in
const Base = "INR"

// Rate describes one display currency
type Rate struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"` // units of this currency per unit of Base
}

var rates = map[string]Rate{
	"INR": {Code: "INR", Symbol: "₹", Rate: 1},
	"USD": {Code: "USD", Symbol: "$", Rate: 0.012},
	"EUR": {Code: "EUR", Symbol: "€", Rate: 0.011},
}

// Supported reports whether code has a rate.
func Supported(code string) bool {
	_, ok := rates[code]
	return ok
}

// Codes lists supported currency codes, base first.
func Codes() []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		if code != Base {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return append([]string{Base}, codes...)
}

// Lookup returns the rate for code, falling back to the base currency.
func Lookup(code string) Rate {
	if r, ok := rates[code]; ok {
		return r
	}
	return rates[Base]
}

// Convert returns amount expressed in code.
func Convert(amount float64, code string) float64 {
	return amount * Lookup(code).Rate
}

// Format renders a base-currency amount in code, e.g. "$8.99".
func Format(amount float64, code string) string {
	r := Lookup(code)
	return fmt.Sprintf("%s%.2f", r.Symbol, amount*r.Rate)
}
