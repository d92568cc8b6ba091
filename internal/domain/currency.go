package domain

import (
	"fmt"
	"strings"
)

// Currency - library billing currency.
type Currency string

// Supported currencies.
const (
	UAH Currency = "UAH"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

var currencies = []Currency{UAH, USD, EUR}

// Currencies returns the supported currencies in display order.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// ParseCurrency accepts only the supported currency codes.
func ParseCurrency(value string) (Currency, error) {
	code := Currency(strings.TrimSpace(value))
	for _, c := range currencies {
		if c == code {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q", value)
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	_, err := ParseCurrency(string(c))
	return err == nil
}
