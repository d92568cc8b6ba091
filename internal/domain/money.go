package domain

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatRate renders a rate for display in the given language.
//
// Rates with an unsupported currency are shown as plain numbers, and rates
// that do not parse are shown verbatim.
func FormatRate(tag language.Tag, rate Decimal, cur Currency) string {
	amount, err := rate.Float()
	if err != nil {
		return rate.String()
	}
	p := message.NewPrinter(tag)
	if !cur.Valid() {
		return p.Sprintf("%.2f", amount)
	}
	unit, err := currency.ParseISO(string(cur))
	if err != nil {
		return p.Sprintf("%.2f", amount)
	}
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}
