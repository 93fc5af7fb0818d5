package utils

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMoney renders an amount with the currency symbol the locale uses.
// Unknown currency codes fall back to "12.50 CODE".
func FormatMoney(amount float64, code, locale string) string {
	amount = math.Round(amount*100) / 100

	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
