// Package currency formats monetary values for user-facing text.
// This is part of the platform layer and contains no business logic.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRLCents renders a cent amount as a Brazilian Real string, e.g.
// 15050 -> "R$ 150,50". Used for sale comments and email bodies.
func FormatBRLCents(cents int64) string {
	return printer.Sprintf("R$ %.2f", float64(cents)/100)
}
