package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatPrice renders the whole rupiah part of a price with Indonesian digit
// grouping, ex: 1631000 -> "Rp 1.631.000".
func FormatPrice(price decimal.Decimal) string {
	return "Rp " + idPrinter.Sprintf("%d", price.IntPart())
}

// ParsePriceInput turns what an admin typed into the price field into the
// numeric price and its display string. The price keeps the exact value typed,
// ex: "1631000.75", while the display string groups the rupiah part only.
// Empty or non-numeric input yields a zero price and an empty display string.
func ParsePriceInput(input string) (decimal.Decimal, string) {
	price, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, ""
	}
	return price, FormatPrice(price)
}
