package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney keeps consistent decimal formatting for price fields.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseMoney parses "12.5" or "12,50" into a decimal. Empty input is an error.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return decimal.NewFromString(s)
}
