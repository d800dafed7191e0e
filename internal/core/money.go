package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a money amount typed by the operator, with an optional
// "R$" prefix. Only digits and the separators are accepted, so exponent forms
// such as "1e3" are rejected. When a comma is present it is the decimal
// separator and any dots before it are thousands grouping ("1.234,56");
// without a comma a single dot is the decimal point ("12.50"). Empty,
// malformed and negative values are rejected with ErrInvalidAmount.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	if strings.IndexFunc(s, notAmountRune) >= 0 {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}
	if whole, frac, ok := strings.Cut(s, ","); ok {
		if strings.ContainsAny(frac, ".,") {
			return decimal.Zero, fmt.Errorf("%w: %q has a separator after the decimal comma", ErrInvalidAmount, text)
		}
		s = strings.ReplaceAll(whole, ".", "") + "." + frac
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, text)
	}
	return amount.Round(2), nil
}

func notAmountRune(r rune) bool {
	return (r < '0' || r > '9') && r != '.' && r != ',' && r != '-'
}

// FormatBRL renders an amount the way it appears in customer messages: "R$ 45,50".
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + formatDecimalComma(amount)
}

func formatDecimalComma(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", ",", 1)
}
