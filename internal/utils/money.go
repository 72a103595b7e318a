package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + formatThousand(intPart) + "," + frac
}

func formatThousand(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	for i, c := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
