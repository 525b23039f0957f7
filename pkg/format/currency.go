// Package format renders money and numbers for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/salemate/franchise-performance/pkg/constants"
)

// Currency returns an amount with the default currency code and thousands
// separators (e.g., "-EGP 1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-" + constants.DefaultCurrency + " " + formatted
	}
	return constants.DefaultCurrency + " " + formatted
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
