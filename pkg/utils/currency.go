// Package utils provides common utility functions for DDMCalc.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency formats an amount with the given symbol, thousands
// grouping, and two decimals: 1234567.891 → "$1,234,567.89". The sign
// goes outside the symbol: -50 → "-$50.00".
func FormatCurrency(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}

	negative := amount < 0
	// Round before splitting so 49.999 groups as 50.00, not 49 + 1.00.
	cents := math.Round(math.Abs(amount) * 100)
	intPart := int64(cents / 100)
	formatted := fmt.Sprintf("%s.%02d", groupThousands(intPart), int64(cents)%100)

	if negative {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// FormatCurrencyCompact formats an amount in compact notation:
// 1927345 → "$1.93M", 1234 → "$1.23K".
func FormatCurrencyCompact(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}

	prefix := symbol
	if amount < 0 {
		prefix = "-" + symbol
	}
	amount = math.Abs(amount)

	switch {
	case amount >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, trimZeros(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, trimZeros(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, trimZeros(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands formats a non-negative integer with comma grouping.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// trimZeros formats with up to 2 decimal places, removing trailing zeros.
func trimZeros(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
