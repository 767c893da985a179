// Package format renders numbers, money and dates for console pages.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every money amount
const CurrencySymbol = "₦"

// maxFractionDigits matches what the storefront shows for prices
const maxFractionDigits = 3

// Count formats an integer with comma separators
func Count(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + group(s[1:])
	}
	return group(s)
}

// Number formats n with comma separators and at most three fraction digits,
// trailing zeros trimmed.
func Number(n float64) string {
	return Decimal(decimal.NewFromFloat(n))
}

// Decimal is Number for a decimal value
func Decimal(d decimal.Decimal) string {
	s := d.Round(maxFractionDigits).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + group(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// Money formats n as a naira amount ("₦12,500.5")
func Money(n float64) string {
	return CurrencySymbol + Number(n)
}

// Date formats t as a short calendar date. The zero time renders as "N/A".
func Date(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("1/2/2006")
}

// group inserts a comma every three digits from the right
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	remainder := len(digits) % 3
	if remainder > 0 {
		b.WriteString(digits[:remainder])
		b.WriteString(",")
	}
	for i := remainder; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(",")
		}
	}
	return b.String()
}
