// Package normalize provides locale-tolerant amount and date parsing shared
// by all extractors. Both parsers are total: ParseAmount returns zero and
// ParseDate returns ok=false on garbage, never an error. Callers filtering
// on positive amounts and present dates get drop-on-failure for free; this
// is a documented contract, not an accident.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency tokens stripped before numeric parsing. NGN/N-with-strike cover
// naira exports; the rest show up in multi-currency wallet statements.
var currencyTokens = []string{
	"₦", "NGN", "N ", "£", "GBP", "$", "USD", "€", "EUR",
	"£", "€", "₦",
}

// ParseAmount extracts a non-negative decimal magnitude from a raw amount
// string. Currency symbols, thousands separators, and whitespace are
// stripped; when multiple decimal points survive (thousands-dot locales),
// only the last one is treated as the decimal separator, and a short
// trailing comma group is read as a comma-decimal. Unparseable input
// yields zero. Sign and direction are never taken from the numeric value;
// direction is resolved separately from context (see Direction).
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	upper := strings.ToUpper(s)
	for _, token := range currencyTokens {
		upper = strings.ReplaceAll(upper, strings.ToUpper(token), "")
	}

	// Accounting negatives: (1,234.56). The parentheses carry direction,
	// which is not this function's job; strip them like any other noise.
	upper = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == ',':
			return r
		default:
			return -1
		}
	}, upper)

	// Comma-decimal locales: when the final comma sits after the final dot
	// and carries at most two trailing digits it is the decimal separator
	// ("1.234.567,00"). A three-digit tail is a thousands group ("15,000").
	if i := strings.LastIndex(upper, ","); i >= 0 {
		if i > strings.LastIndex(upper, ".") && len(upper)-i-1 <= 2 {
			upper = upper[:i] + "." + upper[i+1:]
		}
	}
	upper = strings.ReplaceAll(upper, ",", "")

	if upper == "" || upper == "." {
		return decimal.Zero
	}

	// Keep only the final dot as the decimal separator.
	if n := strings.Count(upper, "."); n > 1 {
		last := strings.LastIndex(upper, ".")
		upper = strings.ReplaceAll(upper[:last], ".", "") + upper[last:]
	}

	value, err := decimal.NewFromString(upper)
	if err != nil {
		return decimal.Zero
	}

	return value.Abs()
}

// FormatAmount renders an amount the way ParseAmount expects to read it
// back, at full precision. Round-tripping through FormatAmount is
// idempotent; display rounding is the reporter's concern.
func FormatAmount(amount decimal.Decimal) string {
	return amount.String()
}

// HasNegativeMarker reports whether the raw amount string carries an
// explicit negative marker: a leading or trailing minus, or accounting
// parentheses. Used for direction resolution, never for magnitude.
func HasNegativeMarker(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}

	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return true
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return true
	}

	// Minus after a stripped currency symbol: "₦-500.00".
	for _, token := range currencyTokens {
		trimmed := strings.TrimPrefix(s, token)
		if trimmed != s && strings.HasPrefix(strings.TrimSpace(trimmed), "-") {
			return true
		}
	}

	return false
}

// HasPositiveMarker reports whether the raw amount string carries an
// explicit leading plus.
func HasPositiveMarker(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "+")
}
