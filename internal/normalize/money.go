// Package normalize cleans up the raw values freight reports contain:
// currency amounts in mixed locale formats, waybill and container
// numbers with stray separators, and headers with accents and uneven
// spacing.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freight-audit/backend/internal/table"
)

var nonMoneyChars = regexp.MustCompile(`[^\d,.\-]`)

// Money parses amounts like "₡1,234.50", "1.234,56", "$ 1200" or
// "(1,234.50)" into a decimal. Unparseable input yields zero — the
// reports routinely mix blanks and junk into amount columns.
func Money(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	// trailing minus, e.g. "123.45-"
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	s = nonMoneyChars.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return decimal.Zero
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// MoneyValue parses a typed cell. Numbers pass through, text goes
// through Money, anything else is zero.
func MoneyValue(v table.Value) decimal.Decimal {
	switch v.Kind {
	case table.Number:
		return decimal.NewFromFloat(v.Num)
	case table.Text:
		return Money(v.Str)
	default:
		return decimal.Zero
	}
}

// normalizeSeparators resolves thousands vs decimal separators: the
// rightmost of "," and "." is taken as the decimal point when both
// appear; a lone comma is a decimal point; repeated dots are grouping.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.ReplaceAll(s, ",", ".")
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}
