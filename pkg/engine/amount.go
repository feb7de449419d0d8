package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts European number formatting to machine form:
// thousands dots dropped, decimal comma to dot. The result is not
// guaranteed to parse.
func NormalizeAmount(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return s
}

// ParseAmount parses a European-formatted amount into an exact decimal.
// The second return reports whether the value parsed at all; callers treat
// a failed parse as "no numeric amount", never as an error.
func ParseAmount(s string) (decimal.Decimal, bool) {
	norm := NormalizeAmount(s)
	if norm == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
