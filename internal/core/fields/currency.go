// Package fields normalizes raw strings lifted from documents into typed
// values. Every parser is total: unparseable input yields ok=false, never an
// error or a panic.
package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrencyCode = regexp.MustCompile(`(?i)\b(usd|us|cad|eur|gbp|aud)\b`)
	reCurrencySym  = regexp.MustCompile(`[$£€¥]`)
	reAmount       = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)
)

// ParseCurrency converts "$1,234.56", "(1,234.56)", "-$1,234.56", "USD 1234"
// into a signed amount rounded to cents. Any residue that is not part of a
// number after symbols, codes and separators are removed makes it fail.
func ParseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = reCurrencyCode.ReplaceAllString(s, "")
	s = reCurrencySym.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "")

	if strings.HasPrefix(s, "-") {
		if negative {
			return 0, false
		}
		negative = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", "")

	if !reAmount.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	v = math.Round(v*100) / 100
	if negative {
		v = -v
	}
	return v, true
}
