package fields

import (
	"regexp"
	"strings"
)

// MaskPrefix replaces every digit but the last four of a sensitive number.
const MaskPrefix = "****"

// LastFour returns the last four digits of s, ignoring every non-digit.
func LastFour(s string) (string, bool) {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) < 4 {
		return "", false
	}
	return string(digits[len(digits)-4:]), true
}

// MaskLastFour turns an SSN, license or account number into "****1234".
// Inputs with fewer than four digits are rejected.
func MaskLastFour(s string) (string, bool) {
	last4, ok := LastFour(s)
	if !ok {
		return "", false
	}
	return MaskPrefix + last4, true
}

// IsMasked reports whether s already carries no more than four digits.
func IsMasked(s string) bool {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n <= 4 && strings.TrimSpace(s) != ""
}

var (
	// label, optional "No."/"Number"/"#", then a value that may carry a
	// short letter prefix and dash or space grouping.
	reLabeledID = regexp.MustCompile(`(?i)(\b(?:ssn|licen[cs]e|lic|dl|id|passport|account|acct|card)\b\.?(?:\s*(?:no\.?|num(?:ber)?|#))?\s*[:#]?\s*)([a-z]{0,3}\d[\d\- ]*\d)`)
	reSSNLike   = regexp.MustCompile(`\b\d{3}[- ]\d{2}[- ]\d{4}\b`)
	reGrouped   = regexp.MustCompile(`\b\d{4}(?:[- ]\d{4}){2,3}\b`)
	reLongDigit = regexp.MustCompile(`\b\d{9,}\b`)
)

// RedactNumbers masks identifiers in free text down to their last four
// digits: values following an ID, license, account or card label,
// SSN-shaped tokens, card-style digit groups and digit runs of nine or
// more.
func RedactNumbers(s string) string {
	mask := func(m string) string {
		if out, ok := MaskLastFour(m); ok {
			return out
		}
		return m
	}
	s = reLabeledID.ReplaceAllStringFunc(s, func(m string) string {
		sub := reLabeledID.FindStringSubmatch(m)
		return sub[1] + mask(sub[2])
	})
	s = reSSNLike.ReplaceAllStringFunc(s, mask)
	s = reGrouped.ReplaceAllStringFunc(s, mask)
	return reLongDigit.ReplaceAllStringFunc(s, mask)
}
