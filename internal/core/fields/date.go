package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical output format of ParseDate.
const DateLayout = "2006-01-02"

var (
	reISODate   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	reUSDate    = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4}|\d{2})$`)
	reMonthDY   = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	reDMonthY   = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
	reDateSpace = regexp.MustCompile(`\s+`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// fallbackLayouts are tried last, through time.Parse, which rejects
// out-of-range days on its own.
var fallbackLayouts = []string{
	"2006/1/2",
	"2006.1.2",
	"20060102",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan-2-2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"Mon, 2 Jan 2006",
	time.RFC3339,
	time.RFC1123,
}

// ParseDate normalizes a date written as ISO (2024-01-31), US numeric
// (1/31/2024, 1/31/24), "January 31, 2024" or "31 January 2024" into
// YYYY-MM-DD. Two-digit years below 50 map to 20xx, the rest to 19xx.
// Dates that would roll over (Feb 30) are rejected.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(reDateSpace.ReplaceAllString(s, " "))
	if s == "" {
		return "", false
	}

	if m := reISODate.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reUSDate.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year = pivotYear(year)
		}
		return buildDate(year, atoi(m[1]), atoi(m[2]))
	}
	if m := reMonthDY.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			return buildDate(atoi(m[3]), int(month), atoi(m[2]))
		}
	}
	if m := reDMonthY.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			return buildDate(atoi(m[3]), int(month), atoi(m[1]))
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

func pivotYear(yy int) int {
	if yy < 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

// buildDate reconstructs the date and rejects components time.Date had to normalize.
func buildDate(year, month, day int) (string, bool) {
	if year < 1000 || month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
