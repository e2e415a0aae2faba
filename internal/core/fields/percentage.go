package fields

import (
	"math"
	"strconv"
	"strings"
)

// ParsePercentage reads "7.65%", "7.65 percent" or a bare number.
//
// A bare value strictly between 0 and 1 is taken as a fraction and scaled by
// 100, so "0.0765" yields 7.65. This also turns a genuine "0.5" (meaning half a
// percent) into 50; callers with such inputs must pass an explicit "%".
func ParsePercentage(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	explicit := false
	for _, marker := range []string{"%", "percent", "pct"} {
		if strings.Contains(s, marker) {
			explicit = true
			s = strings.ReplaceAll(s, marker, "")
		}
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if !explicit && v > 0 && v < 1 {
		v *= 100
	}
	return math.Round(v*1e6) / 1e6, true
}
