package fields

import (
	"regexp"
	"sort"
	"strings"
)

// Address is a US postal address split into its parts. State is always the
// two-letter code.
type Address struct {
	Street string `json:"street,omitempty"`
	Unit   string `json:"unit,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// String renders "Street, Unit, City, ST 12345" skipping empty parts.
func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Street, a.Unit, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	tail := strings.TrimSpace(a.State + " " + a.Zip)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

var (
	reZip       = regexp.MustCompile(`(?:^|[\s,]+)(\d{5}(?:-\d{4})?)$`)
	reStateCode = regexp.MustCompile(`(?:^|[\s,]+)([A-Za-z]{2})\.?$`)
	reUnit      = regexp.MustCompile(`(?i)^(.*?)[\s,]+((?:apt|apartment|unit|suite|ste|bldg|building)\.?\s*#?\s*[a-z0-9-]+|#\s*[a-z0-9-]+)$`)
	reUnitOnly  = regexp.MustCompile(`(?i)^(?:apt|apartment|unit|suite|ste|bldg|building|#)\b`)
)

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming", "PR": "Puerto Rico",
}

var (
	stateCodes = map[string]string{}
	// longest first so "West Virginia" wins over "Virginia"
	stateNamesByLength []string
)

func init() {
	for code, name := range stateNames {
		stateCodes[strings.ToLower(name)] = code
		stateNamesByLength = append(stateNamesByLength, name)
	}
	sort.Slice(stateNamesByLength, func(i, j int) bool {
		if len(stateNamesByLength[i]) != len(stateNamesByLength[j]) {
			return len(stateNamesByLength[i]) > len(stateNamesByLength[j])
		}
		return stateNamesByLength[i] < stateNamesByLength[j]
	})
}

// StateCode returns the two-letter code for a full state name or a code.
func StateCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, ok := stateNames[strings.ToUpper(s)]; ok {
		return strings.ToUpper(s), true
	}
	code, ok := stateCodes[strings.ToLower(s)]
	return code, ok
}

// ParseAddress splits "123 Main St Apt 4, Springfield, IL 62704" into its
// parts: trailing ZIP, then trailing state (code or full name), then the
// comma-separated street / unit / city remainder.
func ParseAddress(s string) (Address, bool) {
	s = strings.TrimSpace(strings.Join(strings.Fields(s), " "))
	s = strings.TrimRight(s, ",. ")
	if s == "" {
		return Address{}, false
	}

	var a Address
	if m := reZip.FindStringSubmatchIndex(s); m != nil {
		a.Zip = s[m[2]:m[3]]
		s = strings.TrimRight(s[:m[0]], ", ")
	}
	s = stripState(s, &a)

	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
	case 1:
		a.Street = parts[0]
	case 2:
		a.Street = parts[0]
		if reUnitOnly.MatchString(parts[1]) {
			a.Unit = parts[1]
		} else {
			a.City = parts[1]
		}
	default:
		a.Street = parts[0]
		a.Unit = strings.Join(parts[1:len(parts)-1], ", ")
		a.City = parts[len(parts)-1]
	}

	if a.Unit == "" && a.Street != "" {
		if m := reUnit.FindStringSubmatch(a.Street); m != nil && strings.TrimSpace(m[1]) != "" {
			a.Street = strings.TrimSpace(m[1])
			a.Unit = strings.TrimSpace(m[2])
		}
	}

	if a == (Address{}) {
		return Address{}, false
	}
	return a, true
}

func stripState(s string, a *Address) string {
	if m := reStateCode.FindStringSubmatchIndex(s); m != nil {
		code := strings.ToUpper(s[m[2]:m[3]])
		// without a comma or ZIP, "Ct" or "Pa" may just end the street
		sep := s[m[0]:m[2]]
		if _, ok := stateNames[code]; ok && (strings.Contains(sep, ",") || a.Zip != "") {
			a.State = code
			return strings.TrimRight(s[:m[0]], ", ")
		}
	}
	lower := strings.ToLower(s)
	for _, name := range stateNamesByLength {
		ln := strings.ToLower(name)
		if !strings.HasSuffix(lower, ln) {
			continue
		}
		cut := len(s) - len(ln)
		if cut > 0 && s[cut-1] != ' ' && s[cut-1] != ',' {
			continue
		}
		a.State = stateCodes[ln]
		return strings.TrimRight(s[:cut], ", ")
	}
	return s
}
