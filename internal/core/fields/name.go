package fields

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name is a personal name split into its parts.
type Name struct {
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Full joins the non-empty parts in reading order.
func (n Name) Full() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{n.First, n.Middle, n.Last, n.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

var nameSuffixes = map[string]string{
	"jr":  "Jr.",
	"sr":  "Sr.",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
	"v":   "V",
	"esq": "Esq.",
	"phd": "PhD",
	"md":  "MD",
}

// ParseName splits "John Q Smith Jr." or the inverted "SMITH, JOHN Q" form.
// Suffix tokens are removed before the last name is chosen, and every part
// is title-cased (McDonald, O'Brien, Mary-Jane).
func ParseName(s string) (Name, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Name{}, false
	}

	var suffix string
	takeSuffix := func(tokens []string) []string {
		for len(tokens) > 0 {
			canon, ok := suffixOf(tokens[len(tokens)-1])
			if !ok {
				break
			}
			// a lone trailing "V" is more likely a middle initial
			if canon == "V" && len(tokens) < 3 {
				break
			}
			if suffix == "" {
				suffix = canon
			}
			tokens = tokens[:len(tokens)-1]
		}
		return tokens
	}

	var first, rest []string
	before, after, inverted := strings.Cut(s, ",")
	if inverted {
		afterTokens := tokenize(after)
		if len(afterTokens) > 0 && allSuffixes(afterTokens) {
			// "John Doe, Jr." is not inverted
			inverted = false
			s = before + " " + after
		}
	}

	var n Name
	if inverted {
		lastTokens := takeSuffix(tokenize(before))
		rest = takeSuffix(tokenize(after))
		if len(lastTokens) == 0 && len(rest) == 0 {
			return Name{}, false
		}
		n.Last = titleJoin(lastTokens)
		if len(rest) > 0 {
			n.First = titleToken(rest[0])
			n.Middle = titleJoin(rest[1:])
		}
	} else {
		first = takeSuffix(tokenize(s))
		switch len(first) {
		case 0:
			return Name{}, false
		case 1:
			n.First = titleToken(first[0])
		default:
			n.First = titleToken(first[0])
			n.Last = titleToken(first[len(first)-1])
			n.Middle = titleJoin(first[1 : len(first)-1])
		}
	}
	n.Suffix = suffix
	return n, true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
}

func suffixOf(token string) (string, bool) {
	key := strings.ToLower(strings.Trim(token, ".,"))
	key = strings.ReplaceAll(key, ".", "")
	canon, ok := nameSuffixes[key]
	return canon, ok
}

func allSuffixes(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := suffixOf(t); !ok {
			return false
		}
	}
	return true
}

func titleJoin(tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, titleToken(t))
	}
	return strings.Join(out, " ")
}

// titleToken title-cases one name token, treating hyphens and apostrophes as
// part boundaries and keeping the capital after a "Mc" prefix.
func titleToken(token string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(token); i++ {
		if token[i] == '-' || token[i] == '\'' {
			b.WriteString(titlePart(token[start:i]))
			b.WriteByte(token[i])
			start = i + 1
		}
	}
	b.WriteString(titlePart(token[start:]))
	return b.String()
}

func titlePart(part string) string {
	if part == "" {
		return part
	}
	lower := strings.ToLower(part)
	if strings.HasPrefix(lower, "mc") && len(lower) > 2 {
		return "Mc" + cases.Title(language.English).String(lower[2:])
	}
	// Casers carry state, so one is built per call.
	return cases.Title(language.English).String(lower)
}
