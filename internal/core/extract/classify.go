package extract

import (
	"regexp"

	"github.com/joseph-ayodele/docextract/constants"
)

var typeMarkers = []struct {
	Type    constants.DocumentType
	Markers []*regexp.Regexp
}{
	{constants.W2, re(
		`(?i)\bW-?2\b`,
		`(?i)wage\s*and\s*tax\s*statement`,
		`(?i)wages,?\s*tips,?\s*(?:and\s*)?other\s*comp`,
		`(?i)employer\s*identification\s*number`,
	)},
	{constants.Paystub, re(
		`(?i)pay\s*stub|earnings\s*statement|pay\s*slip`,
		`(?i)\bnet\s*pay\b`,
		`(?i)\bgross\s*pay\b`,
		`(?i)pay\s*period`,
		`(?i)\bytd\b|year[\s-]*to[\s-]*date`,
	)},
	{constants.BankStatement, re(
		`(?i)statement\s*period`,
		`(?i)(?:beginning|opening)\s*balance`,
		`(?i)(?:ending|closing)\s*balance`,
		`(?i)account\s*summary`,
		`(?i)deposits\s*(?:and|&)\s*(?:other\s*)?credits`,
	)},
	{constants.TaxReturn, re(
		`(?i)form\s*1040`,
		`(?i)individual\s*income\s*tax\s*return`,
		`(?i)adjusted\s*gross\s*income`,
		`(?i)filing\s*status`,
		`(?i)taxable\s*income`,
	)},
	{constants.ID, re(
		`(?i)driver'?s?\s*licen[sc]e`,
		`(?i)date\s*of\s*birth|\bDOB\b`,
		`(?i)\bpassport\b`,
		`(?i)\bexp(?:ires|iration)?\b`,
		`(?i)identification\s*card`,
	)},
}

// minMarkers is how many markers a type needs before text is classified as it.
const minMarkers = 2

// ClassifyText guesses the document type from recognized text. Ties go to
// the earlier type in the table; too little evidence yields other.
func ClassifyText(text string) constants.DocumentType {
	best, bestScore := constants.Other, 0
	for _, tm := range typeMarkers {
		score := 0
		for _, m := range tm.Markers {
			if m.MatchString(text) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = tm.Type, score
		}
	}
	if bestScore < minMarkers {
		return constants.Other
	}
	return best
}
