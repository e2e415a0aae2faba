package constants

import (
	"strings"
)

// DocumentType selects the field schema, prompt and weight table for a document.
type DocumentType string

const (
	W2            DocumentType = "w2"
	Paystub       DocumentType = "paystub"
	BankStatement DocumentType = "bank_statement"
	TaxReturn     DocumentType = "tax_return"
	ID            DocumentType = "id"
	Other         DocumentType = "other"
)

var allDocumentTypes = []DocumentType{
	W2,
	Paystub,
	BankStatement,
	TaxReturn,
	ID,
	Other,
}

// AllDocumentTypes returns the closed set of supported document types.
func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// Valid reports whether d is one of the supported document types.
func (d DocumentType) Valid() bool {
	for _, dt := range allDocumentTypes {
		if d == dt {
			return true
		}
	}
	return false
}

// ParseDocumentType maps a free-form label (model output, CLI flag) onto the
// supported set. Unknown labels return Other, false.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	normalized = strings.NewReplacer("-", "_", " ", "_", "'", "").Replace(normalized)

	synonyms := map[string]DocumentType{
		"w_2":                W2,
		"w2_form":            W2,
		"form_w2":            W2,
		"form_w_2":           W2,
		"wage_statement":     W2,
		"pay_stub":           Paystub,
		"paystub":            Paystub,
		"pay_slip":           Paystub,
		"payslip":            Paystub,
		"earnings_statement": Paystub,
		"bank":               BankStatement,
		"bankstatement":      BankStatement,
		"account_statement":  BankStatement,
		"tax":                TaxReturn,
		"taxreturn":          TaxReturn,
		"1040":               TaxReturn,
		"form_1040":          TaxReturn,
		"drivers_license":    ID,
		"driver_license":     ID,
		"license":            ID,
		"passport":           ID,
		"state_id":           ID,
		"government_id":      ID,
		"identification":     ID,
		"generic":            Other,
		"unknown":            Other,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return Other, false
}
