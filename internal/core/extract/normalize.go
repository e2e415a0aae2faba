package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/fields"
)

// Kind selects the parser a field value goes through.
type Kind int

const (
	KindText Kind = iota
	KindLower
	KindName
	KindAddress
	KindCurrency
	KindNumber
	KindPercent
	KindDate
	KindYear
	KindSensitive
	KindState
	KindEIN
	KindIDType
)

var fieldKinds = map[string]Kind{
	// names
	"employeeName": KindName, "accountHolderName": KindName, "taxpayerName": KindName,
	"spouseName": KindName, "fullName": KindName, "firstName": KindName,
	"lastName": KindName, "middleName": KindName,
	// addresses
	"employerAddress": KindAddress, "address": KindAddress,
	// amounts
	"wagesTipsCompensation": KindCurrency, "federalIncomeTaxWithheld": KindCurrency,
	"socialSecurityWages": KindCurrency, "socialSecurityTaxWithheld": KindCurrency,
	"medicareWages": KindCurrency, "medicareTaxWithheld": KindCurrency,
	"stateWages": KindCurrency, "stateIncomeTax": KindCurrency,
	"grossPay": KindCurrency, "netPay": KindCurrency, "ytdGrossPay": KindCurrency,
	"ytdNetPay": KindCurrency, "hourlyRate": KindCurrency, "federalTax": KindCurrency,
	"stateTax": KindCurrency, "socialSecurity": KindCurrency, "medicare": KindCurrency,
	"beginningBalance": KindCurrency, "endingBalance": KindCurrency,
	"totalDeposits": KindCurrency, "totalWithdrawals": KindCurrency,
	"averageDailyBalance": KindCurrency, "totalIncome": KindCurrency,
	"adjustedGrossIncome": KindCurrency, "taxableIncome": KindCurrency,
	"totalTax": KindCurrency, "refundAmount": KindCurrency, "amountOwed": KindCurrency,
	"wagesIncome": KindCurrency, "businessIncome": KindCurrency,
	"hoursWorked": KindNumber,
	// dates
	"payPeriodStart": KindDate, "payPeriodEnd": KindDate, "payDate": KindDate,
	"statementPeriodStart": KindDate, "statementPeriodEnd": KindDate,
	"dateOfBirth": KindDate, "issueDate": KindDate, "expirationDate": KindDate,
	"taxYear": KindYear,
	// PII
	"employeeSsn": KindSensitive, "taxpayerSsn": KindSensitive,
	"accountNumberLast4": KindSensitive, "idNumberLast4": KindSensitive,
	"accountType": KindLower, "filingStatus": KindLower,
	"issuingState": KindState,
	"employerEin":  KindEIN,
	"idType":       KindIDType,
}

var (
	reYear        = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	reSensitiveID = regexp.MustCompile(`(?i:ssn|social|account|acct|licen[cs]e|passport|driver|card|idn(?:o|um))|` +
		`^(?i:dl|id)(?:[A-Z0-9_\- ]|$)|[a-z0-9](?:DL|ID|Id)(?:[A-Z0-9_\- ]|$)|(?i:[_\- ](?:dl|id)(?:[_\- ]|$))`)
	reDigit  = regexp.MustCompile(`\d`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// kindOf returns the parser for a schema field, inferring one for
// free-form keys of the generic variant.
func kindOf(name string, v any) Kind {
	if k, ok := fieldKinds[name]; ok {
		return k
	}
	if reSensitiveID.MatchString(name) {
		// "cardholderName" matches too; a value without digits is not an identifier.
		if s, ok := v.(string); !ok || reDigit.MatchString(s) {
			return KindSensitive
		}
	}
	s, ok := v.(string)
	if !ok {
		return KindNumber
	}
	switch {
	case strings.Contains(s, "%") || strings.Contains(strings.ToLower(s), "percent"):
		return KindPercent
	case strings.ContainsAny(s, "$€£¥"):
		return KindCurrency
	}
	if _, ok := fields.ParseDate(s); ok {
		return KindDate
	}
	return KindText
}

// normalizeField runs a raw value through the parser of kind. Anything the
// parser rejects becomes an unset field.
func normalizeField(kind Kind, raw any, confidence float64) document.Field {
	s, isString := raw.(string)
	num, isNumber := raw.(float64)
	if isString {
		s = reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	}
	if isNumber && kind != KindSensitive {
		s = strconv.FormatFloat(num, 'f', -1, 64)
	}

	switch kind {
	case KindCurrency, KindNumber:
		if isNumber {
			return document.Number(math.Round(num*100)/100, confidence)
		}
		v, ok := fields.ParseCurrency(s)
		if !ok {
			return document.Empty()
		}
		return document.Number(v, confidence).WithRaw(s)
	case KindPercent:
		v, ok := fields.ParsePercentage(s)
		if !ok {
			return document.Empty()
		}
		return document.Number(v, confidence).WithRaw(s)
	case KindDate:
		if !isString {
			return document.Empty()
		}
		d, ok := fields.ParseDate(s)
		if !ok {
			return document.Empty()
		}
		return document.Text(d, confidence).WithRaw(s)
	case KindYear:
		if isNumber {
			if num != math.Trunc(num) || num < 1900 || num > 2100 {
				return document.Empty()
			}
			return document.Number(num, confidence)
		}
		m := reYear.FindStringSubmatch(s)
		if m == nil {
			return document.Empty()
		}
		y, _ := strconv.Atoi(m[1])
		return document.Number(float64(y), confidence)
	case KindSensitive:
		if isNumber {
			s = strconv.FormatFloat(num, 'f', 0, 64)
		}
		if fields.IsMasked(s) && strings.ContainsAny(s, "*Xx") {
			if last4, ok := fields.LastFour(s); ok {
				return document.Text(fields.MaskPrefix+last4, confidence).WithRaw(s)
			}
		}
		masked, ok := fields.MaskLastFour(s)
		if !ok {
			return document.Empty()
		}
		return document.Text(masked, confidence)
	case KindName:
		n, ok := fields.ParseName(s)
		if !ok {
			return document.Empty()
		}
		return document.Text(n.Full(), confidence).WithRaw(s)
	case KindAddress:
		a, ok := fields.ParseAddress(s)
		if !ok {
			return document.Text(s, confidence)
		}
		return document.Text(a.String(), confidence).WithRaw(s)
	case KindState:
		code, ok := fields.StateCode(s)
		if !ok {
			return document.Empty()
		}
		return document.Text(code, confidence)
	case KindEIN:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if len(digits) != 9 {
			return document.Empty()
		}
		return document.Text(digits[:2]+"-"+digits[2:], confidence)
	case KindIDType:
		return document.Text(canonicalIDType(s), confidence)
	case KindLower:
		return document.Text(strings.ToLower(s), confidence)
	default:
		return document.Text(fields.RedactNumbers(s), confidence)
	}
}

func canonicalIDType(s string) string {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "passport"):
		return "passport"
	case strings.Contains(l, "driver") || strings.Contains(l, "licen"):
		return "drivers_license"
	case strings.Contains(l, "state") || strings.Contains(l, "identification"):
		return "state_id"
	}
	return l
}
