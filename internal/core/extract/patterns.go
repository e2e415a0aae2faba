package extract

import (
	"regexp"

	"github.com/joseph-ayodele/docextract/constants"
)

// fieldPattern lists ordered alternatives for one field; group 1 of the
// first alternative that yields a parseable value wins.
type fieldPattern struct {
	Name     string
	Patterns []*regexp.Regexp
}

const (
	// lazy gap between a label and its value on the same line
	gap = `[^\d\n]{0,40}?`
	// money, with optional sign, symbol, parentheses and thousands separators
	amt = `(\(?-?\$?\s?\d[\d,]*(?:\.\d{1,2})?\)?)`
	// dates in every format the date parser understands
	dateNC = `(?:\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+[A-Za-z]{3,9}\.?\s+\d{4})`
	date   = `(` + dateNC + `)`
	// label/value separator on a single line
	sep = `\s*[:\-]\s*`
	// value up to end of line
	rest = `(.+?)\s*$`
	// SSN with only the final group captured; the leading digits are never kept
	ssnLast4 = `(?:\d{3}|[*xX]{3})[- ]?(?:\d{2}|[*xX]{2})[- ]?(\d{4})\b`
)

func re(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func box(n string) string { return `(?i)\bbox\s*` + n + `\b` + gap + amt }

var patternTables = map[constants.DocumentType][]fieldPattern{
	constants.W2: {
		{"employerName", re(
			`(?im)^\s*employer(?:'s)?(?:\s+name)?`+sep+rest,
			`(?im)^\s*c\s+employer'?s\s+name[^\n]*\n\s*`+rest,
		)},
		{"employerEin", re(
			`(?i)(?:employer\s+identification\s+number|\bEIN)\b[^\d\n]{0,20}(\d{2}-?\d{7})\b`,
			`(?m)^\s*b\s+[^\d\n]{0,40}(\d{2}-\d{7})\b`,
		)},
		{"employerAddress", re(
			`(?im)^\s*employer(?:'s)?\s+address` + sep + rest,
		)},
		{"employeeName", re(
			`(?im)^\s*employee(?:'s)?(?:\s+name)?`+sep+rest,
			`(?im)^\s*e\s+employee'?s\s+(?:first\s+)?name[^\n]*\n\s*`+rest,
		)},
		{"employeeSsn", re(
			`(?i)(?:employee'?s\s+)?(?:social\s+security\s+(?:number|no\.?)|\bSSN\b)[^\d*xX\n]{0,20}` + ssnLast4,
		)},
		{"wagesTipsCompensation", re(
			box("1"),
			`(?i)wages,?\s*tips,?\s*(?:and\s*)?other\s*comp(?:ensation)?`+gap+amt,
		)},
		{"federalIncomeTaxWithheld", re(
			box("2"),
			`(?i)federal\s*income\s*tax\s*withheld`+gap+amt,
		)},
		{"socialSecurityWages", re(
			box("3"),
			`(?i)social\s*security\s*wages`+gap+amt,
		)},
		{"socialSecurityTaxWithheld", re(
			box("4"),
			`(?i)social\s*security\s*tax\s*withheld`+gap+amt,
		)},
		{"medicareWages", re(
			box("5"),
			`(?i)medicare\s*wages(?:\s*and\s*tips)?`+gap+amt,
		)},
		{"medicareTaxWithheld", re(
			box("6"),
			`(?i)medicare\s*tax\s*withheld`+gap+amt,
		)},
		{"stateWages", re(
			box("16"),
			`(?i)state\s*wages(?:,?\s*tips,?\s*etc\.?)?`+gap+amt,
		)},
		{"stateIncomeTax", re(
			box("17"),
			`(?i)state\s*income\s*tax`+gap+amt,
		)},
		{"taxYear", re(
			`(?i)tax\s*year\D{0,10}((?:19|20)\d{2})\b`,
			`(?i)\b((?:19|20)\d{2})\s*(?:form\s*)?W-?2\b`,
			`(?i)\bW-?2\b[^\n]{0,60}?\b((?:19|20)\d{2})\b`,
		)},
	},
	constants.Paystub: {
		{"employerName", re(
			`(?im)^\s*(?:employer|company)(?:\s+name)?` + sep + rest,
		)},
		{"employeeName", re(
			`(?im)^\s*employee(?:\s+name)?`+sep+rest,
			`(?im)^\s*name`+sep+rest,
		)},
		{"payPeriodStart", re(
			`(?i)(?:pay\s*)?period\s*(?:start|begin(?:ning)?)(?:\s*date)?\s*[:\-]?\s*`+date,
			`(?i)pay\s*period\s*[:\-]?\s*`+date,
		)},
		{"payPeriodEnd", re(
			`(?i)(?:pay\s*)?period\s*end(?:ing)?(?:\s*date)?\s*[:\-]?\s*`+date,
			`(?i)pay\s*period\s*[:\-]?\s*`+dateNC+`\s*(?:-|to|through|thru)\s*`+date,
		)},
		{"payDate", re(
			`(?i)(?:pay|check|deposit)\s*date\s*[:\-]?\s*` + date,
		)},
		{"grossPay", re(
			`(?im)^\s*(?:current\s+)?gross\s*(?:pay|earnings)`+gap+amt,
			`(?i)\bgross\s*pay`+gap+amt,
		)},
		{"netPay", re(
			`(?im)^\s*(?:current\s+)?net\s*pay`+gap+amt,
			`(?i)\bnet\s*(?:pay|amount)`+gap+amt,
		)},
		{"ytdGrossPay", re(
			`(?i)(?:ytd|year[\s-]*to[\s-]*date)\s*gross(?:\s*(?:pay|earnings))?` + gap + amt,
		)},
		{"ytdNetPay", re(
			`(?i)(?:ytd|year[\s-]*to[\s-]*date)\s*net(?:\s*pay)?` + gap + amt,
		)},
		{"hoursWorked", re(
			`(?i)(?:total\s*)?hours(?:\s*worked)?\s*[:\-]?\s*(\d+(?:\.\d+)?)\b`,
		)},
		{"hourlyRate", re(
			`(?i)(?:hourly\s*)?(?:pay\s*)?rate` + gap + amt,
		)},
		{"federalTax", re(
			`(?i)fed(?:eral)?\.?\s*(?:income\s*)?(?:withholding|tax|w/h)` + gap + amt,
		)},
		{"stateTax", re(
			`(?i)state\s*(?:income\s*)?(?:withholding|tax|w/h)` + gap + amt,
		)},
		{"socialSecurity", re(
			`(?i)(?:social\s*security|oasdi|fica\s*-?\s*ss)(?:\s*tax)?` + gap + amt,
		)},
		{"medicare", re(
			`(?i)(?:medicare|fica\s*-?\s*med)(?:\s*tax)?` + gap + amt,
		)},
	},
	constants.BankStatement: {
		{"bankName", re(
			`(?im)^\s*bank(?:\s+name)?`+sep+rest,
			`(?m)^\s*([A-Z][A-Za-z&.' ]{1,40}?\s(?:Bank|Credit Union|Bancorp|Savings)(?:,?\s*N\.?A\.?)?)\s*$`,
		)},
		{"accountHolderName", re(
			`(?im)^\s*(?:primary\s+)?(?:account\s*holder|customer)(?:\s+name)?` + sep + rest,
		)},
		{"accountNumberLast4", re(
			`(?i)account\s*(?:number|no\.?|#)\s*[:\-]?\s*[\dxX*\- ]*(\d{4})\b`,
			`(?i)(?:acct|account)\s*(?:ending\s*in|ending)\s*[:\-]?\s*(\d{4})\b`,
		)},
		{"accountType", re(
			`(?im)account\s*type`+sep+`([A-Za-z ]+?)\s*$`,
			`(?i)\b(checking|savings|money\s*market)\s*account\b`,
		)},
		{"statementPeriodStart", re(
			`(?i)(?:statement\s*period|period)\s*[:\-]?\s*(?:from\s*)?`+date,
			`(?i)(?:beginning|opening|start)\s*date\s*[:\-]?\s*`+date,
		)},
		{"statementPeriodEnd", re(
			`(?i)(?:statement\s*period|period)\s*[:\-]?\s*(?:from\s*)?`+dateNC+`\s*(?:-|to|through|thru)\s*`+date,
			`(?i)(?:ending|closing|end)\s*date\s*[:\-]?\s*`+date,
		)},
		{"beginningBalance", re(
			`(?i)(?:beginning|opening|previous|starting)\s*balance` + gap + amt,
		)},
		{"endingBalance", re(
			`(?i)(?:ending|closing|new)\s*balance` + gap + amt,
		)},
		{"totalDeposits", re(
			`(?i)(?:total\s*)?deposits(?:\s*(?:and|&)\s*(?:other\s*)?(?:credits|additions))?` + gap + amt,
		)},
		{"totalWithdrawals", re(
			`(?i)(?:total\s*)?(?:withdrawals|debits)(?:\s*(?:and|&)\s*(?:other\s*)?(?:debits|subtractions))?` + gap + amt,
		)},
		{"averageDailyBalance", re(
			`(?i)average\s*(?:daily\s*)?(?:ledger\s*)?balance` + gap + amt,
		)},
	},
	constants.TaxReturn: {
		{"taxYear", re(
			`(?i)tax\s*year\D{0,10}((?:19|20)\d{2})\b`,
			`(?i)for\s*the\s*year\s*(?:jan\.?\s*1\s*[-–]\s*dec\.?\s*31,?\s*)?((?:19|20)\d{2})\b`,
			`(?i)\b((?:19|20)\d{2})\s*form\s*1040\b`,
			`(?i)\bform\s*1040\b[^\n]{0,40}?\b((?:19|20)\d{2})\b`,
		)},
		{"filingStatus", re(
			`(?i)filing\s*status\s*[:\-]?\s*(single|married\s*filing\s*jointly|married\s*filing\s*separately|head\s*of\s*household|qualifying\s*(?:surviving\s*spouse|widow\(?er\)?))`,
		)},
		{"taxpayerName", re(
			`(?im)^\s*(?:taxpayer|your)(?:'s)?\s*(?:full\s*)?name`+sep+rest,
			`(?im)^\s*name`+sep+rest,
		)},
		{"spouseName", re(
			`(?im)^\s*spouse(?:'s)?(?:\s*(?:full\s*)?name)?` + sep + rest,
		)},
		{"taxpayerSsn", re(
			`(?i)(?:your\s+)?(?:social\s+security\s+(?:number|no\.?)|\bSSN\b)[^\d*xX\n]{0,20}` + ssnLast4,
		)},
		{"wagesIncome", re(
			`(?i)wages,?\s*salaries,?\s*tips`+gap+amt,
			`(?i)\bline\s*1[az]?\b`+gap+amt,
		)},
		{"businessIncome", re(
			`(?i)business\s*income(?:\s*or\s*\(?loss\)?)?` + gap + amt,
		)},
		{"totalIncome", re(
			`(?i)total\s*income`+gap+amt,
			`(?i)\bline\s*9\b`+gap+amt,
		)},
		{"adjustedGrossIncome", re(
			`(?i)(?:adjusted\s*gross\s*income|\bAGI\b)`+gap+amt,
			`(?i)\bline\s*11\b`+gap+amt,
		)},
		{"taxableIncome", re(
			`(?i)taxable\s*income`+gap+amt,
			`(?i)\bline\s*15\b`+gap+amt,
		)},
		{"totalTax", re(
			`(?i)total\s*tax\b`+gap+amt,
			`(?i)\bline\s*24\b`+gap+amt,
		)},
		{"refundAmount", re(
			`(?i)(?:amount\s*)?(?:to\s*be\s*)?refund(?:ed)?`+gap+amt,
			`(?i)\bline\s*35a\b`+gap+amt,
		)},
		{"amountOwed", re(
			`(?i)amount\s*(?:you\s*)?owe(?:d)?`+gap+amt,
			`(?i)\bline\s*37\b`+gap+amt,
		)},
	},
	constants.ID: {
		{"fullName", re(
			`(?im)^\s*(?:full\s*)?name` + sep + rest,
		)},
		{"lastName", re(
			`(?im)^\s*(?:ln|last\s*name|surname)(?:\s*[:\-]\s*|\s+)` + rest,
		)},
		{"firstName", re(
			`(?im)^\s*(?:fn|first\s*name|given\s*names?)(?:\s*[:\-]\s*|\s+)` + rest,
		)},
		{"middleName", re(
			`(?im)^\s*(?:mn|middle\s*name)(?:\s*[:\-]\s*|\s+)` + rest,
		)},
		{"dateOfBirth", re(
			`(?i)(?:\bdob\b|date\s*of\s*birth|birth\s*date)\s*[:\-]?\s*` + date,
		)},
		{"address", re(
			`(?im)^\s*(?:address|addr)`+sep+`(.+\n[^\n]*\b[A-Z]{2}\s+\d{5}(?:-\d{4})?)\s*$`,
			`(?im)^\s*(?:address|addr)`+sep+rest,
		)},
		{"idNumberLast4", re(
			`(?i)\b(?:dl|lic(?:ense)?|id|passport)\s*(?:no\.?|number|#)\s*[:\-]?\s*[A-Z]{0,2}[\d\- ]*(\d{4})\b`,
			`(?im)^\s*(?:dl|lic)\s*[:\-]?\s*[A-Z]{0,2}[\d\- ]*(\d{4})\b`,
		)},
		{"issueDate", re(
			`(?i)(?:\biss(?:ued)?\b|issue\s*date|date\s*of\s*issue)\s*[:\-]?\s*` + date,
		)},
		{"expirationDate", re(
			`(?i)(?:\bexp(?:ires|iration)?\b(?:\s*date)?|date\s*of\s*expiry)\s*[:\-]?\s*` + date,
		)},
		{"issuingState", re(
			`(?im)^\s*issuing\s*state`+sep+`([A-Za-z ]+?)\s*$`,
			`(?i)\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)\s+driver'?s?\s*licen[sc]e`,
			`(?im)^\s*state\s*of\s+([A-Za-z ]+?)\s*$`,
		)},
		{"idType", re(
			`(?i)\b(driver'?s?\s*licen[sc]e|passport|identification\s*card|state\s*id)\b`,
		)},
	},
}

var (
	reGenericAmount = regexp.MustCompile(`(?:\$\s?\d[\d,]*(?:\.\d{2})?|\b\d{1,3}(?:,\d{3})+\.\d{2}\b|\b\d+\.\d{2}\b)`)
	reGenericDate   = regexp.MustCompile(`(?i)\b` + dateNC)
)

const (
	maxGenericAmounts = 5
	maxGenericDates   = 3
)
