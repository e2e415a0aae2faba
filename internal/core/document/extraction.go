package document

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/joseph-ayodele/docextract/constants"
)

type W2 struct {
	EmployerName              Field `json:"employerName"`
	EmployerEIN               Field `json:"employerEin"`
	EmployerAddress           Field `json:"employerAddress"`
	EmployeeName              Field `json:"employeeName"`
	EmployeeSSN               Field `json:"employeeSsn"`
	WagesTipsCompensation     Field `json:"wagesTipsCompensation"`
	FederalIncomeTaxWithheld  Field `json:"federalIncomeTaxWithheld"`
	SocialSecurityWages       Field `json:"socialSecurityWages"`
	SocialSecurityTaxWithheld Field `json:"socialSecurityTaxWithheld"`
	MedicareWages             Field `json:"medicareWages"`
	MedicareTaxWithheld       Field `json:"medicareTaxWithheld"`
	StateWages                Field `json:"stateWages"`
	StateIncomeTax            Field `json:"stateIncomeTax"`
	TaxYear                   Field `json:"taxYear"`
}

type Paystub struct {
	EmployerName   Field `json:"employerName"`
	EmployeeName   Field `json:"employeeName"`
	PayPeriodStart Field `json:"payPeriodStart"`
	PayPeriodEnd   Field `json:"payPeriodEnd"`
	PayDate        Field `json:"payDate"`
	GrossPay       Field `json:"grossPay"`
	NetPay         Field `json:"netPay"`
	YTDGrossPay    Field `json:"ytdGrossPay"`
	YTDNetPay      Field `json:"ytdNetPay"`
	HoursWorked    Field `json:"hoursWorked"`
	HourlyRate     Field `json:"hourlyRate"`
	FederalTax     Field `json:"federalTax"`
	StateTax       Field `json:"stateTax"`
	SocialSecurity Field `json:"socialSecurity"`
	Medicare       Field `json:"medicare"`
}

type BankStatement struct {
	BankName             Field `json:"bankName"`
	AccountHolderName    Field `json:"accountHolderName"`
	AccountNumberLast4   Field `json:"accountNumberLast4"`
	AccountType          Field `json:"accountType"`
	StatementPeriodStart Field `json:"statementPeriodStart"`
	StatementPeriodEnd   Field `json:"statementPeriodEnd"`
	BeginningBalance     Field `json:"beginningBalance"`
	EndingBalance        Field `json:"endingBalance"`
	TotalDeposits        Field `json:"totalDeposits"`
	TotalWithdrawals     Field `json:"totalWithdrawals"`
	AverageDailyBalance  Field `json:"averageDailyBalance"`
}

type TaxReturn struct {
	TaxYear             Field `json:"taxYear"`
	FilingStatus        Field `json:"filingStatus"`
	TaxpayerName        Field `json:"taxpayerName"`
	SpouseName          Field `json:"spouseName"`
	TaxpayerSSN         Field `json:"taxpayerSsn"`
	TotalIncome         Field `json:"totalIncome"`
	AdjustedGrossIncome Field `json:"adjustedGrossIncome"`
	TaxableIncome       Field `json:"taxableIncome"`
	TotalTax            Field `json:"totalTax"`
	RefundAmount        Field `json:"refundAmount"`
	AmountOwed          Field `json:"amountOwed"`
	WagesIncome         Field `json:"wagesIncome"`
	BusinessIncome      Field `json:"businessIncome"`
}

type IDCard struct {
	FullName       Field `json:"fullName"`
	FirstName      Field `json:"firstName"`
	LastName       Field `json:"lastName"`
	MiddleName     Field `json:"middleName"`
	DateOfBirth    Field `json:"dateOfBirth"`
	Address        Field `json:"address"`
	IDNumberLast4  Field `json:"idNumberLast4"`
	IssueDate      Field `json:"issueDate"`
	ExpirationDate Field `json:"expirationDate"`
	IssuingState   Field `json:"issuingState"`
	IDType         Field `json:"idType"`
}

// Generic is the "other" variant: the recognized text plus whatever
// key/value pairs could be detected in it.
type Generic struct {
	RawText string           `json:"rawText"`
	Fields  map[string]Field `json:"fields"`
}

// Extraction is a tagged union keyed by Type; exactly the member matching
// Type is non-nil.
type Extraction struct {
	Type          constants.DocumentType
	W2            *W2
	Paystub       *Paystub
	BankStatement *BankStatement
	TaxReturn     *TaxReturn
	ID            *IDCard
	Generic       *Generic
}

// NewExtraction returns an extraction of docType with every field unset.
// Unknown types produce the generic variant.
func NewExtraction(docType constants.DocumentType) *Extraction {
	switch docType {
	case constants.W2:
		return &Extraction{Type: docType, W2: &W2{}}
	case constants.Paystub:
		return &Extraction{Type: docType, Paystub: &Paystub{}}
	case constants.BankStatement:
		return &Extraction{Type: docType, BankStatement: &BankStatement{}}
	case constants.TaxReturn:
		return &Extraction{Type: docType, TaxReturn: &TaxReturn{}}
	case constants.ID:
		return &Extraction{Type: docType, ID: &IDCard{}}
	default:
		return &Extraction{Type: constants.Other, Generic: &Generic{Fields: map[string]Field{}}}
	}
}

// FieldRefs returns pointers to every named field of the active variant so
// callers can rewrite them in place. The generic variant has no fixed schema
// and returns nil.
func (e *Extraction) FieldRefs() map[string]*Field {
	if e == nil {
		return nil
	}
	switch e.Type {
	case constants.W2:
		v := e.W2
		return map[string]*Field{
			"employerName": &v.EmployerName, "employerEin": &v.EmployerEIN,
			"employerAddress": &v.EmployerAddress, "employeeName": &v.EmployeeName,
			"employeeSsn": &v.EmployeeSSN, "wagesTipsCompensation": &v.WagesTipsCompensation,
			"federalIncomeTaxWithheld": &v.FederalIncomeTaxWithheld, "socialSecurityWages": &v.SocialSecurityWages,
			"socialSecurityTaxWithheld": &v.SocialSecurityTaxWithheld, "medicareWages": &v.MedicareWages,
			"medicareTaxWithheld": &v.MedicareTaxWithheld, "stateWages": &v.StateWages,
			"stateIncomeTax": &v.StateIncomeTax, "taxYear": &v.TaxYear,
		}
	case constants.Paystub:
		v := e.Paystub
		return map[string]*Field{
			"employerName": &v.EmployerName, "employeeName": &v.EmployeeName,
			"payPeriodStart": &v.PayPeriodStart, "payPeriodEnd": &v.PayPeriodEnd,
			"payDate": &v.PayDate, "grossPay": &v.GrossPay, "netPay": &v.NetPay,
			"ytdGrossPay": &v.YTDGrossPay, "ytdNetPay": &v.YTDNetPay,
			"hoursWorked": &v.HoursWorked, "hourlyRate": &v.HourlyRate,
			"federalTax": &v.FederalTax, "stateTax": &v.StateTax,
			"socialSecurity": &v.SocialSecurity, "medicare": &v.Medicare,
		}
	case constants.BankStatement:
		v := e.BankStatement
		return map[string]*Field{
			"bankName": &v.BankName, "accountHolderName": &v.AccountHolderName,
			"accountNumberLast4": &v.AccountNumberLast4, "accountType": &v.AccountType,
			"statementPeriodStart": &v.StatementPeriodStart, "statementPeriodEnd": &v.StatementPeriodEnd,
			"beginningBalance": &v.BeginningBalance, "endingBalance": &v.EndingBalance,
			"totalDeposits": &v.TotalDeposits, "totalWithdrawals": &v.TotalWithdrawals,
			"averageDailyBalance": &v.AverageDailyBalance,
		}
	case constants.TaxReturn:
		v := e.TaxReturn
		return map[string]*Field{
			"taxYear": &v.TaxYear, "filingStatus": &v.FilingStatus,
			"taxpayerName": &v.TaxpayerName, "spouseName": &v.SpouseName,
			"taxpayerSsn": &v.TaxpayerSSN, "totalIncome": &v.TotalIncome,
			"adjustedGrossIncome": &v.AdjustedGrossIncome, "taxableIncome": &v.TaxableIncome,
			"totalTax": &v.TotalTax, "refundAmount": &v.RefundAmount,
			"amountOwed": &v.AmountOwed, "wagesIncome": &v.WagesIncome,
			"businessIncome": &v.BusinessIncome,
		}
	case constants.ID:
		v := e.ID
		return map[string]*Field{
			"fullName": &v.FullName, "firstName": &v.FirstName, "lastName": &v.LastName,
			"middleName": &v.MiddleName, "dateOfBirth": &v.DateOfBirth, "address": &v.Address,
			"idNumberLast4": &v.IDNumberLast4, "issueDate": &v.IssueDate,
			"expirationDate": &v.ExpirationDate, "issuingState": &v.IssuingState,
			"idType": &v.IDType,
		}
	}
	return nil
}

// Fields is the flat name → field view of the active variant.
func (e *Extraction) Fields() map[string]Field {
	if e == nil {
		return nil
	}
	if e.isGeneric() {
		if e.Generic == nil {
			return map[string]Field{}
		}
		out := make(map[string]Field, len(e.Generic.Fields))
		for k, v := range e.Generic.Fields {
			out[k] = v
		}
		return out
	}
	refs := e.FieldRefs()
	out := make(map[string]Field, len(refs))
	for k, p := range refs {
		out[k] = *p
	}
	return out
}

// FieldNames lists the schema of docType in stable order.
func FieldNames(docType constants.DocumentType) []string {
	refs := NewExtraction(docType).FieldRefs()
	names := make([]string, 0, len(refs))
	for k := range refs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetField assigns name on the active variant. It reports false for names
// outside a typed schema; the generic variant accepts any name.
func (e *Extraction) SetField(name string, f Field) bool {
	if e.isGeneric() {
		if e.Generic == nil {
			e.Generic = &Generic{}
		}
		if e.Generic.Fields == nil {
			e.Generic.Fields = map[string]Field{}
		}
		e.Generic.Fields[name] = f
		return true
	}
	p, ok := e.FieldRefs()[name]
	if !ok {
		return false
	}
	*p = f
	return true
}

// SetCount returns how many fields carry a value.
func (e *Extraction) SetCount() int {
	n := 0
	for _, f := range e.Fields() {
		if f.IsSet() {
			n++
		}
	}
	return n
}

// MeanConfidence averages the confidence of the set fields; 0 if none.
func (e *Extraction) MeanConfidence() float64 {
	var sum float64
	var n int
	for _, f := range e.Fields() {
		if f.IsSet() {
			sum += f.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Extraction) isGeneric() bool {
	switch e.Type {
	case constants.W2, constants.Paystub, constants.BankStatement, constants.TaxReturn, constants.ID:
		return false
	}
	return true
}

func (e *Extraction) variant() any {
	switch e.Type {
	case constants.W2:
		return e.W2
	case constants.Paystub:
		return e.Paystub
	case constants.BankStatement:
		return e.BankStatement
	case constants.TaxReturn:
		return e.TaxReturn
	case constants.ID:
		return e.ID
	}
	return e.Generic
}

// MarshalJSON emits {"documentType": ..., "fields": {...}}; the generic
// variant also carries "rawText".
func (e *Extraction) MarshalJSON() ([]byte, error) {
	out := map[string]any{"documentType": e.Type}
	if e.isGeneric() {
		g := e.Generic
		if g == nil {
			g = &Generic{}
		}
		fields := g.Fields
		if fields == nil {
			fields = map[string]Field{}
		}
		out["documentType"] = constants.Other
		out["rawText"] = g.RawText
		out["fields"] = fields
		return json.Marshal(out)
	}
	out["fields"] = e.variant()
	return json.Marshal(out)
}

// UnmarshalJSON restores the variant named by documentType.
func (e *Extraction) UnmarshalJSON(b []byte) error {
	var head struct {
		DocumentType constants.DocumentType `json:"documentType"`
		RawText      string                 `json:"rawText"`
		Fields       json.RawMessage        `json:"fields"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	dt, _ := constants.ParseDocumentType(string(head.DocumentType))
	*e = *NewExtraction(dt)
	if e.Generic != nil {
		e.Generic.RawText = head.RawText
	}
	if len(head.Fields) == 0 || string(head.Fields) == "null" {
		return nil
	}
	target := e.variant()
	if e.Generic != nil {
		target = &e.Generic.Fields
	}
	if err := json.Unmarshal(head.Fields, target); err != nil {
		return fmt.Errorf("decode %s fields: %w", dt, err)
	}
	return nil
}
