package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// MockConfidence is reported on every mock field.
const MockConfidence = 0.95

// Mock returns a fixed, plausible extraction per document type regardless
// of the image content.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (*Mock) Name() string { return constants.ProviderMock }

func (*Mock) Available() bool { return true }

func (m *Mock) Extract(ctx context.Context, in Input) (document.Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return document.Result{}, err
	}
	ex := MockExtraction(in.DocumentType)
	res := document.Succeeded(m.Name(), ex, ex.MeanConfidence())
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	return res, nil
}

// MockExtraction builds the canned extraction of docType.
func MockExtraction(docType constants.DocumentType) *document.Extraction {
	ex := document.NewExtraction(docType)
	t := func(v string) document.Field { return document.Text(v, MockConfidence) }
	n := func(v float64) document.Field { return document.Number(v, MockConfidence) }

	switch ex.Type {
	case constants.W2:
		*ex.W2 = document.W2{
			EmployerName:              t("Acme Corporation"),
			EmployerEIN:               t("12-3456789"),
			EmployerAddress:           t("100 Main St, Springfield, IL 62701"),
			EmployeeName:              t("Jane Q Doe"),
			EmployeeSSN:               t("****6789"),
			WagesTipsCompensation:     n(75000),
			FederalIncomeTaxWithheld:  n(9500),
			SocialSecurityWages:       n(75000),
			SocialSecurityTaxWithheld: n(4650),
			MedicareWages:             n(75000),
			MedicareTaxWithheld:       n(1087.5),
			StateWages:                n(75000),
			StateIncomeTax:            n(3712.5),
			TaxYear:                   n(2023),
		}
	case constants.Paystub:
		*ex.Paystub = document.Paystub{
			EmployerName:   t("Acme Corporation"),
			EmployeeName:   t("Jane Q Doe"),
			PayPeriodStart: t("2024-01-01"),
			PayPeriodEnd:   t("2024-01-15"),
			PayDate:        t("2024-01-19"),
			GrossPay:       n(3125),
			NetPay:         n(2340.18),
			YTDGrossPay:    n(3125),
			YTDNetPay:      n(2340.18),
			HoursWorked:    n(80),
			HourlyRate:     n(39.06),
			FederalTax:     n(395.83),
			StateTax:       n(154.69),
			SocialSecurity: n(193.75),
			Medicare:       n(45.31),
		}
	case constants.BankStatement:
		*ex.BankStatement = document.BankStatement{
			BankName:             t("First Example Bank"),
			AccountHolderName:    t("Jane Q Doe"),
			AccountNumberLast4:   t("****4321"),
			AccountType:          t("checking"),
			StatementPeriodStart: t("2024-01-01"),
			StatementPeriodEnd:   t("2024-01-31"),
			BeginningBalance:     n(12450.22),
			EndingBalance:        n(13020.87),
			TotalDeposits:        n(6250),
			TotalWithdrawals:     n(5679.35),
			AverageDailyBalance:  n(12780.4),
		}
	case constants.TaxReturn:
		*ex.TaxReturn = document.TaxReturn{
			TaxYear:             n(2023),
			FilingStatus:        t("single"),
			TaxpayerName:        t("Jane Q Doe"),
			TaxpayerSSN:         t("****6789"),
			TotalIncome:         n(75000),
			AdjustedGrossIncome: n(72500),
			TaxableIncome:       n(58650),
			TotalTax:            n(8253),
			RefundAmount:        n(1247),
			WagesIncome:         n(75000),
		}
	case constants.ID:
		*ex.ID = document.IDCard{
			FullName:       t("Jane Q Doe"),
			FirstName:      t("Jane"),
			LastName:       t("Doe"),
			MiddleName:     t("Q"),
			DateOfBirth:    t("1990-04-12"),
			Address:        t("100 Main St, Springfield, IL 62701"),
			IDNumberLast4:  t("****5678"),
			IssueDate:      t("2021-04-12"),
			ExpirationDate: t("2029-04-12"),
			IssuingState:   t("IL"),
			IDType:         t("drivers_license"),
		}
	default:
		ex.Generic.RawText = "Sample document text"
		ex.Generic.Fields["amount1"] = n(100)
		ex.Generic.Fields["date1"] = t("2024-01-15")
	}
	return ex
}
