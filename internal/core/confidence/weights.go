package confidence

import "github.com/joseph-ayodele/docextract/constants"

// DefaultWeight applies to any field a table does not name.
const DefaultWeight = 1.0

var weightTables = map[constants.DocumentType]map[string]float64{
	constants.W2: {
		"wagesTipsCompensation":    3.0,
		"employeeSsn":              2.5,
		"employeeName":             2.0,
		"employerName":             2.0,
		"federalIncomeTaxWithheld": 1.5,
		"socialSecurityWages":      1.5,
		"medicareWages":            1.5,
		"taxYear":                  1.5,
		"employerEin":              1.2,
		"employerAddress":          0.5,
		"stateWages":               0.8,
		"stateIncomeTax":           0.8,
	},
	constants.Paystub: {
		"grossPay":       3.0,
		"ytdGrossPay":    2.5,
		"netPay":         2.0,
		"employeeName":   2.0,
		"employerName":   2.0,
		"payDate":        1.5,
		"payPeriodStart": 1.2,
		"payPeriodEnd":   1.2,
		"hourlyRate":     1.0,
		"hoursWorked":    0.5,
		"federalTax":     0.8,
		"stateTax":       0.8,
		"socialSecurity": 0.6,
		"medicare":       0.6,
	},
	constants.BankStatement: {
		"endingBalance":        3.0,
		"beginningBalance":     2.0,
		"accountHolderName":    2.0,
		"accountNumberLast4":   2.0,
		"bankName":             1.5,
		"averageDailyBalance":  1.5,
		"totalDeposits":        1.5,
		"totalWithdrawals":     1.2,
		"statementPeriodStart": 1.0,
		"statementPeriodEnd":   1.0,
		"accountType":          0.5,
	},
	constants.TaxReturn: {
		"adjustedGrossIncome": 3.0,
		"totalIncome":         2.5,
		"taxpayerSsn":         2.5,
		"taxpayerName":        2.0,
		"taxYear":             2.0,
		"wagesIncome":         2.0,
		"businessIncome":      1.5,
		"taxableIncome":       1.5,
		"totalTax":            1.2,
		"filingStatus":        1.0,
		"refundAmount":        0.8,
		"amountOwed":          0.8,
		"spouseName":          0.5,
	},
	constants.ID: {
		"fullName":       3.0,
		"dateOfBirth":    2.5,
		"idNumberLast4":  2.5,
		"expirationDate": 2.0,
		"lastName":       2.0,
		"firstName":      2.0,
		"issuingState":   1.0,
		"middleName":     0.5,
		"address":        0.5,
		"issueDate":      0.8,
		"idType":         0.8,
	},
}

// WeightsFor returns the importance table of docType. The generic type weighs
// every detected key equally.
func WeightsFor(docType constants.DocumentType) Weights {
	return Weights{Default: DefaultWeight, ByField: weightTables[docType]}
}
