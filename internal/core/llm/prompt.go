package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

var typeGuidance = map[constants.DocumentType]string{
	constants.W2: "This is a US Form W-2 Wage and Tax Statement. " +
		"Box 1 is wagesTipsCompensation, box 2 federalIncomeTaxWithheld, box 3 socialSecurityWages, " +
		"box 4 socialSecurityTaxWithheld, box 5 medicareWages, box 6 medicareTaxWithheld, " +
		"box 16 stateWages, box 17 stateIncomeTax. employerEin is box b.",
	constants.Paystub: "This is an employee pay stub. Current-period amounts go in grossPay and netPay; " +
		"year-to-date totals go in ytdGrossPay and ytdNetPay. Deductions are positive amounts.",
	constants.BankStatement: "This is a bank account statement. Balances are for the statement period; " +
		"totalWithdrawals is a positive amount. accountType is checking, savings or similar.",
	constants.TaxReturn: "This is a US individual income tax return (Form 1040 or similar). " +
		"filingStatus is one of single, married filing jointly, married filing separately, head of household, qualifying surviving spouse.",
	constants.ID: "This is a government-issued identity document such as a driver's license, state ID or passport. " +
		"idType is drivers_license, state_id or passport.",
	constants.Other: "The document type is unknown. Put a faithful transcription in rawText and any " +
		"labelled values you can read in fields, keyed by a short camelCase label.",
}

// DetectionPrompt asks the model to classify the document.
func DetectionPrompt() (system, user string) {
	system = strings.Join([]string{
		"You classify financial and identity documents from an image.",
		"Return ONLY a JSON object: {\"documentType\": string, \"confidence\": number 0-100}.",
		"documentType must be one of: " + strings.Join(constants.AsStringSlice(), ", ") + ".",
		"Use \"other\" when none fit.",
	}, " ")
	user = "Which document type is shown in the attached image?"
	return system, user
}

// ExtractionPrompt builds the prompts for extracting the fields of docType.
func ExtractionPrompt(docType constants.DocumentType) (system, user string) {
	parts := []string{
		"You extract structured data from document images. Return ONLY JSON, no prose, no Markdown.",
		"Each field is an object {\"value\": string|number, \"confidence\": number 0-100}.",
		"Omit a field entirely when it is not visible; never guess and never output null.",
		"Monetary amounts are plain numbers without currency symbols or thousands separators.",
		"Dates use YYYY-MM-DD.",
		"For SSNs, EINs, account and ID numbers return only the digits you can read; they will be masked.",
		typeGuidance[docType],
	}
	if names := document.FieldNames(docType); len(names) > 0 {
		parts = append(parts, "Allowed field names: "+strings.Join(names, ", ")+".")
	}
	system = strings.Join(parts, " ")
	user = fmt.Sprintf("Extract the %s fields from the attached image. Respond with a JSON object matching the schema:\n%s",
		label(docType), mustJSON(ResponseSchema(docType)))
	return system, user
}

func label(dt constants.DocumentType) string {
	switch dt {
	case constants.W2:
		return "W-2"
	case constants.Paystub:
		return "pay stub"
	case constants.BankStatement:
		return "bank statement"
	case constants.TaxReturn:
		return "tax return"
	case constants.ID:
		return "identity document"
	}
	return "document"
}
