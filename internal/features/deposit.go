package features

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
)

// DepositAccount is the bank account every deposit is posted against
const DepositAccount = "9500/BLM/027"

// DepositRequiredColumns must all be present in a bank deposit export
var DepositRequiredColumns = []string{"Date", "Description", "Credit", "Code", "Reference"}

// BankPhrases are removed from deposit descriptions, in this order
var BankPhrases = []string{
	"FNB APP PAYMENT FROM", "DIGITAL PAYMENT CR ABSA BANK", "CAPITEC",
	"ACB CREDIT CAPITEC", "FNB OB PMT", "PayShap Ext Credit",
	"INT-BANKING PMT FRM", "IMMEDIATE TRF CR CAPITEC",
	"IMMEDIATE TRF CR", "ACB CREDIT", "INVESTECPB",
}

var trailingPointZero = regexp.MustCompile(`\.0$`)

// DepositLoadConfig reads the deposit export from sheet, or the first sheet
func DepositLoadConfig(sheet string) *parsers.LoadConfig {
	cfg := parsers.DefaultLoadConfig()
	cfg.Sheet = sheet
	return cfg
}

// DepositOutputName is the default file name for a run on day
func DepositOutputName(day time.Time) string {
	return fmt.Sprintf("IMPORT_%s.csv", day.Format("2006-01-02"))
}

// StripBankPhrases removes the bank's boilerplate from a description
func StripBankPhrases(s string) string {
	for _, p := range BankPhrases {
		s = strings.ReplaceAll(s, p, "")
	}
	return strings.TrimSpace(s)
}

// DepositReference joins the deposit code and reference
func DepositReference(code, reference string) string {
	joined := strings.TrimSpace(code + strings.TrimSpace(reference))
	return trailingPointZero.ReplaceAllString(joined, "")
}

// DepositSchema maps a bank deposit export onto the accounting import
func DepositSchema() *schema.Schema {
	return schema.AccountingImport("deposit-import", nil,
		schema.Copy("TxDate", "Date").WithRule(normalizer.DateDayFirst),
		schema.Computed("Description", "Description without bank phrases, trimmed",
			func(r schema.Record) table.Value {
				v, _ := r.Get("Description")
				return table.Text(StripBankPhrases(v.String()))
			}),
		schema.Computed("Reference", "Code + Reference, trailing .0 removed",
			func(r schema.Record) table.Value {
				code, _ := r.Get("Code")
				ref, _ := r.Get("Reference")
				return table.Text(DepositReference(code.String(), ref.String()))
			}),
		schema.Copy("Amount", "Credit").WithRule(normalizer.Currency),
		schema.ConstText("UseTax", "N"),
		schema.ConstText("Account", DepositAccount),
		schema.ConstText("IsDebit", "Y"),
	)
}

// DepositImport converts a bank deposit export. Every required column must
// be present.
func DepositImport(source *table.Table) (*table.Table, error) {
	if err := requireColumns(source, DepositRequiredColumns...); err != nil {
		return nil, err
	}
	return schema.Map(source, DepositSchema(), nil)
}
