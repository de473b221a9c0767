package features

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/assembler"
	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
)

const (
	CustomerOutputName = "Inv_InvoiceCustomer.csv"
	SupplierOutputName = "Inv_InvoiceSupplier.csv"
	RecoverySuffix     = "/007"
)

// LedgerColumns are the columns of one extracted ledger transaction
var LedgerColumns = []string{"GL", "Date", "Reference", "Description", "Unused", "Debit", "Credit", "Balance"}

// RecoveryColumns are the invoice import headers of the recovery invoices.
// CLINENOTES is spelled the way the importer's template spells it.
var RecoveryColumns = []string{
	"DOCTYPE", "ACCOUNTID", "DESCRIPTION", "INVDATE", "TAXINCLUSIVE", "ORDERNUM",
	"CDESCRIPTION", "CLINENOTES", "FQUANTITY", "FQTYTOPROCESS", "FUNITPRICEEXCL",
	"IMODULE", "ISTOCKCODEID", "ILEDGERACCOUNTID", "ITAXTYPEID", "IWAREHOUSEID", "IPRICELISTNAMEID",
}

var glHeading = regexp.MustCompile(`^\d{4}/[A-Z]{2,3}/\d{3}`)

// GLExtractLoadConfig reads the first sheet of an Account Transactions
// workbook without a header.
func GLExtractLoadConfig() *parsers.LoadConfig {
	cfg := parsers.DefaultLoadConfig()
	cfg.HeaderRow = 0
	return cfg
}

// transactionDate reports whether a first cell holds a transaction date
func transactionDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.GreaterThanOrEqual(decimal.NewFromInt(normalizer.MinExcelSerial)) &&
			d.LessThanOrEqual(decimal.NewFromInt(normalizer.MaxExcelSerial))
	}
	_, ok := normalizer.ParseDate(s)
	return ok
}

// ExtractLedger walks an Account Transactions report. A GL heading row
// opens a section; every row whose first cell is a date is a transaction of
// the open section. Other rows are ignored.
func ExtractLedger(report *table.Table) (*table.Table, error) {
	b := table.NewBuilder(LedgerColumns...)
	width := len(LedgerColumns) - 1

	current := table.Absent()
	for _, r := range report.Rows() {
		if len(r) == 0 {
			continue
		}
		first := strings.TrimSpace(r[0].String())
		if glHeading.MatchString(first) {
			current = table.Text(first)
			continue
		}
		if !transactionDate(first) {
			continue
		}

		values := make([]table.Value, 0, len(LedgerColumns))
		values = append(values, current)
		for i := 0; i < width; i++ {
			if i < len(r) {
				values = append(values, r[i])
			} else {
				values = append(values, table.Absent())
			}
		}
		b.Add(values...)
	}
	return b.Build()
}

// RecoverySchema maps recovery ledger lines onto customer invoices dated day
func RecoverySchema(day time.Time) *schema.Schema {
	return schema.Invoice("glextract", RecoveryColumns,
		schema.ConstText("DOCTYPE", "4"),
		schema.ConstText("ACCOUNTID", "A008"),
		schema.ConstText("DESCRIPTION", "Aucor Central"),
		schema.Computed("INVDATE", "processing date",
			func(schema.Record) table.Value { return table.Date(day) }),
		schema.ConstText("ORDERNUM", "A008"),
		schema.Computed("CDESCRIPTION", `"REC: " + Description`,
			func(r schema.Record) table.Value {
				v, _ := r.Get("Description")
				return table.Text("REC: " + v.String())
			}),
		schema.Computed("FQUANTITY", "1, or -1 for credit-only lines",
			func(r schema.Record) table.Value {
				if creditOnly(r) {
					return table.Int(-1)
				}
				return table.Int(1)
			}),
		schema.Computed("FQTYTOPROCESS", "FQUANTITY",
			func(r schema.Record) table.Value { return r.Output("FQUANTITY") }),
		schema.Computed("FUNITPRICEEXCL", "Debit, or Credit for credit-only lines",
			func(r schema.Record) table.Value {
				if creditOnly(r) {
					credit, _ := amount(r, "Credit")
					return table.Number(credit)
				}
				debit, _ := amount(r, "Debit")
				return table.Number(debit)
			}),
		schema.ConstText("IMODULE", "1"),
		schema.Copy("ILEDGERACCOUNTID", "GL"),
		schema.ConstText("ITAXTYPEID", "1"),
		schema.ConstText("IWAREHOUSEID", "MSTR"),
		schema.ConstText("IPRICELISTNAMEID", "1"),
	)
}

func creditOnly(r schema.Record) bool {
	debit, _ := amount(r, "Debit")
	credit, _ := amount(r, "Credit")
	return debit.IsZero() && credit.IsPositive()
}

// SupplierDerivation turns customer recovery invoices into the matching
// supplier invoices.
func SupplierDerivation() assembler.Derivation {
	return assembler.Derivation{
		Name: "supplier",
		Set: map[string]assembler.Compute{
			"DOCTYPE":     assembler.SetText("5"),
			"ACCOUNTID":   assembler.SetText("A001"),
			"DESCRIPTION": assembler.SetText("Aucor Bloemfontein"),
			"ORDERNUM":    assembler.SetText("A001"),
		},
		Rewrite: &assembler.Rewrite{
			Column:      "CDESCRIPTION",
			Pattern:     `^REC:`,
			Replacement: "B:",
		},
	}
}

// GLExtractResult holds the two recovery invoice files
type GLExtractResult struct {
	Customer *table.Table
	Supplier *table.Table
	// Transactions found in the report before the /007 filter
	Transactions int
}

// GLExtract builds customer and supplier recovery invoices from the /007
// ledgers of an Account Transactions report.
func GLExtract(report *table.Table, day time.Time) (*GLExtractResult, error) {
	ledger, err := ExtractLedger(report)
	if err != nil {
		return nil, err
	}

	recoveries := ledger.Filter(func(r table.Row) bool {
		return strings.HasSuffix(r[0].String(), RecoverySuffix)
	})

	customer, err := schema.Map(recoveries, RecoverySchema(day), nil)
	if err != nil {
		return nil, err
	}
	customer, err = assembler.Sanitize(customer, assembler.Options{SanitizeAll: true})
	if err != nil {
		return nil, err
	}

	derived, err := assembler.Derive(customer, []assembler.Derivation{SupplierDerivation()})
	if err != nil {
		return nil, err
	}
	supplier, err := assembler.Sanitize(derived[0], assembler.Options{SanitizeAll: true})
	if err != nil {
		return nil, err
	}

	return &GLExtractResult{
		Customer:     customer,
		Supplier:     supplier,
		Transactions: ledger.Len(),
	}, nil
}
