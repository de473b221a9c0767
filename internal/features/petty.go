package features

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
)

// Petty cash and eWallet templates carry the header on row 4 followed by two
// instruction rows.
const (
	PettyHeaderRow  = 4
	PettyBannerRows = 2
	PettyOutputName = "petty_import"
	pettyDateColumn = "Date"
	pettyPaidColumn = "amount_paid"
	pettyRecvColumn = "amount_received"
	pettyDefaultRef = "DEP"
)

var pettyModules = map[string]int64{"gl": 0, "ar": 1, "ap": 2}

// PettyCashLoadConfig returns the layout of the petty cash and eWallet templates
func PettyCashLoadConfig() *parsers.LoadConfig {
	cfg := parsers.DefaultLoadConfig()
	cfg.HeaderRow = PettyHeaderRow
	cfg.SkipAfterHeader = PettyBannerRows
	return cfg
}

// PettyCashSchema maps a petty cash or eWallet sheet onto the accounting
// import. Rows without a valid day-first date are dropped.
func PettyCashSchema() *schema.Schema {
	return schema.AccountingImport("petty-cash",
		&schema.Filter{Column: pettyDateColumn, Target: "TxDate", Rule: normalizer.DateDayFirst},

		schema.Copy("TxDate", pettyDateColumn).WithRule(normalizer.DateDayFirst),
		schema.Copy("Description", "description").WithDefault(table.Text("")),
		schema.Copy("Reference", "reference").WithDefault(table.Text(pettyDefaultRef)),
		schema.Copy("Account", "pastel_acc", "account").
			WithRule(normalizer.TrimmedString).
			WithDefault(table.Text("")),

		schema.Computed("Amount", "amount_paid when non-zero, else amount_received, else 0",
			func(r schema.Record) table.Value {
				paid, _ := amount(r, pettyPaid(r)...)
				if !paid.IsZero() {
					return table.Number(paid.Round(2))
				}
				recv, _ := amount(r, pettyReceived(r)...)
				return table.Number(recv.Round(2))
			}),

		schema.Computed("UseTax", "Y when vat(y/n) starts with Y",
			func(r schema.Record) table.Value {
				vat := strings.ToUpper(r.Text(r.Alias("UseTax", "vat(y/n)", "vat")...))
				if strings.HasPrefix(vat, "Y") {
					return table.Text("Y")
				}
				return table.Text("N")
			}),

		schema.Computed("IsDebit", "Y when the amount came from amount_received",
			func(r schema.Record) table.Value {
				paid, _ := amount(r, pettyPaid(r)...)
				recv, _ := amount(r, pettyReceived(r)...)
				if paid.IsZero() && !recv.IsZero() {
					return table.Text("Y")
				}
				return table.Text("N")
			}),

		schema.Computed("Module", "mymodule: gl=0, ar=1, ap=2, other=0",
			func(r schema.Record) table.Value {
				module := r.Text(r.Alias("Module", "mymodule", "module")...)
				return table.Int(pettyModules[strings.ToLower(module)])
			}),
	)
}

// pettyPaid lists the paid-out candidates: aliases of Amount, then amount_paid
func pettyPaid(r schema.Record) []string {
	return r.Alias("Amount", pettyPaidColumn)
}

// pettyReceived lists the received candidates. The received amount decides
// IsDebit, so aliases of IsDebit name it.
func pettyReceived(r schema.Record) []string {
	return r.Alias("IsDebit", pettyRecvColumn)
}

// PettyCash converts a loaded petty cash or eWallet sheet
func PettyCash(source *table.Table, aliases schema.Aliases) (*table.Table, error) {
	return schema.Map(source, PettyCashSchema(), aliases)
}

// PettyTotal sums the Amount column of a converted sheet
func PettyTotal(t *table.Table) decimal.Decimal {
	total := decimal.Zero
	values, _ := t.Column("Amount")
	for _, v := range values {
		if d, ok := v.Decimal(); ok {
			total = total.Add(d)
		}
	}
	return total
}
