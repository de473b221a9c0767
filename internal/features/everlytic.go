package features

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/assembler"
	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
)

const (
	EverlyticAccount     = "8002/BLM/027/046"
	EverlyticContraAcct  = "3020/BLM/"
	everlyticColumns     = 11
	everlyticSubject     = "Message Subject"
	everlyticSendDate    = "Send Date"
	everlyticCreditsUsed = "SMSs credit used"
	everlyticDescPrefix  = "Everlytic - "
)

// SMSRate is the price of one SMS credit
var SMSRate = decimal.RequireFromString("0.14")

// EverlyticResult is a converted Everlytic report
type EverlyticResult struct {
	Table           *table.Table
	Banners         int
	RepeatedHeaders int
}

// EverlyticLoadConfig returns the report layout: header on row 2 and a
// banner line right below it.
func EverlyticLoadConfig() *parsers.LoadConfig {
	cfg := parsers.DefaultLoadConfig()
	cfg.HeaderRow = 2
	cfg.SkipAfterHeader = 1
	return cfg
}

// DropBanners removes branch banner rows, which only fill their first cell,
// and header lines reprinted inside the data.
func DropBanners(t *table.Table) (*table.Table, int, int) {
	columns := t.Columns()
	banners, repeats := 0, 0

	out := t.Filter(func(r table.Row) bool {
		if isBannerRow(r) {
			banners++
			return false
		}
		if isHeaderRow(r, columns) {
			repeats++
			return false
		}
		return true
	})
	return out, banners, repeats
}

func isBannerRow(r table.Row) bool {
	if len(r) < 2 || r[0].IsBlank() {
		return false
	}
	for _, v := range r[1:] {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

func isHeaderRow(r table.Row, columns []string) bool {
	filled := 0
	for i, v := range r {
		if v.IsBlank() {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(v.String()), columns[i]) {
			return false
		}
		filled++
	}
	return filled >= 2
}

// EverlyticSchema maps the SMS report onto the first eleven accounting
// columns. reference is applied to every row.
func EverlyticSchema(reference string) *schema.Schema {
	return schema.AccountingSubset("everlytic", everlyticColumns, nil,
		schema.Copy("TxDate", everlyticSendDate).
			WithRule(normalizer.DateDayFirst).
			WithDefault(table.Text("")),
		schema.Computed("Description", `"Everlytic - " + Message Subject`,
			func(r schema.Record) table.Value {
				if !r.Has(everlyticSubject) {
					return table.Text("")
				}
				v, _ := r.Get(everlyticSubject)
				return table.Text(everlyticDescPrefix + v.String())
			}),
		schema.ConstText("Reference", reference),
		schema.Computed("Amount", "SMSs credit used x 0.14, 2 dp",
			func(r schema.Record) table.Value {
				credits, _ := amount(r, everlyticCreditsUsed)
				return table.Number(credits.Mul(SMSRate).Round(2))
			}),
		schema.ConstText("UseTax", "N"),
		schema.Const("TaxAmount", table.Int(0)),
		schema.ConstText("Account", EverlyticAccount),
		schema.ConstText("IsDebit", "N"),
	)
}

// EverlyticContra posts every charge a second time against the contra account
func EverlyticContra() assembler.Derivation {
	return assembler.Derivation{
		Name: "contra",
		Set: map[string]assembler.Compute{
			"IsDebit": assembler.SetText("Y"),
			"Account": assembler.SetText(EverlyticContraAcct),
		},
	}
}

// Everlytic converts a loaded SMS billing report into base and contra lines
func Everlytic(source *table.Table, reference string) (*EverlyticResult, error) {
	cleaned, banners, repeats := DropBanners(source)

	base, err := schema.Map(cleaned, EverlyticSchema(reference), nil)
	if err != nil {
		return nil, err
	}

	out, err := assembler.Assemble(base, []assembler.Derivation{EverlyticContra()}, assembler.Options{})
	if err != nil {
		return nil, err
	}

	return &EverlyticResult{
		Table:           out,
		Banners:         banners,
		RepeatedHeaders: repeats,
	}, nil
}
