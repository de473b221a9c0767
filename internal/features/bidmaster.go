package features

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"golang-backoffice-converter/internal/assembler"
	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

const (
	BidmasterOutputName = "Inv_Invoice Import.csv"
	UnknownBuyer        = "Buyer Unknown"
	DocFee              = 2600

	dprColumns       = 36
	cashReconColumns = 26
	buyerNumber      = "buyer_nr"
	buyerName        = "aDescription"
	notesColumn      = "CLIENTNOTES"
	priceColumn      = "fUnitPriceExcl"
	ledgerColumn     = "iLedgerAccountID"
	taxColumn        = "iTaxTypeID"
	lineColumn       = "cDescription"
)

// BidmasterColumns are the invoice import headers of the sales journal
var BidmasterColumns = []string{
	"DocType", "AccountID", "aDescription", "InvDate", "TaxInclusive", "OrderNum",
	"cDescription", "CLIENTNOTES", "fQuantity", "fQtyToProcess", "fUnitPriceExcl",
	"iModule", "iStockCodeID", "iLedgerAccountID", "iTaxTypeID", "iWarehouseID", "iPriceListNameID",
}

// DPR columns read by the sales journal
var dprRequired = []string{"M", "AA", "AB", "AC", "AF"}

// Location is an auction branch
type Location struct {
	Name   string
	Letter string
	GL     string
}

var (
	Bloemfontein = Location{Name: "Bloemfontein", Letter: "B", GL: "BLM"}
	Witbank      = Location{Name: "Witbank", Letter: "W", GL: "WB"}
)

// Departments maps department names to their ledger suffix
var Departments = map[string]string{
	"Bfn Mining":          "005",
	"Bfn Warehouse":       "007",
	"Bfn Vehicles":        "015",
	"Witbank Mining":      "005",
	"Witbank Vehicles":    "015",
	"Bfn Gov & Other":     "010",
	"Witbank Gov & Other": "010",
}

var auctionCodePattern = regexp.MustCompile(`^\d+$`)

// BidmasterOptions are the operator's choices for one auction
type BidmasterOptions struct {
	Location       Location
	AuctionCode    string
	Department     string
	DepartmentCode string
	Commission     decimal.Decimal
	AuctionDate    time.Time
}

// ParseLocation accepts a branch name or its letter
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bloemfontein", "bfn", "blm", "b":
		return Bloemfontein, nil
	case "witbank", "wb", "w":
		return Witbank, nil
	default:
		return Location{}, fmt.Errorf("unknown location %q (use bloemfontein or witbank)", s)
	}
}

// DepartmentNames returns the known departments in sorted order
func DepartmentNames() []string {
	names := make([]string, 0, len(Departments))
	for name := range Departments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseBidmasterOptions validates the raw form values. Commission accepts a
// comma as decimal separator and the date must be dd/mm/yyyy.
func ParseBidmasterOptions(location, auctionCode, department, commission, date string) (*BidmasterOptions, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "location", location, err).
			WithSuggestion("Use --location bloemfontein or --location witbank")
	}

	code := strings.TrimSpace(auctionCode)
	if !auctionCodePattern.MatchString(code) {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "auction_code", auctionCode,
			fmt.Errorf("auction code must be numeric")).
			WithSuggestion("Enter the auction code without the branch letter")
	}

	dept, deptCode, err := lookupDepartment(department)
	if err != nil {
		return nil, err
	}

	pct, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(commission), ",", "."))
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "commission", commission,
			fmt.Errorf("commission must be numeric"))
	}

	day, err := time.Parse(ImportDateLayout, strings.TrimSpace(date))
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "date", date,
			fmt.Errorf("invalid date")).
			WithSuggestion("Enter the auction date as dd/mm/yyyy")
	}

	return &BidmasterOptions{
		Location:       loc,
		AuctionCode:    code,
		Department:     dept,
		DepartmentCode: deptCode,
		Commission:     pct,
		AuctionDate:    day,
	}, nil
}

func lookupDepartment(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", apperrors.ConfigurationError(apperrors.CodeMissingConfig, "department", s, nil).
			WithSuggestion("Choose one of: " + strings.Join(DepartmentNames(), ", "))
	}
	for name, code := range Departments {
		if strings.EqualFold(name, s) {
			return name, code, nil
		}
	}
	err := apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "department", s, fmt.Errorf("unknown department"))
	if guess := table.ClosestName(s, DepartmentNames()); guess != "" {
		err.WithSuggestion(fmt.Sprintf("did you mean '%s'?", guess))
	}
	return "", "", err
}

// ledger returns the ledger account for a main account number
func (o *BidmasterOptions) ledger(account string) string {
	return fmt.Sprintf("%s/%s/%s", account, o.Location.GL, o.DepartmentCode)
}

// DPRLoadConfig returns the layout of the Detail Profit Report: no header,
// Latin-1, columns A to AJ.
func DPRLoadConfig() *parsers.LoadConfig {
	return &parsers.LoadConfig{
		HeaderRow:  0,
		MaxColumns: dprColumns,
		Encoding:   parsers.EncodingLatin1,
		Delimiter:  ',',
	}
}

// CashReconLoadConfig returns the layout of the cash recon report: no
// header, Latin-1, columns A to Z with T and U holding the buyer number and
// name.
func CashReconLoadConfig() *parsers.LoadConfig {
	names := make([]string, cashReconColumns)
	for i := range names {
		names[i], _ = excelize.ColumnNumberToName(i + 1)
	}
	names[19] = buyerNumber
	names[20] = buyerName

	return &parsers.LoadConfig{
		HeaderRow:   0,
		MaxColumns:  cashReconColumns,
		ColumnNames: names,
		Encoding:    parsers.EncodingLatin1,
		Delimiter:   ',',
	}
}

// BuyerNames indexes the cash recon by buyer number. Colons are removed from
// numbers and names are title-cased; the first row of a buyer wins.
func BuyerNames(cashRecon *table.Table) (map[string]string, error) {
	if err := requireColumns(cashRecon, buyerNumber, buyerName); err != nil {
		return nil, err
	}

	names, err := normalizer.Normalize(cashRecon, buyerName, normalizer.TitleString)
	if err != nil {
		return nil, err
	}

	numbers, _ := names.Column(buyerNumber)
	titles, _ := names.Column(buyerName)

	out := make(map[string]string, len(numbers))
	for i, n := range numbers {
		key := strings.TrimSpace(strings.ReplaceAll(n.String(), ":", ""))
		if key == "" {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = titles[i].String()
		}
	}
	return out, nil
}

// BidmasterSchema builds the base invoice lines of an auction
func BidmasterSchema(opts *BidmasterOptions, buyers map[string]string) *schema.Schema {
	return schema.Invoice("bidmaster", BidmasterColumns,
		schema.ConstText("DocType", "4"),
		schema.Computed("AccountID", "branch letter + auction code + /P + buyer number (AB)",
			func(r schema.Record) table.Value {
				return table.Text(opts.Location.Letter + opts.AuctionCode + "/P" + r.Text("AB"))
			}),
		schema.Computed("aDescription", "buyer name from the cash recon, or Buyer Unknown",
			func(r schema.Record) table.Value {
				if name, ok := buyers[r.Text("AB")]; ok && name != "" {
					return table.Text(name)
				}
				return table.Text(UnknownBuyer)
			}),
		schema.Computed("InvDate", "auction date",
			func(schema.Record) table.Value { return table.Date(opts.AuctionDate) }),
		schema.Computed("OrderNum", "AccountID",
			func(r schema.Record) table.Value { return r.Output("AccountID") }),
		schema.Computed(lineColumn, `"Lot nr " + AA + " - " + M`,
			func(r schema.Record) table.Value {
				return table.Text("Lot nr " + r.Text("AA") + " - " + r.Text("M"))
			}),
		schema.Copy(notesColumn, "AC").WithDefault(table.Text("")),
		schema.ConstText("fQuantity", "1"),
		schema.ConstText("fQtyToProcess", "1"),
		schema.Computed(priceColumn, "AF without spaces and commas, blank is 0",
			func(r schema.Record) table.Value {
				v, _ := r.Get("AF")
				if d, ok := v.Decimal(); ok {
					return table.Number(d)
				}
				return table.Number(plainNumber(v.String()))
			}),
		schema.ConstText("iModule", "1"),
		schema.Computed(ledgerColumn, "8010/<branch gl>/<department>",
			func(schema.Record) table.Value { return table.Text(opts.ledger("8010")) }),
		schema.ConstText(taxColumn, "20"),
		schema.ConstText("iWarehouseID", "MSTR"),
		schema.ConstText("iPriceListNameID", "1"),
	)
}

// commissionText renders the rate the way the sales journal has always shown
// it: whole rates keep one decimal place ("10.0"), others print as entered.
func commissionText(pct decimal.Decimal) string {
	if pct.Equal(pct.Truncate(0)) {
		return pct.StringFixed(1)
	}
	return pct.String()
}

// BidmasterDerivations returns the commission and documentation fee lines.
// Both start from the base lines.
func BidmasterDerivations(opts *BidmasterOptions) []assembler.Derivation {
	pct := opts.Commission
	return []assembler.Derivation{
		{
			Name: "commission",
			Set: map[string]assembler.Compute{
				priceColumn:  assembler.Scale(priceColumn, pct.Div(decimal.NewFromInt(100))),
				ledgerColumn: assembler.SetText(opts.ledger("1630")),
				taxColumn:    assembler.SetText("1"),
				notesColumn:  assembler.SetText(""),
			},
			Rewrite: &assembler.Rewrite{
				Column:      lineColumn,
				Pattern:     ` - .*$`,
				Replacement: " - Buyers Commission @ " + commissionText(pct) + "%",
			},
		},
		{
			Name: "docfee",
			Set: map[string]assembler.Compute{
				priceColumn:  assembler.SetNumber(decimal.NewFromInt(DocFee)),
				ledgerColumn: assembler.SetText(opts.ledger("1990")),
				taxColumn:    assembler.SetText("1"),
				notesColumn:  assembler.SetText(""),
			},
			Rewrite: &assembler.Rewrite{
				Column:      lineColumn,
				Pattern:     `\s*-\s*.*$`,
				Replacement: " - Documentation Fee",
			},
		},
	}
}

// Bidmaster builds the sales journal invoice import from the DPR and the
// cash recon: base lines, then commission lines, then documentation fees.
func Bidmaster(dpr, cashRecon *table.Table, opts *BidmasterOptions) (*table.Table, error) {
	if opts == nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "bidmaster", nil, nil)
	}
	if err := requireColumns(dpr, dprRequired...); err != nil {
		return nil, err
	}

	buyers, err := BuyerNames(cashRecon)
	if err != nil {
		return nil, err
	}

	base, err := schema.Map(dpr, BidmasterSchema(opts, buyers), nil)
	if err != nil {
		return nil, err
	}

	return assembler.Assemble(base, BidmasterDerivations(opts), assembler.Options{
		SanitizeColumns: []string{notesColumn},
	})
}
