package features

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

var pettyColumns = []string{"Date", "Description", "Reference", "Pastel_Acc", "Amount_Paid", "Amount_Received", "VAT(Y/N)", "MyModule"}

func TestPettyCash(t *testing.T) {
	source := textTable(t, pettyColumns,
		[]string{"01/02/2025", "Fuel", "", " 7000/BLM/001 ", "100.456", "", "yes", "AP"},
		[]string{"Total", "", "", "", "", "", "", ""},
		[]string{"02/02/2025", "Refund", "R1", "8000", "0", "50", "n", "gl"},
		[]string{"03/02/2025", "Misc", "", "", "", "", "", ""},
	)

	out, err := PettyCash(source, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectColumns(t, out, schema.AccountingImportColumns)
	if out.Len() != 3 {
		t.Fatalf("expected 3 rows after the date filter, got %d", out.Len())
	}

	tests := []struct {
		row    int
		column string
		want   string
	}{
		{0, "TxDate", "2025-02-01"},
		{0, "Reference", "DEP"},
		{0, "Account", "7000/BLM/001"},
		{0, "Amount", "100.46"},
		{0, "UseTax", "Y"},
		{0, "IsDebit", "N"},
		{0, "Module", "2"},
		{1, "Reference", "R1"},
		{1, "Amount", "50"},
		{1, "UseTax", "N"},
		{1, "IsDebit", "Y"},
		{1, "Module", "0"},
		{2, "Account", ""},
		{2, "Amount", "0"},
		{2, "IsDebit", "N"},
		{2, "Reference", "DEP"},
		{2, "TaxAmount", "0"},
		{2, "PostDated", "N"},
		{2, "Project", ""},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := cell(t, out, tt.row, tt.column); got != tt.want {
				t.Errorf("row %d %s: expected %q, got %q", tt.row, tt.column, tt.want, got)
			}
		})
	}

	if total := PettyTotal(out); !total.Equal(decimal.RequireFromString("150.46")) {
		t.Errorf("expected total 150.46, got %s", total)
	}
}

func TestPettyCashMissingDate(t *testing.T) {
	source := textTable(t, []string{"Dte", "Description"}, []string{"01/02/2025", "Fuel"})

	_, err := PettyCash(source, nil)
	if !errors.Is(err, apperrors.ErrRequiredColumnMissing) {
		t.Fatalf("expected required column missing, got %v", err)
	}
}

func TestPettyCashFromTemplate(t *testing.T) {
	template := strings.Join([]string{
		"Petty Cash Template,,,,",
		"Branch,,,,",
		",,,,",
		"Date,Description,Reference,Account,Amount_Paid",
		"dd/mm/yyyy,text,text,text,number",
		"example,,,,",
		"15/03/2025,Stamps,,9000,12.5",
	}, "\n")

	source, _, err := parsers.NewLoader(nil).LoadReader(context.Background(), strings.NewReader(template), parsers.FormatCSV, PettyCashLoadConfig())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	out, err := PettyCash(source, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", out.Len())
	}

	date, _ := out.Cell(0, "TxDate")
	if got := date.Format(ImportDateLayout); got != "15/03/2025" {
		t.Errorf("expected 15/03/2025, got %s", got)
	}
	if got := cell(t, out, 0, "Amount"); got != "12.5" {
		t.Errorf("expected amount 12.5, got %s", got)
	}
}

func TestPettyCashAliases(t *testing.T) {
	source := textTable(t, []string{"Date", "GL Code"}, []string{"01/02/2025", "7000"})

	out, err := PettyCash(source, schema.Aliases{"Account": {"GL Code"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cell(t, out, 0, "Account"); got != "7000" {
		t.Errorf("expected aliased account 7000, got %q", got)
	}
	if v, _ := out.Cell(0, "Description"); v.Kind() != table.KindString {
		t.Errorf("expected missing description to default to text, got %v", v.Kind())
	}
}

func TestPettyCashDateAlias(t *testing.T) {
	source := textTable(t, []string{"Transaction Date", "description", "amount_paid"},
		[]string{"01/02/2025", "Stamps", "12.5"},
		[]string{"Total", "", "12.5"},
	)

	out, err := PettyCash(source, schema.Aliases{"TxDate": {"Transaction Date"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected the aliased date column to filter to 1 row, got %d", out.Len())
	}
	date, _ := out.Cell(0, "TxDate")
	if got := date.Format(ImportDateLayout); got != "01/02/2025" {
		t.Errorf("expected 01/02/2025, got %s", got)
	}
}

func TestPettyCashComputedAliases(t *testing.T) {
	aliases := schema.Aliases{
		"Amount":  {"Paid Out"},
		"IsDebit": {"Money In"},
		"UseTax":  {"Claim VAT"},
		"Module":  {"Ledger"},
	}

	tests := []struct {
		name    string
		row     []string
		amount  string
		isDebit string
		useTax  string
		module  string
	}{
		{"paid", []string{"01/02/2025", "150", "", "yes", "AP"}, "150", "N", "Y", "2"},
		{"received", []string{"02/02/2025", "", "80.456", "no", "ar"}, "80.46", "Y", "N", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := textTable(t, []string{"Date", "Paid Out", "Money In", "Claim VAT", "Ledger"}, tt.row)

			out, err := PettyCash(source, aliases)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := []struct{ column, want string }{
				{"Amount", tt.amount},
				{"IsDebit", tt.isDebit},
				{"UseTax", tt.useTax},
				{"Module", tt.module},
			}
			for _, g := range got {
				if v := cell(t, out, 0, g.column); v != g.want {
					t.Errorf("%s: expected %q, got %q", g.column, g.want, v)
				}
			}
		})
	}
}
