package features

import (
	"testing"
	"time"
)

func glReport(t *testing.T) [][]string {
	t.Helper()
	return [][]string{
		{"Account Transactions", "", "", "", "", "", "", ""},
		{"1000/BLM/007", "Recoveries", "", "", "", "", "", ""},
		{"45688", "INV1", "Fuel, diesel", "", "150.5", "", "150.5", ""},
		{"01/02/2025", "CR1", "Refund 'x'", "", "", "20", "130.5", ""},
		{"Total", "", "", "", "150.5", "20", "", ""},
		{"2000/BLM/005", "Sales", "", "", "", "", "", ""},
		{"02/02/2025", "INV9", "Other", "", "10", "", "", ""},
	}
}

func TestExtractLedger(t *testing.T) {
	report := textTable(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, glReport(t)...)

	ledger, err := ExtractLedger(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectColumns(t, ledger, LedgerColumns)
	if ledger.Len() != 3 {
		t.Fatalf("expected 3 transactions, got %d", ledger.Len())
	}
	if got := cell(t, ledger, 1, "GL"); got != "1000/BLM/007" {
		t.Errorf("expected section 1000/BLM/007, got %q", got)
	}
	if got := cell(t, ledger, 2, "GL"); got != "2000/BLM/005" {
		t.Errorf("expected section 2000/BLM/005, got %q", got)
	}
	if got := cell(t, ledger, 0, "Description"); got != "Fuel, diesel" {
		t.Errorf("expected raw description, got %q", got)
	}
}

func TestTransactionDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"45688", true},
		{"01/02/2025", true},
		{"2025-02-01", true},
		{"150.5", false},
		{"99999", false},
		{"Total", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := transactionDate(tt.input); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGLExtract(t *testing.T) {
	report := textTable(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, glReport(t)...)
	day := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	result, err := GLExtract(report, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transactions != 3 {
		t.Errorf("expected 3 transactions, got %d", result.Transactions)
	}
	expectColumns(t, result.Customer, RecoveryColumns)
	expectColumns(t, result.Supplier, RecoveryColumns)
	if result.Customer.Len() != 2 || result.Supplier.Len() != 2 {
		t.Fatalf("expected 2 recovery lines each, got %d and %d", result.Customer.Len(), result.Supplier.Len())
	}

	customer := []struct {
		row    int
		column string
		want   string
	}{
		{0, "DOCTYPE", "4"},
		{0, "ACCOUNTID", "A008"},
		{0, "CDESCRIPTION", "REC: Fuel diesel"},
		{0, "FQUANTITY", "1"},
		{0, "FUNITPRICEEXCL", "150.5"},
		{0, "ILEDGERACCOUNTID", "1000/BLM/007"},
		{0, "CLINENOTES", ""},
		{1, "CDESCRIPTION", "REC: Refund x"},
		{1, "FQUANTITY", "-1"},
		{1, "FQTYTOPROCESS", "-1"},
		{1, "FUNITPRICEEXCL", "20"},
	}
	for _, tt := range customer {
		t.Run("customer "+tt.column, func(t *testing.T) {
			if got := cell(t, result.Customer, tt.row, tt.column); got != tt.want {
				t.Errorf("row %d %s: expected %q, got %q", tt.row, tt.column, tt.want, got)
			}
		})
	}

	supplier := []struct {
		row    int
		column string
		want   string
	}{
		{0, "DOCTYPE", "5"},
		{0, "ACCOUNTID", "A001"},
		{0, "ORDERNUM", "A001"},
		{0, "DESCRIPTION", "Aucor Bloemfontein"},
		{0, "CDESCRIPTION", "B: Fuel diesel"},
		{1, "FUNITPRICEEXCL", "20"},
	}
	for _, tt := range supplier {
		t.Run("supplier "+tt.column, func(t *testing.T) {
			if got := cell(t, result.Supplier, tt.row, tt.column); got != tt.want {
				t.Errorf("row %d %s: expected %q, got %q", tt.row, tt.column, tt.want, got)
			}
		})
	}

	date, _ := result.Customer.Cell(0, "INVDATE")
	if got := date.Format(ImportDateLayout); got != "10/02/2025" {
		t.Errorf("expected invoice date 10/02/2025, got %s", got)
	}
}
