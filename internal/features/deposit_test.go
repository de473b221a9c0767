package features

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "golang-backoffice-converter/pkg/errors"
)

func TestStripBankPhrases(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FNB APP PAYMENT FROM JOHN SMITH", "JOHN SMITH"},
		{"ACB CREDIT CAPITEC J DOE", "J DOE"},
		{"IMMEDIATE TRF CR CAPITEC ACME", "ACME"},
		{"  PLAIN TRANSFER ", "PLAIN TRANSFER"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StripBankPhrases(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDepositReference(t *testing.T) {
	tests := []struct {
		code, ref string
		want      string
	}{
		{"AB", "123.0", "AB123"},
		{"AB", " 456 ", "AB456"},
		{"", "789.0", "789"},
		{"X", "10.05", "X10.05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DepositReference(tt.code, tt.ref); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDepositImport(t *testing.T) {
	source := textTable(t, []string{"Date", "Reference 2", "Code", "Reference", "Description", "Credit"},
		[]string{"31/01/2025", "x", "AB", "123.0", "FNB APP PAYMENT FROM JOHN SMITH", "1,500.00"},
		[]string{"01/02/2025", "", "CD", "77", "ACB CREDIT CAPITEC J DOE", "R 250.5"},
	)

	out, err := DepositImport(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 2 || out.Width() != 30 {
		t.Fatalf("expected 2x30 table, got %dx%d", out.Len(), out.Width())
	}

	tests := []struct {
		row    int
		column string
		want   string
	}{
		{0, "TxDate", "2025-01-31"},
		{0, "Description", "JOHN SMITH"},
		{0, "Reference", "AB123"},
		{0, "Amount", "1500"},
		{0, "UseTax", "N"},
		{0, "Account", DepositAccount},
		{0, "IsDebit", "Y"},
		{1, "Description", "J DOE"},
		{1, "Reference", "CD77"},
		{1, "Amount", "250.5"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := cell(t, out, tt.row, tt.column); got != tt.want {
				t.Errorf("row %d %s: expected %q, got %q", tt.row, tt.column, tt.want, got)
			}
		})
	}
}

func TestDepositImportMissingColumn(t *testing.T) {
	source := textTable(t, []string{"Date", "Reference", "Description", "Credit"},
		[]string{"31/01/2025", "1", "x", "10"},
	)

	_, err := DepositImport(source)
	if !errors.Is(err, apperrors.ErrRequiredColumnMissing) {
		t.Fatalf("expected required column missing, got %v", err)
	}
	if !strings.Contains(err.Error(), "Code") {
		t.Errorf("expected error to name the Code column, got %v", err)
	}
}

func TestDepositOutputName(t *testing.T) {
	got := DepositOutputName(time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC))
	if got != "IMPORT_2025-03-04.csv" {
		t.Errorf("expected IMPORT_2025-03-04.csv, got %s", got)
	}
}
