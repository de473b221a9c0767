package features

import (
	"context"
	"strings"
	"testing"

	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/schema"
)

var everlyticSource = []string{"Send Date", "Message Subject", "SMSs credit used", "Sms Sent"}

func TestDropBanners(t *testing.T) {
	source := textTable(t, everlyticSource,
		[]string{"2025-01-31 10:00:00", "Promo", "100", "100"},
		[]string{"Bloemfontein", "", "", ""},
		[]string{"send date", "Message Subject", "SMSs credit used", ""},
		[]string{"", "", "", ""},
		[]string{"01/02/2025", "Reminder", "7", "7"},
	)

	out, banners, repeats := DropBanners(source)
	if banners != 1 {
		t.Errorf("expected 1 banner, got %d", banners)
	}
	if repeats != 1 {
		t.Errorf("expected 1 repeated header, got %d", repeats)
	}
	if out.Len() != 3 {
		t.Errorf("expected 3 remaining rows, got %d", out.Len())
	}
}

func TestEverlytic(t *testing.T) {
	source := textTable(t, everlyticSource,
		[]string{"2025-01-31 10:00:00", "Promo", "100", "100"},
		[]string{"Bloemfontein", "", "", ""},
		[]string{"Send Date", "Message Subject", "SMSs credit used", "Sms Sent"},
		[]string{"01/02/2025", "Reminder", "7", "7"},
	)

	result, err := Everlytic(source, "SMS0125")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Banners != 1 || result.RepeatedHeaders != 1 {
		t.Errorf("expected 1 banner and 1 repeated header, got %d and %d", result.Banners, result.RepeatedHeaders)
	}

	out := result.Table
	expectColumns(t, out, schema.AccountingImportColumns[:11])
	if out.Len() != 4 {
		t.Fatalf("expected 2 base and 2 contra rows, got %d", out.Len())
	}

	tests := []struct {
		row    int
		column string
		want   string
	}{
		{0, "TxDate", "2025-01-31"},
		{0, "Description", "Everlytic - Promo"},
		{0, "Reference", "SMS0125"},
		{0, "Amount", "14"},
		{0, "TaxAmount", "0"},
		{0, "Account", EverlyticAccount},
		{0, "IsDebit", "N"},
		{1, "Amount", "0.98"},
		{2, "Amount", "14"},
		{2, "Account", EverlyticContraAcct},
		{2, "IsDebit", "Y"},
		{3, "Description", "Everlytic - Reminder"},
		{3, "IsDebit", "Y"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := cell(t, out, tt.row, tt.column); got != tt.want {
				t.Errorf("row %d %s: expected %q, got %q", tt.row, tt.column, tt.want, got)
			}
		})
	}
}

func TestEverlyticFromReport(t *testing.T) {
	report := strings.Join([]string{
		"Everlytic SMS Report,,,",
		"Send Date,Message Subject,SMSs credit used,Sms Sent",
		"Account: Aucor,,,",
		"05/02/2025,Auction alert,50,50",
	}, "\n")

	source, _, err := parsers.NewLoader(nil).LoadReader(context.Background(), strings.NewReader(report), parsers.FormatCSV, EverlyticLoadConfig())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	result, err := Everlytic(source, "SMS0225")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", result.Table.Len())
	}
	if got := cell(t, result.Table, 0, "Amount"); got != "7" {
		t.Errorf("expected amount 7, got %s", got)
	}
}
