package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/internal/reporter"
	apperrors "golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(newViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Log.Level != logger.InfoLevel {
		t.Errorf("expected info level, got %s", s.Log.Level)
	}
	if s.Compare.Columns != features.DefaultCompareColumns {
		t.Errorf("expected %d columns, got %d", features.DefaultCompareColumns, s.Compare.Columns)
	}
	if s.OutputFormat() != reporter.FileCSV {
		t.Errorf("expected csv output, got %s", s.OutputFormat())
	}

	report := s.ReportConfig()
	if report.Format != reporter.FormatConsole || report.LabelA != features.LabelNotOnRecon || report.LabelB != features.LabelTwiceOnRecon {
		t.Errorf("unexpected report config %+v", report)
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	content := `
log:
  level: debug
  format: json
output:
  format: xlsx
compare:
  columns: 12
  format: json
petty:
  aliases:
    Account: ["GL Code", "Ledger"]
bidmaster:
  location: witbank
  department: Witbank Mining
  commission: "10"
`
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	s, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Log.Level != logger.DebugLevel || s.Log.Format != logger.JSONFormat {
		t.Errorf("unexpected log config %+v", s.Log)
	}
	if s.OutputFormat() != reporter.FileXLSX {
		t.Errorf("expected xlsx output, got %s", s.OutputFormat())
	}
	if s.Compare.Columns != 12 || s.ReportConfig().Format != reporter.FormatJSON {
		t.Errorf("unexpected compare settings %+v", s.Compare)
	}

	aliases, err := s.PettyAliases()
	if err != nil {
		t.Fatalf("unexpected alias error: %v", err)
	}
	if got := aliases["Account"]; len(got) != 2 || got[0] != "GL Code" {
		t.Errorf("expected aliases keyed by Account, got %v", aliases)
	}

	opts, err := s.BidmasterOptions("", "245", "", "", "14/03/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Location != features.Witbank || opts.DepartmentCode != "005" || opts.Commission.String() != "10" {
		t.Errorf("expected configured auction defaults, got %+v", opts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"bad log level", "log.level", "loud"},
		{"bad log format", "log.format", "xml"},
		{"bad output format", "output.format", "pdf"},
		{"too many columns", "compare.columns", 51},
		{"zero columns", "compare.columns", 0},
		{"bad report format", "compare.format", "html"},
		{"negative preview", "compare.preview_rows", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			ce, ok := apperrors.AsConverterError(err)
			if !ok || ce.Category != apperrors.CategoryConfiguration {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestPettyAliasesUnknownColumn(t *testing.T) {
	s := &Settings{Petty: PettySettings{Aliases: map[string][]string{"acount": {"GL"}}}}
	if _, err := s.PettyAliases(); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestPettyAliasesColumnKinds(t *testing.T) {
	tests := []struct {
		key     string
		column  string
		wantErr bool
	}{
		{"txdate", "TxDate", false},
		{"amount", "Amount", false},
		{"usetax", "UseTax", false},
		{"project", "", true},
		{"taxamount", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := &Settings{Petty: PettySettings{Aliases: map[string][]string{tt.key: {"Source"}}}}
			aliases, err := s.PettyAliases()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for constant column %s", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := aliases[tt.column]; len(got) != 1 || got[0] != "Source" {
				t.Errorf("expected aliases keyed by %s, got %v", tt.column, aliases)
			}
		})
	}
}

func TestBidmasterOptionsMissing(t *testing.T) {
	s := &Settings{}
	_, err := s.BidmasterOptions("bloemfontein", "245", "Bfn Mining", "", "14/03/2025")
	ce, ok := apperrors.AsConverterError(err)
	if !ok || ce.Code != apperrors.CodeMissingConfig {
		t.Fatalf("expected missing config error, got %v", err)
	}
	if !strings.Contains(ce.Suggestion, "--commission") {
		t.Errorf("expected suggestion to name the flag, got %q", ce.Suggestion)
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 6, 30, 17, 45, 0, 0, time.UTC)

	day, err := ParseDay("", now)
	if err != nil || day.Format("2006-01-02 15:04") != "2025-06-30 00:00" {
		t.Errorf("expected today at midnight, got %v (%v)", day, err)
	}

	day, err = ParseDay(" 01/02/2025 ", now)
	if err != nil || day.Format("2006-01-02") != "2025-02-01" {
		t.Errorf("expected 2025-02-01, got %v (%v)", day, err)
	}

	if _, err := ParseDay("2025-02-01", now); err == nil {
		t.Error("expected error for ISO date")
	}
}
