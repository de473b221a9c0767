package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-backoffice-converter/cmd/backoffice/config"
	"golang-backoffice-converter/internal/features"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

// resetViper gives each test the defaults of a fresh run
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	settings = nil
	t.Cleanup(viper.Reset)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

func testCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func expectCategory(t *testing.T, err error, category errors.ErrorCategory) {
	t.Helper()
	ce, ok := errors.AsConverterError(err)
	if !ok {
		t.Fatalf("expected converter error, got %v", err)
	}
	if ce.Category != category {
		t.Errorf("expected category %s, got %s (%v)", category, ce.Category, err)
	}
}

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := writeTestFile(t, tmpDir, "valid.csv", "a,b\n")

	tests := []struct {
		name     string
		filePath string
		category errors.ErrorCategory
	}{
		{"valid file", validFile, ""},
		{"empty path", "", errors.CategoryConfiguration},
		{"non-existent file", filepath.Join(tmpDir, "missing.csv"), errors.CategoryFile},
		{"directory instead of file", tmpDir, errors.CategoryFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "input")
			if tt.category == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			expectCategory(t, err, tt.category)
		})
	}
}

func TestDefaultOutput(t *testing.T) {
	got := defaultOutput(filepath.Join("in", "petty.xlsx"), "petty_import.csv")
	if want := filepath.Join("in", "petty_import.csv"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCompareCommand(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()

	evolution := writeTestFile(t, tmpDir, "evolution.csv", strings.Join([]string{
		"Date,Reference,Description,Debit,Credit,Extra",
		`31/01/2025,000123,00Fuel,"R 1,000.00",,a`,
		"01/02/2025,456.0,Taxi,50,,b",
	}, "\n"))
	recon := writeTestFile(t, tmpDir, "recon.csv", strings.Join([]string{
		"Date,Reference,Description,Debit,Credit,Extra",
		"2025-01-31,123,Fuel,1000,0,c",
		"2025-01-31,123,Fuel,1000,0,d",
	}, "\n"))
	missing := filepath.Join(tmpDir, "not_on_recon.csv")

	viper.Set("compare.evolution", evolution)
	viper.Set("compare.recon", recon)
	viper.Set("compare.columns", 5)
	viper.Set("compare.format", "json")
	viper.Set("compare.export_a", missing)

	cmd, out, errOut := testCommand()
	if err := validateCompareFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := runCompare(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report struct {
		Summary struct {
			OnlyInA int `json:"only_in_a"`
			OnlyInB int `json:"only_in_b"`
			Matched int `json:"matched"`
		} `json:"summary"`
		OnlyInA []map[string]string `json:"only_in_a"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, out.String())
	}
	if report.Summary.Matched != 1 || report.Summary.OnlyInA != 1 || report.Summary.OnlyInB != 1 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
	if len(report.OnlyInA) != 1 || report.OnlyInA[0]["Description"] != "Taxi" {
		t.Errorf("expected Taxi not on recon, got %v", report.OnlyInA)
	}

	data, err := os.ReadFile(missing)
	if err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if !strings.HasPrefix(string(data), "Date,Reference,Description,Debit,Credit\n") || !strings.Contains(string(data), "Taxi") {
		t.Errorf("unexpected export content %q", data)
	}
	if !strings.Contains(errOut.String(), "Wrote 1 rows to "+missing) {
		t.Errorf("expected export message, got %q", errOut.String())
	}
}

func TestCompareExportsAllOrNothing(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()

	evolution := writeTestFile(t, tmpDir, "evolution.csv", "Reference,Debit\n1,10\n2,20\n")
	recon := writeTestFile(t, tmpDir, "recon.csv", "Reference,Debit\n1,10\n3,30\n")
	exportA := filepath.Join(tmpDir, "not_on_recon.csv")

	viper.Set("compare.evolution", evolution)
	viper.Set("compare.recon", recon)
	viper.Set("compare.columns", 2)
	viper.Set("compare.export_a", exportA)
	viper.Set("compare.export_b", filepath.Join(tmpDir, "missing", "twice.csv"))

	cmd, _, _ := testCommand()
	if err := validateCompareFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	expectCategory(t, runCompare(cmd, nil), errors.CategoryFile)

	if _, err := os.Stat(exportA); !os.IsNotExist(err) {
		t.Errorf("expected %s not to be written when the other export fails", exportA)
	}
}

func TestValidateCompareFlags(t *testing.T) {
	tmpDir := t.TempDir()
	file := writeTestFile(t, tmpDir, "a.csv", "a\n1\n")

	tests := []struct {
		name      string
		evolution string
		recon     string
		columns   int
		category  errors.ErrorCategory
	}{
		{"valid", file, file, 9, ""},
		{"missing evolution", "", file, 9, errors.CategoryConfiguration},
		{"recon not found", file, filepath.Join(tmpDir, "nope.csv"), 9, errors.CategoryFile},
		{"too many columns", file, file, 51, errors.CategoryConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set("compare.evolution", tt.evolution)
			viper.Set("compare.recon", tt.recon)
			viper.Set("compare.columns", tt.columns)

			err := validateCompareFlags(&cobra.Command{}, nil)
			if tt.category == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			expectCategory(t, err, tt.category)
		})
	}
}

func TestPettyCommand(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()

	input := writeTestFile(t, tmpDir, "petty.csv", strings.Join([]string{
		"Petty Cash Template,,,,",
		"Branch,,,,",
		",,,,",
		"Date,Description,Reference,Account,Amount_Paid",
		"dd/mm/yyyy,text,text,text,number",
		"example,,,,",
		"15/03/2025,Stamps,,9000,12.5",
		"not a date,Ignored,,9000,99",
	}, "\n"))
	viper.Set("petty.input", input)

	cmd, out, _ := testCommand()
	if err := validatePettyFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := runPetty(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, features.PettyOutputName+".csv"))
	if err != nil {
		t.Fatalf("expected default output file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\xef\xbb\xbf")) {
		t.Error("expected petty import to start with a BOM")
	}
	if !strings.Contains(string(data), "15/03/2025") || strings.Contains(string(data), "Ignored") {
		t.Errorf("unexpected output %q", data)
	}
	if !strings.Contains(out.String(), "Total amount: 12.50") {
		t.Errorf("expected total in output, got %q", out.String())
	}
}

func TestDepositCommand(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()

	input := writeTestFile(t, tmpDir, "deposits.csv", strings.Join([]string{
		"Date,Reference 2,Code,Reference,Description,Credit",
		`31/01/2025,x,AB,123.0,FNB APP PAYMENT FROM JOHN SMITH,"1,500.00"`,
	}, "\n"))
	output := filepath.Join(tmpDir, "IMPORT.csv")

	viper.Set("deposit.input", input)
	viper.Set("deposit.output", output)

	cmd, out, _ := testCommand()
	if err := validateDepositFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := runDeposit(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if bytes.HasPrefix(data, []byte("\xef\xbb\xbf")) {
		t.Error("expected deposit import without BOM")
	}
	for _, want := range []string{"31/01/2025", "JOHN SMITH", "AB123", "1500", features.DepositAccount} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected output to contain %q, got %q", want, data)
		}
	}
	if !strings.Contains(out.String(), "Wrote 1 rows") {
		t.Errorf("unexpected command output %q", out.String())
	}
}

func TestDepositCommandMissingColumn(t *testing.T) {
	resetViper(t)
	input := writeTestFile(t, t.TempDir(), "deposits.csv", "Date,Description,Credit\n31/01/2025,x,10\n")
	viper.Set("deposit.input", input)

	cmd, _, _ := testCommand()
	if err := validateDepositFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	err := runDeposit(cmd, nil)
	expectCategory(t, err, errors.CategorySchema)

	entries, _ := os.ReadDir(filepath.Dir(input))
	if len(entries) != 1 {
		t.Errorf("expected no output file on failure, got %d entries", len(entries))
	}
}

func TestValidateEverlyticFlags(t *testing.T) {
	resetViper(t)
	input := writeTestFile(t, t.TempDir(), "everlytic.csv", "a\n")
	viper.Set("everlytic.input", input)
	viper.Set("everlytic.reference", "  ")

	err := validateEverlyticFlags(&cobra.Command{}, nil)
	expectCategory(t, err, errors.CategoryConfiguration)

	viper.Set("everlytic.reference", "SMS0325")
	if err := validateEverlyticFlags(&cobra.Command{}, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBidmasterCommandMissingOptions(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()
	viper.Set("bidmaster.dpr", writeTestFile(t, tmpDir, "dpr.csv", "x\n"))
	viper.Set("bidmaster.cash_recon", writeTestFile(t, tmpDir, "recon.csv", "x\n"))
	viper.Set("bidmaster.location", "bloemfontein")

	cmd, _, _ := testCommand()
	if err := validateBidmasterFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	err := runBidmaster(cmd, nil)
	ce, ok := errors.AsConverterError(err)
	if !ok || ce.Code != errors.CodeMissingConfig {
		t.Fatalf("expected missing config error, got %v", err)
	}
	if !strings.Contains(ce.Suggestion, "--auction-code") {
		t.Errorf("expected suggestion naming the flag, got %q", ce.Suggestion)
	}
}

func TestGLExtractCommand(t *testing.T) {
	resetViper(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")
	if err := os.Mkdir(outDir, 0755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}

	input := writeTestFile(t, tmpDir, "transactions.csv", strings.Join([]string{
		"Account Transactions,,,,,,,",
		"1000/BLM/007,Recoveries,,,,,,",
		`45688,INV1,"Fuel, diesel",,150.5,,150.5,`,
		"01/02/2025,CR1,Refund,,,20,130.5,",
		"Total,,,,150.5,20,,",
		"2000/BLM/005,Sales,,,,,,",
		"02/02/2025,INV9,Other,,10,,,",
	}, "\n"))

	viper.Set("glextract.input", input)
	viper.Set("glextract.date", "10/02/2025")
	viper.Set("glextract.output_dir", outDir)

	cmd, out, _ := testCommand()
	if err := validateGLExtractFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := runGLExtract(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Found 3 transactions, 2 on recovery ledgers") {
		t.Errorf("unexpected command output %q", out.String())
	}

	customer, err := os.ReadFile(filepath.Join(outDir, features.CustomerOutputName))
	if err != nil {
		t.Fatalf("expected customer file: %v", err)
	}
	if !strings.HasPrefix(string(customer), "DOCTYPE,ACCOUNTID,") || !strings.Contains(string(customer), "10/02/2025") {
		t.Errorf("unexpected customer file %q", customer)
	}
	if _, err := os.Stat(filepath.Join(outDir, features.SupplierOutputName)); err != nil {
		t.Errorf("expected supplier file: %v", err)
	}
}

func TestGLExtractInvalidDate(t *testing.T) {
	resetViper(t)
	viper.Set("glextract.input", writeTestFile(t, t.TempDir(), "t.csv", "a\n"))
	viper.Set("glextract.date", "2025-02-10")

	cmd, _, _ := testCommand()
	if err := validateGLExtractFlags(cmd, nil); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	expectCategory(t, runGLExtract(cmd, nil), errors.CategoryConfiguration)
}

func TestSchemaCommand(t *testing.T) {
	t.Run("one schema", func(t *testing.T) {
		cmd, out, _ := testCommand()
		if err := runSchema(cmd, []string{"petty-cash"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"name: petty-cash", "name: TxDate", "kind: copy"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("all schemas", func(t *testing.T) {
		cmd, out, _ := testCommand()
		if err := runSchema(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range features.SchemaNames() {
			if !strings.Contains(out.String(), "name: "+name+"\n") {
				t.Errorf("expected schema %s in output", name)
			}
		}
	})

	t.Run("unknown schema", func(t *testing.T) {
		cmd, _, _ := testCommand()
		err := runSchema(cmd, []string{"petty-csh"})
		ce, ok := errors.AsConverterError(err)
		if !ok || !strings.Contains(ce.Suggestion, "petty-cash") {
			t.Errorf("expected suggestion for petty-cash, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "backoffice "+version) || !strings.Contains(out.String(), "go:") {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText string
	}{
		{"nil", nil, 0, ""},
		{"file not found", errors.FileError(errors.CodeFileNotFound, "a.csv", os.ErrNotExist), 2, "file not found: a.csv"},
		{"missing column", errors.RequiredColumnMissing("Date", nil, []string{"Datum"}), 3, "required column 'Date' is absent"},
		{"configuration", errors.ConfigurationError(errors.CodeMissingConfig, "reference", nil, nil), 4, "Configuration error help"},
		{"generic not exist", &os.PathError{Op: "open", Path: "x.csv", Err: syscall.ENOENT}, 2, "File not found"},
		{"generic", fmt.Errorf("boom"), 1, "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := &CLIErrorHandler{logger: logger.GetGlobalLogger(), out: &out}

			if code := h.HandleError(tt.err); code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			if !strings.Contains(out.String(), tt.wantText) {
				t.Errorf("expected output to contain %q, got %q", tt.wantText, out.String())
			}
		})
	}
}
