// Package reporter renders reconciliation results for the terminal and writes
// converted tables to CSV and XLSX files.
//
// Supported report formats:
//   - Console: counts plus a preview of the unmatched rows of each side
//   - JSON: the counts and the full unmatched rows for programmatic use
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{
//		Format:      reporter.FormatConsole,
//		PreviewRows: 10,
//		LabelA:      "not on recon",
//		LabelB:      "twice on recon",
//	})
//	err = generator.GenerateReport(result, os.Stdout)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"golang-backoffice-converter/internal/reconciler"
	tbl "golang-backoffice-converter/internal/table"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// PreviewRows caps the unmatched rows printed per side on the console.
	// Zero prints counts only.
	PreviewRows int `json:"preview_rows"`

	// Headings of the two unmatched sections
	LabelA string `json:"label_a"`
	LabelB string `json:"label_b"`

	// DateLayout renders date cells
	DateLayout string `json:"date_layout"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:      FormatConsole,
		PreviewRows: 10,
		LabelA:      "Only in A",
		LabelB:      "Only in B",
		DateLayout:  tbl.DateLayout,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("preview rows cannot be negative, got %d", c.PreviewRows)
	}
	return nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true)
)

// ReportGenerator renders reconciliation results
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	if config.DateLayout == "" {
		config.DateLayout = tbl.DateLayout
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the report for result to writer
func (rg *ReportGenerator) GenerateReport(result *reconciler.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *reconciler.Result, writer io.Writer) error {
	summary := result.Summary()

	fmt.Fprintln(writer, titleStyle.Render("RECONCILIATION REPORT"))
	fmt.Fprintf(writer, "Generated: %s\n", summary.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Processing Duration: %v\n", summary.Duration)

	fmt.Fprintln(writer, sectionStyle.Render("=== SUMMARY ==="))
	fmt.Fprintf(writer, "Rows in A:        %d\n", summary.RowsA)
	fmt.Fprintf(writer, "Rows in B:        %d\n", summary.RowsB)
	fmt.Fprintf(writer, "Matched:          %d\n", summary.Matched)
	fmt.Fprintf(writer, "%-17s %d\n", rg.config.LabelA+":", summary.OnlyInA)
	fmt.Fprintf(writer, "%-17s %d\n", rg.config.LabelB+":", summary.OnlyInB)

	if summary.Balanced {
		fmt.Fprintln(writer, okStyle.Render("Both sides balance"))
		return nil
	}
	fmt.Fprintln(writer, warnStyle.Render("Differences found"))

	rg.printPreview(writer, rg.config.LabelA, result.OnlyInA)
	rg.printPreview(writer, rg.config.LabelB, result.OnlyInB)
	return nil
}

func (rg *ReportGenerator) printPreview(writer io.Writer, label string, rows *tbl.Table) {
	if rows.Len() == 0 || rg.config.PreviewRows == 0 {
		return
	}

	fmt.Fprintln(writer, sectionStyle.Render(fmt.Sprintf("=== %s (%d) ===", label, rows.Len())))
	fmt.Fprintln(writer, RenderTable(rows.Head(rg.config.PreviewRows), rg.config.DateLayout))

	if rows.Len() > rg.config.PreviewRows {
		fmt.Fprintf(writer, "  ... and %d more\n", rows.Len()-rg.config.PreviewRows)
	}
}

// RenderTable draws t as a bordered text table
func RenderTable(t *tbl.Table, dateLayout string) string {
	records := t.FormatRecords(func(_ int, v tbl.Value) string { return v.Format(dateLayout) })
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(records[0]...).
		Rows(records[1:]...).
		String()
}

type jsonReport struct {
	Summary reconciler.Summary  `json:"summary"`
	OnlyInA []map[string]string `json:"only_in_a"`
	OnlyInB []map[string]string `json:"only_in_b"`
}

func (rg *ReportGenerator) generateJSONReport(result *reconciler.Result, writer io.Writer) error {
	report := jsonReport{
		Summary: result.Summary(),
		OnlyInA: rowMaps(result.OnlyInA, rg.config.DateLayout),
		OnlyInB: rowMaps(result.OnlyInB, rg.config.DateLayout),
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func rowMaps(t *tbl.Table, dateLayout string) []map[string]string {
	records := t.FormatRecords(func(_ int, v tbl.Value) string { return v.Format(dateLayout) })
	out := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		m := make(map[string]string, len(rec))
		for i, column := range records[0] {
			m[column] = rec[i]
		}
		out = append(out, m)
	}
	return out
}
