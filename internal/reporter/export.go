package reporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	tbl "golang-backoffice-converter/internal/table"
)

// FileFormat is the container format of a written table
type FileFormat string

const (
	FileCSV  FileFormat = "csv"
	FileXLSX FileFormat = "xlsx"
)

// ParseFileFormat accepts "csv" or "xlsx"
func ParseFileFormat(s string) (FileFormat, error) {
	switch FileFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FileCSV:
		return FileCSV, nil
	case FileXLSX:
		return FileXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file format %q (use csv or xlsx)", s)
	}
}

// FormatForPath picks the format from the extension of path, falling back
// to CSV.
func FormatForPath(path string) FileFormat {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FileXLSX
	}
	return FileCSV
}

// ExportConfig controls how a table is written
type ExportConfig struct {
	Format FileFormat
	// BOM prefixes CSV output with a UTF-8 byte order mark
	BOM bool
	// DateLayout renders date cells; empty means yyyy-mm-dd
	DateLayout string
	// Delimiter of CSV output; zero means comma
	Delimiter rune
	// SheetName of XLSX output; empty means Sheet1
	SheetName string
}

// Render produces the full file content of t in memory
func Render(t *tbl.Table, cfg ExportConfig) ([]byte, error) {
	switch cfg.Format {
	case FileCSV, "":
		return renderCSV(t, cfg)
	case FileXLSX:
		return renderXLSX(t, cfg)
	default:
		return nil, fmt.Errorf("unsupported file format %q", cfg.Format)
	}
}

func dateLayout(cfg ExportConfig) string {
	if cfg.DateLayout == "" {
		return tbl.DateLayout
	}
	return cfg.DateLayout
}

func renderCSV(t *tbl.Table, cfg ExportConfig) ([]byte, error) {
	var buf bytes.Buffer

	var out io.WriteCloser = nopCloser{&buf}
	if cfg.BOM {
		out = transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
	}

	w := csv.NewWriter(out)
	if cfg.Delimiter != 0 {
		w.Comma = cfg.Delimiter
	}

	layout := dateLayout(cfg)
	records := t.FormatRecords(func(_ int, v tbl.Value) string { return v.Format(layout) })
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return buf.Bytes(), nil
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func renderXLSX(t *tbl.Table, cfg ExportConfig) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if cfg.SheetName != "" && cfg.SheetName != sheet {
		if err := f.SetSheetName(sheet, cfg.SheetName); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = cfg.SheetName
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, t.Width())
	for i, name := range t.Columns() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	layout := dateLayout(cfg)
	for i, r := range t.Rows() {
		cells := make([]interface{}, len(r))
		for j, v := range r {
			cells[j] = cellValue(v, layout)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue keeps numbers numeric; dates are written as text in layout
func cellValue(v tbl.Value, layout string) interface{} {
	switch v.Kind() {
	case tbl.KindAbsent:
		return nil
	case tbl.KindNumber:
		d, _ := v.Decimal()
		return d.InexactFloat64()
	case tbl.KindDate:
		return v.Format(layout)
	default:
		return v.String()
	}
}
