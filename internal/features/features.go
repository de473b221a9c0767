// Package features holds the back-office converters. Each converter pairs
// the fixed layout of its input files (header offset, banner rows, encoding,
// column cap) with a declared output schema and, for invoice imports, the
// sibling line tables derived from the base lines.
//
// Converters are pure: they take loaded tables and return new tables. Loading
// and writing files is left to the caller.
package features

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
)

// ImportDateLayout is the dd/mm/yyyy form the accounting imports expect
const ImportDateLayout = "02/01/2006"

// ExportConfig returns the output settings shared by the import files
func ExportConfig(format reporter.FileFormat, bom bool) reporter.ExportConfig {
	if format == "" {
		format = reporter.FileCSV
	}
	return reporter.ExportConfig{
		Format:     format,
		BOM:        bom && format == reporter.FileCSV,
		DateLayout: ImportDateLayout,
	}
}

// requireColumns fails on the first name the table does not have
func requireColumns(t *table.Table, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return normalizer.MissingColumn(t, name, []string{name})
		}
	}
	return nil
}

// amount reads the first present candidate as money. The flag is false when
// no candidate column exists or the cell is blank.
func amount(r schema.Record, names ...string) (decimal.Decimal, bool) {
	v, ok := r.Get(names...)
	if !ok || v.IsBlank() {
		return decimal.Zero, false
	}
	d, _ := normalizer.Value(v, normalizer.Currency).Decimal()
	return d, true
}

// plainNumber parses s after removing spaces and thousands commas. Blank or
// unreadable input is zero.
func plainNumber(s string) decimal.Decimal {
	cleaned := strings.NewReplacer(" ", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
