package features

import (
	"testing"

	"golang-backoffice-converter/internal/table"
)

// textTable builds a table of text cells; empty strings become absent cells
func textTable(t *testing.T, columns []string, rows ...[]string) *table.Table {
	t.Helper()
	b := table.NewBuilder(columns...)
	for _, r := range rows {
		b.AddText(r...)
	}
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return tbl
}

// cell returns the canonical text of a cell, failing on unknown columns
func cell(t *testing.T, tbl *table.Table, row int, column string) string {
	t.Helper()
	v, ok := tbl.Cell(row, column)
	if !ok {
		t.Fatalf("no cell %s at row %d", column, row)
	}
	return v.String()
}

func expectColumns(t *testing.T, tbl *table.Table, want []string) {
	t.Helper()
	got := tbl.Columns()
	if len(got) != len(want) {
		t.Fatalf("expected %d columns, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
