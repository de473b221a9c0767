// Package table holds the immutable tabular data passed between pipeline
// stages. Every operation returns a new Table; callers never observe a
// table changing underneath them.
package table

import (
	"fmt"
	"strings"

	"github.com/schollz/closestmatch"
)

// Row is a positional list of cells aligned with the table columns
type Row []Value

// Clone returns a copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// IsBlank reports whether every cell of the row is blank
func (r Row) IsBlank() bool {
	for _, v := range r {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// Key returns a hashable form of the whole row
func (r Row) Key() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.Key()
	}
	return strings.Join(parts, "\x1f")
}

// Table is an ordered list of rows over uniquely named columns
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates a table. It fails on duplicate column names or rows whose
// width differs from the column count.
func New(columns []string, rows ...Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c)
		}
		index[c] = i
	}

	owned := make([]Row, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(r), len(columns))
		}
		owned[i] = r.Clone()
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Table{columns: cols, index: index, rows: owned}, nil
}

// MustNew is New for declared, known-good inputs; it panics on error.
func MustNew(columns []string, rows ...Row) *Table {
	t, err := New(columns, rows...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with the given columns and no rows
func Empty(columns ...string) *Table {
	return MustNew(columns)
}

// wrap builds a table from rows the caller has already copied
func (t *Table) wrap(rows []Row) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// Row returns a copy of row i
func (t *Table) Row(i int) Row {
	return t.rows[i].Clone()
}

// Rows returns copies of all rows
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// ColumnIndex resolves a column by exact name, then by case-insensitive
// trimmed name. It returns -1 when the column does not exist.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for i, c := range t.columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name resolves to a column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value of the named column in row i
func (t *Table) Cell(i int, column string) (Value, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[i][idx], true
}

// Column returns a copy of every value of the named column
func (t *Table) Column(name string) ([]Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx]
	}
	return out, true
}

// WithColumn replaces the named column with values, or appends it when the
// table has no such column.
func (t *Table) WithColumn(name string, values []Value) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}

	idx := t.ColumnIndex(name)
	columns := t.Columns()
	if idx < 0 {
		columns = append(columns, name)
	}

	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := r.Clone()
		if idx < 0 {
			row = append(row, values[i])
		} else {
			row[idx] = values[i]
		}
		rows[i] = row
	}
	return New(columns, rows...)
}

// MapColumn rewrites every cell of the named column with fn
func (t *Table) MapColumn(name string, fn func(Value) Value) (*Table, error) {
	values, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	for i, v := range values {
		values[i] = fn(v)
	}
	return t.WithColumn(t.columns[t.ColumnIndex(name)], values)
}

// Filter keeps the rows for which keep returns true, in order
func (t *Table) Filter(keep func(r Row) bool) *Table {
	var rows []Row
	for _, r := range t.rows {
		if keep(r) {
			rows = append(rows, r.Clone())
		}
	}
	return t.wrap(rows)
}

// MapRows rewrites every row with fn. The returned rows must keep the width.
func (t *Table) MapRows(fn func(i int, r Row) Row) (*Table, error) {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = fn(i, r.Clone())
	}
	return New(t.columns, rows...)
}

// Select projects the table onto the given columns, in the given order
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found", c)
		}
		names[i] = t.columns[idx[i]]
	}

	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(idx))
		for j, k := range idx {
			row[j] = r[k]
		}
		rows[i] = row
	}
	return New(names, rows...)
}

// Rename returns a table whose columns are renamed by fn
func (t *Table) Rename(fn func(string) string) (*Table, error) {
	columns := make([]string, len(t.columns))
	for i, c := range t.columns {
		columns[i] = fn(c)
	}
	return New(columns, t.rows...)
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rows[i] = t.rows[i].Clone()
	}
	return t.wrap(rows)
}

// Concat appends the rows of others after the rows of t. All tables must be
// schema compatible.
func (t *Table) Concat(others ...*Table) (*Table, error) {
	rows := t.Rows()
	for _, o := range others {
		if !t.SchemaCompatible(o) {
			return nil, fmt.Errorf("cannot concatenate tables with different columns")
		}
		rows = append(rows, o.Rows()...)
	}
	return t.wrap(rows), nil
}

// SchemaCompatible reports whether both tables have identical ordered columns
func (t *Table) SchemaCompatible(o *Table) bool {
	if len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}

// Records renders the header and every row as strings
func (t *Table) Records() [][]string {
	return t.FormatRecords(func(_ int, v Value) string { return v.String() })
}

// FormatRecords renders the header and every row using format per cell
func (t *Table) FormatRecords(format func(col int, v Value) string) [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for _, r := range t.rows {
		rec := make([]string, len(r))
		for i, v := range r {
			rec[i] = format(i, v)
		}
		out = append(out, rec)
	}
	return out
}

// Suggest returns the column name closest to name, or "" when the table has
// no columns.
func (t *Table) Suggest(name string) string {
	return ClosestName(name, t.columns)
}

// ClosestName returns the candidate closest to name
func ClosestName(name string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	lowered := make([]string, len(candidates))
	original := make(map[string]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
		original[lowered[i]] = c
	}
	cm := closestmatch.New(lowered, []int{2, 3})
	return original[cm.Closest(strings.ToLower(name))]
}
