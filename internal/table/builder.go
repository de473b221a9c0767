package table

import (
	"fmt"
	"strings"
)

// Builder accumulates rows for a new table
type Builder struct {
	columns []string
	rows    []Row
	err     error
}

// NewBuilder starts a table with the given columns
func NewBuilder(columns ...string) *Builder {
	return &Builder{columns: columns}
}

// Add appends a row of values
func (b *Builder) Add(values ...Value) *Builder {
	if b.err != nil {
		return b
	}
	if len(values) != len(b.columns) {
		b.err = fmt.Errorf("row %d has %d cells, expected %d", len(b.rows), len(values), len(b.columns))
		return b
	}
	b.rows = append(b.rows, Row(values))
	return b
}

// AddText appends a row of text cells; empty or whitespace-only strings
// become absent cells.
func (b *Builder) AddText(values ...string) *Builder {
	row := make([]Value, len(values))
	for i, s := range values {
		if strings.TrimSpace(s) == "" {
			row[i] = Absent()
		} else {
			row[i] = Text(s)
		}
	}
	return b.Add(row...)
}

// Len returns the number of rows added so far
func (b *Builder) Len() int {
	return len(b.rows)
}

// Build returns the table or the first error seen
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.columns, b.rows...)
}
