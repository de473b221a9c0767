// Package schema maps arbitrary source tables onto fixed, declared output
// schemas. A Schema is an ordered list of ColumnSpecs; the mapped table always
// has exactly the declared columns in the declared order.
package schema

import (
	"fmt"
	"strings"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

// SpecKind says how a column is produced
type SpecKind string

const (
	KindCopy     SpecKind = "copy"
	KindConst    SpecKind = "const"
	KindComputed SpecKind = "computed"
)

// Compute evaluates a computed column for one row
type Compute func(r Record) table.Value

// ColumnSpec describes one output column
type ColumnSpec struct {
	Name string
	Kind SpecKind

	// Copy columns: ordered source candidates, optional cleanup rule and an
	// optional default used when no candidate exists or the cell is blank.
	Sources    []string
	Rule       normalizer.Rule
	Default    table.Value
	HasDefault bool

	// Const columns
	Value table.Value

	// Computed columns
	Compute Compute
	Formula string
}

// Copy declares a column copied from the first matching source candidate.
// Without candidates the column name itself is looked up.
func Copy(name string, sources ...string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindCopy, Sources: sources}
}

// Const declares a column holding v on every row
func Const(name string, v table.Value) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindConst, Value: v}
}

// ConstText declares a text column holding s on every row
func ConstText(name, s string) ColumnSpec {
	return Const(name, table.Text(s))
}

// Computed declares a column evaluated per row. formula is a human readable
// description shown by Describe.
func Computed(name, formula string, fn Compute) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindComputed, Compute: fn, Formula: formula}
}

// WithRule sets the cleanup rule of a copy column
func (c ColumnSpec) WithRule(rule normalizer.Rule) ColumnSpec {
	c.Rule = rule
	return c
}

// WithDefault sets the fallback value of a copy column
func (c ColumnSpec) WithDefault(v table.Value) ColumnSpec {
	c.Default = v
	c.HasDefault = true
	return c
}

// Filter designates the column whose invalid rows are dropped before mapping.
// Target names the output column fed by the same source, so the aliases
// configured for it locate the filter column too.
type Filter struct {
	Column string
	Target string
	Rule   normalizer.Rule
}

// Schema is a named, ordered list of column specs
type Schema struct {
	Name    string
	Columns []ColumnSpec
	Filter  *Filter
}

// Aliases maps a target column name to extra source candidates, tried before
// the column's declared sources.
type Aliases map[string][]string

// ColumnNames returns the declared output columns in order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks that the schema can be evaluated
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema."+s.Name, "empty column name", nil)
		}
		if seen[c.Name] {
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema."+s.Name, "duplicate column "+c.Name, nil)
		}
		seen[c.Name] = true

		switch c.Kind {
		case KindCopy:
			if c.Rule != "" && !c.Rule.Valid() {
				return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema."+s.Name+"."+c.Name, string(c.Rule), nil)
			}
		case KindConst:
		case KindComputed:
			if c.Compute == nil {
				return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema."+s.Name+"."+c.Name, "computed column without formula", nil)
			}
		default:
			return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema."+s.Name+"."+c.Name, string(c.Kind), nil)
		}
	}
	return nil
}

// candidates lists the source names tried for a target column
func candidates(spec ColumnSpec, aliases Aliases) []string {
	var out []string
	out = append(out, aliases[spec.Name]...)
	out = append(out, spec.Sources...)
	if len(out) == 0 {
		out = append(out, spec.Name)
	}
	return out
}

// resolve returns the index of the first candidate present in source
func resolve(source *table.Table, names []string) int {
	for _, n := range names {
		if idx := source.ColumnIndex(n); idx >= 0 {
			return idx
		}
	}
	return -1
}

// Map maps source onto sch. Rows whose filter column does not normalize to
// a value are dropped first; then every declared column is evaluated in
// order for every remaining row.
func Map(source *table.Table, sch *Schema, aliases Aliases) (*table.Table, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	filtered, err := applyFilter(source, sch.Filter, aliases)
	if err != nil {
		return nil, err
	}

	copyIndex := make(map[string]int)
	for _, spec := range sch.Columns {
		if spec.Kind != KindCopy {
			continue
		}
		names := candidates(spec, aliases)
		idx := resolve(filtered, names)
		if idx < 0 && !spec.HasDefault {
			return nil, normalizer.MissingColumn(filtered, spec.Name, names)
		}
		copyIndex[spec.Name] = idx
	}

	b := table.NewBuilder(sch.ColumnNames()...)
	for i := 0; i < filtered.Len(); i++ {
		rec := Record{
			source:  filtered,
			row:     filtered.Row(i),
			aliases: aliases,
			out:     make(map[string]table.Value, len(sch.Columns)),
		}

		values := make([]table.Value, len(sch.Columns))
		for j, spec := range sch.Columns {
			var v table.Value
			switch spec.Kind {
			case KindCopy:
				v = copyValue(spec, rec.row, copyIndex[spec.Name])
			case KindConst:
				v = spec.Value
			case KindComputed:
				v = spec.Compute(rec)
			}
			rec.out[spec.Name] = v
			values[j] = v
		}
		b.Add(values...)
	}

	return b.Build()
}

func copyValue(spec ColumnSpec, row table.Row, idx int) table.Value {
	if idx < 0 {
		return spec.Default
	}
	v := row[idx]
	if spec.Rule != "" {
		v = normalizer.Value(v, spec.Rule)
	}
	if spec.HasDefault && v.IsBlank() {
		return spec.Default
	}
	return v
}

func applyFilter(source *table.Table, f *Filter, aliases Aliases) (*table.Table, error) {
	if f == nil {
		return source, nil
	}

	var names []string
	if f.Target != "" {
		names = append(names, aliases[f.Target]...)
	}
	names = append(names, aliases[f.Column]...)
	names = append(names, f.Column)
	idx := resolve(source, names)
	if idx < 0 {
		return nil, normalizer.MissingColumn(source, f.Column, names)
	}

	rule := f.Rule
	if rule == "" {
		rule = normalizer.TrimmedString
	}
	return source.Filter(func(r table.Row) bool {
		return !normalizer.Value(r[idx], rule).IsBlank()
	}), nil
}

// Record is the view of one source row given to computed columns
type Record struct {
	source  *table.Table
	row     table.Row
	aliases Aliases
	out     map[string]table.Value
}

// Get returns the cell of the first candidate column present in the source
func (r Record) Get(names ...string) (table.Value, bool) {
	idx := resolve(r.source, names)
	if idx < 0 {
		return table.Absent(), false
	}
	return r.row[idx], true
}

// Text returns the trimmed text of the first present candidate, or ""
func (r Record) Text(names ...string) string {
	v, _ := r.Get(names...)
	return strings.TrimSpace(v.String())
}

// Has reports whether any candidate column exists in the source
func (r Record) Has(names ...string) bool {
	return resolve(r.source, names) >= 0
}

// Output returns a value already produced for an earlier column of the row
func (r Record) Output(name string) table.Value {
	return r.out[name]
}

// Alias returns the alias candidates of a target column followed by names
func (r Record) Alias(target string, names ...string) []string {
	return append(append([]string{}, r.aliases[target]...), names...)
}

// String implements fmt.Stringer for debugging
func (s *Schema) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.ColumnNames(), ", "))
}
