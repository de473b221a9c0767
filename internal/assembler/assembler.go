// Package assembler derives sibling line tables from a base table and
// concatenates them into one import file.
package assembler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

// Compute produces the new value of a column from a copy of a base row
type Compute func(row Row) table.Value

// Row gives a derivation read access to one base row by column name
type Row struct {
	tbl *table.Table
	row table.Row
}

// Get returns the named cell of the base row
func (r Row) Get(column string) table.Value {
	idx := r.tbl.ColumnIndex(column)
	if idx < 0 {
		return table.Absent()
	}
	return r.row[idx]
}

// Rewrite replaces the match of Pattern in Column with Replacement
type Rewrite struct {
	Column      string
	Pattern     string
	Replacement string
}

// Derivation declares how a sibling table is produced from the base
type Derivation struct {
	Name    string
	Set     map[string]Compute
	Rewrite *Rewrite
}

// Options controls the assembled output
type Options struct {
	// BaseLast places the base table after the derived tables
	BaseLast bool
	// SanitizeColumns lists the columns cleaned of quote, comma and
	// backslash characters
	SanitizeColumns []string
	// SanitizeAll cleans every text column
	SanitizeAll bool
}

// SetText returns a Compute that always yields s
func SetText(s string) Compute {
	return func(Row) table.Value { return table.Text(s) }
}

// SetNumber returns a Compute that always yields d
func SetNumber(d decimal.Decimal) Compute {
	return func(Row) table.Value { return table.Number(d) }
}

// Scale returns a Compute that multiplies the numeric column by factor.
// Non-numeric cells are read as zero.
func Scale(column string, factor decimal.Decimal) Compute {
	return func(r Row) table.Value {
		v := r.Get(column)
		d, ok := v.Decimal()
		if !ok {
			parsed, err := decimal.NewFromString(strings.TrimSpace(v.String()))
			if err != nil {
				parsed = decimal.Zero
			}
			d = parsed
		}
		return table.Number(d.Mul(factor))
	}
}

type compiled struct {
	Derivation
	pattern *regexp.Regexp
	columns []string
}

func compile(base *table.Table, d Derivation) (*compiled, error) {
	c := &compiled{Derivation: d}

	for column := range d.Set {
		if !base.HasColumn(column) {
			return nil, apperrors.RequiredColumnMissing(column, []string{column}, base.Columns()).
				WithContext("derivation", d.Name)
		}
		c.columns = append(c.columns, column)
	}

	if d.Rewrite != nil {
		if !base.HasColumn(d.Rewrite.Column) {
			return nil, apperrors.RequiredColumnMissing(d.Rewrite.Column, []string{d.Rewrite.Column}, base.Columns()).
				WithContext("derivation", d.Name)
		}
		re, err := regexp.Compile(d.Rewrite.Pattern)
		if err != nil {
			return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "derivation."+d.Name+".pattern", d.Rewrite.Pattern, err)
		}
		c.pattern = re
	}
	return c, nil
}

// apply derives one table from a fresh copy of base
func (c *compiled) apply(base *table.Table) (*table.Table, error) {
	rewriteIdx := -1
	if c.pattern != nil {
		rewriteIdx = base.ColumnIndex(c.Rewrite.Column)
	}

	return base.MapRows(func(_ int, r table.Row) table.Row {
		view := Row{tbl: base, row: r.Clone()}
		for _, column := range c.columns {
			r[base.ColumnIndex(column)] = c.Set[column](view)
		}
		if rewriteIdx >= 0 {
			v := r[rewriteIdx]
			if !v.IsAbsent() {
				r[rewriteIdx] = table.Text(c.pattern.ReplaceAllString(v.String(), c.Rewrite.Replacement))
			}
		}
		return r
	})
}

// Derive applies every derivation to its own copy of base. Derivations never
// see each other's output.
func Derive(base *table.Table, derivations []Derivation) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(derivations))
	for _, d := range derivations {
		c, err := compile(base, d)
		if err != nil {
			return nil, err
		}
		derived, err := c.apply(base)
		if err != nil {
			return nil, apperrors.InternalError(fmt.Sprintf("derivation %s", d.Name), err)
		}
		out = append(out, derived)
	}
	return out, nil
}

// Assemble derives every sibling table and concatenates them with the base
// in declared order, then sanitizes the designated columns. No row is
// dropped: the result has base.Len() * (len(derivations)+1) rows.
func Assemble(base *table.Table, derivations []Derivation, opts Options) (*table.Table, error) {
	derived, err := Derive(base, derivations)
	if err != nil {
		return nil, err
	}

	parts := append([]*table.Table{base}, derived...)
	if opts.BaseLast {
		parts = append(derived, base)
	}

	merged, err := parts[0].Concat(parts[1:]...)
	if err != nil {
		return nil, apperrors.InternalError("assembly", err)
	}

	return Sanitize(merged, opts)
}

var unsafeChars = strings.NewReplacer(`"`, "", "'", "", ",", "", `\`, "")

// SanitizeText removes the characters the downstream CSV import rejects
func SanitizeText(s string) string {
	return unsafeChars.Replace(s)
}

// Sanitize cleans the columns designated by opts. Absent cells in a
// sanitized column become empty text.
func Sanitize(t *table.Table, opts Options) (*table.Table, error) {
	columns := opts.SanitizeColumns
	if opts.SanitizeAll {
		columns = t.Columns()
	}

	out := t
	for _, column := range columns {
		if !out.HasColumn(column) {
			return nil, apperrors.RequiredColumnMissing(column, []string{column}, out.Columns())
		}
		next, err := out.MapColumn(column, func(v table.Value) table.Value {
			switch v.Kind() {
			case table.KindString:
				return table.Text(SanitizeText(v.String()))
			case table.KindAbsent:
				return table.Text("")
			default:
				return v
			}
		})
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
