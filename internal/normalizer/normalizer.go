// Package normalizer coerces and cleans whole columns of a table. A single
// bad cell never fails a column: it degrades to the rule's default (zero for
// currency, absent for dates and references).
package normalizer

import (
	"fmt"
	"strings"

	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

// Step normalizes one column. Optional steps are skipped when the column is
// not present.
type Step struct {
	Column   string
	Rule     Rule
	Optional bool
}

// Normalize returns a new table with column rewritten by rule
func Normalize(t *table.Table, column string, rule Rule) (*table.Table, error) {
	if !rule.Valid() {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "rule", string(rule), nil)
	}

	if !t.HasColumn(column) {
		return nil, MissingColumn(t, column, []string{column})
	}

	return t.MapColumn(column, func(v table.Value) table.Value {
		return Value(v, rule)
	})
}

// Apply runs steps in order and returns the final table
func Apply(t *table.Table, steps ...Step) (*table.Table, error) {
	out := t
	for _, step := range steps {
		if step.Optional && !out.HasColumn(step.Column) {
			continue
		}
		next, err := Normalize(out, step.Column, step.Rule)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Value normalizes a single cell
func Value(v table.Value, rule Rule) table.Value {
	switch rule {
	case Currency:
		if d, ok := v.Decimal(); ok {
			return table.Number(d.Round(2))
		}
		return table.Number(ParseCurrency(v.String()))

	case DateDayFirst:
		if _, ok := v.Time(); ok {
			return v
		}
		if d, ok := v.Decimal(); ok {
			if t, ok := ParseDate(d.String()); ok {
				return table.Date(t)
			}
			return table.Absent()
		}
		if t, ok := ParseDate(v.String()); ok {
			return table.Date(t)
		}
		return table.Absent()

	case StrippedReference:
		if v.IsAbsent() {
			return v
		}
		if s, ok := CleanReference(v.String()); ok {
			return table.Text(s)
		}
		return table.Absent()

	case UnpaddedString:
		return text(v, func(s string) string {
			return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "0"))
		})

	case TitleString:
		return text(v, Title)

	case UpperString:
		return text(v, Upper)

	case LowerString:
		return text(v, Lower)

	default:
		return text(v, strings.TrimSpace)
	}
}

func text(v table.Value, fn func(string) string) table.Value {
	if v.IsAbsent() {
		return v
	}
	s := fn(v.String())
	if s == "" {
		return table.Absent()
	}
	return table.Text(s)
}

// MissingColumn builds the error for a designated column that the table
// does not have, suggesting the closest header when there is one.
func MissingColumn(t *table.Table, column string, candidates []string) *apperrors.ConverterError {
	err := apperrors.RequiredColumnMissing(column, candidates, t.Columns())
	if guess := t.Suggest(column); guess != "" {
		err.WithSuggestion(fmt.Sprintf("did you mean '%s'?", guess))
	}
	return err
}
