// Package reconciler computes the multiset row difference between two
// schema-compatible tables.
package reconciler

import (
	"strings"
	"time"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

// Result holds the rows of each table that have no counterpart in the other
type Result struct {
	OnlyInA *table.Table `json:"-"`
	OnlyInB *table.Table `json:"-"`

	// Row counts after blank rows were dropped
	RowsA   int `json:"rows_a"`
	RowsB   int `json:"rows_b"`
	Matched int `json:"matched"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// Summary is the printable overview of a Result
type Summary struct {
	RowsA       int           `json:"rows_a"`
	RowsB       int           `json:"rows_b"`
	Matched     int           `json:"matched"`
	OnlyInA     int           `json:"only_in_a"`
	OnlyInB     int           `json:"only_in_b"`
	Balanced    bool          `json:"balanced"`
	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// Summary returns the counts of the result
func (r *Result) Summary() Summary {
	return Summary{
		RowsA:       r.RowsA,
		RowsB:       r.RowsB,
		Matched:     r.Matched,
		OnlyInA:     r.OnlyInA.Len(),
		OnlyInB:     r.OnlyInB.Len(),
		Balanced:    r.OnlyInA.Len() == 0 && r.OnlyInB.Len() == 0,
		ProcessedAt: r.ProcessedAt,
		Duration:    r.Duration,
	}
}

// Coercion decides how each column is compared
type Coercion struct {
	// Columns whose lower-cased name contains this marker compare as dates
	DateMarker string
	// Lower-cased column names that compare as numbers
	NumericColumns []string
}

// DefaultCoercion compares date columns by calendar day and debit/credit
// columns numerically.
func DefaultCoercion() Coercion {
	return Coercion{
		DateMarker:     "date",
		NumericColumns: []string{"debit", "credit"},
	}
}

type columnKind int

const (
	compareText columnKind = iota
	compareDate
	compareNumber
)

func (c Coercion) kinds(columns []string) []columnKind {
	kinds := make([]columnKind, len(columns))
	for i, name := range columns {
		lower := strings.ToLower(strings.TrimSpace(name))
		kinds[i] = compareText
		if c.DateMarker != "" && strings.Contains(lower, c.DateMarker) {
			kinds[i] = compareDate
			continue
		}
		for _, n := range c.NumericColumns {
			if lower == n {
				kinds[i] = compareNumber
				break
			}
		}
	}
	return kinds
}

// Reconcile compares a and b with the default coercion
func Reconcile(a, b *table.Table) (*Result, error) {
	return ReconcileWith(a, b, DefaultCoercion())
}

// ReconcileWith compares a and b as multisets of whole rows. A row of a is
// reported once for every copy in excess of the matching copies in b, in a's
// order; the same holds for b. The reported rows are the input rows, not the
// coerced comparison form.
func ReconcileWith(a, b *table.Table, coercion Coercion) (*Result, error) {
	start := time.Now()

	if !a.SchemaCompatible(b) {
		return nil, apperrors.SchemaMismatch(a.Columns(), b.Columns())
	}

	a = dropBlankRows(a)
	b = dropBlankRows(b)

	kinds := coercion.kinds(a.Columns())
	keysA := rowKeys(a, kinds)
	keysB := rowKeys(b, kinds)

	onlyA, matched := excess(a, keysA, keysB)
	onlyB, _ := excess(b, keysB, keysA)

	return &Result{
		OnlyInA:     onlyA,
		OnlyInB:     onlyB,
		RowsA:       a.Len(),
		RowsB:       b.Len(),
		Matched:     matched,
		ProcessedAt: start,
		Duration:    time.Since(start),
	}, nil
}

func dropBlankRows(t *table.Table) *table.Table {
	return t.Filter(func(r table.Row) bool { return !r.IsBlank() })
}

// excess walks t in order and keeps every row that finds no unused copy in
// other. It also returns how many rows were paired.
func excess(t *table.Table, keys, other []string) (*table.Table, int) {
	available := make(map[string]int, len(other))
	for _, k := range other {
		available[k]++
	}

	keep := make(map[int]bool)
	matched := 0
	for i, k := range keys {
		if available[k] > 0 {
			available[k]--
			matched++
			continue
		}
		keep[i] = true
	}

	i := -1
	out := t.Filter(func(table.Row) bool {
		i++
		return keep[i]
	})
	return out, matched
}

func rowKeys(t *table.Table, kinds []columnKind) []string {
	keys := make([]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		keys[i] = comparisonRow(t.Row(i), kinds).Key()
	}
	return keys
}

// comparisonRow fills absent cells with the empty string and coerces each cell
// to its column's comparison form.
func comparisonRow(r table.Row, kinds []columnKind) table.Row {
	out := make(table.Row, len(r))
	for i, v := range r {
		if v.IsAbsent() {
			v = table.Text("")
		}
		switch kinds[i] {
		case compareDate:
			out[i] = normalizer.Value(v, normalizer.DateDayFirst)
		case compareNumber:
			out[i] = normalizer.Value(v, normalizer.Currency)
		default:
			out[i] = table.Text(v.String())
		}
	}
	return out
}
