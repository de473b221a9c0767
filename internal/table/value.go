package table

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the type held by a Value
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindDate
)

// DateLayout is the canonical text form of a date cell
const DateLayout = "2006-01-02"

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "absent"
	}
}

// Value is a single typed cell. The zero Value is absent.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	date time.Time
}

// Absent returns the empty cell
func Absent() Value {
	return Value{}
}

// Text returns a string cell
func Text(s string) Value {
	return Value{kind: KindString, text: s}
}

// Number returns a numeric cell
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Int returns a numeric cell holding n
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// Date returns a date cell truncated to the calendar day in UTC
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind returns the kind of the cell
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the cell holds no value
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// IsBlank reports whether the cell is absent or whitespace-only text
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return strings.TrimSpace(v.text) == ""
	default:
		return false
	}
}

// Decimal returns the numeric value and whether the cell is a number
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Zero, false
	}
	return v.num, true
}

// Time returns the date value and whether the cell is a date
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String returns the canonical text of the cell
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindDate:
		return v.date.Format(DateLayout)
	default:
		return ""
	}
}

// Format renders the cell with layout when it is a date, canonically otherwise
func (v Value) Format(layout string) string {
	if v.kind == KindDate {
		return v.date.Format(layout)
	}
	return v.String()
}

// Equal compares kind and canonical value
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num.Equal(o.num)
	case KindDate:
		return v.date.Equal(o.date)
	case KindString:
		return v.text == o.text
	default:
		return true
	}
}

// Key returns a hashable form that is equal for equal values
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.text
	case KindNumber:
		return "n:" + v.num.String()
	case KindDate:
		return "d:" + v.date.Format(DateLayout)
	default:
		return "a:"
	}
}
