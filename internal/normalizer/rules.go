package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule tags the cleanup applied uniformly to every cell of a column
type Rule string

const (
	Currency          Rule = "currency"
	DateDayFirst      Rule = "date-ddmmyyyy"
	TrimmedString     Rule = "trimmed-string"
	StrippedReference Rule = "stripped-numeric-reference"
	TitleString       Rule = "title-string"
	UpperString       Rule = "upper-string"
	LowerString       Rule = "lower-string"
	UnpaddedString    Rule = "unpadded-string"
)

// Rules returns every supported rule
func Rules() []Rule {
	return []Rule{
		Currency, DateDayFirst, TrimmedString, StrippedReference,
		TitleString, UpperString, LowerString, UnpaddedString,
	}
}

// Valid reports whether r is a known rule
func (r Rule) Valid() bool {
	for _, known := range Rules() {
		if r == known {
			return true
		}
	}
	return false
}

// TwoDigitYearPivot bounds how far into the future a two-digit year may land
// before it is read as the previous century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
		"2/1/2006 15:04", "2/1/2006 15:04:05", "02/01/2006 15:04:05",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339,
		"2 Jan 2006", "02 Jan 2006", "2 January 2006", "2-Jan-2006", "02-Jan-2006",
		"Jan 2, 2006", "January 2, 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"2/1/06", "02/01/06", "2-1-06", "2.1.06", "2-Jan-06",
	}


	trailingZeroFraction = regexp.MustCompile(`\.0$`)
)

// Excel serial day numbers read as dates: 1970-01-01 to 2099-12-31. Smaller
// numbers are row counters or footer values, not dates.
const (
	MinExcelSerial = 25569
	MaxExcelSerial = 73050
)

// ParseCurrency reads a free-form money string. Whitespace, the R currency
// marker, thousands separators and other symbols are removed, and accounting
// parentheses mark a negative amount. Anything unreadable is zero. The result
// is rounded to two decimal places.
func ParseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), r == 'R', r == ',':
		case r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case unicode.IsPunct(r), unicode.IsSymbol(r):
		default:
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2)
}

// ParseDate reads a calendar date with the day before the month. Excel serial
// day numbers between MinExcelSerial and MaxExcelSerial are accepted as well.
// The second result is false when s is not a date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return midnight(t), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= MinExcelSerial && serial <= MaxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return midnight(t), true
		}
	}

	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CleanReference tidies a reference number that may have passed through a
// numeric column: surrounding space, trailing colons, leading zeros and a
// trailing ".0" are removed. The second result is false when nothing usable
// remains.
func CleanReference(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimRight(s, ":"))
	s = strings.TrimLeft(s, "0")
	s = trailingZeroFraction.ReplaceAllString(s, "")

	switch s {
	case "", "None", "nan":
		return "", false
	}
	return s, true
}

// Title title-cases s after trimming it
func Title(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Upper upper-cases s after trimming it
func Upper(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// Lower lower-cases s after trimming it
func Lower(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
