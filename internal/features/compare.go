package features

import (
	"context"
	"fmt"

	"golang-backoffice-converter/internal/normalizer"
	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/reconciler"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

const (
	DefaultCompareColumns = 9
	MaxCompareColumns     = 50

	// Headings for rows missing from the reconciliation and rows it holds
	// more often than the ledger does.
	LabelNotOnRecon   = "not on recon"
	LabelTwiceOnRecon = "twice on recon"
)

// CompareCleaning lists the cleanup applied to both exports before they are
// compared. Each step is skipped when its column is absent.
var CompareCleaning = []normalizer.Step{
	{Column: "Debit", Rule: normalizer.Currency, Optional: true},
	{Column: "Credit", Rule: normalizer.Currency, Optional: true},
	{Column: "Reference", Rule: normalizer.StrippedReference, Optional: true},
	{Column: "Reference 2", Rule: normalizer.StrippedReference, Optional: true},
	{Column: "Date", Rule: normalizer.DateDayFirst, Optional: true},
	{Column: "Description", Rule: normalizer.UnpaddedString, Optional: true},
}

// ValidateCompareColumns checks the column count chosen by the operator
func ValidateCompareColumns(n int) error {
	if n < 1 || n > MaxCompareColumns {
		return apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "columns", n,
			fmt.Errorf("must be between 1 and %d", MaxCompareColumns))
	}
	return nil
}

// CompareLoadConfig keeps the first n columns of an export with its header
// on row 1.
func CompareLoadConfig(n int) *parsers.LoadConfig {
	cfg := parsers.DefaultLoadConfig()
	cfg.MaxColumns = n
	return cfg
}

// PrepareCompare caps t at n columns and cleans it
func PrepareCompare(t *table.Table, n int) (*table.Table, error) {
	if err := ValidateCompareColumns(n); err != nil {
		return nil, err
	}
	if t.Width() > n {
		capped, err := t.Select(t.Columns()[:n]...)
		if err != nil {
			return nil, err
		}
		t = capped
	}
	return normalizer.Apply(t, CompareCleaning...)
}

// Compare reconciles the Evolution export (a) against the reconciliation
// export (b). OnlyInA holds rows not on the recon; OnlyInB rows the recon
// holds too often.
func Compare(ctx context.Context, svc *reconciler.Service, evolution, recon *table.Table, columns int) (*reconciler.Result, error) {
	a, err := PrepareCompare(evolution, columns)
	if err != nil {
		return nil, err
	}
	b, err := PrepareCompare(recon, columns)
	if err != nil {
		return nil, err
	}
	return svc.Reconcile(ctx, a, b)
}
