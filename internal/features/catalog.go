package features

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"golang-backoffice-converter/internal/schema"
	"golang-backoffice-converter/internal/table"
	apperrors "golang-backoffice-converter/pkg/errors"
)

// Schemas returns every declared output schema keyed by name. Schemas that
// depend on operator input are built with placeholder values.
func Schemas() map[string]*schema.Schema {
	sample := &BidmasterOptions{
		Location:       Bloemfontein,
		AuctionCode:    "0",
		Department:     "Bfn Mining",
		DepartmentCode: Departments["Bfn Mining"],
		Commission:     decimal.NewFromInt(10),
		AuctionDate:    time.Time{},
	}

	all := []*schema.Schema{
		PettyCashSchema(),
		DepositSchema(),
		EverlyticSchema("<reference>"),
		BidmasterSchema(sample, nil),
		RecoverySchema(time.Time{}),
	}

	out := make(map[string]*schema.Schema, len(all))
	for _, s := range all {
		out[s.Name] = s
	}
	return out
}

// SchemaNames returns the catalog names in sorted order
func SchemaNames() []string {
	all := Schemas()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupSchema returns the named schema
func LookupSchema(name string) (*schema.Schema, error) {
	if s, ok := Schemas()[name]; ok {
		return s, nil
	}
	err := apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "schema", name, fmt.Errorf("unknown schema"))
	if guess := table.ClosestName(name, SchemaNames()); guess != "" {
		err.WithSuggestion(fmt.Sprintf("did you mean '%s'?", guess))
	}
	return nil, err
}
