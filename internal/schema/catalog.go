package schema

import (
	"golang-backoffice-converter/internal/table"
)

// AccountingImportColumns is the column contract of the downstream
// accounting system's journal import. Order matters.
var AccountingImportColumns = []string{
	"TxDate", "Description", "Reference", "Amount", "UseTax", "TaxType", "TaxAccount", "TaxAmount",
	"Project", "Account", "IsDebit", "SplitType", "SplitGroup", "Reconcile", "PostDated", "UseDiscount",
	"DiscPerc", "DiscTrCode", "DiscDesc", "UseDiscTax", "DiscTaxType", "DiscTaxAcc", "DiscTaxAmt",
	"PayeeName", "PrintCheque", "SalesRep", "Module", "SagePayExtra1", "SagePayExtra2", "SagePayExtra3",
}

// InvoiceImportColumns is the positional contract of the invoice import.
// Individual converters rename the headers but never reorder them.
var InvoiceImportColumns = []string{
	"DocType", "AccountID", "Description", "InvDate", "TaxInclusive", "OrderNum", "Description2",
	"ClientNotes", "Quantity", "QtyToProcess", "UnitPriceExcl", "Module", "StockCodeID",
	"LedgerAccountID", "TaxTypeID", "WarehouseID", "PriceListNameID",
}

// AccountingDefault returns the value the accounting import expects in a
// column no converter sets.
func AccountingDefault(column string) table.Value {
	switch column {
	case "TaxAmount", "SplitType", "SplitGroup", "DiscPerc", "DiscTaxAmt", "Module":
		return table.Int(0)
	case "IsDebit", "Reconcile", "PostDated", "UseDiscount", "UseDiscTax", "PrintCheque", "UseTax":
		return table.Text("N")
	default:
		return table.Text("")
	}
}

// AccountingImport builds the full accounting import schema. Columns named
// in overrides take the override spec; every other column is a constant
// holding its accounting default.
func AccountingImport(name string, filter *Filter, overrides ...ColumnSpec) *Schema {
	return &Schema{
		Name:    name,
		Columns: withOverrides(AccountingImportColumns, overrides),
		Filter:  filter,
	}
}

// AccountingSubset builds a schema over the first n accounting columns
func AccountingSubset(name string, n int, filter *Filter, overrides ...ColumnSpec) *Schema {
	if n > len(AccountingImportColumns) {
		n = len(AccountingImportColumns)
	}
	return &Schema{
		Name:    name,
		Columns: withOverrides(AccountingImportColumns[:n], overrides),
		Filter:  filter,
	}
}

// Invoice builds an invoice import schema. headers renames the seventeen
// positional columns and specs must name each of them.
func Invoice(name string, headers []string, specs ...ColumnSpec) *Schema {
	byName := make(map[string]ColumnSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	columns := make([]ColumnSpec, len(headers))
	for i, h := range headers {
		spec, ok := byName[h]
		if !ok {
			spec = ConstText(h, "")
		}
		columns[i] = spec
	}
	return &Schema{Name: name, Columns: columns}
}

func withOverrides(names []string, overrides []ColumnSpec) []ColumnSpec {
	byName := make(map[string]ColumnSpec, len(overrides))
	for _, o := range overrides {
		byName[o.Name] = o
	}

	columns := make([]ColumnSpec, len(names))
	for i, n := range names {
		if o, ok := byName[n]; ok {
			columns[i] = o
			continue
		}
		columns[i] = Const(n, AccountingDefault(n))
	}
	return columns
}
