package models

import "strings"

// Well-known statement columns. Bank exports carry additional variable
// columns (IBAN/BBAN account numbers among them) that rules can probe.
const (
	ColEntryDate   = "EntryDate"
	ColValueDate   = "ValueDate"
	ColAmount      = "Amount EUR"
	ColRecipient   = "Recipient/Payer"
	ColDescription = "Description"
	ColCode        = "Code"
)

// Record is one normalized statement row: cleaned column name to cleaned
// value. It is never mutated after construction.
type Record map[string]string

// Get returns the value for a column, or the empty string when the column
// is absent from the export.
func (r Record) Get(col string) string {
	return r[col]
}

// Clean strips surrounding whitespace and double quotes from a header or
// value, the normalization applied to every cell when a statement is read.
func Clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
