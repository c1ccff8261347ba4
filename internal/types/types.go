// =============================================================================
// ADV Filing Extractor - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - scanner
//   - reconcile
//   - extractor
//   - report
//
// =============================================================================

package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FIELD VALUES
// =============================================================================

// Value is a nullable numeric field value. A Value with Valid=false means
// "not reported" and is distinct from a reported zero (zero regulatory
// assets is a real disclosure, a blank cell is not).
type Value = decimal.NullDecimal

// ParseValue coerces a raw cell to a Value. Values that fail coercion become
// absent, never zero.
func ParseValue(raw string) Value {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Value{}
	}
	return Value{Decimal: d, Valid: true}
}

// SomeValue wraps a decimal in a present Value.
func SomeValue(d decimal.Decimal) Value {
	return Value{Decimal: d, Valid: true}
}

// =============================================================================
// SCANNER OUTPUT TYPES
// =============================================================================

// MatchedRow is the single row selected from one raw snapshot table for the
// target firm. It exists only for the duration of one reconciliation call.
type MatchedRow struct {
	// SourceFile is the path of the snapshot the row was selected from.
	// Useful for diagnostics and error reporting.
	SourceFile string

	// FilingID is the unique identifier of the filing instance. Overwrite
	// rules key on this value.
	FilingID string

	// ExecutionDate is the raw execution date cell. It is parsed during
	// fiscal-year derivation; rows with an unparseable date are dropped
	// at that stage.
	ExecutionDate string

	// Values holds the target field values, keyed by column name.
	Values map[string]Value
}

// Clone returns a deep copy of the row. Rows are treated as immutable once
// produced by the scanner, so corrections build a new row instead of
// mutating a shared one.
func (r MatchedRow) Clone() MatchedRow {
	values := make(map[string]Value, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return MatchedRow{
		SourceFile:    r.SourceFile,
		FilingID:      r.FilingID,
		ExecutionDate: r.ExecutionDate,
		Values:        values,
	}
}

// DuplicateFiling records that one snapshot table contained more than one
// row for the target firm, and which filing was selected. Duplicates are
// auditable but never fatal.
type DuplicateFiling struct {
	// SourceFile is the snapshot that contained the competing rows.
	SourceFile string

	// FilingIDs lists all competing filing identifiers, in file order.
	FilingIDs []string

	// SelectedID is the filing that won: the last one in file order,
	// which is treated as the most recent filing.
	SelectedID string
}

// =============================================================================
// RECONCILED OUTPUT TYPES
// =============================================================================

// FiscalYearRecord is one row of the reconciled output, keyed by fiscal
// year. Each field value is either sourced from a matched row, a configured
// default, or absent.
type FiscalYearRecord struct {
	// FiscalYear is the year the record reports on. Fiscal years are
	// derived (execution year minus one), never read from the corpus.
	FiscalYear int

	// Values holds the target field values, keyed by column name.
	Values map[string]Value
}

// Value returns the named field value, or an absent Value if the field was
// never populated.
func (r FiscalYearRecord) Value(field string) Value {
	return r.Values[field]
}

// ReconciledTable is the terminal artifact of one firm's reconciliation:
// an ascending-by-fiscal-year sequence of records covering the union of
// years present in the corpus and years present in the defaults. It is
// created fresh each run and never mutated after being returned.
type ReconciledTable struct {
	// Records is ordered by strictly increasing fiscal year, with at most
	// one record per year. Downstream growth calculations rely on this
	// ordering.
	Records []FiscalYearRecord
}

// Empty reports whether the table holds no records. An empty table is a
// normal terminal state meaning "no data available", not an error.
func (t ReconciledTable) Empty() bool {
	return len(t.Records) == 0
}

// Years returns the fiscal years covered by the table, ascending.
func (t ReconciledTable) Years() []int {
	years := make([]int, len(t.Records))
	for i, rec := range t.Records {
		years[i] = rec.FiscalYear
	}
	return years
}

// MostRecentYear returns the highest fiscal year in the table, or 0 if the
// table is empty.
func (t ReconciledTable) MostRecentYear() int {
	if len(t.Records) == 0 {
		return 0
	}
	return t.Records[len(t.Records)-1].FiscalYear
}

// Record returns the record for the given fiscal year, if present.
func (t ReconciledTable) Record(year int) (FiscalYearRecord, bool) {
	i := sort.Search(len(t.Records), func(i int) bool {
		return t.Records[i].FiscalYear >= year
	})
	if i < len(t.Records) && t.Records[i].FiscalYear == year {
		return t.Records[i], true
	}
	return FiscalYearRecord{}, false
}

// Column returns the values of one target field across all records, in
// fiscal-year order. Absent values are preserved as absent.
func (t ReconciledTable) Column(field string) []Value {
	values := make([]Value, len(t.Records))
	for i, rec := range t.Records {
		values[i] = rec.Values[field]
	}
	return values
}
