// =============================================================================
// ADV Filing Extractor - Fiscal-Year Reconciler
// =============================================================================
//
// This module consumes the scanner's matched rows and resolves them into a
// single ordered, column-complete table with at most one record per fiscal
// year.
//
// PIPELINE:
//   1. Overwrite application - manual corrections keyed by filing ID,
//      applied before anything else so that corrected values flow through
//      every later stage.
//   2. Fiscal-year derivation - fiscal year = execution year - 1. Filings
//      executed early in year Y report on year Y-1; this offset is a fact
//      of the ADV filing cycle. Rows with no parseable execution date map
//      to no fiscal year and are dropped here.
//   3. Per-year collapse - when several snapshots independently matched the
//      same fiscal year, the last row in processing order wins. This is a
//      second, coarser deduplication layer than the scanner's per-snapshot
//      one; the two must stay distinct.
//   4. Default back-fill - fiscal years configured in the firm's defaults
//      but absent from the corpus are synthesized from the default values.
//      Fields without a default stay absent, not zero.
//   5. Empty-corpus fallback - a firm with no raw match anywhere gets a
//      table built entirely from its defaults; with no defaults either, the
//      result is an empty table, which is a normal terminal state.
//   6. Final ordering - records sorted ascending by fiscal year. Growth
//      calculations downstream assume consecutive-year adjacency.
//
// =============================================================================

package reconcile

import (
	"sort"
	"time"

	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/types"
)

// Logger is the subset of logging used by the reconciler.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Reconciler resolves matched rows into fiscal-year records.
type Reconciler struct {
	settings *config.Settings
	logger   Logger
}

// New creates a reconciler for the given settings.
func New(settings *config.Settings, logger Logger) *Reconciler {
	return &Reconciler{settings: settings, logger: logger}
}

// Reconcile produces one table from the matched rows, the configured
// overwrites, and the firm's default values. The input rows must be in
// scan order; the reconciler preserves that order through the per-year
// collapse so that later-discovered data supersedes earlier-discovered
// data for the same year.
func (r *Reconciler) Reconcile(rows []types.MatchedRow, firm config.Firm) types.ReconciledTable {
	// Step 1: manual corrections, before fiscal-year derivation, because
	// an overwrite may target fields used downstream.
	corrected := r.applyOverwrites(rows)

	// Steps 2-3: derive years, then collapse to one record per year.
	byYear, years := r.collapseByYear(corrected)

	// Steps 4-5: back-fill configured defaults. When the corpus yielded
	// nothing at all this builds the whole table; when defaults are also
	// empty the table stays empty, signaling "no data available".
	if len(byYear) == 0 && len(firm.DefaultValues) > 0 {
		r.logger.Info("no data found for %s in any files, using default values", firm.Name)
	}
	years = r.backfillDefaults(byYear, firm, years)

	// Step 6: strict ascending fiscal-year order.
	sort.Ints(years)

	records := make([]types.FiscalYearRecord, 0, len(years))
	for _, year := range years {
		records = append(records, byYear[year])
	}

	return types.ReconciledTable{Records: records}
}

// =============================================================================
// STEP 1: OVERWRITE APPLICATION
// =============================================================================

// applyOverwrites applies filing-ID-keyed corrections. Each corrected row
// is a fresh copy; matched rows are never mutated in place, so concurrent
// per-firm pipelines cannot alias each other's data.
//
// Overwrites key on filing identifier, not fiscal year - a single overwrite
// can never retroactively affect a different filing's year.
func (r *Reconciler) applyOverwrites(rows []types.MatchedRow) []types.MatchedRow {
	if len(r.settings.Overwrites) == 0 {
		return rows
	}

	out := make([]types.MatchedRow, 0, len(rows))
	for _, row := range rows {
		fields, ok := r.settings.Overwrites[row.FilingID]
		if !ok {
			out = append(out, row)
			continue
		}

		corrected := row.Clone()
		for col, value := range fields {
			old, known := corrected.Values[col]
			if !known {
				// An overwrite referencing a column outside the target
				// set is a configuration slip; ignore it but make it
				// visible to the operator.
				r.logger.Warn("overwrite for filing %s references unknown column %q, ignoring",
					row.FilingID, col)
				continue
			}
			r.logger.Info("overwriting %s for filing %s from %s to %s",
				col, row.FilingID, formatValue(old), value.Decimal.String())
			corrected.Values[col] = types.SomeValue(value.Decimal)
		}
		out = append(out, corrected)
	}
	return out
}

// formatValue renders a value for log output.
func formatValue(v types.Value) string {
	if !v.Valid {
		return "<absent>"
	}
	return v.Decimal.String()
}

// =============================================================================
// STEPS 2-3: FISCAL-YEAR DERIVATION AND PER-YEAR COLLAPSE
// =============================================================================

// executionDateLayouts are the date formats observed across snapshot
// vintages. Anything else drops the row from fiscal-year derivation.
var executionDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

// FiscalYear derives the fiscal year from a raw execution date cell.
// The second return value is false when the date is absent or unparseable.
func FiscalYear(executionDate string) (int, bool) {
	if executionDate == "" {
		return 0, false
	}
	for _, layout := range executionDateLayouts {
		if t, err := time.Parse(layout, executionDate); err == nil {
			return t.Year() - 1, true
		}
	}
	return 0, false
}

// collapseByYear groups rows by derived fiscal year, keeping the last row
// in processing order for each year.
func (r *Reconciler) collapseByYear(rows []types.MatchedRow) (map[int]types.FiscalYearRecord, []int) {
	byYear := make(map[int]types.FiscalYearRecord)
	var years []int

	for _, row := range rows {
		year, ok := FiscalYear(row.ExecutionDate)
		if !ok {
			r.logger.Debug("dropping filing %s from %s: unparseable execution date %q",
				row.FilingID, row.SourceFile, row.ExecutionDate)
			continue
		}

		if _, seen := byYear[year]; !seen {
			years = append(years, year)
		}
		// Later-discovered data for a year silently supersedes
		// earlier-discovered data for the same year.
		byYear[year] = r.buildRecord(year, row)
	}

	return byYear, years
}

// buildRecord copies the row's target values into a fiscal-year record,
// ensuring every configured column is present (absent where unreported).
func (r *Reconciler) buildRecord(year int, row types.MatchedRow) types.FiscalYearRecord {
	values := make(map[string]types.Value, len(r.settings.TargetColumns))
	for _, col := range r.settings.TargetColumns {
		values[col] = row.Values[col]
	}
	return types.FiscalYearRecord{FiscalYear: year, Values: values}
}

// =============================================================================
// STEPS 4-5: DEFAULT BACK-FILL
// =============================================================================

// backfillDefaults synthesizes records for fiscal years configured in the
// firm's defaults but absent from the collapsed set. Defaults never
// override corpus data; a year present in both keeps its corpus record.
func (r *Reconciler) backfillDefaults(byYear map[int]types.FiscalYearRecord, firm config.Firm, years []int) []int {
	for year, defaults := range firm.DefaultValues {
		if _, exists := byYear[year]; exists {
			continue
		}

		values := make(map[string]types.Value, len(r.settings.TargetColumns))
		for _, col := range r.settings.TargetColumns {
			if d, ok := defaults[col]; ok {
				values[col] = types.SomeValue(d.Decimal)
			} else {
				values[col] = types.Value{}
			}
		}
		for col := range defaults {
			if _, known := values[col]; !known {
				r.logger.Warn("default for %s year %d references unknown column %q, ignoring",
					firm.Name, year, col)
			}
		}

		byYear[year] = types.FiscalYearRecord{FiscalYear: year, Values: values}
		years = append(years, year)
	}
	return years
}
