// =============================================================================
// ADV Filing Extractor - Raw Record Scanner
// =============================================================================
//
// This module iterates the corpus of raw filing snapshots, applies the
// configured matching strategy, and yields at most one matched row per
// snapshot.
//
// POLICIES (these encode the filing-cycle semantics and must hold exactly):
//   - Zero matches in a snapshot is not an error; corpora span years before
//     and after a firm existed, so absence is expected and the snapshot is
//     simply skipped.
//   - Multiple matches in one snapshot mean duplicate filings in a single
//     export. The LAST matching row in file order wins (snapshots are not
//     guaranteed pre-sorted by recency, and the last filing is the most
//     recent). The full set of competing filing IDs is reported to the
//     caller as a diagnostic - auditable, never fatal.
//   - Unreadable or malformed snapshots are skipped and scanning continues.
//     Partial corpus corruption must not abort the whole run.
//   - Target fields are coerced to nullable decimals; cells that fail
//     coercion become absent rather than zero.
//
// =============================================================================

package scanner

import (
	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/corpus"
	"github.com/advtools/adv-extract/internal/types"
)

// Logger is the subset of logging used by the scanner. It is satisfied by
// the extractor's logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Scanner scans filing snapshots for one firm's records.
type Scanner struct {
	settings *config.Settings
	matcher  Matcher
	logger   Logger
}

// New creates a scanner for the given settings. The matcher is constructed
// once here, per the configured strategy.
func New(settings *config.Settings, logger Logger) *Scanner {
	return &Scanner{
		settings: settings,
		matcher:  NewMatcher(settings),
		logger:   logger,
	}
}

// Matcher exposes the active matching strategy, mainly for log output.
func (s *Scanner) Matcher() Matcher {
	return s.matcher
}

// Scan processes the snapshot files in the order given (callers pass the
// lexicographically sorted discovery output) and returns the matched rows
// plus any duplicate-filing diagnostics.
//
// The returned slices are in scan order. An empty row slice means the firm
// matched nowhere in the corpus, which is a normal outcome.
func (s *Scanner) Scan(files []string, firm config.Firm) ([]types.MatchedRow, []types.DuplicateFiling) {
	var rows []types.MatchedRow
	var duplicates []types.DuplicateFiling

	for _, path := range files {
		table, err := corpus.Load(path, s.settings)
		if err != nil {
			// Skip files that can't be processed and continue with others.
			s.logger.Debug("skipping unreadable snapshot %s: %v", path, err)
			continue
		}

		row, duplicate := s.scanTable(table, firm)
		if row == nil {
			continue
		}
		if duplicate != nil {
			duplicates = append(duplicates, *duplicate)
		}
		rows = append(rows, *row)
	}

	return rows, duplicates
}

// scanTable evaluates the matching strategy against every row of one
// snapshot and selects at most one.
func (s *Scanner) scanTable(table *corpus.RawTable, firm config.Firm) (*types.MatchedRow, *types.DuplicateFiling) {
	var matches []map[string]string
	for _, row := range table.Rows {
		if s.matcher.Matches(row, firm) {
			matches = append(matches, row)
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}

	// Duplicate filings in a single snapshot: take the last row, report
	// all competitors.
	selected := matches[len(matches)-1]
	var duplicate *types.DuplicateFiling
	if len(matches) > 1 {
		filingIDs := make([]string, len(matches))
		for i, m := range matches {
			filingIDs[i] = filingID(m, s.settings)
		}
		duplicate = &types.DuplicateFiling{
			SourceFile: table.Path,
			FilingIDs:  filingIDs,
			SelectedID: filingIDs[len(filingIDs)-1],
		}
		s.logger.Warn("multiple filing IDs in %s: %v (using %s)",
			table.Path, duplicate.FilingIDs, duplicate.SelectedID)
	}

	return s.buildMatchedRow(table.Path, selected), duplicate
}

// buildMatchedRow extracts the filing ID, execution date, and coerced target
// fields from the selected raw row.
func (s *Scanner) buildMatchedRow(path string, raw map[string]string) *types.MatchedRow {
	values := make(map[string]types.Value, len(s.settings.TargetColumns))
	for _, col := range s.settings.TargetColumns {
		values[col] = types.ParseValue(raw[col])
	}

	return &types.MatchedRow{
		SourceFile:    path,
		FilingID:      filingID(raw, s.settings),
		ExecutionDate: raw[s.settings.ExecutionDateColumn],
		Values:        values,
	}
}

// filingID reads the filing identifier cell, with a placeholder for rows
// that lack one so diagnostics stay readable.
func filingID(row map[string]string, settings *config.Settings) string {
	id := row[settings.FilingIDColumn]
	if id == "" {
		return "N/A"
	}
	return id
}
