// =============================================================================
// ADV Filing Extractor - Matching Strategies
// =============================================================================
//
// This file defines the row-matching strategies. A strategy is selected once
// per run from the configured matching_strategy and evaluated against every
// row of every snapshot; the scan loop itself never branches on the
// strategy.
//
// STRATEGIES:
//   - sec_only : match on the SEC ID column only
//   - crd_only : match on the CRD ID column only
//   - both     : both identifiers must match
//
// =============================================================================

package scanner

import (
	"github.com/advtools/adv-extract/internal/config"
)

// Matcher decides whether a snapshot row belongs to the target firm.
// One implementation exists per matching strategy.
type Matcher interface {
	// Matches evaluates the predicate against a single row.
	Matches(row map[string]string, firm config.Firm) bool

	// Describe returns the human-readable strategy name for log output.
	Describe() string
}

// NewMatcher builds the matcher for the configured strategy. The strategy
// has already been validated at settings load, so an unknown value here is
// a programming error.
func NewMatcher(settings *config.Settings) Matcher {
	switch settings.MatchingStrategy {
	case config.MatchSECOnly:
		return secOnlyMatcher{column: settings.SECIDColumn}
	case config.MatchCRDOnly:
		return crdOnlyMatcher{column: settings.CRDIDColumn}
	case config.MatchBoth:
		return bothMatcher{secColumn: settings.SECIDColumn, crdColumn: settings.CRDIDColumn}
	default:
		panic("scanner: unvalidated matching strategy " + string(settings.MatchingStrategy))
	}
}

// secOnlyMatcher matches on the SEC identifier column only.
type secOnlyMatcher struct {
	column string
}

func (m secOnlyMatcher) Matches(row map[string]string, firm config.Firm) bool {
	return firm.SECID != "" && row[m.column] == firm.SECID
}

func (m secOnlyMatcher) Describe() string {
	return config.MatchSECOnly.Describe()
}

// crdOnlyMatcher matches on the CRD identifier column only.
type crdOnlyMatcher struct {
	column string
}

func (m crdOnlyMatcher) Matches(row map[string]string, firm config.Firm) bool {
	return firm.CRDID != "" && row[m.column] == firm.CRDID
}

func (m crdOnlyMatcher) Describe() string {
	return config.MatchCRDOnly.Describe()
}

// bothMatcher requires both identifiers to match.
type bothMatcher struct {
	secColumn string
	crdColumn string
}

func (m bothMatcher) Matches(row map[string]string, firm config.Firm) bool {
	return firm.SECID != "" && firm.CRDID != "" &&
		row[m.secColumn] == firm.SECID && row[m.crdColumn] == firm.CRDID
}

func (m bothMatcher) Describe() string {
	return config.MatchBoth.Describe()
}
