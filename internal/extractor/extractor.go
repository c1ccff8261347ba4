// =============================================================================
// ADV Filing Extractor - Extraction Orchestrator
// =============================================================================
//
// This module orchestrates the per-firm extraction pipeline:
//
//   1. Scan the corpus for the firm's records (scanner)
//   2. Reconcile matched rows into a fiscal-year table (reconcile)
//   3. Write the reconciled table as a row-per-year CSV
//
// Each firm's pipeline is fully independent: snapshots are read-only and
// every intermediate structure is private to the pipeline, so firms can be
// processed concurrently with no coordination.
//
// ERROR POLICY:
//   Data-level problems (unreadable snapshots, uncoercible cells, firms
//   with no data anywhere) never surface as errors - they recover locally
//   per the scanner's and reconciler's policies. An Extract error means an
//   environmental failure, such as an unwritable output directory.
//
// =============================================================================

package extractor

import (
	"fmt"
	"strconv"

	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/reconcile"
	"github.com/advtools/adv-extract/internal/scanner"
	"github.com/advtools/adv-extract/internal/types"
	"github.com/advtools/adv-extract/pkg/utils"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Result holds the outcome of processing a single firm.
type Result struct {
	// Firm is the firm that was processed.
	Firm config.Firm

	// Success indicates whether processing completed without error.
	Success bool

	// OutputFile is the path of the generated CSV (empty when the firm
	// yielded no data, or on dry runs).
	OutputFile string

	// Table is the reconciled table. It may be empty, which is a normal
	// "no data available" outcome, not a failure.
	Table types.ReconciledTable

	// Duplicates lists the duplicate-filing diagnostics reported by the
	// scanner, for auditability.
	Duplicates []types.DuplicateFiling

	// Error holds the failure when Success is false.
	Error error
}

// =============================================================================
// LOGGER INTERFACE
// =============================================================================

// Logger is the logging interface used throughout the pipeline. A default
// implementation writing to standard output is provided; the CLI installs
// one honoring the configured level.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor runs the extraction pipeline for firms against one corpus.
type Extractor struct {
	mainConfig *config.MainConfig
	settings   *config.Settings
	scanner    *scanner.Scanner
	reconciler *reconcile.Reconciler
	logger     Logger

	// DryRun suppresses output file writing.
	DryRun bool
}

// New creates an extractor. A nil logger falls back to the default
// standard-output logger.
func New(mainConfig *config.MainConfig, settings *config.Settings, logger Logger) *Extractor {
	if logger == nil {
		logger = NewDefaultLogger(false)
	}
	return &Extractor{
		mainConfig: mainConfig,
		settings:   settings,
		scanner:    scanner.New(settings, logger),
		reconciler: reconcile.New(settings, logger),
		logger:     logger,
	}
}

// Strategy returns the human-readable active matching strategy.
func (e *Extractor) Strategy() string {
	return e.scanner.Matcher().Describe()
}

// Extract processes one firm against the discovered corpus files and
// returns the result. The files slice must already be in deterministic
// (lexicographic) order.
func (e *Extractor) Extract(files []string, firm config.Firm) Result {
	e.logger.Info("processing %s (SEC ID %s, CRD ID %s)", firm.Name, firm.SECID, firm.CRDID)

	rows, duplicates := e.scanner.Scan(files, firm)
	if len(rows) == 0 {
		e.logger.Info("no data found for %s in any files", e.Strategy())
	}

	table := e.reconciler.Reconcile(rows, firm)

	result := Result{
		Firm:       firm,
		Success:    true,
		Table:      table,
		Duplicates: duplicates,
	}

	if table.Empty() {
		// No raw matches and no defaults: a normal terminal state.
		e.logger.Info("no data found for %s and no default values provided", firm.Name)
		return result
	}

	if e.DryRun {
		return result
	}

	outputFile, err := e.writeOutput(firm, table)
	if err != nil {
		result.Success = false
		result.Error = err
		return result
	}
	result.OutputFile = outputFile
	e.logger.Info("data written to %s", outputFile)

	return result
}

// writeOutput writes the reconciled table to the output directory and
// returns the path written.
func (e *Extractor) writeOutput(firm config.Firm, table types.ReconciledTable) (string, error) {
	fileName := utils.GenerateOutputFileName(e.mainConfig.OutputNameFormat, map[string]string{
		"firm":   firm.Name,
		"sec_id": firm.SECID,
		"crd_id": firm.CRDID,
		"year":   strconv.Itoa(table.MostRecentYear()),
	})

	path, err := WriteCSV(table, e.settings.TargetColumns, e.mainConfig.OutputDir, fileName)
	if err != nil {
		return "", fmt.Errorf("failed to write output for %s: %w", firm.Name, err)
	}
	return path, nil
}
