// =============================================================================
// ADV Filing Extractor - Extract Command
// =============================================================================
//
// This file defines the 'extract' command, which runs the full
// reconciliation pipeline for every configured firm.
//
// COMMAND USAGE:
//   advx extract [flags]
//
// FLAGS:
//   --dry-run     : Reconcile without writing output files
//   --firm        : Process only the named firm
//   --charts      : Also render chart workbooks for each firm
//   --start-year  : First fiscal year to include in charts
//
// PROCESSING PIPELINE:
//   1. Load configuration, extraction settings, and firm definitions
//   2. Discover snapshot files in the input directory (sorted, so runs
//      are deterministic)
//   3. For each firm (concurrently, bounded by max_concurrency):
//      a. Scan the corpus for the firm's records
//      b. Reconcile matched rows into a fiscal-year table
//      c. Write the reconciled CSV (and optionally a chart workbook)
//   4. Collect results and write the run summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/corpus"
	"github.com/advtools/adv-extract/internal/extractor"
	"github.com/advtools/adv-extract/internal/report"
	"github.com/advtools/adv-extract/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun reconciles without writing output files.
var dryRun bool

// firmFilter restricts processing to a single firm by name.
var firmFilter string

// withCharts also renders a chart workbook per firm.
var withCharts bool

// chartStartYear is the first fiscal year included in charts.
var chartStartYear int

// =============================================================================
// EXTRACT COMMAND DEFINITION
// =============================================================================

// extractCmd represents the 'extract' command.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Reconcile filing snapshots into per-firm fiscal-year CSVs",
	Long: `The extract command scans the input directory for filing snapshots, matches
records to each configured firm using the configured strategy, reconciles
them into one record per fiscal year, and writes a row-per-year CSV per firm.

Firms are processed concurrently. Each firm is independent; errors in one
firm do not affect the processing of others. A firm with no data anywhere
(and no configured defaults) is reported as "no data available" - that is a
normal outcome, not an error.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the extract command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Reconcile without writing output files",
	)

	extractCmd.Flags().StringVar(
		&firmFilter,
		"firm",
		"",
		"Process only the named firm",
	)

	extractCmd.Flags().BoolVar(
		&withCharts,
		"charts",
		false,
		"Also render a chart workbook per firm",
	)

	extractCmd.Flags().IntVar(
		&chartStartYear,
		"start-year",
		0,
		"First fiscal year to include in charts (0 keeps all years)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runExtract orchestrates the reconciliation pipeline.
func runExtract() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== ADV Filing Extractor ===")
	fmt.Println("Loading configuration...")

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	// Matching strategy and target columns are structurally required;
	// a problem here aborts the run before any firm is touched.
	settings, err := config.LoadSettings(mainConfig.SettingsFile)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	firms, warnings, err := config.LoadFirms(mainConfig.FirmsFile)
	if err != nil {
		return fmt.Errorf("failed to load firms: %w", err)
	}
	for _, w := range warnings {
		fmt.Printf("Warning: %v\n", w)
	}

	if firmFilter != "" {
		firms = filterFirms(firms, firmFilter)
		if len(firms) == 0 {
			return fmt.Errorf("no configured firm named %q", firmFilter)
		}
	}

	logger := extractor.NewDefaultLogger(verbose || mainConfig.LogLevel == "debug")
	ext := extractor.New(mainConfig, settings, logger)
	ext.DryRun = dryRun

	fmt.Printf("Loaded %d firm(s)\n", len(firms))
	fmt.Printf("Using matching strategy: %s\n", ext.Strategy())

	// =========================================================================
	// STEP 2: DISCOVER SNAPSHOT FILES
	// =========================================================================

	fmt.Println("Discovering snapshot files...")

	files, err := corpus.Discover(mainConfig.InputDir, settings.FilePattern)
	if err != nil {
		return fmt.Errorf("failed to discover snapshots: %w", err)
	}

	if len(files) == 0 {
		fmt.Printf("No snapshot files found in %s or its subdirectories\n", mainConfig.InputDir)
	} else {
		fmt.Printf("Found %d snapshot file(s)\n", len(files))
	}

	// =========================================================================
	// STEP 3: PROCESS FIRMS CONCURRENTLY
	// =========================================================================
	// Firms are independent: snapshots are read-only and every intermediate
	// structure is private to one firm's pipeline, so a simple bounded
	// fan-out is safe.

	fmt.Println("Processing firms...")

	var wg sync.WaitGroup
	results := make(chan extractor.Result, len(firms))
	semaphore := make(chan struct{}, mainConfig.MaxConcurrency)

	for _, firm := range firms {
		wg.Add(1)

		go func(firm config.Firm) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- ext.Extract(files, firm)
		}(firm)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var successCount, errorCount int
	summary := utils.RunSummary{
		StartedAt:   startTime,
		CorpusFiles: len(files),
	}

	for result := range results {
		firmSummary := utils.FirmSummary{
			Name:       result.Firm.Name,
			Success:    result.Success,
			OutputFile: result.OutputFile,
			Years:      len(result.Table.Records),
			Duplicates: len(result.Duplicates),
		}

		if result.Success {
			successCount++
			if result.OutputFile != "" {
				fmt.Printf("  ✓ %s -> %s\n", result.Firm.Name, filepath.Base(result.OutputFile))
			} else {
				fmt.Printf("  ✓ %s (no data available)\n", result.Firm.Name)
			}

			if withCharts && !dryRun && !result.Table.Empty() {
				if err := renderChart(mainConfig, settings, result); err != nil {
					fmt.Printf("    chart rendering failed: %v\n", err)
				}
			}
		} else {
			errorCount++
			firmSummary.Error = result.Error.Error()
			fmt.Printf("  ✗ %s: %v\n", result.Firm.Name, result.Error)
		}

		summary.Firms = append(summary.Firms, firmSummary)
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total firms:     %d\n", len(firms))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if !dryRun {
		summary.FinishedAt = time.Now()
		if path, err := utils.WriteRunSummary(summary, mainConfig.OutputDir); err == nil {
			fmt.Printf("Run summary:     %s\n", path)
		}
	}

	if errorCount > 0 && !*mainConfig.ContinueOnError {
		return fmt.Errorf("%d firm(s) failed", errorCount)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filterFirms returns the firms matching the given name, case-insensitively.
func filterFirms(firms []config.Firm, name string) []config.Firm {
	var filtered []config.Firm
	for _, firm := range firms {
		if strings.EqualFold(firm.Name, name) {
			filtered = append(filtered, firm)
		}
	}
	return filtered
}

// renderChart renders one firm's chart workbook next to its CSV output.
func renderChart(mainConfig *config.MainConfig, settings *config.Settings, result extractor.Result) error {
	fileName := utils.GenerateOutputFileName("adv_charts_{firm}_{year}.xlsx", map[string]string{
		"firm": result.Firm.Name,
		"year": fmt.Sprintf("%d", result.Table.MostRecentYear()),
	})

	path := filepath.Join(mainConfig.ChartsDir, fileName)
	return report.RenderWorkbook(result.Table, settings.TargetColumns, path, report.RenderOptions{
		FirmName:  result.Firm.Name,
		StartYear: chartStartYear,
	})
}
