// =============================================================================
// ADV Filing Extractor - Charts Command
// =============================================================================
//
// This file defines the 'charts' command, which re-renders chart workbooks
// from reconciled CSVs already present in the output directory, without
// re-scanning the corpus.
//
// COMMAND USAGE:
//   advx charts [flags]
//
// FLAGS:
//   --start-year  : First fiscal year to include (0 keeps all years)
//   --firm        : Render only outputs whose file name contains this firm
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/report"
	"github.com/advtools/adv-extract/pkg/utils"
)

// chartsStartYear is the first fiscal year included in re-rendered charts.
var chartsStartYear int

// chartsFirmFilter restricts rendering to matching output files.
var chartsFirmFilter string

// chartsCmd represents the 'charts' command.
var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Render chart workbooks from existing reconciled CSVs",
	Long: `The charts command reads the reconciled CSV files in the output directory
and renders an XLSX chart workbook for each, with one line chart per metric
and year-over-year growth columns. The corpus is not re-scanned.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCharts()
	},
}

// init registers the charts command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(chartsCmd)

	chartsCmd.Flags().IntVar(
		&chartsStartYear,
		"start-year",
		0,
		"First fiscal year to include in charts (0 keeps all years)",
	)

	chartsCmd.Flags().StringVar(
		&chartsFirmFilter,
		"firm",
		"",
		"Render only outputs whose file name contains this firm name",
	)
}

// runCharts renders workbooks for the reconciled CSVs in the output
// directory.
func runCharts() error {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	pattern := filepath.Join(mainConfig.OutputDir, "adv_data_*.csv")
	csvFiles, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to list output files: %w", err)
	}
	sort.Strings(csvFiles)

	if chartsFirmFilter != "" {
		needle := strings.ToLower(utils.SanitizeFileName(chartsFirmFilter))
		var filtered []string
		for _, file := range csvFiles {
			if strings.Contains(strings.ToLower(filepath.Base(file)), needle) {
				filtered = append(filtered, file)
			}
		}
		csvFiles = filtered
	}

	if len(csvFiles) == 0 {
		fmt.Printf("No reconciled CSV files found in %s\n", mainConfig.OutputDir)
		return nil
	}

	fmt.Printf("Rendering charts for %d file(s)...\n", len(csvFiles))

	var rendered, failed int
	for _, csvFile := range csvFiles {
		table, columns, err := report.LoadTable(csvFile)
		if err != nil {
			failed++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(csvFile), err)
			continue
		}

		base := strings.TrimSuffix(filepath.Base(csvFile), filepath.Ext(csvFile))
		out := filepath.Join(mainConfig.ChartsDir, base+".xlsx")

		err = report.RenderWorkbook(table, columns, out, report.RenderOptions{
			StartYear: chartsStartYear,
		})
		if err != nil {
			failed++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(csvFile), err)
			continue
		}

		rendered++
		fmt.Printf("  ✓ %s -> %s\n", filepath.Base(csvFile), filepath.Base(out))
	}

	fmt.Printf("\nRendered: %d  Failed: %d\n", rendered, failed)
	return nil
}
