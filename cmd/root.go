// =============================================================================
// ADV Filing Extractor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'extract', 'charts') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (advx)
//   ├── extractCmd (advx extract)
//   ├── chartsCmd  (advx charts)
//   └── versionCmd (advx version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "advx",

	Short: "ADV Filing Extractor - Reconcile Form ADV filing snapshots into fiscal-year series",

	Long: `ADV Filing Extractor reconciles yearly SEC Form ADV filing records scattered
across raw CSV snapshots into one clean, gap-filled time series per tracked
firm, then renders that series as chart workbooks.

Key Features:
  - Configurable matching by SEC ID, CRD ID, or both
  - Most-recent-filing-wins resolution of duplicate records
  - Manual per-filing corrections via overwrite rules
  - Default back-fill for fiscal years missing from the corpus
  - Concurrent per-firm processing

Example Usage:
  advx extract                     # Reconcile all configured firms
  advx extract --config ./my.yaml  # Use a custom configuration file
  advx extract --charts            # Also render chart workbooks
  advx charts --start-year 2017    # Re-render charts from existing output`,

	// If no subcommand is provided, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
