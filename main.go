// =============================================================================
// ADV Filing Extractor - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ADV Filing Extractor CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   advx extract        - Reconcile filing snapshots into per-firm CSVs
//   advx charts         - Render chart workbooks from existing output
//   advx version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/advtools/adv-extract/cmd"
)

// main simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
