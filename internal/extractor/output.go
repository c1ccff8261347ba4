// =============================================================================
// ADV Filing Extractor - Output Writer
// =============================================================================
//
// This file writes a reconciled table as a row-per-year CSV. The first
// column is the fiscal year, followed by the configured target columns in
// order. Absent values are written as empty cells so that a reported zero
// stays distinguishable from "not reported".
//
// =============================================================================

package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/advtools/adv-extract/internal/types"
)

// FiscalYearHeader is the header of the year column in output files.
const FiscalYearHeader = "Fiscal Year"

// WriteCSV writes the table to outputDir/fileName and returns the full
// path. Column order follows targetColumns exactly, so two runs over
// identical inputs produce byte-identical files.
func WriteCSV(table types.ReconciledTable, targetColumns []string, outputDir, fileName string) (string, error) {
	path := filepath.Join(outputDir, fileName)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := append([]string{FiscalYearHeader}, targetColumns...)
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range table.Records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(record.FiscalYear))
		for _, col := range targetColumns {
			row = append(row, formatCell(record.Values[col]))
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row for fiscal year %d: %w", record.FiscalYear, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}

	return path, nil
}

// formatCell renders a value for the CSV output. Absent values become empty
// cells, never zero.
func formatCell(v types.Value) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
