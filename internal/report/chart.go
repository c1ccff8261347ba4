// =============================================================================
// ADV Filing Extractor - Chart Workbook Rendering
// =============================================================================
//
// This file renders a reconciled table as an XLSX workbook: a data sheet
// holding the fiscal-year series (with year-over-year growth columns), and
// a chart sheet with one line chart per metric.
//
// The workbook is a downstream consumer of the reconciled table; it
// performs no reconciliation logic of its own.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/advtools/adv-extract/internal/types"
)

const (
	dataSheet  = "Data"
	chartSheet = "Charts"

	// chartRows is the vertical spacing between stacked charts, in rows.
	chartRows = 16
)

// RenderOptions control workbook rendering.
type RenderOptions struct {
	// FirmName appears in chart titles. Optional.
	FirmName string

	// StartYear drops fiscal years before it. Zero keeps all years.
	StartYear int
}

// RenderWorkbook writes the table and its charts to an XLSX file at path.
func RenderWorkbook(table types.ReconciledTable, columns []string, path string, opts RenderOptions) error {
	filtered := filterFromYear(table, opts.StartYear)
	if filtered.Empty() {
		return fmt.Errorf("no fiscal years at or after %d to render", opts.StartYear)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", dataSheet)
	if _, err := f.NewSheet(chartSheet); err != nil {
		return fmt.Errorf("failed to create chart sheet: %w", err)
	}

	if err := writeDataSheet(f, filtered, columns); err != nil {
		return err
	}
	if err := writeCharts(f, filtered, columns, opts.FirmName); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// filterFromYear returns a table restricted to fiscal years >= startYear.
func filterFromYear(table types.ReconciledTable, startYear int) types.ReconciledTable {
	if startYear == 0 {
		return table
	}
	var records []types.FiscalYearRecord
	for _, rec := range table.Records {
		if rec.FiscalYear >= startYear {
			records = append(records, rec)
		}
	}
	return types.ReconciledTable{Records: records}
}

// writeDataSheet lays out the data sheet: fiscal years in column A, then a
// value column and a growth column per metric.
func writeDataSheet(f *excelize.File, table types.ReconciledTable, columns []string) error {
	if err := setCell(f, 1, 1, "Fiscal Year"); err != nil {
		return err
	}
	for i, rec := range table.Records {
		if err := setCell(f, 1, i+2, rec.FiscalYear); err != nil {
			return err
		}
	}

	for c, col := range columns {
		valueCol := 2 + c*2
		growthCol := valueCol + 1

		if err := setCell(f, valueCol, 1, col); err != nil {
			return err
		}
		if err := setCell(f, growthCol, 1, col+" Y/Y %"); err != nil {
			return err
		}

		values := table.Column(col)
		growth := YoYGrowth(values)
		for r := range values {
			if err := setDecimalCell(f, valueCol, r+2, values[r]); err != nil {
				return err
			}
			if err := setDecimalCell(f, growthCol, r+2, growth[r]); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeCharts adds one line chart per metric, stacked down the chart sheet.
func writeCharts(f *excelize.File, table types.ReconciledTable, columns []string, firmName string) error {
	rows := len(table.Records)

	for c, col := range columns {
		valueCol := 2 + c*2

		categoriesStart, _ := excelize.CoordinatesToCellName(1, 2, true)
		categoriesEnd, _ := excelize.CoordinatesToCellName(1, rows+1, true)
		valuesStart, _ := excelize.CoordinatesToCellName(valueCol, 2, true)
		valuesEnd, _ := excelize.CoordinatesToCellName(valueCol, rows+1, true)
		nameCell, _ := excelize.CoordinatesToCellName(valueCol, 1, true)

		title := col
		if firmName != "" {
			title = fmt.Sprintf("%s: %s", firmName, col)
		}

		anchor, err := excelize.CoordinatesToCellName(1, 1+c*chartRows)
		if err != nil {
			return fmt.Errorf("failed to compute chart anchor: %w", err)
		}

		chart := &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!%s", dataSheet, nameCell),
				Categories: fmt.Sprintf("%s!%s:%s", dataSheet, categoriesStart, categoriesEnd),
				Values:     fmt.Sprintf("%s!%s:%s", dataSheet, valuesStart, valuesEnd),
			}},
			Title: []excelize.RichTextRun{{Text: title}},
			Legend: excelize.ChartLegend{
				Position: "bottom",
			},
			PlotArea: excelize.ChartPlotArea{
				ShowVal: true,
			},
		}

		if err := f.AddChart(chartSheet, anchor, chart); err != nil {
			return fmt.Errorf("failed to add chart for %s: %w", col, err)
		}
	}

	return nil
}

// setCell writes any value at (col, row), 1-indexed.
func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates (%d, %d): %w", col, row, err)
	}
	if err := f.SetCellValue(dataSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

// setDecimalCell writes a nullable value; absent values leave the cell
// blank so chart series skip them instead of plotting zero.
func setDecimalCell(f *excelize.File, col, row int, v types.Value) error {
	if !v.Valid {
		return nil
	}
	value, _ := v.Decimal.Float64()
	return setCell(f, col, row, value)
}
