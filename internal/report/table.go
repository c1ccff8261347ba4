// =============================================================================
// ADV Filing Extractor - Reconciled Table Loading
// =============================================================================
//
// This file reads a previously written reconciled CSV back into memory, so
// chart rendering can run as a separate step against existing outputs.
//
// =============================================================================

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/advtools/adv-extract/internal/types"
)

// LoadTable reads a reconciled CSV produced by the extractor. It returns
// the table and the metric column names in file order.
func LoadTable(path string) (types.ReconciledTable, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.ReconciledTable{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return types.ReconciledTable{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return types.ReconciledTable{}, nil, fmt.Errorf("%s is empty", path)
	}

	header := rows[0]
	if len(header) < 2 {
		return types.ReconciledTable{}, nil, fmt.Errorf("%s has no metric columns", path)
	}
	columns := header[1:]

	var records []types.FiscalYearRecord
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		year, err := strconv.Atoi(row[0])
		if err != nil {
			return types.ReconciledTable{}, nil, fmt.Errorf("%s row %d: invalid fiscal year %q", path, i+2, row[0])
		}

		values := make(map[string]types.Value, len(columns))
		for j, col := range columns {
			if j+1 < len(row) && row[j+1] != "" {
				values[col] = types.ParseValue(row[j+1])
			} else {
				values[col] = types.Value{}
			}
		}
		records = append(records, types.FiscalYearRecord{FiscalYear: year, Values: values})
	}

	return types.ReconciledTable{Records: records}, columns, nil
}
