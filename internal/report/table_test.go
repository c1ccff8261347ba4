package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advtools/adv-extract/internal/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adv_data_Acme_801-100_12345_2021.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTableRoundTrip(t *testing.T) {
	path := writeCSV(t,
		"Fiscal Year,AUM,Headcount\n"+
			"2016,5000000,\n"+
			"2020,6000000,40\n")

	table, columns, err := LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AUM", "Headcount"}, columns)
	assert.Equal(t, []int{2016, 2020}, table.Years())

	rec, ok := table.Record(2016)
	require.True(t, ok)
	assert.True(t, rec.Values["AUM"].Valid)
	assert.False(t, rec.Values["Headcount"].Valid, "empty cell loads as absent")
}

func TestLoadTableRejectsBadYear(t *testing.T) {
	path := writeCSV(t, "Fiscal Year,AUM\nnot-a-year,1\n")

	_, _, err := LoadTable(path)
	assert.Error(t, err)
}

func TestLoadTableRejectsHeaderOnlyWithoutMetrics(t *testing.T) {
	path := writeCSV(t, "Fiscal Year\n2020\n")

	_, _, err := LoadTable(path)
	assert.Error(t, err)
}

func TestRenderWorkbook(t *testing.T) {
	table := types.ReconciledTable{Records: []types.FiscalYearRecord{
		{FiscalYear: 2019, Values: map[string]types.Value{"AUM": types.ParseValue("100")}},
		{FiscalYear: 2020, Values: map[string]types.Value{"AUM": types.ParseValue("110")}},
		{FiscalYear: 2021, Values: map[string]types.Value{"AUM": {}}},
	}}

	path := filepath.Join(t.TempDir(), "charts.xlsx")
	err := RenderWorkbook(table, []string{"AUM"}, path, RenderOptions{FirmName: "Acme"})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestRenderWorkbookStartYearFilter(t *testing.T) {
	table := types.ReconciledTable{Records: []types.FiscalYearRecord{
		{FiscalYear: 2010, Values: map[string]types.Value{"AUM": types.ParseValue("1")}},
	}}

	path := filepath.Join(t.TempDir(), "charts.xlsx")
	err := RenderWorkbook(table, []string{"AUM"}, path, RenderOptions{StartYear: 2017})
	assert.Error(t, err, "nothing at or after the start year to render")
}
