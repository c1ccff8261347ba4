package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advtools/adv-extract/internal/config"
)

// testLogger discards all output.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}

func scanSettings(strategy config.MatchingStrategy) *config.Settings {
	return &config.Settings{
		SECIDColumn:         "SEC#",
		CRDIDColumn:         "FirmCrdNb",
		FilingIDColumn:      "FilingID",
		ExecutionDateColumn: "Execution Date",
		MatchingStrategy:    strategy,
		TargetColumns:       []string{"AUM", "Headcount"},
		Delimiter:           ",",
		Encoding:            "utf-8",
	}
}

var testFirm = config.Firm{Name: "Acme", SECID: "801-100", CRDID: "12345"}

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScanSelectsOneRowPerSnapshot(t *testing.T) {
	dir := t.TempDir()
	a := writeSnapshot(t, dir, "IA_ADV_Base_A.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-999,55555,F0,2021-02-01,1,1\n"+
			"801-100,12345,F1,2021-03-15,5000,40\n")
	b := writeSnapshot(t, dir, "IA_ADV_Base_B.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-100,12345,F2,2022-03-15,6000,45\n")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, duplicates := s.Scan([]string{a, b}, testFirm)

	require.Len(t, rows, 2)
	assert.Empty(t, duplicates)

	assert.Equal(t, "F1", rows[0].FilingID)
	assert.Equal(t, "2021-03-15", rows[0].ExecutionDate)
	assert.True(t, rows[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(5000)))

	assert.Equal(t, "F2", rows[1].FilingID)
}

func TestScanLastMatchWinsWithinSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "IA_ADV_Base_A.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-100,12345,F1,2021-03-15,5000,40\n"+
			"801-999,55555,F9,2021-01-01,1,1\n"+
			"801-100,12345,F2,2021-04-20,5200,41\n")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, duplicates := s.Scan([]string{path}, testFirm)

	// Duplicate filings in a single snapshot: the last matching row in
	// file order wins, and the competitors are reported.
	require.Len(t, rows, 1)
	assert.Equal(t, "F2", rows[0].FilingID)
	assert.True(t, rows[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(5200)))

	require.Len(t, duplicates, 1)
	assert.Equal(t, path, duplicates[0].SourceFile)
	assert.Equal(t, []string{"F1", "F2"}, duplicates[0].FilingIDs)
	assert.Equal(t, "F2", duplicates[0].SelectedID)
}

func TestScanSkipsSnapshotWithNoMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "IA_ADV_Base_A.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-999,55555,F9,2021-01-01,1,1\n")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, duplicates := s.Scan([]string{path}, testFirm)

	// Absence is expected for corpora spanning years before the firm
	// existed; it is not an error.
	assert.Empty(t, rows)
	assert.Empty(t, duplicates)
}

func TestScanSkipsUnreadableSnapshots(t *testing.T) {
	dir := t.TempDir()
	good := writeSnapshot(t, dir, "IA_ADV_Base_B.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-100,12345,F2,2022-03-15,6000,45\n")
	missing := filepath.Join(dir, "IA_ADV_Base_A.csv")
	malformed := writeSnapshot(t, dir, "IA_ADV_Base_C.csv", "")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, _ := s.Scan([]string{missing, good, malformed}, testFirm)

	// Partial corpus corruption must not abort the run.
	require.Len(t, rows, 1)
	assert.Equal(t, "F2", rows[0].FilingID)
}

func TestScanCoercionFailureBecomesAbsent(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "IA_ADV_Base_A.csv",
		"SEC#,FirmCrdNb,FilingID,Execution Date,AUM,Headcount\n"+
			"801-100,12345,F1,2021-03-15,not-a-number,0\n")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, _ := s.Scan([]string{path}, testFirm)

	require.Len(t, rows, 1)
	assert.False(t, rows[0].Values["AUM"].Valid, "uncoercible cell must become absent")
	// Zero is a reported value, not an absence.
	require.True(t, rows[0].Values["Headcount"].Valid)
	assert.True(t, rows[0].Values["Headcount"].Decimal.IsZero())
}

func TestScanMissingFilingIDGetsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "IA_ADV_Base_A.csv",
		"SEC#,FirmCrdNb,Execution Date,AUM,Headcount\n"+
			"801-100,12345,2021-03-15,5000,40\n")

	s := New(scanSettings(config.MatchBoth), testLogger{})
	rows, _ := s.Scan([]string{path}, testFirm)

	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0].FilingID)
}
