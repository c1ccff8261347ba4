package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advtools/adv-extract/internal/config"
	"github.com/advtools/adv-extract/internal/types"
)

// testLogger discards all output.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}

func testSettings(overwrites map[string]map[string]config.YAMLDecimal) *config.Settings {
	return &config.Settings{
		MatchingStrategy: config.MatchBoth,
		TargetColumns:    []string{"AUM", "Headcount"},
		Overwrites:       overwrites,
	}
}

func row(file, filingID, execDate string, aum int64) types.MatchedRow {
	return types.MatchedRow{
		SourceFile:    file,
		FilingID:      filingID,
		ExecutionDate: execDate,
		Values: map[string]types.Value{
			"AUM":       types.SomeValue(decimal.NewFromInt(aum)),
			"Headcount": {},
		},
	}
}

func dec(i int64) config.YAMLDecimal {
	return config.YAMLDecimal{Decimal: decimal.NewFromInt(i)}
}

func TestFiscalYearDerivation(t *testing.T) {
	tests := []struct {
		name string
		date string
		year int
		ok   bool
	}{
		{"iso date maps to prior year", "2022-03-15", 2021, true},
		{"january filing still reports prior year", "2020-01-02", 2019, true},
		{"datetime layout", "2019-06-30 12:00:00", 2018, true},
		{"us layout", "03/15/2022", 2021, true},
		{"empty date", "", 0, false},
		{"garbage date", "not-a-date", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := FiscalYear(tt.date)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.year, year)
			}
		})
	}
}

func TestUnparseableDateDropsRow(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F1", "bogus", 100),
		row("b.csv", "F2", "2022-03-15", 200),
	}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 1)
	assert.Equal(t, 2021, table.Records[0].FiscalYear)
}

func TestMostRecentWinsAcrossTables(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	// Two snapshots both matched fiscal year 2020 with different values.
	// The later one in scan order must win.
	table := r.Reconcile([]types.MatchedRow{
		row("snapshots/2021_q1.csv", "F1", "2021-02-01", 100),
		row("snapshots/2021_q3.csv", "F2", "2021-08-01", 250),
	}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 1)
	rec := table.Records[0]
	assert.Equal(t, 2020, rec.FiscalYear)
	require.True(t, rec.Values["AUM"].Valid)
	assert.True(t, rec.Values["AUM"].Decimal.Equal(decimal.NewFromInt(250)))
}

func TestOverwritePrecedesYearCollapse(t *testing.T) {
	// The overwrite targets F123; a different filing for the same fiscal
	// year is also matched and wins the collapse. Because the overwrite is
	// applied before the collapse, the collapse chooses among
	// already-overwritten candidates.
	overwrites := map[string]map[string]config.YAMLDecimal{
		"F123": {"AUM": dec(999)},
		"F456": {"AUM": dec(777)},
	}
	r := New(testSettings(overwrites), testLogger{})

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F123", "2021-03-01", 100),
		row("b.csv", "F456", "2021-09-01", 200),
	}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 1)
	rec := table.Records[0]
	assert.Equal(t, 2020, rec.FiscalYear)
	// F456 wins the collapse, carrying its own overwritten value.
	assert.True(t, rec.Values["AUM"].Decimal.Equal(decimal.NewFromInt(777)))
}

func TestOverwriteKeysOnFilingIDNotYear(t *testing.T) {
	overwrites := map[string]map[string]config.YAMLDecimal{
		"F123": {"AUM": dec(999)},
	}
	r := New(testSettings(overwrites), testLogger{})

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F123", "2021-03-01", 100),
		row("b.csv", "F999", "2022-03-01", 200),
	}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 2)
	// F123's year is corrected, F999's is untouched.
	assert.True(t, table.Records[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(999)))
	assert.True(t, table.Records[1].Values["AUM"].Decimal.Equal(decimal.NewFromInt(200)))
}

func TestOverwriteDoesNotMutateInput(t *testing.T) {
	overwrites := map[string]map[string]config.YAMLDecimal{
		"F123": {"AUM": dec(999)},
	}
	r := New(testSettings(overwrites), testLogger{})

	input := []types.MatchedRow{row("a.csv", "F123", "2021-03-01", 100)}
	r.Reconcile(input, config.Firm{Name: "Acme"})

	// The caller's row must be untouched; corrections build new rows.
	assert.True(t, input[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(100)))
}

func TestOverwriteUnknownColumnIgnored(t *testing.T) {
	overwrites := map[string]map[string]config.YAMLDecimal{
		"F123": {"NoSuchColumn": dec(1)},
	}
	r := New(testSettings(overwrites), testLogger{})

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F123", "2021-03-01", 100),
	}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 1)
	assert.True(t, table.Records[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(100)))
	_, exists := table.Records[0].Values["NoSuchColumn"]
	assert.False(t, exists)
}

func TestDefaultBackfill(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	firm := config.Firm{
		Name: "Acme",
		DefaultValues: map[int]map[string]config.YAMLDecimal{
			2016: {"AUM": dec(5000000)},
		},
	}

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F1", "2022-03-15", 100),
	}, firm)

	require.Len(t, table.Records, 2)

	rec, ok := table.Record(2016)
	require.True(t, ok)
	require.True(t, rec.Values["AUM"].Valid)
	assert.True(t, rec.Values["AUM"].Decimal.Equal(decimal.NewFromInt(5000000)))
	// Fields without a default stay absent, not zero.
	assert.False(t, rec.Values["Headcount"].Valid)
}

func TestDefaultsNeverOverrideCorpusData(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	firm := config.Firm{
		Name: "Acme",
		DefaultValues: map[int]map[string]config.YAMLDecimal{
			2021: {"AUM": dec(1)},
		},
	}

	table := r.Reconcile([]types.MatchedRow{
		row("a.csv", "F1", "2022-03-15", 100),
	}, firm)

	require.Len(t, table.Records, 1)
	assert.True(t, table.Records[0].Values["AUM"].Decimal.Equal(decimal.NewFromInt(100)))
}

func TestEmptyCorpusFallsBackToDefaults(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	firm := config.Firm{
		Name: "Acme",
		DefaultValues: map[int]map[string]config.YAMLDecimal{
			2018: {"AUM": dec(10)},
			2016: {"AUM": dec(5)},
		},
	}

	table := r.Reconcile(nil, firm)

	require.Len(t, table.Records, 2)
	assert.Equal(t, []int{2016, 2018}, table.Years())
}

func TestEmptyCorpusAndNoDefaultsYieldsEmptyTable(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	table := r.Reconcile(nil, config.Firm{Name: "Acme"})

	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.MostRecentYear())
}

func TestOrderingStrictlyIncreasing(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	firm := config.Firm{
		Name: "Acme",
		DefaultValues: map[int]map[string]config.YAMLDecimal{
			2015: {"AUM": dec(1)},
			2019: {"AUM": dec(2)},
		},
	}

	table := r.Reconcile([]types.MatchedRow{
		row("c.csv", "F3", "2023-01-10", 300),
		row("a.csv", "F1", "2018-02-10", 100),
		row("b.csv", "F2", "2021-02-10", 200),
	}, firm)

	require.Greater(t, len(table.Records), 1)
	for i := 1; i < len(table.Records); i++ {
		assert.Less(t, table.Records[i-1].FiscalYear, table.Records[i].FiscalYear,
			"fiscal years must be strictly increasing")
	}
}

func TestDeterminism(t *testing.T) {
	overwrites := map[string]map[string]config.YAMLDecimal{
		"F2": {"AUM": dec(42)},
	}
	firm := config.Firm{
		Name: "Acme",
		DefaultValues: map[int]map[string]config.YAMLDecimal{
			2014: {"AUM": dec(7), "Headcount": dec(3)},
		},
	}
	rows := []types.MatchedRow{
		row("a.csv", "F1", "2019-04-01", 100),
		row("b.csv", "F2", "2020-04-01", 200),
		row("c.csv", "F3", "2020-06-01", 300),
	}

	first := New(testSettings(overwrites), testLogger{}).Reconcile(rows, firm)
	second := New(testSettings(overwrites), testLogger{}).Reconcile(rows, firm)

	assert.Equal(t, first, second)
}

func TestZeroStaysDistinctFromAbsent(t *testing.T) {
	r := New(testSettings(nil), testLogger{})

	zeroRow := types.MatchedRow{
		SourceFile:    "a.csv",
		FilingID:      "F1",
		ExecutionDate: "2022-03-15",
		Values: map[string]types.Value{
			"AUM":       types.SomeValue(decimal.Zero),
			"Headcount": {},
		},
	}

	table := r.Reconcile([]types.MatchedRow{zeroRow}, config.Firm{Name: "Acme"})

	require.Len(t, table.Records, 1)
	rec := table.Records[0]
	require.True(t, rec.Values["AUM"].Valid, "reported zero must stay a value")
	assert.True(t, rec.Values["AUM"].Decimal.IsZero())
	assert.False(t, rec.Values["Headcount"].Valid, "unreported field must stay absent")
}
