// =============================================================================
// ADV Filing Extractor - Growth Calculations
// =============================================================================
//
// Year-over-year growth and annual-average series over nullable values.
// These assume the strictly ascending fiscal-year ordering produced by the
// reconciler: position i-1 is the previous fiscal year of position i.
//
// =============================================================================

package report

import (
	"github.com/shopspring/decimal"

	"github.com/advtools/adv-extract/internal/types"
)

var hundred = decimal.NewFromInt(100)

// YoYGrowth calculates year-over-year growth percentages for a value
// series. The first position is always absent (no prior year), as is any
// position where either neighbor is absent or the prior value is zero.
func YoYGrowth(values []types.Value) []types.Value {
	growth := make([]types.Value, len(values))
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !prev.Valid || !cur.Valid || prev.Decimal.IsZero() {
			continue
		}
		pct := cur.Decimal.Sub(prev.Decimal).Div(prev.Decimal).Mul(hundred)
		growth[i] = types.SomeValue(pct)
	}
	return growth
}

// AnnualAverages calculates the average of each value and its prior-year
// value, the mid-year convention used for per-head ratios. Positions
// without two present neighbors are absent.
func AnnualAverages(values []types.Value) []types.Value {
	two := decimal.NewFromInt(2)
	averages := make([]types.Value, len(values))
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !prev.Valid || !cur.Valid {
			continue
		}
		averages[i] = types.SomeValue(cur.Decimal.Add(prev.Decimal).Div(two))
	}
	return averages
}
