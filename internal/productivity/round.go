package productivity

import (
	"github.com/shopspring/decimal"
)

// round rounds half away from zero using the shortest decimal form of v,
// so 0.9*100 rounds as 90 rather than 90.00000000000001.
func round(v float64, places int) float64 {
	return decimal.NewFromFloat(v).Round(int32(places)).InexactFloat64()
}

// mean returns the rounded arithmetic mean of values.
// The caller guarantees values is non-empty.
func mean(values []float64, places int) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(int32(places)).InexactFloat64()
}
