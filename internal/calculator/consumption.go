package calculator

import "TankSentinel/internal/model"

// FallbackRate is used when no day in the series shows a decrease.
const FallbackRate = 0.1

// ConsumptionRate returns the mean daily decrease over the series, in %/day.
// Only adjacent pairs where both days are set and the level dropped from the
// older day to the newer one are averaged; refills and flat days are skipped.
// Returns FallbackRate if no such pair exists.
func ConsumptionRate(series model.Series) float64 {
	var sum float64
	count := 0
	for i := len(series) - 1; i > 0; i-- {
		older, newer := series[i], series[i-1]
		if !older.Set || !newer.Set {
			continue
		}
		if older.Value > newer.Value {
			sum += older.Value - newer.Value
			count++
		}
	}
	if count == 0 {
		return FallbackRate
	}
	return sum / float64(count)
}
