package calculator

import (
	"errors"
	"math"
	"time"
)

// maxOffsetDays bounds calendar projections to about a century.
const maxOffsetDays = 36525

// DaysToLevel returns how many days it takes to fall from current to target at
// the given daily rate. Negative when current is already below target.
func DaysToLevel(current, target, rate float64) (float64, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, errors.New("rate must be a positive finite number")
	}
	return (current - target) / rate, nil
}

// LevelAfterDelivery returns the fill level after one delivery, capped at maxSafe.
func LevelAfterDelivery(current, orderVolume, maxSafe float64) float64 {
	return math.Min(current+orderVolume, maxSafe)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OffsetDays converts a fractional day count to a calendar offset, rounding with
// round (math.Floor or math.Ceil) and clamping to maxOffsetDays.
func OffsetDays(days float64, round func(float64) float64) int {
	v := round(days)
	switch {
	case math.IsNaN(v):
		return 0
	case v > maxOffsetDays:
		return maxOffsetDays
	case v < -maxOffsetDays:
		return -maxOffsetDays
	}
	return int(v)
}

// AddDays returns the calendar day n days after day.
func AddDays(day time.Time, n int) time.Time {
	return StartOfDay(day).AddDate(0, 0, n)
}
