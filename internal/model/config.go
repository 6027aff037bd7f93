package model

import (
	"strconv"
	"strings"
)

// EstimatorConfig holds the thresholds used by the consumption forecast.
type EstimatorConfig struct {
	MinLevel     float64 // minimum safe fill level, %
	OrderVolume  float64 // level gained from one delivery, %
	MaxSafeLevel float64 // ceiling after a refill, %
	HistoryDays  int
	DeliveryDays int // default lead time when none is supplied
}

// DefaultEstimatorConfig returns the standard tank thresholds.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		MinLevel:     30,
		OrderVolume:  45,
		MaxSafeLevel: 90,
		HistoryDays:  HistoryDays,
		DeliveryDays: 2,
	}
}

// MaxDeliveryDays caps the lead time at about a century, the same horizon
// the forecast dates are clamped to.
const MaxDeliveryDays = 36525

// ParseDeliveryDays parses a lead time in whole days. Blank, unparseable,
// negative or oversized input falls back to def.
func ParseDeliveryDays(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return DeliveryDaysOr(n, def)
}

// DeliveryDaysOr returns n when it lies in [0, MaxDeliveryDays], else def.
func DeliveryDaysOr(n, def int) int {
	if n < 0 || n > MaxDeliveryDays {
		return def
	}
	return n
}
