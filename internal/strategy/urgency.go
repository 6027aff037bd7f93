package strategy

import "TankSentinel/internal/model"

// orderSoonWindow is how many days ahead of the order date the tank is flagged.
const orderSoonWindow = 2

// Classify maps the current level and order horizon to an urgency.
// The checks are ordered; the first match wins.
func Classify(currentLevel, daysToOrder, minLevel float64) model.Urgency {
	switch {
	case currentLevel <= minLevel:
		return model.UrgencyCritical
	case daysToOrder <= 0:
		return model.UrgencyOrderNow
	case daysToOrder <= orderSoonWindow:
		return model.UrgencyOrderSoon
	default:
		return model.UrgencySufficient
	}
}
