package model

import "time"

// Urgency classifies how soon a refill has to be ordered.
type Urgency string

const (
	UrgencyCritical   Urgency = "critical"
	UrgencyOrderNow   Urgency = "order now"
	UrgencyOrderSoon  Urgency = "order soon"
	UrgencySufficient Urgency = "sufficient"
)

// Forecast is the derived projection for the current series. It is recomputed
// on demand and never stored as state.
type Forecast struct {
	CurrentLevel       float64   `json:"current_level"`
	Rate               float64   `json:"consumption_rate"` // %/day
	DaysToMin          float64   `json:"days_to_min"`
	DaysToOrder        float64   `json:"days_to_order"`
	DeliveryDays       int       `json:"delivery_days"`
	OrderDate          time.Time `json:"order_date"`
	ArrivalDate        time.Time `json:"arrival_date"`
	DepletionDate      time.Time `json:"depletion_date"`
	LevelAfterDelivery float64   `json:"level_after_delivery"`
	Urgency            Urgency   `json:"urgency"`
	ComputedAt         time.Time `json:"computed_at"`
}
