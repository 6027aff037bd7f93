package strategy

import (
	"math"
	"time"

	"TankSentinel/internal/calculator"
	"TankSentinel/internal/model"
)

// Evaluate computes the refill forecast for a complete series.
// deliveryDays outside [0, model.MaxDeliveryDays] falls back to cfg.DeliveryDays. today anchors the
// calendar dates; only its date part is used.
func Evaluate(series model.Series, deliveryDays int, cfg model.EstimatorConfig, today time.Time) (*model.Forecast, error) {
	if idx := series.FirstInvalid(); idx >= 0 {
		return nil, &InvalidDataError{Index: idx}
	}
	if filled := series.Filled(); filled < len(series) {
		return nil, &IncompleteDataError{Filled: filled, Required: len(series)}
	}
	deliveryDays = model.DeliveryDaysOr(deliveryDays, cfg.DeliveryDays)

	current, _ := series.Current()
	rate := calculator.ConsumptionRate(series)
	daysToMin, err := calculator.DaysToLevel(current, cfg.MinLevel, rate)
	if err != nil {
		return nil, ErrInvalidRate
	}
	daysToOrder := daysToMin - float64(deliveryDays)

	orderDate := calculator.AddDays(today, calculator.OffsetDays(daysToOrder, math.Floor))

	return &model.Forecast{
		CurrentLevel:       current,
		Rate:               rate,
		DaysToMin:          daysToMin,
		DaysToOrder:        daysToOrder,
		DeliveryDays:       deliveryDays,
		OrderDate:          orderDate,
		ArrivalDate:        calculator.AddDays(orderDate, deliveryDays),
		DepletionDate:      calculator.AddDays(today, calculator.OffsetDays(daysToMin, math.Ceil)),
		LevelAfterDelivery: calculator.LevelAfterDelivery(current, cfg.OrderVolume, cfg.MaxSafeLevel),
		Urgency:            Classify(current, daysToOrder, cfg.MinLevel),
		ComputedAt:         today,
	}, nil
}
