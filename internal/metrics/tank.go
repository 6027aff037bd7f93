package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"TankSentinel/internal/model"
)

var urgencies = []model.Urgency{
	model.UrgencyCritical,
	model.UrgencyOrderNow,
	model.UrgencyOrderSoon,
	model.UrgencySufficient,
}

var (
	tankLevel = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tanksentinel",
		Name:      "tank_level_percent",
		Help:      "Most recent fill level reading in percent",
	})

	consumptionRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tanksentinel",
		Name:      "consumption_rate_percent_per_day",
		Help:      "Estimated average daily decrease of the fill level",
	})

	daysToMinimum = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tanksentinel",
		Name:      "days_to_minimum",
		Help:      "Projected days until the minimum safe level is reached",
	})

	daysToOrder = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tanksentinel",
		Name:      "days_to_order",
		Help:      "Projected days until a refill has to be ordered",
	})

	urgencyGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tanksentinel",
			Name:      "urgency",
			Help:      "Current urgency classification (1 for the active class)",
		},
		[]string{"urgency"},
	)

	filledDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tanksentinel",
		Name:      "filled_days",
		Help:      "Number of days in the history that hold a valid reading",
	})

	forecastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tanksentinel",
			Name:      "forecasts_total",
			Help:      "Forecast computations by outcome",
		},
		[]string{"outcome"},
	)

	readingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tanksentinel",
			Name:      "readings_total",
			Help:      "Reading updates by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(tankLevel, consumptionRate, daysToMinimum, daysToOrder,
		urgencyGauge, filledDays, forecastsTotal, readingsTotal)
}

// ObserveForecast publishes a successful forecast.
func ObserveForecast(f *model.Forecast) {
	tankLevel.Set(f.CurrentLevel)
	consumptionRate.Set(f.Rate)
	daysToMinimum.Set(f.DaysToMin)
	daysToOrder.Set(f.DaysToOrder)
	for _, u := range urgencies {
		v := 0.0
		if u == f.Urgency {
			v = 1
		}
		urgencyGauge.WithLabelValues(string(u)).Set(v)
	}
	forecastsTotal.WithLabelValues("ok").Inc()
}

// ObserveForecastError counts a forecast that could not be computed.
// kind is "incomplete", "invalid" or "error".
func ObserveForecastError(kind string) {
	forecastsTotal.WithLabelValues(kind).Inc()
}

// ObserveSeries publishes how complete the history is.
func ObserveSeries(s model.Series) {
	filledDays.Set(float64(s.Filled()))
	if v, ok := s.Current(); ok {
		tankLevel.Set(v)
	}
}

// ObserveReading counts a reading update.
func ObserveReading(r model.Reading) {
	switch {
	case r.Invalid:
		readingsTotal.WithLabelValues("invalid").Inc()
	case r.Set:
		readingsTotal.WithLabelValues("accepted").Inc()
	default:
		readingsTotal.WithLabelValues("cleared").Inc()
	}
}
