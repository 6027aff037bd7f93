package recorder

import "TankSentinel/internal/model"

// ForecastEvent holds one computed forecast and what triggered it.
type ForecastEvent struct {
	Forecast *model.Forecast
	Trigger  string // "SCHEDULED", "COMMAND", "API"
}

// ReadingEvent records a change to a single day slot.
type ReadingEvent struct {
	Index   int
	Raw     string
	Value   float64
	Set     bool
	Invalid bool
	Source  string // "TELEGRAM", "API"
}

// RolloverEvent records the start of a new day.
type RolloverEvent struct {
	DroppedValue float64
	DroppedSet   bool
	Filled       int // filled slots after the shift
}

// Stats summarizes the stored forecast history.
type Stats struct {
	Forecasts   int
	LastUrgency model.Urgency // empty when nothing is stored
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordForecast(evt *ForecastEvent) error
	RecordReading(evt *ReadingEvent) error
	RecordRollover(evt *RolloverEvent) error
	Stats() (Stats, error)
	Close() error
}
