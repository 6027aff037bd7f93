package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HistoryDays is the fixed length of the reading series.
const HistoryDays = 7

// ErrSeriesLength is returned when a stored or submitted series does not hold
// exactly HistoryDays slots.
var ErrSeriesLength = fmt.Errorf("readings must hold exactly %d slots", HistoryDays)

// Reading is one daily fill-level slot. A slot is either unset or holds a
// validated percentage in [0, 100]. Invalid marks input that was rejected;
// such a slot is unset for every computation.
type Reading struct {
	Value   float64
	Set     bool
	Invalid bool
}

// Series holds the readings of the last HistoryDays days. Index 0 is today,
// index HistoryDays-1 is the oldest day.
type Series [HistoryDays]Reading

// ParseReading converts raw user input into a Reading.
// Blank input yields an unset slot; unparseable or out-of-range input yields
// an unset slot flagged invalid.
func ParseReading(raw string) Reading {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reading{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{Invalid: true}
	}
	return NewReading(v)
}

// NewReading wraps an already numeric value, applying the same range check.
func NewReading(v float64) Reading {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return Reading{Invalid: true}
	}
	return Reading{Value: v, Set: true}
}

// Filled returns the number of set slots.
func (s Series) Filled() int {
	n := 0
	for _, r := range s {
		if r.Set {
			n++
		}
	}
	return n
}

// FirstInvalid returns the lowest index flagged invalid, or -1.
func (s Series) FirstInvalid() int {
	for i, r := range s {
		if r.Invalid {
			return i
		}
	}
	return -1
}

// Current returns today's level.
func (s Series) Current() (float64, bool) {
	return s[0].Value, s[0].Set
}

// Shift moves every reading one day older. The oldest reading is dropped and
// today's slot becomes unset.
func (s Series) Shift() Series {
	var out Series
	copy(out[1:], s[:HistoryDays-1])
	return out
}

// Values returns the series in its stored shape: nil for unset slots.
func (s Series) Values() []*float64 {
	out := make([]*float64, HistoryDays)
	for i, r := range s {
		if r.Set {
			v := r.Value
			out[i] = &v
		}
	}
	return out
}

// SeriesFromValues rebuilds a series from its stored shape. Values outside
// [0, 100] come back flagged invalid.
func SeriesFromValues(values []*float64) (Series, error) {
	var s Series
	if len(values) != HistoryDays {
		return s, fmt.Errorf("%w, got %d", ErrSeriesLength, len(values))
	}
	for i, v := range values {
		if v != nil {
			s[i] = NewReading(*v)
		}
	}
	return s, nil
}
