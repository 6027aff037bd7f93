package tank

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"TankSentinel/internal/model"
	"TankSentinel/internal/strategy"
)

// ErrIndexOutOfRange is returned for a day index outside the series.
var ErrIndexOutOfRange = fmt.Errorf("day index must be between 0 and %d", model.HistoryDays-1)

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Series       model.Series
	DeliveryDays int
	UpdatedAt    time.Time
}

// Manager owns the reading series and the delivery lead time. Every mutation
// is persisted before it returns; a mutation whose save fails is rolled back.
// An empty file path keeps state in memory.
type Manager struct {
	mu           sync.Mutex
	series       model.Series
	deliveryDays int
	updatedAt    time.Time
	cfg          model.EstimatorConfig
	filePath     string
}

// NewManager creates a Manager, restoring state from disk when present.
func NewManager(filePath string, cfg model.EstimatorConfig) (*Manager, error) {
	m := &Manager{cfg: cfg, filePath: filePath, deliveryDays: cfg.DeliveryDays}
	if filePath == "" {
		return m, nil
	}
	state, err := LoadState(filePath, cfg.DeliveryDays)
	if err != nil {
		return nil, fmt.Errorf("load tank state: %w", err)
	}
	if m.series, err = model.SeriesFromValues(state.Readings); err != nil {
		return nil, fmt.Errorf("load tank state: %w", err)
	}
	m.deliveryDays = state.DeliveryDays
	m.updatedAt = state.UpdatedAt
	return m, nil
}

// Snapshot returns a copy of the current readings and lead time.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Series: m.series, DeliveryDays: m.deliveryDays, UpdatedAt: m.updatedAt}
}

// SetReading validates raw and stores it in slot index. The returned Reading
// shows whether the input was accepted, cleared or flagged invalid.
func (m *Manager) SetReading(index int, raw string) (model.Reading, error) {
	if index < 0 || index >= model.HistoryDays {
		return model.Reading{}, ErrIndexOutOfRange
	}
	r := model.ParseReading(raw)

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.series
	m.series[index] = r
	if err := m.save(); err != nil {
		m.series = prev
		return r, err
	}
	return r, nil
}

// SetDeliveryDays parses and stores the lead time, falling back to the
// configured default for unusable input.
func (m *Manager) SetDeliveryDays(raw string) (int, error) {
	days := model.ParseDeliveryDays(raw, m.cfg.DeliveryDays)

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.deliveryDays
	m.deliveryDays = days
	if err := m.save(); err != nil {
		m.deliveryDays = prev
		return days, err
	}
	return days, nil
}

// Replace swaps in a whole series and lead time, e.g. after an import.
// A lead time outside [0, model.MaxDeliveryDays] uses the configured default.
func (m *Manager) Replace(series model.Series, deliveryDays int) error {
	deliveryDays = model.DeliveryDaysOr(deliveryDays, m.cfg.DeliveryDays)

	m.mu.Lock()
	defer m.mu.Unlock()
	prevSeries, prevDays := m.series, m.deliveryDays
	m.series = series
	m.deliveryDays = deliveryDays
	if err := m.save(); err != nil {
		m.series, m.deliveryDays = prevSeries, prevDays
		return err
	}
	return nil
}

// Clear drops every reading. The lead time is kept.
func (m *Manager) Clear() error {
	return m.swapSeries(func(model.Series) model.Series { return model.Series{} })
}

// Rollover starts a new day: every reading moves one day older and today's
// slot becomes unset.
func (m *Manager) Rollover() error {
	return m.swapSeries(model.Series.Shift)
}

func (m *Manager) swapSeries(next func(model.Series) model.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.series
	m.series = next(prev)
	if err := m.save(); err != nil {
		m.series = prev
		return err
	}
	return nil
}

// Forecast evaluates the current series as of today.
func (m *Manager) Forecast(today time.Time) (*model.Forecast, error) {
	snap := m.Snapshot()
	return strategy.Evaluate(snap.Series, snap.DeliveryDays, m.cfg, today)
}

func (m *Manager) save() error {
	if m.filePath == "" {
		m.updatedAt = time.Now()
		return nil
	}
	state := &model.TankState{
		Readings:     m.series.Values(),
		DeliveryDays: m.deliveryDays,
	}
	if err := SaveState(m.filePath, state); err != nil {
		return fmt.Errorf("save tank state: %w", err)
	}
	m.updatedAt = state.UpdatedAt
	return nil
}

// ErrorKind classifies a forecast error as "incomplete", "invalid" or "error".
func ErrorKind(err error) string {
	var incomplete *strategy.IncompleteDataError
	var invalid *strategy.InvalidDataError
	switch {
	case errors.As(err, &incomplete):
		return "incomplete"
	case errors.As(err, &invalid), errors.Is(err, strategy.ErrInvalidRate):
		return "invalid"
	default:
		return "error"
	}
}

// IsDataError reports whether err means the series cannot be forecast yet,
// as opposed to an operational failure.
func IsDataError(err error) bool {
	return ErrorKind(err) != "error"
}
