package tank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TankSentinel/internal/model"
	"TankSentinel/internal/strategy"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tank_state.json")
	m, err := NewManager(path, model.DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, path
}

func fill(t *testing.T, m *Manager, values ...string) {
	t.Helper()
	for i, v := range values {
		if _, err := m.SetReading(i, v); err != nil {
			t.Fatalf("set reading %d: %v", i, err)
		}
	}
}

func TestManager_FreshStateUsesDefaults(t *testing.T) {
	m, _ := newTestManager(t)
	snap := m.Snapshot()
	if snap.Series.Filled() != 0 {
		t.Errorf("expected empty series, got %d filled", snap.Series.Filled())
	}
	if snap.DeliveryDays != 2 {
		t.Errorf("expected default delivery days 2, got %d", snap.DeliveryDays)
	}
}

func TestManager_SetReading(t *testing.T) {
	m, _ := newTestManager(t)

	r, err := m.SetReading(0, "64.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Set || r.Value != 64.5 {
		t.Errorf("expected accepted reading 64.5, got %+v", r)
	}

	r, _ = m.SetReading(1, "250")
	if r.Set || !r.Invalid {
		t.Errorf("expected invalid reading, got %+v", r)
	}

	r, _ = m.SetReading(0, "")
	if r.Set || r.Invalid {
		t.Errorf("expected cleared reading, got %+v", r)
	}

	for _, idx := range []int{-1, model.HistoryDays} {
		if _, err := m.SetReading(idx, "50"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("index %d: expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestManager_PersistenceRoundTrip(t *testing.T) {
	m, path := newTestManager(t)
	fill(t, m, "70", "72.25", "", "78", "80", "83", "85")
	if _, err := m.SetDeliveryDays("4"); err != nil {
		t.Fatalf("set delivery days: %v", err)
	}

	reloaded, err := NewManager(path, model.DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, want := reloaded.Snapshot(), m.Snapshot()
	if got.Series != want.Series {
		t.Errorf("series mismatch:\n got  %+v\n want %+v", got.Series, want.Series)
	}
	if got.DeliveryDays != 4 {
		t.Errorf("expected delivery days 4, got %d", got.DeliveryDays)
	}
}

func TestManager_InvalidReadingNotPersisted(t *testing.T) {
	m, path := newTestManager(t)
	fill(t, m, "70", "oops")

	reloaded, err := NewManager(path, model.DefaultEstimatorConfig())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	r := reloaded.Snapshot().Series[1]
	if r.Set || r.Invalid {
		t.Errorf("expected plain unset slot after reload, got %+v", r)
	}
}

func TestManager_SetDeliveryDaysFallback(t *testing.T) {
	m, _ := newTestManager(t)
	days, err := m.SetDeliveryDays("soon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 2 {
		t.Errorf("expected fallback 2, got %d", days)
	}
}

func TestManager_ClearKeepsDeliveryDays(t *testing.T) {
	m, _ := newTestManager(t)
	fill(t, m, "70", "72", "75")
	m.SetDeliveryDays("5")
	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	snap := m.Snapshot()
	if snap.Series.Filled() != 0 {
		t.Errorf("expected empty series after clear, got %d", snap.Series.Filled())
	}
	if snap.DeliveryDays != 5 {
		t.Errorf("expected delivery days 5, got %d", snap.DeliveryDays)
	}
}

func TestManager_Rollover(t *testing.T) {
	m, _ := newTestManager(t)
	fill(t, m, "70", "72", "75", "78", "80", "83", "85")
	if err := m.Rollover(); err != nil {
		t.Fatalf("rollover: %v", err)
	}
	s := m.Snapshot().Series
	if s[0].Set {
		t.Error("today's slot should be unset after rollover")
	}
	if s[1].Value != 70 || s[6].Value != 83 {
		t.Errorf("unexpected shifted series: %+v", s)
	}
	if s.Filled() != 6 {
		t.Errorf("expected 6 filled, got %d", s.Filled())
	}
}

func TestManager_Forecast(t *testing.T) {
	m, _ := newTestManager(t)
	today := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	fill(t, m, "70", "72", "75", "78", "80")
	_, err := m.Forecast(today)
	if !IsDataError(err) {
		t.Fatalf("expected data error, got %v", err)
	}
	var incomplete *strategy.IncompleteDataError
	if !errors.As(err, &incomplete) || incomplete.Filled != 5 {
		t.Errorf("expected 5 filled, got %v", err)
	}

	fill(t, m, "70", "72", "75", "78", "80", "83", "85")
	f, err := m.Forecast(today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Urgency != model.UrgencySufficient || f.DaysToOrder != 14 {
		t.Errorf("unexpected forecast: %+v", f)
	}
}

func TestLoadState_MissingFile(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "absent.json"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.DeliveryDays != 3 {
		t.Errorf("expected default delivery days 3, got %d", state.DeliveryDays)
	}
}

func TestLoadState_StoredShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"readings":[55.5,null,60,null,null,null,70],"delivery_days":0}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}
	state, err := LoadState(path, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.DeliveryDays != 0 {
		t.Errorf("expected delivery days 0, got %d", state.DeliveryDays)
	}
	s, err := model.SeriesFromValues(state.Readings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Filled() != 3 || s[0].Value != 55.5 || s[6].Value != 70 {
		t.Errorf("unexpected series: %+v", s)
	}

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"absent key", `{"readings":[70,72,75,78,80,83,85]}`, 2},
		{"explicit zero", `{"readings":[70,72,75,78,80,83,85],"delivery_days":0}`, 0},
		{"negative", `{"readings":[70,72,75,78,80,83,85],"delivery_days":-3}`, 2},
		{"oversized", `{"readings":[70,72,75,78,80,83,85],"delivery_days":9223372036854775807}`, 2},
	}
	for _, tt := range tests {
		if err := os.WriteFile(path, []byte(tt.raw), 0644); err != nil {
			t.Fatal(err)
		}
		state, err := LoadState(path, 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if state.DeliveryDays != tt.want {
			t.Errorf("%s: expected delivery days %d, got %d", tt.name, tt.want, state.DeliveryDays)
		}
	}
}

func TestLoadState_WrongReadingsLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	for _, raw := range []string{
		`{"readings":[70,72],"delivery_days":2}`,
		`{"readings":[70,72,75,78,80,83,85,99,12],"delivery_days":2}`,
		`{"delivery_days":2}`,
	} {
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadState(path, 2); !errors.Is(err, model.ErrSeriesLength) {
			t.Errorf("%s: expected ErrSeriesLength, got %v", raw, err)
		}
		if _, err := NewManager(path, model.DefaultEstimatorConfig()); err == nil {
			t.Errorf("%s: expected NewManager to fail", raw)
		}
	}
}

func TestManager_FailedSaveRollsBack(t *testing.T) {
	m, path := newTestManager(t)
	fill(t, m, "70", "72", "75", "78", "80", "83", "85")
	if _, err := m.SetDeliveryDays("3"); err != nil {
		t.Fatalf("set delivery days: %v", err)
	}
	before := m.Snapshot()

	// Replace the state directory with a plain file so every save fails.
	dir := filepath.Dir(path)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("blocked"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.SetReading(0, "10"); err == nil {
		t.Error("SetReading: expected save error")
	}
	if _, err := m.SetDeliveryDays("9"); err == nil {
		t.Error("SetDeliveryDays: expected save error")
	}
	if err := m.Replace(model.Series{}, 5); err == nil {
		t.Error("Replace: expected save error")
	}
	if err := m.Clear(); err == nil {
		t.Error("Clear: expected save error")
	}
	if err := m.Rollover(); err == nil {
		t.Error("Rollover: expected save error")
	}

	after := m.Snapshot()
	if after.Series != before.Series || after.DeliveryDays != before.DeliveryDays {
		t.Errorf("state changed despite failed saves:\n got  %+v\n want %+v", after, before)
	}
}

func TestManager_ReplaceBoundsDeliveryDays(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Replace(model.Series{}, model.MaxDeliveryDays+1); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := m.Snapshot().DeliveryDays; got != 2 {
		t.Errorf("expected default delivery days 2, got %d", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&strategy.IncompleteDataError{Filled: 3, Required: 7}, "incomplete"},
		{&strategy.InvalidDataError{Index: 1}, "invalid"},
		{strategy.ErrInvalidRate, "invalid"},
		{os.ErrPermission, "error"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v): expected %q, got %q", tt.err, tt.want, got)
		}
	}
}
