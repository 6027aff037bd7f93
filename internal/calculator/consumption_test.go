package calculator

import (
	"math"
	"testing"

	"TankSentinel/internal/model"
)

func seriesOf(values ...float64) model.Series {
	var s model.Series
	for i, v := range values {
		s[i] = model.NewReading(v)
	}
	return s
}

func TestConsumptionRate_SteadyDecline(t *testing.T) {
	s := seriesOf(70, 72, 75, 78, 80, 83, 85)
	if got := ConsumptionRate(s); got != 2.5 {
		t.Errorf("expected rate 2.5, got %v", got)
	}
}

func TestConsumptionRate_IgnoresRefillAndFlatDays(t *testing.T) {
	// oldest -> newest: 50, 46, 46, 88 (refill), 84, 81, 79
	s := seriesOf(79, 81, 84, 88, 46, 46, 50)
	want := (4.0 + 4.0 + 3.0 + 2.0) / 4.0
	if got := ConsumptionRate(s); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected rate %.4f, got %.4f", want, got)
	}
}

func TestConsumptionRate_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		series model.Series
	}{
		{"flat", seriesOf(60, 60, 60, 60, 60, 60, 60)},
		{"increasing", seriesOf(90, 80, 70, 60, 50, 40, 30)},
		{"empty", model.Series{}},
		{"single", seriesOf(50)},
	}
	for _, tt := range tests {
		if got := ConsumptionRate(tt.series); got != FallbackRate {
			t.Errorf("%s: expected fallback %v, got %v", tt.name, FallbackRate, got)
		}
	}
}

func TestConsumptionRate_SkipsPairsWithUnsetDay(t *testing.T) {
	s := seriesOf(70, 72, 75, 78, 80, 83, 85)
	s[3] = model.Reading{Invalid: true}
	// remaining pairs: 85->83, 83->80, 75->72, 72->70
	want := (2.0 + 3.0 + 3.0 + 2.0) / 4.0
	if got := ConsumptionRate(s); got != want {
		t.Errorf("expected rate %v, got %v", want, got)
	}
}
