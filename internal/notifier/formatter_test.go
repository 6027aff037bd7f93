package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"TankSentinel/internal/model"
	"TankSentinel/internal/strategy"
)

func TestFormatForecast(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	f := &model.Forecast{
		CurrentLevel: 70, Rate: 2.5, DaysToMin: 16, DaysToOrder: 14, DeliveryDays: 2,
		OrderDate: day.AddDate(0, 0, 14), ArrivalDate: day.AddDate(0, 0, 16), DepletionDate: day.AddDate(0, 0, 16),
		LevelAfterDelivery: 90, Urgency: model.UrgencySufficient, ComputedAt: day,
	}
	msg := FormatForecast(f)
	for _, want := range []string{"SUFFICIENT", "2.50%/day", "Order by: 2025-06-16", "arrival 2025-06-18", "90.0%"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message:\n%s", want, msg)
		}
	}
}

func TestFormatForecast_OrderNow(t *testing.T) {
	msg := FormatForecast(&model.Forecast{CurrentLevel: 25, DaysToMin: -2, DaysToOrder: -4, Urgency: model.UrgencyCritical})
	if !strings.Contains(msg, "Order: now") || !strings.Contains(msg, "already reached") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}

func TestFormatReadings(t *testing.T) {
	var s model.Series
	s[0] = model.NewReading(70)
	s[2] = model.ParseReading("x")
	msg := FormatReadings(s, 3, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	for _, want := range []string{"0 | 2025-06-02 | 70.0%", "2 | 2025-05-31 | invalid", "Filled: 1/7", "Lead time: 3 days"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message:\n%s", want, msg)
		}
	}
}

func TestFormatDataError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&strategy.IncompleteDataError{Filled: 5, Required: 7}, "5 of 7"},
		{&strategy.InvalidDataError{Index: 4}, "day 4"},
		{strategy.ErrInvalidRate, "rate"},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		if got := FormatDataError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("expected %q in %q", tt.want, got)
		}
	}
}

func TestFormatVAT(t *testing.T) {
	msg := FormatVAT(model.VATBreakdown{Rate: 0.22, UnitPriceWithVAT: 1220, TotalWithoutVAT: 10000, VATAmount: 2200, TotalWithVAT: 12200})
	if !strings.Contains(msg, "12 200,00") || !strings.Contains(msg, "VAT 22%") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}
