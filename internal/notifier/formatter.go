package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"TankSentinel/internal/model"
	"TankSentinel/internal/pricing"
	"TankSentinel/internal/strategy"
)

const dateLayout = "2006-01-02"

var urgencyIcons = map[model.Urgency]string{
	model.UrgencyCritical:   "🔴",
	model.UrgencyOrderNow:   "🟠",
	model.UrgencyOrderSoon:  "🟡",
	model.UrgencySufficient: "🟢",
}

// FormatForecast formats a refill forecast into a Telegram message.
func FormatForecast(f *model.Forecast) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>Nitrogen tank: %s</b> | %s\n\n",
		urgencyIcons[f.Urgency], strings.ToUpper(string(f.Urgency)), f.ComputedAt.Format(dateLayout)))

	b.WriteString(fmt.Sprintf("Current level: %.1f%%\n", f.CurrentLevel))
	b.WriteString(fmt.Sprintf("Consumption: %.2f%%/day\n", f.Rate))
	if f.DaysToMin > 0 {
		b.WriteString(fmt.Sprintf("Minimum reached in: %.1f days (%s)\n", f.DaysToMin, f.DepletionDate.Format(dateLayout)))
	} else {
		b.WriteString("Minimum level already reached\n")
	}

	b.WriteString("\n📦 <b>Refill plan:</b>\n")
	if f.DaysToOrder > 0 {
		b.WriteString(fmt.Sprintf("  Order by: %s (in %.1f days)\n", f.OrderDate.Format(dateLayout), f.DaysToOrder))
	} else {
		b.WriteString("  Order: now\n")
	}
	b.WriteString(fmt.Sprintf("  Lead time: %d days, arrival %s\n", f.DeliveryDays, f.ArrivalDate.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("  Level after delivery: %.1f%%\n", f.LevelAfterDelivery))

	return b.String()
}

// FormatReadings formats the 7-day history, newest first.
func FormatReadings(series model.Series, deliveryDays int, today time.Time) string {
	var b strings.Builder
	b.WriteString("📋 <b>Fill level history</b>\n\n")
	for i, r := range series {
		day := today.AddDate(0, 0, -i).Format(dateLayout)
		var v string
		switch {
		case r.Invalid:
			v = "invalid"
		case r.Set:
			v = fmt.Sprintf("%.1f%%", r.Value)
		default:
			v = "—"
		}
		b.WriteString(fmt.Sprintf("  %d | %s | %s\n", i, day, v))
	}
	b.WriteString(fmt.Sprintf("\nFilled: %d/%d\n", series.Filled(), model.HistoryDays))
	b.WriteString(fmt.Sprintf("Lead time: %d days\n", deliveryDays))
	return b.String()
}

// FormatDataError explains why no forecast could be made.
func FormatDataError(err error) string {
	var incomplete *strategy.IncompleteDataError
	var invalid *strategy.InvalidDataError
	switch {
	case errors.As(err, &incomplete):
		return fmt.Sprintf("⚠️ Not enough data: %d of %d days filled.\nUse /set &lt;day&gt; &lt;level&gt; to add readings.",
			incomplete.Filled, incomplete.Required)
	case errors.As(err, &invalid):
		return fmt.Sprintf("⚠️ Reading for day %d is invalid. Enter a level between 0 and 100.", invalid.Index)
	case errors.Is(err, strategy.ErrInvalidRate):
		return "⚠️ Consumption rate could not be computed."
	default:
		return fmt.Sprintf("❌ Forecast failed: %v", err)
	}
}

// FormatReminder asks for today's reading.
func FormatReminder(series model.Series) string {
	return fmt.Sprintf("⏰ Today's fill level is not recorded yet (%d/%d days filled).\nSend /set 0 &lt;level&gt;.",
		series.Filled(), model.HistoryDays)
}

// FormatVAT formats a contract price calculation.
func FormatVAT(v model.VATBreakdown) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>Contract price</b> (VAT %.0f%%)\n\n", v.Rate*100))
	b.WriteString(fmt.Sprintf("Unit price with VAT: %s\n", pricing.FormatMoney(v.UnitPriceWithVAT)))
	b.WriteString(fmt.Sprintf("Total without VAT: %s\n", pricing.FormatMoney(v.TotalWithoutVAT)))
	b.WriteString(fmt.Sprintf("VAT: %s\n", pricing.FormatMoney(v.VATAmount)))
	b.WriteString(fmt.Sprintf("Total with VAT: %s\n", pricing.FormatMoney(v.TotalWithVAT)))
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /set &lt;day 0-6&gt; &lt;level&gt; (empty level clears)\n" +
		"• /delivery &lt;days&gt;\n" +
		"• /forecast\n" +
		"• /readings\n" +
		"• /clear\n" +
		"• /vat &lt;quantity&gt; &lt;unit price&gt;"
}
