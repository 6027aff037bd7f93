package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"TankSentinel/internal/calculator"
	"TankSentinel/internal/metrics"
	"TankSentinel/internal/model"
	"TankSentinel/internal/notifier"
	"TankSentinel/internal/recorder"
	"TankSentinel/internal/tank"
)

// Sender delivers a report to the operator chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and routes chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Tank     *tank.Manager
	Notifier Sender
	Recorder recorder.Recorder
	VATRate  float64
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, tm *tank.Manager, sender Sender, rec recorder.Recorder, vatRate float64) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Tank:     tm,
		Notifier: sender,
		Recorder: rec,
		VATRate:  vatRate,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the day rollover, the daily forecast report and the
// missing-reading reminder.
func (s *Scheduler) RegisterAll(rolloverCron, reportCron, reminderCron string) error {
	if _, err := s.Cron.AddFunc(rolloverCron, s.rolloverTask); err != nil {
		return fmt.Errorf("register rollover task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reminderCron, s.reminderTask); err != nil {
		return fmt.Errorf("register reminder task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow executes the forecast report immediately (RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) rolloverTask() {
	log.Println("[INFO] running day rollover")
	before := s.Tank.Snapshot()
	if err := s.Tank.Rollover(); err != nil {
		log.Printf("[ERROR] rollover: %v", err)
		return
	}
	after := s.Tank.Snapshot()
	metrics.ObserveSeries(after.Series)

	dropped := before.Series[model.HistoryDays-1]
	if err := s.Recorder.RecordRollover(&recorder.RolloverEvent{
		DroppedValue: dropped.Value,
		DroppedSet:   dropped.Set,
		Filled:       after.Series.Filled(),
	}); err != nil {
		log.Printf("[ERROR] record rollover: %v", err)
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running forecast report")
	f, err := s.forecast("SCHEDULED")
	if err != nil {
		if !tank.IsDataError(err) {
			log.Printf("[ERROR] forecast: %v", err)
			return
		}
		s.trySend(notifier.FormatDataError(err))
		return
	}
	s.trySend(notifier.FormatForecast(f))
}

func (s *Scheduler) reminderTask() {
	snap := s.Tank.Snapshot()
	if snap.Series[0].Set {
		return
	}
	log.Println("[INFO] today's reading missing, sending reminder")
	s.trySend(notifier.FormatReminder(snap.Series))
}

// forecast computes, publishes and records a forecast.
func (s *Scheduler) forecast(trigger string) (*model.Forecast, error) {
	f, err := s.Tank.Forecast(s.Now())
	if err != nil {
		metrics.ObserveForecastError(tank.ErrorKind(err))
		return nil, err
	}
	metrics.ObserveForecast(f)
	if err := s.Recorder.RecordForecast(&recorder.ForecastEvent{Forecast: f, Trigger: trigger}); err != nil {
		log.Printf("[ERROR] record forecast: %v", err)
	}
	return f, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/set":
		return s.cmdSet(args)
	case "/delivery":
		return s.cmdDelivery(args)
	case "/forecast":
		f, err := s.forecast("COMMAND")
		if err != nil {
			return notifier.FormatDataError(err)
		}
		return notifier.FormatForecast(f)
	case "/readings":
		snap := s.Tank.Snapshot()
		return notifier.FormatReadings(snap.Series, snap.DeliveryDays, s.Now())
	case "/clear":
		if err := s.Tank.Clear(); err != nil {
			log.Printf("[ERROR] clear readings: %v", err)
			return "❌ Failed to clear readings"
		}
		metrics.ObserveSeries(model.Series{})
		return "🗑 All readings cleared"
	case "/vat":
		return s.cmdVAT(args)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) cmdSet(args []string) string {
	if len(args) == 0 {
		return "Usage: /set &lt;day 0-6&gt; &lt;level&gt;"
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return "⚠️ Day must be a number from 0 (today) to 6"
	}
	raw := strings.Join(args[1:], " ")
	reading, err := s.Tank.SetReading(index, raw)
	if err != nil {
		if errors.Is(err, tank.ErrIndexOutOfRange) {
			return "⚠️ Day must be a number from 0 (today) to 6"
		}
		log.Printf("[ERROR] set reading: %v", err)
		return "❌ Failed to store reading"
	}

	metrics.ObserveReading(reading)
	if err := s.Recorder.RecordReading(&recorder.ReadingEvent{
		Index: index, Raw: raw, Value: reading.Value,
		Set: reading.Set, Invalid: reading.Invalid, Source: "TELEGRAM",
	}); err != nil {
		log.Printf("[ERROR] record reading: %v", err)
	}
	snap := s.Tank.Snapshot()
	metrics.ObserveSeries(snap.Series)

	switch {
	case reading.Invalid:
		return fmt.Sprintf("⚠️ %q is not a level between 0 and 100, day %d cleared", raw, index)
	case !reading.Set:
		return fmt.Sprintf("Day %d cleared (%d/%d filled)", index, snap.Series.Filled(), model.HistoryDays)
	default:
		return fmt.Sprintf("✅ Day %d set to %.1f%% (%d/%d filled)", index, reading.Value, snap.Series.Filled(), model.HistoryDays)
	}
}

func (s *Scheduler) cmdDelivery(args []string) string {
	days, err := s.Tank.SetDeliveryDays(strings.Join(args, " "))
	if err != nil {
		log.Printf("[ERROR] set delivery days: %v", err)
		return "❌ Failed to store lead time"
	}
	return fmt.Sprintf("🚚 Lead time set to %d days", days)
}

func (s *Scheduler) cmdVAT(args []string) string {
	if len(args) != 2 {
		return "Usage: /vat &lt;quantity&gt; &lt;unit price&gt;"
	}
	qty, err1 := strconv.ParseFloat(args[0], 64)
	price, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		return "⚠️ Quantity and price must be numbers"
	}
	res, err := calculator.CalculateVAT(qty, price, s.VATRate)
	if err != nil {
		return "⚠️ " + err.Error()
	}
	return notifier.FormatVAT(res)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
