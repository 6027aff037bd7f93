package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TankSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp            INTEGER NOT NULL,
			source               TEXT,
			current_level        REAL,
			consumption_rate     REAL,
			days_to_min          REAL,
			days_to_order        REAL,
			delivery_days        INTEGER,
			order_date           TEXT,
			arrival_date         TEXT,
			depletion_date       TEXT,
			level_after_delivery REAL,
			urgency              TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_ts ON forecasts(timestamp)`,

		`CREATE TABLE IF NOT EXISTS readings (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			day_index INTEGER,
			raw       TEXT,
			value     REAL,
			is_set    INTEGER,
			invalid   INTEGER,
			source    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_ts ON readings(timestamp)`,

		`CREATE TABLE IF NOT EXISTS rollovers (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			dropped_value REAL,
			dropped_set   INTEGER,
			filled        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rollovers_ts ON rollovers(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordForecast(evt *ForecastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := evt.Forecast
	const day = "2006-01-02"
	_, err := r.db.Exec(`INSERT INTO forecasts
		(timestamp, source, current_level, consumption_rate, days_to_min, days_to_order,
		 delivery_days, order_date, arrival_date, depletion_date, level_after_delivery, urgency)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Trigger, f.CurrentLevel, f.Rate, f.DaysToMin, f.DaysToOrder,
		f.DeliveryDays, f.OrderDate.Format(day), f.ArrivalDate.Format(day), f.DepletionDate.Format(day),
		f.LevelAfterDelivery, string(f.Urgency),
	)
	return err
}

func (r *SQLiteRecorder) RecordReading(evt *ReadingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO readings
		(timestamp, day_index, raw, value, is_set, invalid, source)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Index, evt.Raw, evt.Value, evt.Set, evt.Invalid, evt.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordRollover(evt *RolloverEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO rollovers
		(timestamp, dropped_value, dropped_set, filled)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.DroppedValue, evt.DroppedSet, evt.Filled,
	)
	return err
}

func (r *SQLiteRecorder) Stats() (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st Stats
	var urgency string
	err := r.db.QueryRow(`SELECT COUNT(*),
		COALESCE((SELECT urgency FROM forecasts ORDER BY id DESC LIMIT 1), '')
		FROM forecasts`).Scan(&st.Forecasts, &urgency)
	st.LastUrgency = model.Urgency(urgency)
	return st, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
