package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"TankSentinel/internal/calculator"
	"TankSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
	} `yaml:"telegram"`
	// Numeric thresholds are pointers so an explicit 0 in YAML is kept (and
	// validated) rather than mistaken for an absent key.
	Tank struct {
		MinLevel     *float64 `yaml:"min_level"`
		OrderVolume  *float64 `yaml:"order_volume"`
		MaxSafeLevel *float64 `yaml:"max_safe_level"`
		DeliveryDays *int     `yaml:"delivery_days"`
		StateFile    string   `yaml:"state_file"`
	} `yaml:"tank"`
	Schedule struct {
		RolloverCron string `yaml:"rollover_cron"`
		ReportCron   string `yaml:"report_cron"`
		ReminderCron string `yaml:"reminder_cron"`
	} `yaml:"schedule"`
	Pricing struct {
		VATRate *float64 `yaml:"vat_rate"`
	} `yaml:"pricing"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr        string `yaml:"addr"`
		ShutdownSec int    `yaml:"shutdown_sec"`
	} `yaml:"http"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.Tank.StateFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DELIVERY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tank.DeliveryDays = &n
		}
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Schedule.ReportCron = v
	}

	// Defaults
	def := model.DefaultEstimatorConfig()
	defaultTo(&cfg.Tank.MinLevel, def.MinLevel)
	defaultTo(&cfg.Tank.OrderVolume, def.OrderVolume)
	defaultTo(&cfg.Tank.MaxSafeLevel, def.MaxSafeLevel)
	defaultTo(&cfg.Tank.DeliveryDays, def.DeliveryDays)
	if cfg.Tank.StateFile == "" {
		cfg.Tank.StateFile = "data/tank_state.json"
	}
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = "https://api.telegram.org"
	}
	if cfg.Schedule.RolloverCron == "" {
		cfg.Schedule.RolloverCron = "0 0 0 * * *"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 0 9 * * *"
	}
	if cfg.Schedule.ReminderCron == "" {
		cfg.Schedule.ReminderCron = "0 0 18 * * *"
	}
	defaultTo(&cfg.Pricing.VATRate, calculator.DefaultVATRate)
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tank_sentinel.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ShutdownSec == 0 {
		cfg.HTTP.ShutdownSec = 10
	}

	return cfg, nil
}

// Validate checks that all required fields are set and thresholds are consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	est := c.Estimator()
	if est.MinLevel < 0 || est.MinLevel >= 100 {
		return fmt.Errorf("tank.min_level must be within [0, 100)")
	}
	if est.MaxSafeLevel <= est.MinLevel || est.MaxSafeLevel > 100 {
		return fmt.Errorf("tank.max_safe_level must be above min_level and at most 100")
	}
	if est.OrderVolume <= 0 {
		return fmt.Errorf("tank.order_volume must be positive")
	}
	if est.DeliveryDays < 0 || est.DeliveryDays > model.MaxDeliveryDays {
		return fmt.Errorf("tank.delivery_days must be within [0, %d]", model.MaxDeliveryDays)
	}
	if c.Pricing.VATRate != nil && *c.Pricing.VATRate <= 0 {
		return fmt.Errorf("pricing.vat_rate must be positive")
	}
	return nil
}

// Estimator builds the forecast thresholds from the tank section.
func (c *Config) Estimator() model.EstimatorConfig {
	est := model.DefaultEstimatorConfig()
	if c.Tank.MinLevel != nil {
		est.MinLevel = *c.Tank.MinLevel
	}
	if c.Tank.OrderVolume != nil {
		est.OrderVolume = *c.Tank.OrderVolume
	}
	if c.Tank.MaxSafeLevel != nil {
		est.MaxSafeLevel = *c.Tank.MaxSafeLevel
	}
	if c.Tank.DeliveryDays != nil {
		est.DeliveryDays = *c.Tank.DeliveryDays
	}
	return est
}

// VATRate returns the configured VAT rate, or the standard rate when unset.
func (c *Config) VATRate() float64 {
	if c.Pricing.VATRate == nil {
		return calculator.DefaultVATRate
	}
	return *c.Pricing.VATRate
}

func defaultTo[T any](p **T, v T) {
	if *p == nil {
		*p = &v
	}
}
