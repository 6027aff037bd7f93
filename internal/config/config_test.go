package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	est := cfg.Estimator()
	if est.MinLevel != 30 || est.OrderVolume != 45 || est.MaxSafeLevel != 90 || est.DeliveryDays != 2 {
		t.Errorf("unexpected defaults: %+v", est)
	}
	if est.HistoryDays != 7 {
		t.Errorf("expected history of 7 days, got %d", est.HistoryDays)
	}
	if cfg.Schedule.RolloverCron != "0 0 0 * * *" {
		t.Errorf("unexpected rollover cron %q", cfg.Schedule.RolloverCron)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected http addr %q", cfg.HTTP.Addr)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "100"
tank:
  min_level: 25
  delivery_days: 0
schedule:
  report_cron: "0 30 8 * * *"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SQLITE_PATH", "/tmp/tank.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Database.SQLitePath != "/tmp/tank.db" {
		t.Errorf("expected env sqlite path, got %q", cfg.Database.SQLitePath)
	}
	est := cfg.Estimator()
	if est.MinLevel != 25 {
		t.Errorf("expected min level 25, got %v", est.MinLevel)
	}
	if est.DeliveryDays != 0 {
		t.Errorf("expected explicit zero delivery days to be kept, got %d", est.DeliveryDays)
	}
	if cfg.Schedule.ReportCron != "0 30 8 * * *" {
		t.Errorf("unexpected report cron %q", cfg.Schedule.ReportCron)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_ExplicitZeroIsNotDefaulted(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  bot_token: token
  chat_id: "1"
tank:
  min_level: 0
pricing:
  vat_rate: 0
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est := cfg.Estimator(); est.MinLevel != 0 {
		t.Errorf("expected explicit min level 0 to be kept, got %v", est.MinLevel)
	}
	if got := cfg.VATRate(); got != 0 {
		t.Errorf("expected explicit vat rate 0 to be kept, got %v", got)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero vat rate to fail validation")
	}

	v := 0.1
	cfg.Pricing.VATRate = &v
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected min level 0 to be valid, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "tank: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg.Telegram.BotToken = "token"
		cfg.Telegram.ChatID = "1"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"missing chat", func(c *Config) { c.Telegram.ChatID = "" }},
		{"max below min", func(c *Config) { v := 20.0; c.Tank.MaxSafeLevel = &v }},
		{"max above 100", func(c *Config) { v := 120.0; c.Tank.MaxSafeLevel = &v }},
		{"negative order volume", func(c *Config) { v := -5.0; c.Tank.OrderVolume = &v }},
		{"negative delivery", func(c *Config) { n := -1; c.Tank.DeliveryDays = &n }},
		{"oversized delivery", func(c *Config) { n := 1_000_000; c.Tank.DeliveryDays = &n }},
		{"zero vat", func(c *Config) { v := 0.0; c.Pricing.VATRate = &v }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
