package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Wayne/internal/signal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	bt := cfg.Backtest
	if bt.Capital != 1000 || bt.Limit != 1000 || bt.Signal != signal.KindEMARSI {
		t.Errorf("backtest defaults = %+v", bt)
	}
	if bt.EMARSI.EMAWindow != 25 || bt.EMARSI.RSIWindow != 3 || bt.EMARSI.RSIBuyThreshold != 82 {
		t.Errorf("ema_rsi defaults = %+v", bt.EMARSI)
	}
	if bt.EMARSI.RSISellThreshold == nil || *bt.EMARSI.RSISellThreshold != 20 {
		t.Errorf("rsi sell threshold default = %v", bt.EMARSI.RSISellThreshold)
	}
	if bt.MACD.BuyThreshold != 0 || bt.MACD.SellThreshold != -1 {
		t.Errorf("macd defaults = %+v", bt.MACD)
	}
	if bt.TrailingStop.StopLossPct != 0.2 || bt.TrailingStop.TrailingStopPct != 0.001 {
		t.Errorf("trailing stop defaults = %+v", bt.TrailingStop)
	}
	if cfg.Batch.Workers != 4 || cfg.Batch.Top != 5 {
		t.Errorf("batch defaults = %+v", cfg.Batch)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("redis ttl = %s, want 1h", cfg.Redis.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backtest:
  capital: 500
  limit: 200
  signal: macd
  ema_rsi:
    rsi_buy_threshold: 70
    rsi_sell_threshold: null
  trailing_stop:
    stop_loss_pct: 0.1
    secure: true
batch:
  top: 3
redis:
  addr: localhost:6379
  ttl: 15m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	bt := cfg.Backtest
	if bt.Capital != 500 || bt.Limit != 200 || bt.Signal != signal.KindMACD {
		t.Errorf("backtest = %+v", bt)
	}
	if bt.EMARSI.EMAWindow != 25 {
		t.Errorf("unset ema_window should keep default, got %d", bt.EMARSI.EMAWindow)
	}
	if bt.EMARSI.RSIBuyThreshold != 70 || bt.EMARSI.RSISellThreshold != nil {
		t.Errorf("ema_rsi = %+v", bt.EMARSI)
	}
	if bt.TrailingStop.StopLossPct != 0.1 || bt.TrailingStop.TrailingStopPct != 0.001 || !bt.TrailingStop.Secure {
		t.Errorf("trailing_stop = %+v", bt.TrailingStop)
	}
	if cfg.Batch.Top != 3 || cfg.Batch.Workers != 4 {
		t.Errorf("batch = %+v", cfg.Batch)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != 15*time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "binance:\n  api_key: from-file\n")
	t.Setenv("API_KEY", "from-env")
	t.Setenv("API_SECRET", "secret")
	t.Setenv("CAPITAL", "2500")
	t.Setenv("CRON_EVALUATE", "0 0 6 * * *")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Binance.APIKey != "from-env" || cfg.Binance.APISecret != "secret" {
		t.Errorf("binance = %+v", cfg.Binance)
	}
	if cfg.Backtest.Capital != 2500 {
		t.Errorf("capital = %.2f, want 2500", cfg.Backtest.Capital)
	}
	if cfg.Schedule.EvaluateCron != "0 0 6 * * *" {
		t.Errorf("evaluate cron = %q", cfg.Schedule.EvaluateCron)
	}
	if cfg.Telegram.ChatID != "42" {
		t.Errorf("chat id = %q", cfg.Telegram.ChatID)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeConfig(t, "backtest: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(writeConfig(t, "backtest:\n  trailing_stop:\n    stop_los_pct: 0.1\n")); err == nil {
		t.Error("expected unknown field to be rejected")
	}
	t.Setenv("CAPITAL", "lots")
	if _, err := Load(writeConfig(t, "")); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad CAPITAL: got %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Backtest.Capital = 0 }},
		{"negative capital", func(c *Config) { c.Backtest.Capital = -5 }},
		{"limit above max", func(c *Config) { c.Backtest.Limit = 1001 }},
		{"zero limit", func(c *Config) { c.Backtest.Limit = 0 }},
		{"unknown signal", func(c *Config) { c.Backtest.Signal = "sma" }},
		{"rsi window", func(c *Config) { c.Backtest.EMARSI.RSIWindow = 1 }},
		{"macd thresholds", func(c *Config) { c.Backtest.MACD.SellThreshold = 2 }},
		{"stop loss", func(c *Config) { c.Backtest.TrailingStop.StopLossPct = 1.2 }},
		{"trailing", func(c *Config) { c.Backtest.TrailingStop.TrailingStopPct = -0.1 }},
		{"placeholder key", func(c *Config) { c.Binance.APIKey = Placeholder }},
		{"placeholder token", func(c *Config) { c.Telegram.BotToken = Placeholder }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg := Default()
	cfg.Batch.Workers, cfg.Batch.Top = 1, 1
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected missing telegram settings to fail")
	}
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "not-a-number"
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected non-numeric chat id to fail")
	}
	cfg.Telegram.ChatID = "-100123"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("ValidateServe: %v", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateCredentials(); err == nil {
		t.Error("expected missing api key to fail")
	}
	cfg.Binance.APIKey, cfg.Binance.APISecret = "key", "secret"
	if err := cfg.ValidateCredentials(); err != nil {
		t.Errorf("ValidateCredentials: %v", err)
	}
}
