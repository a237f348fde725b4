package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"Wayne/internal/signal"
	"Wayne/internal/strategy"

	"gopkg.in/yaml.v3"
)

// Placeholder is the credential value shipped in the sample config.
const Placeholder = "CHANGE_ME"

// ErrInvalid is returned for configuration that fails validation.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Binance struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"binance"`
	Backtest struct {
		Capital      float64                     `yaml:"capital"`
		Limit        int                         `yaml:"limit"`
		Signal       string                      `yaml:"signal"`
		EMARSI       signal.EMARSIParams         `yaml:"ema_rsi"`
		MACD         signal.MACDParams           `yaml:"macd"`
		TrailingStop strategy.TrailingStopParams `yaml:"trailing_stop"`
	} `yaml:"backtest"`
	Batch struct {
		Workers int `yaml:"workers"`
		Top     int `yaml:"top"`
	} `yaml:"batch"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
		CatalogCron  string `yaml:"catalog_cron"`
	} `yaml:"schedule"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	MetricsAddr string `yaml:"metrics_addr"`
	Proxy       string `yaml:"proxy"`
}

// Default returns a config carrying the production backtest parameters.
func Default() *Config {
	cfg := &Config{}
	cfg.Backtest.Capital = 1000
	cfg.Backtest.Limit = 1000
	cfg.Backtest.Signal = signal.KindEMARSI
	cfg.Backtest.EMARSI = signal.DefaultEMARSIParams()
	cfg.Backtest.MACD = signal.DefaultMACDParams()
	cfg.Backtest.TrailingStop = strategy.DefaultTrailingStopParams()
	return cfg
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Binance.APIKey = v
	}
	if v := os.Getenv("API_SECRET"); v != "" {
		cfg.Binance.APISecret = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_EVALUATE"); v != "" {
		cfg.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("CAPITAL"); v != "" {
		capital, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: CAPITAL=%q: %v", ErrInvalid, v, err)
		}
		cfg.Backtest.Capital = capital
	}

	// Defaults
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com"
	}
	if cfg.Backtest.Signal == "" {
		cfg.Backtest.Signal = signal.KindEMARSI
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = 4
	}
	if cfg.Batch.Top == 0 {
		cfg.Batch.Top = 5
	}
	if cfg.Schedule.EvaluateCron == "" {
		cfg.Schedule.EvaluateCron = "0 30 0 * * *"
	}
	if cfg.Schedule.CatalogCron == "" {
		cfg.Schedule.CatalogCron = "0 0 0 * * 1"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/coin_info.json"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = time.Hour
	}

	return cfg, nil
}

// Validate checks the backtest parameters and rejects placeholder credentials.
func (c *Config) Validate() error {
	bt := c.Backtest
	if bt.Capital <= 0 {
		return fmt.Errorf("%w: backtest.capital must be positive, got %.2f", ErrInvalid, bt.Capital)
	}
	if bt.Limit <= 0 || bt.Limit > 1000 {
		return fmt.Errorf("%w: backtest.limit must be in 1..1000, got %d", ErrInvalid, bt.Limit)
	}
	if bt.Signal != signal.KindEMARSI && bt.Signal != signal.KindMACD {
		return fmt.Errorf("%w: backtest.signal must be %q or %q, got %q", ErrInvalid, signal.KindEMARSI, signal.KindMACD, bt.Signal)
	}
	if err := bt.EMARSI.Validate(); err != nil {
		return fmt.Errorf("%w: backtest.ema_rsi: %v", ErrInvalid, err)
	}
	if err := bt.MACD.Validate(); err != nil {
		return fmt.Errorf("%w: backtest.macd: %v", ErrInvalid, err)
	}
	if err := bt.TrailingStop.Validate(); err != nil {
		return fmt.Errorf("%w: backtest.trailing_stop: %v", ErrInvalid, err)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1", ErrInvalid)
	}
	if c.Batch.Top < 1 {
		return fmt.Errorf("%w: batch.top must be at least 1", ErrInvalid)
	}

	creds := []struct{ name, value string }{
		{"binance.api_key", c.Binance.APIKey},
		{"binance.api_secret", c.Binance.APISecret},
		{"telegram.bot_token", c.Telegram.BotToken},
		{"telegram.chat_id", c.Telegram.ChatID},
	}
	for _, cred := range creds {
		if cred.value == Placeholder {
			return fmt.Errorf("%w: %s is still set to %s", ErrInvalid, cred.name, Placeholder)
		}
	}
	return nil
}

// ValidateCredentials checks that the Binance API key pair is set.
func (c *Config) ValidateCredentials() error {
	if c.Binance.APIKey == "" {
		return fmt.Errorf("%w: binance.api_key is required", ErrInvalid)
	}
	if c.Binance.APISecret == "" {
		return fmt.Errorf("%w: binance.api_secret is required", ErrInvalid)
	}
	return nil
}

// ValidateServe checks the settings needed by the long-running mode.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("%w: telegram.bot_token is required", ErrInvalid)
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("%w: telegram.chat_id is required", ErrInvalid)
	}
	if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
		return fmt.Errorf("%w: telegram.chat_id %q is not numeric", ErrInvalid, c.Telegram.ChatID)
	}
	return nil
}
