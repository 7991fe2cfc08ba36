package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"TrendSignal/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Instruments []model.Instrument `yaml:"instruments"`
	Ranges      []model.TimeRange  `yaml:"ranges"`
	Analysis    struct {
		DefaultRange  string  `yaml:"default_range"`
		DefaultAmount float64 `yaml:"default_amount"`
	} `yaml:"analysis"`
	Schedule struct {
		WatchCron string   `yaml:"watch_cron"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// DefaultInstruments is the instrument menu used when none is configured.
var DefaultInstruments = []model.Instrument{
	{Symbol: "BTC-USD", Label: "Bitcoin"},
	{Symbol: "ETH-USD", Label: "Ethereum"},
	{Symbol: "AAPL", Label: "Apple"},
	{Symbol: "TSLA", Label: "Tesla"},
	{Symbol: "^GSPC", Label: "S&P 500"},
}

// DefaultRanges maps time-range labels to provider interval and lookback.
// Every preset yields well over 30 bars on a normal trading calendar.
var DefaultRanges = []model.TimeRange{
	{Label: "30m", Interval: "30m", Period: "5d"},
	{Label: "1h", Interval: "1h", Period: "1mo"},
	{Label: "1d", Interval: "1d", Period: "6mo"},
	{Label: "1wk", Interval: "1wk", Period: "2y"},
}

// Load reads .env (if any), the YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DEFAULT_AMOUNT"); v != "" {
		var amount float64
		if _, err := fmt.Sscanf(v, "%f", &amount); err == nil {
			cfg.Analysis.DefaultAmount = amount
		}
	}
	if v := os.Getenv("CRON_WATCH"); v != "" {
		cfg.Schedule.WatchCron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = strings.EqualFold(v, "true")
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a configuration with every default applied and no file or
// environment input.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Timeout <= 0 {
		cfg.DataSource.Timeout = 20 * time.Second
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = append([]model.Instrument(nil), DefaultInstruments...)
	}
	if len(cfg.Ranges) == 0 {
		cfg.Ranges = append([]model.TimeRange(nil), DefaultRanges...)
	}
	if cfg.Analysis.DefaultRange == "" {
		cfg.Analysis.DefaultRange = "30m"
	}
	if cfg.Analysis.DefaultAmount == 0 {
		cfg.Analysis.DefaultAmount = 1000
	}
	if cfg.Schedule.WatchCron == "" {
		cfg.Schedule.WatchCron = "0 0 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trend_signal.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the configuration for internal consistency.
// Telegram is optional; chat_id is only required when a token is set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Analysis.DefaultAmount <= 0 || math.IsInf(c.Analysis.DefaultAmount, 0) || math.IsNaN(c.Analysis.DefaultAmount) {
		return fmt.Errorf("analysis.default_amount must be positive")
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, in := range c.Instruments {
		if in.Symbol == "" {
			return fmt.Errorf("instruments: symbol is required")
		}
		if seen[in.Symbol] {
			return fmt.Errorf("instruments: duplicate symbol %q", in.Symbol)
		}
		seen[in.Symbol] = true
	}
	for _, r := range c.Ranges {
		if r.Label == "" || r.Interval == "" || r.Period == "" {
			return fmt.Errorf("ranges: label, interval and period are required (got %+v)", r)
		}
	}
	if _, ok := c.Range(c.Analysis.DefaultRange); !ok {
		return fmt.Errorf("analysis.default_range %q is not a configured range", c.Analysis.DefaultRange)
	}
	for _, s := range c.Schedule.Watchlist {
		if _, ok := c.Instrument(s); !ok {
			return fmt.Errorf("schedule.watchlist: %q is not a configured instrument", s)
		}
	}
	return nil
}

// Instrument looks up a configured instrument by symbol (case-insensitive).
func (c *Config) Instrument(symbol string) (model.Instrument, bool) {
	for _, in := range c.Instruments {
		if strings.EqualFold(in.Symbol, symbol) {
			return in, true
		}
	}
	return model.Instrument{}, false
}

// Range looks up a configured time range by label.
func (c *Config) Range(label string) (model.TimeRange, bool) {
	for _, r := range c.Ranges {
		if r.Label == label {
			return r, true
		}
	}
	return model.TimeRange{}, false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
