package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Fixed run parameters. They are the defaults for the corresponding config fields.
const (
	DefaultBatchSize      = 50
	DefaultLookbackDays   = 390
	DefaultPause          = 2 * time.Second
	DefaultSpikeThreshold = 0.05
)

// Config holds all application configuration.
type Config struct {
	Input struct {
		TickersFile string `yaml:"tickers_file"`
	} `yaml:"input"`
	Output struct {
		Dir   string `yaml:"dir"`
		Excel bool   `yaml:"excel"`
	} `yaml:"output"`
	Fetch struct {
		BatchSize    int           `yaml:"batch_size"`
		LookbackDays int           `yaml:"lookback_days"`
		Pause        time.Duration `yaml:"pause"`
	} `yaml:"fetch"`
	Analysis struct {
		SpikeThreshold float64 `yaml:"spike_threshold"`
	} `yaml:"analysis"`
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"alpaca"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		TopN     int    `yaml:"top_n"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
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

	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TICKERS_FILE"); v != "" {
		cfg.Input.TickersFile = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("OUTPUT_EXCEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Output.Excel = b
		}
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Input.TickersFile == "" {
		cfg.Input.TickersFile = "tickers.csv"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Fetch.BatchSize == 0 {
		cfg.Fetch.BatchSize = DefaultBatchSize
	}
	if cfg.Fetch.LookbackDays == 0 {
		cfg.Fetch.LookbackDays = DefaultLookbackDays
	}
	if cfg.Fetch.Pause == 0 {
		cfg.Fetch.Pause = DefaultPause
	}
	if cfg.Analysis.SpikeThreshold == 0 {
		cfg.Analysis.SpikeThreshold = DefaultSpikeThreshold
	}
	if cfg.Telegram.TopN == 0 {
		cfg.Telegram.TopN = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks field ranges and that paired credentials are complete.
func (c *Config) Validate() error {
	if c.Fetch.BatchSize <= 0 {
		return fmt.Errorf("fetch.batch_size must be positive")
	}
	if c.Fetch.LookbackDays <= 0 {
		return fmt.Errorf("fetch.lookback_days must be positive")
	}
	if c.Fetch.Pause < 0 {
		return fmt.Errorf("fetch.pause must not be negative")
	}
	if (c.Alpaca.APIKey == "") != (c.Alpaca.APISecret == "") {
		return fmt.Errorf("alpaca.api_key and alpaca.api_secret must be set together")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// UseAlpaca reports whether Alpaca credentials are configured.
func (c *Config) UseAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}
