package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL   string `yaml:"base_url"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Market    string `yaml:"market"`
	} `yaml:"exchange"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`
	Trade struct {
		Volume   float64 `yaml:"volume"`
		Interval string  `yaml:"interval"`
		BarCount int     `yaml:"bar_count"`
	} `yaml:"trade"`
	Schedule struct {
		TriggerTimes []string `yaml:"trigger_times"`
		RunOnStart   bool     `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
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
	if v := os.Getenv("UPBIT_ACCESS_KEY"); v != "" {
		cfg.Exchange.AccessKey = v
	}
	if v := os.Getenv("UPBIT_SECRET_KEY"); v != "" {
		cfg.Exchange.SecretKey = v
	}
	if v := os.Getenv("UPBIT_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("MARKET"); v != "" {
		cfg.Exchange.Market = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("TRADE_VOLUME"); v != "" {
		if vol, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trade.Volume = vol
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}

	// Defaults
	if cfg.Exchange.Market == "" {
		cfg.Exchange.Market = "KRW-BTC"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "o1-mini"
	}
	if cfg.Trade.Volume == 0 {
		cfg.Trade.Volume = 0.0001
	}
	if cfg.Trade.Interval == "" {
		cfg.Trade.Interval = "day"
	}
	if cfg.Trade.BarCount == 0 {
		cfg.Trade.BarCount = 30
	}
	if len(cfg.Schedule.TriggerTimes) == 0 {
		cfg.Schedule.TriggerTimes = []string{"09:00", "14:00", "20:00"}
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trade_log.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Exchange.AccessKey == "" {
		return fmt.Errorf("exchange.access_key is required")
	}
	if c.Exchange.SecretKey == "" {
		return fmt.Errorf("exchange.secret_key is required")
	}
	if c.Trade.Volume <= 0 {
		return fmt.Errorf("trade.volume must be positive")
	}
	if c.Trade.BarCount < 20 {
		return fmt.Errorf("trade.bar_count must be at least 20 for analysis")
	}
	return nil
}
