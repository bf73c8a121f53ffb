package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Universe struct {
		Symbols      []string `yaml:"symbols"`
		QuoteCcy     string   `yaml:"quote_currency"`
		DecayWeight  float64  `yaml:"decay_weight"`
		TechWeight   float64  `yaml:"tech_weight"`
		HistoryDays  int      `yaml:"history_days"`
		MinHistory   int      `yaml:"min_history"`
		CronSpec     string   `yaml:"cron_spec"`
		CronWorkers  int      `yaml:"cron_workers"`
		QueryWorkers int      `yaml:"query_workers"`
	} `yaml:"universe"`
	Coinbase struct {
		BaseURL        string        `yaml:"base_url"`
		WindowDays     int           `yaml:"window_days"`
		RateLimitSleep time.Duration `yaml:"rate_limit_sleep"`
		PageDelay      time.Duration `yaml:"page_delay"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"coinbase"`
	Groq struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"groq"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		LockTTL  time.Duration `yaml:"lock_ttl"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Store, sentiment, and redis credentials are all optional:
// leaving them unset disables that collaborator instead of failing startup.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.ClickHouse.Port = p
		}
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Universe.Symbols = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Universe.QuoteCcy == "" {
		c.Universe.QuoteCcy = "USD"
	}
	if c.Universe.DecayWeight == 0 && c.Universe.TechWeight == 0 {
		c.Universe.DecayWeight = 0.7
		c.Universe.TechWeight = 0.3
	}
	if c.Universe.HistoryDays == 0 {
		c.Universe.HistoryDays = 200
	}
	if c.Universe.MinHistory == 0 {
		c.Universe.MinHistory = 200
	}
	if c.Universe.CronSpec == "" {
		c.Universe.CronSpec = "0 0 * * *"
	}
	if c.Universe.CronWorkers == 0 {
		c.Universe.CronWorkers = 5
	}
	if c.Universe.QueryWorkers == 0 {
		c.Universe.QueryWorkers = 8
	}
	if c.Coinbase.BaseURL == "" {
		c.Coinbase.BaseURL = "https://api.exchange.coinbase.com"
	}
	if c.Coinbase.WindowDays == 0 {
		c.Coinbase.WindowDays = 200
	}
	if c.Coinbase.RateLimitSleep == 0 {
		c.Coinbase.RateLimitSleep = time.Second
	}
	if c.Coinbase.PageDelay == 0 {
		c.Coinbase.PageDelay = 100 * time.Millisecond
	}
	if c.Coinbase.Timeout == 0 {
		c.Coinbase.Timeout = 30 * time.Second
	}
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Groq.Model == "" {
		c.Groq.Model = "llama-3.3-70b-versatile"
	}
	if c.Groq.Timeout == 0 {
		c.Groq.Timeout = 45 * time.Second
	}
	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = 10 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Universe.Symbols) == 0 {
		return fmt.Errorf("universe.symbols cannot be empty")
	}
	if c.Universe.DecayWeight < 0 || c.Universe.TechWeight < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}
	if c.Universe.MinHistory < 2 {
		return fmt.Errorf("universe.min_history must be at least 2")
	}
	return nil
}
