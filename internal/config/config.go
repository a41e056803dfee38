package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5s" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level configuration for tradegate.
type Config struct {
	Server  Server  `yaml:"server"`
	Gateway Gateway `yaml:"gateway"`
	Ledger  Ledger  `yaml:"ledger"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
	Notify  Notify  `yaml:"notify"`
}

// Server holds network listener configuration.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Gateway holds the endpoint of the brokerage gateway.
type Gateway struct {
	BaseURL string        `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Ledger configures the portfolio ledger.
type Ledger struct {
	InitialBalance float64 `yaml:"initial_balance"`
}

// Storage holds paths for data persistence.
type Storage struct {
	SQLitePath   string `yaml:"sqlite_path"`
	WatchlistKey string `yaml:"watchlist_key"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Notify configures the optional trade webhook. An empty URL disables it.
type Notify struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    Duration `yaml:"timeout"`
}

// Load reads the YAML configuration file at the given path, applies
// environment variable overrides and defaults, and validates the result.
// An empty path skips the file and uses defaults plus overrides only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
		}
		cfg.Gateway.Timeout = Duration(d)
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid INITIAL_BALANCE: %w", err)
		}
		cfg.Ledger.InitialBalance = f
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = Duration(5 * time.Second)
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = "http://localhost:8000"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = Duration(10 * time.Second)
	}
	if cfg.Ledger.InitialBalance == 0 {
		cfg.Ledger.InitialBalance = 10000
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "tradegate.db"
	}
	if cfg.Storage.WatchlistKey == "" {
		cfg.Storage.WatchlistKey = "default"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = Duration(5 * time.Second)
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Ledger.InitialBalance < 0 {
		return fmt.Errorf("initial balance must not be negative: %v", c.Ledger.InitialBalance)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
