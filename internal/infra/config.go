package infra

import (
	"errors"
	"fmt"
	"os"

	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Sensitive or machine-specific
// values can be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Backtest struct {
		InitialBalance decimal.Decimal `yaml:"initial_balance"`
		Symbol         string          `yaml:"symbol"`
		DataFile       string          `yaml:"data_file"`
	} `yaml:"backtest"`

	Strategy struct {
		ShortPeriod int   `yaml:"short_period"`
		LongPeriod  int   `yaml:"long_period"`
		OrderQty    int64 `yaml:"order_qty"`
	} `yaml:"strategy"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !c.Backtest.InitialBalance.IsPositive() {
		return &domain.ConfigError{Field: "backtest.initial_balance", Err: errors.New("must be positive")}
	}
	if c.Backtest.Symbol == "" {
		return &domain.ConfigError{Field: "backtest.symbol", Err: errors.New("symbol is required")}
	}
	if c.Backtest.DataFile == "" {
		return &domain.ConfigError{Field: "backtest.data_file", Err: errors.New("data file is required")}
	}
	if c.Strategy.ShortPeriod > 0 || c.Strategy.LongPeriod > 0 {
		if c.Strategy.ShortPeriod <= 0 || c.Strategy.LongPeriod <= c.Strategy.ShortPeriod {
			return &domain.ConfigError{Field: "strategy", Err: errors.New("short_period must be positive and less than long_period")}
		}
		if c.Strategy.OrderQty <= 0 {
			return &domain.ConfigError{Field: "strategy.order_qty", Err: errors.New("order_qty must be positive")}
		}
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return &domain.ConfigError{Field: "journal.path", Err: errors.New("path is required when journal is enabled")}
	}
	return nil
}

// overrideWithEnv overwrites settings for which environment variables are
// present.
func overrideWithEnv(cfg *Config) {
	if f := os.Getenv("ARES_DATA_FILE"); f != "" {
		cfg.Backtest.DataFile = f
	}
	if p := os.Getenv("ARES_JOURNAL_PATH"); p != "" {
		cfg.Journal.Path = p
	}
}
