// Package config loads the engine configuration from YAML, .env files and the environment.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// App captures process-wide settings
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	LogDir      string `yaml:"log_dir"`      // JSON log files are written here when set
	MetricsAddr string `yaml:"metrics_addr"` // Prometheus endpoint, disabled when empty
}

// Exchange selects the market data provider and the default series
type Exchange struct {
	exchange.ProviderConfig `yaml:",inline"`

	Symbols  []string `yaml:"symbols"`
	Interval string   `yaml:"interval"`
	Limit    int      `yaml:"limit"`
}

// Strategy selects the rule and its parameters
type Strategy struct {
	Rule   string          `yaml:"rule"`
	Params strategy.Params `yaml:"params"`
}

// Oracle configures the external price predictor used by the oracle rule
type Oracle struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Cache configures provider response caching
type Cache struct {
	Backend       string        `yaml:"backend"` // none, memory or redis
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// Data configures offline candle sources
type Data struct {
	SQLitePath string `yaml:"sqlite_path"`
	CSVPath    string `yaml:"csv_path"`
	DataRoot   string `yaml:"data_root"`
}

// Config collects every configuration leaf
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Strategy Strategy `yaml:"strategy"`
	Oracle   Oracle   `yaml:"oracle"`
	Cache    Cache    `yaml:"cache"`
	Data     Data     `yaml:"data"`
}

// DefaultConfig returns a configuration that works without any file
func DefaultConfig() *Config {
	return &Config{
		App: App{
			Name:     "futures-signal-engine",
			LogLevel: "info",
		},
		Exchange: Exchange{
			ProviderConfig: exchange.ProviderConfig{
				Name:    "mexc",
				Timeout: exchange.DefaultTimeout,
			},
			Symbols:  []string{"BTC_USDT"},
			Interval: "15m",
			Limit:    200,
		},
		Strategy: Strategy{
			Rule:   string(strategy.RuleBreakout),
			Params: strategy.DefaultParams(),
		},
		Oracle: Oracle{
			Timeout: 8 * time.Second,
		},
		Cache: Cache{
			Backend: "memory",
			TTL:     time.Minute,
		},
		Data: Data{
			DataRoot: "data",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file (if path is set),
// then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(ResolvePath(path)); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath maps a bare config name onto configs/<name>.yaml
func ResolvePath(path string) string {
	if !strings.ContainsAny(path, "/\\") {
		path = filepath.Join("configs", path)
	}
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		path += ".yaml"
	}
	return path
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigurationError("config", "Load", fmt.Sprintf("read config file %s: %v", path, err))
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return apperrors.NewConfigurationError("config", "Load", fmt.Sprintf("decode yaml %s: %v", path, err))
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return apperrors.NewConfigurationError("config", "Validate", fmt.Sprintf(format, args...))
	}

	if !contains(exchange.SupportedProviders(), strings.ToLower(c.Exchange.Name)) {
		return fail("unsupported provider %q (supported: %s)", c.Exchange.Name, strings.Join(exchange.SupportedProviders(), ", "))
	}
	interval, err := exchange.NormalizeInterval(c.Exchange.Interval)
	if err != nil {
		return fail("%v", err)
	}
	c.Exchange.Interval = interval
	if c.Exchange.Limit <= 0 {
		return fail("exchange.limit must be positive, got %d", c.Exchange.Limit)
	}
	if len(c.Exchange.Symbols) == 0 {
		return fail("at least one symbol is required")
	}

	if _, err := strategy.ParseRuleKind(c.Strategy.Rule); err != nil {
		return fail("%v", err)
	}
	if err := c.Strategy.Params.Validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fail("cache.redis_addr is required for the redis backend")
		}
	default:
		return fail("unsupported cache backend %q (supported: none, memory, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fail("cache.ttl must not be negative")
	}
	return nil
}

// RuleKind returns the validated rule kind
func (c *Config) RuleKind() strategy.RuleKind {
	kind, _ := strategy.ParseRuleKind(c.Strategy.Rule)
	return kind
}

// Save persists the configuration as YAML
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
