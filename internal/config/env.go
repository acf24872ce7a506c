package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
)

// LoadEnvFile loads environment variables from an env file. An empty path
// tries .env and ignores its absence; an explicit missing path is an error.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file %s not found", path)
		}
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides configuration values from the environment
func (c *Config) ApplyEnv() error {
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.LogDir = getEnv("LOG_DIR", c.App.LogDir)
	c.App.MetricsAddr = getEnv("METRICS_ADDR", c.App.MetricsAddr)

	c.Exchange.Name = getEnv("SIGNAL_PROVIDER", c.Exchange.Name)
	c.Exchange.BaseURL = getEnv("SIGNAL_PROVIDER_URL", c.Exchange.BaseURL)
	c.Exchange.Interval = getEnv("SIGNAL_INTERVAL", c.Exchange.Interval)
	if v := os.Getenv("SIGNAL_SYMBOLS"); v != "" {
		c.Exchange.Symbols = SplitList(v)
	}
	c.Exchange.Bybit.APIKey = getEnv("BYBIT_API_KEY", c.Exchange.Bybit.APIKey)
	c.Exchange.Bybit.APISecret = getEnv("BYBIT_API_SECRET", c.Exchange.Bybit.APISecret)

	c.Strategy.Rule = getEnv("SIGNAL_RULE", c.Strategy.Rule)
	c.Oracle.URL = getEnv("ORACLE_URL", c.Oracle.URL)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)

	c.Data.SQLitePath = getEnv("SQLITE_PATH", c.Data.SQLitePath)
	c.Data.CSVPath = getEnv("CSV_PATH", c.Data.CSVPath)

	var err error
	if c.Exchange.Limit, err = getEnvInt("SIGNAL_LIMIT", c.Exchange.Limit); err != nil {
		return err
	}
	if c.Exchange.Timeout, err = getEnvDuration("EXCHANGE_TIMEOUT", c.Exchange.Timeout); err != nil {
		return err
	}
	if c.Exchange.Bybit.Testnet, err = getEnvBool("BYBIT_TESTNET", c.Exchange.Bybit.Testnet); err != nil {
		return err
	}
	if c.Oracle.Timeout, err = getEnvDuration("ORACLE_TIMEOUT", c.Oracle.Timeout); err != nil {
		return err
	}
	if c.Cache.TTL, err = getEnvDuration("CACHE_TTL", c.Cache.TTL); err != nil {
		return err
	}
	if c.Strategy.Params.BacktestSlices, err = getEnvInt("BACKTEST_SLICES", c.Strategy.Params.BacktestSlices); err != nil {
		return err
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, envError(key, val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, envError(key, val)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, envError(key, val)
	}
	return d, nil
}

func envError(key, val string) error {
	return apperrors.NewConfigurationError("config", "ApplyEnv", fmt.Sprintf("invalid value %q for %s", val, key))
}
