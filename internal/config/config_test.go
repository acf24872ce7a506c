package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

const sampleYAML = `
app:
  name: signal-test
  log_level: debug
exchange:
  provider: binance
  timeout: 5s
  symbols: [BTCUSDT, ETHUSDT]
  interval: Min60
  limit: 300
strategy:
  rule: confluence
  params:
    atr_period: 14
    atr_multiplier: 2
    rsi_period: 14
    ema_fast: 20
    ema_slow: 50
    macd_fast: 12
    macd_slow: 26
    macd_signal: 9
    target_multipliers: [0.5, 1, 1.25]
    volatility_floor: 0.005
    rsi_long_min: 40
    rsi_long_max: 60
    rsi_short_min: 70
    backtest_slices: 100
cache:
  backend: memory
  ttl: 30s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, strategy.RuleBreakout, cfg.RuleKind())
	assert.Equal(t, "mexc", cfg.Exchange.Name)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "signal-test", cfg.App.Name)
	assert.Equal(t, "binance", cfg.Exchange.Name)
	assert.Equal(t, 5*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Exchange.Symbols)
	assert.Equal(t, "1h", cfg.Exchange.Interval)
	assert.Equal(t, 300, cfg.Exchange.Limit)
	assert.Equal(t, strategy.RuleConfluence, cfg.RuleKind())
	assert.Equal(t, 2.0, cfg.Strategy.Params.ATRMultiplier)
	assert.Equal(t, [3]float64{0.5, 1, 1.25}, cfg.Strategy.Params.TargetMultipliers)
	assert.Equal(t, 100, cfg.Strategy.Params.BacktestSlices)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SIGNAL_PROVIDER", "bybit")
	t.Setenv("SIGNAL_SYMBOLS", "SOLUSDT, ,XRPUSDT")
	t.Setenv("SIGNAL_RULE", "oracle")
	t.Setenv("SIGNAL_LIMIT", "120")
	t.Setenv("ORACLE_TIMEOUT", "3s")
	t.Setenv("BYBIT_TESTNET", "true")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.Equal(t, []string{"SOLUSDT", "XRPUSDT"}, cfg.Exchange.Symbols)
	assert.Equal(t, strategy.RuleOracle, cfg.RuleKind())
	assert.Equal(t, 120, cfg.Exchange.Limit)
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout)
	assert.True(t, cfg.Exchange.Bybit.Testnet)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("SIGNAL_LIMIT", "many")
	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryConfiguration, apperrors.CategoryOf(err))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "exchange:\n  unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "strategy:\n  rule: martingale\n"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryConfiguration, apperrors.CategoryOf(err))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"provider":      func(c *Config) { c.Exchange.Name = "kraken" },
		"interval":      func(c *Config) { c.Exchange.Interval = "7m" },
		"limit":         func(c *Config) { c.Exchange.Limit = 0 },
		"symbols":       func(c *Config) { c.Exchange.Symbols = nil },
		"params":        func(c *Config) { c.Strategy.Params.EMAFast = 60 },
		"cache backend": func(c *Config) { c.Cache.Backend = "memcached" },
		"redis addr":    func(c *Config) { c.Cache.Backend = "redis" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorCategoryConfiguration, apperrors.CategoryOf(err))
		})
	}
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("configs", "btc.yaml"), ResolvePath("btc"))
	assert.Equal(t, filepath.Join("configs", "btc.yml"), ResolvePath("btc.yml"))
	assert.Equal(t, "./local.yaml", ResolvePath("./local"))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Exchange.Symbols = []string{"ETH_USDT"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Exchange.Symbols, loaded.Exchange.Symbols)
	assert.Equal(t, cfg.Strategy.Params, loaded.Strategy.Params)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNAL_TEST_ONLY_KEY=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SIGNAL_TEST_ONLY_KEY") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("SIGNAL_TEST_ONLY_KEY"))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,,b "))
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Strategy.Params, cfg.Strategy.Params)
	assert.Equal(t, 20, cfg.Exchange.Guard.Burst)
	assert.Equal(t, 30*time.Second, cfg.Exchange.Guard.OpenTimeout)
	assert.Len(t, cfg.Exchange.Symbols, 3)
}
