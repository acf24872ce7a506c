package common

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/config"
)

// CommonFlags are the flags shared by every command. Empty values leave the
// configuration untouched.
type CommonFlags struct {
	ConfigFile *string
	EnvFile    *string
	Provider   *string
	Interval   *string
	Limit      *int
	Rule       *string
	OracleURL  *string
	Prediction *string
	LogLevel   *string
	Period     *time.Duration
	Since      *string
	Until      *string
	Version    *bool
}

// RegisterCommonFlags registers the shared flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		ConfigFile: fs.String("config", "", "Configuration file (name under configs/ or path)"),
		EnvFile:    fs.String("env", "", "Environment file path (default: .env when present)"),
		Provider:   fs.String("provider", "", "Market data provider (mexc, binance, bybit) - overrides config"),
		Interval:   fs.String("interval", "", "Candle interval (e.g. 15m, 1h, Min60) - overrides config"),
		Limit:      fs.Int("limit", 0, "Number of candles to fetch - overrides config"),
		Rule:       fs.String("rule", "", "Signal rule (breakout, confluence, oracle) - overrides config"),
		OracleURL:  fs.String("oracle-url", "", "Prediction service URL for the oracle rule"),
		Prediction: fs.String("prediction", "", "Fixed prediction for the oracle rule instead of calling the service"),
		LogLevel:   fs.String("log-level", "", "Log level (debug, info, warn, error)"),
		Period:     fs.Duration("period", 0, "Keep only candles within this duration of the latest one (e.g. 720h)"),
		Since:      fs.String("since", "", "Drop candles before this date (YYYY-MM-DD)"),
		Until:      fs.String("until", "", "Drop candles after this date (YYYY-MM-DD, inclusive)"),
		Version:    fs.Bool("version", false, "Show version information"),
	}
}

// LoadConfig loads the env file and configuration, then applies flag
// overrides and validates the result.
func (f *CommonFlags) LoadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(*f.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*f.ConfigFile)
	if err != nil {
		return nil, err
	}

	if *f.Provider != "" {
		cfg.Exchange.Name = *f.Provider
	}
	if *f.Interval != "" {
		cfg.Exchange.Interval = *f.Interval
	}
	if *f.Limit > 0 {
		cfg.Exchange.Limit = *f.Limit
	}
	if *f.Rule != "" {
		cfg.Strategy.Rule = *f.Rule
	}
	if *f.OracleURL != "" {
		cfg.Oracle.URL = *f.OracleURL
	}
	if *f.LogLevel != "" {
		cfg.App.LogLevel = *f.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StaticPrediction parses -prediction. ok is false when the flag is unset.
func (f *CommonFlags) StaticPrediction() (value float64, ok bool, err error) {
	if *f.Prediction == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(*f.Prediction, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid -prediction %q: %w", *f.Prediction, err)
	}
	return value, true, nil
}

// Window parses -since and -until. Zero times mean unbounded.
func (f *CommonFlags) Window() (since, until time.Time, err error) {
	if *f.Since != "" {
		if since, err = time.Parse(dateLayout, *f.Since); err != nil {
			return since, until, fmt.Errorf("invalid -since %q: %w", *f.Since, err)
		}
	}
	if *f.Until != "" {
		if until, err = time.Parse(dateLayout, *f.Until); err != nil {
			return since, until, fmt.Errorf("invalid -until %q: %w", *f.Until, err)
		}
		// inclusive: keep the whole day
		until = until.Add(24*time.Hour - time.Nanosecond)
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return since, until, fmt.Errorf("-until %s is before -since %s", *f.Until, *f.Since)
	}
	return since, until, nil
}

const dateLayout = "2006-01-02"
