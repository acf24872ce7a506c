package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/config"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/internal/oracle"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/data"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// App holds the components every command wires from the configuration
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Provider exchange.DerivativesDataProvider
	Source   *data.ExchangeSource
	Engine   *strategy.Engine
	Rule     strategy.Rule

	csv   *data.CachedProvider
	redis *data.RedisCache

	filter *data.DefaultDataFilter
	period time.Duration
	since  time.Time
	until  time.Time
}

// Setup builds the logger, provider, cached candle source, engine and rule.
// symbol only names the log file.
func Setup(flags *CommonFlags, cfg *config.Config, symbol string) (*App, error) {
	log, err := logger.New(logger.Options{
		Level:    cfg.App.LogLevel,
		Console:  true,
		LogDir:   cfg.App.LogDir,
		Symbol:   symbol,
		Interval: cfg.Exchange.Interval,
	})
	if err != nil {
		return nil, err
	}

	provider, err := exchange.NewProvider(cfg.Exchange.ProviderConfig)
	if err != nil {
		log.Close()
		return nil, err
	}

	app := &App{Config: cfg, Log: log, Provider: provider, filter: data.NewDefaultDataFilter()}
	if flags != nil {
		if app.since, app.until, err = flags.Window(); err != nil {
			log.Close()
			return nil, err
		}
		app.period = *flags.Period
	}

	var cache data.DataCache
	switch strings.ToLower(cfg.Cache.Backend) {
	case "memory":
		cache = data.NewMemoryCache(cfg.Cache.TTL)
	case "redis":
		rc, err := data.NewRedisCache(data.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, log)
		if err != nil {
			// Candles are still served straight from the provider
			log.Warning("redis cache disabled: %v", err)
		} else {
			app.redis = rc
			cache = rc
		}
	}
	app.Source = data.NewExchangeSource(provider, cache, log)

	csvProvider := data.NewCSVProvider()
	csvProvider.SetLogger(log)
	app.csv = data.NewCachedProvider(csvProvider)
	app.csv.SetLogger(log)

	app.Engine = strategy.NewEngine(cfg.Strategy.Params, log)

	predictor, err := buildPredictor(flags, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Rule, err = strategy.NewRule(cfg.RuleKind(), predictor)
	if err != nil {
		app.Close()
		return nil, err
	}

	log.Debug("provider=%s rule=%s interval=%s limit=%d cache=%s",
		provider.GetName(), cfg.RuleKind(), cfg.Exchange.Interval, cfg.Exchange.Limit, cfg.Cache.Backend)
	return app, nil
}

func buildPredictor(flags *CommonFlags, cfg *config.Config) (oracle.Predictor, error) {
	if flags != nil {
		value, ok, err := flags.StaticPrediction()
		if err != nil {
			return nil, err
		}
		if ok {
			return oracle.Static(value), nil
		}
	}
	if cfg.Oracle.URL != "" {
		return oracle.NewHTTPPredictor(cfg.Oracle.URL, cfg.Oracle.Timeout), nil
	}
	return nil, nil
}

// Close releases the log file and cache connections
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.Log.Close()
}

// Candles loads the series for symbol. An empty dataSpec fetches from the
// provider; otherwise dataSpec is "csv", "sqlite" or a path to a .csv or
// SQLite file. Offline series are trimmed to the configured limit, then the
// -since/-until window and -period apply.
func (a *App) Candles(ctx context.Context, dataSpec, symbol string) ([]types.OHLCV, error) {
	candles, err := a.load(ctx, dataSpec, symbol)
	if err != nil {
		return nil, err
	}
	return a.window(candles), nil
}

// Signal loads candles for symbol and evaluates the configured rule. A failed
// fetch is reported as a no-data signal and the engine is not run.
func (a *App) Signal(ctx context.Context, dataSpec, symbol string) strategy.Signal {
	candles, err := a.Candles(ctx, dataSpec, symbol)
	if err != nil {
		a.Log.LogError("fetch candles "+symbol, err)
		sig := strategy.NoData(err)
		sig.Symbol = symbol
		if a.Rule != nil {
			sig.Rule = a.Rule.Kind()
		}
		sig.Timestamp = time.Now()
		return sig
	}
	return a.Engine.ComputeSignal(ctx, symbol, candles, a.Rule)
}

// WarnUnlisted logs the symbols missing from the provider's contract list.
// They are still requested; the list may lag behind new listings.
func (a *App) WarnUnlisted(ctx context.Context, symbols []string) []string {
	missing := exchange.Unlisted(ctx, a.Provider, symbols)
	for _, s := range missing {
		a.Log.Warning("%s not found in fetched contracts list (still trying)", s)
	}
	return missing
}

func (a *App) window(candles []types.OHLCV) []types.OHLCV {
	if a.filter == nil {
		return candles
	}
	if !a.since.IsZero() || !a.until.IsZero() {
		until := a.until
		if until.IsZero() {
			until = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		}
		candles = a.filter.FilterByDateRange(candles, a.since, until)
	}
	return a.filter.FilterByPeriod(candles, a.period)
}

func (a *App) load(ctx context.Context, dataSpec, symbol string) ([]types.OHLCV, error) {
	limit := a.Config.Exchange.Limit
	interval := a.Config.Exchange.Interval

	switch kind, path := a.resolveDataSpec(dataSpec, symbol); kind {
	case "":
		return a.Source.GetKlines(ctx, symbol, interval, limit)
	case "csv":
		candles, err := a.csv.LoadData(path)
		if err != nil {
			return nil, err
		}
		candles = data.Normalize(candles)
		if limit > 0 && len(candles) > limit {
			candles = candles[len(candles)-limit:]
		}
		return candles, nil
	case "sqlite":
		store, err := data.NewSQLiteProvider(path, a.Log)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Candles(ctx, symbol, interval, limit)
	default:
		return nil, fmt.Errorf("unsupported data source %q", dataSpec)
	}
}

func (a *App) resolveDataSpec(dataSpec, symbol string) (kind, path string) {
	switch strings.ToLower(dataSpec) {
	case "":
		return "", ""
	case "csv":
		if a.Config.Data.CSVPath != "" {
			return "csv", a.Config.Data.CSVPath
		}
		found, attempted := data.FindDataFile(a.Config.Data.DataRoot, a.Config.Exchange.Name, symbol, a.Config.Exchange.Interval)
		if found == "" && len(attempted) > 0 {
			found = attempted[0]
		}
		return "csv", found
	case "sqlite":
		return "sqlite", a.Config.Data.SQLitePath
	}

	switch strings.ToLower(filepath.Ext(dataSpec)) {
	case ".csv":
		return "csv", dataSpec
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite", dataSpec
	}
	return dataSpec, dataSpec
}

// ServeMetrics exposes /metrics and, when health is set, /health on addr.
// It returns nil when addr is empty.
func ServeMetrics(addr string, health *monitoring.HealthChecker, log *logger.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	if health != nil {
		mux.Handle("/health", health)
	}

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped: %v", err)
		}
	}()
	log.Info("metrics listening on %s", addr)
	return srv
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fatal prints err and exits
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}
