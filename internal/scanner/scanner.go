package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// Config controls one scanner
type Config struct {
	Interval string
	Limit    int
	Workers  int
	Every    time.Duration // period of Watch
}

// Result is the outcome for one symbol. Err is set only when candles could
// not be fetched; evaluation problems surface as an Unavailable signal.
type Result struct {
	Symbol  string
	Signal  strategy.Signal
	Candles int
	Elapsed time.Duration
	Err     error
}

// Scanner fetches candles for many symbols in parallel and evaluates one
// rule on each of them
type Scanner struct {
	provider exchange.MarketDataProvider
	engine   *strategy.Engine
	rule     strategy.Rule
	cfg      Config
	health   *monitoring.HealthChecker
	log      *logger.Logger
}

// New creates a scanner. health may be nil.
func New(provider exchange.MarketDataProvider, engine *strategy.Engine, rule strategy.Rule, cfg Config, health *monitoring.HealthChecker, log *logger.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Every <= 0 {
		cfg.Every = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		provider: provider,
		engine:   engine,
		rule:     rule,
		cfg:      cfg,
		health:   health,
		log:      log.With("scanner"),
	}
}

// Scan evaluates every symbol once. Results keep the order of symbols.
func (s *Scanner) Scan(ctx context.Context, symbols []string) []Result {
	results := make([]Result, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.cfg.Workers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.scanSymbol(ctx, symbols[i])
			}
		}()
	}

feed:
	for i := range symbols {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(symbols); j++ {
				results[j] = Result{Symbol: symbols[j], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Scanner) scanSymbol(ctx context.Context, symbol string) (res Result) {
	start := time.Now()
	res.Symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scan of %s panicked: %v", symbol, r)
			res.Err = fmt.Errorf("scan of %s failed: %v", symbol, r)
		}
		res.Elapsed = time.Since(start)
	}()

	data, err := s.provider.GetKlines(ctx, symbol, s.cfg.Interval, s.cfg.Limit)
	if err != nil {
		category := apperrors.CategoryOf(err)
		if category == "" {
			category = apperrors.ErrorCategoryProvider
		}
		monitoring.RecordProviderFailure(s.provider.GetName(), string(category))
		if s.health != nil {
			s.health.RecordError(err)
		}
		s.log.Warning("fetch %s failed: %v", symbol, err)
		res.Err = err
		return res
	}
	if s.health != nil {
		s.health.RecordFetch()
	}
	res.Candles = len(data)
	if len(data) > 0 {
		monitoring.UpdateLastClose(symbol, data[len(data)-1].Close)
	}

	res.Signal = s.engine.ComputeSignal(ctx, symbol, data, s.rule)
	monitoring.RecordSignal(symbol, string(s.rule.Kind()), res.Signal.Direction.String(), time.Since(start))
	if s.health != nil {
		s.health.RecordSignal()
	}
	if res.Signal.IsActionable() {
		s.log.LogSignal(symbol, string(res.Signal.Rule), res.Signal.Direction.String(),
			res.Signal.Price, res.Signal.Entry, res.Signal.StopLoss, res.Signal.Reason)
	}
	return res
}

// Watch rescans symbols every cfg.Every until ctx is cancelled, handing each
// round to onRound. The first round runs immediately.
func (s *Scanner) Watch(ctx context.Context, symbols []string, onRound func([]Result)) error {
	ticker := time.NewTicker(s.cfg.Every)
	defer ticker.Stop()

	s.log.Info("watching %d symbols every %s", len(symbols), s.cfg.Every)
	for {
		results := s.Scan(ctx, symbols)
		if ctx.Err() != nil {
			s.log.Info("watch stopped")
			return ctx.Err()
		}
		if onRound != nil {
			onRound(results)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.log.Info("watch stopped")
			return ctx.Err()
		}
	}
}

// Actionable returns the Long and Short results sorted by symbol
func Actionable(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err == nil && r.Signal.IsActionable() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
