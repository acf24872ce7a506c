package exchange

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/internal/safety"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// GuardConfig limits the request rate towards an exchange and stops calling
// it for a while after repeated failures. Zero values use the defaults.
type GuardConfig struct {
	Disabled         bool          `yaml:"disabled,omitempty"`
	RateLimit        int           `yaml:"rate_limit,omitempty"` // requests per second, default 10
	Burst            int           `yaml:"burst,omitempty"`      // default 2 * RateLimit
	FailureThreshold int           `yaml:"failure_threshold,omitempty"`
	OpenTimeout      time.Duration `yaml:"open_timeout,omitempty"`
}

// GuardedProvider wraps a provider with a token bucket and a circuit breaker.
// Only provider, network and timeout failures trip the breaker.
type GuardedProvider struct {
	inner   DerivativesDataProvider
	limiter *safety.RateLimiter
	breaker *safety.CircuitBreaker
}

// NewGuardedProvider wraps inner
func NewGuardedProvider(inner DerivativesDataProvider, cfg GuardConfig) *GuardedProvider {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2 * cfg.RateLimit
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}

	name := inner.GetName()
	breaker := safety.NewCircuitBreaker(name, safety.CircuitBreakerConfig{
		FailureThreshold: uint32(cfg.FailureThreshold),
		Timeout:          cfg.OpenTimeout,
	})
	breaker.SetStateChangeCallback(func(name string, _, to safety.CircuitBreakerState) {
		monitoring.SetBreakerState(name, int(to))
	})
	monitoring.SetBreakerState(name, int(safety.StateClosed))

	return &GuardedProvider{
		inner:   inner,
		limiter: safety.NewRateLimiter(name, cfg.Burst, cfg.RateLimit),
		breaker: breaker,
	}
}

// Breaker exposes the circuit breaker state
func (g *GuardedProvider) Breaker() *safety.CircuitBreaker {
	return g.breaker
}

func (g *GuardedProvider) GetName() string {
	return g.inner.GetName()
}

// HasContract checks the listing through the inner provider. Providers
// without a contract list report every symbol as listed.
func (g *GuardedProvider) HasContract(ctx context.Context, symbol string) (bool, error) {
	lister, ok := g.inner.(ContractLister)
	if !ok {
		return true, nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return true, apperrors.NewProviderError(g.GetName(), "HasContract", err).WithContext("symbol", symbol)
	}
	return lister.HasContract(ctx, symbol)
}

func (g *GuardedProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	return guard(ctx, g, "GetKlines", symbol, func() ([]types.OHLCV, error) {
		return g.inner.GetKlines(ctx, symbol, interval, limit)
	})
}

func (g *GuardedProvider) GetFairPrice(ctx context.Context, symbol string) (*types.FairPrice, error) {
	return guard(ctx, g, "GetFairPrice", symbol, func() (*types.FairPrice, error) {
		return g.inner.GetFairPrice(ctx, symbol)
	})
}

func (g *GuardedProvider) GetFundingRate(ctx context.Context, symbol string) (*types.FundingRate, error) {
	return guard(ctx, g, "GetFundingRate", symbol, func() (*types.FundingRate, error) {
		return g.inner.GetFundingRate(ctx, symbol)
	})
}

func (g *GuardedProvider) GetOpenInterest(ctx context.Context, symbol string) (*types.OpenInterest, error) {
	return guard(ctx, g, "GetOpenInterest", symbol, func() (*types.OpenInterest, error) {
		return g.inner.GetOpenInterest(ctx, symbol)
	})
}

func guard[T any](ctx context.Context, g *GuardedProvider, op, symbol string, fn func() (T, error)) (T, error) {
	var out T
	if err := g.limiter.Wait(ctx); err != nil {
		return out, apperrors.NewProviderError(g.GetName(), op, err).WithContext("symbol", symbol)
	}

	err := g.breaker.Call(func() error {
		var err error
		out, err = fn()
		return err
	}, apperrors.IsProviderFailure)

	if errors.Is(err, safety.ErrCircuitOpen) {
		return out, apperrors.NewProviderError(g.GetName(), op, err).
			WithContext("symbol", symbol).
			WithContext("retry_at", g.breaker.GetStats().NextAttempt)
	}
	return out, err
}
