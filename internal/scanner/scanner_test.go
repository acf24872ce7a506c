package scanner

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

func candlesFromCloses(closes ...float64) []types.OHLCV {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	data := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		data[i] = types.OHLCV{
			Open:      open,
			High:      math.Max(open, c) + 1,
			Low:       math.Min(open, c) - 1,
			Close:     c,
			Volume:    100,
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
		}
	}
	return data
}

type fakeProvider struct {
	series map[string][]types.OHLCV
	calls  int32
}

func (p *fakeProvider) GetName() string { return "fake" }

func (p *fakeProvider) GetKlines(_ context.Context, symbol, _ string, _ int) ([]types.OHLCV, error) {
	atomic.AddInt32(&p.calls, 1)
	data, ok := p.series[symbol]
	if !ok {
		return nil, apperrors.NewProviderError("fake", "GetKlines", errors.New("unknown symbol"))
	}
	return data, nil
}

func newTestScanner(p *fakeProvider, health *monitoring.HealthChecker) *Scanner {
	engine := strategy.NewEngine(strategy.DefaultParams(), nil)
	return New(p, engine, strategy.NewBreakoutRule(), Config{Interval: "15m", Limit: 50, Workers: 2, Every: 10 * time.Millisecond}, health, nil)
}

func TestScan(t *testing.T) {
	p := &fakeProvider{series: map[string][]types.OHLCV{
		"UP_USDT":   candlesFromCloses(100, 101, 102, 103, 110),
		"DOWN_USDT": candlesFromCloses(110, 109, 108, 107, 100),
		"FLAT_USDT": candlesFromCloses(100, 100, 100, 100, 100),
		"ONE_USDT":  candlesFromCloses(100),
	}}
	health := monitoring.NewHealthChecker(time.Minute, 3)
	s := newTestScanner(p, health)

	symbols := []string{"UP_USDT", "DOWN_USDT", "FLAT_USDT", "ONE_USDT", "GONE_USDT"}
	results := s.Scan(context.Background(), symbols)
	require.Len(t, results, len(symbols))

	for i, r := range results {
		assert.Equal(t, symbols[i], r.Symbol)
	}
	assert.Equal(t, strategy.DirectionLong, results[0].Signal.Direction)
	assert.Equal(t, strategy.DirectionShort, results[1].Signal.Direction)
	assert.Equal(t, strategy.DirectionNeutral, results[2].Signal.Direction)
	assert.Equal(t, strategy.DirectionUnavailable, results[3].Signal.Direction)
	assert.NoError(t, results[3].Err)
	assert.True(t, apperrors.IsProviderFailure(results[4].Err))

	assert.Equal(t, int32(len(symbols)), atomic.LoadInt32(&p.calls))
	assert.Contains(t, results[4].Err.Error(), "unknown symbol")

	assert.False(t, health.Status().LastSignal.IsZero())

	actionable := Actionable(results)
	require.Len(t, actionable, 2)
	assert.Equal(t, "DOWN_USDT", actionable[0].Symbol)
	assert.Equal(t, "UP_USDT", actionable[1].Symbol)
}

func TestScan_Cancelled(t *testing.T) {
	p := &fakeProvider{series: map[string][]types.OHLCV{}}
	s := newTestScanner(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.Scan(ctx, []string{"A", "B", "C"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}

func TestWatch(t *testing.T) {
	p := &fakeProvider{series: map[string][]types.OHLCV{
		"UP_USDT": candlesFromCloses(100, 101, 102, 103, 110),
	}}
	s := newTestScanner(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rounds := 0
	err := s.Watch(ctx, []string{"UP_USDT"}, func(results []Result) {
		rounds++
		require.Len(t, results, 1)
		if rounds == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, rounds)
}
