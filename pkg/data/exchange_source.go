package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ExchangeSource turns a live market data provider into a DataProvider whose
// responses can be cached. It also serves GetKlines directly so the backtest
// batch processor can use it as a candle source.
type ExchangeSource struct {
	fetcher KlineFetcher
	cache   DataCache
	timeout time.Duration
	log     *logger.Logger
}

// NewExchangeSource wraps fetcher. cache may be nil to disable caching.
func NewExchangeSource(fetcher KlineFetcher, cache DataCache, log *logger.Logger) *ExchangeSource {
	if log == nil {
		log = logger.Nop()
	}
	return &ExchangeSource{
		fetcher: fetcher,
		cache:   cache,
		timeout: 30 * time.Second,
		log:     log.With("exchange_source"),
	}
}

// GetName returns the name of the data provider
func (s *ExchangeSource) GetName() string {
	return "Exchange " + s.fetcher.GetName()
}

// LoadData fetches the series named by a "symbol:interval:limit" source
func (s *ExchangeSource) LoadData(source string) ([]types.OHLCV, error) {
	key, err := ParseSourceKey(source)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.GetKlines(ctx, key.Symbol, key.Interval, key.Limit)
}

// GetKlines returns cached candles when present, otherwise fetches and caches them
func (s *ExchangeSource) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	key := SourceKey{Provider: s.fetcher.GetName(), Symbol: symbol, Interval: interval, Limit: limit}.CacheKey()
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			s.log.Debug("cache hit %s", key)
			return data, nil
		}
	}

	data, err := s.fetcher.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, data)
	}
	return data, nil
}

// ValidateData validates the integrity of loaded data
func (s *ExchangeSource) ValidateData(data []types.OHLCV) error {
	return validateCandles(data)
}
