package exchange

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange/bybit"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// BybitProvider adapts the Bybit SDK client to DerivativesDataProvider
type BybitProvider struct {
	client *bybit.Client
}

// NewBybitProvider creates a provider over linear perpetual contracts
func NewBybitProvider(cfg bybit.Config) *BybitProvider {
	return &BybitProvider{client: bybit.NewClient(cfg)}
}

func (p *BybitProvider) GetName() string {
	return "bybit"
}

func (p *BybitProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	native, err := nativeInterval(bybitIntervals, "bybit", interval)
	if err != nil {
		return nil, apperrors.NewValidationError("bybit", "GetKlines", err.Error())
	}

	klines, err := p.client.GetKlines(ctx, bybit.KlineParams{
		Category: "linear",
		Symbol:   futuresSymbol(symbol),
		Interval: bybit.KlineInterval(native),
		Limit:    limit,
	})
	if err != nil {
		return nil, p.fail("GetKlines", symbol, err)
	}
	if len(klines) == 0 {
		return nil, p.fail("GetKlines", symbol, fmt.Errorf("no candles returned"))
	}

	candles := make([]types.OHLCV, len(klines))
	for i, k := range klines {
		candles[i] = types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		}
	}
	return candles, nil
}

func (p *BybitProvider) GetFairPrice(ctx context.Context, symbol string) (*types.FairPrice, error) {
	md, err := p.marketData(ctx, "GetFairPrice", symbol)
	if err != nil {
		return nil, err
	}
	return &types.FairPrice{Symbol: md.Symbol, Price: md.MarkPrice, Timestamp: time.Now()}, nil
}

func (p *BybitProvider) GetFundingRate(ctx context.Context, symbol string) (*types.FundingRate, error) {
	md, err := p.marketData(ctx, "GetFundingRate", symbol)
	if err != nil {
		return nil, err
	}
	return &types.FundingRate{
		Symbol:     md.Symbol,
		Rate:       md.FundingRate,
		NextSettle: md.NextFundingTime,
		Timestamp:  time.Now(),
	}, nil
}

func (p *BybitProvider) GetOpenInterest(ctx context.Context, symbol string) (*types.OpenInterest, error) {
	md, err := p.marketData(ctx, "GetOpenInterest", symbol)
	if err != nil {
		return nil, err
	}
	return &types.OpenInterest{Symbol: md.Symbol, Value: md.OpenInterest, Timestamp: time.Now()}, nil
}

func (p *BybitProvider) marketData(ctx context.Context, operation, symbol string) (*bybit.FuturesMarketData, error) {
	md, err := p.client.GetFuturesMarketData(ctx, "linear", futuresSymbol(symbol))
	if err != nil {
		return nil, p.fail(operation, symbol, err)
	}
	return md, nil
}

func (p *BybitProvider) fail(operation, symbol string, err error) error {
	return apperrors.NewProviderError("bybit", operation, err).WithContext("symbol", symbol)
}
