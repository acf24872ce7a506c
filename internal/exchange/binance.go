package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// BinanceFuturesBaseURL is the USDⓈ-M futures API host
const BinanceFuturesBaseURL = "https://fapi.binance.com"

// BinanceFuturesProvider reads public USDⓈ-M perpetual market data from Binance
type BinanceFuturesProvider struct {
	client  *http.Client
	baseURL string
}

// NewBinanceFuturesProvider creates a Binance futures provider; an empty baseURL uses mainnet
func NewBinanceFuturesProvider(baseURL string, timeout time.Duration) *BinanceFuturesProvider {
	if baseURL == "" {
		baseURL = BinanceFuturesBaseURL
	}
	return &BinanceFuturesProvider{
		client:  newHTTPClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type binancePremiumIndex struct {
	Symbol          string `json:"symbol"`
	MarkPrice       string `json:"markPrice"`
	IndexPrice      string `json:"indexPrice"`
	LastFundingRate string `json:"lastFundingRate"`
	NextFundingTime int64  `json:"nextFundingTime"`
	Time            int64  `json:"time"`
}

func (b *BinanceFuturesProvider) GetName() string {
	return "binance"
}

func (b *BinanceFuturesProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	canonical, err := NormalizeInterval(interval)
	if err != nil {
		return nil, apperrors.NewValidationError("binance", "GetKlines", err.Error())
	}
	if limit <= 0 || limit > 1500 {
		limit = 1500
	}

	params := url.Values{}
	params.Set("symbol", futuresSymbol(symbol))
	params.Set("interval", canonical)
	params.Set("limit", strconv.Itoa(limit))

	var klinesData [][]interface{}
	if err := getJSON(ctx, b.client, b.baseURL+"/fapi/v1/klines?"+params.Encode(), &klinesData); err != nil {
		return nil, b.fail("GetKlines", symbol, fmt.Errorf("failed to get klines: %w", err))
	}

	klines := make([]types.OHLCV, 0, len(klinesData))
	for _, kline := range klinesData {
		if len(kline) < 6 {
			continue
		}

		openTime, _ := kline[0].(float64)
		klines = append(klines, types.OHLCV{
			Timestamp: time.UnixMilli(int64(openTime)),
			Open:      parseBinanceFloat(kline[1]),
			High:      parseBinanceFloat(kline[2]),
			Low:       parseBinanceFloat(kline[3]),
			Close:     parseBinanceFloat(kline[4]),
			Volume:    parseBinanceFloat(kline[5]),
		})
	}
	if len(klines) == 0 {
		return nil, b.fail("GetKlines", symbol, fmt.Errorf("no candles returned"))
	}
	return klines, nil
}

// GetFairPrice returns the mark price from premiumIndex
func (b *BinanceFuturesProvider) GetFairPrice(ctx context.Context, symbol string) (*types.FairPrice, error) {
	idx, err := b.premiumIndex(ctx, symbol)
	if err != nil {
		return nil, b.fail("GetFairPrice", symbol, err)
	}
	price, err := strconv.ParseFloat(idx.MarkPrice, 64)
	if err != nil {
		return nil, b.fail("GetFairPrice", symbol, fmt.Errorf("invalid mark price %q", idx.MarkPrice))
	}
	return &types.FairPrice{
		Symbol:    idx.Symbol,
		Price:     price,
		Timestamp: millisToTime(idx.Time),
	}, nil
}

// GetFundingRate returns the last funding rate from premiumIndex
func (b *BinanceFuturesProvider) GetFundingRate(ctx context.Context, symbol string) (*types.FundingRate, error) {
	idx, err := b.premiumIndex(ctx, symbol)
	if err != nil {
		return nil, b.fail("GetFundingRate", symbol, err)
	}
	rate, err := strconv.ParseFloat(idx.LastFundingRate, 64)
	if err != nil {
		return nil, b.fail("GetFundingRate", symbol, fmt.Errorf("invalid funding rate %q", idx.LastFundingRate))
	}
	return &types.FundingRate{
		Symbol:     idx.Symbol,
		Rate:       rate,
		NextSettle: millisToTime(idx.NextFundingTime),
		Timestamp:  millisToTime(idx.Time),
	}, nil
}

func (b *BinanceFuturesProvider) GetOpenInterest(ctx context.Context, symbol string) (*types.OpenInterest, error) {
	params := url.Values{}
	params.Set("symbol", futuresSymbol(symbol))

	var oi struct {
		Symbol       string `json:"symbol"`
		OpenInterest string `json:"openInterest"`
		Time         int64  `json:"time"`
	}
	if err := getJSON(ctx, b.client, b.baseURL+"/fapi/v1/openInterest?"+params.Encode(), &oi); err != nil {
		return nil, b.fail("GetOpenInterest", symbol, fmt.Errorf("failed to get open interest: %w", err))
	}
	value, err := strconv.ParseFloat(oi.OpenInterest, 64)
	if err != nil {
		return nil, b.fail("GetOpenInterest", symbol, fmt.Errorf("invalid open interest %q", oi.OpenInterest))
	}
	return &types.OpenInterest{
		Symbol:    oi.Symbol,
		Value:     value,
		Timestamp: millisToTime(oi.Time),
	}, nil
}

func (b *BinanceFuturesProvider) premiumIndex(ctx context.Context, symbol string) (*binancePremiumIndex, error) {
	params := url.Values{}
	params.Set("symbol", futuresSymbol(symbol))

	var idx binancePremiumIndex
	if err := getJSON(ctx, b.client, b.baseURL+"/fapi/v1/premiumIndex?"+params.Encode(), &idx); err != nil {
		return nil, fmt.Errorf("failed to get premium index: %w", err)
	}
	return &idx, nil
}

func (b *BinanceFuturesProvider) fail(operation, symbol string, err error) error {
	return apperrors.NewProviderError("binance", operation, err).WithContext("symbol", symbol)
}

// parseBinanceFloat reads a kline field that Binance encodes as a decimal string
func parseBinanceFloat(v interface{}) float64 {
	switch val := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case float64:
		return val
	case json.Number:
		f, _ := val.Float64()
		return f
	}
	return 0
}
