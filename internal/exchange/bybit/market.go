package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
	Interval1M  KlineInterval = "M"
)

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Limit    int           // Number of records to return (max 1000, default 200)
}

// FuturesMarketData contains futures-specific market information
type FuturesMarketData struct {
	Symbol          string
	MarkPrice       float64
	IndexPrice      float64
	LastPrice       float64
	FundingRate     float64
	NextFundingTime time.Time
	OpenInterest    float64
	Volume24h       float64
	Price24hPcnt    float64
}

// GetKlines fetches kline/candlestick data from Bybit, oldest first
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Category == "" {
		params.Category = "linear"
	}
	if params.Limit == 0 {
		params.Limit = 200
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}

	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}

	var result interface{}
	err := c.Retry(ctx, func() error {
		var err error
		result, err = c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}

	klines, err := parseKlineResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kline response: %w", err)
	}
	return klines, nil
}

// GetFuturesMarketData gets mark price, funding and open interest of a linear contract
func (c *Client) GetFuturesMarketData(ctx context.Context, category, symbol string) (*FuturesMarketData, error) {
	if category == "" {
		category = "linear"
	}

	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	var result interface{}
	err := c.Retry(ctx, func() error {
		var err error
		result, err = c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get futures market data: %w", err)
	}

	marketData, err := parseFuturesMarketDataResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse futures market data response: %w", err)
	}
	return marketData, nil
}

// decodeResult checks the API return code and re-decodes the generic result
// object into out.
func decodeResult(response interface{}, out interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return fmt.Errorf("invalid response type %T", response)
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(resultBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// parseKlineResponse parses the API response into Kline structs sorted by start time
func parseKlineResponse(response interface{}) ([]Kline, error) {
	var result klineResult
	if err := decodeResult(response, &result); err != nil {
		return nil, err
	}

	klines := make([]Kline, 0, len(result.List))
	for _, item := range result.List {
		if len(item) < 7 {
			continue
		}

		klines = append(klines, Kline{
			StartTime:  time.UnixMilli(parseInt64(item[0])),
			OpenPrice:  parseFloat64(item[1]),
			HighPrice:  parseFloat64(item[2]),
			LowPrice:   parseFloat64(item[3]),
			ClosePrice: parseFloat64(item[4]),
			Volume:     parseFloat64(item[5]),
			Turnover:   parseFloat64(item[6]),
		})
	}

	sort.Slice(klines, func(i, j int) bool {
		return klines[i].StartTime.Before(klines[j].StartTime)
	})
	return klines, nil
}

func parseFuturesMarketDataResponse(response interface{}) (*FuturesMarketData, error) {
	var result tickerResult
	if err := decodeResult(response, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, fmt.Errorf("no futures market data found")
	}

	ticker := result.List[0]
	return &FuturesMarketData{
		Symbol:          ticker.Symbol,
		LastPrice:       parseFloat64(ticker.LastPrice),
		MarkPrice:       parseFloat64(ticker.MarkPrice),
		IndexPrice:      parseFloat64(ticker.IndexPrice),
		FundingRate:     parseFloat64(ticker.FundingRate),
		NextFundingTime: parseTimestamp(ticker.NextFundingTime),
		OpenInterest:    parseFloat64(ticker.OpenInterest),
		Volume24h:       parseFloat64(ticker.Volume24h),
		Price24hPcnt:    parseFloat64(ticker.Price24hPcnt),
	}, nil
}
