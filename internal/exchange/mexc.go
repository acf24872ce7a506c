package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// MEXCBaseURL is the public contract (futures) API
const MEXCBaseURL = "https://contract.mexc.com/api/v1"

// contractsTTL is how long the contract list is reused
const contractsTTL = time.Hour

// MEXCProvider reads public futures market data from MEXC
type MEXCProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time

	mu          sync.Mutex
	contracts   []string
	contractsAt time.Time
}

// NewMEXCProvider creates a MEXC provider; an empty baseURL uses MEXCBaseURL
func NewMEXCProvider(baseURL string, timeout time.Duration) *MEXCProvider {
	if baseURL == "" {
		baseURL = MEXCBaseURL
	}
	return &MEXCProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
		now:     time.Now,
	}
}

// mexcEnvelope is the wrapper of every MEXC contract API response
type mexcEnvelope struct {
	Success *bool           `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// mexcColumnarKlines is the documented kline payload: parallel arrays, time in seconds
type mexcColumnarKlines struct {
	Time  []int64   `json:"time"`
	Open  []float64 `json:"open"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
	Close []float64 `json:"close"`
	Vol   []float64 `json:"vol"`
}

type mexcFundingRecord struct {
	Symbol         string   `json:"symbol"`
	FundingRate    *float64 `json:"fundingRate"`
	NextSettleTime int64    `json:"nextSettleTime"`
	SettleTime     int64    `json:"settleTime"`
	FundingTime    int64    `json:"fundingTime"`
	Timestamp      int64    `json:"timestamp"`
}

// GetName implements MarketDataProvider
func (m *MEXCProvider) GetName() string {
	return "mexc"
}

// GetKlines implements MarketDataProvider
func (m *MEXCProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	native, err := nativeInterval(mexcIntervals, "mexc", interval)
	if err != nil {
		return nil, apperrors.NewValidationError("mexc", "GetKlines", err.Error())
	}

	params := url.Values{}
	params.Set("interval", native)
	if limit > 0 {
		// the contract API is windowed by start/end seconds rather than a count
		step, _ := IntervalDuration(interval)
		start := m.now().Add(-time.Duration(limit+1) * step)
		params.Set("start", fmt.Sprint(start.Unix()))
	}

	endpoint := fmt.Sprintf("%s/contract/kline/%s?%s", m.baseURL, url.PathEscape(contractSymbol(symbol)), params.Encode())
	data, err := m.get(ctx, endpoint)
	if err != nil {
		return nil, m.fail("GetKlines", symbol, err)
	}

	candles, err := parseMEXCKlines(data)
	if err != nil {
		return nil, m.fail("GetKlines", symbol, err)
	}
	if len(candles) == 0 {
		return nil, m.fail("GetKlines", symbol, fmt.Errorf("no candles returned"))
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// GetFairPrice implements DerivativesDataProvider
func (m *MEXCProvider) GetFairPrice(ctx context.Context, symbol string) (*types.FairPrice, error) {
	data, err := m.get(ctx, fmt.Sprintf("%s/contract/fair_price/%s", m.baseURL, url.PathEscape(contractSymbol(symbol))))
	if err != nil {
		return nil, m.fail("GetFairPrice", symbol, err)
	}

	var payload struct {
		Symbol    string   `json:"symbol"`
		FairPrice *float64 `json:"fairPrice"`
		Timestamp int64    `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, m.fail("GetFairPrice", symbol, fmt.Errorf("failed to decode fair price: %w", err))
	}
	if payload.FairPrice == nil {
		return nil, m.fail("GetFairPrice", symbol, fmt.Errorf("fair price missing from response"))
	}

	return &types.FairPrice{
		Symbol:    contractSymbol(symbol),
		Price:     *payload.FairPrice,
		Timestamp: millisToTime(payload.Timestamp),
	}, nil
}

// GetFundingRate implements DerivativesDataProvider. The endpoint answers
// with either a single record or a list; the last record of a list is used.
func (m *MEXCProvider) GetFundingRate(ctx context.Context, symbol string) (*types.FundingRate, error) {
	data, err := m.get(ctx, fmt.Sprintf("%s/contract/funding_rate/%s", m.baseURL, url.PathEscape(contractSymbol(symbol))))
	if err != nil {
		return nil, m.fail("GetFundingRate", symbol, err)
	}

	var rec mexcFundingRecord
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		var list []mexcFundingRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, m.fail("GetFundingRate", symbol, fmt.Errorf("failed to decode funding list: %w", err))
		}
		if len(list) == 0 {
			return nil, m.fail("GetFundingRate", symbol, fmt.Errorf("empty funding list"))
		}
		rec = list[len(list)-1]
	default:
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, m.fail("GetFundingRate", symbol, fmt.Errorf("failed to decode funding record: %w", err))
		}
	}
	if rec.FundingRate == nil {
		return nil, m.fail("GetFundingRate", symbol, fmt.Errorf("funding rate missing from response"))
	}

	settle := rec.NextSettleTime
	for _, ts := range []int64{rec.SettleTime, rec.Timestamp, rec.FundingTime} {
		if settle == 0 {
			settle = ts
		}
	}

	return &types.FundingRate{
		Symbol:     contractSymbol(symbol),
		Rate:       *rec.FundingRate,
		NextSettle: millisToTime(settle),
		Timestamp:  millisToTime(rec.Timestamp),
	}, nil
}

// GetOpenInterest implements DerivativesDataProvider using the ticker's holdVol
func (m *MEXCProvider) GetOpenInterest(ctx context.Context, symbol string) (*types.OpenInterest, error) {
	params := url.Values{}
	params.Set("symbol", contractSymbol(symbol))
	data, err := m.get(ctx, fmt.Sprintf("%s/contract/ticker?%s", m.baseURL, params.Encode()))
	if err != nil {
		return nil, m.fail("GetOpenInterest", symbol, err)
	}

	var ticker struct {
		Symbol    string   `json:"symbol"`
		HoldVol   *float64 `json:"holdVol"`
		Timestamp int64    `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &ticker); err != nil {
		return nil, m.fail("GetOpenInterest", symbol, fmt.Errorf("failed to decode ticker: %w", err))
	}
	if ticker.HoldVol == nil {
		return nil, m.fail("GetOpenInterest", symbol, fmt.Errorf("holdVol missing from ticker"))
	}

	return &types.OpenInterest{
		Symbol:    contractSymbol(symbol),
		Value:     *ticker.HoldVol,
		Timestamp: millisToTime(ticker.Timestamp),
	}, nil
}

// Contracts lists the tradable contract symbols. The list is cached for an hour.
func (m *MEXCProvider) Contracts(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	if m.contracts != nil && m.now().Sub(m.contractsAt) < contractsTTL {
		cached := m.contracts
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	data, err := m.get(ctx, m.baseURL+"/contract/detail")
	if err != nil {
		return nil, m.fail("Contracts", "", err)
	}

	var details []struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, m.fail("Contracts", "", fmt.Errorf("failed to decode contract list: %w", err))
	}

	symbols := make([]string, 0, len(details))
	for _, d := range details {
		if d.Symbol != "" {
			symbols = append(symbols, d.Symbol)
		}
	}

	m.mu.Lock()
	m.contracts = symbols
	m.contractsAt = m.now()
	m.mu.Unlock()
	return symbols, nil
}

// HasContract reports whether symbol is in the contract list. An unreachable
// list is not treated as a missing contract.
func (m *MEXCProvider) HasContract(ctx context.Context, symbol string) (bool, error) {
	contracts, err := m.Contracts(ctx)
	if err != nil {
		return true, err
	}
	want := contractSymbol(symbol)
	for _, c := range contracts {
		if c == want {
			return true, nil
		}
	}
	return false, nil
}

func (m *MEXCProvider) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	var env mexcEnvelope
	if err := getJSON(ctx, m.client, endpoint, &env); err != nil {
		return nil, err
	}
	if (env.Success != nil && !*env.Success) || env.Code != 0 {
		return nil, fmt.Errorf("MEXC API error %d: %s", env.Code, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("response has no data")
	}
	return env.Data, nil
}

func (m *MEXCProvider) fail(operation, symbol string, err error) error {
	botErr := apperrors.NewProviderError("mexc", operation, err)
	if symbol != "" {
		botErr.WithContext("symbol", symbol)
	}
	return botErr
}

// parseMEXCKlines accepts the columnar payload, a list of
// [ts, open, high, low, close, volume] rows, or either one nested under "data".
func parseMEXCKlines(data json.RawMessage) ([]types.OHLCV, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty kline payload")
	}

	if trimmed[0] == '[' {
		var rows [][]float64
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode kline rows: %w", err)
		}
		candles := make([]types.OHLCV, 0, len(rows))
		for _, row := range rows {
			if len(row) < 6 {
				continue
			}
			candles = append(candles, types.OHLCV{
				Timestamp: millisToTime(int64(row[0])),
				Open:      row[1],
				High:      row[2],
				Low:       row[3],
				Close:     row[4],
				Volume:    row[5],
			})
		}
		return candles, nil
	}

	var nested struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &nested); err == nil && len(nested.Data) > 0 {
		return parseMEXCKlines(nested.Data)
	}

	var cols mexcColumnarKlines
	if err := json.Unmarshal(trimmed, &cols); err != nil {
		return nil, fmt.Errorf("failed to decode kline columns: %w", err)
	}
	n := len(cols.Time)
	if len(cols.Open) != n || len(cols.High) != n || len(cols.Low) != n || len(cols.Close) != n {
		return nil, fmt.Errorf("kline columns have mismatched lengths")
	}

	candles := make([]types.OHLCV, n)
	for i := 0; i < n; i++ {
		var vol float64
		if i < len(cols.Vol) {
			vol = cols.Vol[i]
		}
		candles[i] = types.OHLCV{
			Timestamp: millisToTime(cols.Time[i]),
			Open:      cols.Open[i],
			High:      cols.High[i],
			Low:       cols.Low[i],
			Close:     cols.Close[i],
			Volume:    vol,
		}
	}
	return candles, nil
}
