package bybit

import (
	"strconv"
	"time"
)

// klineResult is the "result" object of /v5/market/kline.
// Each list entry is [startTime, open, high, low, close, volume, turnover],
// newest first.
type klineResult struct {
	Symbol   string     `json:"symbol"`
	Category string     `json:"category"`
	List     [][]string `json:"list"`
}

// tickerResult is the "result" object of /v5/market/tickers
type tickerResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol          string `json:"symbol"`
		LastPrice       string `json:"lastPrice"`
		MarkPrice       string `json:"markPrice"`
		IndexPrice      string `json:"indexPrice"`
		FundingRate     string `json:"fundingRate"`
		NextFundingTime string `json:"nextFundingTime"`
		OpenInterest    string `json:"openInterest"`
		Volume24h       string `json:"volume24h"`
		Turnover24h     string `json:"turnover24h"`
		Price24hPcnt    string `json:"price24hPcnt"`
		HighPrice24h    string `json:"highPrice24h"`
		LowPrice24h     string `json:"lowPrice24h"`
	} `json:"list"`
}

func parseFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	i, _ := strconv.ParseInt(s, 10, 64)
	return i
}

// parseTimestamp converts milliseconds timestamp to time.Time
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	return time.UnixMilli(parseInt64(ts))
}
