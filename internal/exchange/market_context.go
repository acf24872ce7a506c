package exchange

import (
	"context"
	"sync"

	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// MarketContext is the derivatives snapshot printed next to a signal.
// A nil field means that part could not be fetched.
type MarketContext struct {
	Symbol       string
	FairPrice    *types.FairPrice
	Change1h     types.PriceChange
	FundingRate  *types.FundingRate
	OpenInterest *types.OpenInterest
	Errors       map[string]error
}

// FetchMarketContext queries every part concurrently. Failures are recorded
// per part and never fail the whole context.
func FetchMarketContext(ctx context.Context, provider DerivativesDataProvider, symbol string) *MarketContext {
	mc := &MarketContext{Symbol: symbol, Errors: make(map[string]error)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(part string, err error) {
		mu.Lock()
		mc.Errors[part] = err
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		fp, err := provider.GetFairPrice(ctx, symbol)
		if err != nil {
			record("fair_price", err)
			return
		}
		mu.Lock()
		mc.FairPrice = fp
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		candles, err := provider.GetKlines(ctx, symbol, "1h", 2)
		if err != nil {
			record("change_1h", err)
			return
		}
		if len(candles) < 2 {
			return
		}
		change := types.NewPriceChange(candles[len(candles)-2].Close, candles[len(candles)-1].Close)
		mu.Lock()
		mc.Change1h = change
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		fr, err := provider.GetFundingRate(ctx, symbol)
		if err != nil {
			record("funding_rate", err)
			return
		}
		mu.Lock()
		mc.FundingRate = fr
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		oi, err := provider.GetOpenInterest(ctx, symbol)
		if err != nil {
			record("open_interest", err)
			return
		}
		mu.Lock()
		mc.OpenInterest = oi
		mu.Unlock()
	}()

	wg.Wait()
	return mc
}
