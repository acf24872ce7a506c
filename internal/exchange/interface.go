package exchange

import (
	"context"

	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// MarketDataProvider supplies candle history. Every failure is returned as a
// PROVIDER/NETWORK/TIMEOUT categorized error so callers can tell "no data"
// apart from a series that is merely too short.
type MarketDataProvider interface {
	GetName() string

	// GetKlines returns up to limit candles, oldest first. interval uses the
	// canonical form (1m, 5m, 15m, 30m, 1h, 4h, 8h, 1d, 1w, 1M).
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)
}

// DerivativesDataProvider adds the perpetual futures context shown next to a signal
type DerivativesDataProvider interface {
	MarketDataProvider

	GetFairPrice(ctx context.Context, symbol string) (*types.FairPrice, error)
	GetFundingRate(ctx context.Context, symbol string) (*types.FundingRate, error)
	GetOpenInterest(ctx context.Context, symbol string) (*types.OpenInterest, error)
}

// ContractLister is implemented by providers that publish their contract list
type ContractLister interface {
	HasContract(ctx context.Context, symbol string) (bool, error)
}

// Unlisted returns the symbols missing from the provider's contract list.
// Providers without a list, and a list that cannot be fetched, report none.
func Unlisted(ctx context.Context, provider MarketDataProvider, symbols []string) []string {
	lister, ok := provider.(ContractLister)
	if !ok {
		return nil
	}
	var missing []string
	for _, s := range symbols {
		if listed, err := lister.HasContract(ctx, s); err == nil && !listed {
			missing = append(missing, s)
		}
	}
	return missing
}
