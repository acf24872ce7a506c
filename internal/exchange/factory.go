package exchange

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange/bybit"
)

// ProviderConfig holds configuration for creating market data providers
type ProviderConfig struct {
	Name    string        `yaml:"provider"`           // mexc, binance or bybit
	BaseURL string        `yaml:"base_url,omitempty"` // overrides the exchange host
	Timeout time.Duration `yaml:"timeout"`
	Bybit   BybitConfig   `yaml:"bybit,omitempty"`
	Guard   GuardConfig   `yaml:"guard,omitempty"`
}

// BybitConfig holds Bybit-specific configuration. Keys are optional.
type BybitConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// SupportedProviders returns the provider names NewProvider accepts
func SupportedProviders() []string {
	return []string{"mexc", "binance", "bybit"}
}

// NewProvider creates a provider based on the provided configuration. The
// provider is rate limited and guarded by a circuit breaker.
func NewProvider(config ProviderConfig) (DerivativesDataProvider, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var provider DerivativesDataProvider
	switch strings.ToLower(strings.TrimSpace(config.Name)) {
	case "", "mexc":
		provider = NewMEXCProvider(config.BaseURL, timeout)
	case "binance":
		provider = NewBinanceFuturesProvider(config.BaseURL, timeout)
	case "bybit":
		provider = NewBybitProvider(bybit.Config{
			APIKey:    config.Bybit.APIKey,
			APISecret: config.Bybit.APISecret,
			Testnet:   config.Bybit.Testnet,
			BaseURL:   config.BaseURL,
		})
	default:
		return nil, apperrors.NewConfigurationError("exchange", "NewProvider",
			fmt.Sprintf("provider %q is not supported (supported: %s)",
				config.Name, strings.Join(SupportedProviders(), ", ")))
	}

	if config.Guard.Disabled {
		return provider, nil
	}
	return NewGuardedProvider(provider, config.Guard), nil
}
