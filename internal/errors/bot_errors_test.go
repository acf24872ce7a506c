package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeError(t *testing.T) {
	timeout := CategorizeError(context.DeadlineExceeded, "mexc", "FetchCandles")
	require.NotNil(t, timeout)
	assert.Equal(t, ErrorCategoryTimeout, timeout.Category)
	assert.True(t, timeout.IsRetryable())

	network := CategorizeError(fmt.Errorf("dial tcp: connection refused"), "mexc", "FetchCandles")
	assert.Equal(t, ErrorCategoryNetwork, network.Category)

	other := CategorizeError(fmt.Errorf("API returned status 500"), "mexc", "FetchCandles")
	assert.Equal(t, ErrorCategoryProvider, other.Category)

	assert.Nil(t, CategorizeError(nil, "mexc", "FetchCandles"))
}

func TestCategorizeError_KeepsExistingBotError(t *testing.T) {
	original := NewInsufficientDataError("engine", "ComputeSignal", 3, 50)
	wrapped := fmt.Errorf("outer: %w", original)

	got := CategorizeError(wrapped, "other", "op")
	assert.Same(t, original, got)
}

func TestCategoryHelpers(t *testing.T) {
	insufficient := fmt.Errorf("backtest: %w", NewInsufficientDataError("backtest", "Run", 3, 4))
	assert.True(t, IsInsufficientData(insufficient))
	assert.False(t, IsProviderFailure(insufficient))

	provider := NewProviderError("binance", "FetchCandles", stderrors.New("status 503"))
	assert.True(t, IsProviderFailure(provider))
	assert.False(t, IsInsufficientData(provider))

	assert.Equal(t, ErrorCategory(""), CategoryOf(stderrors.New("plain")))
}

func TestBotError_Format(t *testing.T) {
	err := NewValidationError("config", "Validate", "atr period must be positive")
	assert.Equal(t, "[VALIDATION:config] Validate: atr period must be positive", err.Error())

	wrapped := WrapError(stderrors.New("boom"), ErrorCategoryProvider, "mexc", "FetchCandles")
	assert.Contains(t, wrapped.Error(), "boom")
	assert.ErrorIs(t, wrapped, wrapped.Underlying)
}
