package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents the kind of failure a component reports
type ErrorCategory string

const (
	// Recovered locally and turned into an Unavailable signal / cannot-backtest result
	ErrorCategoryInsufficientData     ErrorCategory = "INSUFFICIENT_DATA"
	ErrorCategoryDegenerateArithmetic ErrorCategory = "DEGENERATE_ARITHMETIC"

	// Market data provider failures ("no data")
	ErrorCategoryProvider ErrorCategory = "PROVIDER"
	ErrorCategoryNetwork  ErrorCategory = "NETWORK"
	ErrorCategoryTimeout  ErrorCategory = "TIMEOUT"

	// Bad input
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
)

// BotError represents a categorized error with context
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried
func (e *BotError) IsRetryable() bool {
	return e.Retryable
}

// NewBotError creates a new categorized error
func NewBotError(category ErrorCategory, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with category context
func WrapError(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *BotError) WithContext(key string, value interface{}) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *BotError) WithRetryable(retryable bool) *BotError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryProvider:
		return true
	default:
		return false
	}
}

// CategoryOf returns the category of the first BotError in the chain, or "" if none.
func CategoryOf(err error) ErrorCategory {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Category
	}
	return ""
}

// IsInsufficientData reports whether err was caused by a too short candle series.
func IsInsufficientData(err error) bool {
	return CategoryOf(err) == ErrorCategoryInsufficientData
}

// IsProviderFailure reports whether err originates from a market data provider,
// including network and timeout failures.
func IsProviderFailure(err error) bool {
	switch CategoryOf(err) {
	case ErrorCategoryProvider, ErrorCategoryNetwork, ErrorCategoryTimeout:
		return true
	}
	return false
}

// CategorizeError attempts to categorize a generic provider error
func CategorizeError(err error, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	return WrapError(err, ErrorCategoryProvider, component, operation)
}

// Common error constructors
func NewInsufficientDataError(component, operation string, have, need int) *BotError {
	return NewBotError(ErrorCategoryInsufficientData, component, operation,
		fmt.Sprintf("insufficient data: have %d candles, need %d", have, need)).
		WithContext("have", have).
		WithContext("need", need)
}

func NewProviderError(component, operation string, err error) *BotError {
	return CategorizeError(err, component, operation)
}

func NewValidationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryConfiguration, component, operation, message)
}
