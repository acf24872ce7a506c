// Package oracle talks to an external next-close price predictor.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// ErrUnavailable is returned when no prediction can be produced.
var ErrUnavailable = errors.New("oracle prediction unavailable")

// Predictor returns a predicted next close for a symbol given its close history.
type Predictor interface {
	Predict(ctx context.Context, symbol string, closes []float64) (float64, error)
}

// Static always returns the same prediction. Useful when the value was computed
// elsewhere and only needs to be fed into the oracle-driven rule.
type Static float64

// Predict implements Predictor
func (s Static) Predict(_ context.Context, _ string, _ []float64) (float64, error) {
	return float64(s), nil
}

// HTTPPredictor POSTs the close history to a prediction service.
//
// Request:  {"symbol": "BTC_USDT", "history": [..closes..]}
// Response: {"prediction": 64123.5}
type HTTPPredictor struct {
	url    string
	client *http.Client
}

// NewHTTPPredictor creates a predictor client; timeout defaults to 8s.
func NewHTTPPredictor(url string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPPredictor{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Symbol  string    `json:"symbol"`
	History []float64 `json:"history"`
}

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
}

// Predict implements Predictor. Every failure is reported as ErrUnavailable
// wrapping the cause.
func (p *HTTPPredictor) Predict(ctx context.Context, symbol string, closes []float64) (float64, error) {
	if len(closes) == 0 {
		return 0, fmt.Errorf("%w: empty history", ErrUnavailable)
	}

	body, err := json.Marshal(predictRequest{Symbol: symbol, History: closes})
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: predictor returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Prediction == nil || math.IsNaN(*out.Prediction) || math.IsInf(*out.Prediction, 0) {
		return 0, fmt.Errorf("%w: missing or non-finite prediction", ErrUnavailable)
	}

	return *out.Prediction, nil
}
