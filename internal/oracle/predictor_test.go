package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	v, err := Static(101.5).Predict(context.Background(), "BTC_USDT", nil)
	require.NoError(t, err)
	assert.Equal(t, 101.5, v)
}

func TestHTTPPredictor_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BTC_USDT", req.Symbol)
		assert.Equal(t, []float64{1, 2, 3}, req.History)

		_, _ = w.Write([]byte(`{"prediction": 3.5}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second)
	v, err := p.Predict(context.Background(), "BTC_USDT", []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestHTTPPredictor_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`not json`)) }},
		{"missing field", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) }},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"prediction": 1}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewHTTPPredictor(srv.URL, 50*time.Millisecond)
			_, err := p.Predict(context.Background(), "ETH_USDT", []float64{1})
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestHTTPPredictor_EmptyHistory(t *testing.T) {
	_, err := NewHTTPPredictor("http://127.0.0.1:1", 0).Predict(context.Background(), "X", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
