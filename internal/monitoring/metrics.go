package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Signal metrics
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_signals_total",
			Help: "Total number of signals computed",
		},
		[]string{"symbol", "rule", "direction"},
	)

	signalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_engine_compute_duration_seconds",
			Help:    "Time spent fetching candles and computing one signal",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"rule"},
	)

	// Market data metrics
	lastClose = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_last_close",
			Help: "Close of the latest candle seen per symbol",
		},
		[]string{"symbol"},
	)

	providerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_provider_failures_total",
			Help: "Total number of market data provider failures",
		},
		[]string{"provider", "category"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 open, 2 half-open)",
		},
		[]string{"provider"},
	)

	// Backtest metrics
	backtestAccuracy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_backtest_accuracy_percent",
			Help: "Accuracy of the latest backtest per symbol and rule",
		},
		[]string{"symbol", "rule"},
	)

	backtestTrades = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_backtest_trades",
			Help: "Number of scored trades in the latest backtest",
		},
		[]string{"symbol", "rule"},
	)
)

func init() {
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(signalDuration)
	prometheus.MustRegister(lastClose)
	prometheus.MustRegister(providerFailures)
	prometheus.MustRegister(breakerState)
	prometheus.MustRegister(backtestAccuracy)
	prometheus.MustRegister(backtestTrades)
}

// Handler serves the Prometheus metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSignal records a computed signal
func RecordSignal(symbol, rule, direction string, elapsed time.Duration) {
	signalsTotal.WithLabelValues(symbol, rule, direction).Inc()
	signalDuration.WithLabelValues(rule).Observe(elapsed.Seconds())
}

// UpdateLastClose updates the latest close metric
func UpdateLastClose(symbol string, price float64) {
	lastClose.WithLabelValues(symbol).Set(price)
}

// RecordProviderFailure records a market data failure
func RecordProviderFailure(provider, category string) {
	providerFailures.WithLabelValues(provider, category).Inc()
}

// SetBreakerState publishes the circuit breaker state of a provider
func SetBreakerState(provider string, state int) {
	breakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordBacktest publishes the outcome of a backtest run
func RecordBacktest(symbol, rule string, trades int, accuracy float64) {
	backtestAccuracy.WithLabelValues(symbol, rule).Set(accuracy)
	backtestTrades.WithLabelValues(symbol, rule).Set(float64(trades))
}
