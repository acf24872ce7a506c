package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker reports whether the scanner still receives market data
type HealthChecker struct {
	mu          sync.RWMutex
	started     time.Time
	staleAfter  time.Duration
	lastFetch   time.Time
	lastSignal  time.Time
	lastError   string
	failStreak  int
	maxFailures int
	now         func() time.Time
}

// HealthStatus is the JSON body of the health endpoint
type HealthStatus struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	LastFetch  time.Time `json:"last_fetch"`
	LastSignal time.Time `json:"last_signal"`
	Uptime     string    `json:"uptime"`
	LastError  string    `json:"last_error,omitempty"`
}

// NewHealthChecker creates a checker that degrades when no fetch succeeded
// within staleAfter and fails after maxFailures consecutive errors.
func NewHealthChecker(staleAfter time.Duration, maxFailures int) *HealthChecker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &HealthChecker{
		started:     time.Now(),
		staleAfter:  staleAfter,
		maxFailures: maxFailures,
		now:         time.Now,
	}
}

// RecordFetch marks a successful provider round trip
func (h *HealthChecker) RecordFetch() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastFetch = h.now()
	h.failStreak = 0
	h.lastError = ""
}

// RecordSignal marks a computed signal
func (h *HealthChecker) RecordSignal() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSignal = h.now()
}

// RecordError marks a failed provider round trip
func (h *HealthChecker) RecordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failStreak++
	if err != nil {
		h.lastError = err.Error()
	}
}

// Status computes the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	status := "healthy"
	if h.lastFetch.IsZero() || (h.staleAfter > 0 && now.Sub(h.lastFetch) > h.staleAfter) {
		status = "degraded"
	}
	if h.failStreak >= h.maxFailures {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  now,
		LastFetch:  h.lastFetch,
		LastSignal: h.lastSignal,
		Uptime:     now.Sub(h.started).Round(time.Second).String(),
		LastError:  h.lastError,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	switch health.Status {
	case "degraded":
		w.WriteHeader(http.StatusServiceUnavailable)
	case "unhealthy":
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(health)
}
