package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory request and error counters plus cumulative
// latency per route. Enough for local inspection without an external
// metrics backend.
type Metrics struct {
	mu            sync.Mutex
	requests      map[string]int64
	errorsByCode  map[string]int64
	totalDuration map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		errorsByCode:  make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
	}
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := requestKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.totalDuration[path+"|"+method] += duration
}

// RecordError counts a request that ended in a classified error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorsByCode[key]++
}

func requestKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
