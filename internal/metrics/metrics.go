package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
)

const maxLatencySamples = 10_000

// Metrics collects in-memory gateway statistics.
type Metrics struct {
	total          int64
	admitted       int64
	deniedDaily    int64
	deniedMonthly  int64
	upstreamErrors int64

	mu        sync.Mutex
	latencies []int64 // end-to-end ms, successfully rendered requests only
}

// Snapshot is the computed statistics snapshot returned by /metrics.
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	Admitted       int64   `json:"admitted"`
	DeniedDaily    int64   `json:"denied_daily"`
	DeniedMonthly  int64   `json:"denied_monthly"`
	UpstreamErrors int64   `json:"upstream_errors"`
	AdmitRate      float64 `json:"admit_rate"` // percentage 0–100
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	P95LatencyMs   int64   `json:"p95_latency_ms"`
}

func New() *Metrics {
	return &Metrics{latencies: make([]int64, 0, 1024)}
}

// ObserveRequest counts one request that reached the admission check.
func (m *Metrics) ObserveRequest() {
	atomic.AddInt64(&m.total, 1)
}

func (m *Metrics) ObserveAdmit() {
	atomic.AddInt64(&m.admitted, 1)
}

// ObserveDenial counts one quota denial; window is "daily" or "monthly".
func (m *Metrics) ObserveDenial(window string) {
	if window == "daily" {
		atomic.AddInt64(&m.deniedDaily, 1)
		return
	}
	atomic.AddInt64(&m.deniedMonthly, 1)
}

func (m *Metrics) ObserveUpstreamError() {
	atomic.AddInt64(&m.upstreamErrors, 1)
}

// ObserveRender records the end-to-end latency of one successful render.
// Failed renders are excluded: their latency reflects the upstream's failure
// mode, not its service time.
func (m *Metrics) ObserveRender(latencyMs int64) {
	m.mu.Lock()
	if len(m.latencies) < maxLatencySamples {
		m.latencies = append(m.latencies, latencyMs)
	} else {
		// Rolling window: drop oldest sample.
		copy(m.latencies, m.latencies[1:])
		m.latencies[maxLatencySamples-1] = latencyMs
	}
	m.mu.Unlock()
}

// Snapshot computes and returns the current statistics snapshot.
func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.total)
	admitted := atomic.LoadInt64(&m.admitted)

	var admitRate float64
	if total > 0 {
		admitRate = float64(admitted) / float64(total) * 100
	}

	m.mu.Lock()
	lats := make([]int64, len(m.latencies))
	copy(lats, m.latencies)
	m.mu.Unlock()

	var avgMs float64
	var p95Ms int64
	if len(lats) > 0 {
		sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })
		var sum int64
		for _, v := range lats {
			sum += v
		}
		avgMs = float64(sum) / float64(len(lats))
		idx := int(math.Ceil(float64(len(lats))*0.95)) - 1
		if idx < 0 {
			idx = 0
		}
		p95Ms = lats[idx]
	}

	return Snapshot{
		TotalRequests:  total,
		Admitted:       admitted,
		DeniedDaily:    atomic.LoadInt64(&m.deniedDaily),
		DeniedMonthly:  atomic.LoadInt64(&m.deniedMonthly),
		UpstreamErrors: atomic.LoadInt64(&m.upstreamErrors),
		AdmitRate:      math.Round(admitRate*10) / 10,
		AvgLatencyMs:   math.Round(avgMs),
		P95LatencyMs:   p95Ms,
	}
}

// Handler returns an http.HandlerFunc that serves the snapshot as JSON.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := m.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	}
}
