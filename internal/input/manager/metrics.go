package manager

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const latencySamples = 1000

// Metrics tracks event processing for a Manager.
// Counters may be read from any goroutine.
type Metrics struct {
	positionEvents atomic.Uint64
	keyEvents      atomic.Uint64
	stateEvents    atomic.Uint64
	droppedEvents  atomic.Uint64
	updates        atomic.Uint64
	polls          atomic.Uint64

	mu         sync.RWMutex
	latencies  []time.Duration
	latencyIdx int
	peak       atomic.Int64

	startTime time.Time
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, latencySamples),
		startTime: time.Now(),
	}
}

func (m *Metrics) recordUpdate(latency time.Duration, polled bool) {
	m.updates.Add(1)
	if polled {
		m.polls.Add(1)
	}

	ns := latency.Nanoseconds()
	for {
		current := m.peak.Load()
		if ns <= current || m.peak.CompareAndSwap(current, ns) {
			break
		}
	}

	m.mu.Lock()
	m.latencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % latencySamples
	m.mu.Unlock()
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	PositionEvents uint64
	KeyEvents      uint64
	StateEvents    uint64
	DroppedEvents  uint64
	Updates        uint64
	Polls          uint64

	AvgUpdateLatency  time.Duration
	P99UpdateLatency  time.Duration
	PeakUpdateLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	latencies := slices.Clone(m.latencies)
	start := m.startTime
	m.mu.RUnlock()

	snap := MetricsSnapshot{
		PositionEvents:    m.positionEvents.Load(),
		KeyEvents:         m.keyEvents.Load(),
		StateEvents:       m.stateEvents.Load(),
		DroppedEvents:     m.droppedEvents.Load(),
		Updates:           m.updates.Load(),
		Polls:             m.polls.Load(),
		PeakUpdateLatency: time.Duration(m.peak.Load()),
		Uptime:            time.Since(start),
	}
	snap.AvgUpdateLatency, snap.P99UpdateLatency = latencyStats(latencies)
	return snap
}

// latencyStats computes the average and p99 of the non-zero samples.
func latencyStats(samples []time.Duration) (avg, p99 time.Duration) {
	valid := slices.DeleteFunc(samples, func(d time.Duration) bool { return d <= 0 })
	if len(valid) == 0 {
		return 0, 0
	}

	var sum time.Duration
	for _, d := range valid {
		sum += d
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	idx := min(int(float64(len(valid))*0.99), len(valid)-1)
	return avg, valid[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.positionEvents.Store(0)
	m.keyEvents.Store(0)
	m.stateEvents.Store(0)
	m.droppedEvents.Store(0)
	m.updates.Store(0)
	m.polls.Store(0)
	m.peak.Store(0)

	m.mu.Lock()
	clear(m.latencies)
	m.latencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}
