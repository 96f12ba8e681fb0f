package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksReplayed atomic.Uint64
	ordersFilled  atomic.Uint64
	errorsTotal   atomic.Uint64

	// Tick-handling latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// RecordTick records one replayed tick with its handling latency.
func (m *Metrics) RecordTick(latencyNs int64) {
	m.ticksReplayed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordFill records a filled order.
func (m *Metrics) RecordFill() {
	m.ordersFilled.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksReplayed uint64
	OrdersFilled  uint64
	ErrorsTotal   uint64
	AvgLatencyNs  int64
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksReplayed: m.ticksReplayed.Load(),
		OrdersFilled:  m.ordersFilled.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		AvgLatencyNs:  avgLatency,
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksReplayed.Store(0)
	m.ordersFilled.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
