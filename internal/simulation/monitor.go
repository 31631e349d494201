package simulation

import (
	"sync"
	"time"
)

// TickStats summarises observed simulation tick durations.
type TickStats struct {
	Samples  int
	Average  time.Duration
	Max      time.Duration
	Last     time.Duration
	Overruns int
}

// AverageHz derives the tick-rate equivalent of the sampled duration.
func (s TickStats) AverageHz() float64 {
	if s.Average <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Average)
}

// TickMonitor accumulates timing statistics for the simulation loop. A nil
// monitor is a valid no-op receiver.
type TickMonitor struct {
	mu       sync.Mutex
	samples  int
	total    time.Duration
	max      time.Duration
	last     time.Duration
	overruns int
}

// NewTickMonitor constructs an empty monitor ready to collect samples.
func NewTickMonitor() *TickMonitor {
	return &TickMonitor{}
}

// Observe records the duration of a completed tick against its budget.
func (m *TickMonitor) Observe(duration, budget time.Duration) {
	if m == nil || duration <= 0 {
		return
	}
	m.mu.Lock()
	//1.- Aggregate count and total for average calculations.
	m.samples++
	m.total += duration
	//2.- Track the worst case and the latest sample for dashboards.
	if duration > m.max {
		m.max = duration
	}
	m.last = duration
	//3.- Count ticks that blew their real-time budget.
	if budget > 0 && duration > budget {
		m.overruns++
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the aggregated statistics.
func (m *TickMonitor) Snapshot() TickStats {
	if m == nil {
		return TickStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	average := time.Duration(0)
	if m.samples > 0 {
		average = m.total / time.Duration(m.samples)
	}
	return TickStats{Samples: m.samples, Average: average, Max: m.max, Last: m.last, Overruns: m.overruns}
}

// Reset clears the accumulated statistics.
func (m *TickMonitor) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.samples = 0
	m.total = 0
	m.max = 0
	m.last = 0
	m.overruns = 0
	m.mu.Unlock()
}
