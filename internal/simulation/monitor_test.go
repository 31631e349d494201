package simulation

import (
	"testing"
	"time"
)

func TestTickMonitorAggregatesSamples(t *testing.T) {
	monitor := NewTickMonitor()
	budget := 16 * time.Millisecond
	monitor.Observe(10*time.Millisecond, budget)
	monitor.Observe(20*time.Millisecond, budget)
	monitor.Observe(6*time.Millisecond, budget)

	stats := monitor.Snapshot()
	if stats.Samples != 3 {
		t.Fatalf("expected 3 samples, got %d", stats.Samples)
	}
	if stats.Average != 12*time.Millisecond {
		t.Fatalf("unexpected average %v", stats.Average)
	}
	if stats.Max != 20*time.Millisecond {
		t.Fatalf("unexpected max %v", stats.Max)
	}
	if stats.Last != 6*time.Millisecond {
		t.Fatalf("unexpected last %v", stats.Last)
	}
	//1.- Only the 20ms tick blew the 16ms budget.
	if stats.Overruns != 1 {
		t.Fatalf("expected 1 overrun, got %d", stats.Overruns)
	}
}

func TestTickMonitorIgnoresInvalidSamples(t *testing.T) {
	monitor := NewTickMonitor()
	monitor.Observe(0, time.Millisecond)
	monitor.Observe(-time.Millisecond, time.Millisecond)
	if stats := monitor.Snapshot(); stats.Samples != 0 {
		t.Fatalf("expected no samples, got %d", stats.Samples)
	}
}

func TestTickMonitorNilReceiver(t *testing.T) {
	var monitor *TickMonitor
	//1.- A nil monitor must be a silent no-op for every method.
	monitor.Observe(time.Millisecond, time.Millisecond)
	monitor.Reset()
	if stats := monitor.Snapshot(); stats.Samples != 0 {
		t.Fatalf("expected zero stats from nil monitor")
	}
}

func TestTickMonitorReset(t *testing.T) {
	monitor := NewTickMonitor()
	monitor.Observe(10*time.Millisecond, time.Millisecond)
	monitor.Reset()
	if stats := monitor.Snapshot(); stats.Samples != 0 || stats.Max != 0 || stats.Overruns != 0 {
		t.Fatalf("expected cleared stats, got %+v", stats)
	}
}

func TestTickStatsAverageHz(t *testing.T) {
	stats := TickStats{Average: 20 * time.Millisecond}
	if hz := stats.AverageHz(); hz != 50 {
		t.Fatalf("expected 50Hz, got %v", hz)
	}
	if hz := (TickStats{}).AverageHz(); hz != 0 {
		t.Fatalf("expected zero rate for empty stats, got %v", hz)
	}
}
