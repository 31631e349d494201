// Package simulation drives the fixed-timestep tick loop and measures its
// timing so real-time pacing never leaks into the dynamics core.
package simulation

import (
	"context"
	"time"
)

// StepFunc advances the simulation by exactly one fixed timestep.
type StepFunc func()

// Loop runs a fixed-timestep simulation paced against real time. Variable
// frame time is absorbed by an accumulator: the step function is always
// invoked a whole number of times per wakeup with the same timestep, which
// preserves determinism.
type Loop struct {
	step     time.Duration
	stepFunc StepFunc
	monitor  *TickMonitor
	ticker   *time.Ticker
	done     chan struct{}

	// maxCatchUp bounds how many steps one wakeup may run so a long stall
	// cannot spiral the loop.
	maxCatchUp int
}

// NewLoop configures a loop for the given timestep. A nil monitor disables
// timing capture.
func NewLoop(step time.Duration, stepFunc StepFunc, monitor *TickMonitor) *Loop {
	if step <= 0 {
		step = time.Second / 60
	}
	if stepFunc == nil {
		stepFunc = func() {}
	}
	return &Loop{
		step:       step,
		stepFunc:   stepFunc,
		monitor:    monitor,
		maxCatchUp: 5,
	}
}

// Start begins ticking until the context is cancelled or Stop is invoked.
func (l *Loop) Start(ctx context.Context) {
	if l == nil || l.stepFunc == nil {
		return
	}
	l.ticker = time.NewTicker(l.step)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		defer l.ticker.Stop()
		last := time.Now()
		accumulator := time.Duration(0)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-l.ticker.C:
				//1.- Accumulate elapsed real time and run fixed steps while catching up.
				accumulator += now.Sub(last)
				last = now
				steps := 0
				for accumulator >= l.step && steps < l.maxCatchUp {
					started := time.Now()
					l.stepFunc()
					l.monitor.Observe(time.Since(started), l.step)
					accumulator -= l.step
					steps++
				}
				//2.- Drop the backlog once the catch-up budget is spent; the
				// simulation slows down rather than stalling the process.
				if accumulator >= l.step {
					accumulator = 0
				}
			}
		}
	}()
}

// Stop waits for the loop goroutine to exit after its context is cancelled.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		<-l.done
		l.done = nil
	}
}

// StepDuration exposes the configured timestep.
func (l *Loop) StepDuration() time.Duration {
	if l == nil {
		return 0
	}
	return l.step
}
