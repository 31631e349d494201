package input

import (
	"sync"
	"time"
)

// Source supplies the latest control snapshot for a vehicle. The boolean is
// false only when no input has ever been received for the identifier, which
// keeps freshly spawned vehicles idle until a driver attaches.
type Source interface {
	Poll(vehicleID string) (Controls, bool)
}

// Clock exposes the current time so freshness decisions stay testable.
type Clock func() time.Time

// Store retains the most recent controls per vehicle. Entries older than the
// freshness window decay to neutral so a silent client cannot pin a stale
// throttle on its vehicle.
type Store struct {
	mu       sync.RWMutex
	now      Clock
	maxAge   time.Duration
	controls map[string]storedControls
}

type storedControls struct {
	controls  Controls
	updatedAt time.Time
}

// NewStore builds a store with the provided freshness window. A zero maxAge
// disables decay entirely.
func NewStore(maxAge time.Duration, now Clock) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now, maxAge: maxAge, controls: make(map[string]storedControls)}
}

// Set records the latest controls for the vehicle, clamped to legal ranges.
func (s *Store) Set(vehicleID string, controls Controls) {
	if s == nil || vehicleID == "" {
		return
	}
	s.mu.Lock()
	//1.- Replace the previous snapshot wholesale; controls have no identity.
	s.controls[vehicleID] = storedControls{controls: controls.Clamped(), updatedAt: s.now()}
	s.mu.Unlock()
}

// Forget drops the stored entry, typically on vehicle despawn.
func (s *Store) Forget(vehicleID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.controls, vehicleID)
	s.mu.Unlock()
}

// Poll returns the freshest controls for the vehicle. Stale entries yield
// neutral controls while keeping the vehicle active.
func (s *Store) Poll(vehicleID string) (Controls, bool) {
	if s == nil {
		return Controls{}, false
	}
	s.mu.RLock()
	entry, ok := s.controls[vehicleID]
	s.mu.RUnlock()
	if !ok {
		return Controls{}, false
	}
	//1.- Decay to neutral once the freshness window has elapsed.
	if s.maxAge > 0 && s.now().Sub(entry.updatedAt) > s.maxAge {
		return Controls{}, true
	}
	return entry.controls, true
}

// StaticSource always returns the same controls, which is convenient for
// tests and straight-line scenarios.
type StaticSource Controls

// Poll returns the wrapped controls for every vehicle.
func (s StaticSource) Poll(string) (Controls, bool) {
	return Controls(s).Clamped(), true
}
