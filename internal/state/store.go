package state

import "sync"

// Diff groups updated snapshots and removed vehicle identifiers for a tick.
type Diff struct {
	Updated []VehicleSnapshot
	Removed []string
}

// HasChanges reports whether the diff is worth broadcasting.
func (d Diff) HasChanges() bool {
	return len(d.Updated) > 0 || len(d.Removed) > 0
}

// Store maintains the current authoritative vehicle snapshots with dirty
// tracking, so the network collaborator only transmits what changed.
type Store struct {
	mu      sync.RWMutex
	states  map[string]VehicleSnapshot
	dirty   map[string]struct{}
	removed map[string]struct{}
}

// NewStore constructs a thread-safe snapshot container.
func NewStore() *Store {
	return &Store{
		states:  make(map[string]VehicleSnapshot),
		dirty:   make(map[string]struct{}),
		removed: make(map[string]struct{}),
	}
}

// Upsert records or replaces the snapshot and flags it for the next diff.
func (s *Store) Upsert(snapshot VehicleSnapshot) {
	if s == nil || snapshot.VehicleID == "" {
		return
	}
	clone := snapshot.Clone()
	s.mu.Lock()
	//1.- Replace the stored state and mark it dirty for the diff collector.
	s.states[clone.VehicleID] = clone
	delete(s.removed, clone.VehicleID)
	s.dirty[clone.VehicleID] = struct{}{}
	s.mu.Unlock()
}

// Remove deletes the snapshot and marks the identifier for removal in the diff.
func (s *Store) Remove(vehicleID string) {
	if s == nil || vehicleID == "" {
		return
	}
	s.mu.Lock()
	delete(s.states, vehicleID)
	delete(s.dirty, vehicleID)
	s.removed[vehicleID] = struct{}{}
	s.mu.Unlock()
}

// Get returns a defensive clone of the stored snapshot if present.
func (s *Store) Get(vehicleID string) (VehicleSnapshot, bool) {
	if s == nil || vehicleID == "" {
		return VehicleSnapshot{}, false
	}
	s.mu.RLock()
	snapshot, ok := s.states[vehicleID]
	s.mu.RUnlock()
	if !ok {
		return VehicleSnapshot{}, false
	}
	return snapshot.Clone(), true
}

// ConsumeDiff collects and clears the pending updates and removals.
func (s *Store) ConsumeDiff() Diff {
	if s == nil {
		return Diff{}
	}
	s.mu.Lock()
	//1.- Snapshot the dirty and removed identifiers under the lock.
	updated := make([]VehicleSnapshot, 0, len(s.dirty))
	for id := range s.dirty {
		if snapshot, ok := s.states[id]; ok {
			updated = append(updated, snapshot.Clone())
		}
	}
	removed := make([]string, 0, len(s.removed))
	for id := range s.removed {
		removed = append(removed, id)
	}
	//2.- Reset the trackers before releasing the lock.
	s.dirty = make(map[string]struct{})
	s.removed = make(map[string]struct{})
	s.mu.Unlock()
	return Diff{Updated: updated, Removed: removed}
}

// Snapshot returns every stored vehicle as defensive clones.
func (s *Store) Snapshot() []VehicleSnapshot {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	all := make([]VehicleSnapshot, 0, len(s.states))
	for _, snapshot := range s.states {
		all = append(all, snapshot.Clone())
	}
	s.mu.RUnlock()
	return all
}
