package input

import (
	"sync"
)

// ValidationReason identifies why a control frame was rejected.
type ValidationReason string

const (
	ValidationReasonNone          ValidationReason = ""
	ValidationReasonThrottleRange ValidationReason = "throttle_range"
	ValidationReasonBrakeRange    ValidationReason = "brake_range"
	ValidationReasonSteerRange    ValidationReason = "steer_range"
	ValidationReasonThrottleDelta ValidationReason = "throttle_delta"
	ValidationReasonBrakeDelta    ValidationReason = "brake_delta"
	ValidationReasonSteerDelta    ValidationReason = "steer_delta"
)

// Range defines the inclusive min/max for one analog channel.
type Range struct {
	Min float64
	Max float64
}

func (r Range) contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Constraints configures the validator's range and per-frame delta policies.
type Constraints struct {
	Throttle Range
	Brake    Range
	Steer    Range
	// Deltas bound how far a channel may move between consecutive accepted
	// frames; zero disables the check for that channel.
	ThrottleDelta float64
	BrakeDelta    float64
	SteerDelta    float64
}

// DefaultConstraints is the tuned baseline for remote drivers.
var DefaultConstraints = Constraints{
	Throttle:      Range{Min: -1, Max: 1},
	Brake:         Range{Min: 0, Max: 1},
	Steer:         Range{Min: -1, Max: 1},
	ThrottleDelta: 0.5,
	BrakeDelta:    1.0,
	SteerDelta:    0.4,
}

// Decision summarises the outcome of a Validate call.
type Decision struct {
	Accepted bool
	Reason   ValidationReason
}

// Validator enforces control ranges and delta limits per vehicle.
type Validator struct {
	mu   sync.Mutex
	cfg  Constraints
	last map[string]Controls
}

// NewValidator constructs a validator with the supplied constraints.
func NewValidator(cfg Constraints) *Validator {
	return &Validator{cfg: cfg, last: make(map[string]Controls)}
}

// Validate checks the frame against ranges and the previously committed frame.
func (v *Validator) Validate(vehicleID string, controls Controls) Decision {
	if v == nil {
		return Decision{Accepted: true}
	}
	//1.- Reject out-of-range channels before any stateful checks.
	if !v.cfg.Throttle.contains(controls.Throttle) {
		return Decision{Reason: ValidationReasonThrottleRange}
	}
	if !v.cfg.Brake.contains(controls.Brake) {
		return Decision{Reason: ValidationReasonBrakeRange}
	}
	if !v.cfg.Steer.contains(controls.Steer) {
		return Decision{Reason: ValidationReasonSteerRange}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	last, seen := v.last[vehicleID]
	if !seen {
		return Decision{Accepted: true}
	}
	//2.- Bound per-frame movement so spoofed jumps cannot kick the physics.
	if exceeds(controls.Throttle, last.Throttle, v.cfg.ThrottleDelta) {
		return Decision{Reason: ValidationReasonThrottleDelta}
	}
	if exceeds(controls.Brake, last.Brake, v.cfg.BrakeDelta) {
		return Decision{Reason: ValidationReasonBrakeDelta}
	}
	if exceeds(controls.Steer, last.Steer, v.cfg.SteerDelta) {
		return Decision{Reason: ValidationReasonSteerDelta}
	}
	return Decision{Accepted: true}
}

// Commit persists an accepted frame so future deltas compare against it.
func (v *Validator) Commit(vehicleID string, controls Controls) {
	if v == nil || vehicleID == "" {
		return
	}
	v.mu.Lock()
	v.last[vehicleID] = controls
	v.mu.Unlock()
}

// Forget clears the committed history for a vehicle.
func (v *Validator) Forget(vehicleID string) {
	if v == nil {
		return
	}
	v.mu.Lock()
	delete(v.last, vehicleID)
	v.mu.Unlock()
}

func exceeds(current, previous, limit float64) bool {
	if limit <= 0 {
		return false
	}
	delta := current - previous
	if delta < 0 {
		delta = -delta
	}
	return delta > limit
}
