// Package state holds the authoritative per-tick simulation state exposed to
// rendering and network collaborators, with dirty tracking for diff broadcast.
package state

import (
	"github.com/go-gl/mathgl/mgl64"

	"drivesim/engine/internal/dynamics"
)

// WheelSnapshot is the wire form of one wheel's state. The contact frame is
// carried for rendering-side consumers; only spin, compression and the flag
// feed the next tick.
type WheelSnapshot struct {
	SpinVelocity  float64    `json:"spin_velocity"`
	Compression   float64    `json:"compression"`
	InContact     bool       `json:"in_contact"`
	ContactNormal [3]float64 `json:"contact_normal"`
	ContactPoint  [3]float64 `json:"contact_point"`
}

// VehicleSnapshot is the wire form of one vehicle's state after a completed
// tick. Orientation is stored W-first.
type VehicleSnapshot struct {
	VehicleID       string          `json:"vehicle_id"`
	Tick            uint64          `json:"tick"`
	Active          bool            `json:"active"`
	Position        [3]float64      `json:"position"`
	Orientation     [4]float64      `json:"orientation"`
	Velocity        [3]float64      `json:"velocity"`
	AngularVelocity [3]float64      `json:"angular_velocity"`
	Wheels          []WheelSnapshot `json:"wheels"`
}

// Clone returns a deep copy so stored snapshots cannot be mutated by callers.
func (s VehicleSnapshot) Clone() VehicleSnapshot {
	clone := s
	clone.Wheels = make([]WheelSnapshot, len(s.Wheels))
	copy(clone.Wheels, s.Wheels)
	return clone
}

// CaptureController flattens the controller state into the wire form.
func CaptureController(c *dynamics.Controller) VehicleSnapshot {
	if c == nil {
		return VehicleSnapshot{}
	}
	snap := c.Snapshot()
	out := VehicleSnapshot{
		VehicleID:       c.ID(),
		Tick:            snap.Tick,
		Active:          snap.Phase == dynamics.PhaseActive,
		Position:        vecArray(snap.Body.Position),
		Orientation:     [4]float64{snap.Body.Orientation.W, snap.Body.Orientation.V.X(), snap.Body.Orientation.V.Y(), snap.Body.Orientation.V.Z()},
		Velocity:        vecArray(snap.Body.Velocity),
		AngularVelocity: vecArray(snap.Body.AngularVelocity),
		Wheels:          make([]WheelSnapshot, len(snap.Wheels)),
	}
	for i, w := range snap.Wheels {
		out.Wheels[i] = WheelSnapshot{
			SpinVelocity:  w.SpinVelocity,
			Compression:   w.Compression,
			InContact:     w.InContact,
			ContactNormal: vecArray(w.ContactNormal),
			ContactPoint:  vecArray(w.ContactPoint),
		}
	}
	return out
}

// ControllerSnapshot converts the wire form back for direct state replacement.
func (s VehicleSnapshot) ControllerSnapshot() dynamics.ControllerSnapshot {
	phase := dynamics.PhaseIdle
	if s.Active {
		phase = dynamics.PhaseActive
	}
	snap := dynamics.ControllerSnapshot{
		Body: dynamics.BodyState{
			Position:        arrayVec(s.Position),
			Orientation:     mgl64.Quat{W: s.Orientation[0], V: mgl64.Vec3{s.Orientation[1], s.Orientation[2], s.Orientation[3]}},
			Velocity:        arrayVec(s.Velocity),
			AngularVelocity: arrayVec(s.AngularVelocity),
		},
		Phase: phase,
		Tick:  s.Tick,
	}
	snap.Wheels = make([]dynamics.WheelState, len(s.Wheels))
	for i, w := range s.Wheels {
		snap.Wheels[i] = dynamics.WheelState{
			SpinVelocity:  w.SpinVelocity,
			Compression:   w.Compression,
			InContact:     w.InContact,
			ContactNormal: arrayVec(w.ContactNormal),
			ContactPoint:  arrayVec(w.ContactPoint),
		}
	}
	return snap
}

func vecArray(v mgl64.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}

func arrayVec(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}
