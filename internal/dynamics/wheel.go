package dynamics

import "github.com/go-gl/mathgl/mgl64"

// WheelState is the per-wheel mutable state. The controller owns it
// exclusively and replaces it wholesale once per tick.
type WheelState struct {
	// SpinVelocity is the angular velocity about the spin axis in rad/s.
	SpinVelocity float64
	// Compression is the current suspension compression in [0, maxTravel].
	Compression float64
	// InContact marks whether the wheel touched ground this tick.
	InContact bool
	// ContactNormal and ContactPoint are valid only while InContact.
	ContactNormal mgl64.Vec3
	ContactPoint  mgl64.Vec3
}

// spinAfterBraking moves the spin velocity toward zero by at most maxDelta.
// Brake torque alone never reverses the spin direction.
func spinAfterBraking(spin, maxDelta float64) float64 {
	if maxDelta <= 0 {
		return spin
	}
	if spin > 0 {
		spin -= maxDelta
		if spin < 0 {
			spin = 0
		}
	} else if spin < 0 {
		spin += maxDelta
		if spin > 0 {
			spin = 0
		}
	}
	return spin
}
