// Package dynamics implements the vehicle dynamics core: rigid-body state and
// integration, wheel contact probing, suspension and tire force models, and
// the per-tick vehicle controller that ties them together.
package dynamics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrTickSealed signals a force accumulation attempted after the tick's
	// integration already consumed the accumulators.
	ErrTickSealed = errors.New("dynamics: accumulators sealed until next tick")
	// ErrNumericalInstability reports NaN/Inf state after integration; the
	// body has been rolled back to its pre-step state.
	ErrNumericalInstability = errors.New("dynamics: numerical instability detected")
)

// BodyState is the externally visible translational and rotational state.
type BodyState struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// VelocityAt returns the chassis velocity at a world-space point, combining
// the linear velocity with the angular contribution about the COM.
func (s BodyState) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return s.Velocity.Add(s.AngularVelocity.Cross(point.Sub(s.Position)))
}

// Body holds the rigid-body state plus the force/torque accumulators for the
// current tick. Accumulators are armed by BeginTick and consumed exactly once
// by Integrate.
type Body struct {
	mass       float64
	inertia    mgl64.Mat3
	invInertia mgl64.Mat3

	position        mgl64.Vec3
	orientation     mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	force     mgl64.Vec3
	torque    mgl64.Vec3
	accepting bool
}

// NewBody constructs a body at the given pose with zero velocities.
func NewBody(mass float64, inertia mgl64.Mat3, position mgl64.Vec3) *Body {
	return &Body{
		mass:        mass,
		inertia:     inertia,
		invInertia:  inertia.Inv(),
		position:    position,
		orientation: mgl64.QuatIdent(),
	}
}

// Mass returns the configured mass in kilograms.
func (b *Body) Mass() float64 { return b.mass }

// State returns a copy of the current body state.
func (b *Body) State() BodyState {
	if b == nil {
		return BodyState{Orientation: mgl64.QuatIdent()}
	}
	return BodyState{
		Position:        b.position,
		Orientation:     b.orientation,
		Velocity:        b.velocity,
		AngularVelocity: b.angularVelocity,
	}
}

// SetState replaces the body state wholesale, e.g. when applying a received
// snapshot. The orientation is renormalized to guard against wire rounding.
func (b *Body) SetState(state BodyState) {
	if b == nil {
		return
	}
	b.position = state.Position
	b.orientation = state.Orientation
	//1.- Renormalize only when wire rounding actually drifted the quaternion,
	// so an exact round-trip stays bit-identical.
	if norm := b.orientation.Len(); math.Abs(norm-1) > 1e-9 {
		b.orientation = b.orientation.Normalize()
	}
	b.velocity = state.Velocity
	b.angularVelocity = state.AngularVelocity
}

// BeginTick clears the accumulators and arms them for the coming tick.
func (b *Body) BeginTick() {
	if b == nil {
		return
	}
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
	b.accepting = true
}

// Accumulate adds a force applied at a world-space point. The torque
// contribution about the center of mass is derived automatically.
func (b *Body) Accumulate(force, point mgl64.Vec3) error {
	if b == nil {
		return errors.New("dynamics: nil body")
	}
	if !b.accepting {
		return ErrTickSealed
	}
	//1.- Sum the force and the induced torque r x F about the COM.
	b.force = b.force.Add(force)
	b.torque = b.torque.Add(point.Sub(b.position).Cross(force))
	return nil
}

// AccumulateTorque adds a raw torque with no associated force.
func (b *Body) AccumulateTorque(torque mgl64.Vec3) error {
	if b == nil {
		return errors.New("dynamics: nil body")
	}
	if !b.accepting {
		return ErrTickSealed
	}
	b.torque = b.torque.Add(torque)
	return nil
}

// Integrate advances the body by the fixed timestep using semi-implicit
// Euler: velocities first, then pose. The accumulators are consumed and
// sealed until the next BeginTick. On NaN/Inf the pre-step state is restored
// and ErrNumericalInstability returned.
func (b *Body) Integrate(dt float64) error {
	if b == nil {
		return errors.New("dynamics: nil body")
	}
	if dt <= 0 {
		return errors.New("dynamics: timestep must be positive")
	}
	if !b.accepting {
		return ErrTickSealed
	}
	prev := b.State()

	//1.- Linear: a = F/m, velocity before position.
	b.velocity = b.velocity.Add(b.force.Mul(dt / b.mass))
	b.position = b.position.Add(b.velocity.Mul(dt))

	//2.- Angular: work in the body frame so the gyroscopic term w x (I*w)
	// uses the constant body inertia tensor.
	inverse := b.orientation.Conjugate()
	omegaBody := inverse.Rotate(b.angularVelocity)
	torqueBody := inverse.Rotate(b.torque)
	gyro := omegaBody.Cross(b.inertia.Mul3x1(omegaBody))
	alphaBody := b.invInertia.Mul3x1(torqueBody.Sub(gyro))
	omegaBody = omegaBody.Add(alphaBody.Mul(dt))
	b.angularVelocity = b.orientation.Rotate(omegaBody)

	//3.- Orientation: q' = q + 0.5*dt*(w_quat * q), renormalized to counter drift.
	spin := mgl64.Quat{W: 0, V: b.angularVelocity}
	b.orientation = b.orientation.Add(spin.Mul(b.orientation).Scale(0.5 * dt)).Normalize()

	//4.- Seal and clear the accumulators for this tick.
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
	b.accepting = false

	if !b.finite() {
		//5.- Roll back so the simulation can continue next tick.
		b.SetState(prev)
		return ErrNumericalInstability
	}
	return nil
}

func (b *Body) finite() bool {
	values := []float64{
		b.position.X(), b.position.Y(), b.position.Z(),
		b.velocity.X(), b.velocity.Y(), b.velocity.Z(),
		b.angularVelocity.X(), b.angularVelocity.Y(), b.angularVelocity.Z(),
		b.orientation.W, b.orientation.V.X(), b.orientation.V.Y(), b.orientation.V.Z(),
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
