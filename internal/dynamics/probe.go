package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"drivesim/engine/internal/terrain"
)

// Environment is the contact query collaborator. A nil environment or a miss
// is a normal no-contact condition, never an error.
type Environment interface {
	Raycast(origin, direction mgl64.Vec3, maxDistance float64) (terrain.Hit, bool)
}

// FieldEnvironment adapts a terrain field into the Environment contract.
type FieldEnvironment struct {
	Field terrain.Field
}

// Raycast sphere-traces the wrapped field.
func (e FieldEnvironment) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (terrain.Hit, bool) {
	if e.Field == nil {
		return terrain.Hit{}, false
	}
	return terrain.Raycast(e.Field, origin, direction, maxDistance)
}

// Contact describes a wheel's ground contact for the current tick.
type Contact struct {
	// Depth is the free travel along the suspension axis before the tire
	// touches: hit distance minus tire radius, never negative.
	Depth float64
	// Normal is the outward surface normal at the contact point.
	Normal mgl64.Vec3
	// Point is the world-space contact location.
	Point mgl64.Vec3
	// RelativeVelocity is the chassis velocity at the contact point; the
	// terrain is static so this is also the slip velocity.
	RelativeVelocity mgl64.Vec3
}

// ProbeWheel casts from the wheel carrier's full-compression position along
// the travel axis by maxTravel+radius. The comma-ok result is the tagged
// Contact/NoContact form: ok=false means fully extended, zero suspension
// force, zero tire force.
func ProbeWheel(env Environment, body BodyState, origin, down mgl64.Vec3, maxTravel, radius float64) (Contact, bool) {
	//1.- A missing environment degrades to no-contact rather than erroring.
	if env == nil || maxTravel <= 0 || radius <= 0 {
		return Contact{}, false
	}
	hit, ok := env.Raycast(origin, down, maxTravel+radius)
	if !ok {
		return Contact{}, false
	}
	//2.- Depth below zero means the wheel is buried; clamp to full compression.
	depth := hit.Distance - radius
	if depth < 0 {
		depth = 0
	}
	//3.- Slip is measured where the tire meets the ground, so roll and yaw
	// rates contribute their full lever arm.
	return Contact{
		Depth:            depth,
		Normal:           hit.Normal,
		Point:            hit.Point,
		RelativeVelocity: body.VelocityAt(hit.Point),
	}, true
}
