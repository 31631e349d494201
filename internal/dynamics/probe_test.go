package dynamics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"drivesim/engine/internal/terrain"
)

func groundPlane() FieldEnvironment {
	return FieldEnvironment{Field: terrain.NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})}
}

func TestProbeWheelNilEnvironmentDegrades(t *testing.T) {
	//1.- A missing environment is a normal no-contact condition, not an error.
	if _, ok := ProbeWheel(nil, BodyState{}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, -1}, 0.3, 0.3); ok {
		t.Fatalf("expected no contact for nil environment")
	}
}

func TestProbeWheelReportsDepth(t *testing.T) {
	env := groundPlane()
	origin := mgl64.Vec3{0, 0, 0.5}
	body := BodyState{Position: origin, Velocity: mgl64.Vec3{1, 0, 0}}
	contact, ok := ProbeWheel(env, body, origin, mgl64.Vec3{0, 0, -1}, 0.3, 0.3)
	if !ok {
		t.Fatalf("expected contact")
	}
	//1.- Hit distance 0.5 minus the tire radius leaves 0.2 of free travel.
	if math.Abs(contact.Depth-0.2) > 1e-3 {
		t.Fatalf("expected depth 0.2, got %v", contact.Depth)
	}
	if contact.Normal.Z() < 0.99 {
		t.Fatalf("expected upward normal, got %v", contact.Normal)
	}
	//2.- Without rotation the contact velocity equals the linear velocity.
	if math.Abs(contact.RelativeVelocity.X()-1) > 1e-9 {
		t.Fatalf("chassis velocity not carried through: %v", contact.RelativeVelocity)
	}
}

func TestProbeWheelSamplesVelocityAtContactPoint(t *testing.T) {
	env := groundPlane()
	//1.- Rolling about X at 1 rad/s: the lateral velocity at the ground uses
	// the full lever arm from the COM down to the contact, not the shorter
	// arm to the carrier.
	body := BodyState{Position: mgl64.Vec3{0, 0, 0.9}, AngularVelocity: mgl64.Vec3{1, 0, 0}}
	origin := mgl64.Vec3{0, 0.75, 0.5}
	contact, ok := ProbeWheel(env, body, origin, mgl64.Vec3{0, 0, -1}, 0.3, 0.3)
	if !ok {
		t.Fatalf("expected contact")
	}
	if math.Abs(contact.RelativeVelocity.Y()-0.9) > 1e-3 {
		t.Fatalf("expected lateral velocity 0.9 at the contact, got %v", contact.RelativeVelocity)
	}
	if math.Abs(contact.RelativeVelocity.Z()-0.75) > 1e-3 {
		t.Fatalf("expected vertical velocity 0.75 at the contact, got %v", contact.RelativeVelocity)
	}
}

func TestProbeWheelClampsBuriedWheel(t *testing.T) {
	env := groundPlane()
	//1.- The carrier closer to the ground than one radius means full compression.
	contact, ok := ProbeWheel(env, BodyState{}, mgl64.Vec3{0, 0, 0.1}, mgl64.Vec3{0, 0, -1}, 0.3, 0.3)
	if !ok {
		t.Fatalf("expected contact")
	}
	if contact.Depth != 0 {
		t.Fatalf("expected clamped zero depth, got %v", contact.Depth)
	}
}

func TestProbeWheelMissBeyondTravel(t *testing.T) {
	env := groundPlane()
	//1.- Ground farther than maxTravel+radius is out of reach.
	if _, ok := ProbeWheel(env, BodyState{}, mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -1}, 0.3, 0.3); ok {
		t.Fatalf("expected no contact beyond probe range")
	}
}
