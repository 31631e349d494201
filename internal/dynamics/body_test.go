package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBodyIntegrateAdvancesLinearState(t *testing.T) {
	body := NewBody(2, mgl64.Ident3(), mgl64.Vec3{})
	body.BeginTick()
	if err := body.Accumulate(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{}); err != nil {
		t.Fatalf("accumulate failed: %v", err)
	}
	if err := body.Integrate(0.5); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	state := body.State()
	//1.- Semi-implicit Euler updates velocity first, then position with the new velocity.
	if got := state.Velocity.X(); math.Abs(got-2.5) > 1e-12 {
		t.Fatalf("expected velocity 2.5, got %v", got)
	}
	if got := state.Position.X(); math.Abs(got-1.25) > 1e-12 {
		t.Fatalf("expected position 1.25, got %v", got)
	}
}

func TestBodyTorqueSpinsAboutAxis(t *testing.T) {
	body := NewBody(1, mgl64.Diag3(mgl64.Vec3{2, 2, 2}), mgl64.Vec3{})
	body.BeginTick()
	if err := body.AccumulateTorque(mgl64.Vec3{0, 0, 4}); err != nil {
		t.Fatalf("accumulate torque failed: %v", err)
	}
	if err := body.Integrate(0.5); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	//1.- alpha = I^-1 * tau = 2 rad/s^2, so omega = 1 rad/s after half a second.
	if got := body.State().AngularVelocity.Z(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected angular velocity 1, got %v", got)
	}
}

func TestBodyAccumulatorsSealAfterIntegrate(t *testing.T) {
	body := NewBody(1, mgl64.Ident3(), mgl64.Vec3{})
	body.BeginTick()
	if err := body.Integrate(1.0 / 60); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if err := body.Accumulate(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}); !errors.Is(err, ErrTickSealed) {
		t.Fatalf("expected ErrTickSealed from accumulate, got %v", err)
	}
	if err := body.AccumulateTorque(mgl64.Vec3{1, 0, 0}); !errors.Is(err, ErrTickSealed) {
		t.Fatalf("expected ErrTickSealed from accumulate torque, got %v", err)
	}
	if err := body.Integrate(1.0 / 60); !errors.Is(err, ErrTickSealed) {
		t.Fatalf("expected ErrTickSealed from double integrate, got %v", err)
	}
	//1.- BeginTick re-arms the accumulators for the next tick.
	body.BeginTick()
	if err := body.Accumulate(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}); err != nil {
		t.Fatalf("accumulate after BeginTick failed: %v", err)
	}
}

func TestBodyIntegrateRollsBackOnInstability(t *testing.T) {
	body := NewBody(1, mgl64.Ident3(), mgl64.Vec3{1, 2, 3})
	before := body.State()
	body.BeginTick()
	if err := body.Accumulate(mgl64.Vec3{math.NaN(), 0, 0}, mgl64.Vec3{}); err != nil {
		t.Fatalf("accumulate failed: %v", err)
	}
	err := body.Integrate(1.0 / 60)
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("expected ErrNumericalInstability, got %v", err)
	}
	//1.- The pre-step state must be restored so the next tick can proceed.
	after := body.State()
	if after.Position != before.Position || after.Velocity != before.Velocity {
		t.Fatalf("state not rolled back: %+v vs %+v", after, before)
	}
}

func TestBodyOrientationStaysNormalized(t *testing.T) {
	body := NewBody(10, mgl64.Diag3(mgl64.Vec3{5, 5, 5}), mgl64.Vec3{})
	for i := 0; i < 2000; i++ {
		body.BeginTick()
		if err := body.AccumulateTorque(mgl64.Vec3{3, -2, 5}); err != nil {
			t.Fatalf("accumulate torque failed: %v", err)
		}
		if err := body.Integrate(1.0 / 60); err != nil {
			t.Fatalf("integrate failed at step %d: %v", i, err)
		}
	}
	if drift := math.Abs(body.State().Orientation.Len() - 1); drift > 1e-4 {
		t.Fatalf("quaternion drifted: |norm-1| = %v", drift)
	}
}

func TestBodySetStatePreservesExactOrientation(t *testing.T) {
	body := NewBody(1, mgl64.Ident3(), mgl64.Vec3{})
	//1.- 0.5^2 * 4 is exactly 1 in float64, so no renormalisation may occur.
	exact := mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.5, 0.5, 0.5}}
	body.SetState(BodyState{Orientation: exact})
	if got := body.State().Orientation; got != exact {
		t.Fatalf("exact orientation was perturbed: %+v", got)
	}

	//2.- A clearly drifted quaternion must come back normalised.
	body.SetState(BodyState{Orientation: mgl64.Quat{W: 2, V: mgl64.Vec3{}}})
	if norm := body.State().Orientation.Len(); math.Abs(norm-1) > 1e-12 {
		t.Fatalf("drifted orientation not renormalised, norm %v", norm)
	}
}
