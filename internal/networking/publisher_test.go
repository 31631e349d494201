package networking

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"drivesim/engine/internal/dynamics"
	"drivesim/engine/internal/input"
	"drivesim/engine/internal/state"
	"drivesim/engine/internal/terrain"
	"drivesim/engine/internal/vehicle"
)

func sampleFrame() SnapshotFrame {
	return SnapshotFrame{
		Tick: 42,
		Vehicles: []state.VehicleSnapshot{{
			VehicleID:   "veh-1",
			Tick:        42,
			Active:      true,
			Position:    [3]float64{1.5, -2.25, 0.875},
			Orientation: [4]float64{1, 0, 0, 0},
			Velocity:    [3]float64{3, 0, 0},
			Wheels:      []state.WheelSnapshot{{SpinVelocity: 10, Compression: 0.04, InContact: true}},
		}},
		Removed: []string{"veh-9"},
	}
}

func TestPublisherEncodeDecodeRoundTrip(t *testing.T) {
	publisher := NewPublisher(0)
	payload, budget, err := publisher.Encode(sampleFrame())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if budget.RawBytes == 0 || budget.EncodedBytes == 0 {
		t.Fatalf("expected byte accounting, got %+v", budget)
	}
	if budget.OverBudget {
		t.Fatalf("budget disabled yet frame flagged over budget")
	}

	frame, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if frame.Tick != 42 || len(frame.Vehicles) != 1 || len(frame.Removed) != 1 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	//1.- Float64 fields survive the JSON round trip exactly.
	if frame.Vehicles[0].Position != [3]float64{1.5, -2.25, 0.875} {
		t.Fatalf("position perturbed: %v", frame.Vehicles[0].Position)
	}
}

func TestPublisherFlagsOversizedFrames(t *testing.T) {
	publisher := NewPublisher(8)
	_, budget, err := publisher.Encode(sampleFrame())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !budget.OverBudget {
		t.Fatalf("expected over-budget flag for 8-byte budget, got %+v", budget)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := Decode([]byte{0xff, 0x00, 0x01}); err == nil {
		t.Fatalf("expected error for corrupt payload")
	}
}

func TestApplyReplacesAndDespawns(t *testing.T) {
	sim := dynamics.SimContext{Step: time.Second / 60, Gravity: mgl64.Vec3{0, 0, -9.81}}
	env := dynamics.FieldEnvironment{Field: terrain.NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})}
	world := state.NewWorld(sim, env, input.StaticSource{}, zerolog.Nop())
	if err := world.Spawn("veh-1", vehicle.Roadster(), mgl64.Vec3{0, 0, 0.9}); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	if err := world.Spawn("veh-9", vehicle.Roadster(), mgl64.Vec3{10, 0, 0.9}); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	frame := sampleFrame()
	Apply(world, frame)

	controller, ok := world.Controller("veh-1")
	if !ok {
		t.Fatalf("vehicle missing after apply")
	}
	//1.- The received snapshot replaces the body state wholesale.
	if got := controller.BodyState().Position; got != (mgl64.Vec3{1.5, -2.25, 0.875}) {
		t.Fatalf("apply did not replace position, got %v", got)
	}
	//2.- Removed identifiers despawn on the receiving side.
	if _, ok := world.Controller("veh-9"); ok {
		t.Fatalf("expected veh-9 despawned")
	}
	//3.- A nil world is tolerated.
	Apply(nil, frame)
}
