package dynamics

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"drivesim/engine/internal/input"
	"drivesim/engine/internal/vehicle"
)

// SimContext carries the process-wide simulation constants explicitly so the
// core stays reproducible and testable in isolation.
type SimContext struct {
	// Step is the fixed integration timestep.
	Step time.Duration
	// Gravity is the world-frame gravitational acceleration.
	Gravity mgl64.Vec3
}

// DefaultSimContext targets 60 Hz with standard gravity, world Z up.
func DefaultSimContext() SimContext {
	return SimContext{Step: time.Second / 60, Gravity: mgl64.Vec3{0, 0, -9.81}}
}

// Phase is the controller lifecycle state.
type Phase int32

const (
	// PhaseIdle means no control input has been received yet; no forces act.
	PhaseIdle Phase = iota
	// PhaseActive runs the normal per-tick loop until despawn.
	PhaseActive
)

// String names the phase for logs and diagnostics.
func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "idle"
}

// wheelSlot is the private per-wheel output of the fork phase. Slots are
// combined in wheel order after the join, so force accumulation stays
// deterministic regardless of goroutine scheduling.
type wheelSlot struct {
	hasContact bool
	suspension mgl64.Vec3
	mount      mgl64.Vec3
	tire       mgl64.Vec3
	contact    mgl64.Vec3
	state      WheelState
}

// Controller drives one vehicle: each tick it polls control input, probes
// every wheel, computes suspension and tire forces, accumulates them onto the
// rigid body, and integrates once.
type Controller struct {
	id     string
	cfg    vehicle.Config
	sim    SimContext
	body   *Body
	env    Environment
	source input.Source
	logger zerolog.Logger

	wheels []WheelState
	slots  []wheelSlot
	phase  Phase
	tick   uint64
}

// NewController validates the config and spawns a vehicle at the given
// position. Validation failures are fatal: the vehicle cannot spawn.
func NewController(id string, cfg vehicle.Config, sim SimContext, env Environment, source input.Source, spawn mgl64.Vec3, logger zerolog.Logger) (*Controller, error) {
	if id == "" {
		return nil, errors.New("dynamics: controller id must be provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sim.Step <= 0 {
		return nil, errors.New("dynamics: sim context step must be positive")
	}
	return &Controller{
		id:     id,
		cfg:    cfg,
		sim:    sim,
		body:   NewBody(cfg.MassKg, cfg.InertiaTensor(), spawn),
		env:    env,
		source: source,
		logger: logger.With().Str("vehicle_id", id).Logger(),
		wheels: make([]WheelState, len(cfg.Wheels)),
		slots:  make([]wheelSlot, len(cfg.Wheels)),
	}, nil
}

// ID returns the vehicle identifier.
func (c *Controller) ID() string { return c.id }

// Phase reports the current lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Tick reports how many ticks have been processed.
func (c *Controller) Tick() uint64 { return c.tick }

// BodyState returns a copy of the rigid-body state. Consumers must only call
// this between ticks so they observe a consistent snapshot.
func (c *Controller) BodyState() BodyState {
	return c.body.State()
}

// WheelStates returns a copy of the per-wheel states.
func (c *Controller) WheelStates() []WheelState {
	out := make([]WheelState, len(c.wheels))
	copy(out, c.wheels)
	return out
}

// Step runs one atomic simulation tick. A vehicle in PhaseIdle stays inert
// until the first control input arrives. Integration instability is reported
// but the tick never aborts partway: the body is already rolled back and the
// next tick proceeds normally.
func (c *Controller) Step() error {
	if c == nil {
		return errors.New("dynamics: nil controller")
	}
	controls := input.Controls{}
	if c.source != nil {
		polled, ok := c.source.Poll(c.id)
		if ok {
			if c.phase == PhaseIdle {
				//1.- First input wakes the vehicle; zero forces before this point.
				c.phase = PhaseActive
				c.logger.Debug().Uint64("tick", c.tick).Msg("controller activated")
			}
			controls = polled.Clamped()
		}
	}
	if c.phase == PhaseIdle {
		c.tick++
		return nil
	}

	dt := c.sim.Step.Seconds()
	c.body.BeginTick()

	//2.- Fork: each wheel computes into its private slot. The wheels share
	// only the read-only config and the body state captured at tick start.
	body := c.body.State()
	var wg sync.WaitGroup
	for i := range c.cfg.Wheels {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.slots[i] = c.stepWheel(i, body, controls, dt)
		}(i)
	}
	wg.Wait()

	//3.- Join: reduce the slots in wheel order so the float accumulation
	// order is identical on every run.
	for i := range c.slots {
		slot := &c.slots[i]
		if slot.hasContact {
			if err := c.body.Accumulate(slot.suspension, slot.mount); err != nil {
				return err
			}
			if err := c.body.Accumulate(slot.tire, slot.contact); err != nil {
				return err
			}
		}
		c.wheels[i] = slot.state
	}

	//4.- Gravity acts at the COM and induces no torque.
	if err := c.body.Accumulate(c.sim.Gravity.Mul(c.body.Mass()), body.Position); err != nil {
		return err
	}

	err := c.body.Integrate(dt)
	c.tick++
	if errors.Is(err, ErrNumericalInstability) {
		c.logger.Warn().Uint64("tick", c.tick).Msg("integration rolled back after instability")
		return err
	}
	return err
}

// stepWheel probes one wheel and converts the result into suspension and tire
// forces plus the replacement WheelState. A failed probe degrades the wheel
// to no-contact instead of aborting the tick.
func (c *Controller) stepWheel(index int, body BodyState, controls input.Controls, dt float64) wheelSlot {
	wheel := c.cfg.Wheels[index]
	prev := c.wheels[index]

	//1.- Place the suspension hardpoint and travel axis in world space. The
	// wheel carrier hangs the rest length below the hardpoint, so the probe
	// starts at the carrier's full-compression position.
	com := c.cfg.CenterOfMass.Vec()
	mount := body.Position.Add(body.Orientation.Rotate(wheel.Mount.Vec().Sub(com)))
	down := body.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
	origin := mount.Add(down.Mul(wheel.Rest() - wheel.MaxTravel))

	driveTorque := controls.Throttle * wheel.DriveTorque
	brakeDelta := controls.Brake * wheel.BrakeTorque / wheel.SpinInertia * dt

	contact, hit := ProbeWheel(c.env, body, origin, down, wheel.MaxTravel, wheel.Radius)
	if !hit {
		//2.- Airborne wheel: spin integrates under drivetrain torque only.
		spin := prev.SpinVelocity + driveTorque/wheel.SpinInertia*dt
		spin = spinAfterBraking(spin, brakeDelta)
		return wheelSlot{state: WheelState{SpinVelocity: spin}}
	}

	compression := Compression(wheel.MaxTravel, contact.Depth)
	//3.- Extension rate is positive while the suspension extends. A wheel
	// without contact history has no valid rate, so damping waits a tick.
	extensionRate := 0.0
	if prev.InContact && dt > 0 {
		extensionRate = (prev.Compression - compression) / dt
	}
	load := SuspensionForce(compression, extensionRate, wheel.SpringK, wheel.DamperC)

	//4.- Build the contact-plane basis from the steered rolling direction.
	steer := 0.0
	if wheel.Steerable {
		steer = controls.Steer * c.cfg.MaxSteerDeg * math.Pi / 180
	}
	forward := body.Orientation.Rotate(mgl64.Vec3{math.Cos(steer), math.Sin(steer), 0})
	normal := contact.Normal
	longitudinal := forward.Sub(normal.Mul(forward.Dot(normal)))
	if longitudinal.Len() < 1e-9 {
		longitudinal = mgl64.Vec3{1, 0, 0}
	} else {
		longitudinal = longitudinal.Normalize()
	}
	lateral := normal.Cross(longitudinal)

	longSpeed := contact.RelativeVelocity.Dot(longitudinal)
	latSpeed := contact.RelativeVelocity.Dot(lateral)
	tireLong, tireLat := TireForces(wheel, prev.SpinVelocity, longSpeed, latSpeed, load)

	//5.- Suspension pushes along the travel axis at the hardpoint; tire
	// friction acts in the contact plane at the contact point.
	up := down.Mul(-1)
	slot := wheelSlot{
		hasContact: true,
		suspension: up.Mul(load),
		mount:      mount,
		tire:       longitudinal.Mul(tireLong).Add(lateral.Mul(tireLat)),
		contact:    contact.Point,
	}

	//6.- Wheel spin reacts to drivetrain torque and the ground reaction.
	spin := prev.SpinVelocity + (driveTorque-tireLong*wheel.Radius)/wheel.SpinInertia*dt
	spin = spinAfterBraking(spin, brakeDelta)
	slot.state = WheelState{
		SpinVelocity:  spin,
		Compression:   compression,
		InContact:     true,
		ContactNormal: normal,
		ContactPoint:  contact.Point,
	}
	return slot
}

// ControllerSnapshot captures everything needed to reproduce the controller's
// subsequent ticks on another instance.
type ControllerSnapshot struct {
	Body   BodyState
	Wheels []WheelState
	Phase  Phase
	Tick   uint64
}

// Snapshot returns a deep copy of the controller state.
func (c *Controller) Snapshot() ControllerSnapshot {
	wheels := make([]WheelState, len(c.wheels))
	copy(wheels, c.wheels)
	return ControllerSnapshot{Body: c.body.State(), Wheels: wheels, Phase: c.phase, Tick: c.tick}
}

// Restore applies a snapshot by direct state replacement, the contract used
// by the network collaborator on the receiving side.
func (c *Controller) Restore(snapshot ControllerSnapshot) {
	if c == nil {
		return
	}
	c.body.SetState(snapshot.Body)
	if len(snapshot.Wheels) == len(c.wheels) {
		copy(c.wheels, snapshot.Wheels)
	}
	c.phase = snapshot.Phase
	c.tick = snapshot.Tick
}
