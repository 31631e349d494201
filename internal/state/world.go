package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"drivesim/engine/internal/dynamics"
	"drivesim/engine/internal/input"
	"drivesim/engine/internal/vehicle"
)

// World owns the set of live vehicle controllers and the snapshot store the
// collaborators read from. Ticks run synchronously; consumers only observe
// state between ticks.
type World struct {
	mu          sync.Mutex
	sim         dynamics.SimContext
	env         dynamics.Environment
	source      input.Source
	logger      zerolog.Logger
	controllers map[string]*dynamics.Controller
	store       *Store
	tick        uint64
}

// NewWorld constructs an empty world sharing one environment and input source.
func NewWorld(sim dynamics.SimContext, env dynamics.Environment, source input.Source, logger zerolog.Logger) *World {
	return &World{
		sim:         sim,
		env:         env,
		source:      source,
		logger:      logger.With().Str("component", "world").Logger(),
		controllers: make(map[string]*dynamics.Controller),
		store:       NewStore(),
	}
}

// Store exposes the snapshot store for network and rendering collaborators.
func (w *World) Store() *Store { return w.store }

// Tick reports the number of completed world ticks.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Spawn validates the config and adds a vehicle polled from the world's
// shared input source.
func (w *World) Spawn(vehicleID string, cfg vehicle.Config, position mgl64.Vec3) error {
	if w == nil {
		return fmt.Errorf("state: nil world")
	}
	return w.SpawnDriven(vehicleID, cfg, position, w.source)
}

// SpawnDriven adds a vehicle with its own input source, e.g. a scripted demo
// driver running alongside remotely controlled vehicles.
func (w *World) SpawnDriven(vehicleID string, cfg vehicle.Config, position mgl64.Vec3, source input.Source) error {
	if w == nil {
		return fmt.Errorf("state: nil world")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.controllers[vehicleID]; exists {
		return fmt.Errorf("state: vehicle %q already spawned", vehicleID)
	}
	controller, err := dynamics.NewController(vehicleID, cfg, w.sim, w.env, source, position, w.logger)
	if err != nil {
		return err
	}
	w.controllers[vehicleID] = controller
	w.store.Upsert(CaptureController(controller))
	w.logger.Info().Str("vehicle_id", vehicleID).Str("archetype", cfg.Name).Msg("vehicle spawned")
	return nil
}

// Despawn removes the vehicle from the next tick's processing set.
func (w *World) Despawn(vehicleID string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	_, ok := w.controllers[vehicleID]
	delete(w.controllers, vehicleID)
	w.mu.Unlock()
	if ok {
		w.store.Remove(vehicleID)
		w.logger.Info().Str("vehicle_id", vehicleID).Msg("vehicle despawned")
	}
}

// Controller returns the live controller for direct state replacement.
func (w *World) Controller(vehicleID string) (*dynamics.Controller, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	controller, ok := w.controllers[vehicleID]
	return controller, ok
}

// AdvanceTick steps every vehicle once by the configured fixed timestep and
// collects the broadcast diff. Vehicles are processed in identifier order so
// runs stay reproducible.
func (w *World) AdvanceTick() Diff {
	if w == nil {
		return Diff{}
	}
	w.mu.Lock()
	ids := make([]string, 0, len(w.controllers))
	for id := range w.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	//1.- Step each controller; an unstable vehicle is rolled back internally
	// and must never stall the rest of the world.
	for _, id := range ids {
		controller := w.controllers[id]
		if err := controller.Step(); err != nil {
			w.logger.Warn().Err(err).Str("vehicle_id", id).Msg("tick degraded")
		}
		w.store.Upsert(CaptureController(controller))
	}
	w.tick++
	w.mu.Unlock()
	//2.- Hand the dirty set to the broadcast path.
	return w.store.ConsumeDiff()
}

// Apply replaces a vehicle's state from a received snapshot. Unknown vehicles
// are ignored; spawning is an explicit operation.
func (w *World) Apply(snapshot VehicleSnapshot) {
	if w == nil {
		return
	}
	w.mu.Lock()
	controller, ok := w.controllers[snapshot.VehicleID]
	w.mu.Unlock()
	if !ok {
		return
	}
	controller.Restore(snapshot.ControllerSnapshot())
	w.store.Upsert(CaptureController(controller))
}
