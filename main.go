// Command drivesim runs the vehicle dynamics simulator: a fixed-timestep
// world of rigid-body cars over analytic terrain, mirrored to WebSocket
// clients that may also drive the vehicles with control intents.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"drivesim/engine/internal/auth"
	"drivesim/engine/internal/config"
	"drivesim/engine/internal/dynamics"
	"drivesim/engine/internal/input"
	"drivesim/engine/internal/logging"
	"drivesim/engine/internal/networking"
	"drivesim/engine/internal/replay"
	"drivesim/engine/internal/simulation"
	"drivesim/engine/internal/state"
	"drivesim/engine/internal/telemetry"
	"drivesim/engine/internal/terrain"
	"drivesim/engine/internal/vehicle"
)

// telemetryEvery is the cadence, in ticks, of aggregated metric exports.
const telemetryEvery = 60

func main() {
	configPath := flag.String("config", "", "optional path to a simulator config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.New("info", true)
		fallback.Fatal().Err(err).Msg("configuration invalid")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogConsole)

	//1.- Assemble the proving-ground terrain: flat pad with a ramp, a raised
	// table, a washboard strip, and a step, all sphere-traceable fields.
	grid := terrain.NewGrid(20)
	grid.Place(1, 0, terrain.Slope{Size: 20, Rise: 2})
	grid.Place(2, 0, terrain.Flat{Elevation: 2})
	grid.Place(-2, 0, terrain.Wave{Amplitude: 0.3, Wavelength: 4})
	grid.Place(-3, 0, terrain.Step{Size: 20, Rise: 0.4})
	env := dynamics.FieldEnvironment{Field: terrain.NewHeightField(grid)}

	//2.- Load the vehicle description, falling back to the embedded archetype.
	vehicleCfg := vehicle.Roadster()
	if cfg.VehicleAsset != "" {
		loaded, err := vehicle.LoadFile(cfg.VehicleAsset)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.VehicleAsset).Msg("vehicle asset rejected")
		}
		vehicleCfg = *loaded
	}

	sim := dynamics.SimContext{Step: cfg.Step(), Gravity: mgl64.Vec3{0, 0, cfg.GravityZ}}
	controls := input.NewStore(cfg.InputMaxAge, nil)
	world := state.NewWorld(sim, env, controls, logger)
	spawnHeight := vehicleCfg.SpawnHeight()
	if err := world.Spawn("roadster-1", vehicleCfg, mgl64.Vec3{0, 0, spawnHeight}); err != nil {
		logger.Fatal().Err(err).Msg("spawn failed")
	}

	//3.- The optional pacer laps the proving ground on a scripted driver with
	// smoothed pedals, alongside the remotely driven roadster.
	if cfg.Bot.Enabled {
		driver := input.NewDriver(pacerScript(), input.NewSmoother(), sim.Step)
		if err := world.SpawnDriven(cfg.Bot.VehicleID, vehicleCfg, mgl64.Vec3{0, 6, spawnHeight}, driver); err != nil {
			logger.Fatal().Err(err).Msg("pacer spawn failed")
		}
	}

	//4.- Optional HMAC auth for mirror clients.
	var verifier *auth.Verifier
	if cfg.AuthSecret != "" {
		verifier, err = auth.NewVerifier(cfg.AuthSecret, 2*time.Second)
		if err != nil {
			logger.Fatal().Err(err).Msg("auth secret rejected")
		}
	}
	router := newIntentRouter(controls, input.NewValidator(input.DefaultConstraints), logger)
	hub := NewHub(router, verifier, logger)

	publisher := networking.NewPublisher(cfg.SnapshotMaxBytes)
	sink := telemetry.NewSink(cfg.Influx, logger)
	defer sink.Close()

	//5.- Replay recording consumes frames on its own goroutine so disk I/O
	// never touches the tick path; shutdown drains the queue before closing.
	var recordQueue chan networking.SnapshotFrame
	if cfg.Replay.Enabled {
		recorder, manifest, err := replay.NewRecorder(cfg.Replay.Dir, "proving-ground", cfg.Replay.KeyframeEvery, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("replay recorder failed to start")
		}
		logger.Info().Str("dir", recorder.Dir()).Str("diffs", manifest.DiffsPath).Msg("replay recording enabled")
		recordQueue = make(chan networking.SnapshotFrame, 256)
		defer startRecorderDrain(recorder, recordQueue, logger)()
	}

	monitor := simulation.NewTickMonitor()
	loop := simulation.NewLoop(sim.Step, func() {
		diff := world.AdvanceTick()
		tick := world.Tick()
		if diff.HasChanges() {
			payload, budget, err := publisher.EncodeDiff(tick, diff)
			if err != nil {
				logger.Error().Err(err).Msg("snapshot encode failed")
			} else {
				if budget.OverBudget {
					logger.Warn().Int("encoded_bytes", budget.EncodedBytes).Msg("snapshot frame over budget")
				}
				hub.Broadcast(payload)
				if recordQueue != nil {
					select {
					case recordQueue <- networking.SnapshotFrame{Tick: tick, Vehicles: diff.Updated, Removed: diff.Removed}:
					default:
						logger.Warn().Uint64("tick", tick).Msg("replay queue full, dropping frame")
					}
				}
			}
		}
		if tick%telemetryEvery == 0 {
			sink.ObserveTicks(monitor.Snapshot(), tick)
		}
	}, monitor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop.Start(ctx)
	defer loop.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := &http.Server{Addr: cfg.Address, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("address", cfg.Address).Float64("tick_hz", cfg.TickHz).Msg("simulator listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server terminated")
	}
	stats := monitor.Snapshot()
	logger.Info().Int("ticks", stats.Samples).Dur("avg", stats.Average).Dur("max", stats.Max).Msg("simulator stopped")
}

// pacerScript is the demo driver's lap: launch down the pad, sweep left over
// the washboard, then brake to a halt and hold.
func pacerScript() *input.Script {
	return input.NewScript(
		input.ScriptStep{Ticks: 240, Controls: input.Controls{Throttle: 1}},
		input.ScriptStep{Ticks: 300, Controls: input.Controls{Throttle: 0.5, Steer: 0.4}},
		input.ScriptStep{Ticks: 180, Controls: input.Controls{Brake: 1}},
	)
}
