// Package telemetry exports simulation health metrics to InfluxDB. The sink
// is optional and fully asynchronous: it must never stall the tick loop.
package telemetry

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"

	"drivesim/engine/internal/config"
	"drivesim/engine/internal/simulation"
)

// Sink batches tick statistics into an InfluxDB bucket.
type Sink struct {
	client influxdb2.Client
	writer influxapi.WriteAPI
	logger zerolog.Logger
}

// NewSink connects the write API when telemetry is enabled; otherwise it
// returns a nil sink, which every method accepts.
func NewSink(cfg config.InfluxConfig, logger zerolog.Logger) *Sink {
	if !cfg.Enabled {
		return nil
	}
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().SetBatchSize(500).SetFlushInterval(1000),
	)
	sink := &Sink{
		client: client,
		//1.- The non-blocking write API buffers internally and flushes on its
		// own goroutine, keeping the tick path free of I/O.
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger: logger.With().Str("component", "telemetry").Logger(),
	}
	sink.logger.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("influx telemetry enabled")
	return sink
}

// ObserveTicks writes one aggregated point for the loop's tick statistics.
func (s *Sink) ObserveTicks(stats simulation.TickStats, worldTick uint64) {
	if s == nil || s.writer == nil {
		return
	}
	point := influxdb2.NewPoint(
		"sim_tick",
		map[string]string{"source": "loop"},
		map[string]interface{}{
			"avg_ms":   float64(stats.Average) / float64(time.Millisecond),
			"max_ms":   float64(stats.Max) / float64(time.Millisecond),
			"last_ms":  float64(stats.Last) / float64(time.Millisecond),
			"overruns": stats.Overruns,
			"tick":     int64(worldTick),
		},
		time.Now(),
	)
	s.writer.WritePoint(point)
}

// Close flushes pending points and shuts the client down.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	s.writer.Flush()
	s.client.Close()
}
