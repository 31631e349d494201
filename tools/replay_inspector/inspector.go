// Package replayinspector summarises recorded simulation sessions so
// operators can sanity-check a bundle without replaying it.
package replayinspector

import (
	"fmt"
	"io"

	"drivesim/engine/internal/replay"
)

// Summary aggregates the contents of one recorded session.
type Summary struct {
	Ticks      int
	FirstTick  uint64
	LastTick   uint64
	Vehicles   map[string]int
	Despawns   int
	WheelCount int
}

// Summarise reads the diff stream of a session directory and aggregates it.
func Summarise(dir string) (Summary, error) {
	entries, err := replay.ReadDiffs(dir)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Vehicles: make(map[string]int)}
	for i, entry := range entries {
		//1.- Track the tick span and per-vehicle update counts.
		if i == 0 {
			summary.FirstTick = entry.Tick
		}
		summary.LastTick = entry.Tick
		summary.Ticks++
		for _, snapshot := range entry.Frame.Vehicles {
			summary.Vehicles[snapshot.VehicleID]++
			if count := len(snapshot.Wheels); count > summary.WheelCount {
				summary.WheelCount = count
			}
		}
		summary.Despawns += len(entry.Frame.Removed)
	}
	return summary, nil
}

// Render writes the human-readable report.
func Render(w io.Writer, dir string, summary Summary) {
	fmt.Fprintf(w, "session: %s\n", dir)
	fmt.Fprintf(w, "ticks recorded: %d (%d..%d)\n", summary.Ticks, summary.FirstTick, summary.LastTick)
	for id, updates := range summary.Vehicles {
		fmt.Fprintf(w, "  vehicle %s: %d updates\n", id, updates)
	}
	fmt.Fprintf(w, "despawns: %d, wheels per vehicle: %d\n", summary.Despawns, summary.WheelCount)
}
