// Package networking encodes completed-tick snapshots for transmission and
// applies received snapshots by direct state replacement. Transmission itself
// is a collaborator concern; nothing here may stall the simulation loop.
package networking

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"drivesim/engine/internal/state"
)

// SnapshotFrame is the wire payload for one completed tick.
type SnapshotFrame struct {
	Tick     uint64                  `json:"tick"`
	Vehicles []state.VehicleSnapshot `json:"vehicles,omitempty"`
	Removed  []string                `json:"removed,omitempty"`
}

// BudgetResult accounts for the encoded frame against the per-client budget.
type BudgetResult struct {
	RawBytes     int
	EncodedBytes int
	OverBudget   bool
}

// Publisher encodes snapshot frames as snappy-compressed JSON and applies
// byte budgeting so oversized frames are visible to the operator.
type Publisher struct {
	maxBytes int
}

// NewPublisher constructs a publisher enforcing the provided byte budget.
// Zero disables the budget check.
func NewPublisher(maxBytes int) *Publisher {
	return &Publisher{maxBytes: maxBytes}
}

// EncodeDiff converts a store diff into a frame payload.
func (p *Publisher) EncodeDiff(tick uint64, diff state.Diff) ([]byte, BudgetResult, error) {
	return p.Encode(SnapshotFrame{Tick: tick, Vehicles: diff.Updated, Removed: diff.Removed})
}

// Encode marshals and compresses the frame.
func (p *Publisher) Encode(frame SnapshotFrame) ([]byte, BudgetResult, error) {
	if p == nil {
		return nil, BudgetResult{}, fmt.Errorf("networking: nil publisher")
	}
	//1.- Marshal to JSON first so the payload stays inspectable in captures.
	raw, err := json.Marshal(frame)
	if err != nil {
		return nil, BudgetResult{}, fmt.Errorf("encode snapshot: %w", err)
	}
	//2.- Snappy keeps the per-frame latency cost negligible on the tick path.
	encoded := snappy.Encode(nil, raw)
	result := BudgetResult{
		RawBytes:     len(raw),
		EncodedBytes: len(encoded),
		OverBudget:   p.maxBytes > 0 && len(encoded) > p.maxBytes,
	}
	return encoded, result, nil
}

// Decode restores a frame from its wire form.
func Decode(payload []byte) (SnapshotFrame, error) {
	if len(payload) == 0 {
		return SnapshotFrame{}, fmt.Errorf("decode snapshot: empty payload")
	}
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return SnapshotFrame{}, fmt.Errorf("decode snapshot: %w", err)
	}
	var frame SnapshotFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return SnapshotFrame{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return frame, nil
}

// Apply replaces world state from a received frame, vehicle by vehicle, and
// despawns the removed identifiers. No interpolation is performed.
func Apply(world *state.World, frame SnapshotFrame) {
	if world == nil {
		return
	}
	for _, snapshot := range frame.Vehicles {
		world.Apply(snapshot)
	}
	for _, id := range frame.Removed {
		world.Despawn(id)
	}
}
