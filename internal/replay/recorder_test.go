package replay

import (
	"path/filepath"
	"testing"
	"time"

	"drivesim/engine/internal/networking"
	"drivesim/engine/internal/state"
)

func fixedClock() func() time.Time {
	stamp := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return stamp }
}

func tickFrame(tick uint64) networking.SnapshotFrame {
	return networking.SnapshotFrame{
		Tick: tick,
		Vehicles: []state.VehicleSnapshot{{
			VehicleID: "veh-1",
			Tick:      tick,
			Position:  [3]float64{float64(tick), 0, 0.85},
			Wheels:    []state.WheelSnapshot{{Compression: 0.05, InContact: true}},
		}},
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	root := t.TempDir()
	recorder, manifest, err := NewRecorder(root, "test session!", 2, fixedClock())
	if err != nil {
		t.Fatalf("recorder failed to start: %v", err)
	}
	//1.- Session names are sanitised into the directory name.
	if filepath.Base(recorder.Dir()) != "testsession-20260314T120000Z" {
		t.Fatalf("unexpected session dir %q", recorder.Dir())
	}
	if manifest.Version != 1 || manifest.KeyframeInterval != 2 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}

	for tick := uint64(1); tick <= 5; tick++ {
		if err := recorder.RecordDiff(tick, tickFrame(tick)); err != nil {
			t.Fatalf("record diff %d failed: %v", tick, err)
		}
		if err := recorder.RecordKeyframe(tick, tickFrame(tick)); err != nil {
			t.Fatalf("record keyframe %d failed: %v", tick, err)
		}
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	//2.- The reader must restore every diff in order with exact payloads.
	entries, err := ReadDiffs(recorder.Dir())
	if err != nil {
		t.Fatalf("read diffs failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		want := uint64(i + 1)
		if entry.Tick != want {
			t.Fatalf("entry %d has tick %d", i, entry.Tick)
		}
		if entry.Frame.Vehicles[0].Position != [3]float64{float64(want), 0, 0.85} {
			t.Fatalf("entry %d payload perturbed: %+v", i, entry.Frame.Vehicles[0])
		}
	}
}

func TestRecorderRejectsWritesAfterClose(t *testing.T) {
	recorder, _, err := NewRecorder(t.TempDir(), "closed", 0, fixedClock())
	if err != nil {
		t.Fatalf("recorder failed to start: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := recorder.RecordDiff(1, tickFrame(1)); err == nil {
		t.Fatalf("expected error after close")
	}
	//1.- A second close is a harmless no-op.
	if err := recorder.Close(); err != nil {
		t.Fatalf("double close failed: %v", err)
	}
}

func TestRecorderRequiresRoot(t *testing.T) {
	if _, _, err := NewRecorder("", "session", 0, nil); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestReadManifestRejectsUnknownVersion(t *testing.T) {
	recorder, _, err := NewRecorder(t.TempDir(), "versioned", 0, fixedClock())
	if err != nil {
		t.Fatalf("recorder failed to start: %v", err)
	}
	recorder.Close()
	if _, err := ReadManifest(recorder.Dir()); err != nil {
		t.Fatalf("manifest read failed: %v", err)
	}
	if _, err := ReadManifest(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}
