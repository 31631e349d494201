package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Address != ":43180" {
		t.Fatalf("unexpected address %q", cfg.Address)
	}
	if cfg.TickHz != 60 || cfg.GravityZ != -9.81 {
		t.Fatalf("unexpected physics defaults: %v Hz, %v m/s^2", cfg.TickHz, cfg.GravityZ)
	}
	if cfg.InputMaxAge != 2*time.Second {
		t.Fatalf("unexpected input freshness %v", cfg.InputMaxAge)
	}
	if cfg.SnapshotMaxBytes != 64*1024 {
		t.Fatalf("unexpected snapshot budget %d", cfg.SnapshotMaxBytes)
	}
	if cfg.Replay.Enabled || cfg.Influx.Enabled || cfg.Bot.Enabled {
		t.Fatalf("optional features must default to disabled")
	}
	if cfg.Bot.VehicleID != "pacer-1" {
		t.Fatalf("unexpected bot id default %q", cfg.Bot.VehicleID)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	payload := "tickHz: 120\naddress: \":9999\"\nreplay:\n  enabled: true\n  dir: out\n  keyframeEvery: 30\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TickHz != 120 || cfg.Address != ":9999" {
		t.Fatalf("file overrides not applied: %+v", cfg)
	}
	if !cfg.Replay.Enabled || cfg.Replay.Dir != "out" || cfg.Replay.KeyframeEvery != 30 {
		t.Fatalf("nested replay overrides not applied: %+v", cfg.Replay)
	}
	//1.- Untouched keys keep their defaults.
	if cfg.GravityZ != -9.81 {
		t.Fatalf("default gravity lost: %v", cfg.GravityZ)
	}
}

func TestLoadCollectsEveryProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	payload := "tickHz: 0\ngravityZ: 5\nsnapshotMaxBytes: -1\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	//1.- All three problems must surface in one pass.
	for _, fragment := range []string{"tickHz", "gravityZ", "snapshotMaxBytes"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing %q", err.Error(), fragment)
		}
	}
}

func TestLoadRejectsBotWithoutVehicleID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	payload := "bot:\n  enabled: true\n  vehicleId: \"\"\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "bot.vehicleId") {
		t.Fatalf("expected bot.vehicleId validation failure, got %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestStepDerivesFromTickRate(t *testing.T) {
	cfg := &Config{TickHz: 100}
	if cfg.Step() != 10*time.Millisecond {
		t.Fatalf("unexpected step %v", cfg.Step())
	}
	//1.- Degenerate configs fall back to 60Hz.
	var nilCfg *Config
	if nilCfg.Step() != time.Second/60 {
		t.Fatalf("unexpected fallback step %v", nilCfg.Step())
	}
}
