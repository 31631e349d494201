// Package config loads the simulator's runtime tunables from an optional
// config file with environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// InfluxConfig gates the optional tick-metrics telemetry sink.
type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// BotConfig gates the scripted demo driver that laps the proving ground.
type BotConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	VehicleID string `mapstructure:"vehicleId"`
}

// ReplayConfig controls on-disk session recording.
type ReplayConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Dir           string `mapstructure:"dir"`
	KeyframeEvery int    `mapstructure:"keyframeEvery"`
}

// Config captures all runtime tunables for the simulator process.
type Config struct {
	// Address is the TCP address the snapshot mirror listens on.
	Address string `mapstructure:"address"`
	// TickHz is the fixed simulation rate.
	TickHz float64 `mapstructure:"tickHz"`
	// GravityZ is the world-frame vertical gravity in m/s^2 (negative = down).
	GravityZ float64 `mapstructure:"gravityZ"`
	// VehicleAsset optionally points at a vehicle description file; empty
	// falls back to the embedded archetype.
	VehicleAsset string `mapstructure:"vehicleAsset"`
	// InputMaxAge is the freshness window before remote controls decay to neutral.
	InputMaxAge time.Duration `mapstructure:"inputMaxAge"`
	// SnapshotMaxBytes budgets encoded snapshot frames; zero disables.
	SnapshotMaxBytes int `mapstructure:"snapshotMaxBytes"`
	// AuthSecret enables HMAC token authentication on the mirror when set.
	AuthSecret string `mapstructure:"authSecret"`
	// LogLevel and LogConsole tune the process logger.
	LogLevel   string `mapstructure:"logLevel"`
	LogConsole bool   `mapstructure:"logConsole"`

	Bot    BotConfig    `mapstructure:"bot"`
	Replay ReplayConfig `mapstructure:"replay"`
	Influx InfluxConfig `mapstructure:"influx"`
}

// Load reads configuration from the optional file path plus SIM_* environment
// overrides, applying defaults and validating the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	//1.- Defaults first so a bare process is immediately usable.
	v.SetDefault("address", ":43180")
	v.SetDefault("tickHz", 60.0)
	v.SetDefault("gravityZ", -9.81)
	v.SetDefault("vehicleAsset", "")
	v.SetDefault("inputMaxAge", "2s")
	v.SetDefault("snapshotMaxBytes", 64*1024)
	v.SetDefault("authSecret", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logConsole", false)
	v.SetDefault("bot.enabled", false)
	v.SetDefault("bot.vehicleId", "pacer-1")
	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")
	v.SetDefault("replay.keyframeEvery", 300)
	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "drivesim")
	v.SetDefault("influx.bucket", "sim_metrics")

	//2.- Environment overrides use the SIM prefix, e.g. SIM_TICKHZ=120.
	v.SetEnvPrefix("SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	//3.- Collect every problem so the operator fixes them in one pass.
	var problems []string
	if cfg.TickHz <= 0 {
		problems = append(problems, fmt.Sprintf("tickHz must be positive, got %v", cfg.TickHz))
	}
	if cfg.GravityZ >= 0 {
		problems = append(problems, fmt.Sprintf("gravityZ must be negative, got %v", cfg.GravityZ))
	}
	if cfg.SnapshotMaxBytes < 0 {
		problems = append(problems, "snapshotMaxBytes must be non-negative")
	}
	if cfg.Bot.Enabled && cfg.Bot.VehicleID == "" {
		problems = append(problems, "bot.vehicleId must be set when bot.enabled")
	}
	if cfg.Replay.Enabled && cfg.Replay.Dir == "" {
		problems = append(problems, "replay.dir must be set when replay.enabled")
	}
	if cfg.Influx.Enabled && cfg.Influx.URL == "" {
		problems = append(problems, "influx.url must be set when influx.enabled")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return &cfg, nil
}

// Step converts the tick rate into the fixed timestep duration.
func (c *Config) Step() time.Duration {
	if c == nil || c.TickHz <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / c.TickHz)
}
