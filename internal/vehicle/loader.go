package vehicle

import (
	"encoding/json"
	"fmt"
	"sync"

	_ "embed"

	"github.com/spf13/viper"
)

//go:embed roadster.json
var roadsterPayload []byte

var (
	roadsterOnce sync.Once
	roadsterData Config
	roadsterErr  error
)

// Roadster exposes the cached baseline archetype used for spawns without an asset file.
func Roadster() Config {
	roadsterOnce.Do(func() {
		//1.- Parse the embedded JSON payload exactly once in a threadsafe manner.
		roadsterErr = json.Unmarshal(roadsterPayload, &roadsterData)
		if roadsterErr == nil {
			roadsterErr = roadsterData.Validate()
		}
	})
	//2.- Panic immediately when the embedded archetype cannot be decoded to avoid silent divergence.
	if roadsterErr != nil {
		panic(roadsterErr)
	}
	//3.- Return a copy of the cached config so callers cannot mutate shared state.
	return roadsterData
}

// LoadFile reads a vehicle asset description (JSON or YAML) and validates it.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("vehicle asset path must be provided")
	}
	v := viper.New()
	v.SetConfigFile(path)
	//1.- Let viper infer the format from the file extension.
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read vehicle asset: %w", err)
	}
	var cfg Config
	//2.- Decode into the typed config via the mapstructure tags.
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode vehicle asset: %w", err)
	}
	//3.- Reject malformed parameters before the vehicle can spawn.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
