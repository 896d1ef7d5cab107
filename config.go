package summon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the optional summon.yaml runtime tuning file.
type Config struct {
	Hydration HydrationConfig `yaml:"hydration"`
	Callbacks CallbackConfig  `yaml:"callbacks"`
	Server    ServerConfig    `yaml:"server"`
}

// HydrationConfig tunes the client hydration pipeline.
type HydrationConfig struct {
	// NearThresholdPx classifies elements within this distance of the
	// viewport edge as near-visible.
	NearThresholdPx int `yaml:"nearThresholdPx,omitempty"`
	// FrameBudget caps how many hydration tasks one scheduler slot runs.
	FrameBudget int `yaml:"frameBudget,omitempty"`
}

// CallbackConfig tunes the callback registry.
type CallbackConfig struct {
	// TTL evicts registry entries older than this; zero keeps them until
	// an explicit clear.
	TTL Duration `yaml:"ttl,omitempty"`
}

// Duration decodes Go duration strings ("30m", "1h") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// String returns the time.Duration string form.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// ServerConfig contains server settings for the dev CLI.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Hydration: HydrationConfig{
			NearThresholdPx: 200,
			FrameBudget:     4,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadOptional reads summon.yaml from dir if present, applying defaults for
// anything unset. A missing file is not an error.
func LoadOptional(dir string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, "summon.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read summon.yaml: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse summon.yaml: %w", err)
	}

	if cfg.Hydration.NearThresholdPx <= 0 {
		cfg.Hydration.NearThresholdPx = 200
	}
	if cfg.Hydration.FrameBudget <= 0 {
		cfg.Hydration.FrameBudget = 4
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return cfg, nil
}
