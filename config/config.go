// Package config loads the per-deployment override file. The file is
// plain key/value TOML; it tunes policy (runtime preference, fallback
// fidelity, timeouts) and never participates in the core algorithms.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath names the environment variable pointing at an override
// file. Unset means defaults.
const EnvConfigPath = "XRBRIDGE_CONFIG"

// Config is the deployment override set.
type Config struct {
	// Runtime pins a registered runtime by name; empty selects by
	// registry priority.
	Runtime string `toml:"runtime"`

	// Backend pins the graphics backend ("wgpu" or "headless"); empty
	// means detect from the application's device provider.
	Backend string `toml:"backend"`

	// DisableEventDrain turns the background runtime-event goroutine
	// off; state transitions are then only observed on the
	// application's own event pump.
	DisableEventDrain bool `toml:"disable_event_drain"`

	// FrameTimeoutMultiplier scales the runtime frame interval into the
	// bound applied to blocking frame waits.
	FrameTimeoutMultiplier float64 `toml:"frame_timeout_multiplier"`

	Fallback Fallback `toml:"fallback"`
}

// Fallback tunes the generic-profile degradation for controllers the
// engine has no binding table for.
type Fallback struct {
	// Components lists which legacy controls survive the fallback.
	// Recognized values: "trigger", "menu", "pose", "haptic".
	Components []string `toml:"components"`
}

// Default returns the documented default configuration: every fallback
// component enabled, frame waits bounded at twice the frame interval.
func Default() *Config {
	return &Config{
		FrameTimeoutMultiplier: 2.0,
		Fallback: Fallback{
			Components: []string{"trigger", "menu", "pose", "haptic"},
		},
	}
}

// Load reads an override file over the defaults. A missing path is not
// an error; an unreadable or malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.FrameTimeoutMultiplier <= 0 {
		cfg.FrameTimeoutMultiplier = 2.0
	}
	return cfg, nil
}

// FallbackHas reports whether a fallback component is enabled.
func (c *Config) FallbackHas(name string) bool {
	for _, comp := range c.Fallback.Components {
		if comp == name {
			return true
		}
	}
	return false
}
