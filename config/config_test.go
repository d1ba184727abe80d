package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Runtime)
	assert.Empty(t, cfg.Backend)
	assert.False(t, cfg.DisableEventDrain)
	assert.Equal(t, 2.0, cfg.FrameTimeoutMultiplier)
	for _, comp := range []string{"trigger", "menu", "pose", "haptic"} {
		assert.True(t, cfg.FallbackHas(comp), comp)
	}
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xrbridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
runtime = "fakext"
backend = "headless"
disable_event_drain = true
frame_timeout_multiplier = 4.5

[fallback]
components = ["trigger", "pose"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fakext", cfg.Runtime)
	assert.Equal(t, "headless", cfg.Backend)
	assert.True(t, cfg.DisableEventDrain)
	assert.Equal(t, 4.5, cfg.FrameTimeoutMultiplier)
	assert.True(t, cfg.FallbackHas("trigger"))
	assert.False(t, cfg.FallbackHas("menu"))
	assert.False(t, cfg.FallbackHas("haptic"))
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("runtime = ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadClampsMultiplier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xrbridge.toml")
	require.NoError(t, os.WriteFile(path, []byte("frame_timeout_multiplier = -1.0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.FrameTimeoutMultiplier)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.toml")
	require.NoError(t, os.WriteFile(path, []byte(`runtime = "envrt"`), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "envrt", cfg.Runtime)
}
