package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoPathGivesDefaults(t *testing.T) {
	t.Setenv("VOXEL4D_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
world:
  size: 48
  seed: 7
physics:
  gravity: 3.5
  size: [0.25, 0.25, 0.5]
eventbus:
  url: nats://localhost:4222
`), 0o644))

	t.Setenv("VOXEL4D_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 48, cfg.World.Size)
	assert.Equal(t, int64(7), cfg.World.Seed)
	assert.Equal(t, 0.08, cfg.World.NoiseScale)
	assert.Equal(t, 3.5, cfg.Physics.Gravity)
	assert.Equal(t, [3]float64{0.25, 0.25, 0.5}, cfg.Physics.Size)
	assert.Equal(t, 20.0, cfg.Physics.MovementAcceleration)
	assert.Equal(t, "nats://localhost:4222", cfg.EventBus.URL)
	assert.Equal(t, "VOXEL4D", cfg.EventBus.Stream)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view:\n  size: 100\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "view.size")

	require.NoError(t, os.WriteFile(path, []byte("world: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestServerConfig_PortFallback(t *testing.T) {
	s := ServerConfig{BridgePort: 9000}
	assert.Equal(t, 9000, s.GetBridgePort())

	s = ServerConfig{}
	t.Setenv("VOXEL4D_BRIDGE_PORT", "9100")
	t.Setenv("VOXEL4D_METRICS_PORT", "nope")
	assert.Equal(t, 9100, s.GetBridgePort())
	assert.Equal(t, 2112, s.GetMetricsPort())
}

func TestLogConfig_ComponentLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  console: error
  components:
    bridge:
      file: trace
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, LogLevelConfig{Console: "error", File: "trace"}, cfg.Log.LevelsFor("bridge"))
	assert.Equal(t, LogLevelConfig{Console: "warn", File: "debug"}, cfg.Log.LevelsFor("physics"))
	assert.Equal(t, LogLevelConfig{Console: "error", File: "debug"}, cfg.Log.LevelsFor("viewer"))
}
