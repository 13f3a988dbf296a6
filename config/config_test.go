package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 30*time.Second, cfg.GetAgentTimeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
storage:
  backend: sqlite
  sqlite_path: /tmp/pm.db
router:
  agent_timeout: 5s
  parallel_fan_out: true
logging:
  backend: zap
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/pm.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "data", cfg.Storage.Dir, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.GetAgentTimeout())
	assert.True(t, cfg.Router.ParallelFanOut)
	assert.Equal(t, 2000.0, cfg.Router.DefaultBudget)
	assert.Equal(t, "zap", cfg.Logging.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PLANMESH_ADDR", "127.0.0.1:7000")
	t.Setenv("PLANMESH_STORAGE_BACKEND", "file")
	t.Setenv("PLANMESH_DATA_DIR", "/var/lib/planmesh")
	t.Setenv("PLANMESH_PARALLEL_FAN_OUT", "true")
	t.Setenv("PLANMESH_DEFAULT_BUDGET", "1500.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join("/var/lib/planmesh", "state"), cfg.StateDir())
	assert.Equal(t, filepath.Join("/var/lib/planmesh", "preferences"), cfg.PreferenceDir())
	assert.True(t, cfg.Router.ParallelFanOut)
	assert.Equal(t, 1500.5, cfg.Router.DefaultBudget)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		t.Setenv("PLANMESH_STORAGE_BACKEND", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid storage backend")
	})
	t.Run("timeout", func(t *testing.T) {
		t.Setenv("PLANMESH_AGENT_TIMEOUT", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "agent_timeout")
	})
	t.Run("bool", func(t *testing.T) {
		t.Setenv("PLANMESH_PARALLEL_FAN_OUT", "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to parse config")
	})
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planmesh.yaml")
	cfg := DefaultConfig()
	cfg.Router.TripNights = 4
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Router.TripNights)
}
