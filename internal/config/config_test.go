package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Monitor.TickInterval())
	assert.Equal(t, 5*time.Second, cfg.Monitor.LogInterval())
	assert.Equal(t, 60*time.Second, cfg.Monitor.RateWindow())
	assert.Equal(t, 2*time.Second, cfg.Monitor.StatusInterval())
	assert.Equal(t, 2*time.Second, cfg.Monitor.StopTimeout())
	assert.Equal(t, 600, cfg.Monitor.HistoryCapacity)
	assert.Equal(t, 1000, cfg.Monitor.LogCapacity)
	assert.Equal(t, 10, cfg.Recording.FPS)
	assert.Equal(t, 1280, cfg.Recording.MaxWidth)
	assert.Equal(t, 720, cfg.Recording.MaxHeight)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
env: development
log:
  level: debug
monitor:
  tick_interval: 0.5
  log_interval: 1.0
recording:
  fps: 30
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.TickInterval())
	assert.Equal(t, time.Second, cfg.Monitor.LogInterval())
	assert.Equal(t, 30, cfg.Recording.FPS)
	// Untouched sections keep their defaults.
	assert.Equal(t, 600, cfg.Monitor.HistoryCapacity)
}

func TestValidate_Rejects(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Monitor.TickIntervalSec = 0
	assert.Error(t, cfg.Validate())

	cfg.Monitor.TickIntervalSec = 2.0
	cfg.Recording.FPS = 61
	assert.Error(t, cfg.Validate())
}
