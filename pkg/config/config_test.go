package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mechtrainer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
window:
  title: Reducer lab
geometry:
  mesh_cells: 48
interaction:
  snap_threshold: 2.5
engine:
  eval_timeout: 2s
log:
  level: debug
  format: json
metrics:
  addr: ":9102"
courses:
  dir: ./courses
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Reducer lab", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width, "unset keys keep their default")
	assert.Equal(t, 48, cfg.Geometry.MeshCells)
	assert.Equal(t, 2.5, cfg.Interaction.SnapThreshold)
	assert.Equal(t, 6.0, cfg.Interaction.AnnotationDelayBase)
	assert.Equal(t, 2*time.Second, cfg.Engine.EvalTimeout)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
	assert.Equal(t, "./courses", cfg.Courses.Dir)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "geometry:\n  mesh_cells: 48\n")
	t.Setenv("MECHTRAINER_MESH_CELLS", "64")
	t.Setenv("MECHTRAINER_SNAP_THRESHOLD", "4")
	t.Setenv("MECHTRAINER_EVAL_TIMEOUT", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Geometry.MeshCells)
	assert.Equal(t, 4.0, cfg.Interaction.SnapThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.EvalTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	_, err = Load(writeFile(t, "window: [unclosed"))
	assert.ErrorContains(t, err, "parsing config")

	t.Setenv("MECHTRAINER_WINDOW_WIDTH", "wide")
	_, err = Load("")
	assert.ErrorContains(t, err, "decoding environment")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"window", func(c *Config) { c.Window.Height = 0 }, "window"},
		{"mesh cells", func(c *Config) { c.Geometry.MeshCells = 0 }, "mesh_cells"},
		{"snap threshold", func(c *Config) { c.Interaction.SnapThreshold = -1 }, "snap_threshold"},
		{"delay base", func(c *Config) { c.Interaction.AnnotationDelayBase = -1 }, "annotation_delay_base"},
		{"timeout", func(c *Config) { c.Engine.EvalTimeout = 0 }, "eval_timeout"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
