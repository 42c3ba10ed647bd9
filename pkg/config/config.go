// Package config loads application settings.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then MECHTRAINER_* environment variables (a .env file in the working
// directory is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Window      Window      `yaml:"window"`
	Geometry    Geometry    `yaml:"geometry"`
	Interaction Interaction `yaml:"interaction"`
	Engine      Engine      `yaml:"engine"`
	Log         Log         `yaml:"log"`
	Metrics     Metrics     `yaml:"metrics"`
	Courses     Courses     `yaml:"courses"`
}

type Window struct {
	Title  string `yaml:"title" env:"MECHTRAINER_WINDOW_TITLE"`
	Width  int    `yaml:"width" env:"MECHTRAINER_WINDOW_WIDTH"`
	Height int    `yaml:"height" env:"MECHTRAINER_WINDOW_HEIGHT"`
}

type Geometry struct {
	// MeshCells is the marching-cubes resolution along the longest axis.
	MeshCells int `yaml:"mesh_cells" env:"MECHTRAINER_MESH_CELLS"`
}

type Interaction struct {
	SnapThreshold float64 `yaml:"snap_threshold" env:"MECHTRAINER_SNAP_THRESHOLD"`
	// AnnotationDelayBase is the height at which the annotation delay
	// reaches zero.
	AnnotationDelayBase float64 `yaml:"annotation_delay_base" env:"MECHTRAINER_ANNOTATION_DELAY_BASE"`
}

type Engine struct {
	EvalTimeout time.Duration `yaml:"eval_timeout" env:"MECHTRAINER_EVAL_TIMEOUT"`
}

type Log struct {
	Level  string `yaml:"level" env:"MECHTRAINER_LOG_LEVEL"`
	Format string `yaml:"format" env:"MECHTRAINER_LOG_FORMAT"`
}

type Metrics struct {
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `yaml:"addr" env:"MECHTRAINER_METRICS_ADDR"`
}

type Courses struct {
	// Dir holds extra course files. Empty means built-in courses only.
	Dir string `yaml:"dir" env:"MECHTRAINER_COURSES_DIR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window:      Window{Title: "Mechanical Assembly Trainer", Width: 1280, Height: 800},
		Geometry:    Geometry{MeshCells: 96},
		Interaction: Interaction{SnapThreshold: 3.5, AnnotationDelayBase: 6},
		Engine:      Engine{EvalTimeout: 5 * time.Second},
		Log:         Log{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error, a missing YAML file named explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decoding environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var (
	logLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true, "panic": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Geometry.MeshCells <= 0:
		return fmt.Errorf("geometry: mesh_cells must be positive, got %d", c.Geometry.MeshCells)
	case c.Interaction.SnapThreshold <= 0:
		return fmt.Errorf("interaction: snap_threshold must be positive, got %g", c.Interaction.SnapThreshold)
	case c.Interaction.AnnotationDelayBase < 0:
		return fmt.Errorf("interaction: annotation_delay_base must not be negative, got %g", c.Interaction.AnnotationDelayBase)
	case c.Engine.EvalTimeout <= 0:
		return fmt.Errorf("engine: eval_timeout must be positive, got %s", c.Engine.EvalTimeout)
	case !logLevels[c.Log.Level]:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	case !logFormats[c.Log.Format]:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	return nil
}
