// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Accel limiter modes.
const (
	LimitTwoSided = "two_sided"
	LimitOneSided = "one_sided"
)

// Boundary policies.
const (
	BoundaryWrap   = "wrap"
	BoundaryBounce = "bounce"
)

// Render drivers.
const (
	DriverRaylib   = "raylib"
	DriverTerminal = "terminal"
	DriverHeadless = "headless"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Particles ParticlesConfig `yaml:"particles"`
	Workers   WorkersConfig   `yaml:"workers"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds viewport dimensions. The viewport is also the world.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ParticlesConfig holds population and appearance settings.
type ParticlesConfig struct {
	Count    int       `yaml:"count"`
	Alpha    float64   `yaml:"alpha"`
	Size     float64   `yaml:"size"`
	ColorMin []float64 `yaml:"color_min"` // r, g, b lower bound of the color band
	ColorMax []float64 `yaml:"color_max"` // r, g, b upper bound of the color band
}

// WorkersConfig holds integrator worker settings.
type WorkersConfig struct {
	Count        int     `yaml:"count"`         // 0 = GOMAXPROCS
	TickInterval float64 `yaml:"tick_interval"` // seconds; also the frame interval
}

// PhysicsConfig holds integrator parameters.
type PhysicsConfig struct {
	Friction       float64 `yaml:"friction"`         // fluid friction coefficient
	AccelLimit     float64 `yaml:"accel_limit"`      // attractor acceleration limiter
	AccelLimitMode string  `yaml:"accel_limit_mode"` // two_sided or one_sided
	MaxSpeed       float64 `yaml:"max_speed"`        // per-axis speed limiter, 0 = none
	Gravity        float64 `yaml:"gravity"`          // G
	Mass           float64 `yaml:"mass"`             // attractor mass M
	MinDistance    float64 `yaml:"min_distance"`     // distance floor for the inverse square
	Boundary       string  `yaml:"boundary"`         // wrap (bounce is reserved)
	TimeScale      float64 `yaml:"time_scale"`       // simulated units per wall second
}

// RenderConfig holds display settings.
type RenderConfig struct {
	Driver string  `yaml:"driver"`
	Trails bool    `yaml:"trails"`
	Fade   float64 `yaml:"fade"` // fraction of the previous frame kept each frame
	HUD    bool    `yaml:"hud"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds between stats samples
	PerfWindow  int     `yaml:"perf_window"`  // frames in the perf rolling window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Width32      float32
	Height32     float32
	NumWorkers   int
	TickInterval time.Duration
	StatsWindow  time.Duration
	MinDist2     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not parse,
// which can only happen if defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen must be positive, got %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	case c.Particles.Count < 1:
		return fmt.Errorf("%w: particles.count must be >= 1, got %d", ErrInvalid, c.Particles.Count)
	case len(c.Particles.ColorMin) != 3 || len(c.Particles.ColorMax) != 3:
		return fmt.Errorf("%w: particles.color_min and color_max need 3 components", ErrInvalid)
	case c.Workers.Count < 0:
		return fmt.Errorf("%w: workers.count must be >= 0, got %d", ErrInvalid, c.Workers.Count)
	case c.Workers.TickInterval <= 0:
		return fmt.Errorf("%w: workers.tick_interval must be positive", ErrInvalid)
	case c.Physics.Friction < 0:
		return fmt.Errorf("%w: physics.friction must be >= 0", ErrInvalid)
	case c.Physics.AccelLimit <= 0:
		return fmt.Errorf("%w: physics.accel_limit must be positive", ErrInvalid)
	case c.Physics.AccelLimitMode != LimitTwoSided && c.Physics.AccelLimitMode != LimitOneSided:
		return fmt.Errorf("%w: physics.accel_limit_mode %q", ErrInvalid, c.Physics.AccelLimitMode)
	case c.Physics.MaxSpeed < 0:
		return fmt.Errorf("%w: physics.max_speed must be >= 0", ErrInvalid)
	case c.Physics.MinDistance <= 0:
		return fmt.Errorf("%w: physics.min_distance must be positive", ErrInvalid)
	case c.Physics.TimeScale <= 0:
		return fmt.Errorf("%w: physics.time_scale must be positive", ErrInvalid)
	case c.Render.Fade < 0 || c.Render.Fade > 1:
		return fmt.Errorf("%w: render.fade must be in [0,1]", ErrInvalid)
	}

	switch c.Physics.Boundary {
	case BoundaryWrap:
	case BoundaryBounce:
		return fmt.Errorf("%w: physics.boundary %q is reserved and not implemented", ErrInvalid, BoundaryBounce)
	default:
		return fmt.Errorf("%w: physics.boundary %q", ErrInvalid, c.Physics.Boundary)
	}

	switch c.Render.Driver {
	case DriverRaylib, DriverTerminal, DriverHeadless:
	default:
		return fmt.Errorf("%w: render.driver %q", ErrInvalid, c.Render.Driver)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Width32 = float32(c.Screen.Width)
	c.Derived.Height32 = float32(c.Screen.Height)

	workers := c.Workers.Count
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	// More workers than particles would leave empty ranges
	if workers > c.Particles.Count {
		workers = c.Particles.Count
	}
	c.Derived.NumWorkers = workers

	c.Derived.TickInterval = time.Duration(c.Workers.TickInterval * float64(time.Second))
	c.Derived.StatsWindow = time.Duration(c.Telemetry.StatsWindow * float64(time.Second))
	c.Derived.MinDist2 = float32(c.Physics.MinDistance * c.Physics.MinDistance)
}

// Refresh re-validates and recomputes derived values after in-code edits.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
