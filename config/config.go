// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen     ScreenConfig    `yaml:"screen"`
	Physics    PhysicsConfig   `yaml:"physics"`
	Controller MovementConfig  `yaml:"controller"`
	Player     PlayerConfig    `yaml:"player"`
	Ground     GroundConfig    `yaml:"ground"`
	Balls      BallsConfig     `yaml:"balls"`
	Light      LightConfig     `yaml:"light"`
	Camera     CameraConfig    `yaml:"camera"`
	Input      InputConfig     `yaml:"input"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML sequence of three numbers.
type Vec3 [3]float64

// R3 converts to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// RGB is a YAML sequence of three 0-255 channel values.
type RGB [3]int

// Channels returns the values clamped to bytes.
func (c RGB) Channels() (r, g, b uint8) {
	return channel(c[0]), channel(c[1]), channel(c[2])
}

func channel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	TargetFPS   int    `yaml:"target_fps"`
	Title       string `yaml:"title"`
	ShowFPS     bool   `yaml:"show_fps"`
	FPSFontSize int    `yaml:"fps_font_size"`
}

// PhysicsConfig holds solver parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`          // fixed step for headless runs
	MaxDT            float64 `yaml:"max_dt"`      // clamp for measured frame time
	KillHeight       float64 `yaml:"kill_height"` // bodies below this are removed or respawned
	Gravity          Vec3    `yaml:"gravity"`
	SolverIterations int     `yaml:"solver_iterations"`
	Friction         float64 `yaml:"friction"`
}

// MovementConfig holds character controller tuning.
// The caster and gravity fields are only read from the controller section.
type MovementConfig struct {
	Acceleration      float64  `yaml:"acceleration"`
	Damping           float64  `yaml:"damping"`
	JumpImpulse       float64  `yaml:"jump_impulse"`
	MaxSlopeDeg       *float64 `yaml:"max_slope_deg"` // nil = any contact grounds
	Gravity           Vec3     `yaml:"gravity,omitempty"`
	CasterScale       float64  `yaml:"caster_scale,omitempty"`
	CasterMaxDistance float64  `yaml:"caster_max_distance,omitempty"`
}

// MaxSlopeRadians returns the slope limit in radians and whether one is set.
func (m MovementConfig) MaxSlopeRadians() (float64, bool) {
	if m.MaxSlopeDeg == nil {
		return 0, false
	}
	return *m.MaxSlopeDeg * math.Pi / 180, true
}

// PlayerConfig holds the player body.
type PlayerConfig struct {
	Size     Vec3           `yaml:"size"`
	Spawn    Vec3           `yaml:"spawn"`
	Color    RGB            `yaml:"color"`
	Density  float64        `yaml:"density"`
	Gravity  Vec3           `yaml:"gravity"`
	Movement MovementConfig `yaml:"movement"`
}

// GroundConfig holds the static ground disc.
type GroundConfig struct {
	Radius      float64 `yaml:"radius"`
	Height      float64 `yaml:"height"`
	RotationDeg float64 `yaml:"rotation_deg"`
	Texture     string  `yaml:"texture"`
	Color       RGB     `yaml:"color"`
}

// BallsConfig holds the free dynamic spheres.
type BallsConfig struct {
	Count    int     `yaml:"count"`
	Radius   float64 `yaml:"radius"`
	Density  float64 `yaml:"density"`
	Friction float64 `yaml:"friction"`
	Spawn    Vec3    `yaml:"spawn"`
	Spacing  float64 `yaml:"spacing"`
	Color    RGB     `yaml:"color"`
}

// LightConfig holds the point light.
type LightConfig struct {
	Position  Vec3    `yaml:"position"`
	Intensity float64 `yaml:"intensity"`
	Shadows   bool    `yaml:"shadows"`
}

// CameraConfig holds orbit camera limits and speeds.
type CameraConfig struct {
	Radius           float64 `yaml:"radius"`
	MinRadius        float64 `yaml:"min_radius"`
	MaxRadius        float64 `yaml:"max_radius"`
	YawDeg           float64 `yaml:"yaw_deg"`
	PitchDeg         float64 `yaml:"pitch_deg"`
	MinPitchDeg      float64 `yaml:"min_pitch_deg"`
	MaxPitchDeg      float64 `yaml:"max_pitch_deg"`
	OrbitSpeed       float64 `yaml:"orbit_speed"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	ZoomStep         float64 `yaml:"zoom_step"`
	FovY             float64 `yaml:"fovy"`
}

// InputConfig holds key bindings by key name (e.g. "W", "SPACE", "UP").
type InputConfig struct {
	Forward  string `yaml:"forward"`
	Backward string `yaml:"backward"`
	Left     string `yaml:"left"`
	Right    string `yaml:"right"`
	Jump     string `yaml:"jump"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32            float32 // Physics.DT as float32
	EngineGravity   r3.Vec
	ControllerGrav  r3.Vec
	PlayerGravity   r3.Vec
	GroundRotation  float64 // radians about Y
	CameraYaw       float64 // radians
	CameraPitch     float64
	CameraMinPitch  float64
	CameraMaxPitch  float64
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT))
	}
	if c.Physics.MaxDT <= 0 {
		errs = append(errs, fmt.Errorf("physics.max_dt must be positive, got %g", c.Physics.MaxDT))
	}
	if c.Physics.SolverIterations < 1 {
		errs = append(errs, fmt.Errorf("physics.solver_iterations must be at least 1, got %d", c.Physics.SolverIterations))
	}
	errs = append(errs, validateMovement("controller", c.Controller)...)
	errs = append(errs, validateMovement("player.movement", c.Player.Movement)...)
	if s := c.Controller.CasterScale; s <= 0 || s > 1 {
		errs = append(errs, fmt.Errorf("controller.caster_scale must be in (0,1], got %g", s))
	}
	if c.Controller.CasterMaxDistance < 0 {
		errs = append(errs, fmt.Errorf("controller.caster_max_distance must not be negative, got %g", c.Controller.CasterMaxDistance))
	}
	if c.Camera.MinRadius <= 0 || c.Camera.MinRadius > c.Camera.MaxRadius {
		errs = append(errs, fmt.Errorf("camera radius limits invalid: [%g, %g]", c.Camera.MinRadius, c.Camera.MaxRadius))
	}
	if c.Balls.Count < 0 {
		errs = append(errs, fmt.Errorf("balls.count must not be negative, got %d", c.Balls.Count))
	}
	return errors.Join(errs...)
}

func validateMovement(section string, m MovementConfig) []error {
	var errs []error
	if m.Damping <= 0 || m.Damping >= 1 {
		errs = append(errs, fmt.Errorf("%s.damping must be in (0,1), got %g", section, m.Damping))
	}
	if m.Acceleration < 0 {
		errs = append(errs, fmt.Errorf("%s.acceleration must not be negative, got %g", section, m.Acceleration))
	}
	if m.MaxSlopeDeg != nil && (*m.MaxSlopeDeg < 0 || *m.MaxSlopeDeg > 180) {
		errs = append(errs, fmt.Errorf("%s.max_slope_deg must be in [0,180], got %g", section, *m.MaxSlopeDeg))
	}
	return errs
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	const deg = math.Pi / 180
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.EngineGravity = c.Physics.Gravity.R3()
	c.Derived.ControllerGrav = c.Controller.Gravity.R3()
	c.Derived.PlayerGravity = c.Player.Gravity.R3()
	c.Derived.GroundRotation = c.Ground.RotationDeg * deg
	c.Derived.CameraYaw = c.Camera.YawDeg * deg
	c.Derived.CameraPitch = c.Camera.PitchDeg * deg
	c.Derived.CameraMinPitch = c.Camera.MinPitchDeg * deg
	c.Derived.CameraMaxPitch = c.Camera.MaxPitchDeg * deg
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
