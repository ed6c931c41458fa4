package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
)

const (
	DefaultFPS         = 50
	DefaultTimeScale   = 60 * 60 * 8
	DefaultScale       = 0.0000016
	DefaultMinRenderPx = 2.0
	DefaultEpsilon     = physics.DefaultEpsilon
	DefaultRecordEvery = 10
	DefaultPreset      = "earth_moon"
)

type Config struct {
	Name                  string       `yaml:"name"`
	FPS                   int          `yaml:"fps"`
	TimeScale             float64      `yaml:"time_scale"`
	Scale                 float64      `yaml:"scale"`
	MinRenderPx           float64      `yaml:"min_render_px"`
	DistanceEpsilon       float64      `yaml:"distance_epsilon"`
	GravitationalConstant float64      `yaml:"gravitational_constant,omitempty"`
	EnableZAxis           bool         `yaml:"enable_z_axis"`
	Origin                string       `yaml:"origin,omitempty"`
	Lock                  string       `yaml:"lock,omitempty"`
	ValidateState         bool         `yaml:"validate_state"`
	RecordEvery           int          `yaml:"record_every"`
	Bodies                []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name     string  `yaml:"name"`
	Color    string  `yaml:"color,omitempty"`
	Mass     float64 `yaml:"mass"`
	Radius   float64 `yaml:"radius"`
	Position Vector  `yaml:"position,flow"`
	Velocity Vector  `yaml:"velocity,flow"`
}

type Vector struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z,omitempty"`
}

func (v Vector) Vec3() dynamo.Vec3 { return dynamo.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func DefaultConfig() *Config {
	return GetPreset(DefaultPreset)
}

// Load reads a YAML file over the default settings. Bodies and the names
// that refer to them (origin, lock) come only from the file; a file without
// a name is named after itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Name, cfg.Origin, cfg.Lock, cfg.Bodies = "", "", "", nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dt is the simulated time advanced per tick.
func (c *Config) Dt() float64 {
	return c.TimeScale / float64(c.FPS)
}

// Period is the wall-clock interval between ticks.
func (c *Config) Period() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// G returns the configured gravitational constant, or the physical one when
// unset.
func (c *Config) G() float64 {
	if c.GravitationalConstant == 0 {
		return physics.G
	}
	return c.GravitationalConstant
}

func (c *Config) PhysicsOptions() physics.Options {
	return physics.Options{
		G:           c.G(),
		Epsilon:     c.DistanceEpsilon,
		EnableZAxis: c.EnableZAxis,
	}
}

func (c *Config) ToBodies() []dynamo.Body {
	bodies := make([]dynamo.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		bodies[i] = dynamo.Body{
			Name:     b.Name,
			Mass:     b.Mass,
			Radius:   b.Radius,
			Position: b.Position.Vec3(),
			Velocity: b.Velocity.Vec3(),
		}
	}
	return bodies
}

// Colors maps body names to their configured colors for renderers.
func (c *Config) Colors() map[string]string {
	colors := make(map[string]string, len(c.Bodies))
	for _, b := range c.Bodies {
		if b.Color != "" {
			colors[b.Name] = b.Color
		}
	}
	return colors
}

// OriginPosition is the initial position of the origin body, or the world
// origin when none is configured.
func (c *Config) OriginPosition() dynamo.Vec3 {
	for _, b := range c.Bodies {
		if b.Name == c.Origin {
			return b.Position.Vec3()
		}
	}
	return dynamo.Vec3{}
}

func (c *Config) Body(name string) (BodyConfig, bool) {
	for _, b := range c.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyConfig{}, false
}

// Validate rejects configurations that would put NaN or Inf into the
// simulation.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", dynamo.ErrInvalidConfig, c.FPS)
	}
	if !positive(c.TimeScale) {
		return fmt.Errorf("%w: time_scale must be positive, got %g", dynamo.ErrInvalidConfig, c.TimeScale)
	}
	if !positive(c.Scale) {
		return fmt.Errorf("%w: scale must be positive, got %g", dynamo.ErrInvalidConfig, c.Scale)
	}
	if !finite(c.MinRenderPx) || c.MinRenderPx < 0 {
		return fmt.Errorf("%w: min_render_px must be non-negative, got %g", dynamo.ErrInvalidConfig, c.MinRenderPx)
	}
	if !positive(c.DistanceEpsilon) {
		return fmt.Errorf("%w: distance_epsilon must be positive, got %g", dynamo.ErrInvalidConfig, c.DistanceEpsilon)
	}
	if c.GravitationalConstant != 0 && !positive(c.GravitationalConstant) {
		return fmt.Errorf("%w: gravitational_constant must be positive, got %g", dynamo.ErrInvalidConfig, c.GravitationalConstant)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("%w: record_every must be non-negative, got %d", dynamo.ErrInvalidConfig, c.RecordEvery)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: at least one body is required", dynamo.ErrInvalidConfig)
	}
	if err := dynamo.ValidateSet(c.ToBodies()); err != nil {
		return err
	}
	for _, ref := range []struct{ field, name string }{{"origin", c.Origin}, {"lock", c.Lock}} {
		if ref.name == "" {
			continue
		}
		if _, ok := c.Body(ref.name); !ok {
			return fmt.Errorf("%w: %s %q", dynamo.ErrUnknownBody, ref.field, ref.name)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	copy(out.Bodies, c.Bodies)
	return &out
}

func positive(f float64) bool { return f > 0 && !math.IsInf(f, 0) }
func finite(f float64) bool   { return !math.IsNaN(f) && !math.IsInf(f, 0) }
