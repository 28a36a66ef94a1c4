// Package config loads and validates orrery's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/postfx"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
	"github.com/taigrr/orrery/pkg/shading"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the whole configuration surface.
type Config struct {
	// Width and Height size the headless framebuffer. The terminal viewer
	// sizes itself from the terminal instead.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
	// Workers bounds rasterization parallelism; 0 uses GOMAXPROCS.
	Workers    int `yaml:"workers"`
	TileHeight int `yaml:"tile_height"`
	// Background is a hex color, "#rrggbb".
	Background string `yaml:"background"`

	Camera Camera `yaml:"camera"`
	Light  Light  `yaml:"light"`
	Bloom  Bloom  `yaml:"bloom"`

	Orbits bool `yaml:"orbits"`
	Ship   Ship `yaml:"ship"`

	// Bodies replaces the default solar system when non-empty.
	Bodies []Body `yaml:"bodies,omitempty"`
}

// Camera holds projection settings.
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV  float64 `yaml:"fov"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// Light is the fallback directional light, used when the system has no sun.
type Light struct {
	Direction []float64 `yaml:"direction,flow"`
}

// Bloom mirrors postfx.Bloom.
type Bloom struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
	Radius    int     `yaml:"radius"`
	Sigma     float64 `yaml:"sigma"`
	Strength  float64 `yaml:"strength"`
}

// Ship configures the ship that follows the camera.
type Ship struct {
	Visible bool    `yaml:"visible"`
	Scale   float64 `yaml:"scale"`
	// Model is an optional GLB file replacing the built-in ship.
	Model string `yaml:"model,omitempty"`
}

// Body is one body of a custom system.
type Body struct {
	Name      string       `yaml:"name"`
	Kind      shading.Kind `yaml:"kind"`
	Parent    string       `yaml:"parent,omitempty"`
	Orbit     float64      `yaml:"orbit"`
	Speed     float64      `yaml:"speed"`
	Phase     float64      `yaml:"phase,omitempty"`
	Scale     float64      `yaml:"scale"`
	Spin      float64      `yaml:"spin,omitempty"`
	Collision float64      `yaml:"collision"`
	Ring      bool         `yaml:"ring,omitempty"`
	Noise     *Noise       `yaml:"noise,omitempty"`
}

// Noise overrides the terrain noise of a body's preset. Zero fields keep
// the preset's value.
type Noise struct {
	Seed      *int64  `yaml:"seed,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty"`
	Octaves   int     `yaml:"octaves,omitempty"`
}

// Default returns the stock configuration.
func Default() *Config {
	b := postfx.DefaultBloom()
	return &Config{
		Width:      320,
		Height:     180,
		FPS:        30,
		TileHeight: render.DefaultTileHeight,
		Background: "#000000",
		Camera:     Camera{FOV: 45, Near: 0.1, Far: 1000},
		Light:      Light{Direction: []float64{0, 1, 0}},
		Bloom: Bloom{
			Enabled:   true,
			Threshold: b.Threshold,
			Radius:    b.Radius,
			Sigma:     b.Sigma,
			Strength:  b.Strength,
		},
		Orbits: true,
		Ship:   Ship{Visible: true, Scale: scene.DefaultShipScale},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected; an empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return invalid("resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return invalid("fps %d", c.FPS)
	}
	if c.Workers < 0 || c.TileHeight < 0 {
		return invalid("workers %d, tile height %d", c.Workers, c.TileHeight)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return invalid("camera fov %g", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return invalid("camera clip planes %g..%g", c.Camera.Near, c.Camera.Far)
	}
	if len(c.Light.Direction) != 3 || c.LightDir() == (math3d.Vec3{}) {
		return invalid("light direction %v", c.Light.Direction)
	}
	if c.Bloom.Radius < 0 || c.Bloom.Sigma < 0 || c.Bloom.Strength < 0 {
		return invalid("bloom radius %d, sigma %g, strength %g", c.Bloom.Radius, c.Bloom.Sigma, c.Bloom.Strength)
	}
	if c.Ship.Scale < 0 {
		return invalid("ship scale %g", c.Ship.Scale)
	}
	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return invalid("body %d: missing name", i)
		}
		if seen[b.Name] {
			return invalid("body %q: duplicate name", b.Name)
		}
		if b.Parent != "" && !seen[b.Parent] {
			return invalid("body %q: parent %q must be listed first", b.Name, b.Parent)
		}
		seen[b.Name] = true
		if b.Scale <= 0 || b.Orbit < 0 || b.Collision < 0 {
			return invalid("body %q: scale %g, orbit %g, collision %g", b.Name, b.Scale, b.Orbit, b.Collision)
		}
		if n := b.Noise; n != nil && (n.Frequency < 0 || n.Octaves < 0) {
			return invalid("body %q: noise frequency %g, octaves %d", b.Name, n.Frequency, n.Octaves)
		}
	}
	return nil
}

// ParseColor parses "#rrggbb", "rrggbb" or "r,g,b" with 8-bit channels.
func ParseColor(s string) (render.Color, error) {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, ","); len(parts) == 3 {
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return render.Color{}, invalid("color %q", s)
			}
			ch[i] = uint8(v)
		}
		return render.RGB8(ch[0], ch[1], ch[2]), nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return render.Color{}, invalid("color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return render.Color{}, invalid("color %q", s)
	}
	return render.Hex(uint32(v)), nil
}

// BackgroundColor returns the parsed background, black if it is invalid.
func (c *Config) BackgroundColor() render.Color {
	col, err := ParseColor(c.Background)
	if err != nil {
		return render.Black
	}
	return col
}

// LightDir returns the unit light direction.
func (c *Config) LightDir() math3d.Vec3 {
	if len(c.Light.Direction) != 3 {
		return math3d.Up()
	}
	d := c.Light.Direction
	v := math3d.V3(d[0], d[1], d[2])
	if v.Len() == 0 || math.IsNaN(v.Len()) {
		return math3d.Vec3{}
	}
	return v.Normalize()
}

// FOVRadians returns the vertical field of view in radians.
func (c *Config) FOVRadians() float64 {
	return c.Camera.FOV * math.Pi / 180
}

// PostFX returns the bloom stage, or nil when bloom is disabled.
func (c *Config) PostFX() *postfx.Bloom {
	if !c.Bloom.Enabled {
		return nil
	}
	return &postfx.Bloom{
		Threshold: c.Bloom.Threshold,
		Radius:    c.Bloom.Radius,
		Sigma:     c.Bloom.Sigma,
		Strength:  c.Bloom.Strength,
	}
}

// BodySpecs converts the configured bodies. An empty list yields nil, which
// makes scene.New fall back to the default system.
func (c *Config) BodySpecs() []scene.BodySpec {
	if len(c.Bodies) == 0 {
		return nil
	}
	out := make([]scene.BodySpec, len(c.Bodies))
	for i, b := range c.Bodies {
		out[i] = scene.BodySpec{
			Name:      b.Name,
			Kind:      b.Kind,
			Parent:    b.Parent,
			Orbit:     b.Orbit,
			Speed:     b.Speed,
			Phase:     b.Phase,
			Scale:     b.Scale,
			Spin:      b.Spin,
			Collision: b.Collision,
			Ring:      b.Ring,
		}
		if b.Noise != nil {
			p := b.Noise.apply(shading.PresetFor(b.Kind))
			out[i].Preset = &p
		}
	}
	return out
}

// apply returns preset with its terrain noise overridden.
func (n *Noise) apply(preset shading.Preset) shading.Preset {
	var t shading.NoiseParams
	if preset.Terrain != nil {
		t = *preset.Terrain
	}
	if n.Seed != nil {
		t.Seed = *n.Seed
	}
	if n.Frequency > 0 {
		t.Frequency = n.Frequency
	}
	if n.Octaves > 0 {
		t.Octaves = n.Octaves
	}
	preset.Terrain = &t
	return preset
}
