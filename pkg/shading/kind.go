package shading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/orrery/pkg/render"
)

// Kind names one shading variant.
type Kind uint8

const (
	KindTemperate Kind = iota
	KindIcy
	KindDesert
	KindOceanic
	KindJungle
	KindVolcanic
	KindPrimordial
	KindRing
	KindMoon
	KindShip
	KindSun
)

var kindNames = [...]string{
	KindTemperate:  "temperate",
	KindIcy:        "icy",
	KindDesert:     "desert",
	KindOceanic:    "oceanic",
	KindJungle:     "jungle",
	KindVolcanic:   "volcanic",
	KindPrimordial: "primordial",
	KindRing:       "ring",
	KindMoon:       "moon",
	KindShip:       "ship",
	KindSun:        "sun",
}

// ErrUnknownKind is returned by ParseKind.
var ErrUnknownKind = errors.New("unknown shader kind")

// Kinds returns every variant in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses a variant name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("parse kind %q: %w", s, ErrUnknownKind)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Preset is the default look of one variant: its shader, material colors
// and noise parameters. Adjust the fields and call Material to build.
type Preset struct {
	Kind   Kind
	Shader render.Shader

	Base       render.Color
	Accent     render.Color
	Atmosphere render.Color

	AtmosphereStrength float64
	Emission           float64
	Ambient            float64

	// Terrain and Detail are nil when the variant does not use the field.
	Terrain *NoiseParams
	Detail  *NoiseParams
}

// Material builds a fresh material, with its own noise generators.
func (p Preset) Material(name string) *render.Material {
	m := &render.Material{
		Name:               name,
		Base:               p.Base,
		Accent:             p.Accent,
		Atmosphere:         p.Atmosphere,
		AtmosphereStrength: p.AtmosphereStrength,
		Emission:           p.Emission,
		Ambient:            p.Ambient,
	}
	if p.Terrain != nil {
		m.Terrain = NewField(*p.Terrain)
	}
	if p.Detail != nil {
		m.Detail = NewField(*p.Detail)
	}
	return m
}

// PresetFor returns the default preset for k. Unknown kinds fall back to
// the temperate preset.
func PresetFor(k Kind) Preset {
	switch k {
	case KindIcy:
		return Preset{
			Kind:               k,
			Shader:             Icy{Bands: 6},
			Atmosphere:         render.RGB(0.6, 0.9, 1),
			AtmosphereStrength: 0.5,
			Ambient:            0.08,
			Terrain: &NoiseParams{
				Seed: 2021, Basis: BasisSimplex, Fractal: FractalRidged,
				Frequency: 0.2, Octaves: 4, Gain: 0.4,
			},
		}
	case KindDesert:
		return Preset{
			Kind:               k,
			Shader:             Desert{PolarCap: 0.12},
			Atmosphere:         render.RGB(0.9, 0.55, 0.35),
			AtmosphereStrength: 0.25,
			Ambient:            0.06,
			Terrain: &NoiseParams{
				Seed: 1234, Basis: BasisPerlin, Fractal: FractalRidged,
				Frequency: 1.5, Octaves: 4,
			},
		}
	case KindOceanic:
		return Preset{
			Kind:               k,
			Shader:             Oceanic{SeaLevel: 0.72, CloudCover: 0.35},
			Atmosphere:         render.RGB(0.35, 0.65, 1),
			AtmosphereStrength: 0.7,
			Ambient:            0.07,
			Terrain: &NoiseParams{
				Seed: 2468, Basis: BasisSimplex, Fractal: FractalFBm,
				Frequency: 1.2, Octaves: 4,
			},
			Detail: &NoiseParams{
				Seed: 41, Basis: BasisPerlin, Fractal: FractalFBm,
				Frequency: 2.5, Octaves: 2,
			},
		}
	case KindJungle:
		return Preset{
			Kind:               k,
			Shader:             Jungle{SeaLevel: 0.3, CloudCover: 0.55},
			Atmosphere:         render.RGB(0.5, 0.85, 0.7),
			AtmosphereStrength: 0.6,
			Ambient:            0.07,
			Terrain: &NoiseParams{
				Seed: 9753, Basis: BasisSimplex, Fractal: FractalFBm,
				Frequency: 2, Octaves: 5,
			},
			Detail: &NoiseParams{
				Seed: 42, Basis: BasisPerlin, Fractal: FractalFBm,
				Frequency: 3, Octaves: 3,
			},
		}
	case KindVolcanic:
		return Preset{
			Kind:               k,
			Shader:             Volcanic{LavaLevel: 0.62},
			Atmosphere:         render.RGB(0.8, 0.3, 0.1),
			AtmosphereStrength: 0.3,
			Emission:           0.4,
			Ambient:            0.05,
			Terrain: &NoiseParams{
				Seed: 4321, Basis: BasisPerlin, Fractal: FractalPingPong,
				Frequency: 5, Octaves: 5, Gain: 1,
			},
			Detail: &NoiseParams{
				Seed: 4322, Basis: BasisSimplex, Fractal: FractalRidged,
				Frequency: 2.5, Octaves: 3,
			},
		}
	case KindPrimordial:
		return Preset{
			Kind:               k,
			Shader:             Primordial{Bands: 14, Turbulence: 0.6},
			Accent:             render.Hex(0xb8452a),
			Atmosphere:         render.RGB(0.95, 0.8, 0.6),
			AtmosphereStrength: 0.35,
			Ambient:            0.06,
			Terrain: &NoiseParams{
				Seed: 5678, Basis: BasisSimplex, Fractal: FractalDomainWarp,
				Frequency: 2, Octaves: 6,
			},
			Detail: &NoiseParams{
				Seed: 7890, Basis: BasisSimplex, Fractal: FractalFBm,
				Frequency: 1, Octaves: 3,
			},
		}
	case KindRing:
		return Preset{
			Kind:    k,
			Shader:  Ring{Gaps: 7},
			Ambient: 0.12,
			Detail: &NoiseParams{
				Seed: 3141, Basis: BasisPerlin, Fractal: FractalFBm,
				Frequency: 8, Octaves: 2,
			},
		}
	case KindMoon:
		return Preset{
			Kind:    k,
			Shader:  Moon{Craters: 0.3},
			Ambient: 0.04,
			Terrain: &NoiseParams{
				Seed: 4321, Basis: BasisSimplex, Fractal: FractalPingPong,
				Frequency: 3, Octaves: 2,
			},
		}
	case KindShip:
		return Preset{
			Kind:     k,
			Shader:   Ship{Panels: 6, EngineZ: 0.8},
			Base:     render.RGB(0.72, 0.74, 0.78),
			Accent:   render.RGB(0.3, 0.8, 1),
			Emission: 1,
			Ambient:  0.15,
		}
	case KindSun:
		return Preset{
			Kind:               k,
			Shader:             Sun{Speed: 0.05},
			Atmosphere:         render.RGB(1, 0.6, 0.2),
			AtmosphereStrength: 0.6,
			Emission:           1.3,
			Ambient:            1,
			Terrain: &NoiseParams{
				Seed: 7, Basis: BasisSimplex, Fractal: FractalFBm,
				Frequency: 3, Octaves: 4,
			},
		}
	default:
		return Preset{
			Kind:               KindTemperate,
			Shader:             Temperate{SeaLevel: 0.5, CloudCover: 0.45},
			Atmosphere:         render.RGB(0.4, 0.65, 1),
			AtmosphereStrength: 0.6,
			Ambient:            0.07,
			Terrain: &NoiseParams{
				Seed: 1337, Basis: BasisSimplex, Fractal: FractalRidged,
				Frequency: 0.5, Octaves: 5, Lacunarity: 3, Gain: 0.5,
			},
			Detail: &NoiseParams{
				Seed: 40, Basis: BasisPerlin, Fractal: FractalFBm,
				Frequency: 2.5, Octaves: 2,
			},
		}
	}
}
