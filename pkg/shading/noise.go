// Package shading implements the procedural surface shaders for orrery's
// celestial bodies and the coherent-noise fields that drive them.
//
// Every shader is a render.Shader. All per-body state, including the noise
// generators, lives in the render.Material, so shaders are reentrant and
// may be called from any number of rasterization workers at once.
package shading

import (
	"math"

	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Basis selects the gradient noise a Field is built from.
type Basis uint8

const (
	BasisSimplex Basis = iota
	BasisPerlin
)

// Fractal selects how octaves are combined.
type Fractal uint8

const (
	FractalNone Fractal = iota
	FractalFBm
	FractalRidged
	FractalPingPong
	FractalDomainWarp
)

// domainLimit bounds noise coordinates so lattice indices stay well-defined.
const domainLimit = 1 << 20

// NoiseParams configures a Field. Zero values pick the defaults noted on
// each field.
type NoiseParams struct {
	Seed      int64
	Basis     Basis
	Fractal   Fractal
	Frequency float64 // default 1
	Octaves   int     // default 1

	Lacunarity       float64 // default 2
	Gain             float64 // default 0.5
	PingPongStrength float64 // default 2
	WarpAmplitude    float64 // default 1
}

func (p NoiseParams) withDefaults() NoiseParams {
	if p.Frequency == 0 {
		p.Frequency = 1
	}
	if p.Octaves < 1 {
		p.Octaves = 1
	}
	if p.Lacunarity == 0 {
		p.Lacunarity = 2
	}
	if p.Gain == 0 {
		p.Gain = 0.5
	}
	if p.PingPongStrength == 0 {
		p.PingPongStrength = 2
	}
	if p.WarpAmplitude == 0 {
		p.WarpAmplitude = 1
	}
	return p
}

// Field is a seeded fractal noise field over 3D space. It implements
// render.NoiseField and is read-only after construction.
type Field struct {
	params   NoiseParams
	bounding float64

	simplex opensimplex.Noise
	perlin  *perlin.Perlin
}

// NewField builds a field from p.
func NewField(p NoiseParams) *Field {
	p = p.withDefaults()
	f := &Field{params: p}
	switch p.Basis {
	case BasisPerlin:
		f.perlin = perlin.NewPerlin(2, 2, 1, p.Seed)
	default:
		f.simplex = opensimplex.New(p.Seed)
	}

	amp, total := 1.0, 0.0
	for range p.Octaves {
		total += amp
		amp *= math.Abs(p.Gain)
	}
	f.bounding = 1
	if total > 0 {
		f.bounding = 1 / total
	}
	return f
}

// Params returns the effective parameters, defaults applied.
func (f *Field) Params() NoiseParams {
	return f.params
}

// octaveOffset decorrelates octaves that share one generator.
var octaveOffset = math3d.V3(131.7, 71.3, 247.9)

func (f *Field) single(octave int, p math3d.Vec3) float64 {
	p = p.Add(octaveOffset.Scale(float64(octave)))
	var v float64
	if f.perlin != nil {
		// go-perlin returns roughly [-0.7, 0.7]
		v = f.perlin.Noise3D(p.X, p.Y, p.Z) * 1.4
	} else {
		v = f.simplex.Eval3(p.X, p.Y, p.Z)
	}
	return math3d.Clamp(v, -1, 1)
}

// At samples the field at p and returns a value in [0, 1]. It is total:
// NaN and infinite coordinates are treated as zero and huge ones are
// clamped.
func (f *Field) At(p math3d.Vec3) float64 {
	p = math3d.V3(sanitize(p.X), sanitize(p.Y), sanitize(p.Z)).Scale(f.params.Frequency)

	var v float64
	switch f.params.Fractal {
	case FractalFBm:
		v = f.fbm(p)
	case FractalRidged:
		v = f.ridged(p)
	case FractalPingPong:
		v = f.pingPong(p)
	case FractalDomainWarp:
		v = f.domainWarp(p)
	default:
		v = f.single(0, p)
	}
	return math3d.Saturate(v*0.5 + 0.5)
}

func sanitize(x float64) float64 {
	return math3d.Clamp(math3d.Finite(x), -domainLimit, domainLimit)
}

func (f *Field) fbm(p math3d.Vec3) float64 {
	sum, amp := 0.0, 1.0
	for o := range f.params.Octaves {
		sum += f.single(o, p) * amp
		p = p.Scale(f.params.Lacunarity)
		amp *= f.params.Gain
	}
	return sum * f.bounding
}

func (f *Field) ridged(p math3d.Vec3) float64 {
	sum, amp := 0.0, 1.0
	for o := range f.params.Octaves {
		n := math.Abs(f.single(o, p))
		sum += (n*-2 + 1) * amp
		p = p.Scale(f.params.Lacunarity)
		amp *= f.params.Gain
	}
	return sum * f.bounding
}

func (f *Field) pingPong(p math3d.Vec3) float64 {
	sum, amp := 0.0, 1.0
	for o := range f.params.Octaves {
		n := pingPong((f.single(o, p) + 1) * f.params.PingPongStrength)
		sum += (n - 0.5) * 2 * amp
		p = p.Scale(f.params.Lacunarity)
		amp *= f.params.Gain
	}
	return sum * f.bounding
}

func pingPong(t float64) float64 {
	t -= math.Floor(t*0.5) * 2
	if t < 1 {
		return t
	}
	return 2 - t
}

// domainWarp displaces p by three decorrelated fBm lookups, then samples
// fBm at the displaced point.
func (f *Field) domainWarp(p math3d.Vec3) float64 {
	amp := f.params.WarpAmplitude
	q := math3d.V3(
		f.fbm(p),
		f.fbm(p.Add(math3d.V3(5.2, 1.3, 2.8))),
		f.fbm(p.Add(math3d.V3(1.7, 9.2, 4.1))),
	)
	return f.fbm(p.Add(q.Scale(amp)))
}
