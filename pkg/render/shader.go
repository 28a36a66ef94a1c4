package render

import "github.com/taigrr/orrery/pkg/math3d"

// Fragment is one rasterized sample that survived the depth test.
type Fragment struct {
	X, Y  int
	Depth float64

	// ViewPos is the perspective-correct view-space position.
	ViewPos math3d.Vec3
	// Normal is the view-space normal, unit length.
	Normal math3d.Vec3
	UV     math3d.Vec2
	// Local is the object-space position, used as the noise domain so
	// surface patterns stick to the body as it moves.
	Local math3d.Vec3
}

// NoiseField is a deterministic scalar field. Implementations must be safe
// for concurrent reads.
type NoiseField interface {
	At(p math3d.Vec3) float64
}

// Material carries the per-body parameters a shader reads. It is immutable
// while a frame renders.
type Material struct {
	Name string

	Base       Color
	Accent     Color
	Atmosphere Color

	AtmosphereStrength float64
	Emission           float64
	Ambient            float64

	Terrain NoiseField
	Detail  NoiseField
}

// Shader computes the color of a fragment. Shaders are pure: the same
// fragment and context always give the same color.
type Shader interface {
	Shade(frag *Fragment, ctx *ShaderContext) Color
}

// ShaderFunc adapts a function to the Shader interface.
type ShaderFunc func(frag *Fragment, ctx *ShaderContext) Color

// Shade calls f.
func (f ShaderFunc) Shade(frag *Fragment, ctx *ShaderContext) Color {
	return f(frag, ctx)
}

// ShaderContext is everything a shader may read besides the fragment. One
// context is built per draw call and shared read-only by all workers.
type ShaderContext struct {
	// LightDir points from the surface toward the light, view space, unit.
	LightDir math3d.Vec3
	// ViewDir is the fallback direction toward the viewer, view space, unit.
	ViewDir  math3d.Vec3
	Time     float64
	Shader   Shader
	Material *Material
}

// ToViewer returns the unit direction from the fragment to the eye.
func (ctx *ShaderContext) ToViewer(frag *Fragment) math3d.Vec3 {
	v := frag.ViewPos.Negate()
	if v.Len() < 1e-9 {
		return ctx.ViewDir
	}
	return v.Normalize()
}

func (ctx *ShaderContext) shade(frag *Fragment) Color {
	if ctx == nil {
		return White
	}
	if ctx.Shader == nil {
		if ctx.Material != nil {
			return ctx.Material.Base
		}
		return White
	}
	return ctx.Shader.Shade(frag, ctx)
}
