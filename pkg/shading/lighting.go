package shading

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/render"
)

// Lambert returns max(0, n·l).
func Lambert(n, l math3d.Vec3) float64 {
	return math.Max(0, n.Dot(l))
}

// Diffuse returns ambient + (1-ambient)·max(0, n·l).
func Diffuse(n, l math3d.Vec3, ambient float64) float64 {
	a := math3d.Saturate(ambient)
	return a + (1-a)*Lambert(n, l)
}

// Fresnel returns (1 - max(0, n·v))^power: zero facing the viewer, one at
// grazing angles.
func Fresnel(n, v math3d.Vec3, power float64) float64 {
	return math.Pow(1-math3d.Saturate(n.Dot(v)), power)
}

// Specular is a Blinn-Phong highlight, zero on the unlit side.
func Specular(n, l, v math3d.Vec3, shininess float64) float64 {
	if n.Dot(l) <= 0 {
		return 0
	}
	h := l.Add(v).Normalize()
	return math.Pow(math.Max(0, n.Dot(h)), shininess)
}

var defaultMaterial = render.Material{
	Name:    "default",
	Base:    render.RGB(0.7, 0.7, 0.7),
	Ambient: 0.1,
}

func material(ctx *render.ShaderContext) *render.Material {
	if ctx.Material == nil {
		return &defaultMaterial
	}
	return ctx.Material
}

// sample reads field at p drifted along X, or 0.5 without a field.
func sample(field render.NoiseField, p math3d.Vec3, drift float64) float64 {
	if field == nil {
		return 0.5
	}
	return field.At(math3d.V3(p.X+drift, p.Y, p.Z))
}

// atmosphere is the rim term, strongest at grazing angles and fading on the
// night side.
func atmosphere(m *render.Material, n, l, v math3d.Vec3, power float64) render.Color {
	if m.AtmosphereStrength <= 0 {
		return render.Black
	}
	rim := Fresnel(n, v, power) * m.AtmosphereStrength * (0.25 + 0.75*Lambert(n, l))
	return m.Atmosphere.Scale(rim)
}

// finish combines the terms of the common shading structure.
func finish(base render.Color, diffuse float64, atmos, emissive render.Color) render.Color {
	return base.Scale(diffuse).Add(atmos).Add(emissive)
}

// latitude returns the normalized height of p on its body, in [-1, 1].
func latitude(p math3d.Vec3) float64 {
	return math3d.Clamp(p.Normalize().Y, -1, 1)
}
