package shading

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/render"
)

// cloudColor is shared by every variant with a cloud layer.
var cloudColor = render.RGB(0.95, 0.96, 0.98)

// clouds returns the cloud coverage in [0, 1] from the detail field.
func clouds(m *render.Material, p math3d.Vec3, t, cover, speed float64) float64 {
	if m.Detail == nil || cover <= 0 {
		return 0
	}
	c := sample(m.Detail, p, t*speed)
	return math3d.Smoothstep(1-cover, 1-cover*0.4, c)
}

// Temperate is an earth-like world: oceans below SeaLevel, land ramping to
// snowy peaks above it, and a drifting cloud layer.
type Temperate struct {
	SeaLevel   float64
	CloudCover float64
}

var (
	temperateOcean = Ramp{
		{0, render.Hex(0x0b1f4d)},
		{0.7, render.Hex(0x1b4f9c)},
		{1, render.Hex(0x3f8fc9)},
	}
	temperateLand = Ramp{
		{0, render.Hex(0xc9b77c)},
		{0.15, render.Hex(0x4f8a32)},
		{0.55, render.Hex(0x2f5e22)},
		{0.8, render.Hex(0x6e5a44)},
		{1, render.Hex(0xf2f2f2)},
	}
)

func (s Temperate) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	base, spec := surface(h, s.SeaLevel, temperateOcean, temperateLand)
	cloud := clouds(m, frag.Local, ctx.Time, s.CloudCover, 0.02)
	base = base.Lerp(cloudColor, cloud)

	gloss := render.White.Scale(spec * 0.5 * Specular(n, l, v, 40) * (1 - cloud))
	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 3).Add(gloss), m.Base.Scale(m.Emission))
}

// surface splits h at sea level into the water and land ramps and returns
// the base color and how glossy it is.
func surface(h, seaLevel float64, water, land Ramp) (render.Color, float64) {
	sea := math3d.Clamp(seaLevel, 0.01, 0.99)
	if h < sea {
		return water.Sample(h / sea), 1
	}
	return land.Sample((h - sea) / (1 - sea)), 0
}

// Icy is a pale ice giant with soft latitude bands.
type Icy struct {
	Bands float64
}

var icyRamp = Ramp{
	{0, render.RGB(0.52, 0.74, 0.84)},
	{0.45, render.RGB(0.68, 0.88, 0.93)},
	{0.8, render.RGB(0.86, 0.95, 0.98)},
	{1, render.RGB(0.96, 0.98, 1.0)},
}

func (s Icy) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	band := 0.5 + 0.5*math.Sin(latitude(frag.Local)*s.Bands*math.Pi+h*3)
	base := icyRamp.Sample(math3d.Mix(h, band, 0.5))

	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 2.5), m.Base.Scale(m.Emission))
}

// Desert is a dry rust-colored world with ridged terrain and polar caps.
type Desert struct {
	PolarCap float64
}

var desertRamp = Ramp{
	{0, render.Hex(0x5a2a17)},
	{0.35, render.Hex(0x9c4a24)},
	{0.7, render.Hex(0xc8743b)},
	{1, render.Hex(0xe0a872)},
}

func (s Desert) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	base := desertRamp.Sample(h)
	if s.PolarCap > 0 {
		lat := math.Abs(latitude(frag.Local))
		polar := math3d.Smoothstep(1-s.PolarCap, 1-s.PolarCap*0.7, lat+0.08*(h-0.5))
		base = base.Lerp(render.RGB(0.93, 0.92, 0.9), polar)
	}
	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 4), m.Base.Scale(m.Emission))
}

// Oceanic is a water world with scattered islands and a strong sun glint.
type Oceanic struct {
	SeaLevel   float64
	CloudCover float64
}

var (
	oceanicWater = Ramp{
		{0, render.Hex(0x031c3a)},
		{0.6, render.Hex(0x0a4d8c)},
		{0.92, render.Hex(0x1c8fb3)},
		{1, render.Hex(0x58c7c9)},
	}
	oceanicLand = Ramp{
		{0, render.Hex(0xe3d39a)},
		{0.4, render.Hex(0x3d9140)},
		{1, render.Hex(0x24592a)},
	}
)

func (s Oceanic) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	base, spec := surface(h, s.SeaLevel, oceanicWater, oceanicLand)
	cloud := clouds(m, frag.Local, ctx.Time, s.CloudCover, 0.03)
	base = base.Lerp(cloudColor, cloud)

	gloss := render.White.Scale(spec * 0.8 * Specular(n, l, v, 64) * (1 - cloud))
	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 3).Add(gloss), m.Base.Scale(m.Emission))
}

// Jungle is a humid green world under heavy cloud.
type Jungle struct {
	SeaLevel   float64
	CloudCover float64
}

var (
	jungleWater = Ramp{
		{0, render.Hex(0x0d3b3a)},
		{1, render.Hex(0x1f6f5c)},
	}
	jungleLand = Ramp{
		{0, render.Hex(0x2e6b1f)},
		{0.5, render.Hex(0x1b4a12)},
		{0.85, render.Hex(0x3c7d26)},
		{1, render.Hex(0x7a9a4a)},
	}
)

func (s Jungle) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	base, _ := surface(h, s.SeaLevel, jungleWater, jungleLand)
	cloud := clouds(m, frag.Local, ctx.Time, s.CloudCover, 0.015)
	base = base.Lerp(cloudColor, cloud*0.9)

	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 2), m.Base.Scale(m.Emission))
}

// Volcanic is dark basalt split by glowing lava. The lava is emissive, so
// it shows on the night side too.
type Volcanic struct {
	LavaLevel float64
}

var (
	basaltRamp = Ramp{
		{0, render.Hex(0x141212)},
		{0.6, render.Hex(0x2e2a28)},
		{1, render.Hex(0x4a4440)},
	}
	lavaRamp = Ramp{
		{0, render.Hex(0x8a1500)},
		{0.5, render.Hex(0xe04a00)},
		{1, render.Hex(0xffc23a)},
	}
)

func (s Volcanic) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, 0)
	base := basaltRamp.Sample(h)

	flow := sample(m.Detail, frag.Local, ctx.Time*0.01)
	lava := math3d.Smoothstep(s.LavaLevel, s.LavaLevel+0.08, flow)
	flicker := 0.85 + 0.15*math.Sin(ctx.Time*2+h*12)
	glow := lavaRamp.Sample(flow).Scale(lava * flicker * (1 + m.Emission))

	return finish(base.Lerp(render.Black, lava), Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 3), glow)
}

// Primordial is a banded gas giant whose bands are bent by a domain-warped
// field, with storm spots from the detail field.
type Primordial struct {
	Bands      float64
	Turbulence float64
}

var primordialRamp = Ramp{
	{0, render.Hex(0x8c5a3c)},
	{0.25, render.Hex(0xd9b38c)},
	{0.45, render.Hex(0xf0e0c0)},
	{0.65, render.Hex(0xb5764a)},
	{0.85, render.Hex(0xe8cfa8)},
	{1, render.Hex(0x8c5a3c)},
}

func (s Primordial) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	warp := sample(m.Terrain, frag.Local, ctx.Time*0.005)
	t := math3d.Fract(latitude(frag.Local)*s.Bands*0.5 + warp*s.Turbulence)
	base := primordialRamp.Sample(t)

	storm := sample(m.Detail, frag.Local, 0)
	base = base.Lerp(m.Accent, math3d.Smoothstep(0.72, 0.8, storm))

	return finish(base, Diffuse(n, l, m.Ambient), atmosphere(m, n, l, v, 3), m.Base.Scale(m.Emission))
}

// Ring shades a planetary ring. The radial coordinate is UV.X, running
// from the inner edge to the outer edge, and both faces are lit.
type Ring struct {
	Gaps float64
}

var ringRamp = Ramp{
	{0, render.Hex(0x6e6253)},
	{0.3, render.Hex(0xc2b092)},
	{0.55, render.Hex(0x9c8b70)},
	{0.8, render.Hex(0xd8c8a8)},
	{1, render.Hex(0x7a6c5a)},
}

func (s Ring) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l := frag.Normal, ctx.LightDir

	u := math3d.Saturate(frag.UV.X)
	grain := sample(m.Detail, frag.Local, 0)
	base := ringRamp.Sample(u + 0.1*(grain-0.5))
	if s.Gaps > 0 {
		gap := math3d.Smoothstep(0.9, 0.97, math3d.Fract(u*s.Gaps))
		base = base.Lerp(render.Black, gap*0.8)
	}

	a := math3d.Saturate(m.Ambient)
	diffuse := a + (1-a)*math.Abs(n.Dot(l))
	return finish(base, diffuse, render.Black, m.Base.Scale(m.Emission))
}

// Moon is grey regolith pocked with craters.
type Moon struct {
	Craters float64
}

var moonRamp = Ramp{
	{0, render.Hex(0x4a4a4c)},
	{0.5, render.Hex(0x8a8a8c)},
	{1, render.Hex(0xc4c4c2)},
}

func (s Moon) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l := frag.Normal, ctx.LightDir

	h := sample(m.Terrain, frag.Local, 0)
	base := moonRamp.Sample(h)
	crater := math3d.Smoothstep(1-s.Craters, 1-s.Craters*0.5, h)
	base = base.Lerp(render.Hex(0x2c2c2e), crater*0.7)

	return finish(base, Diffuse(n, l, m.Ambient), render.Black, m.Base.Scale(m.Emission))
}

// Ship shades the spaceship: painted hull panels, a metallic highlight and
// an engine glow behind EngineZ in object space.
type Ship struct {
	Panels  float64
	EngineZ float64
}

func (s Ship) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, l, v := frag.Normal, ctx.LightDir, ctx.ToViewer(frag)

	base := m.Base
	if s.Panels > 0 {
		pu := math3d.Fract(frag.UV.X * s.Panels)
		pv := math3d.Fract(frag.UV.Y * s.Panels)
		seam := math.Max(1-math3d.Smoothstep(0, 0.06, pu), 1-math3d.Smoothstep(0, 0.06, pv))
		base = base.Lerp(render.Black, seam*0.35)
	}

	gloss := render.White.Scale(0.6 * Specular(n, l, v, 24))
	var glow render.Color
	if frag.Local.Z > s.EngineZ {
		glow = m.Accent.Scale(m.Emission)
	}
	return finish(base, Diffuse(n, l, m.Ambient), gloss, glow)
}

// Sun is fully emissive: boiling granulation from the terrain field and
// darkening toward the limb. It ignores the light direction.
type Sun struct {
	Speed float64
}

var sunRamp = Ramp{
	{0, render.RGB(1, 0.45, 0.05)},
	{0.45, render.RGB(1, 0.7, 0.2)},
	{0.75, render.RGB(1, 0.88, 0.45)},
	{1, render.RGB(1, 0.98, 0.85)},
}

func (s Sun) Shade(frag *render.Fragment, ctx *render.ShaderContext) render.Color {
	m := material(ctx)
	n, v := frag.Normal, ctx.ToViewer(frag)

	h := sample(m.Terrain, frag.Local, ctx.Time*s.Speed)
	base := sunRamp.Sample(h)
	limb := math3d.Mix(0.7, 1, math.Sqrt(math3d.Saturate(n.Dot(v))))
	corona := m.Atmosphere.Scale(Fresnel(n, v, 2) * m.AtmosphereStrength)

	return base.Scale(limb * math.Max(1, m.Emission)).Add(corona)
}
