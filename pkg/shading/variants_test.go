package shading

import (
	"errors"
	"testing"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/render"
)

func fragmentAt(normal math3d.Vec3) *render.Fragment {
	return &render.Fragment{
		X: 10, Y: 10,
		ViewPos: math3d.V3(0, 0, -3),
		Normal:  normal,
		UV:      math3d.V2(0.37, 0.61),
		Local:   math3d.V3(0.3, 0.4, 0.5),
	}
}

func contextFor(k Kind, time float64) *render.ShaderContext {
	p := PresetFor(k)
	return &render.ShaderContext{
		LightDir: math3d.V3(0, 1, 0),
		ViewDir:  math3d.V3(0, 0, 1),
		Time:     time,
		Shader:   p.Shader,
		Material: p.Material(k.String()),
	}
}

func inRange(c render.Color) bool {
	return c.R >= 0 && c.R <= 1 && c.G >= 0 && c.G <= 1 && c.B >= 0 && c.B <= 1
}

func TestShadersDeterministic(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			ctx := contextFor(k, 1.5)
			frag := fragmentAt(math3d.V3(0, 0.6, 0.8))
			first := ctx.Shader.Shade(frag, ctx)
			for range 10 {
				if got := ctx.Shader.Shade(frag, ctx); got != first {
					t.Fatalf("Shade = %v, then %v", first, got)
				}
			}
			// A second material built from the same preset shades the same.
			if got := contextFor(k, 1.5); got.Shader.Shade(frag, got) != first {
				t.Errorf("fresh material shaded differently")
			}
		})
	}
}

func TestShadersClamp(t *testing.T) {
	normals := []math3d.Vec3{
		math3d.V3(0, 1, 0),
		math3d.V3(0, -1, 0),
		math3d.V3(0, 0, 1),
		math3d.V3(0.6, 0, -0.8),
	}
	for _, k := range Kinds() {
		for _, tm := range []float64{0, 3, 1000} {
			ctx := contextFor(k, tm)
			for _, n := range normals {
				if c := ctx.Shader.Shade(fragmentAt(n), ctx); !inRange(c) {
					t.Errorf("%s at t=%v normal %v: %v out of range", k, tm, n, c)
				}
			}
		}
	}
}

func TestShadersLitSideBrighter(t *testing.T) {
	strict := map[Kind]bool{
		KindTemperate:  true,
		KindIcy:        true,
		KindDesert:     true,
		KindOceanic:    true,
		KindJungle:     true,
		KindPrimordial: true,
		KindMoon:       true,
		KindShip:       true,
	}
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			ctx := contextFor(k, 0)
			lit := ctx.Shader.Shade(fragmentAt(math3d.V3(0, 1, 0)), ctx).Luminance()
			dark := ctx.Shader.Shade(fragmentAt(math3d.V3(0, -1, 0)), ctx).Luminance()
			if lit < dark {
				t.Errorf("lit %v < dark %v", lit, dark)
			}
			if strict[k] && !(lit > dark) {
				t.Errorf("lit %v not brighter than dark %v", lit, dark)
			}
		})
	}
}

func TestSunIgnoresLight(t *testing.T) {
	ctx := contextFor(KindSun, 0)
	frag := fragmentAt(math3d.V3(0, 0, 1))
	toward := ctx.Shader.Shade(frag, ctx)
	ctx.LightDir = math3d.V3(0, 0, -1)
	away := ctx.Shader.Shade(frag, ctx)
	if toward != away {
		t.Errorf("sun color depends on light: %v vs %v", toward, away)
	}
	if toward.Luminance() < 0.6 {
		t.Errorf("sun luminance %v, want bright", toward.Luminance())
	}
}

func TestShaderWithoutMaterial(t *testing.T) {
	ctx := &render.ShaderContext{LightDir: math3d.V3(0, 1, 0), ViewDir: math3d.V3(0, 0, 1)}
	for _, k := range Kinds() {
		if c := PresetFor(k).Shader.Shade(fragmentAt(math3d.V3(0, 1, 0)), ctx); !inRange(c) {
			t.Errorf("%s without material: %v", k, c)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if got, err := ParseKind("  ICY "); err != nil || got != KindIcy {
		t.Errorf("ParseKind is not case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseKind("plasma"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(plasma) err = %v, want ErrUnknownKind", err)
	}
	if len(Kinds()) != 11 {
		t.Errorf("Kinds() has %d entries, want 11", len(Kinds()))
	}
}

func TestPresetMaterialOwnsNoise(t *testing.T) {
	p := PresetFor(KindTemperate)
	a, b := p.Material("a"), p.Material("b")
	if a.Terrain == b.Terrain {
		t.Error("materials share a terrain field")
	}
	if PresetFor(KindShip).Material("ship").Terrain != nil {
		t.Error("ship material has a terrain field")
	}
}
