package render

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/taigrr/orrery/pkg/math3d"
)

// plane is a two-triangle square in the XY plane facing +Z.
type plane struct {
	half float64
}

func (p plane) VertexCount() int   { return 4 }
func (p plane) TriangleCount() int { return 2 }

func (p plane) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	xs := [4]float64{-1, 1, 1, -1}
	ys := [4]float64{-1, -1, 1, 1}
	pos = math3d.V3(xs[i]*p.half, ys[i]*p.half, 0)
	return pos, math3d.V3(0, 0, 1), math3d.V2((xs[i]+1)/2, (ys[i]+1)/2)
}

func (p plane) GetFace(i int) [3]int {
	if i == 0 {
		return [3]int{0, 1, 2}
	}
	return [3]int{0, 2, 3}
}

// boundedPlane adds bounds so the renderer can frustum-cull it.
type boundedPlane struct {
	plane
}

func (p boundedPlane) GetBounds() (min, max math3d.Vec3) {
	return math3d.V3(-p.half, -p.half, 0), math3d.V3(p.half, p.half, 0)
}

func uvShader() Shader {
	return ShaderFunc(func(f *Fragment, _ *ShaderContext) Color {
		return RGB(f.UV.X, f.UV.Y, 0.5+0.5*f.Normal.Z)
	})
}

func testFrame(draws ...DrawCall) Frame {
	return Frame{
		View:       math3d.LookAt(math3d.V3(0, 0, 3), math3d.Zero3(), math3d.Up()),
		Projection: math3d.Perspective(math.Pi/3, 4.0/3, 0.1, 100),
		LightDir:   math3d.V3(1, 1, 1),
		Draws:      draws,
	}
}

// badFace references a vertex that does not exist.
type badFace struct {
	plane
}

func (badFace) TriangleCount() int { return 3 }

func (p badFace) GetFace(i int) [3]int {
	if i == 2 {
		return [3]int{0, 1, 7}
	}
	return p.plane.GetFace(i)
}

func TestTrianglesSkipsBadFaces(t *testing.T) {
	ctx := flat(White)
	tris := Triangles(badFace{plane{1}}, ctx)
	if len(tris) != 2 {
		t.Fatalf("triangles = %d, want 2", len(tris))
	}
	if tris[0].Context != ctx || tris[1].V[2].Position != math3d.V3(-1, 1, 0) {
		t.Errorf("unexpected triangle %+v", tris[1])
	}

	clipped, discarded := AppendMesh(nil, badFace{plane{1}}, passThrough, ctx)
	if len(clipped) != 2 || discarded != 1 {
		t.Errorf("AppendMesh kept %d, discarded %d", len(clipped), discarded)
	}
}

func mustRender(t testing.TB, r *Renderer, f Frame) Stats {
	t.Helper()
	stats, err := r.Render(f)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return stats
}

func TestRenderStats(t *testing.T) {
	fb := newTestFramebuffer(t, 32, 24)
	r := NewRenderer(fb)
	r.TileHeight = 8

	stats := mustRender(t, r, testFrame(DrawCall{Name: "plane", Mesh: boundedPlane{plane{1}}, Model: math3d.Identity(), Shader: uvShader()}))
	if stats.Draws != 1 || stats.Culled != 0 {
		t.Errorf("draws = %d, culled = %d", stats.Draws, stats.Culled)
	}
	if stats.Triangles != 2 || stats.Discarded != 0 {
		t.Errorf("triangles = %d, discarded = %d", stats.Triangles, stats.Discarded)
	}
	if stats.Tiles != 3 {
		t.Errorf("tiles = %d, want 3", stats.Tiles)
	}
	if stats.Fragments <= 0 || stats.Fragments > fb.Width*fb.Height {
		t.Errorf("fragments = %d", stats.Fragments)
	}
	if fb.Pixel(16, 12) == fb.Background {
		t.Error("centre pixel not drawn")
	}
	if fb.Pixel(0, 0) != fb.Background {
		t.Error("corner pixel drawn")
	}
}

func TestRenderCullsAndDiscards(t *testing.T) {
	behind := math3d.Translate(math3d.V3(0, 0, 10))
	tests := []struct {
		name      string
		mesh      MeshSource
		culled    int
		discarded int
	}{
		{"bounded mesh is culled", boundedPlane{plane{1}}, 1, 0},
		{"unbounded mesh is discarded", plane{1}, 0, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := newTestFramebuffer(t, 16, 12)
			r := NewRenderer(fb)
			stats := mustRender(t, r, testFrame(DrawCall{Mesh: tc.mesh, Model: behind, Shader: uvShader()}))
			if stats.Culled != tc.culled || stats.Discarded != tc.discarded {
				t.Errorf("culled = %d, discarded = %d, want %d, %d",
					stats.Culled, stats.Discarded, tc.culled, tc.discarded)
			}
			if stats.Triangles != 0 || stats.Fragments != 0 {
				t.Errorf("triangles = %d, fragments = %d, want 0", stats.Triangles, stats.Fragments)
			}
			for _, c := range fb.Colors() {
				if c != fb.Background {
					t.Fatal("framebuffer was written")
				}
			}
		})
	}
}

func TestRenderLightInViewSpace(t *testing.T) {
	fb := newTestFramebuffer(t, 8, 8)
	r := NewRenderer(fb)
	f := testFrame(DrawCall{Mesh: plane{1}, Model: math3d.Identity()})
	f.View = math3d.RotateY(math.Pi / 2).Mul(f.View)
	mustRender(t, r, f)

	want := f.View.MulDir(f.LightDir).Normalize()
	got := r.contexts[0].LightDir
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("light = %v, want %v", got, want)
	}
	if math.Abs(got.Len()-1) > 1e-12 {
		t.Errorf("light length = %v", got.Len())
	}
}

func TestRenderPointLight(t *testing.T) {
	fb := newTestFramebuffer(t, 8, 8)
	r := NewRenderer(fb)
	sun := math3d.Zero3()
	f := testFrame(
		DrawCall{Mesh: plane{1}, Model: math3d.Translate(math3d.V3(4, 0, 0))},
		DrawCall{Mesh: plane{1}, Model: math3d.Translate(math3d.V3(0, 0, -4))},
		DrawCall{Mesh: plane{1}, Model: math3d.Identity()},
	)
	f.LightPos = &sun
	mustRender(t, r, f)

	directional := f.View.MulDir(f.LightDir).Normalize()
	tests := []struct {
		name string
		got  math3d.Vec3
		want math3d.Vec3
	}{
		{"east body lit from the west", r.contexts[0].LightDir, f.View.MulDir(math3d.V3(-1, 0, 0))},
		{"north body lit from the south", r.contexts[1].LightDir, f.View.MulDir(math3d.V3(0, 0, 1))},
		{"body at the light falls back", r.contexts[2].LightDir, directional},
	}
	for _, tc := range tests {
		if tc.got.Sub(tc.want).Len() > 1e-9 {
			t.Errorf("%s: light = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestRenderParallelMatchesSerial(t *testing.T) {
	draws := []DrawCall{
		{Mesh: boundedPlane{plane{1}}, Model: math3d.RotateY(0.6), Shader: uvShader()},
		{Mesh: plane{0.5}, Model: math3d.Translate(math3d.V3(0.3, 0.2, 0.5)), Shader: uvShader()},
	}
	render := func(workers, tileHeight int) *Framebuffer {
		fb := newTestFramebuffer(t, 61, 47)
		r := NewRenderer(fb)
		r.Workers = workers
		r.TileHeight = tileHeight
		mustRender(t, r, testFrame(draws...))
		return fb
	}

	serial := render(1, 1000)
	for _, cfg := range [][2]int{{4, 3}, {8, 1}, {2, 16}, {0, 0}} {
		parallel := render(cfg[0], cfg[1])
		if !slices.Equal(serial.Colors(), parallel.Colors()) {
			t.Errorf("workers=%d tile=%d: colors differ from serial", cfg[0], cfg[1])
		}
		if !slices.Equal(serial.DepthGrid(), parallel.DepthGrid()) {
			t.Errorf("workers=%d tile=%d: depth differs from serial", cfg[0], cfg[1])
		}
	}
}

func TestRenderClearsBetweenFrames(t *testing.T) {
	fb := newTestFramebuffer(t, 16, 12)
	r := NewRenderer(fb)
	mustRender(t, r, testFrame(DrawCall{Mesh: plane{1}, Model: math3d.Identity(), Shader: uvShader()}))
	mustRender(t, r, testFrame())
	for _, c := range fb.Colors() {
		if c != fb.Background {
			t.Fatal("previous frame leaked into an empty frame")
		}
	}
}

func TestRenderShaderPanicFailsFrame(t *testing.T) {
	fb := newTestFramebuffer(t, 16, 12)
	r := NewRenderer(fb)
	r.TileHeight = 4
	broken := ShaderFunc(func(*Fragment, *ShaderContext) Color { panic("bad material") })

	_, err := r.Render(testFrame(DrawCall{Mesh: plane{1}, Model: math3d.Identity(), Shader: broken}))
	if err == nil || !strings.Contains(err.Error(), "bad material") {
		t.Fatalf("err = %v, want shader panic", err)
	}

	// The renderer stays usable afterwards.
	stats := mustRender(t, r, testFrame(DrawCall{Mesh: plane{1}, Model: math3d.Identity(), Shader: uvShader()}))
	if stats.Fragments == 0 {
		t.Error("no fragments after recovering")
	}
}

func BenchmarkRender(b *testing.B) {
	fb := newTestFramebuffer(b, 160, 90)
	r := NewRenderer(fb)
	f := testFrame(DrawCall{Mesh: boundedPlane{plane{1}}, Model: math3d.RotateY(0.4), Shader: uvShader()})
	for b.Loop() {
		mustRender(b, r, f)
	}
}
