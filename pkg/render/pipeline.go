package render

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/orrery/pkg/math3d"
)

// DefaultTileHeight is the height in rows of one rasterization band.
const DefaultTileHeight = 16

// DrawCall is one mesh instance in a frame.
type DrawCall struct {
	Name     string
	Mesh     MeshSource
	Model    math3d.Mat4
	Shader   Shader
	Material *Material
}

// Frame is everything the renderer needs to draw one image.
type Frame struct {
	View       math3d.Mat4
	Projection math3d.Mat4
	// LightDir points toward the light, world space.
	LightDir math3d.Vec3
	// LightPos, when set, makes the light a point source: each draw call
	// is lit from the direction of LightPos as seen from its model origin.
	LightPos *math3d.Vec3
	Time     float64
	Draws    []DrawCall
	// Lines are depth-tested against the triangles and drawn after them.
	Lines []Line
}

// Stats describes the work done for one frame.
type Stats struct {
	Draws     int
	Culled    int
	Triangles int
	Discarded int
	Fragments int
	Tiles     int
	Elapsed   time.Duration
}

// Renderer drives the transform stage and the tile-parallel rasterizer
// over a framebuffer.
type Renderer struct {
	// Workers bounds how many tiles rasterize at once. Values below 1 use
	// GOMAXPROCS.
	Workers int
	// TileHeight is the band height in rows. Values below 1 use
	// DefaultTileHeight.
	TileHeight int

	fb     *Framebuffer
	raster *Rasterizer

	tris     []ClipTriangle
	contexts []ShaderContext
}

// NewRenderer creates a renderer over fb.
func NewRenderer(fb *Framebuffer) *Renderer {
	return &Renderer{
		Workers:    runtime.GOMAXPROCS(0),
		TileHeight: DefaultTileHeight,
		fb:         fb,
		raster:     NewRasterizer(fb),
	}
}

// Framebuffer returns the target framebuffer.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// Rasterizer returns the rasterizer used for triangles and lines.
func (r *Renderer) Rasterizer() *Rasterizer {
	return r.raster
}

// Render clears the framebuffer and draws f into it.
func (r *Renderer) Render(f Frame) (Stats, error) {
	r.fb.Clear()
	return r.Draw(f)
}

// Draw draws f over the current framebuffer contents. It returns once every
// tile has finished; the framebuffer is not touched afterwards.
func (r *Renderer) Draw(f Frame) (Stats, error) {
	start := time.Now()
	var stats Stats

	viewProj := f.Projection.Mul(f.View)
	frustum := NewFrustumFromMatrix(viewProj)
	light := f.View.MulDir(f.LightDir).Normalize()

	// Contexts are referenced by pointer from the triangle list, so the
	// slice must not grow once the loop starts.
	if cap(r.contexts) < len(f.Draws) {
		r.contexts = make([]ShaderContext, len(f.Draws))
	}
	r.contexts = r.contexts[:len(f.Draws)]
	r.tris = r.tris[:0]

	for i := range f.Draws {
		d := &f.Draws[i]
		if d.Mesh == nil {
			continue
		}
		if !visible(frustum, d) {
			stats.Culled++
			continue
		}
		stats.Draws++
		ctx := &r.contexts[i]
		*ctx = ShaderContext{
			LightDir: drawLight(f, d, light),
			ViewDir:  math3d.V3(0, 0, 1),
			Time:     f.Time,
			Shader:   d.Shader,
			Material: d.Material,
		}
		var discarded int
		r.tris, discarded = AppendMesh(r.tris, d.Mesh, NewTransform(d.Model, f.View, f.Projection), ctx)
		stats.Discarded += discarded
	}
	stats.Triangles = len(r.tris)

	var err error
	stats.Fragments, stats.Tiles, err = r.rasterize()
	if err != nil {
		return stats, fmt.Errorf("rasterize: %w", err)
	}

	for _, l := range f.Lines {
		stats.Fragments += r.raster.DrawLine3D(l.A, l.B, l.Color, viewProj)
	}

	stats.Elapsed = time.Since(start)
	Logger().Debug("frame rendered",
		"draws", stats.Draws,
		"culled", stats.Culled,
		"triangles", stats.Triangles,
		"discarded", stats.Discarded,
		"fragments", stats.Fragments,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

// drawLight returns the view-space light direction for d.
func drawLight(f Frame, d *DrawCall, directional math3d.Vec3) math3d.Vec3 {
	if f.LightPos == nil {
		return directional
	}
	toLight := f.LightPos.Sub(d.Model.Translation())
	if toLight.Len() < 1e-9 {
		return directional
	}
	return f.View.MulDir(toLight).Normalize()
}

// visible tests the draw call's bounding sphere against the frustum. Meshes
// without bounds are always drawn.
func visible(f Frustum, d *DrawCall) bool {
	bm, ok := d.Mesh.(BoundedMesh)
	if !ok {
		return true
	}
	center, radius := NewAABB(bm.GetBounds()).Transform(d.Model).BoundingSphere()
	return f.IntersectsSphere(center, radius)
}

// tiles splits the framebuffer into full-width bands. Bands never overlap,
// so each pixel is owned by exactly one worker.
func (r *Renderer) tiles() []image.Rectangle {
	th := r.TileHeight
	if th < 1 {
		th = DefaultTileHeight
	}
	var out []image.Rectangle
	for y := 0; y < r.fb.Height; y += th {
		out = append(out, image.Rect(0, y, r.fb.Width, min(y+th, r.fb.Height)))
	}
	return out
}

func (r *Renderer) rasterize() (fragments, tiles int, err error) {
	rects := r.tiles()
	counts := make([]int, len(rects))

	workers := r.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, rect := range rects {
		g.Go(func() (err error) {
			// A panicking shader fails the frame.
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("tile %v: shader panic: %v", rect, p)
				}
			}()
			n := 0
			for j := range r.tris {
				n += r.raster.DrawTriangle(&r.tris[j], rect)
			}
			counts[i] = n
			return nil
		})
	}
	// frame barrier
	if err := g.Wait(); err != nil {
		return 0, len(rects), err
	}

	for _, n := range counts {
		fragments += n
	}
	return fragments, len(rects), nil
}
