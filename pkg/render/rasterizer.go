package render

import (
	"image"
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Rasterizer converts clip-space triangles into depth-tested, shaded
// fragments. It holds no per-frame state, so one Rasterizer may be used by
// several goroutines as long as their clip rectangles do not overlap.
type Rasterizer struct {
	fb *Framebuffer

	// CullBackFaces drops triangles wound clockwise on screen. Off by
	// default: both windings are drawn.
	CullBackFaces bool
}

// NewRasterizer creates a rasterizer writing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// Bounds returns the full framebuffer rectangle.
func (r *Rasterizer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.fb.Width, r.fb.Height)
}

// screenVertex is a vertex in pixel coordinates with NDC depth.
type screenVertex struct {
	X, Y, Z float64
}

func (r *Rasterizer) toScreen(v *ClipVertex) screenVertex {
	return screenVertex{
		X: (v.NDC.X + 1) * 0.5 * float64(r.fb.Width),
		Y: (1 - v.NDC.Y) * 0.5 * float64(r.fb.Height),
		Z: v.NDC.Z,
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// directed edge (x0,y0) -> (x1,y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// DrawTriangle rasterizes tri into the pixels of clip it covers, testing
// each sample at the pixel center. It returns the number of fragments that
// passed the depth test and were shaded.
func (r *Rasterizer) DrawTriangle(tri *ClipTriangle, clip image.Rectangle) int {
	clip = clip.Intersect(r.Bounds())
	if clip.Empty() {
		return 0
	}

	var sv [3]screenVertex
	for i := range 3 {
		sv[i] = r.toScreen(&tri.V[i])
		if !math3d.IsFinite(sv[i].X) || !math3d.IsFinite(sv[i].Y) || !math3d.IsFinite(sv[i].Z) {
			return 0
		}
	}

	a12, b12, c12 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a20, b20, c20 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a01, b01, c01 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	area := edgeFunc(a01, b01, c01, sv[2].X, sv[2].Y)
	if area == 0 {
		return 0
	}
	// Counter-clockwise in NDC is clockwise on screen, which gives a
	// negative area here.
	if r.CullBackFaces && area > 0 {
		return 0
	}
	invArea := 1 / area

	minX := math.Max(float64(clip.Min.X), math.Floor(min3(sv[0].X, sv[1].X, sv[2].X)))
	maxX := math.Min(float64(clip.Max.X-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X)))
	minY := math.Max(float64(clip.Min.Y), math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y)))
	maxY := math.Min(float64(clip.Max.Y-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y)))
	if minX > maxX || minY > maxY {
		return 0
	}
	x0, x1 := int(minX), int(maxX)
	y0, y1 := int(minY), int(maxY)

	v0, v1, v2 := &tri.V[0], &tri.V[1], &tri.V[2]
	ctx := tri.Context
	count := 0
	var frag Fragment

	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5
		px := float64(x0) + 0.5
		e12 := edgeFunc(a12, b12, c12, px, py)
		e20 := edgeFunc(a20, b20, c20, px, py)
		e01 := edgeFunc(a01, b01, c01, px, py)

		for x := x0; x <= x1; x, e12, e20, e01 = x+1, e12+a12, e20+a20, e01+a01 {
			w0 := e12 * invArea
			w1 := e20 * invArea
			w2 := e01 * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			// Depth interpolates linearly in screen space. Offsets from z0
			// keep constant-depth triangles exact.
			z := sv[0].Z + w1*(sv[1].Z-sv[0].Z) + w2*(sv[2].Z-sv[0].Z)
			if z < -1 || z > 1 {
				continue
			}
			if !r.fb.TestAndSetDepth(x, y, z) {
				continue
			}

			// Everything else is perspective-correct. Every InvW is positive
			// after the transform stage, so s > 0.
			p0 := w0 * v0.InvW
			p1 := w1 * v1.InvW
			p2 := w2 * v2.InvW
			s := p0 + p1 + p2
			p0, p1, p2 = p0/s, p1/s, p2/s

			frag = Fragment{
				X:       x,
				Y:       y,
				Depth:   z,
				ViewPos: math3d.Barycentric(v0.View, v1.View, v2.View, p0, p1, p2),
				Normal:  math3d.Barycentric(v0.Normal, v1.Normal, v2.Normal, p0, p1, p2).Normalize(),
				UV:      v0.UV.Scale(p0).Add(v1.UV.Scale(p1)).Add(v2.UV.Scale(p2)),
				Local:   math3d.Barycentric(v0.Local, v1.Local, v2.Local, p0, p1, p2),
			}
			r.fb.SetColor(x, y, ctx.shade(&frag))
			count++
		}
	}
	return count
}
