package render

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Line is a world-space segment drawn after the triangles of a frame.
type Line struct {
	A, B  math3d.Vec3
	Color Color
}

// DrawLine3D draws a depth-tested segment. Segments with an endpoint at or
// behind the eye are skipped, like triangles.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, c Color, viewProj math3d.Mat4) int {
	na, okA := viewProj.MulVec4(math3d.V4FromV3(a, 1)).PerspectiveDivide()
	nb, okB := viewProj.MulVec4(math3d.V4FromV3(b, 1)).PerspectiveDivide()
	if !okA || !okB {
		return 0
	}
	w, h := float64(r.fb.Width), float64(r.fb.Height)
	x0, y0 := (na.X+1)*0.5*w, (1-na.Y)*0.5*h
	x1, y1 := (nb.X+1)*0.5*w, (1-nb.Y)*0.5*h

	t0, t1, ok := clipSegment(x0, y0, x1, y1, w, h)
	if !ok {
		return 0
	}
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy)) * (t1 - t0)))
	count := 0
	for i := 0; i <= steps; i++ {
		t := t0
		if steps > 0 {
			t += (t1 - t0) * float64(i) / float64(steps)
		}
		z := math3d.Mix(na.Z, nb.Z, t)
		if z < -1 || z > 1 {
			continue
		}
		x, y := int(x0+dx*t), int(y0+dy*t)
		if r.fb.TestAndSetDepth(x, y, z) {
			r.fb.SetColor(x, y, c)
			count++
		}
	}
	return count
}

// clipSegment clips the parametric segment to [0,w)x[0,h) with
// Liang-Barsky and returns the surviving parameter range.
func clipSegment(x0, y0, x1, y1, w, h float64) (t0, t1 float64, ok bool) {
	if !math3d.IsFinite(x0) || !math3d.IsFinite(y0) || !math3d.IsFinite(x1) || !math3d.IsFinite(y1) {
		return 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0, w - 1e-9 - x0, y0, h - 1e-9 - y0}
	t0, t1 = 0, 1
	for i := range 4 {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
	}
	return t0, t1, t0 <= t1
}
