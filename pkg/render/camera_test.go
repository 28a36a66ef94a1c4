package render

import (
	"math"
	"testing"

	"github.com/taigrr/orrery/pkg/math3d"
)

func TestCameraOrbitKeepsRadius(t *testing.T) {
	c := NewCamera()
	r := c.Distance()
	for i := range 20 {
		c.Orbit(0.3, 0.2*float64(i%3-1))
		if d := c.Distance(); math.Abs(d-r) > 1e-9 {
			t.Fatalf("step %d: radius %v, want %v", i, d, r)
		}
	}
	// Pitch is clamped short of the pole.
	c.Orbit(0, 10)
	if up := c.Forward().Dot(math3d.Up()); up < -0.999 {
		t.Errorf("camera pitched onto the pole: forward·up = %v", up)
	}
}

func TestCameraZoom(t *testing.T) {
	c := NewCamera()
	before := c.Distance()
	c.Zoom(5)
	if d := c.Distance(); math.Abs(d-(before-5)) > 1e-9 {
		t.Errorf("distance = %v, want %v", d, before-5)
	}
	c.Zoom(1e6)
	if d := c.Distance(); math.Abs(d-minOrbitRadius) > 1e-9 {
		t.Errorf("distance = %v, want %v", d, minOrbitRadius)
	}
}

func TestCameraMatricesTrackChanges(t *testing.T) {
	c := NewCamera()
	first := c.ViewProjectionMatrix()
	c.SetEye(math3d.V3(5, 5, 5))
	if c.ViewProjectionMatrix() == first {
		t.Error("view-projection did not change after SetEye")
	}
	c.SetFOV(math.Pi / 2)
	if c.ProjectionMatrix() != math3d.Perspective(math.Pi/2, c.AspectRatio, c.Near, c.Far) {
		t.Error("projection not rebuilt after SetFOV")
	}
}

func TestWorldToScreen(t *testing.T) {
	c := NewCamera()
	c.SetAspectRatio(2)

	x, y, _, ok := c.WorldToScreen(c.Center, 200, 100)
	if !ok || math.Abs(x-100) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("centre projects to (%v, %v, %v)", x, y, ok)
	}
	behind := c.Eye.Sub(c.Forward())
	if _, _, _, ok := c.WorldToScreen(behind, 200, 100); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestCameraFrustum(t *testing.T) {
	c := NewCamera()
	f := c.Frustum()
	if !f.ContainsPoint(c.Center) {
		t.Error("frustum does not contain the look-at point")
	}
	if f.ContainsPoint(c.Eye.Sub(c.Forward().Scale(5))) {
		t.Error("frustum contains a point behind the eye")
	}
}
