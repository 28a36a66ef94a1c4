package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/models"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/shading"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	s, err := New(Options{FPS: 60, SphereDetail: 12})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func near(a, b math3d.Vec3, tol float64) bool {
	return a.Distance(b) <= tol
}

func TestNewDefaultSystem(t *testing.T) {
	s := newTestSystem(t)
	if len(s.Bodies) != len(DefaultBodies()) {
		t.Errorf("bodies = %d, want %d", len(s.Bodies), len(DefaultBodies()))
	}
	if got := len(s.Planets()); got != 5 {
		t.Errorf("planets = %d, want 5", got)
	}
	if s.Sun() == nil || s.Sun().Kind != shading.KindSun {
		t.Fatal("no sun")
	}
	for _, b := range s.Bodies {
		if b.Material() == nil {
			t.Errorf("%s has no material", b.Name)
		}
	}
}

func TestNewRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name   string
		bodies []BodySpec
	}{
		{"missing name", []BodySpec{{Scale: 1}}},
		{"duplicate", []BodySpec{{Name: "a", Scale: 1}, {Name: "a", Scale: 1}}},
		{"zero scale", []BodySpec{{Name: "a"}}},
		{"negative orbit", []BodySpec{{Name: "a", Scale: 1, Orbit: -1}}},
		{"parent after child", []BodySpec{{Name: "moon", Parent: "host", Scale: 1, Orbit: 1}, {Name: "host", Scale: 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(Options{Bodies: tc.bodies}); !errors.Is(err, ErrInvalidBodies) {
				t.Errorf("err = %v, want ErrInvalidBodies", err)
			}
		})
	}
}

func TestOrbitalMotion(t *testing.T) {
	s := newTestSystem(t)
	s.Update(1)

	var terra, luna *Body
	for _, b := range s.Bodies {
		switch b.Name {
		case "terra":
			terra = b
		case "luna":
			luna = b
		}
	}
	want := math3d.V3(7*math.Cos(0.5), 0, 7*math.Sin(0.5))
	if !near(terra.Position, want, 1e-9) {
		t.Errorf("terra at %v, want %v", terra.Position, want)
	}
	if d := luna.Position.Distance(terra.Position); math.Abs(d-1.6) > 1e-9 {
		t.Errorf("luna is %v from terra, want 1.6", d)
	}
	if !near(s.Sun().Position, math3d.Zero3(), 0) {
		t.Errorf("sun moved to %v", s.Sun().Position)
	}
	if s.Time() != 1 {
		t.Errorf("time = %v", s.Time())
	}
}

func TestOrbitPoints(t *testing.T) {
	s := newTestSystem(t)
	for _, b := range s.Bodies {
		pts := b.OrbitPoints(OrbitSegments)
		if b.Orbit == 0 {
			if pts != nil {
				t.Errorf("%s: orbit points for a fixed body", b.Name)
			}
			continue
		}
		if len(pts) != OrbitSegments {
			t.Fatalf("%s: %d points", b.Name, len(pts))
		}
		center := math3d.Zero3()
		if b.parent != nil {
			center = b.parent.Position
		}
		for _, p := range pts {
			if d := p.Distance(center); math.Abs(d-b.Orbit) > 1e-9 {
				t.Fatalf("%s: point %v at radius %v", b.Name, p, d)
			}
		}
	}
}

func TestWarpToPlanet(t *testing.T) {
	s := newTestSystem(t)
	if err := s.WarpTo(5); !errors.Is(err, ErrNoSuchBody) {
		t.Errorf("WarpTo(5) err = %v, want ErrNoSuchBody", err)
	}
	if err := s.WarpTo(-1); !errors.Is(err, ErrNoSuchBody) {
		t.Errorf("WarpTo(-1) err = %v, want ErrNoSuchBody", err)
	}

	if err := s.WarpTo(1); err != nil {
		t.Fatal(err)
	}
	target := s.Planets()[1]
	steps := 0
	for s.Warping() {
		s.Update(1.0 / 60)
		if steps++; steps > 1000 {
			t.Fatal("warp never finished")
		}
	}
	if !near(s.Camera.Center, target.Position, 1e-9) {
		t.Errorf("camera looks at %v, want %v", s.Camera.Center, target.Position)
	}
	if !near(s.Camera.Eye, target.Position.Add(warpOffset), 1e-9) {
		t.Errorf("camera at %v, want %v", s.Camera.Eye, target.Position.Add(warpOffset))
	}
}

func TestWarpEasesWithoutOvershoot(t *testing.T) {
	w := NewWarp(60)
	w.Start(math3d.Zero3(), math3d.Zero3(), math3d.V3(10, 0, 0), math3d.V3(10, 0, 0))
	last := 0.0
	for i := 0; w.Active(); i++ {
		eye, _, done := w.Update()
		if eye.X < last-1e-12 || eye.X > 10+1e-9 {
			t.Fatalf("step %d: eye.x = %v after %v", i, eye.X, last)
		}
		last = eye.X
		if done && eye.X != 10 {
			t.Fatalf("landed at %v", eye.X)
		}
		if i > 1000 {
			t.Fatal("warp never finished")
		}
	}
	if w.Progress() != 1 {
		t.Errorf("progress = %v", w.Progress())
	}
}

func TestBirdEyeToggle(t *testing.T) {
	s := newTestSystem(t)
	eye, center := s.Camera.Eye, s.Camera.Center

	s.ToggleBirdEye()
	if !s.BirdEye() || s.Camera.Eye != birdEyeOffset || s.Camera.Center != math3d.Zero3() {
		t.Fatalf("overview camera at %v looking at %v", s.Camera.Eye, s.Camera.Center)
	}
	s.ToggleBirdEye()
	if s.BirdEye() || s.Camera.Eye != eye || s.Camera.Center != center {
		t.Errorf("camera not restored: %v -> %v", s.Camera.Eye, s.Camera.Center)
	}
}

func TestMoveRespectsCollisions(t *testing.T) {
	s := newTestSystem(t)
	s.Camera.SetEye(math3d.V3(0, 0, 5))
	s.Camera.LookAt(math3d.Zero3())

	if !s.Collides(math3d.Zero3()) {
		t.Error("sun centre does not collide")
	}
	if s.Collides(math3d.V3(0, 100, 0)) {
		t.Error("empty space collides")
	}
	if s.Move(2, 0) {
		t.Error("move into the sun accepted")
	}
	if s.Camera.Eye != math3d.V3(0, 0, 5) {
		t.Errorf("eye moved to %v", s.Camera.Eye)
	}
	if !s.Move(-1, 0) {
		t.Error("move away from the sun refused")
	}
	if !near(s.Camera.Eye, math3d.V3(0, 0, 6), 1e-12) {
		t.Errorf("eye at %v, want (0,0,6)", s.Camera.Eye)
	}
}

func TestShipFollowsCamera(t *testing.T) {
	s := newTestSystem(t)
	m := s.ShipModel()
	want := s.Camera.Eye.Add(s.Camera.Forward().Scale(shipDistance))
	if !near(m.MulPoint(math3d.Zero3()), want, 1e-9) {
		t.Errorf("ship origin at %v, want %v", m.MulPoint(math3d.Zero3()), want)
	}
	nose := m.MulPoint(math3d.V3(0, 0, -1)).Sub(m.MulPoint(math3d.Zero3())).Normalize()
	if nose.Dot(s.Camera.Forward()) < 1-1e-9 {
		t.Errorf("ship nose %v not along forward %v", nose, s.Camera.Forward())
	}
}

func TestShipHullColor(t *testing.T) {
	hull := models.NewShip()
	hull.Materials[0].BaseColor = [4]float64{1, 0, 0, 1}
	s, err := New(Options{Ship: hull})
	if err != nil {
		t.Fatal(err)
	}
	if s.shipMaterial.Base != render.RGB(1, 0, 0) {
		t.Errorf("ship base = %v, want the hull color", s.shipMaterial.Base)
	}
}

func TestFrame(t *testing.T) {
	s := newTestSystem(t)
	f := s.Frame()

	// Every body, one ring and the ship.
	if want := len(s.Bodies) + 2; len(f.Draws) != want {
		t.Errorf("draws = %d, want %d", len(f.Draws), want)
	}
	orbiting := 0
	for _, b := range s.Bodies {
		if b.Orbit > 0 {
			orbiting++
		}
	}
	if want := orbiting * OrbitSegments; len(f.Lines) != want {
		t.Errorf("lines = %d, want %d", len(f.Lines), want)
	}
	if f.LightPos == nil || *f.LightPos != s.Sun().Position {
		t.Errorf("light position = %v", f.LightPos)
	}

	s.ShowOrbits = false
	s.ShowShip = false
	f = s.Frame()
	if len(f.Lines) != 0 || len(f.Draws) != len(s.Bodies)+1 {
		t.Errorf("lines = %d, draws = %d with orbits and ship hidden", len(f.Lines), len(f.Draws))
	}
}

func TestRenderSystem(t *testing.T) {
	s := newTestSystem(t)
	fb, err := render.NewFramebuffer(64, 40, render.Black)
	if err != nil {
		t.Fatal(err)
	}
	s.SetAspectRatio(fb.Width, fb.Height)
	s.ShowShip = false
	s.ToggleBirdEye()
	s.Update(0.5)

	stats, err := render.NewRenderer(fb).Render(s.Frame())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Draws == 0 || stats.Fragments == 0 {
		t.Fatalf("nothing drawn: %+v", stats)
	}
	// The sun sits in the middle of the overview.
	if c := fb.Pixel(fb.Width/2, fb.Height/2); c.Luminance() < 0.3 {
		t.Errorf("centre pixel %v is too dark for the sun", c)
	}
}
