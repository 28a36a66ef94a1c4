package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/models"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/shading"
)

var (
	// ErrNoSuchBody is returned when a warp target does not exist.
	ErrNoSuchBody = errors.New("no such body")
	// ErrInvalidBodies is returned for body lists that cannot form a system.
	ErrInvalidBodies = errors.New("invalid bodies")
)

// OrbitSegments is the number of points on each orbit path.
const OrbitSegments = 360

var orbitColor = render.Hex(0x444444)

// Options configures a System.
type Options struct {
	Bodies []BodySpec
	// FPS is the update rate the warp spring is tuned for.
	FPS int
	// Ship replaces the built-in ship mesh.
	Ship *models.Mesh
	// ShipScale is the ship's uniform scale. Zero uses DefaultShipScale.
	ShipScale float64
	// SphereDetail is the number of longitude segments of body meshes.
	// Zero uses DefaultSphereDetail.
	SphereDetail int
}

// Defaults for Options.
const (
	DefaultShipScale    = 0.08
	DefaultSphereDetail = 32
	shipDistance        = 2.0
)

var (
	warpOffset    = math3d.V3(5, 2, 5)
	birdEyeOffset = math3d.V3(0, 50, 0.5)
)

// System is a running solar system with its camera.
type System struct {
	Camera *render.Camera
	Bodies []*Body

	// ShowOrbits draws orbit paths as lines.
	ShowOrbits bool
	// ShowShip draws the ship in front of the camera.
	ShowShip bool

	time    float64
	sun     *Body
	sphere  *models.Mesh
	ringMsh *models.Mesh
	ship    *models.Mesh

	shipScale    float64
	shipShader   render.Shader
	shipMaterial *render.Material

	warp       *Warp
	warpTarget *Body

	birdEye            bool
	savedEye, savedCtr math3d.Vec3
}

// New builds a system. Bodies with a Parent must be listed after it.
func New(opts Options) (*System, error) {
	specs := opts.Bodies
	if len(specs) == 0 {
		specs = DefaultBodies()
	}
	detail := opts.SphereDetail
	if detail <= 0 {
		detail = DefaultSphereDetail
	}
	s := &System{
		Camera:     render.NewCamera(),
		ShowOrbits: true,
		ShowShip:   true,
		sphere:     models.NewUVSphere(detail, max(detail/2, 2)),
		ringMsh:    models.NewRing(0.8, 1.4, detail*3),
		ship:       opts.Ship,
		shipScale:  opts.ShipScale,
		warp:       NewWarp(opts.FPS),
	}
	if s.ship == nil {
		s.ship = models.NewShip()
	}
	if s.shipScale <= 0 {
		s.shipScale = DefaultShipScale
	}
	shipPreset := shading.PresetFor(shading.KindShip)
	s.shipShader = shipPreset.Shader
	s.shipMaterial = shipPreset.Material("ship")
	if hull := s.ship.GetMaterial(0); hull != nil {
		s.shipMaterial.Base = render.RGB(hull.BaseColor[0], hull.BaseColor[1], hull.BaseColor[2])
	}

	byName := make(map[string]*Body, len(specs))
	ringPreset := shading.PresetFor(shading.KindRing)
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("body %d: missing name: %w", i, ErrInvalidBodies)
		}
		if _, dup := byName[spec.Name]; dup {
			return nil, fmt.Errorf("body %q: duplicate name: %w", spec.Name, ErrInvalidBodies)
		}
		if spec.Scale <= 0 || spec.Orbit < 0 || spec.Collision < 0 {
			return nil, fmt.Errorf("body %q: scale %g, orbit %g, collision %g: %w",
				spec.Name, spec.Scale, spec.Orbit, spec.Collision, ErrInvalidBodies)
		}
		b := &Body{BodySpec: spec}
		if spec.Parent != "" {
			p, ok := byName[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("body %q: parent %q not defined before it: %w",
					spec.Name, spec.Parent, ErrInvalidBodies)
			}
			b.parent = p
		}
		preset := shading.PresetFor(spec.Kind)
		if spec.Preset != nil {
			preset = *spec.Preset
		}
		b.shader = preset.Shader
		b.material = preset.Material(spec.Name)
		if spec.Ring {
			b.ring = ringPreset.Material(spec.Name + " ring")
			b.ringShader = ringPreset.Shader
		}
		if spec.Kind == shading.KindSun && s.sun == nil {
			s.sun = b
		}
		byName[spec.Name] = b
		s.Bodies = append(s.Bodies, b)
	}

	s.Camera.SetEye(math3d.V3(50, 20, 50))
	s.Camera.LookAt(math3d.Zero3())
	s.place()

	render.Logger().Info("scene built", "bodies", len(s.Bodies), "sun", s.sun != nil)
	return s, nil
}

// Time returns the simulation time in seconds.
func (s *System) Time() float64 {
	return s.time
}

// Sun returns the first sun-kind body, or nil.
func (s *System) Sun() *Body {
	return s.sun
}

// Planets returns the bodies orbiting the system origin, in order. These
// are the warp targets.
func (s *System) Planets() []*Body {
	var out []*Body
	for _, b := range s.Bodies {
		if b.parent == nil && b.Orbit > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (s *System) place() {
	for _, b := range s.Bodies {
		b.place(s.time)
	}
}

// Update advances the simulation by dt seconds and steps the camera
// animation.
func (s *System) Update(dt float64) {
	if dt > 0 {
		s.time += dt
	}
	s.place()

	if s.warp.Active() && s.warpTarget != nil {
		s.warp.Retarget(s.warpTarget.Position.Add(warpOffset), s.warpTarget.Position)
		eye, center, done := s.warp.Update()
		s.Camera.SetEye(eye)
		s.Camera.LookAt(center)
		if done {
			render.Logger().Info("warp finished", "target", s.warpTarget.Name)
			s.warpTarget = nil
		}
	}
}

// WarpTo starts travel to the i-th planet, zero based.
func (s *System) WarpTo(i int) error {
	planets := s.Planets()
	if i < 0 || i >= len(planets) {
		return fmt.Errorf("warp to planet %d of %d: %w", i, len(planets), ErrNoSuchBody)
	}
	target := planets[i]
	s.birdEye = false
	s.warpTarget = target
	s.warp.Start(s.Camera.Eye, s.Camera.Center, target.Position.Add(warpOffset), target.Position)
	render.Logger().Info("warp started", "target", target.Name)
	return nil
}

// Warping reports whether a warp is in progress.
func (s *System) Warping() bool {
	return s.warp.Active()
}

// ToggleBirdEye switches between the top-down overview and the previous
// camera pose.
func (s *System) ToggleBirdEye() {
	s.warp.Cancel()
	s.warpTarget = nil
	if s.birdEye {
		s.Camera.SetEye(s.savedEye)
		s.Camera.LookAt(s.savedCtr)
		s.birdEye = false
		return
	}
	s.savedEye, s.savedCtr = s.Camera.Eye, s.Camera.Center
	s.Camera.SetEye(birdEyeOffset)
	s.Camera.LookAt(math3d.Zero3())
	s.birdEye = true
}

// BirdEye reports whether the overview camera is active.
func (s *System) BirdEye() bool {
	return s.birdEye
}

// Collides reports whether p lies inside any body's collision radius.
func (s *System) Collides(p math3d.Vec3) bool {
	for _, b := range s.Bodies {
		if b.Position.Distance(p) < b.Collision {
			return true
		}
	}
	return false
}

// Move translates the camera by forward and right units along its own
// axes. The move is refused, and false returned, when it would put the eye
// inside a body.
func (s *System) Move(forward, right float64) bool {
	delta := s.Camera.Forward().Scale(forward).Add(s.Camera.Right().Scale(right))
	if s.Collides(s.Camera.Eye.Add(delta)) {
		return false
	}
	s.warp.Cancel()
	s.warpTarget = nil
	s.Camera.Move(delta)
	return true
}

// ShipModel returns the ship's model matrix: shipDistance ahead of the
// eye, nose along the view direction.
func (s *System) ShipModel() math3d.Mat4 {
	f := s.Camera.Forward()
	r := s.Camera.Right()
	u := s.Camera.Up()
	p := s.Camera.Eye.Add(f.Scale(shipDistance))
	k := s.shipScale
	// The ship's nose points down -Z in model space.
	return math3d.Mat4{
		r.X * k, r.Y * k, r.Z * k, 0,
		u.X * k, u.Y * k, u.Z * k, 0,
		-f.X * k, -f.Y * k, -f.Z * k, 0,
		p.X, p.Y, p.Z, 1,
	}
}

// Frame assembles the draw list for the current state.
func (s *System) Frame() render.Frame {
	f := render.Frame{
		View:       s.Camera.ViewMatrix(),
		Projection: s.Camera.ProjectionMatrix(),
		LightDir:   math3d.V3(0, 1, 0),
		Time:       s.time,
	}
	if s.sun != nil {
		sun := s.sun.Position
		f.LightPos = &sun
	}

	for _, b := range s.Bodies {
		f.Draws = append(f.Draws, render.DrawCall{
			Name:     b.Name,
			Mesh:     s.sphere,
			Model:    b.Model(),
			Shader:   b.shader,
			Material: b.material,
		})
		if b.ring != nil {
			f.Draws = append(f.Draws, render.DrawCall{
				Name:     b.ring.Name,
				Mesh:     s.ringMsh,
				Model:    b.RingModel(),
				Shader:   b.ringShader,
				Material: b.ring,
			})
		}
	}

	if s.ShowShip {
		f.Draws = append(f.Draws, render.DrawCall{
			Name:     "ship",
			Mesh:     s.ship,
			Model:    s.ShipModel(),
			Shader:   s.shipShader,
			Material: s.shipMaterial,
		})
	}

	if s.ShowOrbits {
		for _, b := range s.Bodies {
			pts := b.OrbitPoints(OrbitSegments)
			for i := range pts {
				f.Lines = append(f.Lines, render.Line{
					A:     pts[i],
					B:     pts[(i+1)%len(pts)],
					Color: orbitColor,
				})
			}
		}
	}
	return f
}

// SetAspectRatio updates the camera for a framebuffer of the given size.
func (s *System) SetAspectRatio(width, height int) {
	if width > 0 && height > 0 {
		s.Camera.SetAspectRatio(float64(width) / float64(height))
	}
}
