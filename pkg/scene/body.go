// Package scene assembles the solar system: a sun, planets on circular
// orbits, moons, a ringed planet and the ship that follows the camera. It
// turns the system state into render.Frame values each tick.
package scene

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/shading"
)

// BodySpec describes one body before the system is built.
type BodySpec struct {
	Name string
	Kind shading.Kind

	// Parent names the body this one orbits. Empty means the system
	// origin.
	Parent string
	// Orbit is the orbital radius, Speed the angular speed in rad/s and
	// Phase the angle at time zero.
	Orbit float64
	Speed float64
	Phase float64

	Scale float64
	// Spin is the rotation speed about the body's own Y axis, rad/s.
	Spin float64
	// Collision is the radius the camera may not enter.
	Collision float64
	// Ring attaches a ring at 1.5x the body's scale.
	Ring bool

	// Preset overrides shading.PresetFor(Kind).
	Preset *shading.Preset
}

// DefaultBodies is the stock layout: the sun, five planets and a moon
// around the second planet.
func DefaultBodies() []BodySpec {
	return []BodySpec{
		{Name: "sun", Kind: shading.KindSun, Scale: 3, Spin: 0.01, Collision: 3.5},
		{Name: "cinder", Kind: shading.KindVolcanic, Orbit: 4, Speed: 0.8, Scale: 0.4, Spin: 0.02, Collision: 0.2},
		{Name: "terra", Kind: shading.KindTemperate, Orbit: 7, Speed: 0.5, Scale: 0.8, Spin: 0.02, Collision: 0.8},
		{Name: "rust", Kind: shading.KindDesert, Orbit: 10, Speed: 0.3, Scale: 0.6, Spin: 0.02, Collision: 0.42},
		{Name: "tempest", Kind: shading.KindPrimordial, Orbit: 15, Speed: 0.15, Scale: 1.5, Spin: 0.02, Collision: 2.7},
		{Name: "glacier", Kind: shading.KindIcy, Orbit: 20, Speed: 0.1, Scale: 1.3, Spin: 0.02, Collision: 1.95, Ring: true},
		{Name: "luna", Kind: shading.KindMoon, Parent: "terra", Orbit: 1.6, Speed: 1.2, Scale: 0.2, Spin: 0.05, Collision: 0.25},
	}
}

// Body is a body of a built system.
type Body struct {
	BodySpec

	// Position is the world-space center at the current time.
	Position math3d.Vec3
	// Rotation is the spin angle at the current time.
	Rotation float64

	parent     *Body
	shader     render.Shader
	material   *render.Material
	ring       *render.Material
	ringShader render.Shader
}

// Model returns the body's model matrix.
func (b *Body) Model() math3d.Mat4 {
	return math3d.TRS(b.Position, math3d.V3(0, b.Rotation, 0), b.Scale)
}

// RingModel returns the model matrix of the body's ring, tilted slightly
// off the orbital plane.
func (b *Body) RingModel() math3d.Mat4 {
	return math3d.Translate(b.Position).
		Mul(math3d.RotateX(ringTilt)).
		Mul(math3d.RotateY(b.Rotation * 0.5)).
		Mul(math3d.ScaleUniform(b.Scale * 1.5))
}

// Material returns the body's surface material.
func (b *Body) Material() *render.Material {
	return b.material
}

const ringTilt = 0.35

// place moves the body to its position at time t. Parents must be placed
// before their children.
func (b *Body) place(t float64) {
	b.Rotation = math.Mod(b.Spin*t, 2*math.Pi)
	center := math3d.Zero3()
	if b.parent != nil {
		center = b.parent.Position
	}
	if b.Orbit <= 0 {
		b.Position = center
		return
	}
	s, c := math.Sincos(t*b.Speed + b.Phase)
	b.Position = center.Add(math3d.V3(b.Orbit*c, 0, b.Orbit*s))
}

// OrbitPoints returns n points on the body's orbit around its parent's
// current position.
func (b *Body) OrbitPoints(n int) []math3d.Vec3 {
	if b.Orbit <= 0 || n < 2 {
		return nil
	}
	center := math3d.Zero3()
	if b.parent != nil {
		center = b.parent.Position
	}
	pts := make([]math3d.Vec3, n)
	for i := range pts {
		s, c := math.Sincos(float64(i) * 2 * math.Pi / float64(n))
		pts[i] = center.Add(math3d.V3(b.Orbit*c, 0, b.Orbit*s))
	}
	return pts
}
