package render

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Camera is a look-at camera: it sits at Eye and faces Center.
type Camera struct {
	Eye     math3d.Vec3
	Center  math3d.Vec3
	WorldUp math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// minOrbitRadius keeps the eye from collapsing onto the center.
const minOrbitRadius = 0.5

// NewCamera creates a camera looking at the origin from above and behind.
func NewCamera() *Camera {
	return &Camera{
		Eye:         math3d.V3(0, 10, 30),
		Center:      math3d.V3(0, 0, 0),
		WorldUp:     math3d.Up(),
		FOV:         math.Pi / 4,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetEye moves the camera without changing what it looks at.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Center = target
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the unit direction from Eye to Center.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Center.Sub(c.Eye).Normalize()
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return c.Forward().Cross(c.WorldUp).Normalize()
}

// Up returns the camera's own up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// Distance returns the orbit radius.
func (c *Camera) Distance() float64 {
	return c.Eye.Distance(c.Center)
}

// Orbit swings the eye around Center by yaw and pitch deltas in radians.
// Pitch stays short of the poles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	offset := c.Eye.Sub(c.Center)
	radius := offset.Len()
	if radius == 0 {
		return
	}
	yaw := math.Atan2(offset.Z, offset.X) + deltaYaw
	pitch := math.Asin(math3d.Clamp(offset.Y/radius, -1, 1)) + deltaPitch

	const maxPitch = math.Pi/2 - 0.1
	pitch = math3d.Clamp(pitch, -maxPitch, maxPitch)

	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	c.Eye = c.Center.Add(math3d.V3(radius*cp*cy, radius*sp, radius*cp*sy))
	c.viewDirty = true
}

// Zoom moves the eye toward Center by delta, never closer than a small
// minimum radius.
func (c *Camera) Zoom(delta float64) {
	radius := c.Distance()
	next := math.Max(minOrbitRadius, radius-delta)
	c.Eye = c.Center.Add(c.Eye.Sub(c.Center).Normalize().Scale(next))
	c.viewDirty = true
}

// Move translates both Eye and Center, keeping the view direction.
func (c *Camera) Move(delta math3d.Vec3) {
	c.Eye = c.Eye.Add(delta)
	c.Center = c.Center.Add(delta)
	c.viewDirty = true
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Eye, c.Center, c.WorldUp)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// WorldToScreen projects a world point to pixel coordinates. visible is
// false for points behind the eye or outside the view volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	ndc, ok := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1)).PerspectiveDivide()
	if !ok {
		return 0, 0, 0, false
	}
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}
