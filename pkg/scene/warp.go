package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Warp animates the camera between two poses. Progress runs from 0 to 1
// on a critically damped spring, so travel eases in and settles without
// overshoot.
type Warp struct {
	fromEye, fromCenter math3d.Vec3
	toEye, toCenter     math3d.Vec3

	spring   harmonica.Spring
	progress float64
	velocity float64
	active   bool
}

// Spring frequency 6 with damping 1 settles in roughly a second.
const (
	warpFrequency = 6.0
	warpDamping   = 1.0
	warpSettle    = 1e-3
)

// NewWarp creates an idle warp stepped at fps updates per second.
func NewWarp(fps int) *Warp {
	return &Warp{
		spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), warpFrequency, warpDamping),
	}
}

// Start begins travel from the current pose to the target pose.
func (w *Warp) Start(fromEye, fromCenter, toEye, toCenter math3d.Vec3) {
	w.fromEye, w.fromCenter = fromEye, fromCenter
	w.toEye, w.toCenter = toEye, toCenter
	w.progress, w.velocity = 0, 0
	w.active = true
}

// Retarget moves the destination while travelling, for targets that are
// themselves moving.
func (w *Warp) Retarget(toEye, toCenter math3d.Vec3) {
	w.toEye, w.toCenter = toEye, toCenter
}

// Active reports whether a warp is in progress.
func (w *Warp) Active() bool {
	return w.active
}

// Progress returns how far along the warp is, in [0, 1].
func (w *Warp) Progress() float64 {
	return math3d.Saturate(w.progress)
}

// Update advances the warp by one step and returns the camera pose. done
// is true on the step that lands on the target.
func (w *Warp) Update() (eye, center math3d.Vec3, done bool) {
	if !w.active {
		return w.toEye, w.toCenter, false
	}
	w.progress, w.velocity = w.spring.Update(w.progress, w.velocity, 1)
	if math.Abs(1-w.progress) < warpSettle && math.Abs(w.velocity) < warpSettle {
		w.progress, w.velocity = 1, 0
		w.active = false
		return w.toEye, w.toCenter, true
	}
	t := w.Progress()
	return w.fromEye.Lerp(w.toEye, t), w.fromCenter.Lerp(w.toCenter, t), false
}

// Cancel stops the warp where it is.
func (w *Warp) Cancel() {
	w.active = false
	w.velocity = 0
}
