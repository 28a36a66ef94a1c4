package shading

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/render"
)

// Stop is one control point of a Ramp.
type Stop struct {
	At    float64
	Color render.Color
}

// Ramp maps a scalar to a color by linear interpolation between stops.
// Stops must be sorted by At.
type Ramp []Stop

// Sample returns the color at t. Values outside the stop range take the
// end colors; NaN maps to the first stop.
func (r Ramp) Sample(t float64) render.Color {
	if len(r) == 0 {
		return render.Black
	}
	if math.IsNaN(t) || t <= r[0].At {
		return r[0].Color
	}
	last := r[len(r)-1]
	if t >= last.At {
		return last.Color
	}
	for i := 1; i < len(r); i++ {
		if t > r[i].At {
			continue
		}
		a, b := r[i-1], r[i]
		span := b.At - a.At
		if span <= 0 {
			return b.Color
		}
		return a.Color.Lerp(b.Color, math3d.Saturate((t-a.At)/span))
	}
	return last.Color
}
